package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"stockdesk/console-service/internal/app/console/config"
	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/console-service/internal/app/console/handler"
	apihttp "stockdesk/console-service/internal/app/console/infrastructure/http"
	"stockdesk/console-service/internal/app/console/infrastructure/messaging"
	"stockdesk/console-service/internal/app/console/processor"
	"stockdesk/console-service/internal/app/console/repository"
	"stockdesk/console-service/internal/app/console/service"
	"stockdesk/console-service/internal/app/console/util"
	"stockdesk/pkg/logger"
)

const serviceName = "console-service"

func main() {
	// .env необязателен: в контейнере переменные приходят из окружения
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init(serviceName, logLevel)

	if logstashAddr := os.Getenv("LOGSTASH_ADDR"); logstashAddr != "" {
		if err := logger.InitLogstash(logstashAddr, serviceName, logLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", logstashAddr).Msg("Connected to Logstash")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Сессия консоли (аналог localStorage "user")
	var redisClient *redis.Client
	var sessions repository.SessionRepository
	switch cfg.Session.Backend {
	case config.SessionRedis:
		redisClient = connectRedis(cfg.Redis)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("address", cfg.Redis.Address()).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		sessions = repository.NewRedisSessionRepository(redisClient, cfg.Session.TTL)
		logger.Info().Str("address", cfg.Redis.Address()).Msg("Session storage: Redis")
	default:
		sessions = repository.NewFileSessionRepository(cfg.Session.File)
		logger.Info().Str("file", cfg.Session.File).Msg("Session storage: file")
	}

	// Журнал операций хранилищ
	var db *gorm.DB
	var activity repository.ActivityRepository
	if cfg.Database.Enabled {
		db, err = connectDB(cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		if err := db.AutoMigrate(&entity.ActivityLog{}); err != nil {
			logger.Fatal().Err(err).Msg("Failed to migrate activity log")
		}
		activity = repository.NewActivityRepository(db)
		logger.Info().
			Str("host", cfg.Database.Host).
			Str("database", cfg.Database.DBName).
			Msg("Activity log enabled")
	}

	var publisher service.OutcomePublisher
	if cfg.Kafka.Enabled {
		producer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.OutcomeTopic)
		defer producer.Close()
		publisher = producer
		logger.Info().Str("topic", cfg.Kafka.OutcomeTopic).Msg("Initialized Kafka producer")
	}

	// HTTP-клиент берёт токен из сессии через AuthService, который создаётся ниже:
	// AuthService зависит от хранилища компаний, а то от клиента.
	var authService *service.AuthService
	tokens := apihttp.TokenFunc(func(ctx context.Context) string {
		if authService == nil {
			return ""
		}
		return authService.Token(ctx)
	})

	var backends service.Backends
	switch cfg.Store.Backend {
	case config.BackendMock:
		backends = service.NewMockBackends(cfg.Store.MockLatency)
		logger.Warn().Dur("latency", cfg.Store.MockLatency).Msg("Running against in-memory mock backend")
	default:
		client := apihttp.NewAPIClient(cfg.API.BaseURL, cfg.API.Timeout, tokens)
		backends = service.NewRemoteBackends(client)
		logger.Info().Str("url", cfg.API.BaseURL).Msg("Initialized inventory API client")
	}

	notifier := service.NewOutcomeNotifier(publisher, activity)
	stores := service.NewStores(backends, notifier, cfg.Store.LastWriterWins)

	jwtManager := util.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TTL)
	authService = service.NewAuthService(sessions, stores.Companies, jwtManager, service.AdminAccount{
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
		Name:     cfg.Admin.Name,
	})
	inventoryService := service.NewInventoryService(stores, cfg.Store.Backend == config.BackendMock)

	if cfg.Refresh.Schedule != "" {
		scheduler := processor.NewCronScheduler(stores)
		if err := scheduler.Start(ctx, cfg.Refresh.Schedule); err != nil {
			logger.Fatal().Err(err).Str("schedule", cfg.Refresh.Schedule).Msg("Failed to start cron scheduler")
		}
		defer scheduler.Stop()
	}

	if cfg.Kafka.Enabled {
		consumer := processor.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.RefreshTopic, cfg.Kafka.GroupID, stores)
		consumer.Start(ctx)
		defer consumer.Stop()
	}

	handlers := handler.NewHandlers(stores, authService, inventoryService, activity,
		handler.NewHealthCheckHandler(db, redisClient, stores))
	router := handler.SetupRoutes(handlers, handler.NewAuthMiddleware(authService), cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.API.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("backend", cfg.Store.Backend).
			Msg("Starting Console Service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Console Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	cancel()

	logger.Info().Msg("Console Service stopped gracefully")
}

func connectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				sqlDB.SetMaxOpenConns(10)
				sqlDB.SetMaxIdleConns(2)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				return db, nil
			}
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
