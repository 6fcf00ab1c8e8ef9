package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Режимы бэкенда хранилищ
const (
	BackendRemote = "remote" // REST API инвентаря
	BackendMock   = "mock"   // in-memory фейковая БД
)

// Хранилища сессии
const (
	SessionFile  = "file"
	SessionRedis = "redis"
)

type Config struct {
	Server   ServerConfig
	API      APIConfig
	Store    StoreConfig
	Session  SessionConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Refresh  RefreshConfig
}

type ServerConfig struct {
	Host           string   // Адрес хоста (по умолчанию 0.0.0.0)
	Port           string   // Порт фасада (по умолчанию 8090)
	AllowedOrigins []string // Разрешённые CORS origins
}

type APIConfig struct {
	BaseURL string        // Базовый URL REST API инвентаря
	Timeout time.Duration // Таймаут HTTP-клиента, наследуется всеми операциями хранилищ
}

type StoreConfig struct {
	Backend        string        // remote | mock
	MockLatency    time.Duration // Искусственная задержка mock-бэкенда
	LastWriterWins bool          // Старое поведение: применяется ответ fetch, пришедший последним
}

type SessionConfig struct {
	Backend string        // file | redis
	File    string        // Путь к JSON-файлу сессии
	TTL     time.Duration // Время жизни сессии в Redis
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Enabled      bool
	Brokers      []string // Список брокеров (host:port)
	OutcomeTopic string   // Топик результатов операций хранилищ
	RefreshTopic string   // Топик внешних сигналов на обновление
	GroupID      string
}

type DatabaseConfig struct {
	Enabled  bool // Журнал активности в PostgreSQL
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// AdminConfig - учётная запись администратора консоли
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

type RefreshConfig struct {
	Schedule string // cron-выражение; пустая строка отключает плановое обновление
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnv("SERVER_PORT", "8090"),
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5050/api"), "/"),
			Timeout: time.Duration(getEnvInt("API_TIMEOUT_SEC", 10)) * time.Second,
		},
		Store: StoreConfig{
			Backend:        getEnv("BACKEND_MODE", BackendRemote),
			MockLatency:    time.Duration(getEnvInt("MOCK_LATENCY_MS", 0)) * time.Millisecond,
			LastWriterWins: getEnvBool("STORE_LAST_WRITER_WINS", false),
		},
		Session: SessionConfig{
			Backend: getEnv("SESSION_BACKEND", SessionFile),
			File:    getEnv("SESSION_FILE", "session.json"),
			TTL:     getEnvDuration("SESSION_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled:      getEnvBool("KAFKA_ENABLED", false),
			Brokers:      getEnvList("KAFKA_BROKERS", "localhost:9092"),
			OutcomeTopic: getEnv("KAFKA_OUTCOME_TOPIC", "store_outcomes"),
			RefreshTopic: getEnv("KAFKA_REFRESH_TOPIC", "inventory_changes"),
			GroupID:      getEnv("KAFKA_GROUP_ID", "console-service"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvBool("ACTIVITY_LOG_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "console"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
			TTL:    getEnvDuration("JWT_TTL", 12*time.Hour),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@stockdesk.local"),
			Password: getEnv("ADMIN_PASSWORD", "admin"),
			Name:     getEnv("ADMIN_NAME", "Administrator"),
		},
		Refresh: RefreshConfig{
			Schedule: getEnv("REFRESH_SCHEDULE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения-перечисления.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendRemote, BackendMock:
	default:
		return fmt.Errorf("unknown BACKEND_MODE %q", c.Store.Backend)
	}
	switch c.Session.Backend {
	case SessionFile, SessionRedis:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT_SEC must be positive")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList разбирает список через запятую.
func getEnvList(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
