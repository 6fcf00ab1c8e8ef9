package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stockdesk/console-service/internal/app/console/service"
	"stockdesk/console-service/internal/app/console/store"
)

// HealthCheckHandler проверяет зависимости фасада. db и redis могут быть nil,
// если журнал активности или Redis-сессии выключены.
type HealthCheckHandler struct {
	db          *gorm.DB
	redisClient *redis.Client
	stores      *service.Stores
}

func NewHealthCheckHandler(db *gorm.DB, redisClient *redis.Client, stores *service.Stores) *HealthCheckHandler {
	return &HealthCheckHandler{
		db:          db,
		redisClient: redisClient,
		stores:      stores,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

func (h *HealthCheckHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overallStatus := "healthy"

	if h.db != nil {
		if err := h.checkDatabase(ctx); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
			overallStatus = "unhealthy"
		} else {
			checks["database"] = "healthy"
		}
	}

	if h.redisClient != nil {
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
			overallStatus = "unhealthy"
		} else {
			checks["redis"] = "healthy"
		}
	}

	// неудачная загрузка коллекции - предупреждение, а не отказ
	if h.stores != nil {
		checks[service.ResourceCategories] = storeCheck(h.stores.Categories.Status())
		checks[service.ResourceProducts] = storeCheck(h.stores.Products.Status())
		checks[service.ResourceSales] = storeCheck(h.stores.Sales.Status())
		checks[service.ResourcePurchases] = storeCheck(h.stores.Purchases.Status())
		checks[service.ResourceCompanies] = storeCheck(h.stores.Companies.Status())
	}

	status := http.StatusOK
	if overallStatus != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, HealthResponse{
		Status:    overallStatus,
		Checks:    checks,
		Timestamp: time.Now(),
	})
}

func (h *HealthCheckHandler) Liveness(c *gin.Context) {
	c.String(http.StatusOK, "alive")
}

func (h *HealthCheckHandler) checkDatabase(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func storeCheck(status store.Status) string {
	if status == store.StatusFailed {
		return "warning: last load failed"
	}
	return string(status)
}
