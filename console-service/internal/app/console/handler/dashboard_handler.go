package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/console-service/internal/app/console/repository"
	"stockdesk/console-service/internal/app/console/service"
	"stockdesk/console-service/internal/app/console/store"
	"stockdesk/console-service/internal/app/console/views"
	"stockdesk/pkg/logger"
)

const (
	defaultRevenueDays = 30
	maxRevenueDays     = 365
	activityLogLimit   = 50
)

// DashboardHandler - агрегаты поверх нескольких хранилищ.
type DashboardHandler struct {
	stores   *service.Stores
	activity repository.ActivityRepository // может быть nil
	clock    func() time.Time
}

func NewDashboardHandler(stores *service.Stores, activity repository.ActivityRepository) *DashboardHandler {
	return &DashboardHandler{stores: stores, activity: activity, clock: time.Now}
}

func (h *DashboardHandler) Dashboard(c *gin.Context) {
	h.ensureLoaded(c.Request.Context())

	c.JSON(http.StatusOK, views.Dashboard(
		h.stores.Companies.Items(),
		h.stores.Products.Items(),
		h.stores.Sales.Items(),
		h.stores.Purchases.Items(),
	))
}

// Revenue: ?days=N, по умолчанию 30.
func (h *DashboardHandler) Revenue(c *gin.Context) {
	days := defaultRevenueDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxRevenueDays {
			respondWithError(c, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = n
	}

	h.ensureLoaded(c.Request.Context())
	now := h.clock()
	c.JSON(http.StatusOK, gin.H{
		"days":    days,
		"revenue": views.RevenueByDay(h.stores.Sales.Items(), days, now),
		"spend":   views.SpendByDay(h.stores.Purchases.Items(), days, now),
	})
}

// Activity - лента движений; администратор видит ещё регистрации компаний
// и журнал операций хранилищ.
func (h *DashboardHandler) Activity(c *gin.Context) {
	ctx := c.Request.Context()
	h.ensureLoaded(ctx)

	resp := gin.H{
		"feed": views.ActivityFeed(h.stores.Sales.Items(), h.stores.Purchases.Items(), views.ActivityLimit),
	}

	if c.GetString(ctxRole) == entity.RoleAdmin {
		resp["registrations"] = views.CompanyRegistrations(h.stores.Companies.Items())

		if h.activity != nil {
			logs, err := h.activity.ListRecent(ctx, c.Query("resource"), activityLogLimit)
			if err != nil {
				logger.Warn().Err(err).Msg("Failed to read activity log")
			} else {
				resp["operations"] = logs
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// ProfileTotals - итоги закупок текущего пользователя.
func (h *DashboardHandler) ProfileTotals(c *gin.Context) {
	h.ensureLoaded(c.Request.Context())
	c.JSON(http.StatusOK, views.ProfileTotals(h.stores.Purchases.Items(), c.GetInt64(ctxUserID)))
}

// ensureLoaded загружает ещё не загруженные коллекции; ошибки остаются в состоянии хранилищ.
func (h *DashboardHandler) ensureLoaded(ctx context.Context) {
	statuses := map[string]store.Status{
		service.ResourceProducts:  h.stores.Products.Status(),
		service.ResourceSales:     h.stores.Sales.Status(),
		service.ResourcePurchases: h.stores.Purchases.Status(),
		service.ResourceCompanies: h.stores.Companies.Status(),
	}
	for resource, status := range statuses {
		if status != store.StatusIdle {
			continue
		}
		if err := h.stores.Refresh(ctx, resource); err != nil {
			logger.Warn().Err(err).Str("resource", resource).Msg("Dashboard data not loaded")
		}
	}
}
