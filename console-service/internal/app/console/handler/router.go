package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stockdesk/console-service/internal/app/console/entity"
	"stockdesk/console-service/internal/app/console/repository"
	"stockdesk/console-service/internal/app/console/service"
	"stockdesk/console-service/internal/app/console/store"
	"stockdesk/console-service/internal/app/console/util"
	"stockdesk/console-service/internal/app/console/views"
	"stockdesk/pkg/logger"
	"stockdesk/pkg/metrics"
)

// Handlers - все обработчики фасада
type Handlers struct {
	Auth      *AuthHandler
	Movements *MovementHandler
	Dashboard *DashboardHandler
	Health    *HealthCheckHandler

	Categories *ResourceHandler[entity.Category]
	Products   *ResourceHandler[entity.Product]
	Sales      *ResourceHandler[entity.Sale]
	Purchases  *ResourceHandler[entity.Purchase]
	Companies  *ResourceHandler[entity.Company]
}

// NewHandlers собирает обработчики фасада. Компании регистрируются через AuthService
// (пароль хэшируется) и отдаются без пароля. activity и health могут быть nil.
func NewHandlers(
	stores *service.Stores,
	auth service.AuthServiceInterface,
	inventory service.InventoryServiceInterface,
	activity repository.ActivityRepository,
	health *HealthCheckHandler,
) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(auth),
		Movements: NewMovementHandler(inventory),
		Dashboard: NewDashboardHandler(stores, activity),
		Health:    health,

		Categories: NewResourceHandler(stores.Categories, views.CategorySchema, views.CategoryTable),
		Products:   NewResourceHandler(stores.Products, views.ProductSchema, views.ProductTable),
		Sales:      NewResourceHandler(stores.Sales, views.SaleSchema, views.SaleTable),
		Purchases:  NewResourceHandler(stores.Purchases, views.PurchaseSchema, views.PurchaseTable),
		Companies: NewResourceHandler(stores.Companies, views.CompanySchema, views.CompanyTable,
			WithCreate[entity.Company](auth.RegisterCompany),
			WithPatchHook[entity.Company](hashPasswordPatch),
			WithPresenter(entity.Company.Public),
		),
	}
}

func hashPasswordPatch(patch store.Patch) error {
	password, ok := patch["password"].(string)
	if !ok || password == "" || util.IsHashed(password) {
		return nil
	}
	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}
	patch["password"] = hash
	return nil
}

// SetupRoutes настраивает все маршруты фасада консоли
func SetupRoutes(h *Handlers, authMiddleware *AuthMiddleware, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware("console-service"))

	router.Use(cors.New(corsConfig(allowedOrigins)))

	if h.Health != nil {
		router.GET("/health", h.Health.HealthCheck)
		router.GET("/health/liveness", h.Health.Liveness)
	} else {
		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "console-service"})
		})
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)

		protected := auth.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.GET("/me", h.Auth.GetMe)
			protected.POST("/logout", h.Auth.Logout)
		}
	}

	api := router.Group("/api")
	api.Use(authMiddleware.Authenticate())
	api.Use(authMiddleware.RequireRole(entity.RoleAdmin, entity.RoleCompany))
	{
		h.Categories.Register(api.Group("/categories"), nil)
		h.Products.Register(api.Group("/products"), nil)
		h.Sales.Register(api.Group("/sales"), h.Movements.RecordSale)
		h.Purchases.Register(api.Group("/purchases"), h.Movements.RecordPurchase)

		companies := api.Group("/companies")
		companies.Use(authMiddleware.RequireRole(entity.RoleAdmin))
		h.Companies.Register(companies, nil)

		api.GET("/dashboard", h.Dashboard.Dashboard)
		api.GET("/dashboard/revenue", h.Dashboard.Revenue)
		api.GET("/activity", h.Dashboard.Activity)
		api.GET("/profile/totals", h.Dashboard.ProfileTotals)
	}

	return router
}

// corsConfig: пустой список или "*" разрешает любые origins, но без credentials.
func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", logger.RequestIDHeader},
		MaxAge:        5 * time.Minute,
	}
	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = allowedOrigins
	cfg.AllowCredentials = true
	return cfg
}
