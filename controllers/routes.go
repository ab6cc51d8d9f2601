package controllers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/legacy-storefront-api/config"
	"github.com/kendall-kelly/legacy-storefront-api/middleware"
	"github.com/kendall-kelly/legacy-storefront-api/services"
	"gorm.io/gorm"
)

// Dependencies holds everything the HTTP layer needs
type Dependencies struct {
	Config     *config.Config
	DB         *gorm.DB
	Verifier   services.PaymentVerifier
	Orders     *services.OrderRecorder
	Stock      *services.StockAdjuster
	Issuer     *services.LegacyIssuer
	Claims     *services.ClaimService
	AdminAuth  *services.AdminAuth
	Archive    services.EventArchive
	Events     services.EventPublisher
	Reconciler *services.Reconciler
}

// NewDependencies builds the services on top of the given adapters
func NewDependencies(cfg *config.Config, db *gorm.DB, geocoder services.Geocoder, archive services.EventArchive, events services.EventPublisher) *Dependencies {
	if archive == nil {
		archive = services.NopEventArchive{}
	}
	if events == nil {
		events = services.NopEventPublisher{}
	}

	orders := services.NewOrderRecorder(db)
	stock := services.NewStockAdjuster(db)
	issuer := services.NewLegacyIssuer(db)

	return &Dependencies{
		Config:     cfg,
		DB:         db,
		Verifier:   services.NewStripeVerifier(cfg),
		Orders:     orders,
		Stock:      stock,
		Issuer:     issuer,
		Claims:     services.NewClaimService(db, issuer, geocoder, events),
		AdminAuth:  services.NewAdminAuth(cfg),
		Archive:    archive,
		Events:     events,
		Reconciler: services.NewReconciler(orders, stock, issuer, archive, events),
	}
}

// SetupRouter registers every route on a new gin engine
func SetupRouter(deps *Dependencies) *gin.Engine {
	cfg := deps.Config

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.AdminSecretHeader, "Stripe-Signature", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	health := NewHealthController(deps.DB)
	webhook := NewWebhookController(deps.Verifier, deps.Reconciler)
	legacy := NewLegacyController(deps.Claims, deps.AdminAuth)
	stock := NewStockController(deps.Stock)
	admin := NewAdminController(deps.Orders, deps.Issuer, deps.Claims, deps.Archive)

	claimLimit := middleware.RateLimit(middleware.NewIPRateLimiter(cfg.ClaimRateRPS, cfg.ClaimRateBurst))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", health.Health)
		v1.GET("/database/status", health.DatabaseStatus)

		v1.POST("/webhooks/stripe", webhook.HandleStripe)

		legacyRoutes := v1.Group("/legacy")
		{
			legacyRoutes.GET("", legacy.ListPublic)
			legacyRoutes.POST("", claimLimit, legacy.Submit)
			legacyRoutes.POST("/check", claimLimit, legacy.Check)
			legacyRoutes.POST("/claim", claimLimit, legacy.Claim)
			legacyRoutes.POST("/admin/verify", claimLimit, legacy.AdminVerify)
			legacyRoutes.DELETE("/:id", middleware.EnsureAdmin(cfg, deps.AdminAuth, true), legacy.Delete)
		}

		v1.GET("/stock", stock.List)
		v1.GET("/stock/:slug", stock.Get)

		adminRoutes := v1.Group("/admin", middleware.EnsureAdmin(cfg, deps.AdminAuth, false))
		{
			adminRoutes.GET("/orders", middleware.RequireScope("orders:read"), admin.ListOrders)
			adminRoutes.GET("/orders/:session_id", middleware.RequireScope("orders:read"), admin.GetOrder)
			adminRoutes.GET("/legacy", middleware.RequireScope("legacy:admin"), admin.ListLegacy)
		}
	}

	return router
}
