package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/metrics"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// Params groups router dependencies.
type Params struct {
	fx.In

	Facade   handlers.StorefrontFacade
	Logger   *slog.Logger
	Config   *config.Config
	Metrics  *metrics.HTTP
	Gatherer prometheus.Gatherer
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.Metrics(p.Metrics))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	engine.GET("/healthz", handlers.Health(p.Facade, p.Logger))
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{})))
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.Envelope{Error: "route not found", Kind: domainErrors.KindNotFound})
	})

	authHandler := handlers.NewAuthHandler(p.Facade, p.Logger)
	productHandler := handlers.NewProductHandler(p.Facade, p.Logger)
	orderHandler := handlers.NewOrderHandler(p.Facade, p.Logger)
	adminHandler := handlers.NewAdminHandler(p.Facade, p.Logger)
	categoryHandler := handlers.NewCategoryHandler(p.Facade, p.Logger)
	customerHandler := handlers.NewCustomerHandler(p.Facade, p.Logger)

	authRequired := middleware.AuthRequired(p.Facade)
	limiter := middleware.NewRateLimiter(p.Config.AuthRateLimit, p.Config.AuthRateBurst)

	api := engine.Group("/api")
	api.Use(middleware.Deadline(p.Config.RequestTimeout))

	auth := api.Group("/auth")
	auth.POST("/register", limiter.Handler(), authHandler.Register)
	auth.POST("/login", limiter.Handler(), authHandler.Login)
	auth.GET("/profile", authRequired, authHandler.Profile)
	auth.PUT("/profile", authRequired, authHandler.UpdateProfile)
	auth.POST("/addresses", authRequired, authHandler.AddAddress)
	auth.PUT("/addresses/:addressId", authRequired, authHandler.UpdateAddress)
	auth.DELETE("/addresses/:addressId", authRequired, authHandler.DeleteAddress)

	products := api.Group("/products")
	products.GET("", middleware.OptionalAuth(p.Facade), productHandler.List)
	products.GET("/featured", productHandler.Featured)
	products.GET("/:id", productHandler.Get)
	products.POST("/:id/reviews", authRequired, productHandler.AddReview)

	categories := api.Group("/categories")
	categories.GET("", categoryHandler.List)
	categories.GET("/:id", categoryHandler.Get)

	orders := api.Group("/orders", authRequired)
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.PUT("/:id/cancel", orderHandler.Cancel)

	admin := api.Group("/admin", authRequired, middleware.RequireRole(model.RoleAdmin))
	admin.GET("/orders", adminHandler.Orders)
	admin.GET("/orders/stats", adminHandler.Statistics)
	admin.PUT("/orders/:id/status", adminHandler.UpdateStatus)
	admin.POST("/products", productHandler.Create)
	admin.PUT("/products/bulk-update", productHandler.BulkUpdate)
	admin.PUT("/products/:id", productHandler.Update)
	admin.DELETE("/products/:id", productHandler.Delete)
	admin.GET("/products/stats", productHandler.Statistics)
	admin.GET("/categories", categoryHandler.ListAll)
	admin.POST("/categories", categoryHandler.Create)
	admin.PUT("/categories/:id", categoryHandler.Update)
	admin.DELETE("/categories/:id", categoryHandler.Delete)
	admin.GET("/customers", customerHandler.List)
	admin.GET("/customers/stats", customerHandler.Statistics)
	admin.GET("/customers/:id", customerHandler.Get)

	return engine
}
