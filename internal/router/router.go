// internal/router/router.go
package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/javajoker/shophub-backend/internal/config"
	"github.com/javajoker/shophub-backend/internal/handlers"
	"github.com/javajoker/shophub-backend/internal/middleware"
	"github.com/javajoker/shophub-backend/internal/services"
	"github.com/javajoker/shophub-backend/internal/utils"
)

// Dependencies are the process level collaborators built by main. Jobs is
// required; nil Gateway, Mailer or Images are derived from cfg.
type Dependencies struct {
	Jobs    services.JobSubmitter
	Events  services.EventPublisher
	Gateway services.PaymentGateway
	Mailer  services.Mailer
	Images  services.ImageStore
}

// Initialize wires services, handlers and routes. The returned func releases
// the rate limiter goroutines.
func Initialize(db *gorm.DB, cfg *config.Config, deps Dependencies) (*gin.Engine, func(), error) {
	// Request bodies with unknown fields are rejected
	binding.EnableDecoderDisallowUnknownFields = true

	if deps.Jobs == nil {
		return nil, nil, fmt.Errorf("router: a job dispatcher is required")
	}
	if deps.Events == nil {
		deps.Events = services.LogEventPublisher{}
	}
	if deps.Gateway == nil {
		deps.Gateway = services.NewStripeGateway(cfg.Payment)
	}
	if deps.Images == nil {
		storageService, err := services.NewStorageService(cfg.AWS, cfg.Site.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		deps.Images = storageService
	}

	// Initialize services
	var notificationService *services.NotificationService
	if deps.Mailer != nil {
		notificationService = services.NewNotificationServiceWithMailer(cfg.Email, deps.Mailer)
	} else {
		notificationService = services.NewNotificationService(cfg.Email)
	}
	authorizationService := services.NewAuthorizationService(cfg.Admin.Emails)
	productService := services.NewProductService(db, deps.Images)
	couponService := services.NewCouponService(db)
	orderService := services.NewOrderService(db, productService, couponService, authorizationService, notificationService, deps.Events, deps.Jobs)
	paymentService := services.NewPaymentService(deps.Gateway, productService, couponService, orderService, cfg.Site.URL)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg)
	productHandler := handlers.NewProductHandler(productService)
	couponHandler := handlers.NewCouponHandler(couponService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	adminHandler := handlers.NewAdminHandler(productService, couponService, orderService)

	verifier := utils.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Audience)
	limiters := middleware.NewLimiters()
	authRequired := middleware.AuthRequired(verifier)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.I18nMiddleware())

	// Health check
	r.GET("/health", healthHandler.Health)
	r.GET("/health/env", healthHandler.Env)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(limiters.General.Middleware())
	{
		// Catalog routes
		v1.GET("/products", productHandler.GetProducts)
		v1.GET("/products/:id", productHandler.GetProduct)
		v1.GET("/categories", productHandler.GetCategories)

		// Coupon routes
		v1.GET("/coupons/validate", limiters.Coupon.Middleware(), couponHandler.ValidateCoupon)

		// Checkout routes
		v1.POST("/checkout/quote", middleware.OptionalAuth(verifier), orderHandler.QuoteCart)

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(authRequired)
		{
			orders.POST("", limiters.Checkout.Middleware(), orderHandler.CreateOrder)
			orders.GET("", orderHandler.GetMyOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PATCH("/:id/status", orderHandler.UpdateStatus)
		}

		// Payment routes
		stripe := v1.Group("/stripe")
		{
			stripe.POST("/create-checkout-session", limiters.Checkout.Middleware(), authRequired, paymentHandler.CreateCheckoutSession)
			stripe.POST("/create-payment-intent", limiters.Checkout.Middleware(), authRequired, paymentHandler.CreatePaymentIntent)
			stripe.POST("/webhook", paymentHandler.Webhook)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(authRequired, middleware.AdminRequired(authorizationService))
		{
			admin.GET("/products", adminHandler.GetProducts)
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.DELETE("/products/:id", adminHandler.DeleteProduct)
			admin.POST("/products/:id/image", limiters.Upload.Middleware(), adminHandler.UploadProductImage)

			admin.GET("/categories", adminHandler.GetCategories)
			admin.POST("/categories", adminHandler.CreateCategory)

			admin.GET("/coupons", adminHandler.GetCoupons)
			admin.POST("/coupons", adminHandler.CreateCoupon)
			admin.PATCH("/coupons/:id", adminHandler.SetCouponActive)
			admin.DELETE("/coupons/:id", adminHandler.DeleteCoupon)

			admin.GET("/orders", adminHandler.GetOrders)
			admin.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
		}
	}

	return r, limiters.Stop, nil
}
