// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/freshloaf/storefront-backend/internal/config"
	"github.com/freshloaf/storefront-backend/internal/domain/cart"
	"github.com/freshloaf/storefront-backend/internal/domain/checkout"
	"github.com/freshloaf/storefront-backend/internal/domain/order"
	"github.com/freshloaf/storefront-backend/internal/domain/user"
	"github.com/freshloaf/storefront-backend/internal/interfaces/http/handlers"
	"github.com/freshloaf/storefront-backend/internal/interfaces/http/middleware"
	"github.com/freshloaf/storefront-backend/internal/pkg/stream"
)

// Deps bundles the services the route tree needs
type Deps struct {
	Config          *config.Config
	RedisClient     *redis.Client
	Logger          *logrus.Logger
	UserService     *user.Service
	AdminService    *user.AdminService
	CartService     *cart.Service
	OrderService    *order.Service
	CheckoutService *checkout.Service
	Broker          *stream.Broker
}

// SetupRoutes wires every endpoint under the API group. Each group
// carries exactly the access gate its pages demand: browsing and
// shopping need a verified email, the dashboard needs a
// store-confirmed admin. The gate, not the auth middleware, turns
// away anonymous visitors so denials always carry a redirect target.
func SetupRoutes(rg *gin.RouterGroup, deps *Deps) {
	setupAuthRoutes(rg, deps)
	setupCatalogRoutes(rg, deps)
	setupCartRoutes(rg, deps)
	setupCheckoutRoutes(rg, deps)
	setupOrderRoutes(rg, deps)
	setupAdminRoutes(rg, deps)
}

func setupAuthRoutes(rg *gin.RouterGroup, deps *Deps) {
	authHandler := handlers.NewAuthHandler(deps.UserService, deps.RedisClient)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.GET("/verify-email", authHandler.VerifyEmail)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Config))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.POST("/resend-verification", authHandler.ResendVerification)
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
		}
	}
}

func setupCatalogRoutes(rg *gin.RouterGroup, deps *Deps) {
	catalogHandler := handlers.NewCatalogHandler()

	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(deps.Config))
	products.Use(middleware.Gate(middleware.RequiresVerifiedEmail, deps.Config, deps.RedisClient, deps.UserService, deps.Logger))
	{
		products.GET("", catalogHandler.ListItems)
		products.GET("/:id", catalogHandler.GetItem)
	}
}

func setupCartRoutes(rg *gin.RouterGroup, deps *Deps) {
	cartHandler := handlers.NewCartHandler(deps.CartService)

	cartGroup := rg.Group("/cart")
	cartGroup.Use(middleware.OptionalAuthMiddleware(deps.Config))
	cartGroup.Use(middleware.Gate(middleware.RequiresVerifiedEmail, deps.Config, deps.RedisClient, deps.UserService, deps.Logger))
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.POST("/items", cartHandler.AddItem)
		cartGroup.POST("/items/:id/increase", cartHandler.IncreaseItem)
		cartGroup.POST("/items/:id/decrease", cartHandler.DecreaseItem)
		cartGroup.DELETE("/items/:id", cartHandler.RemoveItem)
		cartGroup.DELETE("", cartHandler.ClearCart)
	}
}

func setupCheckoutRoutes(rg *gin.RouterGroup, deps *Deps) {
	checkoutHandler := handlers.NewCheckoutHandler(deps.CheckoutService, deps.UserService)

	checkoutGroup := rg.Group("/checkout")
	checkoutGroup.Use(middleware.OptionalAuthMiddleware(deps.Config))
	checkoutGroup.Use(middleware.Gate(middleware.RequiresVerifiedEmail, deps.Config, deps.RedisClient, deps.UserService, deps.Logger))
	{
		checkoutGroup.GET("/summary", checkoutHandler.GetSummary)
		checkoutGroup.POST("/review", checkoutHandler.BeginReview)
		checkoutGroup.POST("/back", checkoutHandler.Back)
		checkoutGroup.POST("/place", checkoutHandler.Place)
		checkoutGroup.POST("/continue", checkoutHandler.ContinueShopping)
	}
}

func setupOrderRoutes(rg *gin.RouterGroup, deps *Deps) {
	orderHandler := handlers.NewOrderHandler(deps.OrderService)

	orders := rg.Group("/orders")
	orders.Use(middleware.OptionalAuthMiddleware(deps.Config))
	orders.Use(middleware.Gate(middleware.RequiresVerifiedEmail, deps.Config, deps.RedisClient, deps.UserService, deps.Logger))
	{
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:id", orderHandler.GetOrder)
	}
}

func setupAdminRoutes(rg *gin.RouterGroup, deps *Deps) {
	adminHandler := handlers.NewAdminHandler(deps.Config, deps.RedisClient, deps.UserService, deps.AdminService, deps.OrderService, deps.Broker)

	admin := rg.Group("/admin")
	{
		// Public admin entry points
		admin.POST("/login", adminHandler.Login)
		admin.POST("/setup", adminHandler.Setup)

		// Dashboard endpoints, confirmed against the store
		dashboard := admin.Group("")
		dashboard.Use(middleware.OptionalAuthMiddleware(deps.Config))
		dashboard.Use(middleware.Gate(middleware.RequiresAdmin, deps.Config, deps.RedisClient, deps.UserService, deps.Logger))
		{
			dashboard.GET("/orders", adminHandler.ListOrders)
			dashboard.PUT("/orders/:id/status", adminHandler.UpdateOrderStatus)
			dashboard.DELETE("/orders/:id", adminHandler.DeleteOrder)
			dashboard.GET("/users", adminHandler.ListUsers)
			dashboard.DELETE("/users/:id", adminHandler.DeleteUser)
			dashboard.GET("/feed", adminHandler.Feed)
		}
	}
}
