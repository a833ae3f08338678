// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/freshloaf/storefront-backend/internal/config"
	"github.com/freshloaf/storefront-backend/internal/domain/cart"
	"github.com/freshloaf/storefront-backend/internal/domain/checkout"
	"github.com/freshloaf/storefront-backend/internal/domain/order"
	"github.com/freshloaf/storefront-backend/internal/domain/user"
	"github.com/freshloaf/storefront-backend/internal/interfaces/http/middleware"
	"github.com/freshloaf/storefront-backend/internal/interfaces/http/routes"
	"github.com/freshloaf/storefront-backend/internal/pkg/email"
	"github.com/freshloaf/storefront-backend/internal/pkg/stream"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	gin         *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
	logger      *logrus.Logger
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	return &Server{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		logger:      middleware.NewLogger(cfg),
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on environment
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Create Gin engine
	s.gin = gin.New()

	// Setup middleware
	s.setupMiddleware()

	// Setup routes
	s.setupRoutes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	log.Printf("🚀 HTTP Server starting on port %s", s.config.Server.Port)
	log.Printf("🌐 API Base URL: http://localhost:%s/api/v1", s.config.Server.Port)
	log.Printf("📊 Health Check: http://localhost:%s/health", s.config.Server.Port)

	// Start server
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	log.Println("🛑 Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	log.Println("✅ HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	// Recovery middleware, returning JSON with a reload hint instead of
	// a bare 500 page
	s.gin.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		s.logger.WithField("panic", recovered).Error("Recovered from panic")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Something went wrong. Please reload and try again.",
			"reload": true,
		})
		c.Abort()
	}))

	// Custom logger middleware
	s.gin.Use(middleware.Logger(s.logger))

	// Request ID middleware
	s.gin.Use(middleware.RequestID())

	// CORS middleware
	s.gin.Use(middleware.CORS(s.config))

	// Security headers middleware
	s.gin.Use(middleware.SecurityHeaders())

	// Rate limiting middleware
	s.gin.Use(middleware.RateLimit(s.config, s.redisClient))

	// Timeout middleware
	s.gin.Use(middleware.Timeout(30 * time.Second))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	// Health check endpoints (no auth required)
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	deps := s.buildDeps()

	// API v1 routes
	apiV1 := s.gin.Group("/api/v1")
	routes.SetupRoutes(apiV1, deps)

	// Root endpoint
	s.gin.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":     "Fresh Loaf Storefront API",
			"version":     s.config.App.Version,
			"environment": s.config.App.Environment,
			"health":      "/health",
			"endpoints": gin.H{
				"auth":     "/api/v1/auth",
				"products": "/api/v1/products",
				"cart":     "/api/v1/cart",
				"checkout": "/api/v1/checkout",
				"orders":   "/api/v1/orders",
				"admin":    "/api/v1/admin",
			},
		})
	})

	// Unknown paths route back to the storefront
	s.gin.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":    "Not found",
			"redirect": "/",
		})
	})
}

// buildDeps constructs the service graph behind the routes
func (s *Server) buildDeps() *routes.Deps {
	mailer := email.NewService(s.config, s.logger)
	broker := stream.NewBroker(s.redisClient, s.logger)

	userService := user.NewService(s.db, s.redisClient, s.config, mailer, s.logger)

	cartService, err := cart.NewService(s.redisClient, s.config)
	if err != nil {
		// Misconfigured rates are unrecoverable.
		log.Fatalf("❌ Invalid checkout configuration: %v", err)
	}

	orderService := order.NewService(s.db, broker)
	checkoutService := checkout.NewService(s.redisClient, s.config, cartService, orderService)
	adminService := user.NewAdminService(s.db, s.redisClient, orderService, broker)

	return &routes.Deps{
		Config:          s.config,
		RedisClient:     s.redisClient,
		Logger:          s.logger,
		UserService:     userService,
		AdminService:    adminService,
		CartService:     cartService,
		OrderService:    orderService,
		CheckoutService: checkoutService,
		Broker:          broker,
	}
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	// Check database health
	sqlDB, err := s.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database connection error",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database ping failed",
		})
		return
	}

	// Check Redis health
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "redis ping failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
	})
}
