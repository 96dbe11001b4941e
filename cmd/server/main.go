package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tripslot/attractions-backend/internal/config"
	"github.com/tripslot/attractions-backend/internal/database"
	"github.com/tripslot/attractions-backend/internal/handlers"
	"github.com/tripslot/attractions-backend/internal/middleware"
	"github.com/tripslot/attractions-backend/internal/services"
	"github.com/tripslot/attractions-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting TripSlot Attractions Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Type assertion needed: db is interface DB, but the booking
	// repository needs *sqlx.DB for transactions
	sqlxDB, ok := db.(*database.PostgresDB)
	if !ok {
		logger.Fatal("Failed to cast database connection to PostgresDB")
	}

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	attractionRepository := database.NewAttractionRepository(db)
	reviewRepository := database.NewReviewRepository(db)
	bookingRepository := database.NewBookingRepository(sqlxDB.DB)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.TokenExpiry)

	var auditService *services.AuditService
	if cfg.Security.EnableAuditLog {
		auditService = services.NewAuditService(db)
	}

	fraudGuardService := services.NewFraudGuardService(
		bookingRepository,
		userRepository,
		auditService,
		logger,
		services.FraudGuardConfig{
			MaxRequestedBookings: cfg.Booking.MaxRequestedPerUser,
			Window:               cfg.Booking.FraudWindow,
			SpendLimit:           cfg.Booking.SpendLimit,
		},
	)

	bookingService := services.NewBookingService(
		userRepository,
		attractionRepository,
		bookingRepository,
		fraudGuardService,
		auditService,
		logger,
		services.BookingLimitsConfig{
			MaxGuestsPerBooking: cfg.Booking.MaxGuestsPerBooking,
			CostCeiling:         cfg.Booking.CostCeiling,
			BookingWindowDays:   cfg.Booking.BookingWindowDays,
		},
	)

	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepository, jwtService, auditService, logger, cfg.Security.BcryptCost)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	attractionHandler := handlers.NewAttractionHandler(attractionRepository, bookingRepository, logger)
	reviewHandler := handlers.NewReviewHandler(reviewRepository, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthCheckHandler(db))

	authRequired := middleware.AuthMiddleware(jwtService, logger)
	adminOnly := middleware.RequireAdmin()

	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		protected := auth.Group("")
		protected.Use(authRequired)
		{
			protected.GET("/users", adminOnly, authHandler.ListUsers)
			protected.GET("/user/:user_id", authHandler.GetUser)
			protected.PUT("/update", authHandler.UpdateAccount)
			protected.DELETE("/delete/:user_id", authHandler.DeleteAccount)
			protected.POST("/unlock/:user_id", adminOnly, authHandler.UnlockUser)
		}
	}

	attractions := router.Group("/attractions")
	{
		attractions.GET("/all", attractionHandler.ListAttractions)
		attractions.GET("/:attraction_id", attractionHandler.GetAttraction)

		adminAttractions := attractions.Group("")
		adminAttractions.Use(authRequired, adminOnly)
		{
			adminAttractions.POST("/create", attractionHandler.CreateAttraction)
			adminAttractions.PUT("/update/:attraction_id", attractionHandler.UpdateAttraction)
			adminAttractions.DELETE("/delete/:attraction_id", attractionHandler.DeleteAttraction)
		}
	}

	booking := router.Group("/booking")
	booking.Use(authRequired)
	{
		booking.POST("/new", bookingHandler.CreateBooking)
		booking.GET("/my_bookings", bookingHandler.MyBookings)

		adminBooking := booking.Group("")
		adminBooking.Use(adminOnly)
		{
			adminBooking.POST("/admin/:user_id", bookingHandler.AdminCreateBooking)
			adminBooking.GET("/all", bookingHandler.ListBookings)
			adminBooking.PUT("/:booking_id", bookingHandler.UpdateBooking)
			adminBooking.DELETE("/delete/:booking_id", bookingHandler.DeleteBooking)
		}
	}

	review := router.Group("/review")
	{
		review.GET("/:attraction_id", reviewHandler.GetReviews)

		protectedReview := review.Group("")
		protectedReview.Use(authRequired)
		{
			protectedReview.POST("/create/:attraction_id", reviewHandler.CreateReview)
			protectedReview.GET("/my_reviews", reviewHandler.MyReviews)
			protectedReview.PUT("/update/:review_id", reviewHandler.UpdateReview)
			protectedReview.DELETE("/delete/:review_id", reviewHandler.DeleteReview)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
