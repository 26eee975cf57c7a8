package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/yourusername/univio-api/internal/config"
	"github.com/yourusername/univio-api/internal/handler"
	"github.com/yourusername/univio-api/internal/middleware"
	"github.com/yourusername/univio-api/internal/repository/postgres"
	supabaseRepo "github.com/yourusername/univio-api/internal/repository/supabase"
	"github.com/yourusername/univio-api/internal/service"
	"github.com/yourusername/univio-api/pkg/auth"
	"github.com/yourusername/univio-api/pkg/database"
	"github.com/yourusername/univio-api/pkg/logger"
	"github.com/yourusername/univio-api/pkg/supabase"
)

func main() {
	isProduction := os.Getenv("GIN_MODE") == gin.ReleaseMode

	appLog, err := logger.New(os.Getenv("GIN_MODE"))
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer appLog.Sync()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		appLog.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), !isProduction)
	if err != nil {
		appLog.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	if err := database.MigrateDB(db, appLog.Named("migrate")); err != nil {
		appLog.Fatal("failed to apply migrations", zap.Error(err))
	}

	// Redis is optional and only backs the send rate limiter.
	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled() {
		redisClient, err = database.NewUniversalRedisClient(ctx, cfg.Redis)
		if err != nil {
			appLog.Warn("redis unavailable, send routes are not rate limited", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Repositories
	verificationRepo := postgres.NewEmailVerificationRepo(db, postgres.WriteStrategyFromFlag(cfg.Verification.FastTemplates))
	catalogRepo := postgres.NewCatalogRepo(db)
	academicProfileRepo := postgres.NewAcademicProfileRepo(db)
	userRepo := postgres.NewUserRepo(db)
	healthRepo := postgres.NewHealthRepo(db)

	supabaseClient, err := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey, cfg.Supabase.AnonKey)
	if err != nil {
		appLog.Fatal("failed to build identity client", zap.Error(err))
	}
	accountDirectory := supabaseRepo.NewAccountDirectory(supabaseClient, appLog)

	// Services
	verificationService, err := service.NewVerificationService(verificationRepo, cfg.Verification.TTL, appLog)
	if err != nil {
		appLog.Fatal("failed to build verification service", zap.Error(err))
	}

	var emailService service.EmailService
	if cfg.Email.ResendAPIKey != "" {
		emailService, err = service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From, cfg.Verification.TTL, appLog)
	} else {
		appLog.Warn("RESEND_API_KEY is not set, emails are logged instead of sent")
		emailService, err = service.NewNoopEmailService(cfg.Verification.TTL, appLog)
	}
	if err != nil {
		appLog.Fatal("failed to build email service", zap.Error(err))
	}

	identityService := service.NewIdentityService(accountDirectory, appLog)
	accountService := service.NewAccountService(accountDirectory, accountDirectory, academicProfileRepo, cfg.Email.AppDomain, appLog)
	profileService := service.NewProfileService(accountDirectory, academicProfileRepo, appLog)
	userService := service.NewUserService(userRepo, accountDirectory, academicProfileRepo, emailService, appLog)
	catalogService := service.NewCatalogService(catalogRepo, appLog)
	diagnosticsService := service.NewDiagnosticsService(healthRepo, catalogRepo, verificationService, appLog)

	go verificationService.RunCleanup(ctx, cfg.Verification.CleanupInterval)

	// Handlers
	verificationHandler := handler.NewVerificationHandler(verificationService, emailService, identityService, appLog)
	accountHandler := handler.NewAccountHandler(accountService, identityService, appLog)
	profileHandler := handler.NewProfileHandler(profileService, appLog)
	userHandler := handler.NewUserHandler(userService, profileService, appLog)
	catalogHandler := handler.NewCatalogHandler(catalogService, appLog)
	diagnosticsHandler := handler.NewDiagnosticsHandler(diagnosticsService, verificationService, emailService, accountService, appLog)

	// Middleware
	tokenVerifier, err := auth.NewTokenVerifier(cfg.Supabase.JWTSecret)
	if err != nil {
		appLog.Warn("SUPABASE_JWT_SECRET is not set, profile routes reject every request", zap.Error(err))
	}
	var authMiddleware *middleware.AuthMiddleware
	if tokenVerifier != nil {
		authMiddleware = middleware.NewAuthMiddleware(tokenVerifier, appLog)
	}

	var sendLimit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if redisClient != nil {
		sendLimit = middleware.NewRateLimiter(redisClient, appLog).Limit(middleware.VerificationSendRateLimitConfig())
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(appLog))

	// Behind a load balancer add its address here.
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			appLog.Warn("failed to set trusted proxies", zap.Error(err))
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			appLog.Warn("failed to set trusted proxies", zap.Error(err))
		}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", diagnosticsHandler.Health)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", userHandler.Register)
			authGroup.POST("/send-verification", sendLimit, verificationHandler.SendEduVerification)
			authGroup.POST("/send-personal-verification", sendLimit, verificationHandler.SendPersonalVerification)
			authGroup.POST("/verify-code", verificationHandler.VerifyCode)
			authGroup.POST("/verify-personal-code", verificationHandler.VerifyPersonalCode)
			authGroup.POST("/send-welcome-email", verificationHandler.SendWelcomeEmail)
			authGroup.POST("/send-password-reset", accountHandler.SendPasswordReset)
		}

		users := api.Group("/users")
		if authMiddleware != nil {
			users.Use(authMiddleware.RequireAuth())
		} else {
			users.Use(func(c *gin.Context) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication is not configured", "error_type": "token_invalid"})
			})
		}
		{
			users.GET("/profile", profileHandler.GetProfile)
			users.PUT("/profile", profileHandler.UpdateProfile)
		}

		api.GET("/courses-by-institution", catalogHandler.ListCourses)
		api.POST("/courses-by-institution", catalogHandler.InstitutionCourses)
		api.GET("/courses-by-institution/export", catalogHandler.ExportCourses)

		if cfg.Diagnostics.Enabled {
			appLog.Warn("diagnostic routes are enabled")
			api.POST("/auth/fix-edu-verification", accountHandler.FixEduVerification)
			api.POST("/auth/fix-user", userHandler.FixUser)
			api.POST("/fix-missing-profile", userHandler.FixMissingProfile)
			api.POST("/clear-verification", diagnosticsHandler.ClearVerification)
			api.GET("/test-db", diagnosticsHandler.TestDB)
			api.GET("/test-db-tables", diagnosticsHandler.TestDBTables)
			api.POST("/test-email", diagnosticsHandler.TestEmail)
			api.POST("/debug-auth", diagnosticsHandler.DebugAuth)
			api.POST("/add-sample-courses", catalogHandler.AddSampleCourses)
			api.POST("/add-more-data", catalogHandler.AddMoreData)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		appLog.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("shutting down server")

	// Stops the cleanup loop.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	appLog.Info("server exited properly")
}
