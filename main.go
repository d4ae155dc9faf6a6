package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"main/config"
	"main/handler"
	"main/middleware"
	"main/repository"
	"main/services"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && os.Getenv("GO_ENV") != "test" {
		log.Printf("Warning: no .env file loaded: %v", err)
	}

	utils.InitValidator()
}

type application struct {
	sessions  *usecase.SessionManager
	twoFactor *usecase.TwoFactorManager
	users     *repository.UserRepo
	audit     *services.AuditLogger
	authCfg   config.AuthConfig
}

func setupRouter(app *application) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.RequestTracingMiddleware())
	router.Use(middleware.EnhancedRecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.EnforceHTTPS())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestSizeLimiter(1 << 20))
	router.Use(middleware.ValidateContentType())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limiter := middleware.NewRateLimiter(
		utils.GetEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		utils.GetEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 100),
		app.audit,
	)

	sessionHandler := handler.NewSessionHandler(app.sessions)
	twoFactorHandler := handler.NewTwoFactorHandler(app.twoFactor, app.users, app.audit)
	statsHandler := handler.NewStatsHandler(app.sessions, app.users)

	// Everything under /api carries a verified external identity
	api := router.Group("/api")
	api.Use(middleware.NoStoreMiddleware())
	api.Use(limiter.Middleware())
	api.Use(middleware.AuthMiddleware(app.authCfg))
	api.Use(middleware.CheckTokenRotation(app.sessions))

	sessions := api.Group("/sessions")
	{
		sessions.POST("", sessionHandler.CreateSession)
		sessions.GET("/config", sessionHandler.GetConfig)

		// The remaining session routes require a live session
		gated := sessions.Group("")
		gated.Use(middleware.RequireSession(app.sessions))
		{
			gated.GET("", sessionHandler.ListSessions)
			gated.GET("/current", sessionHandler.GetCurrentSession)
			gated.POST("/current/refresh", sessionHandler.RefreshSession)
			gated.POST("/logout", sessionHandler.Logout)
			gated.POST("/logout-all", sessionHandler.LogoutAll)
			gated.DELETE("/:id", sessionHandler.DeleteSession)
		}
	}

	twoFactor := api.Group("/2fa")
	twoFactor.Use(middleware.RequireSession(app.sessions))
	{
		twoFactor.POST("/setup", twoFactorHandler.Setup)
		twoFactor.POST("/verify-setup", twoFactorHandler.VerifySetup)
		twoFactor.POST("/verify", twoFactorHandler.Verify)
		twoFactor.POST("/disable", twoFactorHandler.Disable)
		twoFactor.GET("/status", twoFactorHandler.Status)
		twoFactor.POST("/regenerate-backup-codes", twoFactorHandler.RegenerateBackupCodes)
	}

	security := api.Group("/security")
	security.Use(middleware.RequireSession(app.sessions))
	security.Use(middleware.EnforceAdminTwoFactor(app.users, app.audit))
	{
		security.GET("/stats", statsHandler.GetSecurityStats)
	}

	return router
}

func main() {
	dbCfg := config.LoadDatabaseConfig()
	redisCfg := config.LoadRedisConfig()
	twoFactorCfg := config.LoadTwoFactorConfig()

	sessionCfg, err := config.LoadSessionConfig()
	if err != nil {
		log.Fatalf("Invalid session configuration: %v", err)
	}

	authCfg, err := config.LoadAuthConfig()
	if err != nil {
		log.Fatalf("Invalid auth configuration: %v", err)
	}

	client, err := config.NewMongoClient(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Warning: MongoDB disconnect failed: %v", err)
		}
	}()

	if err := repository.SetupIndexes(client.Database(dbCfg.DatabaseName)); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	var cache *services.SessionCache
	if redisCfg.Enabled {
		cache, err = services.NewSessionCache(redisCfg.URL)
		if err != nil {
			log.Printf("Warning: Redis unavailable, session cache disabled: %v", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	audit := services.NewAuditLogger(client, dbCfg.DatabaseName)
	sessionRepo := repository.NewSessionRepo(client, dbCfg.DatabaseName, cache)
	userRepo := repository.NewUserRepo(client, dbCfg.DatabaseName)

	app := &application{
		sessions:  usecase.NewSessionManager(sessionRepo, audit, sessionCfg),
		twoFactor: usecase.NewTwoFactorManager(twoFactorCfg, audit),
		users:     userRepo,
		audit:     audit,
		authCfg:   authCfg,
	}

	// Periodic sweep so abandoned sessions are reclaimed even if never
	// touched again
	sweepInterval := utils.GetEnvAsDuration("SESSION_CLEANUP_INTERVAL", time.Hour)
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if n := app.sessions.CleanupExpiredSessions(ctx); n > 0 {
				log.Printf("Reclaimed %d expired sessions", n)
			}
			cancel()
		}
	}()

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			sessions, err := sessionRepo.GetAllActiveSessions(ctx)
			if err == nil {
				utils.ActiveSessions.Set(float64(len(sessions)))
			}
			cancel()
		}
	}()

	router := setupRouter(app)

	port := utils.GetEnvAsString("PORT", "8080")
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	sig := <-signalChan
	log.Printf("Caught signal %s, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: server shutdown: %v", err)
	}
}
