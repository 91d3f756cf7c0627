package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"secondhand_market/internal/config"
	"secondhand_market/internal/handler"
	"secondhand_market/internal/middleware"
	"secondhand_market/internal/repository"
	"secondhand_market/internal/service"
	"secondhand_market/internal/ws"
	"secondhand_market/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var appLogger logger.Logger
	if cfg.IsProduction() {
		appLogger = logger.New(cfg.Log.Level)
	} else {
		appLogger = logger.NewConsole(cfg.Log.Level)
	}

	dbPool, err := repository.NewPool(context.Background(), cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		appLogger.Fatal("Failed to ping database", "error", err)
	}
	appLogger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(context.Background(), dbPool, appLogger); err != nil {
			appLogger.Fatal("Failed to migrate database", "error", err)
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	repos := repository.NewRepositories(dbPool, rdb, appLogger)
	tx := repository.NewTransactor(dbPool, rdb, appLogger)

	// the relay lets several instances share room and user channels
	var relay *redis.Client
	if cfg.Redis.RelayEnabled {
		relay = rdb
	}
	hub := ws.NewHub(relay, cfg.Redis.RelayChannel, appLogger)
	go hub.Run()

	services := service.NewServices(repos, tx, hub, cfg, appLogger)

	authMiddleware := middleware.NewAuthMiddleware(services.Identity, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, appLogger)

	handlers := handler.NewHandlers(services, hub, cfg, appLogger)

	router := setupRouter(handlers, authMiddleware, rateLimitMiddleware, cfg, appLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}
	hub.Stop()

	appLogger.Info("Server exited")
}

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
	log logger.Logger,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler(log))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/api/health", handlers.Health.Check)

	// Realtime gateway, authenticated by the handshake token
	router.GET("/ws", handlers.WebSocket.Connect)

	api := router.Group("/api")
	api.Use(authMiddleware.RequireAuth())
	{
		chats := api.Group("/chats")
		{
			chats.POST("", handlers.Chat.CreateRoom)
			chats.GET("", handlers.Chat.ListRooms)
			chats.GET("/:id", handlers.Chat.GetRoom)
			chats.POST("/:id/messages", rateLimitMiddleware.Limit(service.ActionSendMessage), handlers.Chat.SendMessage)
		}

		offers := api.Group("/offers")
		{
			offers.POST("", rateLimitMiddleware.Limit(service.ActionCreateOffer), handlers.Offer.CreateOffer)
			offers.PATCH("/:id/accept", handlers.Offer.Accept)
			offers.PATCH("/:id/reject", handlers.Offer.Reject)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", handlers.Notification.List)
			notifications.PATCH("/read-all", handlers.Notification.MarkAllRead)
			notifications.PATCH("/:id/read", handlers.Notification.MarkRead)
		}
	}

	return router
}
