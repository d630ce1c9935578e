package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-property-booking/internal/api"
	"github.com/sanosuguru/go-property-booking/internal/api/handler"
	apimiddleware "github.com/sanosuguru/go-property-booking/internal/api/middleware"
	"github.com/sanosuguru/go-property-booking/internal/application"
	"github.com/sanosuguru/go-property-booking/internal/config"
	"github.com/sanosuguru/go-property-booking/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-property-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-property-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-property-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-property-booking/internal/pkg/token"
	"github.com/sanosuguru/go-property-booking/internal/worker"
)

func main() {
	cfg := config.Load()

	env := os.Getenv("APP_ENV")
	log := logger.NewLogger(env)
	logger.Set(log)
	defer logger.Sync()

	// データベース接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	// Redis接続
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisinfra.Ping(pingCtx, redisClient); err != nil {
		logger.Fatal("Redis接続エラー", zap.Error(err))
	}
	pingCancel()

	// メトリクス
	m := metrics.Init()

	// リポジトリとサービスの組み立て
	userRepo := postgres.NewUserRepository(db)
	propertyRepo := postgres.NewPropertyRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	txManager := postgres.NewTxManager(db)

	lockManager := redisinfra.NewLockManager(redisClient)
	availCache := redisinfra.NewAvailabilityCache(redisClient)

	tokenManager := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	userService := application.NewUserService(userRepo, tokenManager)
	propertyService := application.NewPropertyService(propertyRepo, bookingRepo, userRepo)
	bookingService := application.NewBookingService(txManager, bookingRepo, propertyRepo, userRepo, lockManager, availCache, m)

	userHandler := handler.NewUserHandler(userService)
	propertyHandler := handler.NewPropertyHandler(propertyService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	healthHandler := handler.NewHealthHandler()

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	apimiddleware.SetupMiddleware(e)
	e.Use(apimiddleware.PrometheusMiddleware(m))

	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), apimiddleware.MetricsBasicAuth())

	auth := apimiddleware.RequireAuth(tokenManager)

	v1 := e.Group("/api/v1")
	v1.POST("/users/signup", userHandler.Signup)
	v1.POST("/users/login", userHandler.Login)
	v1.GET("/users/me", userHandler.Me, auth)

	v1.GET("/properties", propertyHandler.List)
	v1.POST("/properties", propertyHandler.Create, auth)
	v1.GET("/properties/mine", propertyHandler.Mine, auth)
	v1.GET("/properties/:id", propertyHandler.GetByID)
	v1.DELETE("/properties/:id", propertyHandler.Delete, auth)
	v1.GET("/properties/:id/bookings", bookingHandler.ListForProperty, auth)
	v1.GET("/properties/:id/availability", bookingHandler.Availability)

	v1.POST("/bookings", bookingHandler.Create, auth)
	v1.GET("/bookings/my-bookings", bookingHandler.MyBookings, auth)

	// 稼働状況レポーター起動
	workerCtx, workerCancel := context.WithCancel(context.Background())
	occupancyReporter := worker.NewOccupancyReporter(bookingRepo, m, cfg.Worker.OccupancyInterval)
	go occupancyReporter.Start(workerCtx)

	// サーバー起動
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	workerCancel()
	occupancyReporter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
