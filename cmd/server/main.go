package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	billingapp "github.com/weighbridge/backend/internal/application/billing"
	refdataapp "github.com/weighbridge/backend/internal/application/refdata"
	reportapp "github.com/weighbridge/backend/internal/application/report"
	weighmentapp "github.com/weighbridge/backend/internal/application/weighment"
	"github.com/weighbridge/backend/internal/infrastructure/auth"
	"github.com/weighbridge/backend/internal/infrastructure/cache"
	"github.com/weighbridge/backend/internal/infrastructure/config"
	"github.com/weighbridge/backend/internal/infrastructure/event"
	"github.com/weighbridge/backend/internal/infrastructure/logger"
	"github.com/weighbridge/backend/internal/infrastructure/persistence"
	"github.com/weighbridge/backend/internal/interfaces/http/handler"
	"github.com/weighbridge/backend/internal/interfaces/http/middleware"
	"github.com/weighbridge/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting weighbridge backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Cache store: redis when configured, in-process otherwise
	var store cache.Store
	if cfg.Redis.Host != "" {
		redisStore, err := cache.NewRedisStore(cache.RedisConfig{
			Addr:     cfg.Redis.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		store = redisStore
		log.Info("Redis cache connected", zap.String("host", cfg.Redis.Host))
	} else {
		store = cache.NewInMemoryStore()
		log.Warn("Redis not configured, using in-process cache")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing cache store", zap.Error(err))
		}
	}()

	// Repositories
	allocator := persistence.NewGormCounterAllocator(db.DB)
	entryRepo := persistence.NewGormEntryRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	plantRepo := persistence.NewGormPlantRepository(db.DB)
	vehicleRepo := persistence.NewGormVehicleRepository(db.DB)
	materialRepo := persistence.NewGormMaterialRepository(db.DB)

	// Event bus with the dashboard projection invalidator
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewDashboardInvalidator(store, log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	tolerance := decimal.NewFromFloat(cfg.Weighbridge.VarianceTolerancePercent)

	entryService := weighmentapp.NewEntryService(
		entryRepo, vendorRepo, vehicleRepo, materialRepo,
		eventBus, store, cfg.Cache.ShortTTL, tolerance, log,
	)
	invoiceService := billingapp.NewInvoiceService(
		invoiceRepo, entryRepo, allocator, eventBus,
		store, cfg.Cache.ShortTTL, cfg.Weighbridge.InvoiceDueDays, log,
	)
	vendorService := refdataapp.NewVendorService(vendorRepo, plantRepo, allocator, store, cfg.Cache.LongTTL, log)
	plantService := refdataapp.NewPlantService(plantRepo, allocator, store, cfg.Cache.LongTTL, log)
	vehicleService := refdataapp.NewVehicleService(vehicleRepo, allocator, store, cfg.Cache.LongTTL, log)
	materialService := refdataapp.NewMaterialService(materialRepo, allocator, store, cfg.Cache.LongTTL, log)
	dashboardService := reportapp.NewDashboardService(entryRepo, invoiceRepo, store, cfg.Cache.ShortTTL, log)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	systemHandler := handler.NewSystemHandler(db, version)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(middleware.Auth(jwtService)),
	)
	r.Register(handler.NewEntryHandler(entryService))
	r.Register(handler.NewInvoiceHandler(invoiceService))
	r.Register(handler.NewVendorHandler(vendorService))
	r.Register(handler.NewPlantHandler(plantService))
	r.Register(handler.NewVehicleHandler(vehicleService))
	r.Register(handler.NewMaterialHandler(materialService))
	r.Register(handler.NewDashboardHandler(dashboardService))
	r.Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
