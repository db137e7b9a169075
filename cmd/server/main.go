package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/room-timeline/internal/config"
	"github.com/iliyamo/room-timeline/internal/database"
	"github.com/iliyamo/room-timeline/internal/handler"
	"github.com/iliyamo/room-timeline/internal/logging"
	"github.com/iliyamo/room-timeline/internal/middleware"
	"github.com/iliyamo/room-timeline/internal/queue"
	"github.com/iliyamo/room-timeline/internal/repository"
	"github.com/iliyamo/room-timeline/internal/router"
	"github.com/iliyamo/room-timeline/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("mysql connect failed", zap.Error(err))
	}
	defer db.Close()

	// Redis is optional: without it sessions stay in memory and the cache
	// and rate limiter are disabled.
	var (
		rdb   *redis.Client
		store handler.SelectionStore
	)
	if c, err := config.NewRedisClient(config.LoadRedisConfig()); err != nil {
		logger.Warn("redis unavailable, using in-memory selection store", zap.Error(err))
		store = repository.NewMemorySelectionStore(cfg.SelectionTTL)
	} else {
		rdb = c
		defer rdb.Close()
		store = repository.NewRedisSelectionStore(rdb, "selection", cfg.SelectionTTL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AuditConsumer {
		consumer := &queue.AuditConsumer{URL: cfg.AMQPURL, Path: cfg.AuditLogPath, Log: logger.Named("audit")}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("audit consumer stopped", zap.Error(err))
			}
		}()
	}

	cacheCfg := config.LoadCacheConfig()
	notify := handler.Notifier{
		Events: service.NewPublisher(cfg.AMQPURL, logger.Named("publisher")),
		Invalidate: func(ctx context.Context) error {
			if !cacheCfg.Enabled {
				return nil
			}
			_, err := middleware.InvalidateCache(ctx, rdb, cacheCfg.Prefix)
			return err
		},
		Log: logger,
	}

	rooms := repository.NewRoomRepo(db)
	beds := repository.NewBedConfigRepo(db)
	reservations := repository.NewReservationRepo(db)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger.Named("ratelimit")))

	router.RegisterRoutes(e, db)
	router.RegisterBrowse(e,
		handler.NewBrowseHandler(rooms, beds, reservations, handler.TimelineDefaults{
			Days:        cfg.ViewportDays,
			ColumnWidth: cfg.ColumnWidth,
			Location:    cfg.Location,
		}, logger),
		middleware.NewRedisCache(cacheCfg, rdb, logger.Named("cache")))
	router.RegisterSelection(e,
		handler.NewSelectionHandler(store, rooms, beds, reservations, notify, cfg.SelectionSecret, cfg.SelectionTTL, logger),
		cfg.SelectionSecret)
	router.RegisterReservations(e, handler.NewReservationHandler(reservations, notify, logger))

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
