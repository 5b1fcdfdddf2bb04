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

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/padel-board-api/api/swagger"
	"github.com/noah-isme/padel-board-api/internal/handler"
	"github.com/noah-isme/padel-board-api/internal/middleware"
	"github.com/noah-isme/padel-board-api/internal/models"
	"github.com/noah-isme/padel-board-api/internal/repository"
	"github.com/noah-isme/padel-board-api/internal/service"
	"github.com/noah-isme/padel-board-api/internal/store"
	"github.com/noah-isme/padel-board-api/pkg/cache"
	"github.com/noah-isme/padel-board-api/pkg/config"
	"github.com/noah-isme/padel-board-api/pkg/database"
	"github.com/noah-isme/padel-board-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/padel-board-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/padel-board-api/pkg/middleware/requestid"
)

// @title Padel Board API
// @version 1.0.0
// @description Weekly padel class scheduling board
// @BasePath /api/v1
// @schemes http

type backend interface {
	Name() string
	Ping(ctx context.Context) error
	Load(ctx context.Context) (models.Dataset, error)
	SaveAll(ctx context.Context, ds models.Dataset) error
}

type sessionBackend interface {
	LoadCurrentUser(ctx context.Context) (*models.CurrentUser, error)
	SaveCurrentUser(ctx context.Context, user *models.CurrentUser) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	primary, closePrimary := openBackend(ctx, cfg, cfg.Persistence.Primary, logr)
	defer closePrimary()
	var fallback backend
	closeFallback := func() {}
	if cfg.Persistence.Fallback != "" && cfg.Persistence.Fallback != cfg.Persistence.Primary {
		fallback, closeFallback = openBackend(ctx, cfg, cfg.Persistence.Fallback, logr)
	}
	defer closeFallback()

	var sessionCache sessionBackend = repository.NewMemoryRepository()
	if sb, ok := fallback.(sessionBackend); ok {
		sessionCache = sb
	} else if sb, ok := primary.(sessionBackend); ok {
		sessionCache = sb
	}

	notices := service.NewNotices(0)
	metrics := service.NewMetricsService()
	validate := service.NewBoardValidator(cfg.Board.Days)

	gateway := service.NewPersistenceGateway(primary, fallback, sessionCache, service.GatewayConfig{
		Async:      cfg.Persistence.Async,
		Retries:    cfg.Persistence.Retries,
		RetryDelay: cfg.Persistence.RetryDelay,
		Timeout:    cfg.Persistence.Timeout,
	}, notices, metrics, logr)
	gateway.Start(ctx)

	st := store.New()
	session := store.NewAppContext(cfg.Board.SnapMinutes, time.Now)

	drag := service.NewDragService(st, session, gateway, cfg.Board, notices, metrics, validate, logr)
	sessions := service.NewSessionService(st, session, gateway, gateway, drag, notices, metrics, validate, logr)
	if err := sessions.Restore(ctx); err != nil {
		logr.Warn("board restored with warnings", zap.Error(err))
	}

	calendar := service.NewCalendarService(st, session, cfg.Board, logr)
	pingers := []handler.Pinger{primary}
	if fallback != nil {
		pingers = append(pingers, fallback)
	}
	h := handler.Handlers{
		Session:  handler.NewSessionHandler(sessions, notices),
		Calendar: handler.NewCalendarHandler(calendar, notices),
		Student:  handler.NewStudentHandler(service.NewStudentService(st, gateway, notices, validate, logr), notices),
		Monitor:  handler.NewMonitorHandler(service.NewMonitorService(st, session, gateway, notices, validate, logr), notices),
		Class:    handler.NewClassHandler(service.NewBookingService(st, session, gateway, cfg.Board, notices, metrics, validate, logr), notices),
		Drag:     handler.NewDragHandler(drag, notices),
		Metrics:  handler.NewMetricsHandler(metrics, pingers...),
	}
	if cfg.Exports.Enabled {
		h.Export = handler.NewExportHandler(service.NewExportService(calendar, st, session, logr, nil, nil))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.RegisterRoutes(r, handler.RouterConfig{APIPrefix: cfg.APIPrefix, EnableMetrics: cfg.Metrics.Enabled}, sessions, h)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "primary", primary.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown", zap.Error(err))
	}
	if err := gateway.Flush(shutdownCtx); err != nil {
		logr.Warn("pending saves not flushed", zap.Error(err))
	}
	gateway.Stop()
}

// openBackend connects the named backend. An unreachable remote backend is
// replaced by an in-memory one so the board still starts.
func openBackend(ctx context.Context, cfg *config.Config, name string, logr *zap.Logger) (backend, func()) {
	switch name {
	case config.BackendPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Warn("postgres unavailable, using memory", zap.Error(err))
			return repository.NewMemoryRepository(), func() {}
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			logr.Warn("postgres schema not ensured", zap.Error(err))
		}
		return repository.NewPostgresRepository(db), func() { _ = db.Close() }
	case config.BackendRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis, cfg.Persistence.Timeout)
		if err != nil {
			logr.Warn("redis unavailable, using memory", zap.Error(err))
			return repository.NewMemoryRepository(), func() {}
		}
		repo := repository.NewRedisRepository(client, cfg.Persistence.KeyPrefix, logr)
		return repo, func() { _ = repo.Close() }
	default:
		if name != config.BackendMemory {
			logr.Warn("unknown persistence backend, using memory", zap.String("backend", name))
		}
		return repository.NewMemoryRepository(), func() {}
	}
}
