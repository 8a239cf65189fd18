package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/practice-backend/internal/catalog"
	"github.com/yungbote/practice-backend/internal/data/db"
	apphttp "github.com/yungbote/practice-backend/internal/http"
	"github.com/yungbote/practice-backend/internal/jobs"
	"github.com/yungbote/practice-backend/internal/observability"
	"github.com/yungbote/practice-backend/internal/platform/calendar"
	"github.com/yungbote/practice-backend/internal/platform/envutil"
	"github.com/yungbote/practice-backend/internal/platform/logger"
	"github.com/yungbote/practice-backend/internal/realtime"
)

const serviceName = "practice-backend"

const rateLimitSweepInterval = time.Minute

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics
	Calendar calendar.Calendar

	dbService    *db.DatabaseService
	middleware   Middleware
	scheduler    *jobs.Scheduler
	server       *apphttp.Server
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

func NewLogger() (*logger.Logger, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDatabase connects with the configured driver and migrates the schema.
func OpenDatabase(log *logger.Logger, cfg Config) (*db.DatabaseService, error) {
	dbs, err := db.NewDatabaseService(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbs.DB()); err != nil {
		_ = dbs.Close()
		return nil, fmt.Errorf("%s automigrate: %w", dbs.Driver(), err)
	}
	return dbs, nil
}

func New(ctx context.Context, log *logger.Logger) (*App, error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	cal, err := calendar.Load(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Env,
		Version:     cfg.Version,
	})
	metrics := observability.Init(log)

	dbs, err := OpenDatabase(log, cfg)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, err
	}
	theDB := dbs.DB()

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = dbs.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	ssehub := realtime.NewSSEHub(log)
	ssehub.SetMetrics(metrics)

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(serviceDeps{
		DB:       theDB,
		Log:      log,
		Clock:    clock.New(),
		Calendar: cal,
		Catalog:  cat,
		Cfg:      cfg,
		Repos:    reposet,
		Hub:      ssehub,
		Clients:  clients,
		Metrics:  metrics,
	})
	if err != nil {
		clients.Close()
		_ = dbs.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset, ssehub, theDB, clients.Redis)
	middleware := wireMiddleware(log, cfg, serviceset, metrics)
	router := wireRouter(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		SSEHub:       ssehub,
		Metrics:      metrics,
		Calendar:     cal,
		dbService:    dbs,
		middleware:   middleware,
		server:       apphttp.NewServer(cfg.Addr(), router),
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background work: the redis fan-out forwarder, the goal reset
// schedule, metric collectors and rate limiter housekeeping.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.SSEBus != nil {
		if err := a.Clients.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
		a.Log.Info("SSE redis forwarder started", "channel", a.Cfg.RedisChannel)
	}

	if a.Cfg.GoalResetCron != "" {
		a.scheduler = jobs.NewScheduler(a.Log, a.Calendar.Location(), a.Cfg.JobTimeout)
		if err := a.scheduler.Register(a.Cfg.GoalResetCron, jobs.NewGoalResetJob(a.Log, a.Services.Goals)); err != nil {
			return err
		}
		a.scheduler.Start()
	}

	if a.Metrics != nil {
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
		if a.Clients.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
		}
	}

	go func() {
		t := time.NewTicker(rateLimitSweepInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				a.middleware.RateLimit.Sweep()
			}
		}
	}()
	return nil
}

func (a *App) Run() error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", a.server.Addr())
	return a.server.Run()
}

// Shutdown drains HTTP, stops background work and releases connections.
// Later calls are no-ops.
func (a *App) Shutdown(ctx context.Context) {
	if a == nil {
		return
	}
	a.shutdownOnce.Do(func() { a.shutdown(ctx) })
}

func (a *App) shutdown(ctx context.Context) {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.Log.Warn("HTTP shutdown", "error", err)
		}
	}
	if a.scheduler != nil {
		a.scheduler.Stop(ctx)
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("database close", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	a.Log.Sync()
}
