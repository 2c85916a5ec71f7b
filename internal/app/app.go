package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-intelligence/internal/data/db"
	"github.com/yungbote/neurobridge-intelligence/internal/events"
	httpx "github.com/yungbote/neurobridge-intelligence/internal/http"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/config"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/keylock"
	"github.com/yungbote/neurobridge-intelligence/internal/observability"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

const serviceName = "intelligence-engine"

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Tunables config.Tunables
	Metrics  *observability.Metrics
	Locker   keylock.Locker
	Repos    Repos
	Services Services

	redis        goredis.UniversalClient
	nats         *nats.Conn
	subscriber   *events.Subscriber
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New builds the app from the environment.
func New() (*App, error) {
	cfg := LoadConfig()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	a, err := Build(cfg, log, nil)
	if err != nil {
		if otelShutdown != nil {
			_ = otelShutdown(context.Background())
		}
		log.Sync()
		return nil, err
	}
	a.otelShutdown = otelShutdown
	return a, nil
}

// Build wires the app around cfg. A nil gdb opens the database named by
// cfg.DBDriver.
func Build(cfg Config, log *logger.Logger, gdb *gorm.DB) (*App, error) {
	tunables, err := config.Load(cfg.EngineConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load engine config: %w", err)
	}

	if gdb == nil {
		log.Info("Opening database...", "driver", cfg.DBDriver)
		gdb, err = db.Open(cfg.DBDriver, cfg.SQLitePath, func() (*db.PostgresService, error) {
			return db.NewPostgresService(log)
		})
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		if err := db.AutoMigrateAll(gdb); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	a := &App{
		Log:      log,
		DB:       gdb,
		Cfg:      cfg,
		Tunables: tunables,
		Metrics:  metrics,
	}
	a.Locker = a.wireLocker()
	a.Repos = wireRepos(gdb, log)
	a.Services, err = wireServices(log, cfg, tunables, a.Repos, a.Locker, metrics)
	if err != nil {
		return nil, err
	}
	handlerset := wireHandlers(log, cfg, gdb, a.Services, a.Locker)
	middleware := wireMiddleware(log, cfg)
	a.Router = wireRouter(log, cfg, metrics, handlerset, middleware)
	return a, nil
}

func (a *App) wireLocker() keylock.Locker {
	if a.Cfg.RedisAddr == "" {
		return keylock.NewLocal(0)
	}
	a.redis = goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:    []string{a.Cfg.RedisAddr},
		Password: a.Cfg.RedisPassword,
		DB:       a.Cfg.RedisDB,
	})
	a.Log.Info("Using redis key lock", "addr", a.Cfg.RedisAddr)
	return keylock.NewRedis(a.Log, a.redis, keylock.RedisOptions{TTL: a.Cfg.LockTTL})
}

// Start launches background consumers. The HTTP server is started by Run.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Cfg.NATSURL == "" {
		return nil
	}
	nc, err := events.Connect(a.Cfg.NATSURL, a.Log)
	if err != nil {
		return err
	}
	a.nats = nc
	a.subscriber = events.NewSubscriber(nc, events.Config{
		URL:           a.Cfg.NATSURL,
		SubjectPrefix: a.Cfg.NATSSubjectPrefix,
		Queue:         a.Cfg.NATSQueue,
	}, events.NewHandler(a.Services.Mastery, a.Services.Retention), a.Log, a.Metrics)
	return a.subscriber.Start(ctx)
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("HTTP server listening", "addr", addr)
	return httpx.NewServer(a.Router).Run(ctx, addr, a.Cfg.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.subscriber != nil {
		a.subscriber.Close()
	}
	if a.nats != nil {
		if err := a.nats.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			a.Log.Warn("NATS drain failed", "error", err)
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
