// =============================
// File: internal/app/app.go
// =============================
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goldenbao/jinvault/internal/api"
	"github.com/goldenbao/jinvault/internal/config"
	"github.com/goldenbao/jinvault/internal/events"
	"github.com/goldenbao/jinvault/internal/metrics"
	"github.com/goldenbao/jinvault/internal/scheduler"
	"github.com/goldenbao/jinvault/internal/service"
	"github.com/goldenbao/jinvault/internal/session"
	"github.com/goldenbao/jinvault/internal/storage"
	"github.com/goldenbao/jinvault/internal/storage/memory"
	"github.com/goldenbao/jinvault/internal/storage/postgres"
)

const (
	eventBufferSize = 256
	busDrainTimeout = 10 * time.Second
)

// App собирает компоненты процесса и отвечает за их закрытие.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    storage.Storage
	sessions session.Store
	chain    service.ChainClient
	bus      *events.Bus
	metrics  *metrics.Collector
	runner   *service.CycleRunner
	shutdown *ShutdownHandler
}

// New создаёт хранилище, сессии, клиент цепочки и шину событий.
// При ошибке уже открытые ресурсы закрываются.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{
		cfg:      cfg,
		logger:   logger,
		shutdown: NewShutdownHandler(logger, busDrainTimeout),
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	// Шаг 1: история распределений
	if cfg.DatabaseURL != "" {
		pg, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.Protocol, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres storage: %w", err)
		}
		a.store = pg
	} else {
		logger.Warn("DATABASE_URL not set, distribution history is kept in memory")
		a.store = memory.New(cfg.Protocol)
	}
	a.shutdown.AddFunc("storage", func() error {
		a.store.Close()
		return nil
	})

	// Шаг 2: сессии администратора
	if cfg.SessionDBPath != "" {
		bolt, err := session.OpenBoltStore(cfg.SessionDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		a.sessions = bolt
	} else {
		a.sessions = session.NewMemoryStore()
	}
	a.shutdown.Add("sessions", a.sessions)

	// Шаг 3: цепочка, шина и запись результатов
	a.chain = service.New(cfg, logger)
	if init := a.chain.Initialize(ctx); !init.Ready {
		logger.Warn("Blockchain client not ready", zap.String("reason", init.Error))
	}

	a.bus = events.NewBus(logger, eventBufferSize)
	events.NewRecorder(a.store, logger).Attach(a.bus)
	a.metrics = metrics.NewCollector()
	a.metrics.Attach(a.bus)
	a.metrics.TrackGauge("events", "pending", "Events queued on the bus", func() float64 {
		return float64(a.bus.Pending())
	})
	a.shutdown.AddFunc("event bus", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), busDrainTimeout)
		defer cancel()
		return a.bus.Shutdown(ctx)
	})

	a.runner = service.NewCycleRunner(a.chain, a.store, a.bus, logger)
	return a, nil
}

func (a *App) Chain() service.ChainClient   { return a.chain }
func (a *App) Store() storage.Storage       { return a.store }
func (a *App) Runner() *service.CycleRunner { return a.runner }
func (a *App) Bus() *events.Bus             { return a.bus }

// RunServer запускает HTTP API, планировщик и очистку сессий и ждёт отмены ctx
// или первой ошибки одного из них.
func (a *App) RunServer(ctx context.Context) error {
	sessions := session.NewManager(a.sessions, session.DefaultTTL, a.logger)
	if a.cfg.AdminPassword == "" {
		a.logger.Warn("ADMIN_PASSWORD not set, admin login is disabled")
	}

	server := api.NewServer(api.Deps{
		Chain:         a.chain,
		Store:         a.store,
		Sessions:      sessions,
		Runner:        a.runner,
		Bus:           a.bus,
		AdminPassword: a.cfg.AdminPassword,
		GoldMint:      a.cfg.GoldMint,
		TokenMint:     a.cfg.TokenMint,
		Metrics:       a.metrics,
	}, a.logger)
	sched := scheduler.New(a.runner, a.cfg.DistributionInterval, a.logger)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Serve(gCtx, a.cfg.HTTPAddr) })
	g.Go(func() error { return sched.Start(gCtx) })
	g.Go(func() error { return sessions.RunSweeper(gCtx, session.DefaultSweepInterval) })

	return g.Wait()
}

// Close закрывает ресурсы в обратном порядке: шина (дописывает историю),
// сессии, хранилище.
func (a *App) Close() error {
	return a.shutdown.Shutdown()
}
