// =============================
// File: internal/api/server.go
// =============================
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/events"
	"github.com/goldenbao/jinvault/internal/metrics"
	"github.com/goldenbao/jinvault/internal/service"
	"github.com/goldenbao/jinvault/internal/session"
	"github.com/goldenbao/jinvault/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// DistributionRunner запускает цикл распределения вне расписания.
type DistributionRunner interface {
	Run(ctx context.Context, trigger string) (*domain.DistributionRecord, error)
}

// Deps - зависимости HTTP API.
type Deps struct {
	Chain         service.ChainClient
	Store         storage.Storage
	Sessions      *session.Manager
	Runner        DistributionRunner
	Bus           *events.Bus
	AdminPassword string
	GoldMint      string
	TokenMint     string
	// Metrics, если задан, доступен на GET /metrics.
	Metrics *metrics.Collector
}

// Server обслуживает административный и публичный API.
type Server struct {
	chain         service.ChainClient
	store         storage.Storage
	sessions      *session.Manager
	runner        DistributionRunner
	bus           *events.Bus
	hub           *Hub
	adminPassword string
	goldMint      string
	tokenMint     string
	metrics       *metrics.Collector
	logger        *zap.Logger
}

func NewServer(deps Deps, logger *zap.Logger) *Server {
	logger = logger.Named("api")
	s := &Server{
		chain:         deps.Chain,
		store:         deps.Store,
		sessions:      deps.Sessions,
		runner:        deps.Runner,
		bus:           deps.Bus,
		hub:           NewHub(logger),
		adminPassword: deps.AdminPassword,
		goldMint:      deps.GoldMint,
		tokenMint:     deps.TokenMint,
		metrics:       deps.Metrics,
		logger:        logger,
	}
	if s.bus != nil {
		s.bus.SubscribeAll(s.hub)
	}
	if s.metrics != nil {
		s.metrics.TrackGauge("api", "websocket_clients", "Connected live-feed clients", func() float64 {
			return float64(s.hub.Clients())
		})
	}
	return s
}

// Handler возвращает маршрутизатор со всеми маршрутами.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Администрирование
	mux.HandleFunc("POST /api/admin/login", s.handleLogin)
	mux.HandleFunc("POST /api/admin/logout", s.requireAdmin(s.handleLogout))
	mux.HandleFunc("GET /api/admin/status", s.requireAdmin(s.handleStatus))
	mux.HandleFunc("GET /api/admin/config", s.requireAdmin(s.handleGetConfig))
	mux.HandleFunc("PATCH /api/admin/config", s.requireAdmin(s.handlePatchConfig))
	mux.HandleFunc("POST /api/admin/distributions/claim-fees", s.requireAdmin(s.handleClaimFees))
	mux.HandleFunc("POST /api/admin/distributions/execute", s.requireAdmin(s.handleExecute))
	mux.HandleFunc("GET /api/admin/distributions", s.requireAdmin(s.handleListDistributions))
	mux.HandleFunc("GET /api/admin/distributions/{id}", s.requireAdmin(s.handleGetDistribution))

	// Ручные операции для отладки
	mux.HandleFunc("GET /api/admin/test/holders", s.requireAdmin(s.handleTestHolders))
	mux.HandleFunc("POST /api/admin/test/buyback", s.requireAdmin(s.handleTestBuyback))
	mux.HandleFunc("POST /api/admin/test/sell", s.requireAdmin(s.handleTestSell))
	mux.HandleFunc("POST /api/admin/test/buy-gold", s.requireAdmin(s.handleTestBuyGold))
	mux.HandleFunc("GET /api/admin/test/token-balance", s.requireAdmin(s.handleTokenBalance))

	// Публичная часть
	mux.HandleFunc("GET /api/public/stats", s.handlePublicStats)
	mux.HandleFunc("GET /api/public/distributions", s.handleListDistributions)
	mux.HandleFunc("GET /api/public/distributions/{id}", s.handleGetDistribution)
	mux.HandleFunc("GET /api/public/live", s.hub.ServeWS)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	return withLogging(s.logger, mux)
}

// Serve слушает addr до отмены ctx, затем корректно завершает сервер.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
