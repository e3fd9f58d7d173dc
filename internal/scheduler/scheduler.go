// =============================
// File: internal/scheduler/scheduler.go
// =============================
package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/distribution"
	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/service"
)

// Runner - то, что запускается на каждом тике.
type Runner interface {
	Run(ctx context.Context, trigger string) (*domain.DistributionRecord, error)
}

// Scheduler периодически запускает цикл распределения.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *zap.Logger
}

// New создаёт планировщик. interval <= 0 отключает периодический запуск.
func New(runner Runner, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{runner: runner, interval: interval, logger: logger.Named("scheduler")}
}

func (s *Scheduler) Enabled() bool {
	return s.interval > 0
}

// Start блокируется до отмены ctx. Первый цикл - через interval после старта.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.Enabled() {
		s.logger.Info("Periodic distribution disabled")
		<-ctx.Done()
		return nil
	}

	s.logger.Info("Starting distribution scheduler", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			s.logger.Debug("Distribution scheduler stopped")
			return nil
		}
	}
}

// tick не передаёт отмену в цикл: начатый цикл доходит до конца и сохраняется,
// а остановка планировщика происходит между циклами.
func (s *Scheduler) tick(ctx context.Context) {
	rec, err := s.runner.Run(context.WithoutCancel(ctx), service.TriggerScheduled)
	switch {
	case errors.Is(err, distribution.ErrCycleInProgress):
		s.logger.Info("Previous cycle still running, tick skipped")
	case errors.Is(err, service.ErrNotReady), errors.Is(err, service.ErrDisabled):
		s.logger.Debug("Chain client not ready, tick skipped", zap.Error(err))
	case err != nil:
		s.logger.Error("Scheduled distribution failed to start", zap.Error(err))
	case !rec.Result.Success:
		s.logger.Warn("Scheduled distribution unsuccessful",
			zap.String("id", rec.ID),
			zap.String("error", rec.Result.Error))
	default:
		s.logger.Info("Scheduled distribution completed", zap.String("id", rec.ID))
	}
}
