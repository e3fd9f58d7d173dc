// =============================
// File: internal/service/cycle.go
// =============================
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/distribution"
	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/events"
	"github.com/goldenbao/jinvault/internal/storage"
)

// Источники запуска цикла.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// CycleRunner выполняет один цикл с текущей конфигурацией из хранилища
// и публикует итог на шину (оттуда его сохраняет Recorder и получают websocket-клиенты).
type CycleRunner struct {
	chain  ChainClient
	store  storage.Storage
	bus    *events.Bus
	logger *zap.Logger
}

func NewCycleRunner(chain ChainClient, store storage.Storage, bus *events.Bus, logger *zap.Logger) *CycleRunner {
	return &CycleRunner{chain: chain, store: store, bus: bus, logger: logger.Named("cycle")}
}

// Run запускает цикл. Ошибка возвращается только если цикл не начинался:
// клиент не готов, другой цикл ещё идёт или конфигурацию не удалось прочитать.
// Неудачный цикл - это запись с Success = false, а не ошибка.
func (r *CycleRunner) Run(ctx context.Context, trigger string) (*domain.DistributionRecord, error) {
	if r.chain.DistributionRunning() {
		return nil, distribution.ErrCycleInProgress
	}
	if init := r.chain.Initialize(ctx); !init.Ready {
		return nil, fmt.Errorf("%w: %s", ErrNotReady, init.Error)
	}

	cfg, err := r.store.GetProtocolConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load protocol config: %w", err)
	}

	id := uuid.NewString()
	log := r.logger.With(zap.String("distribution_id", id), zap.String("trigger", trigger))
	log.Info("Distribution cycle started")
	started := time.Now()

	report := r.chain.ExecuteDistribution(ctx, cfg)
	result := report.Result
	if !result.Success && result.Error == distribution.ErrCycleInProgress.Error() {
		return nil, distribution.ErrCycleInProgress
	}

	event := events.NewDistributionCompleted(id, trigger, *result, report.Major, report.Medium)
	if err := r.bus.PublishSync(ctx, event); err != nil {
		log.Error("Failed to record distribution", zap.Error(err))
	}

	log.Info("Distribution cycle finished",
		zap.Bool("success", result.Success),
		zap.String("fees_claimed", result.TotalFeesClaimed.String()),
		zap.Int("signatures", len(result.TxSignatures)),
		zap.String("error", result.Error),
		zap.Duration("elapsed", time.Since(started)))

	return &domain.DistributionRecord{
		ID:        id,
		Timestamp: event.Timestamp(),
		Trigger:   trigger,
		Result:    *result,
	}, nil
}
