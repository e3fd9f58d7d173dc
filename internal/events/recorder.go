// internal/events/recorder.go
package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/storage"
)

// Recorder сохраняет каждое завершённое распределение и снимки его холдеров.
type Recorder struct {
	store  storage.Storage
	logger *zap.Logger
}

func NewRecorder(store storage.Storage, logger *zap.Logger) *Recorder {
	return &Recorder{store: store, logger: logger.Named("recorder")}
}

// Attach подписывает Recorder на шину.
func (r *Recorder) Attach(bus *Bus) Subscription {
	return bus.Subscribe(DistributionCompleted, r)
}

func (r *Recorder) Handle(ctx context.Context, event Event) error {
	e, ok := event.(*DistributionCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}

	rec := &domain.DistributionRecord{
		ID:        e.DistributionID,
		Timestamp: e.Timestamp(),
		Trigger:   e.Trigger,
		Result:    e.Result,
	}
	if err := r.store.SaveDistribution(ctx, rec); err != nil {
		return fmt.Errorf("save distribution %s: %w", e.DistributionID, err)
	}

	snapshots := make([]domain.HolderSnapshot, 0, len(e.Major)+len(e.Medium))
	for _, h := range e.Major {
		snapshots = append(snapshots, snapshot(e.DistributionID, h, domain.TierMajor))
	}
	for _, h := range e.Medium {
		snapshots = append(snapshots, snapshot(e.DistributionID, h, domain.TierMedium))
	}
	if err := r.store.SaveHolderSnapshots(ctx, snapshots); err != nil {
		return fmt.Errorf("save holder snapshots %s: %w", e.DistributionID, err)
	}

	r.logger.Debug("Distribution recorded",
		zap.String("id", e.DistributionID),
		zap.Bool("success", e.Result.Success),
		zap.Int("snapshots", len(snapshots)))
	return nil
}

func snapshot(id string, h domain.HolderInfo, tier domain.Tier) domain.HolderSnapshot {
	return domain.HolderSnapshot{
		DistributionID: id,
		Address:        h.Address,
		Balance:        h.Balance,
		Percentage:     h.Percentage,
		Tier:           tier,
	}
}
