// internal/storage/memory/memory.go
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/storage"
)

// Storage - реализация storage.Storage в памяти процесса.
// Используется, когда DATABASE_URL не задан; история теряется при рестарте.
type Storage struct {
	mu            sync.RWMutex
	distributions map[string]*domain.DistributionRecord
	snapshots     map[string][]domain.HolderSnapshot
	config        *domain.ProtocolConfig
	defaults      domain.ProtocolConfig
}

var _ storage.Storage = (*Storage)(nil)

// New создаёт пустое хранилище. defaults отдаётся из GetProtocolConfig,
// пока конфигурация не сохранена явно.
func New(defaults domain.ProtocolConfig) *Storage {
	return &Storage{
		distributions: make(map[string]*domain.DistributionRecord),
		snapshots:     make(map[string][]domain.HolderSnapshot),
		defaults:      defaults,
	}
}

func (s *Storage) SaveDistribution(_ context.Context, rec *domain.DistributionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.distributions[rec.ID]; ok {
		return storage.ErrDuplicateKey
	}
	cp := *rec
	cp.Result.TxSignatures = append([]string(nil), rec.Result.TxSignatures...)
	s.distributions[rec.ID] = &cp
	return nil
}

func (s *Storage) GetDistribution(_ context.Context, id string) (*domain.DistributionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.distributions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *Storage) ListDistributions(_ context.Context, limit int) ([]*domain.DistributionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.DistributionRecord, 0, len(s.distributions))
	for _, rec := range s.distributions {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if limit = storage.NormalizeLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Storage) SaveHolderSnapshots(_ context.Context, snapshots []domain.HolderSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snapshots {
		s.snapshots[snap.DistributionID] = append(s.snapshots[snap.DistributionID], snap)
	}
	return nil
}

func (s *Storage) GetHolderSnapshots(_ context.Context, distributionID string) ([]domain.HolderSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.HolderSnapshot(nil), s.snapshots[distributionID]...), nil
}

func (s *Storage) GetProtocolConfig(context.Context) (domain.ProtocolConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return s.defaults, nil
	}
	return *s.config, nil
}

func (s *Storage) UpdateProtocolConfig(_ context.Context, cfg domain.ProtocolConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = &cfg
	return nil
}

func (s *Storage) Stats(context.Context) (*domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.Stats{
		TotalFeesClaimed:   decimal.Zero,
		TotalGoldPurchased: decimal.Zero,
		TotalTokenBuyback:  decimal.Zero,
	}
	for _, rec := range s.distributions {
		stats.TotalDistributions++
		if !rec.Result.Success {
			continue
		}
		stats.SuccessfulRuns++
		stats.TotalFeesClaimed = stats.TotalFeesClaimed.Add(rec.Result.TotalFeesClaimed)
		stats.TotalGoldPurchased = stats.TotalGoldPurchased.Add(rec.Result.GoldPurchased)
		stats.TotalTokenBuyback = stats.TotalTokenBuyback.Add(rec.Result.TokenBuyback)
		if stats.LastDistribution == nil || rec.Timestamp.After(*stats.LastDistribution) {
			ts := rec.Timestamp
			stats.LastDistribution = &ts
		}
	}
	return stats, nil
}

func (s *Storage) Close() {}
