package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/storage"
)

func record(id string, ts time.Time, success bool, fees string) *domain.DistributionRecord {
	return &domain.DistributionRecord{
		ID:        id,
		Timestamp: ts,
		Trigger:   "manual",
		Result: domain.DistributionResult{
			Success:          success,
			TotalFeesClaimed: decimal.RequireFromString(fees),
			GoldPurchased:    decimal.RequireFromString("2.5"),
			TokenBuyback:     decimal.NewFromInt(1000),
			TxSignatures:     []string{"sig-" + id},
		},
	}
}

func TestStorage_Distributions(t *testing.T) {
	s := New(domain.DefaultProtocolConfig())
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveDistribution(ctx, record("a", base, true, "1.5")))
	require.NoError(t, s.SaveDistribution(ctx, record("b", base.Add(time.Hour), false, "0")))
	require.NoError(t, s.SaveDistribution(ctx, record("c", base.Add(2*time.Hour), true, "0.25")))

	assert.ErrorIs(t, s.SaveDistribution(ctx, record("a", base, true, "1")), storage.ErrDuplicateKey)

	got, err := s.GetDistribution(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1.5", got.Result.TotalFeesClaimed.String())

	_, err = s.GetDistribution(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	list, err := s.ListDistributions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDistributions)
	assert.Equal(t, 2, stats.SuccessfulRuns)
	assert.Equal(t, "1.75", stats.TotalFeesClaimed.String())
	assert.Equal(t, "5", stats.TotalGoldPurchased.String())
	require.NotNil(t, stats.LastDistribution)
	assert.Equal(t, base.Add(2*time.Hour), *stats.LastDistribution)
}

func TestStorage_ProtocolConfig(t *testing.T) {
	s := New(domain.DefaultProtocolConfig())
	ctx := context.Background()

	cfg, err := s.GetProtocolConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProtocolConfig(), cfg)

	cfg.MajorHoldersPercentage, cfg.MediumHoldersPercentage, cfg.BuybackPercentage = 70, 20, 10
	require.NoError(t, s.UpdateProtocolConfig(ctx, cfg))

	got, err := s.GetProtocolConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 70.0, got.MajorHoldersPercentage)
}

func TestStorage_HolderSnapshots(t *testing.T) {
	s := New(domain.DefaultProtocolConfig())
	ctx := context.Background()

	snaps := []domain.HolderSnapshot{
		{DistributionID: "a", Address: "h1", Balance: decimal.NewFromInt(10), Percentage: 0.6, Tier: domain.TierMajor},
		{DistributionID: "a", Address: "h2", Balance: decimal.NewFromInt(5), Percentage: 0.2, Tier: domain.TierMedium},
		{DistributionID: "b", Address: "h1", Balance: decimal.NewFromInt(10), Percentage: 0.6, Tier: domain.TierMajor},
	}
	require.NoError(t, s.SaveHolderSnapshots(ctx, snaps))

	got, err := s.GetHolderSnapshots(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.TierMedium, got[1].Tier)

	got, err = s.GetHolderSnapshots(ctx, "none")
	require.NoError(t, err)
	assert.Empty(t, got)
}
