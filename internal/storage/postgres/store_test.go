package postgres

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

func TestStore_DistributionRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	rec := &domain.DistributionRecord{
		ID:        "dist-001",
		Timestamp: ts,
		Trigger:   "scheduled",
		Result: domain.DistributionResult{
			Success:              true,
			TotalFeesClaimed:     decimal.RequireFromString("1.000000001"),
			GoldPurchased:        decimal.RequireFromString("0.004321"),
			GoldDistributed:      decimal.RequireFromString("0.0033"),
			GoldForMediumHolders: decimal.RequireFromString("0.001021"),
			TokenBuyback:         decimal.RequireFromString("15234.123456"),
			MajorHolders:         2,
			MediumHolders:        3,
			TxSignatures:         []string{"sig1", "sig2"},
		},
	}
	require.NoError(t, store.SaveDistribution(ctx, rec))
	assert.ErrorIs(t, store.SaveDistribution(ctx, rec), storage.ErrDuplicateKey)

	got, err := store.GetDistribution(ctx, "dist-001")
	require.NoError(t, err)
	assert.Equal(t, ts, got.Timestamp)
	assert.True(t, rec.Result.TotalFeesClaimed.Equal(got.Result.TotalFeesClaimed))
	assert.True(t, rec.Result.TokenBuyback.Equal(got.Result.TokenBuyback))
	assert.Equal(t, []string{"sig1", "sig2"}, got.Result.TxSignatures)
	assert.Equal(t, 3, got.Result.MediumHolders)

	_, err = store.GetDistribution(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_ListAndStats(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, ok := range []bool{true, false, true} {
		var errMsg string
		if !ok {
			errMsg = "No qualifying holders found"
		}
		rec := &domain.DistributionRecord{
			ID:        string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Trigger:   "manual",
			Result: domain.DistributionResult{
				Success:          ok,
				TotalFeesClaimed: decimal.RequireFromString("0.5"),
				GoldPurchased:    decimal.RequireFromString("0.001"),
				TokenBuyback:     decimal.NewFromInt(100),
				Error:            errMsg,
			},
		}
		require.NoError(t, store.SaveDistribution(ctx, rec))
	}

	list, err := store.ListDistributions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "No qualifying holders found", list[1].Result.Error)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDistributions)
	assert.Equal(t, 2, stats.SuccessfulRuns)
	assert.True(t, decimal.NewFromInt(1).Equal(stats.TotalFeesClaimed))
	require.NotNil(t, stats.LastDistribution)
	assert.Equal(t, base.Add(2*time.Hour), *stats.LastDistribution)
}

func TestStore_HolderSnapshots(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDistribution(ctx, &domain.DistributionRecord{
		ID: "dist-snap", Timestamp: time.Now().UTC(), Trigger: "manual",
	}))
	snaps := []domain.HolderSnapshot{
		{DistributionID: "dist-snap", Address: "holder-1", Balance: decimal.RequireFromString("6000.5"), Percentage: 0.6, Tier: domain.TierMajor},
		{DistributionID: "dist-snap", Address: "holder-2", Balance: decimal.RequireFromString("1000"), Percentage: 0.1, Tier: domain.TierMedium},
	}
	require.NoError(t, store.SaveHolderSnapshots(ctx, snaps))

	got, err := store.GetHolderSnapshots(ctx, "dist-snap")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "holder-1", got[0].Address)
	assert.True(t, snaps[0].Balance.Equal(got[0].Balance))
	assert.Equal(t, domain.TierMedium, got[1].Tier)
}

func TestStore_ProtocolConfig(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	cfg, err := store.GetProtocolConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProtocolConfig(), cfg)

	cfg.MajorHoldersPercentage, cfg.MediumHoldersPercentage, cfg.BuybackPercentage = 70, 20, 10
	require.NoError(t, store.UpdateProtocolConfig(ctx, cfg))
	cfg.BuybackPercentage = 10
	require.NoError(t, store.UpdateProtocolConfig(ctx, cfg))

	got, err := store.GetProtocolConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
