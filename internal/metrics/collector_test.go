package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/events"
)

func TestCollector_RecordsDistributions(t *testing.T) {
	c := NewCollector()
	ctx := context.Background()

	ok := domain.DistributionResult{
		Success:          true,
		TotalFeesClaimed: decimal.RequireFromString("0.5"),
		GoldPurchased:    decimal.RequireFromString("0.002"),
		TokenBuyback:     decimal.NewFromInt(1000),
		MajorHolders:     3,
		MediumHolders:    2,
		TxSignatures:     []string{"a", "b", "c"},
	}
	failed := domain.DistributionResult{
		TotalFeesClaimed: decimal.Zero,
		GoldPurchased:    decimal.Zero,
		TokenBuyback:     decimal.Zero,
		Error:            "No fees to claim",
	}

	require.NoError(t, c.Handle(ctx, events.NewDistributionCompleted("1", "scheduled", ok, nil, nil)))
	require.NoError(t, c.Handle(ctx, events.NewDistributionCompleted("2", "scheduled", failed, nil, nil)))
	require.NoError(t, c.Handle(ctx, events.NewSwapExecuted("buyback", "bonding_curve", "10", "sig")))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.cycles.WithLabelValues("scheduled", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cycles.WithLabelValues("scheduled", "failed")))
	assert.Equal(t, 0.5, testutil.ToFloat64(c.feesClaimed))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.transactions))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.rewardedHolders.WithLabelValues("major")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.swaps.WithLabelValues("buyback", "bonding_curve")))
	assert.Positive(t, testutil.ToFloat64(c.lastSuccess))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.TrackGauge("api", "websocket_clients", "Connected live-feed clients", func() float64 { return 4 })
	require.NoError(t, c.Handle(context.Background(), events.NewConfigUpdated(domain.DefaultProtocolConfig())))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "jinvault_api_websocket_clients 4")
	assert.Contains(t, string(body), "jinvault_admin_config_updates_total 1")
}
