package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/goldenbao/jinvault/internal/distribution"
	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/events"
	"github.com/goldenbao/jinvault/internal/storage/memory"
)

// stubChain - готовый клиент, возвращающий заданный отчёт.
type stubChain struct {
	Disabled
	ready   bool
	running bool
	report  *distribution.Report
	gotCfg  domain.ProtocolConfig
	calls   int
}

func (s *stubChain) Initialize(context.Context) InitResult {
	if !s.ready {
		return InitResult{Ready: false, Error: "wallet missing"}
	}
	return InitResult{Ready: true}
}

func (s *stubChain) DistributionRunning() bool { return s.running }

func (s *stubChain) ExecuteDistribution(_ context.Context, cfg domain.ProtocolConfig) *distribution.Report {
	s.calls++
	s.gotCfg = cfg
	return s.report
}

func newRunner(t *testing.T, chain ChainClient) (*CycleRunner, *memory.Storage) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := memory.New(domain.DefaultProtocolConfig())
	bus := events.NewBus(logger, 8)
	t.Cleanup(func() { _ = bus.Shutdown(context.Background()) })
	events.NewRecorder(store, logger).Attach(bus)
	return NewCycleRunner(chain, store, bus, logger), store
}

func TestCycleRunner_RecordsResult(t *testing.T) {
	chain := &stubChain{ready: true, report: &distribution.Report{
		Result: &domain.DistributionResult{
			Success:          true,
			TotalFeesClaimed: decimal.RequireFromString("0.5"),
			GoldPurchased:    decimal.RequireFromString("0.2"),
			GoldDistributed:  decimal.RequireFromString("0.2"),
			TokenBuyback:     decimal.NewFromInt(1000),
			MajorHolders:     1,
			TxSignatures:     []string{"claim", "swap", "tx"},
		},
		Major: []domain.HolderInfo{{Address: "holder", Balance: decimal.NewFromInt(10), Percentage: 1}},
	}}
	runner, store := newRunner(t, chain)

	custom := domain.ProtocolConfig{MajorHoldersPercentage: 50, MediumHoldersPercentage: 30, BuybackPercentage: 20, MajorMinPercentage: 1, MediumMinPercentage: 0.5}
	require.NoError(t, store.UpdateProtocolConfig(context.Background(), custom))

	rec, err := runner.Run(context.Background(), TriggerManual)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, TriggerManual, rec.Trigger)
	assert.Equal(t, custom, chain.gotCfg)

	// PublishSync: запись уже сохранена к моменту возврата
	saved, err := store.GetDistribution(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, saved.Result.Success)

	snaps, err := store.GetHolderSnapshots(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestCycleRunner_FailedCycleIsRecorded(t *testing.T) {
	chain := &stubChain{ready: true, report: notReadyReport("No fees to claim")}
	runner, store := newRunner(t, chain)

	rec, err := runner.Run(context.Background(), TriggerScheduled)
	require.NoError(t, err)
	assert.False(t, rec.Result.Success)

	list, err := store.ListDistributions(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCycleRunner_SkipsWhenNotStarted(t *testing.T) {
	t.Run("not ready", func(t *testing.T) {
		chain := &stubChain{ready: false}
		runner, store := newRunner(t, chain)

		_, err := runner.Run(context.Background(), TriggerScheduled)
		assert.ErrorIs(t, err, ErrNotReady)
		assert.Zero(t, chain.calls)

		list, _ := store.ListDistributions(context.Background(), 10)
		assert.Empty(t, list)
	})

	t.Run("already running", func(t *testing.T) {
		chain := &stubChain{ready: true, running: true}
		runner, _ := newRunner(t, chain)

		_, err := runner.Run(context.Background(), TriggerManual)
		assert.ErrorIs(t, err, distribution.ErrCycleInProgress)
		assert.Zero(t, chain.calls)
	})

	t.Run("lost the guard race", func(t *testing.T) {
		chain := &stubChain{ready: true, report: notReadyReport(distribution.ErrCycleInProgress.Error())}
		runner, store := newRunner(t, chain)

		_, err := runner.Run(context.Background(), TriggerManual)
		assert.ErrorIs(t, err, distribution.ErrCycleInProgress)

		list, _ := store.ListDistributions(context.Background(), 10)
		assert.Empty(t, list)
	})
}
