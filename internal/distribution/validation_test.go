package distribution

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldenbao/jinvault/internal/domain"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.ProtocolConfig)
		wantErr string
	}{
		{
			name:   "default split",
			mutate: func(*domain.ProtocolConfig) {},
		},
		{
			name: "70/20/10",
			mutate: func(c *domain.ProtocolConfig) {
				c.MajorHoldersPercentage, c.MediumHoldersPercentage, c.BuybackPercentage = 70, 20, 10
			},
		},
		{
			// 0.1 + 0.2 в float64 не равно 0.3
			name: "fractional split",
			mutate: func(c *domain.ProtocolConfig) {
				c.MajorHoldersPercentage, c.MediumHoldersPercentage, c.BuybackPercentage = 33.3, 33.4, 33.3
			},
		},
		{
			name: "sum below 100",
			mutate: func(c *domain.ProtocolConfig) {
				c.MajorHoldersPercentage, c.MediumHoldersPercentage, c.BuybackPercentage = 70, 20, 9
			},
			wantErr: "Invalid config: percentages sum to 99% (must be exactly 100%)",
		},
		{
			name: "negative",
			mutate: func(c *domain.ProtocolConfig) {
				c.MajorHoldersPercentage, c.MediumHoldersPercentage, c.BuybackPercentage = 110, -20, 10
			},
			wantErr: "Invalid config: percentages cannot be negative",
		},
		{
			name: "thresholds inverted",
			mutate: func(c *domain.ProtocolConfig) {
				c.MajorMinPercentage, c.MediumMinPercentage = 0.1, 0.5
			},
			wantErr: "Invalid config: major holder threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultProtocolConfig()
			tt.mutate(&cfg)

			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestGuard_RejectsOverlap(t *testing.T) {
	var g Guard
	entered := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := g.TryRun(func() {
			close(entered)
			<-release
		})
		assert.NoError(t, err)
	}()

	<-entered
	assert.True(t, g.Running())
	assert.ErrorIs(t, g.TryRun(func() { t.Error("second cycle must not start") }), ErrCycleInProgress)

	close(release)
	wg.Wait()

	assert.False(t, g.Running())
	ran := false
	require.NoError(t, g.TryRun(func() { ran = true }))
	assert.True(t, ran)
}
