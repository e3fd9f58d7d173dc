package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_QuietWritesOnlyFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "app.log")
	cfg.Quiet = true

	l, err := New(cfg)
	require.NoError(t, err)
	l.Info("cycle finished", zap.String("distribution_id", "abc"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"distribution_id":"abc"`)
	assert.Contains(t, string(data), `"level":"INFO"`)
}

func TestNew_NoCores(t *testing.T) {
	l, err := New(&Config{Quiet: true})
	require.NoError(t, err)
	l.Info("dropped")
	assert.NoError(t, l.Sync())
}

func TestWithOperation(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	WithOperation(base, "claim_fees").Info("first")
	WithOperation(base, "claim_fees").Info("second")

	entries := logs.All()
	require.Len(t, entries, 2)
	first, second := entries[0].ContextMap(), entries[1].ContextMap()
	assert.Equal(t, "claim_fees", first["operation"])
	assert.NotEmpty(t, first["correlation_id"])
	assert.NotEqual(t, first["correlation_id"], second["correlation_id"])
}
