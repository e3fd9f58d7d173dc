package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultRPCURL, cfg.RPCURL)
	assert.Equal(t, DefaultJupiterAPIURL, cfg.JupiterAPIURL)
	assert.Equal(t, DefaultGoldMint, cfg.GoldMint)
	assert.True(t, cfg.BlockchainEnabled)
	assert.Equal(t, time.Duration(0), cfg.DistributionInterval)
	assert.Equal(t, 75.0, cfg.Protocol.MajorHoldersPercentage)
	assert.Equal(t, 0.1, cfg.Protocol.MediumMinPercentage)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SOLANA_RPC", "https://rpc.example.org")
	t.Setenv("TOKEN_CONTRACT_ADDRESS", "So11111111111111111111111111111111111111112")
	t.Setenv("BLOCKCHAIN_ENABLED", "false")
	t.Setenv("DISTRIBUTION_INTERVAL", "15m")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://rpc.example.org", cfg.RPCURL)
	assert.Equal(t, "So11111111111111111111111111111111111111112", cfg.TokenMint)
	assert.False(t, cfg.BlockchainEnabled)
	assert.Equal(t, 15*time.Minute, cfg.DistributionInterval)
}

func TestLoadConfig_HeliusTakesPrecedence(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HELIUS_RPC_URL", "https://mainnet.helius-rpc.com/?api-key=x")
	t.Setenv("SOLANA_RPC", "https://rpc.example.org")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "https://mainnet.helius-rpc.com/?api-key=x", cfg.RPCURL)
}

func TestLoadConfig_FileAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	// .env подхватывается godotenv
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ADMIN_PASSWORD=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ADMIN_PASSWORD") })

	yaml := []byte("http_addr: \":8080\"\nprotocol:\n  major_holders_percentage: 60\n  medium_holders_percentage: 30\n  buyback_percentage: 10\n")
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.AdminPassword)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 60.0, cfg.Protocol.MajorHoldersPercentage)
	assert.Equal(t, 30.0, cfg.Protocol.MediumHoldersPercentage)
	assert.Equal(t, 10.0, cfg.Protocol.BuybackPercentage)
}

func TestLoadConfig_InvalidRPC(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SOLANA_RPC", "ws://not-http")

	_, err := LoadConfig("")
	assert.Error(t, err)
}
