// =============================
// File: internal/service/service.go
// =============================
package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/blockchain/solbc"
	"github.com/goldenbao/jinvault/internal/config"
	"github.com/goldenbao/jinvault/internal/distribution"
	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/fees"
	"github.com/goldenbao/jinvault/internal/holders"
	"github.com/goldenbao/jinvault/internal/swap"
)

var (
	// ErrNotReady - кошелёк или адрес токена не настроены либо некорректны.
	ErrNotReady = errors.New("blockchain client not ready")
	// ErrDisabled - блокчейн-функции выключены конфигурацией.
	ErrDisabled = errors.New("Blockchain features disabled")
)

// InitResult - итог ленивой инициализации.
type InitResult struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Status - состояние для админки.
type Status struct {
	Enabled          bool            `json:"enabled"`
	WalletConfigured bool            `json:"walletConfigured"`
	TokenConfigured  bool            `json:"tokenConfigured"`
	Ready            bool            `json:"ready"`
	WalletAddress    string          `json:"walletAddress,omitempty"`
	SOLBalance       decimal.Decimal `json:"solBalance"`
	Error            string          `json:"error,omitempty"`
}

// ChainClient - всё, что HTTP API, планировщик и консоль делают с цепочкой.
type ChainClient interface {
	Initialize(ctx context.Context) InitResult
	Status(ctx context.Context) Status
	WalletAddress() string

	SOLBalance(ctx context.Context) (decimal.Decimal, error)
	// TokenBalance - баланс токена протокола на кошельке.
	TokenBalance(ctx context.Context) (decimal.Decimal, error)
	HoldersByTier(ctx context.Context, cfg domain.ProtocolConfig) (*holders.Tiers, error)

	ClaimFees(ctx context.Context) (*fees.ClaimResult, error)
	// TestBuyback покупает токен протокола на sol SOL.
	TestBuyback(ctx context.Context, sol decimal.Decimal) (*swap.Result, error)
	// SellToken продаёт tokens токена протокола.
	SellToken(ctx context.Context, tokens decimal.Decimal) (*swap.Result, error)
	// SwapSOLForGold покупает актив вознаграждения на sol SOL.
	SwapSOLForGold(ctx context.Context, sol decimal.Decimal) (*swap.Result, error)

	ExecuteDistribution(ctx context.Context, cfg domain.ProtocolConfig) *distribution.Report
	DistributionRunning() bool
}

// New выбирает реализацию по конфигурации.
func New(cfg *config.Config, logger *zap.Logger) ChainClient {
	if !cfg.BlockchainEnabled {
		logger.Warn("Blockchain features disabled by configuration")
		return NewDisabled()
	}
	return NewLive(cfg, solbc.NewClient(cfg.RPCURL, logger), logger)
}
