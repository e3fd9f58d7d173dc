// =============================
// File: internal/service/disabled.go
// =============================
package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/goldenbao/jinvault/internal/distribution"
	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/fees"
	"github.com/goldenbao/jinvault/internal/holders"
	"github.com/goldenbao/jinvault/internal/swap"
)

// Disabled отвечает ErrDisabled на любую операцию. Позволяет поднять
// API и публичную статистику без ключа кошелька и RPC.
type Disabled struct{}

var _ ChainClient = Disabled{}

func NewDisabled() Disabled { return Disabled{} }

func (Disabled) Initialize(context.Context) InitResult {
	return InitResult{Ready: false, Error: ErrDisabled.Error()}
}

func (Disabled) Status(context.Context) Status {
	return Status{Enabled: false, SOLBalance: decimal.Zero, Error: ErrDisabled.Error()}
}

func (Disabled) WalletAddress() string { return "" }

func (Disabled) SOLBalance(context.Context) (decimal.Decimal, error) {
	return decimal.Zero, ErrDisabled
}

func (Disabled) TokenBalance(context.Context) (decimal.Decimal, error) {
	return decimal.Zero, ErrDisabled
}

func (Disabled) HoldersByTier(context.Context, domain.ProtocolConfig) (*holders.Tiers, error) {
	return nil, ErrDisabled
}

func (Disabled) ClaimFees(context.Context) (*fees.ClaimResult, error) {
	return nil, ErrDisabled
}

func (Disabled) TestBuyback(context.Context, decimal.Decimal) (*swap.Result, error) {
	return nil, ErrDisabled
}

func (Disabled) SellToken(context.Context, decimal.Decimal) (*swap.Result, error) {
	return nil, ErrDisabled
}

func (Disabled) SwapSOLForGold(context.Context, decimal.Decimal) (*swap.Result, error) {
	return nil, ErrDisabled
}

func (Disabled) ExecuteDistribution(context.Context, domain.ProtocolConfig) *distribution.Report {
	return notReadyReport(ErrDisabled.Error())
}

func (Disabled) DistributionRunning() bool { return false }

func notReadyReport(msg string) *distribution.Report {
	return &distribution.Report{Result: &domain.DistributionResult{
		TotalFeesClaimed:     decimal.Zero,
		GoldPurchased:        decimal.Zero,
		GoldDistributed:      decimal.Zero,
		GoldForMediumHolders: decimal.Zero,
		TokenBuyback:         decimal.Zero,
		TxSignatures:         []string{},
		Error:                msg,
	}}
}
