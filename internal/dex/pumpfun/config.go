// =============================
// File: internal/dex/pumpfun/config.go
// =============================
package pumpfun

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/blockchain"
)

// Known PumpFun protocol addresses
var (
	// Program ID for Pump.fun protocol
	PumpFunProgramID = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")

	// Event authority for the Pump.fun protocol
	PumpFunEventAuth = solana.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")

	// Global account and fee recipient
	PumpFunGlobal       = solana.MustPublicKeyFromBase58("4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf")
	PumpFunFeeRecipient = solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")

	// Fee program, хранит fee_config для Pump.fun
	PumpFeeProgramID = solana.MustPublicKeyFromBase58("pfeeUxB6jkeY1Hxd7CsFCAjcbHA9rWtchMGdZ6VojVZ")
)

// Config holds the configuration for the Pump.fun DEX
type Config struct {
	// Protocol addresses
	ContractAddress solana.PublicKey
	Global          solana.PublicKey
	FeeRecipient    solana.PublicKey
	EventAuthority  solana.PublicKey
	FeeProgram      solana.PublicKey

	// Token specific addresses
	Mint solana.PublicKey
	// Программа токена. Pump.fun выпускает новые токены на Token-2022.
	TokenProgram solana.PublicKey

	// Slippage для покупки, в базисных пунктах.
	BuySlippageBps uint64
	// Slippage для продажи, в процентах от выручки после комиссии.
	SellSlippagePercent uint64
	// Покупка требует баланс не меньше amount * BuyBalanceBufferBps / 10000.
	BuyBalanceBufferBps uint64
}

// GetDefaultConfig creates a default configuration for the Pump.fun DEX
func GetDefaultConfig() *Config {
	return &Config{
		ContractAddress:     PumpFunProgramID,
		Global:              PumpFunGlobal,
		FeeRecipient:        PumpFunFeeRecipient,
		EventAuthority:      PumpFunEventAuth,
		FeeProgram:          PumpFeeProgramID,
		TokenProgram:        blockchain.Token2022ProgramID,
		BuySlippageBps:      1000,
		SellSlippagePercent: 10,
		BuyBalanceBufferBps: 11_500,
	}
}

// SetupForToken configures the Config instance for a specific token
func (cfg *Config) SetupForToken(tokenMint string, logger *zap.Logger) error {
	if tokenMint == "" {
		return fmt.Errorf("token mint address is required")
	}

	var err error
	cfg.Mint, err = solana.PublicKeyFromBase58(tokenMint)
	if err != nil {
		return fmt.Errorf("invalid token mint address: %w", err)
	}

	if cfg.ContractAddress.IsZero() {
		cfg.ContractAddress = PumpFunProgramID
	}
	if cfg.EventAuthority.IsZero() {
		cfg.EventAuthority = PumpFunEventAuth
	}
	if cfg.TokenProgram.IsZero() {
		cfg.TokenProgram = blockchain.Token2022ProgramID
	}

	logger.Info("PumpFun configuration prepared",
		zap.String("program_id", cfg.ContractAddress.String()),
		zap.String("global_account", cfg.Global.String()),
		zap.String("token_mint", cfg.Mint.String()),
		zap.String("event_authority", cfg.EventAuthority.String()))

	return nil
}
