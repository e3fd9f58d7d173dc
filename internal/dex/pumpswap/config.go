// =============================
// File: internal/dex/pumpswap/config.go
// =============================
package pumpswap

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/goldenbao/jinvault/internal/blockchain"
)

// PumpSwapProgramID - AMM, куда мигрируют токены после завершения bonding curve.
var PumpSwapProgramID = solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")

// Config хранит конфигурацию для взаимодействия с PumpSwap.
type Config struct {
	ProgramID      solana.PublicKey
	EventAuthority solana.PublicKey

	// Комиссии создателя в пулах копятся в WSOL
	QuoteMint         solana.PublicKey
	QuoteTokenProgram solana.PublicKey
}

// GetDefaultConfig возвращает конфигурацию по умолчанию для PumpSwap.
func GetDefaultConfig() (*Config, error) {
	eventAuthority, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("__event_authority")},
		PumpSwapProgramID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority: %w", err)
	}

	return &Config{
		ProgramID:         PumpSwapProgramID,
		EventAuthority:    eventAuthority,
		QuoteMint:         blockchain.NativeMint,
		QuoteTokenProgram: solana.TokenProgramID,
	}, nil
}

// CoinCreatorVaultAuthority - PDA ["creator_vault", creator], владелец vault ATA.
func (cfg *Config) CoinCreatorVaultAuthority(creator solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("creator_vault"), creator.Bytes()},
		cfg.ProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive coin creator vault authority: %w", err)
	}
	return addr, nil
}
