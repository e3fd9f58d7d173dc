// =============================
// File: internal/dex/pumpfun/accounts.go
// =============================
package pumpfun

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/goldenbao/jinvault/internal/wallet"
)

// DeriveAddress вычисляет PDA из сидов. Чистая функция, сеть не нужна.
func DeriveAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive program address: %w", err)
	}
	return addr, bump, nil
}

// BondingCurveAddress - PDA ["bonding-curve", mint].
func BondingCurveAddress(mint, programID solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := DeriveAddress([][]byte{[]byte("bonding-curve"), mint.Bytes()}, programID)
	return addr, err
}

// CreatorVaultAddress - PDA ["creator-vault", creator]; на нём копятся комиссии создателя.
func CreatorVaultAddress(creator, programID solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := DeriveAddress([][]byte{[]byte("creator-vault"), creator.Bytes()}, programID)
	return addr, err
}

// EventAuthorityAddress - PDA ["__event_authority"] для Anchor CPI-событий.
func EventAuthorityAddress(programID solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := DeriveAddress([][]byte{[]byte("__event_authority")}, programID)
	return addr, err
}

// GlobalVolumeAccumulatorAddress - PDA ["global_volume_accumulator"].
func GlobalVolumeAccumulatorAddress(programID solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := DeriveAddress([][]byte{[]byte("global_volume_accumulator")}, programID)
	return addr, err
}

// UserVolumeAccumulatorAddress - PDA ["user_volume_accumulator", user].
func UserVolumeAccumulatorAddress(user, programID solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := DeriveAddress([][]byte{[]byte("user_volume_accumulator"), user.Bytes()}, programID)
	return addr, err
}

// FeeConfigAddress - PDA ["fee_config", pumpProgram] под fee program.
func FeeConfigAddress(pumpProgram, feeProgram solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := DeriveAddress([][]byte{[]byte("fee_config"), pumpProgram.Bytes()}, feeProgram)
	return addr, err
}

// TradeAccounts - все адреса, которые нужны инструкциям buy/sell.
type TradeAccounts struct {
	Global                  solana.PublicKey
	FeeRecipient            solana.PublicKey
	Mint                    solana.PublicKey
	BondingCurve            solana.PublicKey
	AssociatedBondingCurve  solana.PublicKey
	AssociatedUser          solana.PublicKey
	User                    solana.PublicKey
	TokenProgram            solana.PublicKey
	CreatorVault            solana.PublicKey
	EventAuthority          solana.PublicKey
	Program                 solana.PublicKey
	GlobalVolumeAccumulator solana.PublicKey
	UserVolumeAccumulator   solana.PublicKey
	FeeConfig               solana.PublicKey
	FeeProgram              solana.PublicKey
}

// DeriveTradeAccounts вычисляет адреса для торговли токеном через bonding curve.
// creator берётся из состояния кривой: от него зависит creator vault.
func DeriveTradeAccounts(cfg *Config, user, creator solana.PublicKey) (*TradeAccounts, error) {
	// Шаг 1: PDA bonding curve и её токен-аккаунт
	bondingCurve, err := BondingCurveAddress(cfg.Mint, cfg.ContractAddress)
	if err != nil {
		return nil, fmt.Errorf("bonding curve: %w", err)
	}
	associatedBondingCurve, err := wallet.FindATA(bondingCurve, cfg.Mint, cfg.TokenProgram)
	if err != nil {
		return nil, fmt.Errorf("associated bonding curve: %w", err)
	}

	// Шаг 2: токен-аккаунт пользователя
	associatedUser, err := wallet.FindATA(user, cfg.Mint, cfg.TokenProgram)
	if err != nil {
		return nil, fmt.Errorf("associated user: %w", err)
	}

	// Шаг 3: creator vault и аккумуляторы объёма
	creatorVault, err := CreatorVaultAddress(creator, cfg.ContractAddress)
	if err != nil {
		return nil, fmt.Errorf("creator vault: %w", err)
	}
	globalVolume, err := GlobalVolumeAccumulatorAddress(cfg.ContractAddress)
	if err != nil {
		return nil, fmt.Errorf("global volume accumulator: %w", err)
	}
	userVolume, err := UserVolumeAccumulatorAddress(user, cfg.ContractAddress)
	if err != nil {
		return nil, fmt.Errorf("user volume accumulator: %w", err)
	}

	// Шаг 4: fee config
	feeConfig, err := FeeConfigAddress(cfg.ContractAddress, cfg.FeeProgram)
	if err != nil {
		return nil, fmt.Errorf("fee config: %w", err)
	}

	return &TradeAccounts{
		Global:                  cfg.Global,
		FeeRecipient:            cfg.FeeRecipient,
		Mint:                    cfg.Mint,
		BondingCurve:            bondingCurve,
		AssociatedBondingCurve:  associatedBondingCurve,
		AssociatedUser:          associatedUser,
		User:                    user,
		TokenProgram:            cfg.TokenProgram,
		CreatorVault:            creatorVault,
		EventAuthority:          cfg.EventAuthority,
		Program:                 cfg.ContractAddress,
		GlobalVolumeAccumulator: globalVolume,
		UserVolumeAccumulator:   userVolume,
		FeeConfig:               feeConfig,
		FeeProgram:              cfg.FeeProgram,
	}, nil
}
