// =============================
// File: internal/dex/pumpswap/instructions.go
// =============================
package pumpswap

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/goldenbao/jinvault/internal/wallet"
)

// Instruction discriminators extracted from the IDL
var collectCoinCreatorFeeDiscriminator = []byte{160, 57, 89, 42, 181, 139, 43, 66}

// CreatorFeeAccounts - аккаунты инструкции collect_coin_creator_fee.
type CreatorFeeAccounts struct {
	QuoteMint                 solana.PublicKey
	QuoteTokenProgram         solana.PublicKey
	Creator                   solana.PublicKey
	CoinCreatorVaultAuthority solana.PublicKey
	CoinCreatorVaultATA       solana.PublicKey
	CreatorTokenAccount       solana.PublicKey
	EventAuthority            solana.PublicKey
	ProgramID                 solana.PublicKey
}

// DeriveCreatorFeeAccounts выводит vault authority, её WSOL ATA и WSOL ATA создателя.
func (cfg *Config) DeriveCreatorFeeAccounts(creator solana.PublicKey) (*CreatorFeeAccounts, error) {
	authority, err := cfg.CoinCreatorVaultAuthority(creator)
	if err != nil {
		return nil, err
	}
	vaultATA, err := wallet.FindATA(authority, cfg.QuoteMint, cfg.QuoteTokenProgram)
	if err != nil {
		return nil, fmt.Errorf("failed to derive coin creator vault ATA: %w", err)
	}
	creatorATA, err := wallet.FindATA(creator, cfg.QuoteMint, cfg.QuoteTokenProgram)
	if err != nil {
		return nil, fmt.Errorf("failed to derive creator token account: %w", err)
	}

	return &CreatorFeeAccounts{
		QuoteMint:                 cfg.QuoteMint,
		QuoteTokenProgram:         cfg.QuoteTokenProgram,
		Creator:                   creator,
		CoinCreatorVaultAuthority: authority,
		CoinCreatorVaultATA:       vaultATA,
		CreatorTokenAccount:       creatorATA,
		EventAuthority:            cfg.EventAuthority,
		ProgramID:                 cfg.ProgramID,
	}, nil
}

// BuildCollectCoinCreatorFeeInstruction переводит WSOL из vault ATA на WSOL ATA создателя.
func BuildCollectCoinCreatorFeeInstruction(accounts *CreatorFeeAccounts) solana.Instruction {
	data := make([]byte, len(collectCoinCreatorFeeDiscriminator))
	copy(data, collectCoinCreatorFeeDiscriminator)

	insAccounts := []*solana.AccountMeta{
		{PublicKey: accounts.QuoteMint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.QuoteTokenProgram, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.Creator, IsSigner: true, IsWritable: true},
		{PublicKey: accounts.CoinCreatorVaultAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.CoinCreatorVaultATA, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.CreatorTokenAccount, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.ProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(accounts.ProgramID, insAccounts, data)
}

// BuildCloseWSOLInstruction закрывает WSOL-аккаунт, возвращая лампорты владельцу.
func BuildCloseWSOLInstruction(account, owner solana.PublicKey) solana.Instruction {
	return token.NewCloseAccountInstruction(account, owner, owner, nil).Build()
}
