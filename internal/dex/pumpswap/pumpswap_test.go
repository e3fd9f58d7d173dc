package pumpswap

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveCreatorFeeAccounts(t *testing.T) {
	cfg, err := GetDefaultConfig()
	require.NoError(t, err)

	creator := solana.NewWallet().PublicKey()
	accounts, err := cfg.DeriveCreatorFeeAccounts(creator)
	require.NoError(t, err)

	authority, _, err := solana.FindProgramAddress([][]byte{[]byte("creator_vault"), creator.Bytes()}, PumpSwapProgramID)
	require.NoError(t, err)
	assert.Equal(t, authority, accounts.CoinCreatorVaultAuthority)

	// Классическая программа токенов: адрес совпадает с библиотечным
	expectedVault, _, err := solana.FindAssociatedTokenAddress(authority, cfg.QuoteMint)
	require.NoError(t, err)
	assert.Equal(t, expectedVault, accounts.CoinCreatorVaultATA)

	expectedCreatorATA, _, err := solana.FindAssociatedTokenAddress(creator, cfg.QuoteMint)
	require.NoError(t, err)
	assert.Equal(t, expectedCreatorATA, accounts.CreatorTokenAccount)
}

func TestBuildCollectCoinCreatorFeeInstruction(t *testing.T) {
	cfg, err := GetDefaultConfig()
	require.NoError(t, err)
	accounts, err := cfg.DeriveCreatorFeeAccounts(solana.NewWallet().PublicKey())
	require.NoError(t, err)

	ix := BuildCollectCoinCreatorFeeInstruction(accounts)
	assert.Equal(t, PumpSwapProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, collectCoinCreatorFeeDiscriminator, data)

	metas := ix.Accounts()
	require.Len(t, metas, 8)
	assert.True(t, metas[2].IsSigner)
	assert.True(t, metas[4].IsWritable)
	assert.True(t, metas[5].IsWritable)
	assert.Equal(t, cfg.EventAuthority, metas[6].PublicKey)
}

func TestBuildCloseWSOLInstruction(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	account := solana.NewWallet().PublicKey()

	ix := BuildCloseWSOLInstruction(account, owner)
	assert.Equal(t, solana.TokenProgramID, ix.ProgramID())
	require.Len(t, ix.Accounts(), 3)
	assert.Equal(t, account, ix.Accounts()[0].PublicKey)
	assert.Equal(t, owner, ix.Accounts()[1].PublicKey)
}
