package wallet

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(t *testing.T) *Wallet {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	w, err := NewWallet(base58.Encode(key))
	require.NoError(t, err)
	return w
}

func TestNewWallet(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	w, err := NewWallet(base58.Encode(key))
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey)
	assert.Equal(t, key.PublicKey().String(), w.String())
}

func TestNewWallet_Invalid(t *testing.T) {
	_, err := NewWallet("0OIl") // символы вне алфавита base58
	assert.Error(t, err)

	_, err = NewWallet(base58.Encode([]byte{1, 2, 3}))
	assert.ErrorContains(t, err, "invalid private key length")
}

func TestGetATAForProgram_MatchesLibraryDerivation(t *testing.T) {
	w := newTestWallet(t)
	mint := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	expected, _, err := solana.FindAssociatedTokenAddress(w.PublicKey, mint)
	require.NoError(t, err)

	ata, err := w.GetATAForProgram(mint, solana.TokenProgramID)
	require.NoError(t, err)
	assert.Equal(t, expected, ata)

	// повторный вызов берётся из кеша
	again, err := w.GetATAForProgram(mint, solana.TokenProgramID)
	require.NoError(t, err)
	assert.Equal(t, ata, again)
}

func TestGetATAForProgram_Token2022Differs(t *testing.T) {
	w := newTestWallet(t)
	mint := solana.NewWallet().PublicKey()

	classic, err := w.GetATAForProgram(mint, solana.TokenProgramID)
	require.NoError(t, err)
	t22, err := w.GetATAForProgram(mint, solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"))
	require.NoError(t, err)

	assert.NotEqual(t, classic, t22)
}

func TestSignTransaction(t *testing.T) {
	w := newTestWallet(t)
	ix, err := CreateATAIdempotentInstruction(w.PublicKey, w.PublicKey, solana.NewWallet().PublicKey(), solana.TokenProgramID)
	require.NoError(t, err)

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{}, solana.TransactionPayer(w.PublicKey))
	require.NoError(t, err)

	require.NoError(t, w.SignTransaction(tx))
	require.Len(t, tx.Signatures, 1)
	assert.NoError(t, tx.VerifySignatures())
}
