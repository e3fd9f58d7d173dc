package holders

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/goldenbao/jinvault/internal/blockchain"
	"github.com/goldenbao/jinvault/internal/blockchain/blockchaintest"
)

// supply 1 000 000 токенов по 6 знаков
const supply = 1_000_000_000_000

type holderSpec struct {
	amount   uint64
	resolved bool
}

func setup(t *testing.T, specs []holderSpec) (*Classifier, solana.PublicKey, map[solana.PublicKey]solana.PublicKey) {
	t.Helper()
	client := blockchaintest.NewFakeClient()
	mint := solana.NewWallet().PublicKey()
	client.Mints[mint] = &blockchain.MintInfo{Supply: supply, Decimals: 6, TokenProgram: solana.TokenProgramID}

	owners := make(map[solana.PublicKey]solana.PublicKey)
	for _, s := range specs {
		account := solana.NewWallet().PublicKey()
		client.Largest[mint] = append(client.Largest[mint], blockchain.TokenAccountAmount{Address: account, Amount: s.amount})
		if s.resolved {
			owner := solana.NewWallet().PublicKey()
			client.Owners[account] = owner
			owners[account] = owner
		}
	}
	return NewClassifier(client, zaptest.NewLogger(t)), mint, owners
}

func TestClassify_Partition(t *testing.T) {
	classifier, mint, _ := setup(t, []holderSpec{
		{amount: 6_000_000_000, resolved: true}, // 0.6%
		{amount: 5_000_000_000, resolved: true}, // 0.5% - ровно на границе
		{amount: 4_000_000_000, resolved: true}, // 0.4%
		{amount: 1_000_000_000, resolved: true}, // 0.1% - граница medium
		{amount: 999_999_999, resolved: true},   // ниже medium
		{amount: 3_000_000_000, resolved: false},
	})

	tiers, err := classifier.Classify(context.Background(), mint, 0.5, 0.1)
	require.NoError(t, err)

	require.Len(t, tiers.Major, 2)
	require.Len(t, tiers.Medium, 2)
	assert.InDelta(t, 0.6, tiers.Major[0].Percentage, 1e-9)
	assert.InDelta(t, 0.5, tiers.Major[1].Percentage, 1e-9)
	assert.Equal(t, "6000", tiers.Major[0].Balance.String())

	seen := make(map[string]bool)
	for _, h := range append(tiers.Major, tiers.Medium...) {
		assert.False(t, seen[h.Address], "holder %s in both tiers", h.Address)
		seen[h.Address] = true
		assert.GreaterOrEqual(t, h.Percentage, 0.1)
	}
	for _, h := range tiers.Medium {
		assert.Less(t, h.Percentage, 0.5)
	}
}

func TestClassify_UsesOwnerAddress(t *testing.T) {
	classifier, mint, owners := setup(t, []holderSpec{{amount: 10_000_000_000, resolved: true}})

	tiers, err := classifier.Classify(context.Background(), mint, 0.5, 0.1)
	require.NoError(t, err)
	require.Len(t, tiers.Major, 1)

	for _, owner := range owners {
		assert.Equal(t, owner.String(), tiers.Major[0].Address)
	}
}

func TestClassify_Empty(t *testing.T) {
	classifier, mint, _ := setup(t, []holderSpec{{amount: 1, resolved: true}})

	tiers, err := classifier.Classify(context.Background(), mint, 0.5, 0.1)
	require.NoError(t, err)
	assert.True(t, tiers.Empty())
}

func TestClassify_Errors(t *testing.T) {
	client := blockchaintest.NewFakeClient()
	classifier := NewClassifier(client, zaptest.NewLogger(t))
	mint := solana.NewWallet().PublicKey()

	_, err := classifier.Classify(context.Background(), mint, 0.5, 0.1)
	assert.ErrorIs(t, err, blockchain.ErrAccountNotFound)

	client.Mints[mint] = &blockchain.MintInfo{Supply: supply, Decimals: 6}
	client.LargestErr = errors.New("rpc unavailable")
	_, err = classifier.Classify(context.Background(), mint, 0.5, 0.1)
	assert.ErrorContains(t, err, "rpc unavailable")

	_, err = classifier.Classify(context.Background(), mint, 0.1, 0.5)
	assert.Error(t, err)
}
