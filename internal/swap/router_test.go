package swap

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
	"github.com/goldenbao/jinvault/internal/dex/jupiter"
	"github.com/goldenbao/jinvault/internal/dex/pumpfun"
	"github.com/goldenbao/jinvault/internal/wallet"
)

type mockCurve struct {
	err        error
	buyCalls   int
	sellCalls  int
	lastAmount uint64
}

func (m *mockCurve) Buy(_ context.Context, solIn uint64) (*pumpfun.TradeResult, error) {
	m.buyCalls++
	m.lastAmount = solIn
	if m.err != nil {
		return nil, m.err
	}
	return &pumpfun.TradeResult{AmountIn: solIn, AmountOut: 5_000_000, Signature: solana.Signature{1}}, nil
}

func (m *mockCurve) Sell(_ context.Context, tokensIn uint64) (*pumpfun.TradeResult, error) {
	m.sellCalls++
	m.lastAmount = tokensIn
	if m.err != nil {
		return nil, m.err
	}
	return &pumpfun.TradeResult{AmountIn: tokensIn, AmountOut: 250_000_000, Signature: solana.Signature{2}}, nil
}

type mockAggregator struct {
	err    error
	calls  []jupiter.SwapParams
	output uint64
}

func (m *mockAggregator) Swap(_ context.Context, params jupiter.SwapParams, _ *wallet.Wallet, _ jupiter.Submitter) (*jupiter.SwapResult, error) {
	m.calls = append(m.calls, params)
	if m.err != nil {
		return nil, m.err
	}
	return &jupiter.SwapResult{Signature: solana.Signature{3}, OutAmount: m.output}, nil
}

type routerFixture struct {
	router *Router
	client *blockchaintest.FakeClient
	curve  *mockCurve
	agg    *mockAggregator
	wallet *wallet.Wallet
	mint   solana.PublicKey
	gold   solana.PublicKey
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	client := blockchaintest.NewFakeClient()
	w := blockchaintest.NewTestWallet(t)
	mint := solana.NewWallet().PublicKey()
	gold := solana.NewWallet().PublicKey()

	client.Mints[mint] = &blockchain.MintInfo{Supply: 1_000_000_000_000_000, Decimals: 6, TokenProgram: blockchain.Token2022ProgramID}
	client.Mints[gold] = &blockchain.MintInfo{Supply: 1_000_000_000, Decimals: 6, TokenProgram: solana.TokenProgramID}
	client.Balances[w.PublicKey] = 10_000_000_000

	curve := &mockCurve{}
	agg := &mockAggregator{output: 4_200_000}
	return &routerFixture{
		router: NewRouter(client, w, curve, agg, mint, zaptest.NewLogger(t)),
		client: client,
		curve:  curve,
		agg:    agg,
		wallet: w,
		mint:   mint,
		gold:   gold,
	}
}

func TestQuoteAndSwap_NativeCurve(t *testing.T) {
	f := newRouterFixture(t)

	res, err := f.router.QuoteAndSwap(context.Background(), Buy, 1_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, RouteBondingCurve, res.Route)
	assert.Equal(t, "5", res.AmountOutUI.String())
	assert.Equal(t, 1, f.curve.buyCalls)
	assert.Empty(t, f.agg.calls)
}

func TestQuoteAndSwap_FallbackOnUnusableCurve(t *testing.T) {
	for _, curveErr := range []error{pumpfun.ErrCurveNotFound, pumpfun.ErrCurveComplete} {
		t.Run(curveErr.Error(), func(t *testing.T) {
			f := newRouterFixture(t)
			f.curve.err = curveErr

			res, err := f.router.QuoteAndSwap(context.Background(), Buy, 150_000_000)
			require.NoError(t, err)
			assert.Equal(t, RouteAggregator, res.Route)

			require.Len(t, f.agg.calls, 1)
			call := f.agg.calls[0]
			assert.Equal(t, blockchain.NativeMint, call.InputMint)
			assert.Equal(t, f.mint, call.OutputMint)
			assert.Equal(t, uint16(1000), call.SlippageBps)
			assert.Equal(t, jupiter.DynamicSlippage{MinBps: 200, MaxBps: 1500}, call.Dynamic)
		})
	}
}

func TestQuoteAndSwap_ProgramRejectionIsTerminal(t *testing.T) {
	f := newRouterFixture(t)
	f.curve.err = errors.New("custom program error: 0x1774")

	_, err := f.router.QuoteAndSwap(context.Background(), Buy, 1_000)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCurveUnusable)
	assert.Empty(t, f.agg.calls)
}

func TestQuoteAndSwap_InsufficientBalance(t *testing.T) {
	f := newRouterFixture(t)
	f.client.Balances[f.wallet.PublicKey] = 100

	_, err := f.router.QuoteAndSwap(context.Background(), Buy, 1_000)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Zero(t, f.curve.buyCalls)

	// Проверка внутри кривой тоже классифицируется
	f.client.Balances[f.wallet.PublicKey] = 10_000
	f.curve.err = pumpfun.ErrInsufficientBalance
	_, err = f.router.QuoteAndSwap(context.Background(), Buy, 1_000)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Empty(t, f.agg.calls)
}

func TestQuoteAndSwap_SellChecksTokenBalance(t *testing.T) {
	f := newRouterFixture(t)

	// Токен-аккаунта нет: баланс ноль
	_, err := f.router.QuoteAndSwap(context.Background(), Sell, 1_000)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	ata, err := f.wallet.GetATAForProgram(f.mint, blockchain.Token2022ProgramID)
	require.NoError(t, err)
	f.client.TokenBalances[ata] = 2_000_000

	f.curve.err = pumpfun.ErrCurveComplete
	res, err := f.router.QuoteAndSwap(context.Background(), Sell, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, RouteAggregator, res.Route)
	require.Len(t, f.agg.calls, 1)
	assert.Equal(t, f.mint, f.agg.calls[0].InputMint)
	assert.Equal(t, blockchain.NativeMint, f.agg.calls[0].OutputMint)
	assert.Equal(t, uint16(500), f.agg.calls[0].SlippageBps)
	// У SOL 9 знаков
	assert.Equal(t, "0.0042", res.AmountOutUI.String())
}

func TestSwapForAsset(t *testing.T) {
	f := newRouterFixture(t)

	res, err := f.router.SwapForAsset(context.Background(), f.gold, 700_000_000)
	require.NoError(t, err)
	assert.Equal(t, "4.2", res.AmountOutUI.String())
	assert.Zero(t, f.curve.buyCalls)

	require.Len(t, f.agg.calls, 1)
	assert.Equal(t, uint16(100), f.agg.calls[0].SlippageBps)
	assert.Equal(t, jupiter.DynamicSlippage{MinBps: 50, MaxBps: 300}, f.agg.calls[0].Dynamic)
}

func TestTokenBalance(t *testing.T) {
	f := newRouterFixture(t)

	balance, err := f.router.TokenBalance(context.Background(), f.gold)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	ata, err := f.wallet.GetATAForProgram(f.gold, solana.TokenProgramID)
	require.NoError(t, err)
	f.client.TokenBalances[ata] = 12_345_678

	balance, err = f.router.TokenBalance(context.Background(), f.gold)
	require.NoError(t, err)
	assert.Equal(t, "12.345678", balance.String())
}
