package jupiter

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap/zaptest"

	"github.com/goldenbao/jinvault/internal/blockchain/blockchaintest"
	"github.com/goldenbao/jinvault/internal/blockchain/solbc"
	"github.com/goldenbao/jinvault/internal/wallet"
)

var goldMint = solana.MustPublicKeyFromBase58("GoLDppdjB1vDTPSGxyMJFqdnj134yH6Prg9eqsGDiw6A")

const quoteJSON = `{"inputMint":"So11111111111111111111111111111111111111112","outputMint":"GoLDppdjB1vDTPSGxyMJFqdnj134yH6Prg9eqsGDiw6A","inAmount":"700000000","outAmount":"4200000","otherAmountThreshold":"4158000","swapMode":"ExactIn","slippageBps":100,"routePlan":[{"percent":100},{"percent":100}]}`

// mockSubmitter возвращает ошибки из списка по очереди, затем успех.
type mockSubmitter struct {
	errs  []error
	calls atomic.Int32
	// landed - транзакция дошла до сети, ошибка пришла при подтверждении
	landed bool
}

func (m *mockSubmitter) SendRawAndConfirm(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	n := int(m.calls.Add(1))
	if n <= len(m.errs) {
		if m.landed {
			return tx.Signatures[0], m.errs[n-1]
		}
		return solana.Signature{}, m.errs[n-1]
	}
	return tx.Signatures[0], nil
}

func unsignedSwapTx(t *testing.T, user solana.PublicKey) string {
	t.Helper()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(1, user, solana.NewWallet().PublicKey()).Build()},
		solana.Hash{},
		solana.TransactionPayer(user),
	)
	require.NoError(t, err)
	// Как у агрегатора: нулевая подпись на месте подписи пользователя
	tx.Signatures = []solana.Signature{{}}
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

type aggregator struct {
	server     *httptest.Server
	swapBodies []string
	swapCalls  atomic.Int32
}

func newAggregator(t *testing.T, w *wallet.Wallet, quoteStatus int) *aggregator {
	t.Helper()
	agg := &aggregator{}
	swapTx := unsignedSwapTx(t, w.PublicKey)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /quote", func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "So11111111111111111111111111111111111111112", r.URL.Query().Get("inputMint"))
		assert.Equal(t, goldMint.String(), r.URL.Query().Get("outputMint"))
		assert.Equal(t, "700000000", r.URL.Query().Get("amount"))
		assert.Equal(t, "100", r.URL.Query().Get("slippageBps"))
		if quoteStatus != http.StatusOK {
			http.Error(rw, "no route", quoteStatus)
			return
		}
		_, _ = io.WriteString(rw, quoteJSON)
	})
	mux.HandleFunc("POST /swap", func(rw http.ResponseWriter, r *http.Request) {
		agg.swapCalls.Add(1)
		body, _ := io.ReadAll(r.Body)
		agg.swapBodies = append(agg.swapBodies, string(body))
		_, _ = io.WriteString(rw, `{"swapTransaction":"`+swapTx+`","lastValidBlockHeight":1}`)
	})
	agg.server = httptest.NewServer(mux)
	t.Cleanup(agg.server.Close)
	return agg
}

func newTestClient(t *testing.T, baseURL string) *Client {
	c := NewClient(baseURL, zaptest.NewLogger(t))
	c.retryDelay = time.Millisecond
	return c
}

func goldParams() SwapParams {
	return SwapParams{
		InputMint:   solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112"),
		OutputMint:  goldMint,
		Amount:      700_000_000,
		SlippageBps: 100,
		Dynamic:     DynamicSlippage{MinBps: 50, MaxBps: 300},
	}
}

func TestSwap_RequestShape(t *testing.T) {
	w := blockchaintest.NewTestWallet(t)
	agg := newAggregator(t, w, http.StatusOK)
	client := newTestClient(t, agg.server.URL)

	res, err := client.Swap(context.Background(), goldParams(), w, &mockSubmitter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(4_200_000), res.OutAmount)
	assert.Equal(t, 2, res.Quote.RoutePlanLength)

	require.Len(t, agg.swapBodies, 1)
	body := agg.swapBodies[0]
	assert.Equal(t, w.PublicKey.String(), gjson.Get(body, "userPublicKey").String())
	assert.True(t, gjson.Get(body, "wrapAndUnwrapSol").Bool())
	assert.Equal(t, int64(50), gjson.Get(body, "dynamicSlippage.minBps").Int())
	assert.Equal(t, int64(300), gjson.Get(body, "dynamicSlippage.maxBps").Int())
	assert.Equal(t, int64(1_000_000), gjson.Get(body, "prioritizationFeeLamports.priorityLevelWithMaxLamports.maxLamports").Int())
	assert.Equal(t, "high", gjson.Get(body, "prioritizationFeeLamports.priorityLevelWithMaxLamports.priorityLevel").String())
	// Котировка уходит обратно без изменений
	assert.Equal(t, "4200000", gjson.Get(body, "quoteResponse.outAmount").String())
	assert.Equal(t, int64(2), gjson.Get(body, "quoteResponse.routePlan.#").Int())
}

func TestSwap_RetriesTransientSubmission(t *testing.T) {
	w := blockchaintest.NewTestWallet(t)
	agg := newAggregator(t, w, http.StatusOK)
	client := newTestClient(t, agg.server.URL)

	submitter := &mockSubmitter{errs: []error{solbc.ErrBlockhashNotFound, solbc.ErrConfirmationTimeout}}
	res, err := client.Swap(context.Background(), goldParams(), w, submitter)
	require.NoError(t, err)
	assert.Equal(t, int32(3), submitter.calls.Load())
	assert.NotEqual(t, solana.Signature{}, res.Signature)
	// Транзакция собирается один раз
	assert.Equal(t, int32(1), agg.swapCalls.Load())
}

func TestSwap_GivesUpAfterThreeAttempts(t *testing.T) {
	w := blockchaintest.NewTestWallet(t)
	agg := newAggregator(t, w, http.StatusOK)
	client := newTestClient(t, agg.server.URL)

	timeout := solbc.ErrConfirmationTimeout
	submitter := &mockSubmitter{errs: []error{timeout, timeout, timeout, timeout}}
	_, err := client.Swap(context.Background(), goldParams(), w, submitter)
	require.ErrorIs(t, err, timeout)
	assert.Equal(t, int32(3), submitter.calls.Load())
}

func TestSwap_TimeoutKeepsLastSignature(t *testing.T) {
	w := blockchaintest.NewTestWallet(t)
	agg := newAggregator(t, w, http.StatusOK)
	client := newTestClient(t, agg.server.URL)

	timeout := solbc.ErrConfirmationTimeout
	submitter := &mockSubmitter{errs: []error{timeout, timeout, timeout}, landed: true}
	_, err := client.Swap(context.Background(), goldParams(), w, submitter)
	require.ErrorIs(t, err, timeout)

	sig, ok := UnconfirmedSignature(err)
	require.True(t, ok)
	assert.NotEqual(t, solana.Signature{}, sig)
	assert.Contains(t, err.Error(), sig.String())
}

func TestSwap_NothingSentHasNoSignature(t *testing.T) {
	w := blockchaintest.NewTestWallet(t)
	agg := newAggregator(t, w, http.StatusOK)
	client := newTestClient(t, agg.server.URL)

	submitter := &mockSubmitter{errs: []error{solbc.ErrBlockhashNotFound, solbc.ErrBlockhashNotFound, solbc.ErrBlockhashNotFound}}
	_, err := client.Swap(context.Background(), goldParams(), w, submitter)
	require.Error(t, err)

	_, ok := UnconfirmedSignature(err)
	assert.False(t, ok)
}

func TestSwap_ProgramErrorNotRetried(t *testing.T) {
	w := blockchaintest.NewTestWallet(t)
	agg := newAggregator(t, w, http.StatusOK)
	client := newTestClient(t, agg.server.URL)

	rejection := &solbc.ProgramError{Message: "slippage tolerance exceeded", Err: errors.New("custom program error: 0x1771")}
	submitter := &mockSubmitter{errs: []error{rejection}}
	_, err := client.Swap(context.Background(), goldParams(), w, submitter)
	require.Error(t, err)
	assert.True(t, solbc.IsProgramError(err))
	assert.Equal(t, int32(1), submitter.calls.Load())
}

func TestSwap_QuoteFailureNotRetried(t *testing.T) {
	w := blockchaintest.NewTestWallet(t)
	agg := newAggregator(t, w, http.StatusBadRequest)
	client := newTestClient(t, agg.server.URL)

	submitter := &mockSubmitter{}
	_, err := client.Swap(context.Background(), goldParams(), w, submitter)
	require.ErrorContains(t, err, "jupiter quote failed")
	assert.Zero(t, agg.swapCalls.Load())
	assert.Zero(t, submitter.calls.Load())
}
