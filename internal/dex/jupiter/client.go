// =============================
// File: internal/dex/jupiter/client.go
// =============================
package jupiter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL        = "https://public.jupiterapi.com"
	defaultRequestTimeout = 15 * time.Second

	// Параметры приоритетной комиссии, которую агрегатор добавляет в транзакцию
	maxPriorityLamports = 1_000_000
	priorityLevel       = "high"
)

// Client работает с HTTP API агрегатора: котировка и сборка транзакции свапа.
type Client struct {
	client  *http.Client
	logger  *zap.Logger
	baseURL string

	maxAttempts uint
	retryDelay  time.Duration
}

// NewClient создает новый экземпляр клиента агрегатора
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client: &http.Client{
			Timeout: defaultRequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:      logger.Named("jupiter"),
		baseURL:     baseURL,
		maxAttempts: 3,
		retryDelay:  2 * time.Second,
	}
}

// QuoteRequest - параметры GET /quote.
type QuoteRequest struct {
	InputMint   solana.PublicKey
	OutputMint  solana.PublicKey
	Amount      uint64
	SlippageBps uint16
}

// QuoteResponse - ответ /quote. Raw передаётся в /swap без изменений.
type QuoteResponse struct {
	InputMint            string `json:"inputMint"`
	OutputMint           string `json:"outputMint"`
	InAmount             string `json:"inAmount"`
	OutAmount            string `json:"outAmount"`
	OtherAmountThreshold string `json:"otherAmountThreshold"`
	SwapMode             string `json:"swapMode"`
	SlippageBps          int    `json:"slippageBps"`
	RoutePlanLength      int    `json:"-"`

	Raw json.RawMessage `json:"-"`
}

// OutAmountUint - ожидаемый выход в минимальных единицах.
func (q *QuoteResponse) OutAmountUint() (uint64, error) {
	return strconv.ParseUint(q.OutAmount, 10, 64)
}

// DynamicSlippage - границы динамического slippage, которые агрегатор
// может выбрать при сборке транзакции.
type DynamicSlippage struct {
	MinBps uint16 `json:"minBps"`
	MaxBps uint16 `json:"maxBps"`
}

type swapRequest struct {
	UserPublicKey             string          `json:"userPublicKey"`
	QuoteResponse             json.RawMessage `json:"quoteResponse"`
	WrapAndUnwrapSol          bool            `json:"wrapAndUnwrapSol"`
	DynamicSlippage           DynamicSlippage `json:"dynamicSlippage"`
	PrioritizationFeeLamports priorityFee     `json:"prioritizationFeeLamports"`
}

type priorityFee struct {
	PriorityLevelWithMaxLamports priorityLevelWithMax `json:"priorityLevelWithMaxLamports"`
}

type priorityLevelWithMax struct {
	MaxLamports   uint64 `json:"maxLamports"`
	PriorityLevel string `json:"priorityLevel"`
}

// Quote запрашивает котировку. Ошибки котировки не повторяются.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	params := url.Values{}
	params.Set("inputMint", req.InputMint.String())
	params.Set("outputMint", req.OutputMint.String())
	params.Set("amount", strconv.FormatUint(req.Amount, 10))
	params.Set("slippageBps", strconv.FormatUint(uint64(req.SlippageBps), 10))

	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/quote?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("jupiter quote failed: %w", err)
	}

	var quote QuoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	if quote.OutAmount == "" {
		return nil, fmt.Errorf("jupiter quote failed: empty outAmount")
	}
	quote.RoutePlanLength = int(gjson.GetBytes(body, "routePlan.#").Int())
	quote.Raw = body

	c.logger.Debug("Quote received",
		zap.String("input_mint", quote.InputMint),
		zap.String("output_mint", quote.OutputMint),
		zap.String("in_amount", quote.InAmount),
		zap.String("out_amount", quote.OutAmount),
		zap.Int("route_hops", quote.RoutePlanLength))

	return &quote, nil
}

// SwapTransaction получает от агрегатора неподписанную транзакцию под котировку.
func (c *Client) SwapTransaction(ctx context.Context, user solana.PublicKey, quote *QuoteResponse, slippage DynamicSlippage) (*solana.Transaction, error) {
	payload, err := json.Marshal(swapRequest{
		UserPublicKey:    user.String(),
		QuoteResponse:    quote.Raw,
		WrapAndUnwrapSol: true,
		DynamicSlippage:  slippage,
		PrioritizationFeeLamports: priorityFee{
			PriorityLevelWithMaxLamports: priorityLevelWithMax{
				MaxLamports:   maxPriorityLamports,
				PriorityLevel: priorityLevel,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode swap request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/swap", payload)
	if err != nil {
		return nil, fmt.Errorf("jupiter swap failed: %w", err)
	}

	encoded := gjson.GetBytes(body, "swapTransaction").String()
	if encoded == "" {
		return nil, fmt.Errorf("jupiter swap failed: response has no swapTransaction")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode swap transaction: %w", err)
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("deserialize swap transaction: %w", err)
	}
	return tx, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request completed",
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
		zap.Int("status", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
