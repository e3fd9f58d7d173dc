// =============================
// File: internal/swap/router.go
// =============================
package swap

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/blockchain"
	"github.com/goldenbao/jinvault/internal/dex/jupiter"
	"github.com/goldenbao/jinvault/internal/dex/pumpfun"
	"github.com/goldenbao/jinvault/internal/types"
	"github.com/goldenbao/jinvault/internal/wallet"
)

var (
	// ErrCurveUnusable - кривой нет или она завершена; включает фолбэк на агрегатор.
	ErrCurveUnusable = errors.New("bonding curve unusable")
	// ErrInsufficientBalance - проверка баланса до сборки транзакции не прошла.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Direction - направление свапа относительно токена протокола.
type Direction int

const (
	// Buy: SOL -> токен протокола
	Buy Direction = iota
	// Sell: токен протокола -> SOL
	Sell
)

func (d Direction) String() string {
	if d == Sell {
		return "sell"
	}
	return "buy"
}

// Route - путь, которым прошёл свап.
type Route string

const (
	RouteBondingCurve Route = "bonding_curve"
	RouteAggregator   Route = "aggregator"
)

// Result - итог свапа.
type Result struct {
	Route     Route
	AmountIn  uint64
	AmountOut uint64
	// AmountOutUI - выход в единицах актива с учётом decimals.
	AmountOutUI decimal.Decimal
	Signature   solana.Signature
}

// SlippageProfile - параметры агрегатора для конкретного вида свапа.
type SlippageProfile struct {
	Bps     uint16
	Dynamic jupiter.DynamicSlippage
}

var (
	AssetPurchaseSlippage = SlippageProfile{Bps: 100, Dynamic: jupiter.DynamicSlippage{MinBps: 50, MaxBps: 300}}
	BuybackSlippage       = SlippageProfile{Bps: 1000, Dynamic: jupiter.DynamicSlippage{MinBps: 200, MaxBps: 1500}}
	SellSlippage          = SlippageProfile{Bps: 500, Dynamic: jupiter.DynamicSlippage{MinBps: 100, MaxBps: 500}}
)

// CurveTrader - нативный путь через bonding curve.
type CurveTrader interface {
	Buy(ctx context.Context, solIn uint64) (*pumpfun.TradeResult, error)
	Sell(ctx context.Context, tokensIn uint64) (*pumpfun.TradeResult, error)
}

// Aggregator - внешний агрегатор свапов.
type Aggregator interface {
	Swap(ctx context.Context, params jupiter.SwapParams, signer *wallet.Wallet, submitter jupiter.Submitter) (*jupiter.SwapResult, error)
}

// Router выбирает путь свапа: сначала кривая, затем агрегатор.
type Router struct {
	client     blockchain.Client
	wallet     *wallet.Wallet
	curve      CurveTrader
	aggregator Aggregator
	tokenMint  solana.PublicKey
	logger     *zap.Logger
}

func NewRouter(client blockchain.Client, w *wallet.Wallet, curve CurveTrader, aggregator Aggregator, tokenMint solana.PublicKey, logger *zap.Logger) *Router {
	return &Router{
		client:     client,
		wallet:     w,
		curve:      curve,
		aggregator: aggregator,
		tokenMint:  tokenMint,
		logger:     logger.Named("swap"),
	}
}

// UnconfirmedSignature - подпись свапа, который был отправлен, но не подтвердился.
func UnconfirmedSignature(err error) (solana.Signature, bool) {
	return jupiter.UnconfirmedSignature(err)
}

// QuoteAndSwap меняет amountIn (лампорты для Buy, минимальные единицы токена
// для Sell). Агрегатор используется только если кривая непригодна.
func (r *Router) QuoteAndSwap(ctx context.Context, direction Direction, amountIn uint64) (*Result, error) {
	if amountIn == 0 {
		return nil, fmt.Errorf("%s amount must be positive", direction)
	}

	// Шаг 1: баланс проверяется до сборки любой транзакции
	if err := r.checkBalance(ctx, direction, amountIn); err != nil {
		return nil, err
	}

	// Шаг 2: нативный путь
	res, err := r.swapOnCurve(ctx, direction, amountIn)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, ErrCurveUnusable) {
		return nil, err
	}

	r.logger.Info("Bonding curve unusable, falling back to aggregator",
		zap.String("direction", direction.String()),
		zap.Uint64("amount_in", amountIn),
		zap.Error(err))

	// Шаг 3: агрегатор
	params := jupiter.SwapParams{
		InputMint:   blockchain.NativeMint,
		OutputMint:  r.tokenMint,
		Amount:      amountIn,
		SlippageBps: BuybackSlippage.Bps,
		Dynamic:     BuybackSlippage.Dynamic,
	}
	if direction == Sell {
		params.InputMint, params.OutputMint = r.tokenMint, blockchain.NativeMint
		params.SlippageBps, params.Dynamic = SellSlippage.Bps, SellSlippage.Dynamic
	}
	return r.swapOnAggregator(ctx, params)
}

// SwapForAsset покупает outputMint на lamports через агрегатор.
func (r *Router) SwapForAsset(ctx context.Context, outputMint solana.PublicKey, lamports uint64) (*Result, error) {
	if lamports == 0 {
		return nil, fmt.Errorf("swap amount must be positive")
	}
	if err := r.checkBalance(ctx, Buy, lamports); err != nil {
		return nil, err
	}

	return r.swapOnAggregator(ctx, jupiter.SwapParams{
		InputMint:   blockchain.NativeMint,
		OutputMint:  outputMint,
		Amount:      lamports,
		SlippageBps: AssetPurchaseSlippage.Bps,
		Dynamic:     AssetPurchaseSlippage.Dynamic,
	})
}

// TokenBalance возвращает баланс кошелька по минту в единицах с учётом decimals.
// Отсутствующий токен-аккаунт означает нулевой баланс.
func (r *Router) TokenBalance(ctx context.Context, mint solana.PublicKey) (decimal.Decimal, error) {
	raw, decimals, err := r.rawTokenBalance(ctx, mint)
	if err != nil {
		return decimal.Zero, err
	}
	return types.RawToUI(raw, decimals), nil
}

func (r *Router) swapOnCurve(ctx context.Context, direction Direction, amountIn uint64) (*Result, error) {
	var (
		trade *pumpfun.TradeResult
		err   error
	)
	if direction == Sell {
		trade, err = r.curve.Sell(ctx, amountIn)
	} else {
		trade, err = r.curve.Buy(ctx, amountIn)
	}

	switch {
	case err == nil:
	case errors.Is(err, pumpfun.ErrCurveNotFound), errors.Is(err, pumpfun.ErrCurveComplete):
		return nil, fmt.Errorf("%w: %w", ErrCurveUnusable, err)
	case errors.Is(err, pumpfun.ErrInsufficientBalance):
		return nil, fmt.Errorf("%w: %w", ErrInsufficientBalance, err)
	default:
		return nil, fmt.Errorf("bonding curve %s failed: %w", direction, err)
	}

	decimals := uint8(pumpfun.TokenDecimals)
	if direction == Sell {
		decimals = types.SOLDecimals
	}

	r.logger.Info("Swap executed on bonding curve",
		zap.String("direction", direction.String()),
		zap.Uint64("amount_in", trade.AmountIn),
		zap.Uint64("amount_out", trade.AmountOut),
		zap.String("signature", trade.Signature.String()))

	return &Result{
		Route:       RouteBondingCurve,
		AmountIn:    trade.AmountIn,
		AmountOut:   trade.AmountOut,
		AmountOutUI: types.RawToUI(trade.AmountOut, decimals),
		Signature:   trade.Signature,
	}, nil
}

func (r *Router) swapOnAggregator(ctx context.Context, params jupiter.SwapParams) (*Result, error) {
	decimals, err := r.mintDecimals(ctx, params.OutputMint)
	if err != nil {
		return nil, err
	}

	res, err := r.aggregator.Swap(ctx, params, r.wallet, r.client)
	if err != nil {
		return nil, err
	}

	out := types.RawToUI(res.OutAmount, decimals)
	r.logger.Info("Swap executed via aggregator",
		zap.String("input_mint", params.InputMint.String()),
		zap.String("output_mint", params.OutputMint.String()),
		zap.Uint64("amount_in", params.Amount),
		zap.String("amount_out", out.String()),
		zap.String("signature", res.Signature.String()))

	return &Result{
		Route:       RouteAggregator,
		AmountIn:    params.Amount,
		AmountOut:   res.OutAmount,
		AmountOutUI: out,
		Signature:   res.Signature,
	}, nil
}

func (r *Router) checkBalance(ctx context.Context, direction Direction, amountIn uint64) error {
	if direction == Sell {
		balance, _, err := r.rawTokenBalance(ctx, r.tokenMint)
		if err != nil {
			return err
		}
		if balance < amountIn {
			return fmt.Errorf("%w: have %d tokens, need %d", ErrInsufficientBalance, balance, amountIn)
		}
		return nil
	}

	balance, err := r.client.GetBalance(ctx, r.wallet.PublicKey, rpc.CommitmentConfirmed)
	if err != nil {
		return fmt.Errorf("failed to get wallet balance: %w", err)
	}
	if balance < amountIn {
		return fmt.Errorf("%w: have %d lamports, need %d", ErrInsufficientBalance, balance, amountIn)
	}
	return nil
}

func (r *Router) rawTokenBalance(ctx context.Context, mint solana.PublicKey) (uint64, uint8, error) {
	info, err := r.client.GetMint(ctx, mint)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get mint %s: %w", mint, err)
	}
	ata, err := r.wallet.GetATAForProgram(mint, info.TokenProgram)
	if err != nil {
		return 0, 0, err
	}
	balance, err := r.client.GetTokenAccountBalance(ctx, ata)
	if errors.Is(err, blockchain.ErrAccountNotFound) {
		return 0, info.Decimals, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get token balance: %w", err)
	}
	return balance, info.Decimals, nil
}

func (r *Router) mintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	if mint.Equals(blockchain.NativeMint) {
		return types.SOLDecimals, nil
	}
	info, err := r.client.GetMint(ctx, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to get mint %s: %w", mint, err)
	}
	return info.Decimals, nil
}
