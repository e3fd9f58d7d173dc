// =============================
// File: internal/dex/pumpfun/trade.go
// =============================
package pumpfun

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/blockchain"
	"github.com/goldenbao/jinvault/internal/types"
	"github.com/goldenbao/jinvault/internal/wallet"
)

// Trader покупает и продаёт один токен через bonding curve Pump.fun.
type Trader struct {
	client   blockchain.Client
	wallet   *wallet.Wallet
	config   *Config
	priority *types.PriorityManager
	logger   *zap.Logger
}

func NewTrader(client blockchain.Client, w *wallet.Wallet, cfg *Config, priority *types.PriorityManager, logger *zap.Logger) *Trader {
	return &Trader{
		client:   client,
		wallet:   w,
		config:   cfg,
		priority: priority,
		logger:   logger.Named("pumpfun"),
	}
}

// FetchCurveState читает и декодирует кривую токена. Возвращает ErrCurveNotFound,
// если аккаунта нет или данные не похожи на bonding curve.
func (t *Trader) FetchCurveState(ctx context.Context) (*BondingCurveState, error) {
	addr, err := BondingCurveAddress(t.config.Mint, t.config.ContractAddress)
	if err != nil {
		return nil, err
	}

	account, err := t.client.GetAccountData(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to get bonding curve account: %w", err)
	}
	if account == nil {
		return nil, ErrCurveNotFound
	}

	// По умолчанию создатель - наш кошелёк: комиссии токена получает он
	state := DecodeBondingCurve(account.Data, t.wallet.PublicKey)
	if state == nil {
		return nil, ErrCurveNotFound
	}

	t.logger.Debug("Bonding curve state",
		zap.String("bonding_curve", addr.String()),
		zap.Uint64("virtual_token_reserves", state.VirtualTokenReserves),
		zap.Uint64("virtual_sol_reserves", state.VirtualSolReserves),
		zap.Bool("complete", state.Complete))

	return state, nil
}

// usableCurve возвращает состояние кривой, пригодной для торговли.
func (t *Trader) usableCurve(ctx context.Context) (*BondingCurveState, error) {
	state, err := t.FetchCurveState(ctx)
	if err != nil {
		return nil, err
	}
	if !state.Usable() {
		return nil, ErrCurveComplete
	}
	return state, nil
}

// Buy покупает токен на solIn лампортов.
func (t *Trader) Buy(ctx context.Context, solIn uint64) (*TradeResult, error) {
	// Шаг 1: свежее состояние кривой
	state, err := t.usableCurve(ctx)
	if err != nil {
		return nil, err
	}

	// Шаг 2: проверка баланса до сборки транзакции
	balance, err := t.client.GetBalance(ctx, t.wallet.PublicKey, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet balance: %w", err)
	}
	required := types.MaxInWithSlippage(solIn, t.config.BuyBalanceBufferBps-types.BasisPoints)
	if balance < required {
		return nil, fmt.Errorf("%w: have %d lamports, need %d", ErrInsufficientBalance, balance, required)
	}

	// Шаг 3: котировка и slippage
	tokenOut := QuoteBuy(state, solIn)
	if tokenOut == 0 {
		return nil, fmt.Errorf("buy quote is zero for %d lamports", solIn)
	}
	minTokens, maxSolCost := ApplyBuySlippage(tokenOut, solIn, t.config.BuySlippageBps)

	// Шаг 4: аккаунты и инструкции
	accounts, err := t.tradeAccounts(ctx, state.Creator)
	if err != nil {
		return nil, err
	}
	instructions, err := t.priority.Instructions(types.ProfileCurveBuy)
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, BuildBuyInstruction(accounts, tokenOut, maxSolCost))

	t.logger.Info("Buying on bonding curve",
		zap.String("mint", t.config.Mint.String()),
		zap.Uint64("sol_in", solIn),
		zap.Uint64("expected_tokens", tokenOut),
		zap.Uint64("min_tokens", minTokens),
		zap.Uint64("max_sol_cost", maxSolCost))

	// Шаг 5: одна отправка, без повторов
	sig, err := t.client.SendAndConfirm(ctx, instructions, t.wallet)
	if err != nil {
		return nil, handleTradeError(err, solIn, maxSolCost)
	}

	return &TradeResult{Signature: sig, AmountIn: solIn, AmountOut: tokenOut, MinAmountOut: minTokens}, nil
}

// Sell продаёт tokensIn минимальных единиц токена за SOL.
func (t *Trader) Sell(ctx context.Context, tokensIn uint64) (*TradeResult, error) {
	state, err := t.usableCurve(ctx)
	if err != nil {
		return nil, err
	}

	solOut := QuoteSell(state, tokensIn)
	if solOut == 0 {
		return nil, fmt.Errorf("sell quote is zero for %d tokens", tokensIn)
	}
	minSolOut := ApplySellSlippage(solOut, t.config.SellSlippagePercent)

	accounts, err := t.tradeAccounts(ctx, state.Creator)
	if err != nil {
		return nil, err
	}
	instructions, err := t.priority.Instructions(types.ProfileCurveSell)
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, BuildSellInstruction(accounts, tokensIn, minSolOut))

	t.logger.Info("Selling on bonding curve",
		zap.String("mint", t.config.Mint.String()),
		zap.Uint64("tokens_in", tokensIn),
		zap.Uint64("expected_sol", solOut),
		zap.Uint64("min_sol_output", minSolOut))

	sig, err := t.client.SendAndConfirm(ctx, instructions, t.wallet)
	if err != nil {
		return nil, handleTradeError(err, tokensIn, minSolOut)
	}

	return &TradeResult{Signature: sig, AmountIn: tokensIn, AmountOut: solOut, MinAmountOut: minSolOut}, nil
}

// tradeAccounts определяет программу токена по владельцу минта и выводит адреса.
func (t *Trader) tradeAccounts(ctx context.Context, creator solana.PublicKey) (*TradeAccounts, error) {
	cfg := *t.config
	if mint, err := t.client.GetMint(ctx, cfg.Mint); err == nil && !mint.TokenProgram.IsZero() {
		cfg.TokenProgram = mint.TokenProgram
	} else if err != nil {
		t.logger.Debug("Using default token program", zap.Error(err))
	}

	accounts, err := DeriveTradeAccounts(&cfg, t.wallet.PublicKey, creator)
	if err != nil {
		return nil, fmt.Errorf("failed to derive trade accounts: %w", err)
	}
	return accounts, nil
}
