// =============================
// File: internal/service/live.go
// =============================
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/blockchain"
	"github.com/goldenbao/jinvault/internal/config"
	"github.com/goldenbao/jinvault/internal/dex/jupiter"
	"github.com/goldenbao/jinvault/internal/dex/pumpfun"
	"github.com/goldenbao/jinvault/internal/dex/pumpswap"
	"github.com/goldenbao/jinvault/internal/distribution"
	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/fees"
	"github.com/goldenbao/jinvault/internal/holders"
	"github.com/goldenbao/jinvault/internal/swap"
	"github.com/goldenbao/jinvault/internal/types"
	"github.com/goldenbao/jinvault/internal/wallet"
)

// components - всё, что собирается после успешной инициализации.
type components struct {
	wallet       *wallet.Wallet
	tokenMint    solana.PublicKey
	goldMint     solana.PublicKey
	router       *swap.Router
	classifier   *holders.Classifier
	claimer      *fees.Claimer
	orchestrator *distribution.Orchestrator
}

// Live работает с реальной цепочкой. Ключ кошелька и адрес токена
// проверяются при первой операции; до этого клиент "не готов".
type Live struct {
	cfg    *config.Config
	client blockchain.Client
	logger *zap.Logger

	mu   sync.Mutex
	comp *components
}

var _ ChainClient = (*Live)(nil)

func NewLive(cfg *config.Config, client blockchain.Client, logger *zap.Logger) *Live {
	return &Live{cfg: cfg, client: client, logger: logger.Named("chain")}
}

// Initialize собирает компоненты. Повторный вызов после успеха ничего не делает,
// после неудачи пробует снова (например, после исправления .env и рестарта конфигурации).
func (l *Live) Initialize(context.Context) InitResult {
	_, err := l.ready()
	if err != nil {
		return InitResult{Ready: false, Error: err.Error()}
	}
	return InitResult{Ready: true}
}

func (l *Live) ready() (*components, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.comp != nil {
		return l.comp, nil
	}
	comp, err := l.build()
	if err != nil {
		l.logger.Warn("Blockchain client not ready", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	l.comp = comp
	l.logger.Info("Blockchain client initialized",
		zap.String("wallet", comp.wallet.PublicKey.String()),
		zap.String("token_mint", comp.tokenMint.String()))
	return comp, nil
}

func (l *Live) build() (*components, error) {
	// Шаг 1: кошелёк и минты
	if l.cfg.WalletPrivateKey == "" {
		return nil, fmt.Errorf("CREATOR_WALLET_PRIVATE_KEY is not set")
	}
	w, err := wallet.NewWallet(l.cfg.WalletPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet key: %w", err)
	}
	if l.cfg.TokenMint == "" {
		return nil, fmt.Errorf("TOKEN_CONTRACT_ADDRESS is not set")
	}
	tokenMint, err := solana.PublicKeyFromBase58(l.cfg.TokenMint)
	if err != nil {
		return nil, fmt.Errorf("invalid token address: %w", err)
	}
	goldMint, err := solana.PublicKeyFromBase58(l.cfg.GoldMint)
	if err != nil {
		return nil, fmt.Errorf("invalid gold mint address: %w", err)
	}

	// Шаг 2: конфигурации площадок
	pfCfg := pumpfun.GetDefaultConfig()
	if err := pfCfg.SetupForToken(l.cfg.TokenMint, l.logger); err != nil {
		return nil, err
	}
	psCfg, err := pumpswap.GetDefaultConfig()
	if err != nil {
		return nil, err
	}

	// Шаг 3: компоненты
	priority := types.NewPriorityManager(l.logger)
	trader := pumpfun.NewTrader(l.client, w, pfCfg, priority, l.logger)
	aggregator := jupiter.NewClient(l.cfg.JupiterAPIURL, l.logger)
	router := swap.NewRouter(l.client, w, trader, aggregator, tokenMint, l.logger)
	classifier := holders.NewClassifier(l.client, l.logger)
	claimer := fees.NewClaimer(l.client, w, priority, pfCfg, psCfg, l.logger)
	fanout := distribution.NewFanOut(l.client, w, priority, goldMint, l.logger)

	orchestrator := distribution.NewOrchestrator(distribution.OrchestratorDeps{
		Balances:   l.client,
		Creator:    w.PublicKey,
		Claimer:    claimer,
		Classifier: classifier,
		Swapper:    router,
		FanOut:     fanout,
		TokenMint:  tokenMint,
		AssetMint:  goldMint,
	}, l.logger)

	return &components{
		wallet:       w,
		tokenMint:    tokenMint,
		goldMint:     goldMint,
		router:       router,
		classifier:   classifier,
		claimer:      claimer,
		orchestrator: orchestrator,
	}, nil
}

func (l *Live) Status(ctx context.Context) Status {
	st := Status{
		Enabled:          true,
		WalletConfigured: l.cfg.WalletPrivateKey != "",
		TokenConfigured:  l.cfg.TokenMint != "",
		SOLBalance:       decimal.Zero,
	}
	comp, err := l.ready()
	if err != nil {
		st.Error = err.Error()
		return st
	}
	st.Ready = true
	st.WalletAddress = comp.wallet.PublicKey.String()

	balance, err := l.SOLBalance(ctx)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	st.SOLBalance = balance
	return st
}

func (l *Live) WalletAddress() string {
	comp, err := l.ready()
	if err != nil {
		return ""
	}
	return comp.wallet.PublicKey.String()
}

func (l *Live) SOLBalance(ctx context.Context) (decimal.Decimal, error) {
	comp, err := l.ready()
	if err != nil {
		return decimal.Zero, err
	}
	lamports, err := l.client.GetBalance(ctx, comp.wallet.PublicKey, rpc.CommitmentConfirmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get SOL balance: %w", err)
	}
	return types.LamportsToSOL(lamports), nil
}

func (l *Live) TokenBalance(ctx context.Context) (decimal.Decimal, error) {
	comp, err := l.ready()
	if err != nil {
		return decimal.Zero, err
	}
	return comp.router.TokenBalance(ctx, comp.tokenMint)
}

func (l *Live) HoldersByTier(ctx context.Context, cfg domain.ProtocolConfig) (*holders.Tiers, error) {
	comp, err := l.ready()
	if err != nil {
		return nil, err
	}
	return comp.classifier.Classify(ctx, comp.tokenMint, cfg.MajorMinPercentage, cfg.MediumMinPercentage)
}

func (l *Live) ClaimFees(ctx context.Context) (*fees.ClaimResult, error) {
	comp, err := l.ready()
	if err != nil {
		return nil, err
	}
	return comp.claimer.ClaimFees(ctx)
}

func (l *Live) TestBuyback(ctx context.Context, sol decimal.Decimal) (*swap.Result, error) {
	comp, err := l.ready()
	if err != nil {
		return nil, err
	}
	lamports, err := solAmount(sol)
	if err != nil {
		return nil, err
	}
	return comp.router.QuoteAndSwap(ctx, swap.Buy, lamports)
}

func (l *Live) SellToken(ctx context.Context, tokens decimal.Decimal) (*swap.Result, error) {
	comp, err := l.ready()
	if err != nil {
		return nil, err
	}
	if !tokens.IsPositive() {
		return nil, fmt.Errorf("token amount must be positive")
	}
	mint, err := l.client.GetMint(ctx, comp.tokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to get token mint: %w", err)
	}
	raw := types.UIToRaw(tokens, mint.Decimals)
	if raw == 0 {
		return nil, fmt.Errorf("token amount %s is below the smallest unit", tokens)
	}
	return comp.router.QuoteAndSwap(ctx, swap.Sell, raw)
}

func (l *Live) SwapSOLForGold(ctx context.Context, sol decimal.Decimal) (*swap.Result, error) {
	comp, err := l.ready()
	if err != nil {
		return nil, err
	}
	lamports, err := solAmount(sol)
	if err != nil {
		return nil, err
	}
	return comp.router.SwapForAsset(ctx, comp.goldMint, lamports)
}

func (l *Live) ExecuteDistribution(ctx context.Context, cfg domain.ProtocolConfig) *distribution.Report {
	comp, err := l.ready()
	if err != nil {
		return notReadyReport(err.Error())
	}
	return comp.orchestrator.Run(ctx, cfg)
}

func (l *Live) DistributionRunning() bool {
	l.mu.Lock()
	comp := l.comp
	l.mu.Unlock()
	return comp != nil && comp.orchestrator.Running()
}

func solAmount(sol decimal.Decimal) (uint64, error) {
	if !sol.IsPositive() {
		return 0, fmt.Errorf("SOL amount must be positive")
	}
	lamports := types.SOLToLamports(sol)
	if lamports == 0 {
		return 0, fmt.Errorf("SOL amount %s is below one lamport", sol)
	}
	return lamports, nil
}
