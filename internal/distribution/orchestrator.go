// =============================
// File: internal/distribution/orchestrator.go
// =============================
package distribution

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/fees"
	"github.com/goldenbao/jinvault/internal/holders"
	"github.com/goldenbao/jinvault/internal/swap"
	"github.com/goldenbao/jinvault/internal/types"
)

// Сообщения, которые видит оператор в DistributionResult.Error.
const (
	MsgOffsetByCosts = "Fees collected were offset by transaction costs. No distribution performed."
	MsgNoHolders     = "No qualifying holders found"
)

// BalanceReader - баланс кошелька протокола.
type BalanceReader interface {
	GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
}

// FeeClaimer забирает комиссии создателя.
type FeeClaimer interface {
	ClaimFees(ctx context.Context) (*fees.ClaimResult, error)
}

// HolderClassifier делит холдеров на тиры.
type HolderClassifier interface {
	Classify(ctx context.Context, mint solana.PublicKey, majorMinPct, mediumMinPct float64) (*holders.Tiers, error)
}

// Swapper покупает актив для тиров и токен протокола для байбэка.
type Swapper interface {
	SwapForAsset(ctx context.Context, outputMint solana.PublicKey, lamports uint64) (*swap.Result, error)
	QuoteAndSwap(ctx context.Context, direction swap.Direction, amountIn uint64) (*swap.Result, error)
}

// Distributor раздаёт купленный актив внутри тира.
type Distributor interface {
	DistributeProportionally(ctx context.Context, holders []domain.HolderInfo, total decimal.Decimal) *FanOutResult
}

// Report - результат цикла вместе с тирами, которые в нём участвовали.
type Report struct {
	Result *domain.DistributionResult
	Major  []domain.HolderInfo
	Medium []domain.HolderInfo
}

// Orchestrator выполняет один цикл: claim, классификация, покупка актива
// для каждого тира, раздача, байбэк.
type Orchestrator struct {
	balances   BalanceReader
	creator    solana.PublicKey
	claimer    FeeClaimer
	classifier HolderClassifier
	swapper    Swapper
	fanout     Distributor
	tokenMint  solana.PublicKey
	assetMint  solana.PublicKey
	guard      Guard
	logger     *zap.Logger
}

type OrchestratorDeps struct {
	Balances   BalanceReader
	Creator    solana.PublicKey
	Claimer    FeeClaimer
	Classifier HolderClassifier
	Swapper    Swapper
	FanOut     Distributor
	TokenMint  solana.PublicKey
	AssetMint  solana.PublicKey
}

func NewOrchestrator(deps OrchestratorDeps, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		balances:   deps.Balances,
		creator:    deps.Creator,
		claimer:    deps.Claimer,
		classifier: deps.Classifier,
		swapper:    deps.Swapper,
		fanout:     deps.FanOut,
		tokenMint:  deps.TokenMint,
		assetMint:  deps.AssetMint,
		logger:     logger.Named("distribution"),
	}
}

// Running сообщает, выполняется ли сейчас цикл.
func (o *Orchestrator) Running() bool {
	return o.guard.Running()
}

// Execute выполняет цикл и возвращает только итог.
func (o *Orchestrator) Execute(ctx context.Context, cfg domain.ProtocolConfig) *domain.DistributionResult {
	return o.Run(ctx, cfg).Result
}

// Run выполняет цикл. Ошибки не возвращаются отдельно: всё, что пошло не так,
// попадает в Result.Error, а Success = false. Пока идёт один цикл, второй
// сразу завершается с ErrCycleInProgress.
func (o *Orchestrator) Run(ctx context.Context, cfg domain.ProtocolConfig) *Report {
	var report *Report
	err := o.guard.TryRun(func() {
		report = o.run(ctx, cfg)
	})
	if err != nil {
		o.logger.Warn("Distribution skipped", zap.Error(err))
		return &Report{Result: failed(err.Error())}
	}
	return report
}

func failed(msg string) *domain.DistributionResult {
	return &domain.DistributionResult{
		Success:              false,
		TotalFeesClaimed:     decimal.Zero,
		GoldPurchased:        decimal.Zero,
		GoldDistributed:      decimal.Zero,
		GoldForMediumHolders: decimal.Zero,
		TokenBuyback:         decimal.Zero,
		TxSignatures:         []string{},
		Error:                msg,
	}
}

func (o *Orchestrator) run(ctx context.Context, cfg domain.ProtocolConfig) *Report {
	// Шаг 1: конфигурация проверяется до любых обращений к сети
	if err := ValidateConfig(cfg); err != nil {
		o.logger.Error("Distribution rejected", zap.Error(err))
		return &Report{Result: failed(err.Error())}
	}

	res := failed("")
	report := &Report{Result: res}

	// Шаг 2: claim, прирост считается по балансу до и после
	before, err := o.balances.GetBalance(ctx, o.creator, rpc.CommitmentConfirmed)
	if err != nil {
		res.Error = fmt.Sprintf("Failed to read wallet balance: %v", err)
		return report
	}

	claim, err := o.claimer.ClaimFees(ctx)
	if err != nil {
		o.logger.Error("Fee claim failed", zap.Error(err))
		res.Error = fees.NoFeesMessage + ": " + err.Error()
		return report
	}
	if !claim.Claimed() {
		res.Error = fees.NoFeesMessage
		return report
	}
	res.TxSignatures = append(res.TxSignatures, claim.Signature.String())

	after, err := o.balances.GetBalance(ctx, o.creator, rpc.CommitmentConfirmed)
	if err != nil {
		res.Error = fmt.Sprintf("Failed to read wallet balance: %v", err)
		return report
	}
	if after <= before {
		res.Error = MsgOffsetByCosts
		return report
	}
	gained := after - before
	res.TotalFeesClaimed = types.LamportsToSOL(gained)

	o.logger.Info("Fees collected",
		zap.String("claimed", claim.Amount.String()),
		zap.String("net_gain", res.TotalFeesClaimed.String()))

	// Шаг 3: доли каждого направления
	majorPortion := portion(gained, cfg.MajorHoldersPercentage)
	mediumPortion := portion(gained, cfg.MediumHoldersPercentage)
	buybackPortion := portion(gained, cfg.BuybackPercentage)

	// Шаг 4: классификация холдеров
	tiers, err := o.classifier.Classify(ctx, o.tokenMint, cfg.MajorMinPercentage, cfg.MediumMinPercentage)
	if err != nil {
		o.logger.Error("Holder classification failed", zap.Error(err))
		res.Error = fmt.Sprintf("Failed to classify holders: %v", err)
		return report
	}
	report.Major, report.Medium = tiers.Major, tiers.Medium
	res.MajorHolders = len(tiers.Major)
	res.MediumHolders = len(tiers.Medium)
	if tiers.Empty() {
		res.Error = MsgNoHolders
		return report
	}

	// Шаг 5: тиры. Провал одного тира не мешает другому.
	var failedLegs []string

	majorRequired := len(tiers.Major) > 0 && majorPortion > 0
	if majorRequired {
		purchased, distributed, ok := o.rewardTier(ctx, domain.TierMajor, tiers.Major, majorPortion, res)
		res.GoldPurchased = res.GoldPurchased.Add(purchased)
		res.GoldDistributed = distributed
		if !ok {
			failedLegs = append(failedLegs, "major holders")
		}
	}

	mediumRequired := len(tiers.Medium) > 0 && mediumPortion > 0
	if mediumRequired {
		purchased, distributed, ok := o.rewardTier(ctx, domain.TierMedium, tiers.Medium, mediumPortion, res)
		res.GoldPurchased = res.GoldPurchased.Add(purchased)
		res.GoldForMediumHolders = distributed
		if !ok {
			failedLegs = append(failedLegs, "medium holders")
		}
	}

	// Шаг 6: байбэк, его провал не делает цикл неуспешным
	if buybackPortion > 0 {
		bought, err := o.swapper.QuoteAndSwap(ctx, swap.Buy, buybackPortion)
		if err != nil {
			o.logger.Warn("Buyback failed", zap.Uint64("lamports", buybackPortion), zap.Error(err))
			keepUnconfirmed(res, err)
		} else {
			res.TokenBuyback = bought.AmountOutUI
			res.TxSignatures = append(res.TxSignatures, bought.Signature.String())
		}
	}

	if len(failedLegs) > 0 {
		res.Error = fmt.Sprintf("Distribution failed for: %s. Fees may remain in wallet for retry.",
			strings.Join(failedLegs, ", "))
		o.logger.Error("Distribution incomplete", zap.Strings("failed", failedLegs))
		return report
	}

	res.Success = true
	res.Error = ""
	o.logger.Info("Distribution completed",
		zap.String("fees", res.TotalFeesClaimed.String()),
		zap.String("gold_purchased", res.GoldPurchased.String()),
		zap.String("gold_major", res.GoldDistributed.String()),
		zap.String("gold_medium", res.GoldForMediumHolders.String()),
		zap.String("buyback", res.TokenBuyback.String()),
		zap.Int("signatures", len(res.TxSignatures)))
	return report
}

// rewardTier покупает актив на lamports и раздаёт его тиру.
// ok = false только если не удался свап.
func (o *Orchestrator) rewardTier(
	ctx context.Context,
	tier domain.Tier,
	members []domain.HolderInfo,
	lamports uint64,
	res *domain.DistributionResult,
) (purchased, distributed decimal.Decimal, ok bool) {
	purchased, distributed = decimal.Zero, decimal.Zero

	bought, err := o.swapper.SwapForAsset(ctx, o.assetMint, lamports)
	if err != nil {
		o.logger.Error("Asset purchase failed",
			zap.String("tier", string(tier)),
			zap.Uint64("lamports", lamports),
			zap.Error(err))
		keepUnconfirmed(res, err)
		return purchased, distributed, false
	}
	purchased = bought.AmountOutUI
	res.TxSignatures = append(res.TxSignatures, bought.Signature.String())

	// Тир выполнен, если актив куплен. Нерозданный остаток виден по GoldDistributed.
	out := o.fanout.DistributeProportionally(ctx, members, purchased)
	res.TxSignatures = append(res.TxSignatures, out.Signatures...)
	if !out.Success {
		o.logger.Error("Fan-out incomplete",
			zap.String("tier", string(tier)),
			zap.String("purchased", purchased.String()),
			zap.String("distributed", out.Distributed.String()),
			zap.String("error", out.Error))
	}
	return purchased, out.Distributed, true
}

// keepUnconfirmed добавляет в результат подпись свапа, отправленного без подтверждения.
func keepUnconfirmed(res *domain.DistributionResult, err error) {
	if sig, ok := swap.UnconfirmedSignature(err); ok {
		res.TxSignatures = append(res.TxSignatures, sig.String())
	}
}

// portion - pct процентов от lamports с округлением вниз.
func portion(lamports uint64, pct float64) uint64 {
	v := decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), 0).
		Mul(percent(pct)).
		Div(hundred).
		Floor()
	if !v.IsPositive() {
		return 0
	}
	return v.BigInt().Uint64()
}
