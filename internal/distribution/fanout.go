// =============================
// File: internal/distribution/fanout.go
// =============================
package distribution

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/blockchain"
	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/types"
	"github.com/goldenbao/jinvault/internal/wallet"
)

// FanOutResult - итог раздачи актива одному тиру.
type FanOutResult struct {
	Success bool
	// Distributed - сумма долей, для которых перевод прошёл, в единицах актива.
	Distributed decimal.Decimal
	Signatures  []string
	Error       string
}

// FanOut раздаёт купленный актив холдерам пропорционально их долям.
type FanOut struct {
	client   blockchain.Client
	wallet   *wallet.Wallet
	priority *types.PriorityManager
	mint     solana.PublicKey
	logger   *zap.Logger
}

func NewFanOut(client blockchain.Client, w *wallet.Wallet, priority *types.PriorityManager, assetMint solana.PublicKey, logger *zap.Logger) *FanOut {
	return &FanOut{
		client:   client,
		wallet:   w,
		priority: priority,
		mint:     assetMint,
		logger:   logger.Named("fanout"),
	}
}

// DistributeProportionally переводит каждому холдеру total * pct / sum(pct).
// Ошибка перевода одному холдеру не останавливает раздачу остальным:
// его доля просто не попадает в Distributed.
func (f *FanOut) DistributeProportionally(ctx context.Context, holders []domain.HolderInfo, total decimal.Decimal) *FanOutResult {
	if len(holders) == 0 || !total.IsPositive() {
		return &FanOutResult{Error: "Invalid parameters for distribution", Distributed: decimal.Zero}
	}

	// Шаг 1: decimals и программа актива
	mint, err := f.client.GetMint(ctx, f.mint)
	if err != nil {
		return &FanOutResult{Error: fmt.Sprintf("Failed to load asset mint: %v", err), Distributed: decimal.Zero}
	}
	source, err := f.wallet.GetATAForProgram(f.mint, mint.TokenProgram)
	if err != nil {
		return &FanOutResult{Error: err.Error(), Distributed: decimal.Zero}
	}

	// Шаг 2: хватает ли актива на кошельке
	balance, err := f.client.GetTokenAccountBalance(ctx, source)
	if errors.Is(err, blockchain.ErrAccountNotFound) {
		return &FanOutResult{Error: "No GOLD balance to distribute", Distributed: decimal.Zero}
	}
	if err != nil {
		return &FanOutResult{Error: fmt.Sprintf("Failed to read GOLD balance: %v", err), Distributed: decimal.Zero}
	}
	if balance < types.UIToRaw(total, mint.Decimals) {
		return &FanOutResult{
			Error: fmt.Sprintf("Insufficient GOLD balance: have %s, need %s",
				types.RawToUI(balance, mint.Decimals).String(), total.String()),
			Distributed: decimal.Zero,
		}
	}

	totalPct := decimal.Zero
	for _, h := range holders {
		totalPct = totalPct.Add(decimal.NewFromFloat(h.Percentage))
	}
	if !totalPct.IsPositive() {
		return &FanOutResult{Error: "Holder percentages sum to zero", Distributed: decimal.Zero}
	}

	// Шаг 3: перевод каждому холдеру отдельной транзакцией
	res := &FanOutResult{Success: true, Distributed: decimal.Zero}
	for _, h := range holders {
		share := decimal.NewFromFloat(h.Percentage).Div(totalPct).Mul(total)
		raw := types.UIToRaw(share, mint.Decimals)
		if raw == 0 {
			f.logger.Debug("Share rounds to zero, skipping", zap.String("holder", h.Address))
			continue
		}

		sig, err := f.transfer(ctx, h.Address, source, mint, raw)
		if err != nil {
			f.logger.Warn("Transfer to holder failed",
				zap.String("holder", h.Address),
				zap.Uint64("amount", raw),
				zap.Error(err))
			continue
		}

		res.Distributed = res.Distributed.Add(types.RawToUI(raw, mint.Decimals))
		res.Signatures = append(res.Signatures, sig.String())
	}

	f.logger.Info("Fan-out completed",
		zap.Int("holders", len(holders)),
		zap.Int("transfers", len(res.Signatures)),
		zap.String("distributed", res.Distributed.String()))
	return res
}

func (f *FanOut) transfer(ctx context.Context, holder string, source solana.PublicKey, mint *blockchain.MintInfo, amount uint64) (solana.Signature, error) {
	owner, err := solana.PublicKeyFromBase58(holder)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("invalid holder address: %w", err)
	}
	destination, err := wallet.FindATA(owner, f.mint, mint.TokenProgram)
	if err != nil {
		return solana.Signature{}, err
	}

	instructions, err := f.priority.Instructions(types.ProfileTransfer)
	if err != nil {
		return solana.Signature{}, err
	}

	// ATA получателя создаётся за счёт кошелька протокола
	if _, err := f.client.GetTokenAccountBalance(ctx, destination); err != nil {
		if !errors.Is(err, blockchain.ErrAccountNotFound) {
			return solana.Signature{}, err
		}
		createIx, err := wallet.CreateATAIdempotentInstruction(f.wallet.PublicKey, owner, f.mint, mint.TokenProgram)
		if err != nil {
			return solana.Signature{}, err
		}
		instructions = append(instructions, createIx)
	}

	transferIx, err := buildTransferChecked(mint.TokenProgram, source, f.mint, destination, f.wallet.PublicKey, amount, mint.Decimals)
	if err != nil {
		return solana.Signature{}, err
	}
	instructions = append(instructions, transferIx)

	return f.client.SendAndConfirm(ctx, instructions, f.wallet)
}

// buildTransferChecked собирает transfer_checked для Token или Token-2022:
// раскладка данных у них совпадает, отличается только программа.
func buildTransferChecked(tokenProgram, source, mint, destination, owner solana.PublicKey, amount uint64, decimals uint8) (solana.Instruction, error) {
	ix := token.NewTransferCheckedInstruction(amount, decimals, source, mint, destination, owner, nil).Build()
	if tokenProgram.Equals(solana.TokenProgramID) {
		return ix, nil
	}
	data, err := ix.Data()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(tokenProgram, ix.Accounts(), data), nil
}
