// =============================
// File: internal/fees/claimer.go
// =============================
package fees

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/blockchain"
	"github.com/goldenbao/jinvault/internal/dex/pumpfun"
	"github.com/goldenbao/jinvault/internal/dex/pumpswap"
	"github.com/goldenbao/jinvault/internal/types"
	"github.com/goldenbao/jinvault/internal/wallet"
)

// Source - откуда забраны комиссии.
type Source string

const (
	SourceNone     Source = ""
	SourcePumpFun  Source = "pumpfun"
	SourcePumpSwap Source = "pumpswap"
)

// NoFeesMessage - пояснение к успешному результату с нулевой суммой.
const NoFeesMessage = "No fees to claim"

// ClaimResult - итог проверки и сбора комиссий создателя.
// Нулевая сумма - успешный результат, а не ошибка.
type ClaimResult struct {
	Source Source
	// Amount - сумма из vault в SOL (до сетевых комиссий).
	Amount    decimal.Decimal
	Signature solana.Signature
	Message   string
}

// Claimed сообщает, была ли отправлена транзакция сбора.
func (r *ClaimResult) Claimed() bool {
	return r.Amount.IsPositive()
}

// Claimer собирает комиссии создателя из vault Pump.fun, затем из vault PumpSwap.
type Claimer struct {
	client   blockchain.Client
	wallet   *wallet.Wallet
	priority *types.PriorityManager
	pumpfun  *pumpfun.Config
	pumpswap *pumpswap.Config
	logger   *zap.Logger
}

func NewClaimer(
	client blockchain.Client,
	w *wallet.Wallet,
	priority *types.PriorityManager,
	pumpfunCfg *pumpfun.Config,
	pumpswapCfg *pumpswap.Config,
	logger *zap.Logger,
) *Claimer {
	return &Claimer{
		client:   client,
		wallet:   w,
		priority: priority,
		pumpfun:  pumpfunCfg,
		pumpswap: pumpswapCfg,
		logger:   logger.Named("fees"),
	}
}

// ClaimFees проверяет vault bonding curve, и если он пуст или отсутствует,
// vault AMM. Если оба пусты, возвращает успешный результат с нулём.
func (c *Claimer) ClaimFees(ctx context.Context) (*ClaimResult, error) {
	res, err := c.claimPumpFun(ctx)
	if err != nil || res.Claimed() {
		return res, err
	}
	return c.claimPumpSwap(ctx)
}

func (c *Claimer) claimPumpFun(ctx context.Context) (*ClaimResult, error) {
	creator := c.wallet.PublicKey

	// Шаг 1: баланс vault сверх rent-exempt минимума
	vault, err := pumpfun.CreatorVaultAddress(creator, c.pumpfun.ContractAddress)
	if err != nil {
		return nil, err
	}
	account, err := c.client.GetAccountData(ctx, vault)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator vault: %w", err)
	}
	if account == nil {
		c.logger.Debug("Pump.fun creator vault not found", zap.String("vault", vault.String()))
		return &ClaimResult{Message: NoFeesMessage}, nil
	}

	rentExempt, err := c.client.GetMinimumBalanceForRentExemption(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get rent exemption: %w", err)
	}
	if account.Lamports <= rentExempt {
		c.logger.Debug("No fees in Pump.fun creator vault", zap.Uint64("lamports", account.Lamports))
		return &ClaimResult{Message: NoFeesMessage}, nil
	}
	claimable := account.Lamports - rentExempt

	// Шаг 2: collect_creator_fee
	eventAuthority, err := pumpfun.EventAuthorityAddress(c.pumpfun.ContractAddress)
	if err != nil {
		return nil, err
	}
	instructions, err := c.priority.Instructions(types.ProfileCurveClaim)
	if err != nil {
		return nil, err
	}
	instructions = append(instructions,
		pumpfun.BuildCollectCreatorFeeInstruction(creator, vault, eventAuthority, c.pumpfun.ContractAddress))

	c.logger.Info("Claiming Pump.fun creator fees",
		zap.String("vault", vault.String()),
		zap.Uint64("claimable_lamports", claimable))

	sig, err := c.client.SendAndConfirm(ctx, instructions, c.wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to claim Pump.fun fees: %w", err)
	}

	c.logger.Info("Fees claimed", zap.String("source", string(SourcePumpFun)), zap.String("signature", sig.String()))
	return &ClaimResult{
		Source:    SourcePumpFun,
		Amount:    types.LamportsToSOL(claimable),
		Signature: sig,
	}, nil
}

func (c *Claimer) claimPumpSwap(ctx context.Context) (*ClaimResult, error) {
	creator := c.wallet.PublicKey

	accounts, err := c.pumpswap.DeriveCreatorFeeAccounts(creator)
	if err != nil {
		return nil, err
	}

	// Шаг 1: баланс WSOL в vault ATA
	amount, err := c.client.GetTokenAccountBalance(ctx, accounts.CoinCreatorVaultATA)
	if errors.Is(err, blockchain.ErrAccountNotFound) {
		c.logger.Debug("PumpSwap creator vault not found", zap.String("vault", accounts.CoinCreatorVaultATA.String()))
		return &ClaimResult{Message: NoFeesMessage}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get PumpSwap vault balance: %w", err)
	}
	if amount == 0 {
		return &ClaimResult{Message: NoFeesMessage}, nil
	}

	// Шаг 2: WSOL ATA создателя, если её нет
	var instructions []solana.Instruction
	if _, err := c.client.GetTokenAccountBalance(ctx, accounts.CreatorTokenAccount); err != nil {
		if !errors.Is(err, blockchain.ErrAccountNotFound) {
			return nil, fmt.Errorf("failed to check creator WSOL account: %w", err)
		}
		createIx, err := wallet.CreateATAIdempotentInstruction(creator, creator, accounts.QuoteMint, accounts.QuoteTokenProgram)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, createIx)
	}

	// Шаг 3: collect, затем закрыть WSOL обратно в SOL
	budget, err := c.priority.Instructions(types.ProfileAMMClaim)
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, budget...)
	instructions = append(instructions,
		pumpswap.BuildCollectCoinCreatorFeeInstruction(accounts),
		pumpswap.BuildCloseWSOLInstruction(accounts.CreatorTokenAccount, creator),
	)

	c.logger.Info("Claiming PumpSwap creator fees",
		zap.String("vault", accounts.CoinCreatorVaultATA.String()),
		zap.Uint64("lamports", amount))

	sig, err := c.client.SendAndConfirm(ctx, instructions, c.wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to claim PumpSwap fees: %w", err)
	}

	c.logger.Info("Fees claimed", zap.String("source", string(SourcePumpSwap)), zap.String("signature", sig.String()))
	return &ClaimResult{
		Source:    SourcePumpSwap,
		Amount:    types.LamportsToSOL(amount),
		Signature: sig,
	}, nil
}
