// =============================
// File: internal/dex/jupiter/execute.go
// =============================
package jupiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/blockchain/solbc"
	"github.com/goldenbao/jinvault/internal/wallet"
)

// Submitter отправляет подписанную транзакцию и ждёт подтверждения.
type Submitter interface {
	SendRawAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// SwapParams - один свап через агрегатор.
type SwapParams struct {
	InputMint   solana.PublicKey
	OutputMint  solana.PublicKey
	Amount      uint64
	SlippageBps uint16
	Dynamic     DynamicSlippage
}

// SubmissionError - отправка не подтвердилась. Signature - последняя
// отправленная подпись (нулевая, если ни одна попытка не дошла до сети).
type SubmissionError struct {
	Signature solana.Signature
	Attempts  int
	Err       error
}

func (e *SubmissionError) Error() string {
	if e.Signature == (solana.Signature{}) {
		return fmt.Sprintf("swap submission failed after %d attempt(s): %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("swap submission failed after %d attempt(s), last signature %s: %v", e.Attempts, e.Signature, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// UnconfirmedSignature достаёт из ошибки подпись, которая была отправлена,
// но не подтвердилась.
func UnconfirmedSignature(err error) (solana.Signature, bool) {
	var subErr *SubmissionError
	if errors.As(err, &subErr) && subErr.Signature != (solana.Signature{}) {
		return subErr.Signature, true
	}
	return solana.Signature{}, false
}

// SwapResult - результат исполненного свапа.
type SwapResult struct {
	Signature solana.Signature
	Quote     *QuoteResponse
	// OutAmount - выход по котировке в минимальных единицах.
	OutAmount uint64
}

// Swap запрашивает котировку, собирает транзакцию, подписывает её локально
// и отправляет с повторами. Повторяется только отправка.
func (c *Client) Swap(ctx context.Context, params SwapParams, signer *wallet.Wallet, submitter Submitter) (*SwapResult, error) {
	// Шаг 1: котировка
	quote, err := c.Quote(ctx, QuoteRequest{
		InputMint:   params.InputMint,
		OutputMint:  params.OutputMint,
		Amount:      params.Amount,
		SlippageBps: params.SlippageBps,
	})
	if err != nil {
		return nil, err
	}
	outAmount, err := quote.OutAmountUint()
	if err != nil {
		return nil, fmt.Errorf("invalid quote outAmount %q: %w", quote.OutAmount, err)
	}

	// Шаг 2: сборка транзакции агрегатором
	tx, err := c.SwapTransaction(ctx, signer.PublicKey, quote, params.Dynamic)
	if err != nil {
		return nil, err
	}

	// Шаг 3: подпись и отправка
	sig, err := c.Execute(ctx, tx, signer, submitter)
	if err != nil {
		return nil, err
	}

	return &SwapResult{Signature: sig, Quote: quote, OutAmount: outAmount}, nil
}

// Execute подписывает транзакцию и отправляет её не более maxAttempts раз
// с фиксированной паузой. Отказ программы не повторяется.
func (c *Client) Execute(ctx context.Context, tx *solana.Transaction, signer *wallet.Wallet, submitter Submitter) (solana.Signature, error) {
	if err := signer.SignTransaction(tx); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign swap transaction: %w", err)
	}

	attempt := 0
	var lastSig solana.Signature
	op := func() (solana.Signature, error) {
		attempt++
		sig, err := submitter.SendRawAndConfirm(ctx, tx)
		if sig != (solana.Signature{}) {
			lastSig = sig
		}
		if err != nil {
			if !solbc.IsTransient(err) {
				return solana.Signature{}, backoff.Permanent(err)
			}
			return solana.Signature{}, err
		}
		return sig, nil
	}

	notify := func(err error, d time.Duration) {
		c.logger.Warn("Swap attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", d),
			zap.Error(err))
	}

	sig, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(c.retryDelay)),
		backoff.WithMaxTries(c.maxAttempts),
		backoff.WithNotify(notify))
	if err != nil {
		return lastSig, &SubmissionError{Signature: lastSig, Attempts: attempt, Err: err}
	}

	c.logger.Info("Swap successful", zap.String("signature", sig.String()), zap.Int("attempts", attempt))
	return sig, nil
}
