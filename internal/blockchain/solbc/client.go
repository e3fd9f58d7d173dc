// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AlekSi/pointer"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/blockchain"
	"github.com/goldenbao/jinvault/internal/wallet"
)

const (
	defaultPollInterval   = 500 * time.Millisecond
	defaultConfirmTimeout = 60 * time.Second
	mintBaseSize          = 82
)

// Client – тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
type Client struct {
	rpc      *rpc.Client
	logger   *zap.Logger
	analyzer *ErrorAnalyzer

	pollInterval   time.Duration
	confirmTimeout time.Duration
}

// IsAccountNotFoundError проверяет, является ли ошибка "not found"
func IsAccountNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, rpc.ErrNotFound) || errors.Is(err, blockchain.ErrAccountNotFound) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "could not find account")
}

// NewClient создаёт новый клиент, принимая RPC URL и логгер через dependency injection.
func NewClient(rpcURL string, logger *zap.Logger) *Client {
	return &Client{
		rpc:            rpc.New(rpcURL),
		logger:         logger.Named("solbc-client"),
		analyzer:       NewErrorAnalyzer(logger),
		pollInterval:   defaultPollInterval,
		confirmTimeout: defaultConfirmTimeout,
	}
}

// GetRecentBlockhash получает последний blockhash.
func (c *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		c.logger.Error("GetRecentBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return result.Value.Blockhash, nil
}

// GetBalance получает баланс аккаунта.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	result, err := c.rpc.GetBalance(ctx, pubkey, commitment)
	if err != nil {
		c.logger.Error("GetBalance error", zap.String("pubkey", pubkey.String()), zap.Error(err))
		return 0, err
	}
	return result.Value, nil
}

// GetAccountData получает аккаунт в base64. Отсутствие аккаунта - не ошибка.
func (c *Client) GetAccountData(ctx context.Context, pubkey solana.PublicKey) (*blockchain.AccountData, error) {
	result, err := c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, nil
		}
		c.logger.Debug("GetAccountInfo error", zap.String("pubkey", pubkey.String()), zap.Error(err))
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, nil
	}

	return &blockchain.AccountData{
		Owner:    result.Value.Owner,
		Lamports: result.Value.Lamports,
		Data:     result.Value.Data.GetBinary(),
	}, nil
}

// GetMint читает минт. Первые 82 байта у Token и Token-2022 совпадают,
// расширения Token-2022 идут после них и здесь не нужны.
func (c *Client) GetMint(ctx context.Context, mint solana.PublicKey) (*blockchain.MintInfo, error) {
	acc, err := c.GetAccountData(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to get mint account: %w", err)
	}
	if acc == nil {
		return nil, fmt.Errorf("mint %s: %w", mint, blockchain.ErrAccountNotFound)
	}
	if len(acc.Data) < mintBaseSize {
		return nil, fmt.Errorf("mint %s: data too short (%d bytes)", mint, len(acc.Data))
	}

	var m token.Mint
	if err := bin.NewBinDecoder(acc.Data[:mintBaseSize]).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode mint %s: %w", mint, err)
	}

	return &blockchain.MintInfo{
		Supply:       m.Supply,
		Decimals:     m.Decimals,
		TokenProgram: acc.Owner,
	}, nil
}

// GetTokenLargestAccounts возвращает крупнейшие токен-аккаунты минта (до 20).
func (c *Client) GetTokenLargestAccounts(ctx context.Context, mint solana.PublicKey) ([]blockchain.TokenAccountAmount, error) {
	result, err := c.rpc.GetTokenLargestAccounts(ctx, mint, rpc.CommitmentConfirmed)
	if err != nil {
		c.logger.Error("GetTokenLargestAccounts error", zap.String("mint", mint.String()), zap.Error(err))
		return nil, err
	}

	accounts := make([]blockchain.TokenAccountAmount, 0, len(result.Value))
	for _, v := range result.Value {
		if v == nil {
			continue
		}
		amount, err := strconv.ParseUint(v.Amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount for %s: %w", v.Address, err)
		}
		accounts = append(accounts, blockchain.TokenAccountAmount{Address: v.Address, Amount: amount})
	}
	return accounts, nil
}

// GetTokenAccountOwner запрашивает jsonParsed представление токен-аккаунта
// и достаёт из него parsed.info.owner.
func (c *Client) GetTokenAccountOwner(ctx context.Context, account solana.PublicKey) (solana.PublicKey, error) {
	result, err := c.rpc.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingJSONParsed,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to get parsed account %s: %w", account, err)
	}
	if result == nil || result.Value == nil || result.Value.Data == nil {
		return solana.PublicKey{}, fmt.Errorf("token account %s: %w", account, blockchain.ErrAccountNotFound)
	}

	owner := gjson.GetBytes(result.Value.Data.GetRawJSON(), "parsed.info.owner").String()
	if owner == "" {
		return solana.PublicKey{}, fmt.Errorf("token account %s has no parsed owner", account)
	}
	return solana.PublicKeyFromBase58(owner)
}

// GetTokenAccountBalance получает баланс токенного аккаунта в минимальных единицах.
func (c *Client) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	result, err := c.rpc.GetTokenAccountBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		if IsAccountNotFoundError(err) {
			return 0, fmt.Errorf("token account %s: %w", account, blockchain.ErrAccountNotFound)
		}
		return 0, err
	}
	if result == nil || result.Value.Amount == "" {
		return 0, fmt.Errorf("no token balance found for %s", account)
	}
	return strconv.ParseUint(result.Value.Amount, 10, 64)
}

// GetMinimumBalanceForRentExemption возвращает rent-exempt минимум для размера данных.
func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	return c.rpc.GetMinimumBalanceForRentExemption(ctx, dataSize, rpc.CommitmentConfirmed)
}

// SendAndConfirm собирает транзакцию, подписывает её кошельком и ждёт подтверждения.
// Отправка выполняется один раз.
func (c *Client) SendAndConfirm(ctx context.Context, instructions []solana.Instruction, payer *wallet.Wallet) (solana.Signature, error) {
	blockhash, err := c.GetRecentBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer.PublicKey))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create transaction: %w", err)
	}
	if err := payer.SignTransaction(tx); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	return c.submit(ctx, tx, rpc.TransactionOpts{PreflightCommitment: rpc.CommitmentConfirmed})
}

// SendRawAndConfirm отправляет уже подписанную транзакцию (например, от агрегатора).
func (c *Client) SendRawAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return c.submit(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
		MaxRetries:          pointer.ToUint(2),
	})
}

func (c *Client) submit(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, opts)
	if err != nil {
		classified := c.analyzer.Classify(err)
		c.logger.Error("SendTransaction error", zap.Error(classified))
		return solana.Signature{}, classified
	}

	c.logger.Debug("Transaction sent", zap.String("signature", sig.String()))

	if err := c.WaitForTransactionConfirmation(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// WaitForTransactionConfirmation ожидает подтверждения транзакции (с простым polling‑механизмом).
// Транзакция, исполненная с ошибкой, возвращает ProgramError.
func (c *Client) WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	timeout := time.After(c.confirmTimeout)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("%w: %s", ErrConfirmationTimeout, signature)
		case <-ticker.C:
			statuses, err := c.rpc.GetSignatureStatuses(ctx, false, signature)
			if err != nil {
				c.logger.Warn("Error getting signature statuses", zap.Error(err))
				continue
			}
			if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
				continue
			}
			status := statuses.Value[0]
			if status.Err != nil {
				return &ProgramError{Message: fmt.Sprintf("transaction %s failed: %v", signature, status.Err)}
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusFinalized ||
				status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed {
				return nil
			}
		}
	}
}

// Гарантируем, что Client реализует интерфейс blockchain.Client.
var _ blockchain.Client = (*Client)(nil)
