// internal/blockchain/types.go
package blockchain

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/goldenbao/jinvault/internal/wallet"
)

// Адреса программ и минтов, которых нет среди констант solana-go.
var (
	Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	NativeMint         = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	BurnAddress        = solana.MustPublicKeyFromBase58("1nc1nerator11111111111111111111111111111111")
)

const LamportsPerSOL = 1_000_000_000

var ErrAccountNotFound = errors.New("account not found")

// AccountData - сырые данные аккаунта. Отсутствующий аккаунт возвращается как nil без ошибки.
type AccountData struct {
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

// MintInfo - минимальный срез состояния минта, общий для Token и Token-2022.
type MintInfo struct {
	Supply       uint64
	Decimals     uint8
	TokenProgram solana.PublicKey
}

// TokenAccountAmount - элемент ответа getTokenLargestAccounts.
type TokenAccountAmount struct {
	Address solana.PublicKey
	Amount  uint64
}

// Client определяет операции коннектора, на которые опираются остальные компоненты.
// Повторных попыток здесь нет: политику ретраев выбирает вызывающий код.
type Client interface {
	// Баланс аккаунта в лампортах.
	GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
	// Данные аккаунта; nil, если аккаунт не существует.
	GetAccountData(ctx context.Context, pubkey solana.PublicKey) (*AccountData, error)
	// Supply и decimals минта, а также программа-владелец.
	GetMint(ctx context.Context, mint solana.PublicKey) (*MintInfo, error)
	// N крупнейших токен-аккаунтов минта.
	GetTokenLargestAccounts(ctx context.Context, mint solana.PublicKey) ([]TokenAccountAmount, error)
	// Владелец токен-аккаунта (кошелёк).
	GetTokenAccountOwner(ctx context.Context, account solana.PublicKey) (solana.PublicKey, error)
	// Баланс токен-аккаунта в минимальных единицах; ErrAccountNotFound, если аккаунта нет.
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
	// Минимальный rent-exempt баланс для аккаунта заданного размера.
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error)
	// Собрать, подписать, отправить один раз и дождаться подтверждения.
	SendAndConfirm(ctx context.Context, instructions []solana.Instruction, payer *wallet.Wallet) (solana.Signature, error)
	// Отправить уже подписанную транзакцию и дождаться подтверждения.
	SendRawAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}
