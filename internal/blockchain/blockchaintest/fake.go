// Package blockchaintest содержит in-memory реализацию blockchain.Client для тестов.
package blockchaintest

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"github.com/goldenbao/jinvault/internal/blockchain"
	"github.com/goldenbao/jinvault/internal/wallet"
)

// FakeClient хранит состояние цепочки в картах. Хуки позволяют тесту
// изменить состояние при отправке транзакции или вернуть ошибку.
type FakeClient struct {
	mu sync.Mutex

	Balances      map[solana.PublicKey]uint64
	Accounts      map[solana.PublicKey]*blockchain.AccountData
	Mints         map[solana.PublicKey]*blockchain.MintInfo
	Largest       map[solana.PublicKey][]blockchain.TokenAccountAmount
	Owners        map[solana.PublicKey]solana.PublicKey
	TokenBalances map[solana.PublicKey]uint64
	RentExempt    uint64

	BalanceErr error
	LargestErr error

	// OnSend вызывается для каждой SendAndConfirm; ненулевая ошибка проваливает отправку.
	OnSend func(instructions []solana.Instruction) error
	// OnSendRaw вызывается для каждой SendRawAndConfirm.
	OnSendRaw func(tx *solana.Transaction) error

	Sent    [][]solana.Instruction
	RawSent []*solana.Transaction

	sigCounter uint64
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		Balances:      make(map[solana.PublicKey]uint64),
		Accounts:      make(map[solana.PublicKey]*blockchain.AccountData),
		Mints:         make(map[solana.PublicKey]*blockchain.MintInfo),
		Largest:       make(map[solana.PublicKey][]blockchain.TokenAccountAmount),
		Owners:        make(map[solana.PublicKey]solana.PublicKey),
		TokenBalances: make(map[solana.PublicKey]uint64),
		RentExempt:    890_880,
	}
}

func (f *FakeClient) GetBalance(_ context.Context, pubkey solana.PublicKey, _ rpc.CommitmentType) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.BalanceErr != nil {
		return 0, f.BalanceErr
	}
	return f.Balances[pubkey], nil
}

// SetBalance потокобезопасно меняет баланс (удобно внутри OnSend).
func (f *FakeClient) SetBalance(pubkey solana.PublicKey, lamports uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Balances[pubkey] = lamports
}

// AddTokenBalance увеличивает баланс токен-аккаунта.
func (f *FakeClient) AddTokenBalance(account solana.PublicKey, amount uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TokenBalances[account] += amount
}

func (f *FakeClient) GetAccountData(_ context.Context, pubkey solana.PublicKey) (*blockchain.AccountData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Accounts[pubkey], nil
}

func (f *FakeClient) GetMint(_ context.Context, mint solana.PublicKey) (*blockchain.MintInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.Mints[mint]
	if !ok {
		return nil, fmt.Errorf("mint %s: %w", mint, blockchain.ErrAccountNotFound)
	}
	return m, nil
}

func (f *FakeClient) GetTokenLargestAccounts(_ context.Context, mint solana.PublicKey) ([]blockchain.TokenAccountAmount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LargestErr != nil {
		return nil, f.LargestErr
	}
	return f.Largest[mint], nil
}

func (f *FakeClient) GetTokenAccountOwner(_ context.Context, account solana.PublicKey) (solana.PublicKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner, ok := f.Owners[account]
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("token account %s: %w", account, blockchain.ErrAccountNotFound)
	}
	return owner, nil
}

func (f *FakeClient) GetTokenAccountBalance(_ context.Context, account solana.PublicKey) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	amount, ok := f.TokenBalances[account]
	if !ok {
		return 0, fmt.Errorf("token account %s: %w", account, blockchain.ErrAccountNotFound)
	}
	return amount, nil
}

func (f *FakeClient) GetMinimumBalanceForRentExemption(_ context.Context, _ uint64) (uint64, error) {
	return f.RentExempt, nil
}

func (f *FakeClient) SendAndConfirm(_ context.Context, instructions []solana.Instruction, _ *wallet.Wallet) (solana.Signature, error) {
	f.mu.Lock()
	hook := f.OnSend
	f.mu.Unlock()

	if hook != nil {
		if err := hook(instructions); err != nil {
			return solana.Signature{}, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sent = append(f.Sent, instructions)
	return f.nextSignature(), nil
}

func (f *FakeClient) SendRawAndConfirm(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	f.mu.Lock()
	hook := f.OnSendRaw
	f.mu.Unlock()

	if hook != nil {
		if err := hook(tx); err != nil {
			return solana.Signature{}, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.RawSent = append(f.RawSent, tx)
	return f.nextSignature(), nil
}

// SentCount возвращает число успешных SendAndConfirm.
func (f *FakeClient) SentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Sent)
}

func (f *FakeClient) nextSignature() solana.Signature {
	f.sigCounter++
	var sig solana.Signature
	binary.LittleEndian.PutUint64(sig[:8], f.sigCounter)
	return sig
}

// NewTestWallet создаёт кошелёк со случайным ключом.
func NewTestWallet(t testing.TB) *wallet.Wallet {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	w, err := wallet.NewWallet(key.String())
	require.NoError(t, err)
	return w
}

var _ blockchain.Client = (*FakeClient)(nil)
