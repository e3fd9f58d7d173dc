// =============================
// File: internal/dex/pumpfun/types.go
// =============================
package pumpfun

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrCurveNotFound - аккаунта bonding curve нет (токен не запускался на Pump.fun).
	ErrCurveNotFound = errors.New("bonding curve not found")
	// ErrCurveComplete - кривая завершена, токен мигрировал в AMM.
	ErrCurveComplete = errors.New("bonding curve is complete")
	// ErrInsufficientBalance - на кошельке не хватает средств для операции.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// BondingCurveState - снимок аккаунта bonding curve на момент чтения.
// Никогда не кэшируется: каждая котировка читает его заново.
type BondingCurveState struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
	Creator              solana.PublicKey
}

// Usable сообщает, можно ли торговать через кривую.
func (s *BondingCurveState) Usable() bool {
	return s != nil && !s.Complete && s.VirtualTokenReserves > 0 && s.VirtualSolReserves > 0
}

// TradeResult - итог одной сделки через кривую.
type TradeResult struct {
	Signature solana.Signature
	// AmountIn - потрачено (лампорты для покупки, минимальные единицы токена для продажи).
	AmountIn uint64
	// AmountOut - ожидаемый выход по котировке.
	AmountOut uint64
	// MinAmountOut - нижняя граница, зашитая в инструкцию.
	MinAmountOut uint64
}
