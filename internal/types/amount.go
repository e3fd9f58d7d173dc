// internal/types/amount.go
package types

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const SOLDecimals = 9

// RawToUI переводит минимальные единицы в единицы токена с учётом decimals.
func RawToUI(raw uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals))
}

// UIToRaw переводит единицы токена в минимальные единицы, округляя вниз.
// Отрицательные значения дают 0.
func UIToRaw(amount decimal.Decimal, decimals uint8) uint64 {
	if !amount.IsPositive() {
		return 0
	}
	raw := amount.Shift(int32(decimals)).Floor().BigInt()
	if !raw.IsUint64() {
		return ^uint64(0)
	}
	return raw.Uint64()
}

// LamportsToSOL - лампорты в SOL.
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return RawToUI(lamports, SOLDecimals)
}

// SOLToLamports - SOL в лампорты, округление вниз.
func SOLToLamports(sol decimal.Decimal) uint64 {
	return UIToRaw(sol, SOLDecimals)
}
