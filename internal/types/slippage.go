// internal/types/slippage.go
package types

const BasisPoints = 10_000

// MinOutWithSlippage уменьшает ожидаемый выход на slippage (в базисных пунктах).
// Вычисление в uint64 с промежуточным делением, чтобы не переполниться на больших суммах.
func MinOutWithSlippage(amount uint64, bps uint64) uint64 {
	if bps >= BasisPoints {
		return 0
	}
	return mulDiv(amount, BasisPoints-bps, BasisPoints)
}

// MaxInWithSlippage увеличивает допустимый вход на slippage (в базисных пунктах).
func MaxInWithSlippage(amount uint64, bps uint64) uint64 {
	return mulDiv(amount, BasisPoints+bps, BasisPoints)
}

func mulDiv(a, b, c uint64) uint64 {
	return a/c*b + a%c*b/c
}
