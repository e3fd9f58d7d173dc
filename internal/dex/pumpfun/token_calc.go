// internal/dex/pumpfun/token_calc.go
package pumpfun

import (
	"math/big"

	"github.com/goldenbao/jinvault/internal/types"
)

const (
	// Стандартные десятичные знаки для токенов Pump.fun
	TokenDecimals = 6
	// Базовая комиссия протокола Pump.fun, в процентах
	protocolFeePercent = 1
)

// QuoteBuy рассчитывает количество токенов за solIn лампортов по формуле
// постоянного произведения: out = solIn * vTok / (vSol + solIn).
// Результат всегда строго меньше VirtualTokenReserves.
func QuoteBuy(state *BondingCurveState, solIn uint64) uint64 {
	if !state.Usable() || solIn == 0 {
		return 0
	}
	return curveOut(solIn, state.VirtualTokenReserves, state.VirtualSolReserves)
}

// QuoteSell рассчитывает выход в лампортах за tokensIn минимальных единиц,
// до вычета комиссии протокола: out = tokensIn * vSol / (vTok + tokensIn).
func QuoteSell(state *BondingCurveState, tokensIn uint64) uint64 {
	if !state.Usable() || tokensIn == 0 {
		return 0
	}
	return curveOut(tokensIn, state.VirtualSolReserves, state.VirtualTokenReserves)
}

// ApplyBuySlippage возвращает минимально допустимое число токенов и
// максимальную стоимость в SOL для покупки с заданным slippage (bps).
func ApplyBuySlippage(tokenOut, solIn, bps uint64) (minTokens, maxSolCost uint64) {
	return types.MinOutWithSlippage(tokenOut, bps), types.MaxInWithSlippage(solIn, bps)
}

// ApplySellSlippage вычитает 1% комиссии протокола из выручки, затем
// снижает результат на slippagePercent.
func ApplySellSlippage(solOut, slippagePercent uint64) uint64 {
	afterFee := solOut - solOut*protocolFeePercent/100
	if slippagePercent >= 100 {
		return 0
	}
	return afterFee - afterFee*slippagePercent/100
}

// curveOut считает in*reserveOut/(reserveIn+in) без переполнения uint64.
func curveOut(in, reserveOut, reserveIn uint64) uint64 {
	num := new(big.Int).Mul(new(big.Int).SetUint64(in), new(big.Int).SetUint64(reserveOut))
	den := new(big.Int).Add(new(big.Int).SetUint64(reserveIn), new(big.Int).SetUint64(in))
	return num.Quo(num, den).Uint64()
}
