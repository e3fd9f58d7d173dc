// =============================
// File: internal/dex/pumpfun/errors.go
// =============================
package pumpfun

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goldenbao/jinvault/internal/blockchain/solbc"
)

// Коды ошибок программы Pump.fun
const (
	SlippageExceededCode        = "0x1774"
	SlippageExceededCodeInt     = 6004
	BondingCurveCompleteCode    = "0x1775"
	BondingCurveCompleteCodeInt = 6005
)

// SlippageExceededError - программа отклонила сделку из-за движения цены.
type SlippageExceededError struct {
	Amount        uint64
	Limit         uint64
	OriginalError error
}

func (e *SlippageExceededError) Error() string {
	return fmt.Sprintf("slippage exceeded: amount %d, limit %d: %v", e.Amount, e.Limit, e.OriginalError)
}

func (e *SlippageExceededError) Unwrap() error {
	return e.OriginalError
}

// IsSlippageExceededError определяет, является ли ошибка ошибкой превышения проскальзывания
func IsSlippageExceededError(err error) bool {
	return matchProgramError(err, SlippageExceededCodeInt, "TooMuchSolRequired", "TooLittleSolReceived", SlippageExceededCode)
}

// IsCurveCompleteError - кривая завершилась между чтением состояния и исполнением.
func IsCurveCompleteError(err error) bool {
	return matchProgramError(err, BondingCurveCompleteCodeInt, "BondingCurveComplete", BondingCurveCompleteCode)
}

func matchProgramError(err error, code int, needles ...string) bool {
	if err == nil {
		return false
	}

	var pe *solbc.ProgramError
	if errors.As(err, &pe) {
		if pe.Anchor != nil && pe.Anchor.Code == code {
			return true
		}
		for _, line := range pe.Logs {
			if containsAny(line, needles) {
				return true
			}
		}
	}

	msg := err.Error()
	return containsAny(msg, needles) || strings.Contains(msg, strconv.Itoa(code))
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// handleTradeError переводит отказы программы в ошибки пакета.
func handleTradeError(err error, amount, limit uint64) error {
	switch {
	case IsCurveCompleteError(err):
		return fmt.Errorf("%w: %w", ErrCurveComplete, err)
	case IsSlippageExceededError(err):
		return &SlippageExceededError{Amount: amount, Limit: limit, OriginalError: err}
	default:
		return err
	}
}
