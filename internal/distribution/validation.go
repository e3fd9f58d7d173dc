// =============================
// File: internal/distribution/validation.go
// =============================
package distribution

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/goldenbao/jinvault/internal/domain"
)

// percentScale - точность, с которой сравниваются проценты. Значения из JSON
// и env приходят как float64, поэтому сравнение идёт в decimal после округления.
const percentScale = 6

var hundred = decimal.NewFromInt(100)

// ConfigError - конфигурация отклонена до любых обращений к сети.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "Invalid config: " + e.Reason
}

func percent(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(percentScale)
}

// ValidateConfig проверяет, что доли неотрицательны и в сумме дают ровно 100,
// а пороги тиров согласованы.
func ValidateConfig(cfg domain.ProtocolConfig) error {
	if cfg.MajorHoldersPercentage < 0 || cfg.MediumHoldersPercentage < 0 || cfg.BuybackPercentage < 0 {
		return &ConfigError{Reason: "percentages cannot be negative"}
	}

	sum := percent(cfg.MajorHoldersPercentage).
		Add(percent(cfg.MediumHoldersPercentage)).
		Add(percent(cfg.BuybackPercentage))
	if !sum.Equal(hundred) {
		return &ConfigError{Reason: fmt.Sprintf("percentages sum to %s%% (must be exactly 100%%)", sum.String())}
	}

	if cfg.MajorMinPercentage < 0 || cfg.MediumMinPercentage < 0 {
		return &ConfigError{Reason: "holder thresholds cannot be negative"}
	}
	if percent(cfg.MajorMinPercentage).LessThan(percent(cfg.MediumMinPercentage)) {
		return &ConfigError{Reason: "major holder threshold must not be below the medium holder threshold"}
	}
	return nil
}
