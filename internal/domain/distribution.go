// =============================
// File: internal/domain/distribution.go
// =============================
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tier определяет группу холдеров, получающих вознаграждение.
type Tier string

const (
	TierMajor  Tier = "major"
	TierMedium Tier = "medium"
)

// HolderInfo описывает классифицированного держателя токена.
// Address - кошелёк-владелец токен-аккаунта, а не сам токен-аккаунт.
type HolderInfo struct {
	Address    string          `json:"address"`
	Balance    decimal.Decimal `json:"balance"`
	Percentage float64         `json:"percentage"`
}

// ProtocolConfig задаёт распределение комиссий между тирами и байбэком.
type ProtocolConfig struct {
	MajorHoldersPercentage  float64 `json:"majorHoldersPercentage" mapstructure:"major_holders_percentage"`
	MediumHoldersPercentage float64 `json:"mediumHoldersPercentage" mapstructure:"medium_holders_percentage"`
	BuybackPercentage       float64 `json:"buybackPercentage" mapstructure:"buyback_percentage"`
	MajorMinPercentage      float64 `json:"minimumHolderPercentage" mapstructure:"major_min_percentage"`
	MediumMinPercentage     float64 `json:"mediumHolderMinPercentage" mapstructure:"medium_min_percentage"`
}

// DefaultProtocolConfig returns the split used when nothing has been stored yet.
func DefaultProtocolConfig() ProtocolConfig {
	return ProtocolConfig{
		MajorHoldersPercentage:  75,
		MediumHoldersPercentage: 10,
		BuybackPercentage:       15,
		MajorMinPercentage:      0.5,
		MediumMinPercentage:     0.1,
	}
}

// DistributionResult - итог одного цикла распределения. После возврата не изменяется.
// Суммы SOL указаны в SOL, суммы GOLD и токена - в единицах с учётом decimals.
type DistributionResult struct {
	Success              bool            `json:"success"`
	TotalFeesClaimed     decimal.Decimal `json:"totalFeesClaimed"`
	GoldPurchased        decimal.Decimal `json:"goldPurchased"`
	GoldDistributed      decimal.Decimal `json:"goldDistributed"`
	GoldForMediumHolders decimal.Decimal `json:"goldForMediumHolders"`
	TokenBuyback         decimal.Decimal `json:"tokenBuyback"`
	MajorHolders         int             `json:"majorHolders"`
	MediumHolders        int             `json:"mediumHolders"`
	TxSignatures         []string        `json:"txSignatures"`
	Error                string          `json:"error,omitempty"`
}

// DistributionRecord is a persisted DistributionResult.
type DistributionRecord struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Trigger   string             `json:"trigger"`
	Result    DistributionResult `json:"result"`
}

// HolderSnapshot фиксирует холдера, участвовавшего в конкретном распределении.
type HolderSnapshot struct {
	DistributionID string          `json:"distributionId"`
	Address        string          `json:"address"`
	Balance        decimal.Decimal `json:"balance"`
	Percentage     float64         `json:"percentage"`
	Tier           Tier            `json:"tier"`
}

// Stats агрегирует историю распределений для публичной страницы.
type Stats struct {
	TotalDistributions int             `json:"totalDistributions"`
	SuccessfulRuns     int             `json:"successfulRuns"`
	TotalFeesClaimed   decimal.Decimal `json:"totalFeesClaimed"`
	TotalGoldPurchased decimal.Decimal `json:"totalGoldPurchased"`
	TotalTokenBuyback  decimal.Decimal `json:"totalTokenBuyback"`
	LastDistribution   *time.Time      `json:"lastDistribution,omitempty"`
}
