// =============================
// File: internal/holders/classifier.go
// =============================
package holders

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/blockchain"
	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/types"
)

var hundred = decimal.NewFromInt(100)

// Tiers - непересекающееся разбиение холдеров.
type Tiers struct {
	Major  []domain.HolderInfo
	Medium []domain.HolderInfo
}

// Empty - ни одного подходящего холдера.
func (t *Tiers) Empty() bool {
	return len(t.Major) == 0 && len(t.Medium) == 0
}

// Classifier строит снимок крупнейших холдеров токена.
// Это top-N выборка RPC, а не полная перепись держателей.
type Classifier struct {
	client blockchain.Client
	logger *zap.Logger
}

func NewClassifier(client blockchain.Client, logger *zap.Logger) *Classifier {
	return &Classifier{client: client, logger: logger.Named("holders")}
}

// Classify делит крупнейших держателей mint на тиры. Граница включается в
// верхний тир. Держатели ниже mediumMinPct исключаются. Аккаунты, чей
// владелец не определяется, пропускаются.
func (c *Classifier) Classify(ctx context.Context, mint solana.PublicKey, majorMinPct, mediumMinPct float64) (*Tiers, error) {
	if majorMinPct < mediumMinPct {
		return nil, fmt.Errorf("major threshold %.4f%% is below medium threshold %.4f%%", majorMinPct, mediumMinPct)
	}

	// Шаг 1: supply и decimals один раз
	info, err := c.client.GetMint(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to get mint info: %w", err)
	}
	if info.Supply == 0 {
		return nil, fmt.Errorf("mint %s has zero supply", mint)
	}
	supply := types.RawToUI(info.Supply, info.Decimals)

	// Шаг 2: крупнейшие токен-аккаунты
	accounts, err := c.client.GetTokenLargestAccounts(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to get largest token accounts: %w", err)
	}

	tiers := &Tiers{}
	for _, account := range accounts {
		balance := types.RawToUI(account.Amount, info.Decimals)
		pct, _ := balance.Div(supply).Mul(hundred).Float64()
		if pct < mediumMinPct {
			continue
		}

		// Шаг 3: владелец токен-аккаунта
		owner, err := c.client.GetTokenAccountOwner(ctx, account.Address)
		if err != nil {
			c.logger.Warn("Skipping holder with unresolved owner",
				zap.String("token_account", account.Address.String()),
				zap.Error(err))
			continue
		}

		holder := domain.HolderInfo{
			Address:    owner.String(),
			Balance:    balance,
			Percentage: pct,
		}
		if pct >= majorMinPct {
			tiers.Major = append(tiers.Major, holder)
		} else {
			tiers.Medium = append(tiers.Medium, holder)
		}
	}

	c.logger.Info("Holders classified",
		zap.String("mint", mint.String()),
		zap.Int("candidates", len(accounts)),
		zap.Int("major", len(tiers.Major)),
		zap.Int("medium", len(tiers.Medium)))

	return tiers, nil
}
