// internal/storage/postgres/store.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goldenbao/jinvault/internal/domain"
	"github.com/goldenbao/jinvault/internal/storage"
)

// Store реализует storage.Storage поверх PostgreSQL.
// Суммы хранятся в NUMERIC и передаются текстом, чтобы не терять точность.
type Store struct {
	pool     *Pool
	defaults domain.ProtocolConfig
	logger   *zap.Logger
}

var _ storage.Storage = (*Store)(nil)

func NewStore(pool *Pool, defaults domain.ProtocolConfig, logger *zap.Logger) *Store {
	return &Store{pool: pool, defaults: defaults, logger: logger.Named("postgres")}
}

// Open подключается к базе и применяет миграции.
func Open(ctx context.Context, dsn string, defaults domain.ProtocolConfig, logger *zap.Logger) (*Store, error) {
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}
	return NewStore(pool, defaults, logger), nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) SaveDistribution(ctx context.Context, rec *domain.DistributionRecord) error {
	query := `
		INSERT INTO distributions (
			id, created_at, trigger, success,
			total_fees_claimed, gold_purchased, gold_distributed, gold_for_medium_holders, token_buyback,
			major_holders, medium_holders, tx_signatures, error
		) VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8::numeric, $9::numeric, $10, $11, $12, $13)
	`
	r := rec.Result
	signatures := r.TxSignatures
	if signatures == nil {
		signatures = []string{}
	}

	_, err := s.pool.Exec(ctx, query,
		rec.ID,
		rec.Timestamp.UTC(),
		rec.Trigger,
		r.Success,
		r.TotalFeesClaimed.String(),
		r.GoldPurchased.String(),
		r.GoldDistributed.String(),
		r.GoldForMediumHolders.String(),
		r.TokenBuyback.String(),
		r.MajorHolders,
		r.MediumHolders,
		signatures,
		r.Error,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert distribution: %w", err)
	}
	return nil
}

const selectDistribution = `
	SELECT id, created_at, trigger, success,
		total_fees_claimed::text, gold_purchased::text, gold_distributed::text,
		gold_for_medium_holders::text, token_buyback::text,
		major_holders, medium_holders, tx_signatures, error
	FROM distributions
`

func (s *Store) GetDistribution(ctx context.Context, id string) (*domain.DistributionRecord, error) {
	row := s.pool.QueryRow(ctx, selectDistribution+" WHERE id = $1", id)
	rec, err := scanDistribution(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get distribution: %w", err)
	}
	return rec, nil
}

func (s *Store) ListDistributions(ctx context.Context, limit int) ([]*domain.DistributionRecord, error) {
	rows, err := s.pool.Query(ctx,
		selectDistribution+" ORDER BY created_at DESC, id DESC LIMIT $1",
		storage.NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list distributions: %w", err)
	}
	defer rows.Close()

	var out []*domain.DistributionRecord
	for rows.Next() {
		rec, err := scanDistribution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanDistribution(row pgx.Row) (*domain.DistributionRecord, error) {
	var (
		rec                                           domain.DistributionRecord
		fees, purchased, distributed, medium, buyback string
		createdAt                                     time.Time
	)
	err := row.Scan(
		&rec.ID, &createdAt, &rec.Trigger, &rec.Result.Success,
		&fees, &purchased, &distributed, &medium, &buyback,
		&rec.Result.MajorHolders, &rec.Result.MediumHolders,
		&rec.Result.TxSignatures, &rec.Result.Error,
	)
	if err != nil {
		return nil, err
	}
	rec.Timestamp = createdAt.UTC()

	amounts := []struct {
		raw string
		dst *decimal.Decimal
	}{
		{fees, &rec.Result.TotalFeesClaimed},
		{purchased, &rec.Result.GoldPurchased},
		{distributed, &rec.Result.GoldDistributed},
		{medium, &rec.Result.GoldForMediumHolders},
		{buyback, &rec.Result.TokenBuyback},
	}
	for _, a := range amounts {
		v, err := decimal.NewFromString(a.raw)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", a.raw, err)
		}
		*a.dst = v
	}
	return &rec, nil
}

// SaveHolderSnapshots записывает снимки одной транзакцией, пакетом вставок.
func (s *Store) SaveHolderSnapshots(ctx context.Context, snapshots []domain.HolderSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		batch.Queue(`
			INSERT INTO holder_snapshots (distribution_id, address, balance, percentage, tier)
			VALUES ($1, $2, $3::numeric, $4, $5)`,
			snap.DistributionID, snap.Address, snap.Balance.String(), snap.Percentage, string(snap.Tier))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert holder snapshots: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *Store) GetHolderSnapshots(ctx context.Context, distributionID string) ([]domain.HolderSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT distribution_id, address, balance::text, percentage, tier
		FROM holder_snapshots
		WHERE distribution_id = $1
		ORDER BY id ASC`, distributionID)
	if err != nil {
		return nil, fmt.Errorf("get holder snapshots: %w", err)
	}
	defer rows.Close()

	var out []domain.HolderSnapshot
	for rows.Next() {
		var (
			snap    domain.HolderSnapshot
			balance string
			tier    string
		)
		if err := rows.Scan(&snap.DistributionID, &snap.Address, &balance, &snap.Percentage, &tier); err != nil {
			return nil, fmt.Errorf("scan holder snapshot: %w", err)
		}
		if snap.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("parse balance %q: %w", balance, err)
		}
		snap.Tier = domain.Tier(tier)
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *Store) GetProtocolConfig(ctx context.Context) (domain.ProtocolConfig, error) {
	var cfg domain.ProtocolConfig
	err := s.pool.QueryRow(ctx, `
		SELECT major_holders_percentage, medium_holders_percentage, buyback_percentage,
			major_min_percentage, medium_min_percentage
		FROM protocol_config WHERE id = 1`).Scan(
		&cfg.MajorHoldersPercentage,
		&cfg.MediumHoldersPercentage,
		&cfg.BuybackPercentage,
		&cfg.MajorMinPercentage,
		&cfg.MediumMinPercentage,
	)
	if isNotFoundError(err) {
		return s.defaults, nil
	}
	if err != nil {
		return domain.ProtocolConfig{}, fmt.Errorf("get protocol config: %w", err)
	}
	return cfg, nil
}

func (s *Store) UpdateProtocolConfig(ctx context.Context, cfg domain.ProtocolConfig) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO protocol_config (
			id, major_holders_percentage, medium_holders_percentage, buyback_percentage,
			major_min_percentage, medium_min_percentage, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE SET
			major_holders_percentage = EXCLUDED.major_holders_percentage,
			medium_holders_percentage = EXCLUDED.medium_holders_percentage,
			buyback_percentage = EXCLUDED.buyback_percentage,
			major_min_percentage = EXCLUDED.major_min_percentage,
			medium_min_percentage = EXCLUDED.medium_min_percentage,
			updated_at = now()`,
		cfg.MajorHoldersPercentage,
		cfg.MediumHoldersPercentage,
		cfg.BuybackPercentage,
		cfg.MajorMinPercentage,
		cfg.MediumMinPercentage,
	)
	if err != nil {
		return fmt.Errorf("update protocol config: %w", err)
	}
	s.logger.Info("Protocol config updated",
		zap.Float64("major", cfg.MajorHoldersPercentage),
		zap.Float64("medium", cfg.MediumHoldersPercentage),
		zap.Float64("buyback", cfg.BuybackPercentage))
	return nil
}

func (s *Store) Stats(ctx context.Context) (*domain.Stats, error) {
	var (
		stats                    domain.Stats
		fees, purchased, buyback string
		last                     *time.Time
	)
	err := s.pool.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE success),
			COALESCE(sum(total_fees_claimed) FILTER (WHERE success), 0)::text,
			COALESCE(sum(gold_purchased) FILTER (WHERE success), 0)::text,
			COALESCE(sum(token_buyback) FILTER (WHERE success), 0)::text,
			max(created_at) FILTER (WHERE success)
		FROM distributions`).Scan(
		&stats.TotalDistributions, &stats.SuccessfulRuns, &fees, &purchased, &buyback, &last)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}

	if stats.TotalFeesClaimed, err = decimal.NewFromString(fees); err != nil {
		return nil, err
	}
	if stats.TotalGoldPurchased, err = decimal.NewFromString(purchased); err != nil {
		return nil, err
	}
	if stats.TotalTokenBuyback, err = decimal.NewFromString(buyback); err != nil {
		return nil, err
	}
	if last != nil {
		utc := last.UTC()
		stats.LastDistribution = &utc
	}
	return &stats, nil
}
