// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/goldenbao/jinvault/internal/domain"
)

var (
	// ErrNotFound - запись с таким идентификатором отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey - распределение с таким ID уже сохранено.
	ErrDuplicateKey = errors.New("duplicate key")
)

// DefaultListLimit - сколько распределений отдаётся без явного limit.
const DefaultListLimit = 50

// Storage хранит историю распределений и текущую конфигурацию протокола
type Storage interface {
	// Распределения
	SaveDistribution(ctx context.Context, rec *domain.DistributionRecord) error
	GetDistribution(ctx context.Context, id string) (*domain.DistributionRecord, error)
	// ListDistributions возвращает последние записи, новые первыми.
	ListDistributions(ctx context.Context, limit int) ([]*domain.DistributionRecord, error)

	// Снимки холдеров
	SaveHolderSnapshots(ctx context.Context, snapshots []domain.HolderSnapshot) error
	GetHolderSnapshots(ctx context.Context, distributionID string) ([]domain.HolderSnapshot, error)

	// Конфигурация; если ничего не сохранено, возвращаются значения по умолчанию
	GetProtocolConfig(ctx context.Context) (domain.ProtocolConfig, error)
	UpdateProtocolConfig(ctx context.Context, cfg domain.ProtocolConfig) error

	Stats(ctx context.Context) (*domain.Stats, error)

	Close()
}

// NormalizeLimit приводит limit к диапазону (0, 500].
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > 500 {
		return 500
	}
	return limit
}
