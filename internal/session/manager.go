// =============================
// File: internal/session/manager.go
// =============================
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTTL           = 24 * time.Hour
	DefaultSweepInterval = time.Hour
	tokenBytes           = 32
)

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrSessionExpired = errors.New("session expired")
)

// Manager выдаёт и проверяет токены администратора.
type Manager struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewManager(store Store, ttl time.Duration, logger *zap.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, ttl: ttl, now: time.Now, logger: logger.Named("session")}
}

// Create выдаёт новый токен: 32 случайных байта в hex.
func (m *Manager) Create() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if err := m.store.Set(token, m.now().Add(m.ttl)); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Authenticate проверяет токен. Истёкший токен сразу удаляется.
func (m *Manager) Authenticate(token string) error {
	if token == "" {
		return ErrInvalidSession
	}
	exp, ok, err := m.store.Get(token)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return ErrInvalidSession
	}
	if !m.now().Before(exp) {
		_ = m.store.Delete(token)
		return ErrSessionExpired
	}
	return nil
}

func (m *Manager) Revoke(token string) error {
	return m.store.Delete(token)
}

// RunSweeper периодически удаляет истёкшие сессии до отмены ctx.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed, err := m.store.Sweep(m.now())
			if err != nil {
				m.logger.Warn("Session sweep failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				m.logger.Debug("Expired sessions removed", zap.Int("count", removed))
			}
		}
	}
}
