// =============================
// File: internal/session/store.go
// =============================
package session

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

// Store хранит токены сессий и время их истечения.
type Store interface {
	// Get возвращает время истечения; ok = false, если токена нет.
	Get(token string) (expiresAt time.Time, ok bool, err error)
	Set(token string, expiresAt time.Time) error
	Delete(token string) error
	// Sweep удаляет все сессии, истёкшие к моменту now, и возвращает их число.
	Sweep(now time.Time) (int, error)
	Close() error
}

// MemoryStore - хранилище в памяти; сессии теряются при рестарте.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]time.Time)}
}

func (s *MemoryStore) Get(token string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.sessions[token]
	return exp, ok, nil
}

func (s *MemoryStore) Set(token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = expiresAt
	return nil
}

func (s *MemoryStore) Delete(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *MemoryStore) Sweep(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, exp := range s.sessions {
		if !now.Before(exp) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Close() error { return nil }

var bucketSessions = []byte("sessions")

// BoltStore хранит сессии в bbolt, чтобы вход администратора
// переживал рестарт процесса. Значение - unix-nano истечения, big-endian.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore открывает или создаёт базу по пути dbPath.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("session: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("session: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessions)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session: create bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(token string) (time.Time, bool, error) {
	var (
		exp time.Time
		ok  bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketSessions).Get([]byte(token))
		if len(v) != 8 {
			return nil
		}
		exp, ok = decodeExpiry(v), true
		return nil
	})
	return exp, ok, err
}

func (s *BoltStore) Set(token string, expiresAt time.Time) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).Put([]byte(token), encodeExpiry(expiresAt))
	})
}

func (s *BoltStore) Delete(token string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(token))
	})
}

func (s *BoltStore) Sweep(now time.Time) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		var expired [][]byte
		err := b.ForEach(func(k, v []byte) error {
			if len(v) != 8 || !now.Before(decodeExpiry(v)) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		// удалять во время ForEach нельзя
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	return removed, err
}

func (s *BoltStore) Close() error { return s.db.Close() }

func encodeExpiry(t time.Time) []byte {
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, uint64(t.UnixNano()))
	return v
}

func decodeExpiry(v []byte) time.Time {
	return time.Unix(0, int64(binary.BigEndian.Uint64(v)))
}
