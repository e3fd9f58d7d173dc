// =============================
// File: internal/distribution/guard.go
// =============================
package distribution

import (
	"errors"
	"sync/atomic"
)

// ErrCycleInProgress - предыдущий цикл распределения ещё не завершился.
var ErrCycleInProgress = errors.New("distribution cycle already in progress")

// Guard не даёт двум циклам распределения выполняться одновременно.
// Второй вызов не ждёт, а сразу получает ErrCycleInProgress.
type Guard struct {
	running atomic.Bool
}

// TryRun выполняет fn, если цикл не идёт.
func (g *Guard) TryRun(fn func()) error {
	if !g.running.CompareAndSwap(false, true) {
		return ErrCycleInProgress
	}
	defer g.running.Store(false)

	fn()
	return nil
}

// Running сообщает, идёт ли цикл сейчас.
func (g *Guard) Running() bool {
	return g.running.Load()
}
