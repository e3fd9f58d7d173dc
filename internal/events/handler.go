// internal/events/handler.go
package events

import "context"

// Handler обрабатывает событие. Не должен блокироваться надолго:
// события одной шины обрабатываются последовательно.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Subscription отменяет подписку.
type Subscription interface {
	Unsubscribe()
}

type subscription struct {
	id       string
	bus      *Bus
	typ      EventType
	wildcard bool
}

func (s *subscription) Unsubscribe() {
	s.bus.unsubscribe(s)
}
