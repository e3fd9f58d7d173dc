// internal/events/types.go
package events

import (
	"time"

	"github.com/goldenbao/jinvault/internal/domain"
)

// EventType - тип события на шине.
type EventType string

const (
	DistributionCompleted EventType = "distribution.completed"
	FeesClaimed           EventType = "fees.claimed"
	SwapExecuted          EventType = "swap.executed"
	ConfigUpdated         EventType = "config.updated"
)

// Event - общий интерфейс событий.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent содержит поля, общие для всех событий.
type BaseEvent struct {
	EventType EventType `json:"type"`
	EventTime time.Time `json:"timestamp"`
}

func (e BaseEvent) Type() EventType {
	return e.EventType
}

func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

func newBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now().UTC()}
}

// DistributionCompletedEvent публикуется после каждого цикла, успешного или нет.
type DistributionCompletedEvent struct {
	BaseEvent
	DistributionID string                    `json:"distributionId"`
	Trigger        string                    `json:"trigger"`
	Result         domain.DistributionResult `json:"result"`
	Major          []domain.HolderInfo       `json:"-"`
	Medium         []domain.HolderInfo       `json:"-"`
}

func NewDistributionCompleted(id, trigger string, result domain.DistributionResult, major, medium []domain.HolderInfo) *DistributionCompletedEvent {
	return &DistributionCompletedEvent{
		BaseEvent:      newBase(DistributionCompleted),
		DistributionID: id,
		Trigger:        trigger,
		Result:         result,
		Major:          major,
		Medium:         medium,
	}
}

// FeesClaimedEvent - комиссии собраны вручную (вне цикла).
type FeesClaimedEvent struct {
	BaseEvent
	Source    string `json:"source"`
	Amount    string `json:"amount"`
	Signature string `json:"signature,omitempty"`
}

func NewFeesClaimed(source, amount, signature string) *FeesClaimedEvent {
	return &FeesClaimedEvent{BaseEvent: newBase(FeesClaimed), Source: source, Amount: amount, Signature: signature}
}

// SwapExecutedEvent - тестовый свап из админки.
type SwapExecutedEvent struct {
	BaseEvent
	Kind      string `json:"kind"` // buyback, sell, buy-gold
	Route     string `json:"route"`
	AmountOut string `json:"amountOut"`
	Signature string `json:"signature"`
}

func NewSwapExecuted(kind, route, amountOut, signature string) *SwapExecutedEvent {
	return &SwapExecutedEvent{
		BaseEvent: newBase(SwapExecuted),
		Kind:      kind,
		Route:     route,
		AmountOut: amountOut,
		Signature: signature,
	}
}

// ConfigUpdatedEvent - администратор изменил доли.
type ConfigUpdatedEvent struct {
	BaseEvent
	Config domain.ProtocolConfig `json:"config"`
}

func NewConfigUpdated(cfg domain.ProtocolConfig) *ConfigUpdatedEvent {
	return &ConfigUpdatedEvent{BaseEvent: newBase(ConfigUpdated), Config: cfg}
}
