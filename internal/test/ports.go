package test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// PaymentGatewayStub marks orders paid unless configured otherwise.
type PaymentGatewayStub struct {
	ChargeFn func(context.Context, *model.Order) (model.PaymentStatus, error)
	calls    atomic.Int32
}

// Charge records the call and returns the configured outcome.
func (s *PaymentGatewayStub) Charge(ctx context.Context, order *model.Order) (model.PaymentStatus, error) {
	s.calls.Add(1)
	if s.ChargeFn != nil {
		return s.ChargeFn(ctx, order)
	}
	return model.PaymentStatusPaid, nil
}

// Calls returns how many charges were attempted.
func (s *PaymentGatewayStub) Calls() int { return int(s.calls.Load()) }

// EventSinkStub records enqueued events.
type EventSinkStub struct {
	mu     sync.Mutex
	events []model.OrderEvent
	Reject bool
}

// Enqueue stores event unless Reject is set.
func (s *EventSinkStub) Enqueue(event model.OrderEvent) bool {
	if s.Reject {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return true
}

// Events returns a copy of recorded events.
func (s *EventSinkStub) Events() []model.OrderEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.OrderEvent(nil), s.events...)
}

// Types lists recorded event types in order.
func (s *EventSinkStub) Types() []model.EventType {
	events := s.Events()
	types := make([]model.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

// MetricsStub counts workflow observations.
type MetricsStub struct {
	Created        atomic.Int32
	Cancelled      atomic.Int32
	StockConflicts atomic.Int32
}

func (m *MetricsStub) OrderCreated(decimal.Decimal) { m.Created.Add(1) }
func (m *MetricsStub) OrderCancelled()              { m.Cancelled.Add(1) }
func (m *MetricsStub) StockConflict()               { m.StockConflicts.Add(1) }
