package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (*Subscription, error)
	Close() error
}

// Subscription is an explicit handle on a channel subscription. Callers own
// the handle and must Close it; messages stop and C is closed afterwards.
type Subscription struct {
	C      <-chan []byte
	cancel context.CancelFunc
}

// NewSubscription wraps a message channel and its cancel func.
func NewSubscription(c <-chan []byte, cancel context.CancelFunc) *Subscription {
	return &Subscription{C: c, cancel: cancel}
}

// Close releases the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}
