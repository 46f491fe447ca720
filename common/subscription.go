package common

import (
	"sync"
	"time"

	"github.com/satori/go.uuid"
)

// eventBuffer is the number of events a subscriber may lag behind before
// writes start blocking
const eventBuffer = 16

// SubscriptionTarget defines the interface between a subscription and its
// target object
type SubscriptionTarget interface {
	NewSubscription() (*Subscription, error)
	CloseSubscription(*Subscription) error
}

// Subscription exposes an event channel for consumers, and attaches to a
// SubscriptionTarget, that will feed it with events.
//
// The events channel is never closed; a closed subscription stops accepting
// writes instead, so a publish racing a Close returns ErrClosed rather than
// panicking on a closed channel.
type Subscription struct {
	events chan interface{}
	closed chan struct{}
	id     uuid.UUID
	target SubscriptionTarget
	mu     sync.Mutex
}

// ID returns the unique ID for this subscription
func (s *Subscription) ID() string {
	return s.id.String()
}

// Events returns a chan reader for reading events published to this
// subscription
func (s *Subscription) Events() <-chan interface{} {
	return s.events
}

// Write pushes an event onto the events channel.  Returns ErrClosed once the
// subscription is closed, and ErrTimeout when the subscriber has not kept up.
func (s *Subscription) Write(event interface{}) error {
	select {
	case <-s.closed:
		return ErrClosed
	default:
	}

	select {
	case <-s.closed:
		return ErrClosed
	case s.events <- event:
		return nil
	case <-time.After(DefaultTimeout):
		return ErrTimeout
	}
}

// Close stops event delivery and notifies the target that the subscription
// should no longer be used.  It is important to close subscriptions when you
// are done with them to avoid blocking operations.
func (s *Subscription) Close() error {
	s.mu.Lock()
	select {
	case <-s.closed:
		s.mu.Unlock()
		Log.Warnf(`subscription %s already closed`, s.ID())
		return ErrClosed
	default:
		close(s.closed)
	}
	s.mu.Unlock()
	return s.target.CloseSubscription(s)
}

// NewSubscription returns a *Subscription attached to the specified target
func NewSubscription(target SubscriptionTarget) *Subscription {
	return &Subscription{
		events: make(chan interface{}, eventBuffer),
		closed: make(chan struct{}),
		id:     uuid.NewV4(),
		target: target,
	}
}
