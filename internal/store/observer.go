// Package store holds the client-side state containers: the tracker list and
// the user profile with its coin ledger. Every mutation is an action value run
// through a pure reducer; subscribers observe the resulting snapshots.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Change is delivered to listeners after every applied mutation.
// Version increases by one per applied mutation of a store.
type Change[S any] struct {
	Version uint64
	State   S
}

// Listener observes store changes. Listeners run synchronously on the
// mutating goroutine after the store lock is released.
type Listener[S any] func(Change[S])

type subscription[S any] struct {
	id int
	fn Listener[S]
}

type subscribers[S any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription[S]
}

func (s *subscribers[S]) add(fn Listener[S]) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription[S]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *subscribers[S]) notify(c Change[S]) {
	s.mu.Lock()
	subs := make([]subscription[S], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(c)
	}
}

type options struct {
	now   func() time.Time
	newID func() string
}

// Option configures a store
type Option func(*options)

// WithClock overrides the time source used for timestamps and ad cooldown checks
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides how ledger entry ids are generated
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func buildOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
