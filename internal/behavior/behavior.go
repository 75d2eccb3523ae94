// Package behavior provides time-varying producers of values.
//
// A Behavior is subscribed to against a clock.Scheduler and yields zero or
// more values over time, possibly completing or failing. Subscriptions are
// not safe for concurrent use: create, observe and cancel them on the
// scheduler's goroutine.
package behavior

import "github.com/zjrosen/treelights/internal/clock"

// Observer receives what a Behavior produces. Nil callbacks are skipped.
type Observer[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

// Behavior is a subscribable producer of T values.
type Behavior[T any] interface {
	Subscribe(sched clock.Scheduler, obs Observer[T]) *Subscription
}

// Func adapts a producer function to the Behavior interface. The function
// receives a Sink that it pushes values into; timers it schedules should be
// registered with Sink.Add so unsubscribing cancels them.
type Func[T any] func(sched clock.Scheduler, sink *Sink[T])

// Subscribe runs f with a fresh Sink and returns its subscription.
func (f Func[T]) Subscribe(sched clock.Scheduler, obs Observer[T]) *Subscription {
	sink := &Sink[T]{sub: &Subscription{}, obs: obs}
	f(sched, sink)
	return sink.sub
}

// Sink forwards values to an Observer until the subscription closes.
type Sink[T any] struct {
	sub *Subscription
	obs Observer[T]
}

// Next delivers v unless the subscription is closed.
func (s *Sink[T]) Next(v T) {
	if s.sub.Closed() {
		return
	}
	if s.obs.Next != nil {
		s.obs.Next(v)
	}
}

// Error closes the subscription and delivers err.
func (s *Sink[T]) Error(err error) {
	if s.sub.Closed() {
		return
	}
	s.sub.Unsubscribe()
	if s.obs.Error != nil {
		s.obs.Error(err)
	}
}

// Complete closes the subscription and signals completion.
func (s *Sink[T]) Complete() {
	if s.sub.Closed() {
		return
	}
	s.sub.Unsubscribe()
	if s.obs.Complete != nil {
		s.obs.Complete()
	}
}

// Closed reports whether the subscription has ended.
func (s *Sink[T]) Closed() bool { return s.sub.Closed() }

// Add registers teardown to run when the subscription ends.
func (s *Sink[T]) Add(teardown func()) { s.sub.Add(teardown) }

// AddTimer stops t when the subscription ends.
func (s *Sink[T]) AddTimer(t clock.Timer) { s.sub.Add(func() { t.Stop() }) }

// Subscription is the live binding between a Behavior and its Observer.
type Subscription struct {
	closed    bool
	teardowns []func()
}

// Closed reports whether the subscription has completed, failed or been
// unsubscribed.
func (s *Subscription) Closed() bool { return s.closed }

// Add registers teardown to run on Unsubscribe. If the subscription is
// already closed, teardown runs immediately.
func (s *Subscription) Add(teardown func()) {
	if s.closed {
		teardown()
		return
	}
	s.teardowns = append(s.teardowns, teardown)
}

// Unsubscribe closes the subscription and runs teardowns in reverse order.
// Calling it again is a no-op.
func (s *Subscription) Unsubscribe() {
	if s.closed {
		return
	}
	s.closed = true
	teardowns := s.teardowns
	s.teardowns = nil
	for i := len(teardowns) - 1; i >= 0; i-- {
		teardowns[i]()
	}
}
