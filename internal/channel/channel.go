package channel

import (
	"slices"

	"github.com/zjrosen/treelights/internal/behavior"
	"github.com/zjrosen/treelights/internal/clock"
	"github.com/zjrosen/treelights/internal/log"
)

// Handler reacts to an event synchronously.
type Handler func(Event)

// Producer answers an event with a behavior, or nil for no follow-up.
type Producer func(Event) behavior.Behavior[any]

// Channel dispatches events to filters and listeners.
//
// Trigger runs every matching filter, then every matching listener, before
// returning; events triggered from inside a handler are dispatched
// depth-first. A Channel must only be used from its scheduler's goroutine.
type Channel struct {
	sched     clock.Scheduler
	filters   []*Listener
	listeners []*Listener
}

// New creates a channel whose behaviors run on sched.
func New(sched clock.Scheduler) *Channel {
	return &Channel{sched: sched}
}

// Scheduler returns the scheduler behaviors are subscribed on.
func (c *Channel) Scheduler() clock.Scheduler { return c.sched }

// Trigger dispatches an event of type t carrying payload.
func (c *Channel) Trigger(t EventType, payload any) {
	c.TriggerEvent(Event{Type: t, Payload: payload})
}

// TriggerEvent dispatches e.
func (c *Channel) TriggerEvent(e Event) {
	for _, f := range slices.Clone(c.filters) {
		if !f.closed && f.match.matches(e.Type) {
			f.handler(e)
		}
	}
	for _, l := range slices.Clone(c.listeners) {
		if !l.closed && l.match.matches(e.Type) {
			l.handle(e)
		}
	}
}

// Filter registers fn to run for events of type t before any listener.
func (c *Channel) Filter(t EventType, fn Handler) *Listener {
	l := &Listener{ch: c, match: t, handler: fn}
	c.filters = append(c.filters, l)
	return l
}

// On registers a side-effect-only listener for events of type t.
func (c *Channel) On(t EventType, fn Handler) *Listener {
	return c.Listen(t, func(e Event) behavior.Behavior[any] {
		fn(e)
		return nil
	}, Options{})
}

// Listen registers produce for events of type t. Values, failures and
// completion of the returned behavior are re-triggered per opts.Trigger,
// and opts.Mode governs overlapping behaviors.
func (c *Channel) Listen(t EventType, produce Producer, opts Options) *Listener {
	l := &Listener{ch: c, match: t, produce: produce, opts: opts}
	c.listeners = append(c.listeners, l)
	return l
}

// Reset unsubscribes every filter and listener.
func (c *Channel) Reset() {
	for _, l := range slices.Concat(c.filters, c.listeners) {
		l.Unsubscribe()
	}
	c.filters = nil
	c.listeners = nil
}

// Listeners returns the number of registered filters and listeners.
func (c *Channel) Listeners() int {
	return len(c.filters) + len(c.listeners)
}

func (c *Channel) remove(l *Listener) {
	c.filters = slices.DeleteFunc(c.filters, func(x *Listener) bool { return x == l })
	c.listeners = slices.DeleteFunc(c.listeners, func(x *Listener) bool { return x == l })
}

// Listener is a registered filter or listener.
type Listener struct {
	ch      *Channel
	match   EventType
	handler Handler
	produce Producer
	opts    Options

	live   []*run
	queue  []Event
	closed bool
}

// run is one behavior started by a listener. It is recorded as live before
// the behavior is subscribed, so a behavior that emits synchronously into a
// handler re-triggering the listener is still seen, and cancelled, by it.
type run struct {
	sub       *behavior.Subscription
	cancelled bool
}

func (r *run) cancel() {
	r.cancelled = true
	if r.sub != nil {
		r.sub.Unsubscribe()
	}
}

// Unsubscribe removes the listener and cancels its live behaviors.
func (l *Listener) Unsubscribe() {
	if l.closed {
		return
	}
	l.closed = true
	l.queue = nil
	l.cancelLive()
	l.ch.remove(l)
}

// Active returns the number of live behaviors started by the listener.
func (l *Listener) Active() int { return len(l.live) }

func (l *Listener) handle(e Event) {
	switch l.opts.Mode {
	case Replace:
		l.cancelLive()
	case Ignore:
		if len(l.live) > 0 {
			log.Debug(log.CatChannel, "Ignoring event while busy", "type", e.Type)
			return
		}
	case Toggle:
		if len(l.live) > 0 {
			l.cancelLive()
			return
		}
	case Serial:
		if len(l.live) > 0 {
			l.queue = append(l.queue, e)
			return
		}
	}
	l.start(e)
}

func (l *Listener) start(e Event) {
	b := l.produce(e)
	if b == nil {
		return
	}

	r := &run{}
	l.live = append(l.live, r)
	trig := l.opts.Trigger
	sub := b.Subscribe(l.ch.sched, behavior.Observer[any]{
		Next: func(v any) {
			if r.cancelled {
				return
			}
			if trig.Next != "" {
				l.ch.Trigger(trig.Next, v)
			}
		},
		Error: func(err error) {
			if r.cancelled {
				return
			}
			l.release(r)
			if trig.Error != "" {
				l.ch.Trigger(trig.Error, err)
			} else {
				log.ErrorErr(log.CatChannel, "Behavior failed with no error trigger", err, "type", e.Type)
			}
			l.next()
		},
		Complete: func() {
			if r.cancelled {
				return
			}
			l.release(r)
			if trig.Complete != "" {
				l.ch.Trigger(trig.Complete, nil)
			}
			l.next()
		},
	})
	r.sub = sub
	if r.cancelled {
		// Superseded while emitting synchronously inside Subscribe.
		sub.Unsubscribe()
	}
}

// release drops r from the live set.
func (l *Listener) release(r *run) {
	l.live = slices.DeleteFunc(l.live, func(x *run) bool { return x == r })
}

// next starts the next queued event in Serial mode.
func (l *Listener) next() {
	if l.closed || len(l.queue) == 0 || len(l.live) > 0 {
		return
	}
	e := l.queue[0]
	l.queue = l.queue[1:]
	l.start(e)
}

func (l *Listener) cancelLive() {
	live := l.live
	l.live = nil
	for _, r := range live {
		r.cancel()
	}
}
