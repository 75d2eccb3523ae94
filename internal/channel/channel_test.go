package channel

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/treelights/internal/behavior"
	"github.com/zjrosen/treelights/internal/clock"
)

const (
	requestUser          EventType = "REQUEST_USER"
	requestUserDelay     EventType = "REQUEST_USER_DELAY"
	requestUserDebounced EventType = "REQUEST_USER_DEBOUNCED"
	receiveUser          EventType = "RECEIVE_USER"
)

type user struct {
	ID   int
	Name string
}

var mockUser = user{ID: 42, Name: "Joe"}

const userDelay = 5 * time.Second

// newUserChannel registers the user lookup listeners and a spy that
// records every event seen.
func newUserChannel(t *testing.T) (*Channel, *clock.Virtual, *[]Event) {
	t.Helper()
	v := clock.NewVirtual()
	ch := New(v)
	seen := &[]Event{}
	ch.Filter(Any, func(e Event) { *seen = append(*seen, e) })

	ch.Listen(requestUser, func(Event) behavior.Behavior[any] {
		return behavior.Untyped(behavior.Of(mockUser))
	}, Options{Trigger: TriggerMap{Next: receiveUser}})

	ch.Listen(requestUserDelay, func(Event) behavior.Behavior[any] {
		return behavior.Untyped(behavior.After(userDelay, mockUser))
	}, Options{Trigger: TriggerMap{Next: receiveUser}})

	ch.Listen(requestUserDebounced, func(Event) behavior.Behavior[any] {
		return behavior.Untyped(behavior.After(userDelay, mockUser))
	}, Options{Trigger: TriggerMap{Next: receiveUser}, Mode: Replace})

	t.Cleanup(ch.Reset)
	return ch, v, seen
}

func TestChannel_SynchronousLookup(t *testing.T) {
	ch, _, seen := newUserChannel(t)

	ch.Trigger(requestUser, nil)

	require.Equal(t, []Event{
		{Type: requestUser},
		{Type: receiveUser, Payload: mockUser},
	}, *seen)
}

func TestChannel_DelayedLookup(t *testing.T) {
	ch, v, seen := newUserChannel(t)

	ch.Trigger(requestUserDelay, nil)
	require.Len(t, *seen, 1)

	v.Advance(userDelay)

	require.Equal(t, []Event{
		{Type: requestUserDelay},
		{Type: receiveUser, Payload: mockUser},
	}, *seen)
}

func TestChannel_DebouncedImmediateRequests(t *testing.T) {
	ch, v, seen := newUserChannel(t)

	ch.Trigger(requestUserDebounced, nil)
	ch.Trigger(requestUserDebounced, nil)
	v.Advance(userDelay * 10)

	require.Equal(t, []Event{
		{Type: requestUserDebounced},
		{Type: requestUserDebounced},
		{Type: receiveUser, Payload: mockUser},
	}, *seen)
}

func TestChannel_DebouncedSpacedRequests(t *testing.T) {
	ch, v, seen := newUserChannel(t)

	v.AfterFunc(0, func() { ch.Trigger(requestUserDebounced, nil) })
	v.AfterFunc(userDelay/2, func() { ch.Trigger(requestUserDebounced, nil) })
	v.Advance(userDelay * 10)

	require.Equal(t, []Event{
		{Type: requestUserDebounced},
		{Type: requestUserDebounced},
		{Type: receiveUser, Payload: mockUser},
	}, *seen)
}

func TestChannel_ParallelAllowsOverlap(t *testing.T) {
	ch, v, seen := newUserChannel(t)

	ch.Trigger(requestUserDelay, nil)
	v.Advance(userDelay / 2)
	ch.Trigger(requestUserDelay, nil)
	v.Advance(userDelay * 10)

	receives := 0
	for _, e := range *seen {
		if e.Type == receiveUser {
			receives++
		}
	}
	require.Equal(t, 2, receives)
}

// countingChannel listens on "go" in the given mode with a delayed behavior
// that echoes its payload on "done".
func countingChannel(t *testing.T, mode Mode) (*Channel, *clock.Virtual, *Listener, *[]any) {
	t.Helper()
	v := clock.NewVirtual()
	ch := New(v)
	var done []any
	l := ch.Listen("go", func(e Event) behavior.Behavior[any] {
		return behavior.Untyped(behavior.After(time.Second, e.Payload))
	}, Options{Trigger: TriggerMap{Next: "done"}, Mode: mode})
	ch.On("done", func(e Event) { done = append(done, e.Payload) })
	return ch, v, l, &done
}

func TestChannel_IgnoreDropsWhileBusy(t *testing.T) {
	ch, v, l, done := countingChannel(t, Ignore)

	ch.Trigger("go", 1)
	ch.Trigger("go", 2)
	require.Equal(t, 1, l.Active())
	v.Advance(time.Second)
	ch.Trigger("go", 3)
	v.Advance(time.Second)

	require.Equal(t, []any{1, 3}, *done)
}

func TestChannel_ToggleCancelsAndStartsNothing(t *testing.T) {
	ch, v, l, done := countingChannel(t, Toggle)

	ch.Trigger("go", 1)
	ch.Trigger("go", 2)
	require.Equal(t, 0, l.Active())
	v.Advance(time.Minute)
	require.Empty(t, *done)

	ch.Trigger("go", 3)
	v.Advance(time.Second)
	require.Equal(t, []any{3}, *done)
}

func TestChannel_SerialQueues(t *testing.T) {
	ch, v, _, done := countingChannel(t, Serial)

	ch.Trigger("go", 1)
	ch.Trigger("go", 2)
	ch.Trigger("go", 3)

	v.Advance(time.Second)
	require.Equal(t, []any{1}, *done)
	v.Advance(2 * time.Second)
	require.Equal(t, []any{1, 2, 3}, *done)
}

func TestChannel_ReplaceCancelsPendingTimer(t *testing.T) {
	ch, v, l, done := countingChannel(t, Replace)

	ch.Trigger("go", 1)
	v.Advance(999 * time.Millisecond)
	ch.Trigger("go", 2)
	require.Equal(t, 1, v.Pending(), "the superseded timer is gone")
	require.Equal(t, 1, l.Active())

	v.Advance(time.Second)
	require.Equal(t, []any{2}, *done)
	require.Equal(t, 0, l.Active())
}

// A handler reacting to a synchronous first value re-triggers the same
// replace listener. The first behavior must end before it can tick.
func TestChannel_ReplaceFromSynchronousEmission(t *testing.T) {
	v := clock.NewVirtual()
	ch := New(v)
	l := ch.Listen("go", func(e Event) behavior.Behavior[any] {
		gen := e.Payload.(int)
		return behavior.Untyped(behavior.Concat(
			behavior.Of(gen*100),
			behavior.Interval(time.Second, func(i int) int { return gen*100 + i + 1 }),
		))
	}, Options{Trigger: TriggerMap{Next: "done"}, Mode: Replace})

	var done []any
	ch.On("done", func(e Event) {
		done = append(done, e.Payload)
		if e.Payload == 100 {
			ch.Trigger("go", 2)
		}
	})

	ch.Trigger("go", 1)
	require.Equal(t, 1, l.Active(), "only the latest behavior is live")
	require.Equal(t, 1, v.Pending(), "the superseded interval timer was stopped")

	v.Advance(3 * time.Second)
	require.Equal(t, []any{100, 200, 201, 202, 203}, done)
}

func TestChannel_UnsubscribeFromSynchronousEmission(t *testing.T) {
	v := clock.NewVirtual()
	ch := New(v)
	var l *Listener
	l = ch.Listen("go", func(Event) behavior.Behavior[any] {
		return behavior.Untyped(behavior.Concat(
			behavior.Of(0),
			behavior.Interval(time.Second, func(i int) int { return i + 1 }),
		))
	}, Options{Trigger: TriggerMap{Next: "done"}, Mode: Replace})

	var done []any
	ch.On("done", func(e Event) {
		done = append(done, e.Payload)
		l.Unsubscribe()
	})

	ch.Trigger("go", nil)
	v.Advance(5 * time.Second)

	require.Equal(t, []any{0}, done)
	require.Equal(t, 0, l.Active())
	require.Equal(t, 0, v.Pending())
}

func TestChannel_IgnoreSeesSynchronousBehavior(t *testing.T) {
	v := clock.NewVirtual()
	ch := New(v)
	starts := 0
	ch.Listen("go", func(Event) behavior.Behavior[any] {
		starts++
		return behavior.Untyped(behavior.Concat(behavior.Of(1), behavior.Never[int]()))
	}, Options{Trigger: TriggerMap{Next: "done"}, Mode: Ignore})
	ch.On("done", func(Event) { ch.Trigger("go", nil) })

	ch.Trigger("go", nil)

	require.Equal(t, 1, starts, "the re-trigger arrives while the first behavior is live")
}

func TestChannel_ErrorAndCompleteTriggers(t *testing.T) {
	v := clock.NewVirtual()
	ch := New(v)
	boom := errors.New("boom")
	var got []Event
	ch.Filter(Any, func(e Event) { got = append(got, e) })

	ch.Listen("fail", func(Event) behavior.Behavior[any] {
		return behavior.Untyped(behavior.Throw[int](boom))
	}, Options{Trigger: TriggerMap{Error: "failed"}})
	ch.Listen("finish", func(Event) behavior.Behavior[any] {
		return behavior.Untyped(behavior.Of(1))
	}, Options{Trigger: TriggerMap{Next: "value", Complete: "finished"}})

	ch.Trigger("fail", nil)
	ch.Trigger("finish", nil)

	require.Equal(t, []Event{
		{Type: "fail"},
		{Type: "failed", Payload: boom},
		{Type: "finish"},
		{Type: "value", Payload: 1},
		{Type: "finished"},
	}, got)
}

func TestChannel_ErrorWithoutTriggerIsNotFatal(t *testing.T) {
	v := clock.NewVirtual()
	ch := New(v)
	l := ch.Listen("fail", func(Event) behavior.Behavior[any] {
		return behavior.Untyped(behavior.Throw[int](errors.New("boom")))
	}, Options{})

	require.NotPanics(t, func() { ch.Trigger("fail", nil) })
	require.Equal(t, 0, l.Active())
}

func TestChannel_FiltersRunBeforeListeners(t *testing.T) {
	v := clock.NewVirtual()
	ch := New(v)
	var order []string
	ch.On("x", func(Event) { order = append(order, "listener") })
	ch.Filter("x", func(Event) { order = append(order, "filter") })

	ch.Trigger("x", nil)

	require.Equal(t, []string{"filter", "listener"}, order)
}

func TestChannel_NestedTriggerIsDepthFirst(t *testing.T) {
	v := clock.NewVirtual()
	ch := New(v)
	var order []EventType
	ch.Filter(Any, func(e Event) { order = append(order, e.Type) })
	ch.On("a", func(Event) { ch.Trigger("b", nil) })
	ch.On("a", func(Event) { ch.Trigger("c", nil) })

	ch.Trigger("a", nil)

	require.Equal(t, []EventType{"a", "b", "c"}, order)
}

func TestListener_UnsubscribeCancelsLive(t *testing.T) {
	ch, v, l, done := countingChannel(t, Parallel)

	ch.Trigger("go", 1)
	ch.Trigger("go", 2)
	require.Equal(t, 2, l.Active())

	l.Unsubscribe()
	l.Unsubscribe()
	v.Advance(time.Minute)
	ch.Trigger("go", 3)
	v.Advance(time.Minute)

	require.Empty(t, *done)
	require.Equal(t, 1, ch.Listeners(), "the done listener remains")
}

func TestListener_UnsubscribeDuringDispatch(t *testing.T) {
	v := clock.NewVirtual()
	ch := New(v)
	calls := 0
	var second *Listener
	ch.On("x", func(Event) { second.Unsubscribe() })
	second = ch.On("x", func(Event) { calls++ })

	ch.Trigger("x", nil)

	require.Equal(t, 0, calls, "a listener removed mid-dispatch is skipped")
}

func TestChannel_Reset(t *testing.T) {
	ch, v, _, done := countingChannel(t, Parallel)
	ch.Trigger("go", 1)

	ch.Reset()
	v.Advance(time.Minute)

	require.Empty(t, *done)
	require.Equal(t, 0, ch.Listeners())
}

func TestEvent_String(t *testing.T) {
	require.Equal(t, "color/set white", Event{Type: "color/set", Payload: "white"}.String())
	require.Equal(t, "ping", Event{Type: "ping"}.String())
}

func TestMode_String(t *testing.T) {
	require.Equal(t, "replace", Replace.String())
	require.Equal(t, "mode(99)", Mode(99).String())
}
