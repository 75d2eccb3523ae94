package app

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/treelights/internal/channel"
	"github.com/zjrosen/treelights/internal/clock"
	"github.com/zjrosen/treelights/internal/log"
	"github.com/zjrosen/treelights/internal/pubsub"
	"github.com/zjrosen/treelights/internal/toggler"
)

// Controller drives the lights on behalf of the UI.
type Controller interface {
	// Advance moves to the mode after the current one.
	Advance()
	// SetCycle changes the cycle used from the next advance on.
	SetCycle(cycle time.Duration) error
}

// Engine runs the toggler on a wall-clock loop and mirrors every channel
// event onto a broker, which is how the UI, the journal and the MQTT bridge
// observe the lights without touching the loop's state.
type Engine struct {
	loop    *clock.Loop
	ch      *channel.Channel
	toggler *toggler.Toggler
	events  *pubsub.Broker[channel.Event]
	mirror  *channel.Listener

	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine creates an engine publishing to events.
func NewEngine(events *pubsub.Broker[channel.Event], opts ...toggler.Option) *Engine {
	loop := clock.NewLoop()
	ch := channel.New(loop)
	return &Engine{
		loop:    loop,
		ch:      ch,
		toggler: toggler.New(ch, opts...),
		events:  events,
	}
}

// Start runs the loop and fires the toggler's initialization trigger.
func (e *Engine) Start(ctx context.Context) {
	if e.done != nil {
		return
	}
	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})
	go func() {
		defer close(e.done)
		_ = e.loop.Run(ctx)
	}()
	e.loop.Post(func() {
		e.mirror = e.ch.Filter(channel.Any, e.publish)
		e.toggler.Start()
	})
}

func (e *Engine) publish(ev channel.Event) {
	e.events.Publish(pubsub.TriggeredEvent, ev)
}

// Advance implements Controller.
func (e *Engine) Advance() {
	e.loop.Post(e.toggler.Advance)
}

// SetCycle implements Controller. It waits for the loop to apply the change.
func (e *Engine) SetCycle(cycle time.Duration) error {
	if cycle <= 0 {
		return fmt.Errorf("%w: %v", toggler.ErrInvalidCycle, cycle)
	}
	var err error
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if callErr := e.loop.Call(ctx, func() { err = e.toggler.SetCycle(cycle) }); callErr != nil {
		return fmt.Errorf("applying cycle: %w", callErr)
	}
	if err == nil {
		log.Info(log.CatMode, "Cycle changed", "cycle", cycle)
	}
	return err
}

// State returns the toggler state as seen from the loop.
func (e *Engine) State(ctx context.Context) (toggler.State, error) {
	var st toggler.State
	err := e.loop.Call(ctx, func() { st = e.toggler.State() })
	return st, err
}

// Stop cancels the live color behavior and stops the loop.
func (e *Engine) Stop() {
	if e.done == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = e.loop.Call(ctx, func() {
		e.toggler.Stop()
		if e.mirror != nil {
			e.mirror.Unsubscribe()
		}
	})
	e.cancel()
	<-e.done
}
