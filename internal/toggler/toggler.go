package toggler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/treelights/internal/behavior"
	"github.com/zjrosen/treelights/internal/channel"
	"github.com/zjrosen/treelights/internal/log"
	"github.com/zjrosen/treelights/internal/tracing"
)

// Event types handled and produced by the toggler.
const (
	// EventModeAdvance asks to move to the mode after Advance.From.
	EventModeAdvance channel.EventType = "mode/advance"
	// EventColorSet carries the Color the lights should show.
	EventColorSet channel.EventType = "color/set"
	// EventBehaviorFailed carries the error of a color behavior that failed.
	EventBehaviorFailed channel.EventType = "color/failed"
)

// ErrInvalidCycle is returned for a non-positive cycle duration.
var ErrInvalidCycle = errors.New("cycle must be positive")

// Advance is the payload of EventModeAdvance.
type Advance struct {
	From Mode
}

func (a Advance) String() string { return "from=" + a.From.String() }

// State is the current mode and color.
type State struct {
	Mode  Mode
	Color Color
}

// Toggler owns the mode state and bridges mode advances to color events.
//
// Every mode advance resolves the next mode and subscribes to its color
// behavior in replace mode: the previous behavior, and any timer it has
// pending, is cancelled before the new one starts, so no color from a
// superseded mode is ever triggered after the switch. Like the channel it
// sits on, a Toggler must only be used from the scheduler's goroutine.
type Toggler struct {
	ch        *channel.Channel
	behaviors Behaviors
	startFrom Mode
	state     State
	tracer    trace.Tracer
	listeners []*channel.Listener
	colors    *channel.Listener
}

// Option configures a Toggler.
type Option func(*Toggler)

// WithCycle builds the default behaviors with cycle instead of DefaultCycle.
// Non-positive values are ignored.
func WithCycle(cycle time.Duration) Option {
	return func(t *Toggler) {
		if cycle <= 0 {
			log.Warn(log.CatMode, "Ignoring invalid cycle", "cycle", cycle)
			return
		}
		t.behaviors = NewBehaviors(cycle)
	}
}

// WithBehaviors replaces the color behavior table.
func WithBehaviors(b Behaviors) Option {
	return func(t *Toggler) { t.behaviors = b }
}

// WithStartMode sets the mode the initialization trigger advances from.
// The default is Off, so a started toggler is in White.
func WithStartMode(m Mode) Option {
	return func(t *Toggler) { t.startFrom = m }
}

// WithTracer records a span for every mode advance.
func WithTracer(tr trace.Tracer) Option {
	return func(t *Toggler) { t.tracer = tr }
}

// New creates a toggler on ch. Call Start to begin handling events.
func New(ch *channel.Channel, opts ...Option) *Toggler {
	t := &Toggler{
		ch:        ch,
		behaviors: NewBehaviors(DefaultCycle),
		startFrom: Off,
		state:     State{Mode: Off, Color: ColorOff},
		tracer:    noop.NewTracerProvider().Tracer("treelights"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start registers the toggler's listeners and fires the initialization
// trigger. Calling Start on a started toggler does nothing.
func (t *Toggler) Start() {
	if t.colors != nil {
		return
	}
	t.colors = t.ch.Listen(EventModeAdvance, t.onModeAdvance, channel.Options{
		Trigger: channel.TriggerMap{
			Next:  EventColorSet,
			Error: EventBehaviorFailed,
		},
		Mode: channel.Replace,
	})
	t.listeners = append(t.listeners,
		t.colors,
		t.ch.On(EventColorSet, t.onColorSet),
		t.ch.On(EventBehaviorFailed, t.onBehaviorFailed),
	)
	log.Info(log.CatMode, "Toggler started", "from", t.startFrom)
	t.ch.Trigger(EventModeAdvance, Advance{From: t.startFrom})
}

// Stop removes the listeners and cancels the live color behavior.
func (t *Toggler) Stop() {
	for _, l := range t.listeners {
		l.Unsubscribe()
	}
	t.listeners = nil
	t.colors = nil
}

// Advance triggers a mode advance from the current mode.
func (t *Toggler) Advance() {
	t.ch.Trigger(EventModeAdvance, Advance{From: t.state.Mode})
}

// State returns the current mode and color.
func (t *Toggler) State() State { return t.state }

// Live reports whether a color behavior is still producing values.
func (t *Toggler) Live() bool {
	return t.colors != nil && t.colors.Active() > 0
}

// SetCycle rebuilds the behaviors with a new cycle. The live behavior keeps
// its timing; the next advance uses the new one.
func (t *Toggler) SetCycle(cycle time.Duration) error {
	if cycle <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidCycle, cycle)
	}
	t.behaviors = NewBehaviors(cycle)
	return nil
}

// onModeAdvance resolves the next mode, records it, and returns the color
// behavior for the channel to subscribe in replace mode.
func (t *Toggler) onModeAdvance(e channel.Event) behavior.Behavior[any] {
	adv, ok := e.Payload.(Advance)
	if !ok {
		log.Warn(log.CatMode, "Ignoring mode advance with unexpected payload", "payload", e.Payload)
		return nil
	}

	next := Next(adv.From)
	_, span := t.tracer.Start(context.Background(), tracing.SpanAdvance,
		trace.WithAttributes(
			attribute.String(tracing.AttrModeFrom, adv.From.String()),
			attribute.String(tracing.AttrModeTo, next.String()),
		))
	defer span.End()

	t.state.Mode = next
	log.Debug(log.CatMode, "Mode advanced", "from", adv.From, "to", next)

	b, err := t.behaviors.For(next)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return behavior.Untyped(behavior.Throw[Color](err))
	}
	return behavior.Untyped(b)
}

func (t *Toggler) onColorSet(e channel.Event) {
	c, ok := e.Payload.(Color)
	if !ok {
		log.Warn(log.CatColor, "Ignoring color with unexpected payload", "payload", e.Payload)
		return
	}
	t.state.Color = c
	log.Debug(log.CatColor, "Color set", "color", c, "mode", t.state.Mode)
}

func (t *Toggler) onBehaviorFailed(e channel.Event) {
	err, _ := e.Payload.(error)
	_, span := t.tracer.Start(context.Background(), tracing.SpanBehaviorFailed,
		trace.WithAttributes(attribute.String(tracing.AttrMode, t.state.Mode.String())))
	span.RecordError(err)
	span.SetStatus(codes.Error, "color behavior failed")
	span.End()
	log.ErrorErr(log.CatColor, "Color behavior failed", err, "mode", t.state.Mode)
}
