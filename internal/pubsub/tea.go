package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// ListenCmd creates a Bubble Tea command that waits for the next event on ch
// and returns it as a tea.Msg.
// Returns nil if the context is cancelled or the channel is closed.
func ListenCmd[T any](ctx context.Context, ch <-chan Event[T]) tea.Cmd {
	return MapCmd(ctx, ch, func(e Event[T]) tea.Msg { return e })
}

// MapCmd is ListenCmd with the event converted to a message by f, so models
// can switch on their own message types instead of Event[T].
func MapCmd[T any](ctx context.Context, ch <-chan Event[T], f func(Event[T]) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil // Channel closed
			}
			return f(event)
		}
	}
}

// ContinuousListener keeps one broker subscription alive across Bubble Tea
// updates. Call Listen again after handling each message to keep receiving.
type ContinuousListener[T any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	ch     <-chan Event[T]
	mapper func(Event[T]) tea.Msg
}

// NewContinuousListener subscribes to broker and delivers raw Event[T]
// messages. The subscription ends when ctx is cancelled or Close is called.
func NewContinuousListener[T any](ctx context.Context, broker *Broker[T]) *ContinuousListener[T] {
	return NewMappedListener(ctx, broker, func(e Event[T]) tea.Msg { return e })
}

// NewMappedListener subscribes to broker and converts each event with f.
func NewMappedListener[T any](ctx context.Context, broker *Broker[T], f func(Event[T]) tea.Msg) *ContinuousListener[T] {
	ctx, cancel := context.WithCancel(ctx)
	return &ContinuousListener[T]{
		ctx:    ctx,
		cancel: cancel,
		ch:     broker.Subscribe(ctx),
		mapper: f,
	}
}

// Listen returns a tea.Cmd that waits for the next event.
func (l *ContinuousListener[T]) Listen() tea.Cmd {
	return MapCmd(l.ctx, l.ch, l.mapper)
}

// Close ends the subscription.
func (l *ContinuousListener[T]) Close() {
	l.cancel()
}
