// Package pubsub provides a generic publish/subscribe broker used to fan
// events out of the scheduler loop to goroutines that must not block it:
// the Bubble Tea program, the event journal and the MQTT bridge.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// TriggeredEvent mirrors an event triggered on the event channel.
	TriggeredEvent EventType = "triggered"
	// LoggedEvent carries a formatted log entry.
	LoggedEvent EventType = "logged"
	// ReloadedEvent signals that a watched file changed on disk.
	ReloadedEvent EventType = "reloaded"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
