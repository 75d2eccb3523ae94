// Package channel provides a synchronous event channel that maps triggered
// events onto handlers and time-varying behaviors.
//
// Handlers are keyed by EventType. A listener may answer an event with a
// behavior.Behavior whose values are re-triggered as new events, and its
// Mode decides what happens when a new event arrives while an earlier
// behavior is still live.
package channel

import "fmt"

// EventType identifies a kind of event.
type EventType string

// Any matches every event type when passed to Filter or Listen.
const Any EventType = "*"

// Event is a triggered occurrence with an optional payload.
type Event struct {
	Type    EventType
	Payload any
}

func (e Event) String() string {
	if e.Payload == nil {
		return string(e.Type)
	}
	return fmt.Sprintf("%s %v", e.Type, e.Payload)
}

func (t EventType) matches(other EventType) bool {
	return t == Any || t == other
}

// Mode controls how a listener treats a new event while a behavior it
// started earlier is still live.
type Mode int

const (
	// Parallel lets behaviors run concurrently.
	Parallel Mode = iota
	// Replace cancels the live behavior, then starts the new one.
	Replace
	// Ignore drops the new event.
	Ignore
	// Toggle cancels the live behavior and starts nothing.
	Toggle
	// Serial queues the new event until the live behavior completes.
	Serial
)

func (m Mode) String() string {
	switch m {
	case Parallel:
		return "parallel"
	case Replace:
		return "replace"
	case Ignore:
		return "ignore"
	case Toggle:
		return "toggle"
	case Serial:
		return "serial"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// TriggerMap names the events to trigger for what a behavior produces.
// Empty fields are not re-triggered.
type TriggerMap struct {
	Next     EventType
	Error    EventType
	Complete EventType
}

// Options configures a listener.
type Options struct {
	Trigger TriggerMap
	Mode    Mode
}
