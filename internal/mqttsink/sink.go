package mqttsink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zjrosen/treelights/internal/channel"
	"github.com/zjrosen/treelights/internal/log"
	"github.com/zjrosen/treelights/internal/pubsub"
	"github.com/zjrosen/treelights/internal/toggler"
)

const (
	// DefaultTimeout bounds connect and publish acknowledgements.
	DefaultTimeout = 5 * time.Second
	// qos 1 so a reconnecting light still sees the latest state.
	qos = 1
)

// Payload is the JSON document published on the state topic.
type Payload struct {
	Mode  toggler.Mode  `json:"mode"`
	Color toggler.Color `json:"color"`
}

// StateTopic returns the retained topic the sink publishes to.
func StateTopic(prefix string) string {
	return prefix + "/state"
}

// Sink tracks the toggler state from channel events and publishes it.
type Sink struct {
	client    Client
	topic     string
	timeout   time.Duration
	state     toggler.State
	published int
	failed    int
}

// New creates a sink publishing on StateTopic(prefix).
func New(client Client, prefix string) *Sink {
	return &Sink{
		client:  client,
		topic:   StateTopic(prefix),
		timeout: DefaultTimeout,
		state:   toggler.State{Mode: toggler.Off, Color: toggler.ColorOff},
	}
}

// WithTimeout overrides DefaultTimeout.
func (s *Sink) WithTimeout(d time.Duration) *Sink {
	s.timeout = d
	return s
}

// Connect connects the client to the broker.
func (s *Sink) Connect() error {
	if err := wait(s.client.Connect(), s.timeout); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	log.Info(log.CatMQTT, "Connected", "topic", s.topic)
	return nil
}

// Run publishes state changes until ctx is done or events closes, then
// disconnects.
func (s *Sink) Run(ctx context.Context, events <-chan pubsub.Event[channel.Event]) {
	defer s.client.Disconnect(250)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !s.Apply(ev.Payload) {
				continue
			}
			if err := s.Publish(); err != nil {
				s.failed++
				log.ErrorErr(log.CatMQTT, "Publish failed", err, "topic", s.topic)
				continue
			}
			s.published++
		}
	}
}

// Apply folds e into the tracked state and reports whether it changed.
func (s *Sink) Apply(e channel.Event) bool {
	prev := s.state
	switch e.Type {
	case toggler.EventModeAdvance:
		adv, ok := e.Payload.(toggler.Advance)
		if !ok {
			return false
		}
		s.state.Mode = toggler.Next(adv.From)
	case toggler.EventColorSet:
		c, ok := e.Payload.(toggler.Color)
		if !ok {
			return false
		}
		s.state.Color = c
	default:
		return false
	}
	return s.state != prev
}

// Publish sends the current state as a retained message.
func (s *Sink) Publish() error {
	body, err := json.Marshal(Payload{Mode: s.state.Mode, Color: s.state.Color})
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	return wait(s.client.Publish(s.topic, qos, true, body), s.timeout)
}

// State returns the tracked state.
func (s *Sink) State() toggler.State { return s.state }

// Counts returns how many publishes succeeded and failed.
func (s *Sink) Counts() (published, failed int) {
	return s.published, s.failed
}
