// Package mqttsink mirrors the lights' state to an MQTT broker so physical
// lights can follow the terminal.
package mqttsink

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ErrTimeout is returned when the broker does not acknowledge in time.
var ErrTimeout = errors.New("mqtt: timed out waiting for broker")

// Client is the part of mqtt.Client the sink uses.
type Client interface {
	Connect() mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Options describes how to reach the broker.
type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Timeout  time.Duration
}

// NewClient builds a paho client for opts. It does not connect.
func NewClient(opts Options) Client {
	o := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if opts.Username != "" {
		o.SetUsername(opts.Username)
		o.SetPassword(opts.Password)
	}
	if opts.Timeout > 0 {
		o.SetConnectTimeout(opts.Timeout)
	}
	return mqtt.NewClient(o)
}

// wait blocks until tok completes or timeout passes.
func wait(tok mqtt.Token, timeout time.Duration) error {
	if !tok.WaitTimeout(timeout) {
		return ErrTimeout
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	return nil
}
