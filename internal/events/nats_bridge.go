package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Publisher is the subset of *nats.Conn the bridge needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSBridge forwards dispatcher events to NATS subjects <prefix>.<event type>.
type NATSBridge struct {
	pub    Publisher
	prefix string
}

// ConnectNATS dials the server at url.
func ConnectNATS(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url, nats.Name(name))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return conn, nil
}

// NewNATSBridge builds a bridge over pub.
func NewNATSBridge(pub Publisher, prefix string) *NATSBridge {
	return &NATSBridge{pub: pub, prefix: prefix}
}

// Subject returns the subject an event type is published on.
func (b *NATSBridge) Subject(eventType EventType) string {
	if b.prefix == "" {
		return string(eventType)
	}
	return b.prefix + "." + string(eventType)
}

// Attach subscribes the bridge to every event type.
func (b *NATSBridge) Attach(dispatcher Dispatcher) {
	for _, eventType := range AllEventTypes {
		dispatcher.Subscribe(eventType, b.forward)
	}
}

func (b *NATSBridge) forward(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.pub.Publish(b.Subject(event.Type), data)
}
