// Package stream defines the live output channel of a turn and the resumable
// stream registry that lets a second request attach to it.
package stream

import (
	"context"
	"encoding/json"
)

// Event is one element of the live output channel.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event types emitted during a turn.
const (
	EventDelta      = "message.delta"
	EventToolCall   = "tool.call"
	EventToolResult = "tool.result"
	EventData       = "data"
	EventAppend     = "append-message"
	EventFinish     = "stream.finish"
	EventError      = "stream.error"
)

// NewEvent marshals payload into an event. Marshal failures produce an event
// with empty data rather than an error; payloads are service-owned types.
func NewEvent(eventType string, payload interface{}) Event {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{Type: eventType}
	}
	return Event{Type: eventType, Data: data}
}

// Writer is the producer side of a live output channel.
type Writer interface {
	Send(event Event)
}

// Producer publishes a turn's events to registry subscribers. Close signals
// end-of-stream and concludes the stream; it is always called, on success and
// on failure alike.
type Producer interface {
	Writer
	Close()
}

// Subscription is a live tap on a stream: it observes events from the point of
// attachment forward. Events is closed when the producer concludes.
type Subscription interface {
	Events() <-chan Event
	Close()
}

// Registry associates stream identifiers with live event streams, possibly
// across process instances.
type Registry interface {
	// NewProducer registers streamID as live and returns its publisher.
	NewProducer(ctx context.Context, streamID string) (Producer, error)

	// Attach subscribes to a live stream. It returns (nil, nil) when streamID
	// is not live (unknown or already concluded).
	Attach(ctx context.Context, streamID string) (Subscription, error)
}

// Handle is a tagged registry reference: either a usable registry or the
// explicit unavailable state. It replaces a nullable global.
type Handle struct {
	registry Registry
}

// Available wraps a working registry.
func Available(r Registry) Handle {
	return Handle{registry: r}
}

// Unavailable is the degraded state: turns stream directly and the resume path
// answers no-content.
func Unavailable() Handle {
	return Handle{}
}

// Ok reports whether a registry is available.
func (h Handle) Ok() bool {
	return h.registry != nil
}

// Registry returns the wrapped registry; only valid when Ok.
func (h Handle) Registry() Registry {
	return h.registry
}
