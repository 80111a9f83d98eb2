package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Event is the unit of fan-out between server processes. Sockets for the
// two members of a room may be held by different processes, so every
// broadcast goes through the Broker rather than in-memory references.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	// From annotates relayed signaling payloads with the sender so the
	// receiving side can apply the echo guard.
	From string `json:"from,omitempty"`
}

// NewEvent marshals data into an Event. A nil payload produces an event
// with no data field.
func NewEvent(name string, data interface{}) (Event, error) {
	ev := Event{Event: name}
	if data == nil {
		return ev, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s event: %w", name, err)
	}
	ev.Data = b
	return ev, nil
}

// Broker is the process-spanning pub/sub fan-out. Room channels reach both
// members of a call; user channels reach every socket a user holds.
type Broker interface {
	PublishRoom(ctx context.Context, roomID string, ev Event) error
	PublishUser(ctx context.Context, userID string, ev Event) error

	// Subscribe* return a channel of events and a cancel func that must be
	// called to release the subscription.
	SubscribeRoom(ctx context.Context, roomID string) (<-chan Event, func(), error)
	SubscribeUser(ctx context.Context, userID string) (<-chan Event, func(), error)
}
