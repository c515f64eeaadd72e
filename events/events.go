package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TypeGigAllocated names the event emitted after a provider is allocated to a gig.
const TypeGigAllocated = "gig.allocated"

// GigAllocated is emitted once per successful allocation.
type GigAllocated struct {
	GigID       uint      `json:"gig_id"`
	ClientID    uint      `json:"client_id"`
	ProviderID  uint      `json:"provider_id"`
	AllocatedAt time.Time `json:"allocated_at"`
}

// Publisher hands events to whoever listens. Publishing never waits for
// subscribers to finish handling the event.
type Publisher interface {
	PublishGigAllocated(ctx context.Context, event GigAllocated) error
}

// Handler reacts to an allocation. Errors are logged by the dispatcher.
type Handler func(ctx context.Context, event GigAllocated) error

// envelope is the wire form shared by publishers and subscribers.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func encode(event GigAllocated) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: TypeGigAllocated, Data: data})
}

// decode returns ok=false for envelopes of other types.
func decode(payload []byte) (GigAllocated, bool, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return GigAllocated{}, false, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type != TypeGigAllocated {
		return GigAllocated{}, false, nil
	}

	var event GigAllocated
	if err := json.Unmarshal(env.Data, &event); err != nil {
		return GigAllocated{}, false, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return event, true, nil
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishGigAllocated(context.Context, GigAllocated) error { return nil }
