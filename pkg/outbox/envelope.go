package outbox

import (
	"encoding/json"
	"time"
)

// ActorRef identifies which surface produced the event.
type ActorRef struct {
	Source string `json:"source"`
	Role   string `json:"role,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
