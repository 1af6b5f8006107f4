package domain

import "encoding/json"

// Event kinds pushed to realtime observers.
const (
	EventPostCreated = "post.created"
	EventPostUpdated = "post.updated"
	EventPostDeleted = "post.deleted"
)

// Event is a post-commit change notification. Payload is pre-encoded so the
// same bytes can cross process boundaries unchanged.
type Event struct {
	Kind    string          `json:"eventKind"`
	Payload json.RawMessage `json:"payload"`
}

// NewEvent encodes payload into an Event of the given kind.
func NewEvent(kind string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: kind, Payload: raw}, nil
}
