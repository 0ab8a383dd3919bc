package realtime

import (
	"encoding/json"
)

// Event types pushed to subscribers
const (
	EventVoteCast         = "vote_cast"
	EventSessionClosed    = "session_closed"
	EventSessionCancelled = "session_cancelled"
	EventDenunciaDecidida = "denuncia_decidida"
)

// Event is one realtime notification, keyed by the session (or denuncia)
// it concerns.
type Event struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewEvent marshals the payload into an Event. A payload that cannot be
// marshalled is reduced to an empty one; notification is best effort.
func NewEvent(eventType, sessionID string, payload interface{}) Event {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = nil
	}
	return Event{Type: eventType, SessionID: sessionID, Payload: raw}
}

// subscribeRequest is what a websocket client sends to follow or drop a session
type subscribeRequest struct {
	Action    string `json:"action"` // "subscribe" | "unsubscribe"
	SessionID string `json:"session_id"`
}
