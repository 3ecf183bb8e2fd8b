package relay

import (
	"encoding/json"
	"time"
)

// Client to server message types.
const (
	TypeAnnounce = "announce"
	TypePublish  = "publish"
	TypePing     = "ping"
)

// Server to client message types.
const (
	TypeNotify    = "notify"
	TypeAnnounced = "announced"
	TypePong      = "pong"
	TypeError     = "error"
)

// Error codes carried by TypeError messages.
const (
	CodeInvalidMessage = "INVALID_MESSAGE"
	CodeUnknownType    = "UNKNOWN_TYPE"
	CodeForbidden      = "FORBIDDEN"
)

// Message is the envelope of every frame on the relay socket.
type Message struct {
	Type      string          `json:"type"`
	UserID    string          `json:"user_id,omitempty"`
	To        string          `json:"to,omitempty"`
	Event     string          `json:"event,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// ErrorPayload is the payload of a TypeError message.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NotifyFrame encodes the notify message delivered to a room. event is empty
// for client publishes.
func NotifyFrame(event string, payload json.RawMessage, at time.Time) ([]byte, error) {
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}

	return json.Marshal(Message{
		Type:      TypeNotify,
		Event:     event,
		Payload:   payload,
		Timestamp: at.UnixMilli(),
	})
}

// ErrorFrame encodes a TypeError message.
func ErrorFrame(code, message string) []byte {
	payload, _ := json.Marshal(ErrorPayload{Code: code, Message: message})
	frame, _ := json.Marshal(Message{Type: TypeError, Payload: payload})

	return frame
}
