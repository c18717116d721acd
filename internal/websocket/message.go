package websocket

import "encoding/json"

// Actions sent to clients besides the invoice events.
const (
	ActionError = "error"
	ActionPong  = "pong"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string `json:"action"`
	Payload any    `json:"payload,omitempty"`
}

// NewMessage encodes a message ready for Client.Send.
func NewMessage(action string, payload any) ([]byte, error) {
	return json.Marshal(Message{Action: action, Payload: payload})
}

// NewErrorMessage encodes an error message for a single client.
func NewErrorMessage(text string) []byte {
	// A map of strings always marshals.
	b, _ := NewMessage(ActionError, map[string]string{"message": text})
	return b
}
