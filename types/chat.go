package types

import (
	"bytes"
	"encoding/json"
)

// ChatRequest is the body of POST /chat. Message is kept raw so the handler
// can tell a JSON string apart from numbers, objects or a missing field.
type ChatRequest struct {
	Message json.RawMessage `json:"message" swaggertype:"string" example:"hello"`
}

// Text returns the message when it is a JSON string.
func (r ChatRequest) Text() (string, bool) {
	raw := bytes.TrimSpace(r.Message)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Response string `json:"response" example:"Hi! How can I help?"`
}
