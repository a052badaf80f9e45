package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RequestError is the single failure kind the gateway reports: a transport
// error or a non-2xx response. Status is zero for transport errors.
type RequestError struct {
	Method  string
	Path    string
	Status  int
	Message string // server-supplied message, if any
	Err     error  // transport cause, if any
}

func (e *RequestError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Unauthorized reports a 401 or 403 from the backend.
func (e *RequestError) Unauthorized() bool {
	return e.Status == 401 || e.Status == 403
}

// Message converts err into text for inline display: the server's message
// when the backend sent one, otherwise fallback.
func Message(err error, fallback string) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return fallback
}

// serverMessage pulls "message" (or "error") out of an error body.
func serverMessage(body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, raw := range []json.RawMessage{payload.Message, payload.Error} {
		var s string
		if len(raw) > 0 && json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
