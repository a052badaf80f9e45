package portaltest

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// respondJSON writes a success or informational response using the common envelope.
func (s *Server) respondJSON(w http.ResponseWriter, status int, message string, data any) {
	s.write(w, status, Envelope{Code: status, Message: message, Data: data})
}

// respondError writes an error response with the shared envelope structure.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.write(w, status, Envelope{Code: status, Message: message})
}

// respondKeyed writes {resource: data} without the envelope, the shape
// some list endpoints use.
func (s *Server) respondKeyed(w http.ResponseWriter, resource string, data any) {
	s.write(w, http.StatusOK, map[string]any{resource: data})
}

func (s *Server) write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode payload failed", slog.String("error", err.Error()))
	}
}
