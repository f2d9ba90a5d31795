package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// successEnvelope matches the JSON shape the ERP frontend expects.
type successEnvelope struct {
	Success bool   `json:"success"`
	Result  any    `json:"result"`
	Message string `json:"message"`
}

// errorEnvelope carries a user-legible message; raw error detail goes into
// the error field only, never into message.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func writeSuccess(w http.ResponseWriter, result any, message string) {
	writeJSON(w, http.StatusOK, successEnvelope{
		Success: true,
		Result:  result,
		Message: message,
	})
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	writeJSON(w, status, errorEnvelope{
		Success: false,
		Message: message,
		Error:   detail,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}
