package server

import (
	"encoding/json"
	"errors"
	"net/http"

	contractx "github.com/idurar/emily-assistant/agent/contract"
)

type handlers struct {
	assistant      MessageHandler
	uploadDir      string
	maxUploadBytes int64
}

type chatRequest struct {
	Message string              `json:"message"`
	History []contractx.Message `json:"history"`
}

const (
	chatSuccessMessage = "Successfully retrieved response from Emily"

	msgInvalidRequest = "Invalid chat request"
	msgMisconfigured  = "Emily is not configured: the assistant credential is missing or invalid"
	msgChatFailed     = "An error occurred while communicating with Emily"
)

func (h *handlers) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest, err)
		return
	}

	reply, err := h.assistant.HandleMessage(r.Context(), req.Message, req.History)
	if err != nil {
		status, message := classifyChatError(err)
		writeError(w, status, message, err)
		return
	}

	writeSuccess(w, reply, chatSuccessMessage)
}

// classifyChatError maps the assistant error taxonomy onto the envelope.
// Configuration problems get a distinct, user-legible message from
// transient upstream ones.
func classifyChatError(err error) (int, string) {
	switch {
	case errors.Is(err, contractx.ErrValidation):
		return http.StatusBadRequest, msgInvalidRequest
	case errors.Is(err, contractx.ErrConfiguration):
		return http.StatusInternalServerError, msgMisconfigured
	default:
		return http.StatusInternalServerError, msgChatFailed
	}
}
