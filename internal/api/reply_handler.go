package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// ReplyGenerator produces a suggested reply for an email.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, subject, body string) string
}

// ReplyHandler handles suggested-reply API requests.
type ReplyHandler struct {
	generator ReplyGenerator
}

// NewReplyHandler creates a new ReplyHandler instance.
func NewReplyHandler(generator ReplyGenerator) *ReplyHandler {
	return &ReplyHandler{generator: generator}
}

type replyRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SuggestReply generates a reply suggestion for the email in the request body.
func (h *ReplyHandler) SuggestReply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Subject == "" || req.Body == "" {
		WriteJSONError(w, "subject and body are required", http.StatusBadRequest)
		return
	}

	reply := h.generator.GenerateReply(ctx, req.Subject, req.Body)

	if !WriteJSONResponse(w, map[string]any{
		"success": true,
		"reply":   reply,
	}) {
		return
	}
}
