package api

import (
	"context"
	"log"
	"net/http"

	"github.com/PranavAK3704/OneBox/internal/models"
)

// EmailStore is the subset of the search store the email handlers need.
type EmailStore interface {
	List(ctx context.Context, accountID, folder, category string) ([]*models.EmailDocument, error)
	Search(ctx context.Context, query, accountID, folder string) ([]*models.EmailDocument, error)
}

// EmailsHandler handles email listing and search API requests.
type EmailsHandler struct {
	store EmailStore
}

// NewEmailsHandler creates a new EmailsHandler instance.
func NewEmailsHandler(store EmailStore) *EmailsHandler {
	return &EmailsHandler{store: store}
}

// GetEmails returns indexed emails, optionally filtered by accountId, folder
// and category query parameters.
func (h *EmailsHandler) GetEmails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := r.URL.Query().Get("accountId")
	folder := r.URL.Query().Get("folder")
	category := r.URL.Query().Get("category")

	emails, err := h.store.List(ctx, accountID, folder, category)
	if err != nil {
		log.Printf("EmailsHandler: Failed to list emails: %v", err)
		WriteJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if !WriteJSONResponse(w, buildEmailsResponse(emails)) {
		return
	}
}

// SearchEmails runs a full-text search over the indexed emails. The q query
// parameter is required; accountId and folder narrow the result set.
func (h *EmailsHandler) SearchEmails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	if query == "" {
		WriteJSONError(w, "q query parameter is required", http.StatusBadRequest)
		return
	}

	accountID := r.URL.Query().Get("accountId")
	folder := r.URL.Query().Get("folder")

	emails, err := h.store.Search(ctx, query, accountID, folder)
	if err != nil {
		log.Printf("EmailsHandler: Failed to search emails: %v", err)
		WriteJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if !WriteJSONResponse(w, buildEmailsResponse(emails)) {
		return
	}
}

// buildEmailsResponse builds the shared list/search response structure.
func buildEmailsResponse(emails []*models.EmailDocument) map[string]any {
	if emails == nil {
		emails = []*models.EmailDocument{}
	}
	return map[string]any{
		"success": true,
		"count":   len(emails),
		"emails":  emails,
	}
}
