package api

import (
	"net/http"
	"time"
)

// StatusReporter reports per-account connection states.
type StatusReporter interface {
	Status() map[string]string
}

// HealthHandler handles the /api/v1/health endpoint.
type HealthHandler struct {
	reporter StatusReporter
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(reporter StatusReporter) *HealthHandler {
	return &HealthHandler{reporter: reporter}
}

// Health reports overall service health and the state of every IMAP account
// connection.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	accounts := map[string]string{}
	if h.reporter != nil {
		accounts = h.reporter.Status()
	}

	if !WriteJSONResponse(w, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"accounts":  accounts,
	}) {
		return
	}
}
