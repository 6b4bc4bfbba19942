package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type mockStatusReporter struct {
	status map[string]string
}

func (m *mockStatusReporter) Status() map[string]string {
	return m.status
}

func TestHealthHandler_Health(t *testing.T) {
	t.Run("reports account connection states", func(t *testing.T) {
		reporter := &mockStatusReporter{status: map[string]string{
			"account1": "listening",
			"account2": "reconnecting",
		}}
		handler := NewHealthHandler(reporter)

		req := httptest.NewRequest("GET", "/api/v1/health", nil)
		rr := httptest.NewRecorder()
		handler.Health(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rr.Code)
		}

		var resp struct {
			Status    string            `json:"status"`
			Timestamp string            `json:"timestamp"`
			Accounts  map[string]string `json:"accounts"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Status != "ok" {
			t.Errorf("Expected status 'ok', got '%s'", resp.Status)
		}
		if resp.Timestamp == "" {
			t.Error("Expected a timestamp")
		}
		if resp.Accounts["account1"] != "listening" {
			t.Errorf("Expected account1 'listening', got '%s'", resp.Accounts["account1"])
		}
	})

	t.Run("tolerates a nil reporter", func(t *testing.T) {
		handler := NewHealthHandler(nil)

		req := httptest.NewRequest("GET", "/api/v1/health", nil)
		rr := httptest.NewRecorder()
		handler.Health(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rr.Code)
		}
	})
}
