package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PranavAK3704/OneBox/internal/models"
)

type mockEmailStore struct {
	listResult   []*models.EmailDocument
	listErr      error
	searchResult []*models.EmailDocument
	searchErr    error

	listAccountID string
	listFolder    string
	listCategory  string
	searchQuery   string
}

func (m *mockEmailStore) List(ctx context.Context, accountID, folder, category string) ([]*models.EmailDocument, error) {
	m.listAccountID = accountID
	m.listFolder = folder
	m.listCategory = category
	return m.listResult, m.listErr
}

func (m *mockEmailStore) Search(ctx context.Context, query, accountID, folder string) ([]*models.EmailDocument, error) {
	m.searchQuery = query
	return m.searchResult, m.searchErr
}

var _ EmailStore = (*mockEmailStore)(nil)

type emailsResponse struct {
	Success bool                    `json:"success"`
	Count   int                     `json:"count"`
	Emails  []*models.EmailDocument `json:"emails"`
}

func TestEmailsHandler_GetEmails(t *testing.T) {
	t.Run("returns emails with filters applied", func(t *testing.T) {
		store := &mockEmailStore{
			listResult: []*models.EmailDocument{
				{MessageID: "<a@example.com>", Category: models.CategoryInterested},
			},
		}
		handler := NewEmailsHandler(store)

		req := httptest.NewRequest("GET", "/api/v1/emails?accountId=account1&folder=INBOX&category=Interested", nil)
		rr := httptest.NewRecorder()
		handler.GetEmails(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rr.Code)
		}
		if store.listAccountID != "account1" {
			t.Errorf("Expected accountId 'account1', got '%s'", store.listAccountID)
		}
		if store.listFolder != "INBOX" {
			t.Errorf("Expected folder 'INBOX', got '%s'", store.listFolder)
		}
		if store.listCategory != "Interested" {
			t.Errorf("Expected category 'Interested', got '%s'", store.listCategory)
		}

		var resp emailsResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if !resp.Success {
			t.Error("Expected success true")
		}
		if resp.Count != 1 {
			t.Errorf("Expected count 1, got %d", resp.Count)
		}
	})

	t.Run("returns empty list rather than null", func(t *testing.T) {
		handler := NewEmailsHandler(&mockEmailStore{})

		req := httptest.NewRequest("GET", "/api/v1/emails", nil)
		rr := httptest.NewRecorder()
		handler.GetEmails(rr, req)

		var resp emailsResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Emails == nil {
			t.Error("Expected emails to be an empty array, got null")
		}
	})

	t.Run("returns 500 on store error", func(t *testing.T) {
		handler := NewEmailsHandler(&mockEmailStore{listErr: errors.New("boom")})

		req := httptest.NewRequest("GET", "/api/v1/emails", nil)
		rr := httptest.NewRecorder()
		handler.GetEmails(rr, req)

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", rr.Code)
		}
	})
}

func TestEmailsHandler_SearchEmails(t *testing.T) {
	t.Run("requires q parameter", func(t *testing.T) {
		handler := NewEmailsHandler(&mockEmailStore{})

		req := httptest.NewRequest("GET", "/api/v1/emails/search", nil)
		rr := httptest.NewRecorder()
		handler.SearchEmails(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", rr.Code)
		}
	})

	t.Run("passes query to the store", func(t *testing.T) {
		store := &mockEmailStore{
			searchResult: []*models.EmailDocument{
				{MessageID: "<b@example.com>", Subject: "shipment update"},
			},
		}
		handler := NewEmailsHandler(store)

		req := httptest.NewRequest("GET", "/api/v1/emails/search?q=shipment", nil)
		rr := httptest.NewRecorder()
		handler.SearchEmails(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rr.Code)
		}
		if store.searchQuery != "shipment" {
			t.Errorf("Expected query 'shipment', got '%s'", store.searchQuery)
		}

		var resp emailsResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Count != 1 {
			t.Errorf("Expected count 1, got %d", resp.Count)
		}
	})

	t.Run("returns 500 on store error", func(t *testing.T) {
		handler := NewEmailsHandler(&mockEmailStore{searchErr: errors.New("search exploded")})

		req := httptest.NewRequest("GET", "/api/v1/emails/search?q=test", nil)
		rr := httptest.NewRecorder()
		handler.SearchEmails(rr, req)

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", rr.Code)
		}
	})
}
