// Package search persists ingested emails to Elasticsearch and serves the
// query API. Documents are indexed by Message-ID, so re-processing the same
// message overwrites rather than duplicates.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"github.com/PranavAK3704/OneBox/internal/models"
)

// IndexName is the Elasticsearch index holding every ingested email.
const IndexName = "emails"

const mapping = `{
	"mappings": {
		"properties": {
			"messageId": {"type": "keyword"},
			"accountId": {"type": "keyword"},
			"folder":    {"type": "keyword"},
			"from":      {"type": "text"},
			"to":        {"type": "text"},
			"subject":   {"type": "text"},
			"body":      {"type": "text"},
			"category":  {"type": "keyword"},
			"date":      {"type": "date"},
			"uid":       {"type": "long"}
		}
	}
}`

// Store wraps the Elasticsearch client used by the pipeline's index sink and
// the query API. Safe for concurrent use by independent account workers.
type Store struct {
	es *elasticsearch.Client
}

// NewStore creates a store talking to the given Elasticsearch node.
func NewStore(url string) (*Store, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &Store{es: es}, nil
}

// EnsureIndex creates the emails index with its mapping if it does not exist.
func (s *Store) EnsureIndex(ctx context.Context) error {
	res, err := s.es.Indices.Exists([]string{IndexName}, s.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("unexpected status checking index: %s", res.Status())
	}

	createRes, err := s.es.Indices.Create(
		IndexName,
		s.es.Indices.Create.WithContext(ctx),
		s.es.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer func() {
		_ = createRes.Body.Close()
	}()

	if createRes.IsError() {
		return fmt.Errorf("index creation failed: %s", createRes.Status())
	}
	return nil
}

// Upsert indexes a document keyed by its MessageID.
func (s *Store) Upsert(ctx context.Context, doc *models.EmailDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	res, err := s.es.Index(
		IndexName,
		bytes.NewReader(body),
		s.es.Index.WithDocumentID(doc.MessageID),
		s.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index request failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return fmt.Errorf("index request returned %s", res.Status())
	}
	return nil
}

// Search runs a full-text query over subject (boosted), body, from and to,
// optionally narrowed to one account and folder. Newest first.
func (s *Store) Search(ctx context.Context, query, accountID, folder string) ([]*models.EmailDocument, error) {
	must := []map[string]any{
		{"multi_match": map[string]any{
			"query":  query,
			"fields": []string{"subject^2", "body", "from", "to"},
		}},
	}
	if accountID != "" {
		must = append(must, map[string]any{"term": map[string]any{"accountId": accountID}})
	}
	if folder != "" {
		must = append(must, map[string]any{"term": map[string]any{"folder": folder}})
	}

	return s.runQuery(ctx, map[string]any{
		"query": map[string]any{"bool": map[string]any{"must": must}},
		"size":  100,
		"sort":  []map[string]any{{"date": "desc"}},
	})
}

// List returns emails filtered by any combination of account, folder and
// category. Newest first.
func (s *Store) List(ctx context.Context, accountID, folder, category string) ([]*models.EmailDocument, error) {
	var filter []map[string]any
	if accountID != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"accountId": accountID}})
	}
	if folder != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"folder": folder}})
	}
	if category != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"category": category}})
	}

	query := map[string]any{"match_all": map[string]any{}}
	if len(filter) > 0 {
		query = map[string]any{"bool": map[string]any{"filter": filter}}
	}

	return s.runQuery(ctx, map[string]any{
		"query": query,
		"size":  1000,
		"sort":  []map[string]any{{"date": "desc"}},
	})
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.EmailDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *Store) runQuery(ctx context.Context, body map[string]any) ([]*models.EmailDocument, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(IndexName),
		s.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return nil, fmt.Errorf("search request returned %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	documents := make([]*models.EmailDocument, 0, len(parsed.Hits.Hits))
	for i := range parsed.Hits.Hits {
		documents = append(documents, &parsed.Hits.Hits[i].Source)
	}
	return documents, nil
}
