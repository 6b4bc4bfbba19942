package reply

import (
	"math"
	"sort"
	"strings"
	"sync"
)

// embeddingDim is the dimensionality of the local embedding space.
const embeddingDim = 384

// Embed produces a deterministic unit vector for the text. It is a cheap
// character-hash embedding, not a learned one: good enough to rank a handful
// of context documents without an external embedding service.
func Embed(text string) []float64 {
	vector := make([]float64, embeddingDim)
	words := strings.Fields(strings.ToLower(text))

	for i, word := range words {
		for j, r := range word {
			idx := (int(r) * (i + 1) * (j + 1)) % embeddingDim
			vector[idx]++
		}
	}

	var magnitude float64
	for _, v := range vector {
		magnitude += v * v
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude == 0 {
		return vector
	}
	for i := range vector {
		vector[i] /= magnitude
	}
	return vector
}

type point struct {
	text   string
	vector []float64
}

// VectorStore is an in-memory cosine-similarity store for context documents.
type VectorStore struct {
	mu     sync.RWMutex
	points []point
}

func NewVectorStore() *VectorStore {
	return &VectorStore{}
}

// Upsert embeds and stores one context document.
func (s *VectorStore) Upsert(text string) {
	vector := Embed(text)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append(s.points, point{text: text, vector: vector})
}

// Search returns up to limit stored texts ranked by cosine similarity to the
// query. Vectors are unit-length, so the dot product is the cosine.
func (s *VectorStore) Search(query string, limit int) []string {
	queryVector := Embed(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		text  string
		score float64
	}
	results := make([]scored, 0, len(s.points))
	for _, p := range s.points {
		var dot float64
		for i := range p.vector {
			dot += p.vector[i] * queryVector[i]
		}
		results = append(results, scored{text: p.text, score: dot})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if limit > len(results) {
		limit = len(results)
	}
	texts := make([]string, 0, limit)
	for _, r := range results[:limit] {
		texts = append(texts, r.text)
	}
	return texts
}
