// Package reply generates suggested email replies. Context documents are
// retrieved from a local vector store and folded into a completion prompt;
// when no remote model is available a canned courteous reply is returned, so
// the HTTP caller always gets a usable answer.
package reply

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/PranavAK3704/OneBox/internal/llm"
)

const (
	systemPrompt   = "You are a helpful professional email assistant."
	retrievalLimit = 3
	maxTokens      = 200
	temperature    = 0.7
	fallbackReply  = "Thank you for the email! I will get back to you shortly."
)

// ContextDocument is one piece of outreach context seeded into the vector
// store at startup.
type ContextDocument struct {
	ID   int
	Text string
	Type string
}

// DefaultContext returns the outreach context used when no custom context is
// configured.
func DefaultContext() []ContextDocument {
	return []ContextDocument{
		{ID: 1, Text: "I am applying for software engineering positions. I have experience in backend development, distributed systems and Go.", Type: "background"},
		{ID: 2, Text: "If someone is interested in my application, I should share my calendar booking link so they can pick a slot.", Type: "action"},
		{ID: 3, Text: "My availability is weekdays 10 AM - 6 PM. I prefer video calls via Google Meet or Zoom.", Type: "availability"},
		{ID: 4, Text: "My portfolio and open-source work are linked from my profile; I enjoy building scalable automation systems.", Type: "portfolio"},
		{ID: 5, Text: "For salary expectations, mention that I'm looking for competitive compensation based on role and experience.", Type: "negotiation"},
	}
}

// Generator produces suggested replies from retrieved context.
type Generator struct {
	completer llm.Completer
	store     *VectorStore
}

// NewGenerator seeds the vector store with the given context documents.
// A nil completer puts the generator in fallback-only mode.
func NewGenerator(completer llm.Completer, contextDocs []ContextDocument) *Generator {
	store := NewVectorStore()
	for _, doc := range contextDocs {
		store.Upsert(doc.Text)
	}
	return &Generator{completer: completer, store: store}
}

// GenerateReply produces a short reply for the email. It never fails: any
// completion error degrades to the canned fallback reply.
func (g *Generator) GenerateReply(ctx context.Context, subject, body string) string {
	if g.completer == nil {
		return fallbackReply
	}

	retrieved := g.store.Search(subject+" "+body, retrievalLimit)
	prompt := buildPrompt(strings.Join(retrieved, "\n\n"), subject, body)

	text, err := g.completer.Complete(ctx, systemPrompt, prompt, maxTokens, temperature)
	if err != nil {
		log.Printf("reply: generation failed, returning fallback: %v", err)
		return fallbackReply
	}
	return text
}

func buildPrompt(contextText, subject, body string) string {
	return fmt.Sprintf(`You are replying to an email. Use ONLY the context below to craft a concise, friendly, 2-3 sentence reply.

CONTEXT:
%s

EMAIL:
Subject: %s
Body: %s

Reply professionally and include relevant links if needed.

Reply:`, contextText, subject, body)
}
