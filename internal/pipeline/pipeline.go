// Package pipeline runs the per-message processing sequence shared by the
// backfill and live paths: parse, classify, persist, notify. Every stage is
// fault-contained so one bad message never halts a supervisor loop.
package pipeline

import (
	"context"
	"encoding/json"
	"log"
	"time"

	goimap "github.com/emersion/go-imap"

	"github.com/PranavAK3704/OneBox/internal/classify"
	"github.com/PranavAK3704/OneBox/internal/imap"
	"github.com/PranavAK3704/OneBox/internal/models"
)

// remoteClassificationWindow is the recency cutoff for the remote-first
// classifier path. Older backfill mail takes the deterministic path directly,
// bounding remote-API spend; live arrivals always get the remote-first path.
const remoteClassificationWindow = 24 * time.Hour

// IndexSink persists documents keyed by MessageID. Upsert semantics:
// re-processing the same message must not create a duplicate entry.
type IndexSink interface {
	Upsert(ctx context.Context, doc *models.EmailDocument) error
}

// NotifySink delivers a notification for one document. Fire-and-forget from
// the pipeline's perspective.
type NotifySink interface {
	Send(ctx context.Context, doc *models.EmailDocument) error
}

// EventPublisher broadcasts ingestion events to connected UI clients.
type EventPublisher interface {
	Broadcast(message []byte)
}

// Pipeline processes one message at a time. It is safe for concurrent use by
// independent account supervisors: all mutable state lives in the sinks,
// which are stateless request/response clients.
type Pipeline struct {
	classifier *classify.Classifier
	index      IndexSink
	notifiers  []NotifySink
	events     EventPublisher

	// now is overridden in tests to pin the recency window.
	now func() time.Time
}

// New creates a pipeline. index and events may be nil; notifiers may be
// empty. Absent sinks are skipped silently.
func New(classifier *classify.Classifier, index IndexSink, notifiers []NotifySink, events EventPublisher) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		index:      index,
		notifiers:  notifiers,
		events:     events,
		now:        time.Now,
	}
}

// Process runs one message through parse → classify → persist → notify.
// It never returns an error: sink failures are logged and swallowed, and a
// message that fails to index is simply not searchable.
func (p *Pipeline) Process(ctx context.Context, msg *goimap.Message, accountID, folder string, live bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pipeline: recovered from panic while processing message for %s: %v", accountID, r)
		}
	}()

	if msg == nil {
		return
	}

	doc := imap.ParseMessage(msg, accountID, folder)
	doc.Category = p.classify(ctx, doc, live)
	log.Printf("pipeline: %s classified %q as %s", accountID, truncate(doc.Subject, 50), doc.Category)

	if p.index != nil {
		if err := p.index.Upsert(ctx, doc); err != nil {
			log.Printf("pipeline: failed to index message %s: %v", doc.MessageID, err)
		}
	}

	if doc.Category == models.CategoryInterested {
		for _, notifier := range p.notifiers {
			if err := notifier.Send(ctx, doc); err != nil {
				log.Printf("pipeline: notification failed for message %s: %v", doc.MessageID, err)
			}
		}
	}

	p.publishEvent(doc)
}

// classify picks remote-vs-fallback based on recency: a live event or a date
// within the last 24 hours takes the remote-first path, everything else goes
// straight to the keyword classifier.
func (p *Pipeline) classify(ctx context.Context, doc *models.EmailDocument, live bool) models.Category {
	if live || p.now().Sub(doc.Date) <= remoteClassificationWindow {
		return p.classifier.Classify(ctx, doc.Subject, doc.Body)
	}
	return classify.KeywordClassify(doc.Subject, doc.Body)
}

// publishEvent broadcasts an ingestion event to the websocket hub.
func (p *Pipeline) publishEvent(doc *models.EmailDocument) {
	if p.events == nil {
		return
	}

	event := struct {
		Type      string          `json:"type"`
		AccountID string          `json:"accountId"`
		Folder    string          `json:"folder"`
		Subject   string          `json:"subject"`
		Category  models.Category `json:"category"`
	}{
		Type:      "email_ingested",
		AccountID: doc.AccountID,
		Folder:    doc.Folder,
		Subject:   doc.Subject,
		Category:  doc.Category,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("pipeline: failed to marshal ingestion event: %v", err)
		return
	}
	p.events.Broadcast(payload)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

var _ imap.Processor = (*Pipeline)(nil)
