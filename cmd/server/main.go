package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/PranavAK3704/OneBox/internal/api"
	"github.com/PranavAK3704/OneBox/internal/classify"
	"github.com/PranavAK3704/OneBox/internal/config"
	"github.com/PranavAK3704/OneBox/internal/imap"
	"github.com/PranavAK3704/OneBox/internal/llm"
	"github.com/PranavAK3704/OneBox/internal/notify"
	"github.com/PranavAK3704/OneBox/internal/pipeline"
	"github.com/PranavAK3704/OneBox/internal/reply"
	"github.com/PranavAK3704/OneBox/internal/search"
	ws "github.com/PranavAK3704/OneBox/internal/websocket"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	store, err := search.NewStore(cfg.ElasticURL)
	if err != nil {
		log.Fatalf("Failed to create Elasticsearch client: %v", err)
	}
	if err := store.EnsureIndex(ctx); err != nil {
		// Indexing will keep failing until Elasticsearch comes up, but the
		// IMAP connections should not wait on it.
		log.Printf("Failed to ensure Elasticsearch index (continuing): %v", err)
	}

	var completer llm.Completer
	if cfg.GroqAPIKey != "" {
		completer = llm.NewClient(cfg.GroqAPIKey, cfg.GroqModel)
	} else {
		log.Printf("GROQ_API_KEY not set, falling back to keyword classification and canned replies")
	}

	classifier := classify.New(completer)
	replyGenerator := reply.NewGenerator(completer, reply.DefaultContext())

	var notifiers []pipeline.NotifySink
	if cfg.SlackWebhookURL != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(cfg.SlackWebhookURL))
	} else {
		log.Printf("SLACK_WEBHOOK_URL not set, Slack notifications disabled")
	}
	if cfg.InterestedWebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.InterestedWebhookURL))
	} else {
		log.Printf("INTERESTED_WEBHOOK_URL not set, webhook notifications disabled")
	}

	wsHub := ws.NewHub(10)
	pipe := pipeline.New(classifier, store, notifiers, wsHub)

	coordinator := imap.NewCoordinator(cfg.Accounts, cfg.WatchedFolder, pipe, imap.Options{})
	coordinator.Start(ctx)

	server := NewServer(store, replyGenerator, coordinator, wsHub)

	address := ":" + cfg.Port
	log.Printf("OneBox server starting on %s (environment: %s, accounts: %d)",
		address, cfg.Environment, len(cfg.Accounts))

	if err := http.ListenAndServe(address, server); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// NewServer creates and returns a new HTTP handler for the OneBox API server.
func NewServer(store *search.Store, replyGenerator api.ReplyGenerator, coordinator *imap.Coordinator, wsHub *ws.Hub) http.Handler {
	emailsHandler := api.NewEmailsHandler(store)
	replyHandler := api.NewReplyHandler(replyGenerator)
	healthHandler := api.NewHealthHandler(coordinator)
	wsHandler := api.NewWebSocketHandler(wsHub)

	mux := http.NewServeMux()

	mux.HandleFunc("/", handleRoot)

	mux.Handle("/api/v1/emails", http.HandlerFunc(emailsHandler.GetEmails))
	mux.Handle("/api/v1/emails/search", http.HandlerFunc(emailsHandler.SearchEmails))
	mux.Handle("/api/v1/reply", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		replyHandler.SuggestReply(w, r)
	}))
	mux.Handle("/api/v1/health", http.HandlerFunc(healthHandler.Health))
	mux.Handle("/api/v1/ws", http.HandlerFunc(wsHandler.Handle))

	return mux
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "OneBox API is running")
}
