package imap

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/emersion/go-imap"
	idle "github.com/emersion/go-imap-idle"
	"github.com/emersion/go-imap/client"

	"github.com/PranavAK3704/OneBox/internal/config"
)

// ConnectionState is the lifecycle state of one account's connection.
// Each state is owned exclusively by the account's Supervisor goroutine.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateBackfilling
	StateListening
	StateReconnecting
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateBackfilling:
		return "backfilling"
	case StateListening:
		return "listening"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Processor consumes fetched messages. Implementations must contain their own
// failures: Process never returns an error, so one bad message cannot halt
// the supervisor loop.
type Processor interface {
	Process(ctx context.Context, msg *imap.Message, accountID, folder string, live bool)
}

// Options tunes the supervisor's timing. Tests inject zero delays.
type Options struct {
	// ReconnectDelay is the fixed wait before re-dialing after any session
	// failure. Retries are unbounded: this is a long-running daemon.
	ReconnectDelay time.Duration
	// Throttle is the inter-message delay during backfill. It exists solely
	// to stay under the remote classifier's rate limit.
	Throttle time.Duration
	// BackfillWindow is how far back the initial fetch reaches.
	BackfillWindow time.Duration
	// IdlePollInterval is the polling fallback for servers without IDLE.
	IdlePollInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.ReconnectDelay == 0 {
		o.ReconnectDelay = 5 * time.Second
	}
	if o.Throttle == 0 {
		o.Throttle = 250 * time.Millisecond
	}
	if o.BackfillWindow == 0 {
		o.BackfillWindow = 30 * 24 * time.Hour
	}
	if o.IdlePollInterval == 0 {
		o.IdlePollInterval = 5 * time.Second
	}
	return o
}

// Supervisor owns the full lifecycle of one account's IMAP connection:
// connect, backfill, idle-listen, reconnect on failure. At most one live
// connection exists per account at any time.
type Supervisor struct {
	account   config.Account
	folder    string
	processor Processor
	opts      Options
	state     atomic.Int32

	// dial is stubbed by tests to simulate connection failures.
	dial func(config.Account) (*client.Client, error)
}

// NewSupervisor creates a supervisor for one account. It does not connect
// until Run is called.
func NewSupervisor(account config.Account, folder string, processor Processor, opts Options) *Supervisor {
	return &Supervisor{
		account:   account,
		folder:    folder,
		processor: processor,
		opts:      opts.withDefaults(),
		dial:      Connect,
	}
}

// AccountID returns the configured account identifier.
func (s *Supervisor) AccountID() string {
	return s.account.ID
}

// State returns the current connection state. Safe to call from any
// goroutine.
func (s *Supervisor) State() ConnectionState {
	return ConnectionState(s.state.Load())
}

func (s *Supervisor) setState(state ConnectionState) {
	s.state.Store(int32(state))
}

// Run drives the connection lifecycle until the context is canceled. Every
// session failure schedules a reconnect after a fixed delay; no session state
// survives a reconnect, so backfill runs again and the idempotent index
// upsert absorbs the duplicates.
func (s *Supervisor) Run(ctx context.Context) {
	for {
		s.setState(StateConnecting)
		err := s.runSession(ctx)

		if ctx.Err() != nil {
			s.setState(StateDisconnected)
			return
		}
		if err != nil {
			log.Printf("imap: session for %s ended: %v", s.account.ID, err)
		}

		s.setState(StateReconnecting)
		log.Printf("imap: reconnecting %s in %s", s.account.ID, s.opts.ReconnectDelay)
		select {
		case <-ctx.Done():
			s.setState(StateDisconnected)
			return
		case <-time.After(s.opts.ReconnectDelay):
		}
	}
}

// runSession performs one connect → backfill → listen cycle. It returns when
// the connection fails or the context is canceled.
func (s *Supervisor) runSession(ctx context.Context) error {
	c, err := s.dial(s.account)
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}
	defer func() {
		_ = c.Logout()
	}()
	log.Printf("imap: connected %s", s.account.ID)

	status, err := c.Select(s.folder, false)
	if err != nil {
		return fmt.Errorf("failed to select %s: %w", s.folder, err)
	}

	s.setState(StateBackfilling)
	if err := s.backfill(ctx, c); err != nil {
		return err
	}

	s.setState(StateListening)
	log.Printf("imap: %s listening for new messages on %s", s.account.ID, s.folder)
	return s.listen(ctx, c, status.Messages)
}

// backfill fetches the trailing window of historical messages and feeds them
// through the processor sequentially, in ascending fetch order. The throttle
// keeps backfill under the remote classifier's rate limit.
func (s *Supervisor) backfill(ctx context.Context, c *client.Client) error {
	cutoff := time.Now().Add(-s.opts.BackfillWindow)

	messages, err := FetchSince(c, cutoff)
	if err != nil {
		return fmt.Errorf("backfill fetch failed: %w", err)
	}
	log.Printf("imap: %s backfilling %d messages since %s", s.account.ID, len(messages), cutoff.Format(time.DateOnly))

	for i, msg := range messages {
		s.processor.Process(ctx, msg, s.account.ID, s.folder, false)

		if i < len(messages)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.opts.Throttle):
			}
		}
	}

	log.Printf("imap: %s finished backfilling %d messages", s.account.ID, len(messages))
	return nil
}

// listen holds an IDLE wait on the folder and fetches the sequence range
// (known count+1 .. new count) whenever the server reports more messages.
// IDLE must be stopped before fetching; it is restarted on each loop pass.
func (s *Supervisor) listen(ctx context.Context, c *client.Client, knownCount uint32) error {
	updates := make(chan client.Update, 64)
	c.Updates = updates
	idleClient := idle.NewClient(c)

	for {
		stop := make(chan struct{})
		done := make(chan error, 1)
		go func() {
			done <- idleClient.IdleWithFallback(stop, s.opts.IdlePollInterval)
		}()

		newCount := knownCount
		select {
		case <-ctx.Done():
			close(stop)
			<-done
			return ctx.Err()
		case err := <-done:
			if err != nil {
				return fmt.Errorf("idle failed: %w", err)
			}
			continue
		case update := <-updates:
			if mbox, ok := update.(*client.MailboxUpdate); ok && mbox.Mailbox != nil && mbox.Mailbox.Name == s.folder {
				newCount = mbox.Mailbox.Messages
			}
			close(stop)
			if err := <-done; err != nil {
				return fmt.Errorf("idle failed: %w", err)
			}
		}

		if newCount > knownCount {
			log.Printf("imap: %s fetching new messages %d:%d", s.account.ID, knownCount+1, newCount)
			messages, err := FetchRange(c, knownCount+1, newCount)
			if err != nil {
				return fmt.Errorf("failed to fetch new messages: %w", err)
			}
			for _, msg := range messages {
				s.processor.Process(ctx, msg, s.account.ID, s.folder, true)
			}
		}
		// Shrinking counts (expunge) resynchronize here as well.
		knownCount = newCount
	}
}
