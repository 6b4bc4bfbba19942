package imap

import (
	"testing"
	"time"

	"github.com/PranavAK3704/OneBox/internal/testutil"
)

func TestFetchSince(t *testing.T) {
	server := testutil.NewTestIMAPServer(t)
	defer server.Close()

	server.AddMessage(t, "INBOX", "<recent@example.com>", "Recent", "a@example.com", "me@example.com",
		"recent message", time.Now().Add(-time.Hour))

	client, cleanup := server.Connect(t)
	defer cleanup()

	if _, err := client.Select("INBOX", false); err != nil {
		t.Fatalf("Failed to select INBOX: %v", err)
	}

	messages, err := FetchSince(client, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("FetchSince() returned error: %v", err)
	}

	found := false
	for _, msg := range messages {
		if msg.Envelope != nil && msg.Envelope.MessageId == "<recent@example.com>" {
			found = true
			if msg.GetBody(bodySection) == nil {
				t.Error("expected raw source to be fetched")
			}
		}
	}
	if !found {
		t.Error("expected recent message in fetch result")
	}

	for i := 1; i < len(messages); i++ {
		if messages[i-1].SeqNum >= messages[i].SeqNum {
			t.Error("expected messages in ascending sequence order")
		}
	}
}

func TestFetchSinceExcludesOldMessages(t *testing.T) {
	server := testutil.NewTestIMAPServer(t)
	defer server.Close()

	server.AddMessage(t, "INBOX", "<ancient@example.com>", "Ancient", "a@example.com", "me@example.com",
		"old message", time.Now().Add(-90*24*time.Hour))

	client, cleanup := server.Connect(t)
	defer cleanup()

	if _, err := client.Select("INBOX", false); err != nil {
		t.Fatalf("Failed to select INBOX: %v", err)
	}

	messages, err := FetchSince(client, time.Now().Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("FetchSince() returned error: %v", err)
	}

	for _, msg := range messages {
		if msg.Envelope != nil && msg.Envelope.MessageId == "<ancient@example.com>" {
			t.Error("expected message older than the cutoff to be excluded")
		}
	}
}

func TestFetchRange(t *testing.T) {
	server := testutil.NewTestIMAPServer(t)
	defer server.Close()

	server.AddMessage(t, "INBOX", "<r1@example.com>", "One", "a@example.com", "me@example.com",
		"first", time.Now().Add(-2*time.Hour))
	server.AddMessage(t, "INBOX", "<r2@example.com>", "Two", "a@example.com", "me@example.com",
		"second", time.Now().Add(-time.Hour))

	client, cleanup := server.Connect(t)
	defer cleanup()

	status, err := client.Select("INBOX", false)
	if err != nil {
		t.Fatalf("Failed to select INBOX: %v", err)
	}
	if status.Messages < 2 {
		t.Fatalf("expected at least 2 messages, got %d", status.Messages)
	}

	// The last two sequence numbers are the two appended messages.
	messages, err := FetchRange(client, status.Messages-1, status.Messages)
	if err != nil {
		t.Fatalf("FetchRange() returned error: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Envelope.MessageId != "<r1@example.com>" || messages[1].Envelope.MessageId != "<r2@example.com>" {
		t.Errorf("unexpected fetch order: %s, %s", messages[0].Envelope.MessageId, messages[1].Envelope.MessageId)
	}
}

func TestFetchRangeRejectsInvalidRange(t *testing.T) {
	server := testutil.NewTestIMAPServer(t)
	defer server.Close()

	client, cleanup := server.Connect(t)
	defer cleanup()

	if _, err := FetchRange(client, 0, 1); err == nil {
		t.Error("expected error for zero lower bound")
	}
	if _, err := FetchRange(client, 5, 2); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestFetchWithNilClient(t *testing.T) {
	if _, err := FetchSince(nil, time.Now()); err == nil {
		t.Error("expected error for nil client")
	}
	if _, err := FetchRange(nil, 1, 2); err == nil {
		t.Error("expected error for nil client")
	}
}
