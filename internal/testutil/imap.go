package testutil

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/backend/memory"
	imapclient "github.com/emersion/go-imap/client"
	"github.com/emersion/go-imap/server"

	"github.com/PranavAK3704/OneBox/internal/config"
)

// TestIMAPServer is an in-process IMAP server backed by an in-memory store.
// The memory backend creates a default user with username "username" and
// password "password".
type TestIMAPServer struct {
	Server  *server.Server
	Address string
	Backend *memory.Backend
}

// NewTestIMAPServer starts a test IMAP server on a random local port.
func NewTestIMAPServer(t *testing.T) *TestIMAPServer {
	t.Helper()

	be := memory.New()

	s := server.New(be)
	s.AllowInsecureAuth = true

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	go func() {
		if err := s.Serve(listener); err != nil {
			t.Logf("IMAP server error: %v", err)
		}
	}()

	// Give the server time to start accepting.
	time.Sleep(100 * time.Millisecond)

	return &TestIMAPServer{
		Server:  s,
		Address: listener.Addr().String(),
		Backend: be,
	}
}

// Close shuts down the test IMAP server.
func (s *TestIMAPServer) Close() {
	_ = s.Server.Close()
}

// Account returns an ingestion account config pointing at the test server.
func (s *TestIMAPServer) Account(t *testing.T, id string) config.Account {
	t.Helper()

	host, portText, err := net.SplitHostPort(s.Address)
	if err != nil {
		t.Fatalf("Failed to split server address: %v", err)
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		t.Fatalf("Failed to parse server port: %v", err)
	}

	return config.Account{
		ID:       id,
		Host:     host,
		Port:     port,
		UseTLS:   false,
		Username: "username",
		Password: "password",
	}
}

// Connect creates a logged-in IMAP client connection to the test server.
func (s *TestIMAPServer) Connect(t *testing.T) (*imapclient.Client, func()) {
	t.Helper()

	client, err := imapclient.Dial(s.Address)
	if err != nil {
		t.Fatalf("Failed to connect to test server: %v", err)
	}

	if err := client.Login("username", "password"); err != nil {
		_ = client.Logout()
		t.Fatalf("Failed to login: %v", err)
	}

	cleanup := func() {
		_ = client.Logout()
	}

	return client, cleanup
}

// AddMessage appends a plain-text message to the folder with the given
// internal date and returns its UID.
func (s *TestIMAPServer) AddMessage(t *testing.T, folderName, messageID, subject, from, to, body string, date time.Time) uint32 {
	t.Helper()

	client, cleanup := s.Connect(t)
	defer cleanup()

	if _, err := client.Select(folderName, false); err != nil {
		t.Fatalf("Failed to select folder: %v", err)
	}

	raw := fmt.Sprintf("Message-ID: %s\r\nDate: %s\r\nFrom: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		messageID, date.Format(time.RFC1123Z), from, to, subject, body)

	if err := client.Append(folderName, []string{imap.SeenFlag}, date, strings.NewReader(raw)); err != nil {
		t.Fatalf("Failed to append message: %v", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Header.Add("Message-ID", messageID)
	uids, err := client.UidSearch(criteria)
	if err != nil {
		t.Fatalf("Failed to search for message: %v", err)
	}
	if len(uids) == 0 {
		t.Fatal("Message not found after append")
	}

	return uids[0]
}
