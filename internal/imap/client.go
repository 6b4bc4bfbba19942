package imap

import (
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap/client"

	"github.com/PranavAK3704/OneBox/internal/config"
)

// dialTimeout is the TCP/TLS handshake timeout for IMAP connections.
const dialTimeout = 5 * time.Second

// Connect dials the account's IMAP server and authenticates.
// useTLS false is only used against the in-process test server.
func Connect(account config.Account) (*client.Client, error) {
	dialer := &net.Dialer{
		Timeout: dialTimeout,
	}

	var c *client.Client
	var err error
	if account.UseTLS {
		c, err = client.DialWithDialerTLS(dialer, account.Addr(), nil)
	} else {
		c, err = client.DialWithDialer(dialer, account.Addr())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", account.Addr(), err)
	}

	if err := c.Login(account.Username, account.Password); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	return c, nil
}
