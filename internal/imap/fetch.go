package imap

import (
	"fmt"
	"sort"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// bodySection selects the full raw message source.
var bodySection = &imap.BodySectionName{}

// fetchItems requests everything one pipeline pass needs: envelope for the
// headers, UID for the identifier fallback, internal date, and the raw source.
var fetchItems = []imap.FetchItem{
	imap.FetchEnvelope,
	imap.FetchUid,
	imap.FetchInternalDate,
	bodySection.FetchItem(),
}

// FetchSince fetches every message in the selected folder with a date on or
// after cutoff, in ascending sequence order.
func FetchSince(c *client.Client, cutoff time.Time) ([]*imap.Message, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = cutoff

	seqNums, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search since %s: %w", cutoff.Format(time.DateOnly), err)
	}

	if len(seqNums) == 0 {
		return nil, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)

	return fetchMessages(c, seqSet, len(seqNums))
}

// FetchRange fetches messages with sequence numbers in [lo, hi], ascending.
// The Listening state uses it to fetch newly arrived messages.
func FetchRange(c *client.Client, lo, hi uint32) ([]*imap.Message, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if lo == 0 || hi < lo {
		return nil, fmt.Errorf("invalid sequence range %d:%d", lo, hi)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddRange(lo, hi)

	return fetchMessages(c, seqSet, int(hi-lo+1))
}

func fetchMessages(c *client.Client, seqSet *imap.SeqSet, sizeHint int) ([]*imap.Message, error) {
	messages := make(chan *imap.Message, sizeHint)
	done := make(chan error, 1)

	go func() {
		done <- c.Fetch(seqSet, fetchItems, messages)
	}()

	var result []*imap.Message
	for msg := range messages {
		result = append(result, msg)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	// Fetch responses are not guaranteed to arrive in sequence order.
	sort.Slice(result, func(i, j int) bool {
		return result[i].SeqNum < result[j].SeqNum
	})

	return result, nil
}
