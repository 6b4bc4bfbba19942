package imap

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/jhillyerd/enmime"

	"github.com/PranavAK3704/OneBox/internal/models"
)

// ParseMessage converts a fetched IMAP message into an EmailDocument. Parsing
// never fails: any shortfall in the raw message degrades to empty fields so
// the message still flows through classification and indexing.
func ParseMessage(imapMsg *imap.Message, accountID, folder string) *models.EmailDocument {
	doc := &models.EmailDocument{
		AccountID: accountID,
		Folder:    folder,
		UID:       imapMsg.Uid,
		SeqNum:    imapMsg.SeqNum,
	}

	if imapMsg.Envelope != nil {
		envelope := imapMsg.Envelope
		if len(envelope.From) > 0 {
			doc.From = formatAddress(envelope.From[0])
		}
		doc.To = strings.Join(formatAddressList(envelope.To), ", ")
		doc.Subject = envelope.Subject
		doc.Date = envelope.Date
		doc.MessageID = envelope.MessageId
	}

	if doc.Date.IsZero() {
		doc.Date = imapMsg.InternalDate
	}
	if doc.Date.IsZero() {
		doc.Date = time.Now()
	}

	// Identifier fallback chain: Message-ID header, then UID, then sequence
	// number. Guarantees a non-empty idempotency key.
	if doc.MessageID == "" {
		if imapMsg.Uid != 0 {
			doc.MessageID = strconv.FormatUint(uint64(imapMsg.Uid), 10)
		} else {
			doc.MessageID = strconv.FormatUint(uint64(imapMsg.SeqNum), 10)
		}
	}

	doc.Body = parseBody(imapMsg)

	return doc
}

// parseBody extracts a best-effort body: the plain-text part when present,
// the raw HTML part otherwise, empty string when the message has neither or
// the source cannot be parsed.
func parseBody(imapMsg *imap.Message) string {
	bodyReader := imapMsg.GetBody(bodySection)
	if bodyReader == nil {
		return ""
	}

	envelope, err := enmime.ReadEnvelope(bodyReader)
	if err != nil {
		return ""
	}

	if envelope.Text != "" {
		return envelope.Text
	}
	return envelope.HTML
}

// formatAddress formats an IMAP address to a string.
func formatAddress(address *imap.Address) string {
	if address == nil {
		return ""
	}

	if address.MailboxName == "" && address.HostName == "" {
		return ""
	}

	if address.PersonalName != "" {
		return fmt.Sprintf("%s <%s@%s>", address.PersonalName, address.MailboxName, address.HostName)
	}

	return fmt.Sprintf("%s@%s", address.MailboxName, address.HostName)
}

// formatAddressList formats a list of IMAP addresses.
func formatAddressList(addresses []*imap.Address) []string {
	result := make([]string, 0, len(addresses))
	for _, address := range addresses {
		formatted := formatAddress(address)
		if formatted != "" {
			result = append(result, formatted)
		}
	}
	return result
}
