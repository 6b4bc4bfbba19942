package models

import "time"

// Category is the classification assigned to an ingested email.
type Category string

const (
	CategoryInterested    Category = "Interested"
	CategoryMeetingBooked Category = "Meeting Booked"
	CategoryNotInterested Category = "Not Interested"
	CategorySpam          Category = "Spam"
	CategoryOutOfOffice   Category = "Out of Office"
)

// Categories lists every valid category in the order the classifier matches
// model responses against them.
var Categories = []Category{
	CategoryInterested,
	CategoryMeetingBooked,
	CategoryNotInterested,
	CategorySpam,
	CategoryOutOfOffice,
}

// EmailDocument is the normalized form of one ingested email. It is built by
// the parser, enriched with a category by the pipeline, and then handed to
// the index and notification sinks. JSON field names match the Elasticsearch
// mapping.
type EmailDocument struct {
	// MessageID is the Message-ID header when present, otherwise the IMAP
	// UID rendered as a string. It is the idempotency key for indexing.
	MessageID string    `json:"messageId"`
	AccountID string    `json:"accountId"`
	Folder    string    `json:"folder"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Date      time.Time `json:"date"`
	UID       uint32    `json:"uid"`
	SeqNum    uint32    `json:"-"`
	Category  Category  `json:"category"`
}
