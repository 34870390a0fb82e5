package gmail

import (
	"time"
)

// MessageSummary represents a simplified Gmail message for listing.
type MessageSummary struct {
	ID       string
	ThreadID string
	From     string
	To       string
	Subject  string
	Snippet  string
	Date     time.Time
	Labels   []string
}

// Message represents a full Gmail message including its body.
type Message struct {
	MessageSummary
	Body string
}

// EmailInput represents the input for sending an email.
type EmailInput struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
}
