package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/google"
)

// Client wraps the Gmail service.
type Client struct {
	svc     *gmail.Service
	account string
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClient creates a Gmail client for the given account. Credentials come
// from the token provider, which refreshes and persists them transparently.
func NewClient(ctx context.Context, account string, provider *google.ManagerTokenProvider) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	httpClient, err := provider.HTTPClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth client for account %s: %w", account, err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{svc: svc, account: account}, nil
}

// ListMessages lists messages matching a Gmail search query.
func (c *Client) ListMessages(query string, maxResults int64) ([]MessageSummary, error) {
	if maxResults <= 0 {
		maxResults = 20
	}

	call := c.svc.Users.Messages.List("me").MaxResults(maxResults)
	if query != "" {
		call = call.Q(query)
	}

	list, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	var summaries []MessageSummary
	for _, ref := range list.Messages {
		msg, err := c.svc.Users.Messages.Get("me", ref.Id).Format("metadata").
			MetadataHeaders("From", "To", "Subject", "Date").Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", ref.Id, err)
		}
		summaries = append(summaries, toMessageSummary(msg))
	}
	return summaries, nil
}

// GetMessage retrieves a full message including its plain-text body.
func (c *Client) GetMessage(messageID string) (*Message, error) {
	msg, err := c.svc.Users.Messages.Get("me", messageID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	result := &Message{
		MessageSummary: toMessageSummary(msg),
		Body:           extractBody(msg.Payload),
	}
	return result, nil
}

// SendEmail sends a plain-text email and returns the sent message ID.
func (c *Client) SendEmail(input EmailInput) (string, error) {
	if len(input.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(input.To, ", "))
	if len(input.Cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(input.Cc, ", "))
	}
	if len(input.Bcc) > 0 {
		fmt.Fprintf(&b, "Bcc: %s\r\n", strings.Join(input.Bcc, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", input.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(input.Body)

	raw := base64.URLEncoding.EncodeToString([]byte(b.String()))
	sent, err := c.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}

// ModifyLabels adds and removes labels on a message.
func (c *Client) ModifyLabels(messageID string, addLabels, removeLabels []string) error {
	req := &gmail.ModifyMessageRequest{
		AddLabelIds:    addLabels,
		RemoveLabelIds: removeLabels,
	}
	if _, err := c.svc.Users.Messages.Modify("me", messageID, req).Do(); err != nil {
		return fmt.Errorf("failed to modify labels: %w", err)
	}
	return nil
}

// ArchiveMessage removes a message from the inbox.
func (c *Client) ArchiveMessage(messageID string) error {
	return c.ModifyLabels(messageID, nil, []string{"INBOX"})
}

// toMessageSummary converts a Gmail message to MessageSummary using its
// metadata headers.
func toMessageSummary(msg *gmail.Message) MessageSummary {
	summary := MessageSummary{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
		Labels:   msg.LabelIds,
	}

	if msg.InternalDate > 0 {
		summary.Date = time.UnixMilli(msg.InternalDate)
	}

	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "From":
				summary.From = h.Value
			case "To":
				summary.To = h.Value
			case "Subject":
				summary.Subject = h.Value
			}
		}
	}
	return summary
}

// extractBody walks a message payload and returns the first text/plain part,
// falling back to the top-level body.
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	if payload.MimeType == "text/plain" && payload.Body != nil && payload.Body.Data != "" {
		if body := decodeBody(payload.Body.Data); body != "" {
			return body
		}
	}

	for _, part := range payload.Parts {
		if body := extractBody(part); body != "" {
			return body
		}
	}

	if payload.Body != nil && payload.Body.Data != "" {
		return decodeBody(payload.Body.Data)
	}
	return ""
}

// decodeBody decodes base64url body data. Gmail serves it without padding,
// but padded data shows up too, so both alphabets are tried.
func decodeBody(data string) string {
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	return ""
}
