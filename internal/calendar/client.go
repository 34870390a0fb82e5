package calendar

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/google"
)

// Client wraps the Google Calendar service.
type Client struct {
	svc     *calendar.Service
	account string
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClient creates a Calendar client for the given account. Credentials come
// from the token provider, which refreshes and persists them transparently.
func NewClient(ctx context.Context, account string, provider *google.ManagerTokenProvider) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	httpClient, err := provider.HTTPClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth client for account %s: %w", account, err)
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc, account: account}, nil
}

// ListCalendars lists the calendars on the user's calendar list.
func (c *Client) ListCalendars() ([]CalendarInfo, error) {
	list, err := c.svc.CalendarList.List().Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	var infos []CalendarInfo
	for _, entry := range list.Items {
		infos = append(infos, toCalendarInfo(entry))
	}
	return infos, nil
}

// ListEvents lists events in a calendar within a time range.
func (c *Client) ListEvents(calendarID string, timeMin, timeMax time.Time, query string) ([]EventSummary, error) {
	call := c.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	if query != "" {
		call = call.Q(query)
	}

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var summaries []EventSummary
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}
	return summaries, nil
}

// GetEvent retrieves a specific event by ID.
func (c *Client) GetEvent(calendarID, eventID string) (*EventSummary, error) {
	event, err := c.svc.Events.Get(calendarID, eventID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	summary := toEventSummary(event)
	return &summary, nil
}

// CreateEvent creates a new calendar event.
func (c *Client) CreateEvent(calendarID string, input EventInput) (*EventSummary, error) {
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
	}

	setEventTimes(event, input)

	if len(input.Attendees) > 0 {
		var attendees []*calendar.EventAttendee
		for _, email := range input.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{Email: email})
		}
		event.Attendees = attendees
	}

	if len(input.Recurrence) > 0 {
		event.Recurrence = input.Recurrence
	}

	created, err := c.svc.Events.Insert(calendarID, event).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}

// UpdateEvent updates an existing calendar event. Only non-zero input fields
// are changed.
func (c *Client) UpdateEvent(calendarID, eventID string, input EventInput) (*EventSummary, error) {
	existing, err := c.svc.Events.Get(calendarID, eventID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get existing event: %w", err)
	}

	if input.Summary != "" {
		existing.Summary = input.Summary
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.Location != "" {
		existing.Location = input.Location
	}
	if !input.Start.IsZero() && !input.End.IsZero() {
		setEventTimes(existing, input)
	}
	if len(input.Attendees) > 0 {
		var attendees []*calendar.EventAttendee
		for _, email := range input.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{Email: email})
		}
		existing.Attendees = attendees
	}
	if len(input.Recurrence) > 0 {
		existing.Recurrence = input.Recurrence
	}

	updated, err := c.svc.Events.Update(calendarID, eventID, existing).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	summary := toEventSummary(updated)
	return &summary, nil
}

// DeleteEvent deletes a calendar event.
func (c *Client) DeleteEvent(calendarID, eventID string) error {
	if err := c.svc.Events.Delete(calendarID, eventID).Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// setEventTimes applies the input start/end to the event. All-day events use
// Date instead of DateTime.
func setEventTimes(event *calendar.Event, input EventInput) {
	if input.AllDay {
		event.Start = &calendar.EventDateTime{Date: input.Start.Format("2006-01-02")}
		event.End = &calendar.EventDateTime{Date: input.End.Format("2006-01-02")}
		return
	}

	tz := input.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	event.Start = &calendar.EventDateTime{
		DateTime: input.Start.Format(time.RFC3339),
		TimeZone: tz,
	}
	event.End = &calendar.EventDateTime{
		DateTime: input.End.Format(time.RFC3339),
		TimeZone: tz,
	}
}
