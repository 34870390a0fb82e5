package calendar_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/calendar"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/google"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/server"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/tools/common"
)

// getCalendarClient retrieves or creates a calendar client for the specified account
func getCalendarClient(account string, sc *server.ServerContext) (*calendar.Client, error) {
	if !sc.HasCredentials(account) {
		return nil, errors.New(google.AuthRequiredMessage(account))
	}
	client, err := sc.CalendarClientForAccount(account)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar client for account %s: %w", account, err)
	}
	return client, nil
}

// RegisterCalendarTools registers all Calendar-related tools with the MCP server
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listCalendarsTool := mcp.NewTool("calendar_list_calendars",
		mcp.WithDescription("List all calendars accessible to the authenticated user"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(listCalendarsTool, common.InstrumentedToolHandlerWithService("calendar_list_calendars", "calendar", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListCalendars(ctx, request, sc)
		}))

	listEventsTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List/search calendar events within a time range"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start time for the range (RFC3339 format, e.g., '2026-01-01T00:00:00Z')"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End time for the range (RFC3339 format, e.g., '2026-01-31T23:59:59Z')"),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query to filter events"),
		),
	)

	s.AddTool(listEventsTool, common.InstrumentedToolHandlerWithService("calendar_list_events", "calendar", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	getEventTool := mcp.NewTool("calendar_get_event",
		mcp.WithDescription("Get details of a specific calendar event"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to retrieve"),
		),
	)

	s.AddTool(getEventTool, common.InstrumentedToolHandlerWithService("calendar_get_event", "calendar", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEvent(ctx, request, sc)
		}))

	createEventTool := mcp.NewTool("calendar_create_event",
		mcp.WithDescription("Create a new calendar event (supports all-day and recurring events)"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title/summary"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start time (RFC3339 format, e.g., '2026-01-15T14:00:00Z')"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("End time (RFC3339 format, e.g., '2026-01-15T15:00:00Z')"),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone (e.g., 'America/New_York'). Defaults to UTC."),
		),
		mcp.WithString("attendees",
			mcp.Description("Comma-separated list of attendee email addresses"),
		),
		mcp.WithString("recurrence",
			mcp.Description("Recurrence rule (e.g., 'RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR')"),
		),
		mcp.WithBoolean("allDay",
			mcp.Description("Create as all-day event (ignores time portion of start/end)"),
		),
	)

	s.AddTool(createEventTool, common.InstrumentedToolHandlerWithService("calendar_create_event", "calendar", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	if !readOnly {
		updateEventTool := mcp.NewTool("calendar_update_event",
			mcp.WithDescription("Update an existing calendar event"),
			mcp.WithString("account",
				mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
			),
			mcp.WithString("calendarId",
				mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
			),
			mcp.WithString("eventId",
				mcp.Required(),
				mcp.Description("The ID of the event to update"),
			),
			mcp.WithString("summary",
				mcp.Description("Event title/summary"),
			),
			mcp.WithString("description",
				mcp.Description("Event description"),
			),
			mcp.WithString("location",
				mcp.Description("Event location"),
			),
			mcp.WithString("start",
				mcp.Description("Start time (RFC3339 format)"),
			),
			mcp.WithString("end",
				mcp.Description("End time (RFC3339 format)"),
			),
			mcp.WithString("timeZone",
				mcp.Description("Time zone (e.g., 'America/New_York')"),
			),
			mcp.WithString("attendees",
				mcp.Description("Comma-separated list of attendee email addresses"),
			),
		)

		s.AddTool(updateEventTool, common.InstrumentedToolHandlerWithService("calendar_update_event", "calendar", "update", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleUpdateEvent(ctx, request, sc)
			}))

		deleteEventTool := mcp.NewTool("calendar_delete_event",
			mcp.WithDescription("Delete a calendar event"),
			mcp.WithString("account",
				mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
			),
			mcp.WithString("calendarId",
				mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
			),
			mcp.WithString("eventId",
				mcp.Required(),
				mcp.Description("The ID of the event to delete"),
			),
		)

		s.AddTool(deleteEventTool, common.InstrumentedToolHandlerWithService("calendar_delete_event", "calendar", "delete", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleDeleteEvent(ctx, request, sc)
			}))
	}

	return nil
}

func handleListCalendars(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	calendars, err := client.ListCalendars()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list calendars: %v", err)), nil
	}

	result, _ := json.MarshalIndent(calendars, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	calendarID := "primary"
	if calVal, ok := args["calendarId"].(string); ok && calVal != "" {
		calendarID = calVal
	}

	timeMin, err := parseRequiredTime(args, "timeMin")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := parseRequiredTime(args, "timeMax")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query, _ := args["query"].(string)

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	events, err := client.ListEvents(calendarID, timeMin, timeMax, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}

	result, _ := json.MarshalIndent(events, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

func handleGetEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	calendarID := "primary"
	if calVal, ok := args["calendarId"].(string); ok && calVal != "" {
		calendarID = calVal
	}

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.GetEvent(calendarID, eventID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get event: %v", err)), nil
	}

	result, _ := json.MarshalIndent(event, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	calendarID := "primary"
	if calVal, ok := args["calendarId"].(string); ok && calVal != "" {
		calendarID = calVal
	}

	summary, ok := args["summary"].(string)
	if !ok || summary == "" {
		return mcp.NewToolResultError("summary is required"), nil
	}

	start, err := parseRequiredTime(args, "start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := parseRequiredTime(args, "end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	input := calendar.EventInput{
		Summary: summary,
		Start:   start,
		End:     end,
	}
	input.Description, _ = args["description"].(string)
	input.Location, _ = args["location"].(string)
	input.TimeZone, _ = args["timeZone"].(string)
	input.AllDay, _ = args["allDay"].(bool)
	if attendeesVal, ok := args["attendees"].(string); ok && attendeesVal != "" {
		input.Attendees = splitEmails(attendeesVal)
	}
	if recurrenceVal, ok := args["recurrence"].(string); ok && recurrenceVal != "" {
		input.Recurrence = []string{recurrenceVal}
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.CreateEvent(calendarID, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}

	result, _ := json.MarshalIndent(event, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	calendarID := "primary"
	if calVal, ok := args["calendarId"].(string); ok && calVal != "" {
		calendarID = calVal
	}

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	var input calendar.EventInput
	input.Summary, _ = args["summary"].(string)
	input.Description, _ = args["description"].(string)
	input.Location, _ = args["location"].(string)
	input.TimeZone, _ = args["timeZone"].(string)
	if startVal, ok := args["start"].(string); ok && startVal != "" {
		start, err := time.Parse(time.RFC3339, startVal)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid start time: %v", err)), nil
		}
		input.Start = start
	}
	if endVal, ok := args["end"].(string); ok && endVal != "" {
		end, err := time.Parse(time.RFC3339, endVal)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid end time: %v", err)), nil
		}
		input.End = end
	}
	if attendeesVal, ok := args["attendees"].(string); ok && attendeesVal != "" {
		input.Attendees = splitEmails(attendeesVal)
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.UpdateEvent(calendarID, eventID, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update event: %v", err)), nil
	}

	result, _ := json.MarshalIndent(event, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	calendarID := "primary"
	if calVal, ok := args["calendarId"].(string); ok && calVal != "" {
		calendarID = calVal
	}

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeleteEvent(calendarID, eventID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete event: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Event %s deleted from calendar %s", eventID, calendarID)), nil
}

// parseRequiredTime extracts and parses a required RFC3339 time argument.
func parseRequiredTime(args map[string]interface{}, key string) (time.Time, error) {
	val, ok := args[key].(string)
	if !ok || val == "" {
		return time.Time{}, fmt.Errorf("%s is required", key)
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("Invalid %s time: %v", key, err)
	}
	return t, nil
}

// splitEmails splits a comma-separated list of addresses, trimming whitespace.
func splitEmails(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
