package calendar

import (
	"testing"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

func TestToEventSummary(t *testing.T) {
	event := &calendar.Event{
		Id:          "evt-1",
		Summary:     "Team sync",
		Description: "Weekly sync",
		Location:    "Room 4",
		Status:      "confirmed",
		Start:       &calendar.EventDateTime{DateTime: "2026-01-15T14:00:00Z"},
		End:         &calendar.EventDateTime{DateTime: "2026-01-15T15:00:00Z"},
		Creator:     &calendar.EventCreator{Email: "creator@example.com"},
		Organizer:   &calendar.EventOrganizer{Email: "organizer@example.com"},
		Attendees: []*calendar.EventAttendee{
			{Email: "alice@example.com", ResponseStatus: "accepted", Organizer: true},
			{Email: "bob@example.com", ResponseStatus: "needsAction", Optional: true},
		},
	}

	summary := toEventSummary(event)

	if summary.ID != "evt-1" {
		t.Errorf("Expected ID 'evt-1', got %s", summary.ID)
	}
	if summary.Summary != "Team sync" {
		t.Errorf("Expected summary 'Team sync', got %s", summary.Summary)
	}
	if summary.Creator != "creator@example.com" {
		t.Errorf("Expected creator 'creator@example.com', got %s", summary.Creator)
	}
	if summary.Organizer != "organizer@example.com" {
		t.Errorf("Expected organizer 'organizer@example.com', got %s", summary.Organizer)
	}
	want := time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC)
	if !summary.Start.Equal(want) {
		t.Errorf("Expected start %v, got %v", want, summary.Start)
	}
	if len(summary.Attendees) != 2 {
		t.Fatalf("Expected 2 attendees, got %d", len(summary.Attendees))
	}
	if !summary.Attendees[0].Organizer {
		t.Error("Expected first attendee to be the organizer")
	}
	if !summary.Attendees[1].Optional {
		t.Error("Expected second attendee to be optional")
	}
}

func TestParseEventTime(t *testing.T) {
	tests := []struct {
		name string
		edt  *calendar.EventDateTime
		want time.Time
	}{
		{
			name: "nil",
			edt:  nil,
			want: time.Time{},
		},
		{
			name: "date-time",
			edt:  &calendar.EventDateTime{DateTime: "2026-01-15T14:00:00Z"},
			want: time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC),
		},
		{
			name: "all-day date",
			edt:  &calendar.EventDateTime{Date: "2026-01-15"},
			want: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "garbage",
			edt:  &calendar.EventDateTime{DateTime: "soonish"},
			want: time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseEventTime(tt.edt)
			if !got.Equal(tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestToCalendarInfo(t *testing.T) {
	entry := &calendar.CalendarListEntry{
		Id:         "primary",
		Summary:    "Work",
		TimeZone:   "Europe/Berlin",
		Primary:    true,
		AccessRole: "owner",
	}
	info := toCalendarInfo(entry)
	if info.ID != "primary" || !info.Primary {
		t.Errorf("Unexpected conversion: %+v", info)
	}
	if info.AccessRole != "owner" {
		t.Errorf("Expected access role 'owner', got %s", info.AccessRole)
	}
}

func TestSetEventTimes(t *testing.T) {
	start := time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 15, 15, 0, 0, 0, time.UTC)

	t.Run("timed event defaults to UTC", func(t *testing.T) {
		var event calendar.Event
		setEventTimes(&event, EventInput{Start: start, End: end})

		if event.Start.DateTime != "2026-01-15T14:00:00Z" {
			t.Errorf("Unexpected start: %s", event.Start.DateTime)
		}
		if event.Start.TimeZone != "UTC" {
			t.Errorf("Expected UTC time zone, got %s", event.Start.TimeZone)
		}
		if event.Start.Date != "" {
			t.Error("Timed event must not set Date")
		}
	})

	t.Run("explicit time zone", func(t *testing.T) {
		var event calendar.Event
		setEventTimes(&event, EventInput{Start: start, End: end, TimeZone: "America/New_York"})
		if event.End.TimeZone != "America/New_York" {
			t.Errorf("Expected America/New_York, got %s", event.End.TimeZone)
		}
	})

	t.Run("all-day event uses Date", func(t *testing.T) {
		var event calendar.Event
		setEventTimes(&event, EventInput{Start: start, End: end, AllDay: true})
		if event.Start.Date != "2026-01-15" {
			t.Errorf("Unexpected all-day start: %s", event.Start.Date)
		}
		if event.Start.DateTime != "" {
			t.Error("All-day event must not set DateTime")
		}
	})
}
