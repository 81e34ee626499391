package job

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

// Team colours used for job events, dots and pins.
const (
	TeamRed   = "red"
	TeamBlue  = "blue"
	TeamGreen = "green"
	TeamGray  = "gray"
)

// EventTypeJob marks events derived from scheduled jobs.
const EventTypeJob = "job"

// TeamColor derives a team's colour from its name. Names mentioning red,
// blue or green (in that order of precedence) get that colour; everything
// else is gray.
func TeamColor(team string) string {
	t := strings.ToLower(team)
	switch {
	case strings.Contains(t, TeamRed):
		return TeamRed
	case strings.Contains(t, TeamBlue):
		return TeamBlue
	case strings.Contains(t, TeamGreen):
		return TeamGreen
	default:
		return TeamGray
	}
}

// CalendarEvent is an all-day calendar entry.
type CalendarEvent struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Start     string        `json:"start"`
	AllDay    bool          `json:"allDay"`
	Type      string        `json:"type"`
	Status    string        `json:"status,omitempty"`
	TeamColor string        `json:"teamColor"`
	Location  string        `json:"location,omitempty"`
	Metadata  EventMetadata `json:"metadata"`
}

// EventMetadata carries the job fields shown alongside an event.
type EventMetadata struct {
	JobNumber  string `json:"jobNumber,omitempty"`
	CustomerID string `json:"customerId,omitempty"`
	JobType    string `json:"jobType,omitempty"`
}

// ToEvent converts a job to its calendar event.
func ToEvent(j ScheduledJob) CalendarEvent {
	return CalendarEvent{
		ID:        j.ID,
		Title:     j.Title,
		Start:     j.Date,
		AllDay:    true,
		Type:      EventTypeJob,
		Status:    j.Status,
		TeamColor: TeamColor(j.Team),
		Location:  j.Address,
		Metadata: EventMetadata{
			JobNumber:  j.JobNumber,
			CustomerID: j.Customer,
			JobType:    j.Type,
		},
	}
}

// SyncEvents merges jobs into an existing event list. Non-job events and job
// events for jobs not in the list are kept in place; events for the given
// jobs are replaced by fresh ones appended in job order.
func SyncEvents(existing []CalendarEvent, jobs []ScheduledJob) []CalendarEvent {
	ids := make(map[string]struct{}, len(jobs))
	for _, j := range jobs {
		ids[j.ID] = struct{}{}
	}

	out := make([]CalendarEvent, 0, len(existing)+len(jobs))
	for _, e := range existing {
		if _, replaced := ids[e.ID]; e.Type == EventTypeJob && replaced {
			continue
		}
		out = append(out, e)
	}
	for _, j := range jobs {
		out = append(out, ToEvent(j))
	}
	return out
}

// FilterByTeam returns the events with the given team colour.
func FilterByTeam(events []CalendarEvent, color string) []CalendarEvent {
	var out []CalendarEvent
	for _, e := range events {
		if e.TeamColor == color {
			out = append(out, e)
		}
	}
	return out
}

// ICSProductID identifies generated calendar feeds.
const ICSProductID = "-//Trade Ease//Job Calendar//EN"

// WriteICS writes events as an iCalendar subscription feed. Events whose
// start is not a valid date key are skipped.
func WriteICS(w io.Writer, calName string, events []CalendarEvent, now time.Time) error {
	bw := bufio.NewWriter(w)
	line := func(format string, args ...interface{}) {
		bw.WriteString(foldICS(fmt.Sprintf(format, args...)))
		bw.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:%s", ICSProductID)
	line("METHOD:PUBLISH")
	line("CALSCALE:GREGORIAN")
	line("X-WR-CALNAME:%s", escapeICS(calName))
	line("X-PUBLISHED-TTL:PT1H")

	stamp := now.UTC().Format("20060102T150405Z")
	for _, e := range events {
		start, err := time.Parse("2006-01-02", e.Start)
		if err != nil {
			continue
		}

		line("BEGIN:VEVENT")
		line("UID:%s-%s@tradeease", e.Type, e.ID)
		line("DTSTAMP:%s", stamp)
		line("DTSTART;VALUE=DATE:%s", start.Format("20060102"))
		line("DTEND;VALUE=DATE:%s", start.AddDate(0, 0, 1).Format("20060102"))
		line("SUMMARY:%s", escapeICS(summary(e)))
		if e.Location != "" {
			line("LOCATION:%s", escapeICS(e.Location))
		}
		if e.Status != "" {
			line("DESCRIPTION:%s", escapeICS("Status: "+e.Status))
		}
		line("CATEGORIES:%s", strings.ToUpper(e.TeamColor))
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	return bw.Flush()
}

func summary(e CalendarEvent) string {
	if e.Metadata.JobNumber == "" {
		return e.Title
	}
	return e.Metadata.JobNumber + " " + e.Title
}

var icsEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
)

func escapeICS(s string) string {
	return icsEscaper.Replace(s)
}

// icsLineOctets is the content line limit, excluding the CRLF.
const icsLineOctets = 75

// foldICS splits a content line into 75-octet pieces joined by CRLF and a
// space, never cutting inside a UTF-8 sequence.
func foldICS(s string) string {
	if len(s) <= icsLineOctets {
		return s
	}

	var b strings.Builder
	limit := icsLineOctets
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		b.WriteString(s[:cut])
		b.WriteString("\r\n ")
		s = s[cut:]
		// The leading space counts toward the next line.
		limit = icsLineOctets - 1
	}
	b.WriteString(s)
	return b.String()
}
