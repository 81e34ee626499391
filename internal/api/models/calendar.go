package models

import (
	"github.com/tradeease/tradeease/internal/calendar"
	"github.com/tradeease/tradeease/internal/job"
	"github.com/tradeease/tradeease/internal/notify"
	"github.com/tradeease/tradeease/internal/weather"
)

// Navigation is the result of moving the displayed month.
type Navigation struct {
	Direction string `json:"direction"`
	From      string `json:"from"`
	Anchor    string `json:"anchor"`
	Title     string `json:"title"`
}

// DropRequest is the body of a drop on a day cell.
type DropRequest struct {
	JobID string `json:"jobId"`
}

// DropResult reports where a dropped job ended up.
type DropResult struct {
	Date string            `json:"date"`
	Job  *job.ScheduledJob `json:"job,omitempty"`
}

// EventList is the job-derived calendar events.
type EventList struct {
	Events []job.CalendarEvent `json:"events"`
	Count  int                 `json:"count"`
}

// HolidayList is one country's holidays for a year or month.
type HolidayList struct {
	Country  string                   `json:"country"`
	Year     int                      `json:"year"`
	Month    int                      `json:"month,omitempty"`
	Holidays []calendar.PublicHoliday `json:"holidays"`
}

// DayClassification is the day type of one date.
type DayClassification struct {
	Date    string                  `json:"date"`
	DayType calendar.DayType        `json:"dayType"`
	Country string                  `json:"country"`
	Holiday *calendar.PublicHoliday `json:"holiday,omitempty"`
}

// AlertList is the active alerts at a point.
type AlertList struct {
	Alerts []weather.Alert `json:"alerts"`
	Count  int             `json:"count"`
}

// SuitabilityList is the construction assessment of each forecast day.
type SuitabilityList struct {
	Site     weather.Site            `json:"site"`
	Fallback bool                    `json:"fallback"`
	Days     []weather.DayAssessment `json:"days"`
}

// JobList is the jobs in a date range.
type JobList struct {
	From  string             `json:"from,omitempty"`
	To    string             `json:"to,omitempty"`
	Jobs  []job.ScheduledJob `json:"jobs"`
	Count int                `json:"count"`
}

// MarkerList is the map pins of located jobs.
type MarkerList struct {
	Markers []job.Marker `json:"markers"`
}

// NotificationList is recent notifications and the active filter.
type NotificationList struct {
	Notifications []notify.Notification `json:"notifications"`
	Settings      notify.Settings       `json:"settings"`
}
