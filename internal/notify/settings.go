package notify

import "time"

// Working hours used when Settings.WorkingHoursOnly is set.
const (
	WorkdayStartHour = 8
	WorkdayEndHour   = 18
)

// Settings filters which notifications are delivered.
type Settings struct {
	Enabled          bool       `json:"enabled"`
	SeverityFilter   []Severity `json:"severityFilter"`
	WorkingHoursOnly bool       `json:"workingHoursOnly"`
	WeekendsIncluded bool       `json:"weekendsIncluded"`
}

// DefaultSettings delivers extreme, severe and moderate notifications at any
// time.
func DefaultSettings() Settings {
	return Settings{
		Enabled:          true,
		SeverityFilter:   []Severity{SeverityExtreme, SeveritySevere, SeverityModerate},
		WorkingHoursOnly: false,
		WeekendsIncluded: true,
	}
}

// ShouldSend reports whether n passes the filter at now. With
// WorkingHoursOnly, hours outside 08:00-18:59 are dropped, and weekends
// too unless WeekendsIncluded.
func (s Settings) ShouldSend(n Notification, now time.Time) bool {
	if !s.Enabled {
		return false
	}

	allowed := false
	for _, sev := range s.SeverityFilter {
		if sev == n.Severity {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	if s.WorkingHoursOnly {
		if h := now.Hour(); h < WorkdayStartHour || h > WorkdayEndHour {
			return false
		}
		if wd := now.Weekday(); !s.WeekendsIncluded && (wd == time.Saturday || wd == time.Sunday) {
			return false
		}
	}

	return true
}
