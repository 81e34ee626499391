// Package notify delivers weather warnings to users and operators.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Severity ranks how serious a notification is.
type Severity string

// Severities, most serious first.
const (
	SeverityExtreme  Severity = "extreme"
	SeveritySevere   Severity = "severe"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
)

// Kind classifies a notification.
type Kind string

// Notification kinds.
const (
	KindAlert   Kind = "alert"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
	KindUpdate  Kind = "update"
)

// Notification is a single user-facing message.
type Notification struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Severity     Severity  `json:"severity"`
	Timestamp    time.Time `json:"timestamp"`
	Location     string    `json:"location,omitempty"`
	JobsAffected []string  `json:"jobsAffected,omitempty"`
	Persistent   bool      `json:"persistent"`
}

// New creates a notification with a fresh ID stamped at now.
func New(kind Kind, severity Severity, title, message string, now time.Time) Notification {
	return Notification{
		ID:         "ntf_" + uuid.New().String(),
		Kind:       kind,
		Title:      title,
		Message:    message,
		Severity:   severity,
		Timestamp:  now,
		Persistent: severity == SeverityExtreme,
	}
}

// Notifier delivers notifications to one destination.
type Notifier interface {
	// Notify delivers n.
	Notify(ctx context.Context, n Notification) error

	// Name returns the notifier name for logging.
	Name() string
}
