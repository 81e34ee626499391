package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DispatcherConfig holds configuration for the dispatcher.
type DispatcherConfig struct {
	// Notifiers receive every notification that passes the settings filter.
	Notifiers []Notifier

	// Settings filter notifications (default: DefaultSettings).
	Settings *Settings

	// HistorySize bounds the in-memory log served to clients (default: 100).
	HistorySize int

	// Now returns the current time (default: time.Now).
	Now func() time.Time

	// Location is the zone working hours are judged in (default: time.Local).
	Location *time.Location

	// Logger for dispatcher operations.
	Logger zerolog.Logger
}

// Dispatcher filters notifications, keeps a bounded history and fans them
// out to the configured notifiers.
type Dispatcher struct {
	notifiers   []Notifier
	historySize int
	now         func() time.Time
	loc         *time.Location
	logger      zerolog.Logger

	mu       sync.RWMutex
	settings Settings
	history  []Notification
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	settings := DefaultSettings()
	if cfg.Settings != nil {
		settings = *cfg.Settings
	}

	historySize := cfg.HistorySize
	if historySize <= 0 {
		historySize = 100
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	return &Dispatcher{
		notifiers:   cfg.Notifiers,
		historySize: historySize,
		now:         now,
		loc:         loc,
		logger:      cfg.Logger,
		settings:    settings,
	}
}

// Name returns the dispatcher name.
func (d *Dispatcher) Name() string {
	return "dispatcher"
}

// Notify delivers n if the settings allow it. Every notifier is attempted;
// their failures are logged and returned joined.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) error {
	d.mu.Lock()
	settings := d.settings
	if !settings.ShouldSend(n, d.now().In(d.loc)) {
		d.mu.Unlock()
		d.logger.Debug().
			Str("notification_id", n.ID).
			Str("severity", string(n.Severity)).
			Msg("notification filtered")
		return nil
	}
	d.history = append(d.history, n)
	if over := len(d.history) - d.historySize; over > 0 {
		d.history = append([]Notification(nil), d.history[over:]...)
	}
	d.mu.Unlock()

	var errs []error
	for _, notifier := range d.notifiers {
		if err := notifier.Notify(ctx, n); err != nil {
			d.logger.Warn().
				Err(err).
				Str("notifier", notifier.Name()).
				Str("notification_id", n.ID).
				Msg("notification delivery failed")
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Recent returns up to limit notifications, newest first.
func (d *Dispatcher) Recent(limit int) []Notification {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if limit <= 0 || limit > len(d.history) {
		limit = len(d.history)
	}
	out := make([]Notification, 0, limit)
	for i := len(d.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, d.history[i])
	}
	return out
}

// Settings returns the current settings.
func (d *Dispatcher) Settings() Settings {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := d.settings
	s.SeverityFilter = append([]Severity(nil), d.settings.SeverityFilter...)
	return s
}

// UpdateSettings replaces the settings.
func (d *Dispatcher) UpdateSettings(s Settings) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settings = s
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Name returns the notifier name.
func (l LogNotifier) Name() string {
	return "log"
}

// Notify logs n at warn level.
func (l LogNotifier) Notify(_ context.Context, n Notification) error {
	l.Logger.Warn().
		Str("notification_id", n.ID).
		Str("type", string(n.Kind)).
		Str("severity", string(n.Severity)).
		Str("location", n.Location).
		Str("title", n.Title).
		Msg(n.Message)
	return nil
}

// Ensure the notifiers implement Notifier.
var (
	_ Notifier = (*Dispatcher)(nil)
	_ Notifier = LogNotifier{}
)
