package notify_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeease/tradeease/internal/notify"
)

// recordingNotifier captures delivered notifications.
type recordingNotifier struct {
	mu   sync.Mutex
	got  []notify.Notification
	err  error
	name string
}

func (r *recordingNotifier) Name() string {
	if r.name == "" {
		return "recording"
	}
	return r.name
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return r.err
}

func TestSettings_ShouldSend(t *testing.T) {
	// 2024-03-13 is a Wednesday, 2024-03-16 a Saturday.
	wednesdayNoon := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	wednesdayLate := time.Date(2024, 3, 13, 19, 0, 0, 0, time.UTC)
	wednesdayEarly := time.Date(2024, 3, 13, 7, 59, 0, 0, time.UTC)
	saturdayNoon := time.Date(2024, 3, 16, 12, 0, 0, 0, time.UTC)

	severe := notify.Notification{Severity: notify.SeveritySevere}
	minor := notify.Notification{Severity: notify.SeverityMinor}

	workHours := notify.DefaultSettings()
	workHours.WorkingHoursOnly = true
	workHours.WeekendsIncluded = false

	disabled := notify.DefaultSettings()
	disabled.Enabled = false

	tests := []struct {
		name     string
		settings notify.Settings
		n        notify.Notification
		now      time.Time
		want     bool
	}{
		{"default severe", notify.DefaultSettings(), severe, wednesdayLate, true},
		{"default minor filtered", notify.DefaultSettings(), minor, wednesdayNoon, false},
		{"disabled", disabled, severe, wednesdayNoon, false},
		{"working hours noon", workHours, severe, wednesdayNoon, true},
		{"working hours evening", workHours, severe, wednesdayLate, false},
		{"working hours early", workHours, severe, wednesdayEarly, false},
		{"working hours weekend excluded", workHours, severe, saturdayNoon, false},
		{"weekend without working hours", notify.Settings{Enabled: true, SeverityFilter: []notify.Severity{notify.SeveritySevere}}, severe, saturdayNoon, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.settings.ShouldSend(tt.n, tt.now))
		})
	}
}

func TestDispatcher_FiltersAndRecords(t *testing.T) {
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	sink := &recordingNotifier{}
	d := notify.NewDispatcher(notify.DispatcherConfig{
		Notifiers:   []notify.Notifier{sink},
		HistorySize: 2,
		Now:         func() time.Time { return now },
		Logger:      zerolog.Nop(),
	})
	ctx := context.Background()

	require.NoError(t, d.Notify(ctx, notify.New(notify.KindWarning, notify.SeverityMinor, "drizzle", "", now)))
	require.NoError(t, d.Notify(ctx, notify.New(notify.KindWarning, notify.SeveritySevere, "first", "", now)))
	require.NoError(t, d.Notify(ctx, notify.New(notify.KindWarning, notify.SeverityExtreme, "second", "", now)))
	require.NoError(t, d.Notify(ctx, notify.New(notify.KindWarning, notify.SeverityModerate, "third", "", now)))

	assert.Len(t, sink.got, 3, "minor is filtered by default")

	recent := d.Recent(10)
	require.Len(t, recent, 2, "history is bounded")
	assert.Equal(t, "third", recent[0].Title)
	assert.Equal(t, "second", recent[1].Title)
	assert.True(t, recent[1].Persistent)
	assert.True(t, strings.HasPrefix(recent[0].ID, "ntf_"))

	assert.Len(t, d.Recent(1), 1)
}

func TestDispatcher_WorkingHoursInLocation(t *testing.T) {
	brisbane, err := time.LoadLocation("Australia/Brisbane")
	require.NoError(t, err)

	settings := notify.DefaultSettings()
	settings.WorkingHoursOnly = true

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"09:00 Brisbane is 23:00 UTC", time.Date(2024, 3, 12, 23, 0, 0, 0, time.UTC), 1},
		{"03:00 Brisbane is 17:00 UTC", time.Date(2024, 3, 12, 17, 0, 0, 0, time.UTC), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingNotifier{}
			d := notify.NewDispatcher(notify.DispatcherConfig{
				Notifiers: []notify.Notifier{sink},
				Settings:  &settings,
				Now:       func() time.Time { return tt.now },
				Location:  brisbane,
				Logger:    zerolog.Nop(),
			})

			require.NoError(t, d.Notify(context.Background(),
				notify.New(notify.KindAlert, notify.SeveritySevere, "Storm", "Hail expected", tt.now)))
			assert.Len(t, sink.got, tt.want)
		})
	}
}

func TestDispatcher_NotifierFailure(t *testing.T) {
	failing := &recordingNotifier{name: "failing", err: errors.New("down")}
	ok := &recordingNotifier{name: "ok"}
	d := notify.NewDispatcher(notify.DispatcherConfig{
		Notifiers: []notify.Notifier{failing, ok},
		Logger:    zerolog.Nop(),
	})

	err := d.Notify(context.Background(), notify.New(notify.KindAlert, notify.SeveritySevere, "Storm", "Hail expected", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing")
	assert.Len(t, ok.got, 1, "later notifiers still run")
}

func TestDispatcher_UpdateSettings(t *testing.T) {
	sink := &recordingNotifier{}
	d := notify.NewDispatcher(notify.DispatcherConfig{Notifiers: []notify.Notifier{sink}, Logger: zerolog.Nop()})

	s := d.Settings()
	s.SeverityFilter = []notify.Severity{notify.SeverityMinor}
	d.UpdateSettings(s)

	require.NoError(t, d.Notify(context.Background(), notify.New(notify.KindInfo, notify.SeverityMinor, "fyi", "", time.Now())))
	require.NoError(t, d.Notify(context.Background(), notify.New(notify.KindInfo, notify.SeveritySevere, "bad", "", time.Now())))
	require.Len(t, sink.got, 1)
	assert.Equal(t, "fyi", sink.got[0].Title)
}

// fakeSlack records posted channels.
type fakeSlack struct {
	channels []string
	err      error
}

func (f *fakeSlack) PostMessageContext(_ context.Context, channelID string, _ ...slack.MsgOption) (string, string, error) {
	f.channels = append(f.channels, channelID)
	return channelID, "1700000000.000100", f.err
}

func TestSlackNotifier(t *testing.T) {
	client := &fakeSlack{}
	n := notify.NewSlackNotifierWithClient(client, "C123")

	require.NoError(t, n.Notify(context.Background(), notify.Notification{Title: "Storm", Severity: notify.SeveritySevere}))
	assert.Equal(t, []string{"C123"}, client.channels)

	client.err = errors.New("channel_not_found")
	assert.Error(t, n.Notify(context.Background(), notify.Notification{Title: "Storm"}))
}

func TestFormatSlackText(t *testing.T) {
	text := notify.FormatSlackText(notify.Notification{
		Title:        "Severe Thunderstorm Warning",
		Message:      "Large hail and damaging winds",
		Severity:     notify.SeveritySevere,
		Location:     "Gold Coast",
		JobsAffected: []string{"JOB-1", "JOB-2"},
	})

	assert.Equal(t,
		":warning: *Severe Thunderstorm Warning* (Gold Coast)\nLarge hail and damaging winds\nJobs affected: JOB-1, JOB-2",
		text)
}
