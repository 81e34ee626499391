package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// SlackPoster is the part of the Slack client the notifier needs.
// *slack.Client satisfies it.
type SlackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier posts notifications to a Slack channel.
type SlackNotifier struct {
	client  SlackPoster
	channel string
}

// NewSlackNotifier creates a notifier posting to channel with a bot token.
func NewSlackNotifier(token, channel string) *SlackNotifier {
	return NewSlackNotifierWithClient(slack.New(token), channel)
}

// NewSlackNotifierWithClient creates a notifier on an existing client.
func NewSlackNotifierWithClient(client SlackPoster, channel string) *SlackNotifier {
	return &SlackNotifier{client: client, channel: channel}
}

// Name returns the notifier name.
func (s *SlackNotifier) Name() string {
	return "slack"
}

// Notify posts n to the channel.
func (s *SlackNotifier) Notify(ctx context.Context, n Notification) error {
	_, _, err := s.client.PostMessageContext(ctx, s.channel,
		slack.MsgOptionText(FormatSlackText(n), false),
	)
	if err != nil {
		return fmt.Errorf("posting to slack channel %s: %w", s.channel, err)
	}
	return nil
}

// FormatSlackText renders n as Slack mrkdwn.
func FormatSlackText(n Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s*", severityEmoji(n.Severity), n.Title)
	if n.Location != "" {
		fmt.Fprintf(&b, " (%s)", n.Location)
	}
	b.WriteString("\n")
	b.WriteString(n.Message)
	if len(n.JobsAffected) > 0 {
		fmt.Fprintf(&b, "\nJobs affected: %s", strings.Join(n.JobsAffected, ", "))
	}
	return b.String()
}

func severityEmoji(s Severity) string {
	switch s {
	case SeverityExtreme:
		return ":rotating_light:"
	case SeveritySevere:
		return ":warning:"
	case SeverityModerate:
		return ":cloud_with_rain:"
	default:
		return ":information_source:"
	}
}
