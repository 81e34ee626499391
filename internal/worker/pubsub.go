package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/tradeease/tradeease/internal/weather"
)

// Job types carried in refresh messages.
const (
	JobTypeWeatherRefresh = "weather_refresh"
	JobTypeHolidayPreload = "holiday_preload"
	JobTypeHealthCheck    = "health_check"
)

// ErrHealthCheckFailed is returned when the health check site cannot be
// refreshed from the live provider.
var ErrHealthCheckFailed = errors.New("health check failed")

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	refreshJob       *RefreshJob
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	RefreshJob       *RefreshJob
	Logger           zerolog.Logger
}

// RefreshMessage represents a refresh job message.
type RefreshMessage struct {
	JobType string `json:"job_type"`

	// Sites limits a weather refresh to these sites. Empty refreshes
	// every configured and job site.
	Sites []weather.Site `json:"sites,omitempty"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		refreshJob:       cfg.RefreshJob,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages and blocks until ctx is done.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		logger := h.logger.With().
			Str("message_id", msg.ID).
			Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
			Logger()

		if h.refreshJob.Handle(ctx, msg.Data, logger) {
			msg.Ack()
		} else {
			msg.Nack()
		}
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

// Handle runs the job a refresh message asks for and reports whether the
// message should be acked. Unparseable messages are nacked; unknown job
// types are acked so they are not redelivered.
func (j *RefreshJob) Handle(ctx context.Context, data []byte, logger zerolog.Logger) bool {
	startTime := time.Now()
	logger.Debug().Msg("received refresh message")

	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		return false
	}

	var err error
	switch msg.JobType {
	case JobTypeWeatherRefresh:
		err = j.handleWeatherRefresh(ctx, msg)
	case JobTypeHolidayPreload:
		_, errMsg := j.loadHolidays(ctx)
		if errMsg != "" {
			err = errors.New(errMsg)
		}
	case JobTypeHealthCheck:
		err = j.HealthCheck(ctx)
	default:
		logger.Warn().Str("job_type", msg.JobType).Msg("unknown job type")
		return true
	}

	if err != nil {
		logger.Error().Err(err).Str("job_type", msg.JobType).Msg("job failed")
		return false
	}

	logger.Info().
		Str("job_type", msg.JobType).
		Dur("duration", time.Since(startTime)).
		Msg("job completed successfully")
	return true
}

func (j *RefreshJob) handleWeatherRefresh(ctx context.Context, msg RefreshMessage) error {
	var result *RefreshResult
	if len(msg.Sites) > 0 {
		result = j.RefreshSites(ctx, msg.Sites)
	} else {
		result = j.Run(ctx)
	}

	// Consider it successful if at least half succeeded.
	if result.Failed > result.Successful {
		return fmt.Errorf("too many refresh failures: %d/%d", result.Failed, result.TotalSites)
	}
	return nil
}

// HealthCheck refreshes the first configured site and fails when the live
// provider could not serve it.
func (j *RefreshJob) HealthCheck(ctx context.Context) error {
	if len(j.config.Sites) == 0 {
		return fmt.Errorf("%w: no sites configured", ErrHealthCheckFailed)
	}

	result := j.RefreshSites(ctx, j.config.Sites[:1])
	switch {
	case result.Failed > 0:
		return fmt.Errorf("%w: %s", ErrHealthCheckFailed, result.Errors[0].Error)
	case result.Fallback > 0:
		return fmt.Errorf("%w: provider served no forecast", ErrHealthCheckFailed)
	}
	return nil
}
