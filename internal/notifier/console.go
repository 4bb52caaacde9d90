package notifier

import (
	"context"

	"Parking/internal/logger"
)

// ConsoleSender writes messages to the application log. Used in development.
type ConsoleSender struct{}

func (ConsoleSender) Send(ctx context.Context, channel Channel, msg Message) error {
	logger.Info().
		Str("channel", string(channel)).
		Str("notification_id", msg.Id).
		Str("account_id", msg.Recipient.AccountId).
		Str("type", msg.Type).
		Str("severity", msg.Severity).
		Str("title", msg.Title).
		Msg(msg.Body)
	return nil
}

// LogPublisher satisfies Publisher by logging the routing key and payload.
type LogPublisher struct{}

func (LogPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	logger.Debug().Str("routing_key", key).Interface("payload", v).Msg("event published")
	return nil
}
