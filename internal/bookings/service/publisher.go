package service

import (
	"context"

	"reservio/pkg/kafka"
)

// EventPublisher emits booking lifecycle events. The Kafka producer
// satisfies it in production; NoopPublisher stands in when no brokers
// are configured.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, kafka.Message) error {
	return nil
}
