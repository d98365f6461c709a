package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"reservio/internal/audit"
	auditrepository "reservio/internal/audit/repository"
	"reservio/pkg/config"
	"reservio/pkg/kafka"
	kafka_config "reservio/pkg/kafka/config"
	kafka_middleware "reservio/pkg/kafka/middleware"
)

const ServiceName = "reservio-auditor"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	kafkaCfg := kafka_config.Load()
	if !kafkaCfg.Enabled() {
		cfg.Log.Fatal("Kafka brokers must be configured for the auditor")
	}

	recorder := audit.NewRecorder(auditrepository.NewMongoAuditRepository(cfg), cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafkaCfg.Topic,
		kafkaCfg.GroupID,
		kafkaCfg.DLQTopic,
		recorder.Handle,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting audit log consumer",
		"brokers", kafkaCfg.Brokers,
		"topic", kafkaCfg.Topic,
		"group_id", kafkaCfg.GroupID,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}

	cfg.Log.Info("Auditor stopped gracefully")
}
