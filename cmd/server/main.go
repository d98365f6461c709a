package main

import (
	accounthandler "reservio/internal/accounts/handler"
	accountrepository "reservio/internal/accounts/repository"
	accountservice "reservio/internal/accounts/service"
	accountvalidator "reservio/internal/accounts/validator"
	"reservio/internal/api"
	bookinghandler "reservio/internal/bookings/handler"
	bookingrepository "reservio/internal/bookings/repository"
	bookingservice "reservio/internal/bookings/service"
	bookingvalidator "reservio/internal/bookings/validator"
	resourcehandler "reservio/internal/resources/handler"
	resourcerepository "reservio/internal/resources/repository"
	resourceservice "reservio/internal/resources/service"
	resourcevalidator "reservio/internal/resources/validator"
	"reservio/pkg/app"
	"reservio/pkg/config"
	"reservio/pkg/kafka"
	kafka_config "reservio/pkg/kafka/config"
	kafka_middleware "reservio/pkg/kafka/middleware"
)

const ServiceName = "reservio"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reservio API service")

	publisher := initPublisher(cfg)
	if closer, ok := publisher.(*kafka.Producer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		}()
	}

	// Repositories
	counterRepo := bookingrepository.NewCounterRepository(cfg)
	bookingRepo := bookingrepository.NewMongoBookingRepository(cfg, counterRepo)
	slotLockRepo := bookingrepository.NewSlotLockRepository(cfg)
	resourceRepo := resourcerepository.NewMongoResourceRepository(cfg)
	userRepo := accountrepository.NewMongoUserRepository(cfg)
	sessionRepo := accountrepository.NewMongoSessionRepository(cfg)

	// Services
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		slotLockRepo,
		resourceRepo,
		bookingvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)
	resourceService := resourceservice.NewResourceService(
		resourceRepo,
		bookingRepo,
		resourcevalidator.NewResourceValidator(cfg.Log),
		cfg,
	)
	accountService := accountservice.NewAccountService(
		userRepo,
		sessionRepo,
		bookingRepo,
		resourceRepo,
		accountvalidator.NewAccountValidator(cfg.Log),
		cfg,
	)

	router := api.NewRouter(
		accounthandler.NewAccountHandler(accountService, cfg.Log),
		resourcehandler.NewResourceHandler(resourceService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
	)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(router, accountService.Authenticate)
	serverApp.Run()
}

// initPublisher wires the Kafka producer when brokers are configured
// and falls back to a no-op publisher otherwise.
func initPublisher(cfg *config.Config) bookingservice.EventPublisher {
	kafkaCfg := kafka_config.Load()
	if !kafkaCfg.Enabled() {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return bookingservice.NoopPublisher{}
	}

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.Topic, kafkaCfg.DLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	cfg.Log.Info("Kafka producer initialized",
		"brokers", kafkaCfg.Brokers,
		"topic", kafkaCfg.Topic,
	)
	return producer
}
