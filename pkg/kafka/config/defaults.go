package kafka_config

import "time"

const (
	// An empty broker list disables eventing entirely; the API then
	// runs with a no-op publisher.
	DefaultKafkaBrokers = ""

	DefaultKafkaTopic    = "booking-events"
	DefaultKafkaDLQTopic = "booking-events-dlq"
	DefaultKafkaGroupID  = "reservio-auditor"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // all replicas
	DefaultProducerCompression  = "snappy"

	DefaultConsumerStartOffset    = -2 // oldest, so the audit log is complete
	DefaultConsumerMinBytes       = 1
	DefaultConsumerMaxBytes       = 10 * 1024 * 1024
	DefaultConsumerMaxWait        = 500 * time.Millisecond
	DefaultConsumerCommitInterval = 1 * time.Second
	DefaultConsumerMaxRetries     = 3
)
