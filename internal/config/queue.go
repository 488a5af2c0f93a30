package config

// QueueConfig configures the RabbitMQ publisher and the reservation log
// consumer.  An empty URL disables both.
type QueueConfig struct {
	URL             string
	ConsumerEnabled bool
}

// LoadQueueConfig reads RABBITMQ_URL and RESERVATION_CONSUMER_ENABLED.
func LoadQueueConfig() QueueConfig {
	return QueueConfig{
		URL:             envStr("RABBITMQ_URL", ""),
		ConsumerEnabled: envBool("RESERVATION_CONSUMER_ENABLED", true),
	}
}

// Enabled reports whether a broker is configured.
func (q QueueConfig) Enabled() bool { return q.URL != "" }
