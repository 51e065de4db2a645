package kafka_client

import "time"

const KAFKA_TOPIC_BRAND_INSIGHTS = "brand-insights" // one event per completed brand analysis

const (
	MAX_RETRIES      = 3
	DELIVERY_TIMEOUT = 10 * time.Second
	FLUSH_TIMEOUT_MS = 5000
)
