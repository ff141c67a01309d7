package cache

import "time"

// TTL constants for the process-wide caches.
const (
	// TTLPriceSnapshot bounds staleness of per-symbol quotes during a
	// screening run.
	TTLPriceSnapshot = 5 * time.Minute

	// TTLSentiment bounds staleness of the aggregated news sentiment
	// snapshot. News moves slower than prices.
	TTLSentiment = 30 * time.Minute
)
