package resilience

import (
	"time"
)

// FromRetryConfig converts configured values to a RetryConfig. Non-positive
// delays keep the defaults; a negative maxRetries keeps the default count.
func FromRetryConfig(maxRetries, baseDelayMs, maxJitterMs int) RetryConfig {
	cfg := DefaultRetryConfig()
	if maxRetries >= 0 {
		cfg.MaxRetries = maxRetries
	}
	if baseDelayMs > 0 {
		cfg.BaseDelay = time.Duration(baseDelayMs) * time.Millisecond
	}
	if maxJitterMs >= 0 {
		cfg.MaxJitter = time.Duration(maxJitterMs) * time.Millisecond
	}
	return cfg
}
