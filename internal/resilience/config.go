package resilience

import (
	"time"
)

// FromRetryConfig builds a linear-backoff RetryConfig from config values.
// Non-positive values keep the defaults.
func FromRetryConfig(maxAttempts, backoffMs int) RetryConfig {
	cfg := DefaultRetryConfig()
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if backoffMs > 0 {
		cfg.InitialBackoff = time.Duration(backoffMs) * time.Millisecond
	}
	return cfg
}
