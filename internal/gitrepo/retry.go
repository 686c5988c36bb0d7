package gitrepo

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/protodoc/protodoc/internal/config"
	"github.com/protodoc/protodoc/internal/logfields"
	"github.com/protodoc/protodoc/internal/retry"
)

const (
	transientTypeRateLimit      = "rate_limit"
	transientTypeNetworkTimeout = "network_timeout"
)

// withRetry wraps an operation with retry logic based on build configuration.
func (c *Client) withRetry(op, repoName string, fn func() (Checkout, error)) (Checkout, error) {
	if c.buildCfg == nil || c.buildCfg.MaxRetries <= 0 {
		return fn()
	}
	initial, _ := time.ParseDuration(c.buildCfg.RetryInitialDelay)
	if initial <= 0 {
		initial = 500 * time.Millisecond
	}
	maxDelay, _ := time.ParseDuration(c.buildCfg.RetryMaxDelay)
	if maxDelay <= 0 {
		maxDelay = 10 * time.Second
	}
	pol := retry.NewPolicy(config.RetryBackoffMode(strings.ToLower(string(c.buildCfg.RetryBackoff))), initial, maxDelay, c.buildCfg.MaxRetries)

	// Adaptive delay multipliers keyed by error classification (transient types)
	const (
		multRateLimit      = 3.0
		multNetworkTimeout = 1.0
	)
	var lastErr error
	for attempt := 0; attempt <= c.buildCfg.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("retrying git operation", slog.String("operation", op), logfields.Repository(repoName), slog.Int("attempt", attempt))
		}
		c.inRetry = true
		result, err := fn()
		c.inRetry = false
		if err == nil {
			return result, nil
		}
		lastErr = err
		if isPermanentGitError(err) {
			slog.Error("permanent git error", slog.String("operation", op), logfields.Repository(repoName), logfields.Error(err))
			return Checkout{}, err
		}
		if attempt == c.buildCfg.MaxRetries {
			break
		}
		delay := pol.Delay(attempt + 1) // base delay
		switch classifyTransientType(err) {
		case transientTypeRateLimit:
			delay = time.Duration(float64(delay) * multRateLimit)
		case transientTypeNetworkTimeout:
			delay = time.Duration(float64(delay) * multNetworkTimeout)
		}
		time.Sleep(delay)
	}
	return Checkout{}, fmt.Errorf("git %s failed after retries: %w", op, lastErr)
}
