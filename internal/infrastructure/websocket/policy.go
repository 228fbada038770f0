package websocket

import (
	"time"

	"github.com/cenkalti/backoff/v4"

	"pasargamex-chat/pkg/config"
)

// NewReconnectPolicy returns the delay policy between reconnect attempts.
// "fixed" waits delay every time. "exponential" starts at delay, grows with
// jitter up to maxDelay and never gives up.
func NewReconnectPolicy(strategy string, delay, maxDelay time.Duration) backoff.BackOff {
	if delay <= 0 {
		delay = 3 * time.Second
	}
	if strategy != config.ReconnectExponential {
		return backoff.NewConstantBackOff(delay)
	}

	if maxDelay < delay {
		maxDelay = delay
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = delay
	b.MaxInterval = maxDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0.3
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
