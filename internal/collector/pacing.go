package collector

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"
)

// randomPause returns a duration drawn uniformly from [min, max]. Randomized
// spacing between areas keeps the probe cadence from looking mechanical.
func randomPause(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	span := big.NewInt(int64(max - min))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return min + (max-min)/2
	}
	return min + time.Duration(n.Int64())
}

// pause sleeps for delay or until the context is done, whichever is first.
func pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
