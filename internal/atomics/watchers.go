package atomics

import (
	"context"
	"sync/atomic"
	"time"
)

// Waits until value reads 0 three times in a row, backing off between reads.
// Gives up at timeout or when ctx ends.
func WaitUntilZero(ctx context.Context, value *atomic.Uint64, timeout time.Duration) (reachedZero bool, lastValue uint64) {
	const successfulStreakCount = 3
	const maxBackoff = time.Second

	backoff := 10 * time.Millisecond
	deadline := time.Now().Add(timeout)
	zeroStreak := 0

	for {
		lastValue = value.Load()
		if lastValue == 0 {
			zeroStreak++
			if zeroStreak >= successfulStreakCount {
				reachedZero = true
				return
			}
		} else {
			zeroStreak = 0
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}

		sleep := min(backoff, remaining)
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		backoff = min(backoff*2, maxBackoff)
	}
}
