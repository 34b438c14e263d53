package logctx

import (
	"fmt"
	"io"
	"time"
)

const (
	repeatWindow     = 5 * time.Second // identical events further apart are printed
	minRepeats       = 10
	suppressCooldown = 1 * time.Minute // one suppression notice per cooldown
)

// Starts a go routine that reads events and writes formatted output to io.Writer.
// Stops when logger.Done is closed.
func StartWatcher(logger *Logger, output io.Writer) {
	logger.wg.Add(1)

	go func() {
		defer logger.wg.Done()

		var tracker repeatTracker
		for {
			event, ok := logger.next()
			if !ok {
				return
			}

			notice, skip := tracker.observe(event, time.Now())
			if notice != "" {
				fmt.Fprint(output, notice)
			}
			if skip {
				continue
			}
			fmt.Fprint(output, event.Format())
		}
	}()
}

// Blocks for the next event. False once Done is closed and the queue is empty.
func (logger *Logger) next() (event Event, ok bool) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	for len(logger.queue) == 0 {
		select {
		case <-logger.Done:
			return
		default:
			logger.cond.Wait()
		}
	}

	event = logger.queue[0]
	logger.queue = logger.queue[1:]
	ok = true
	return
}

// Decides whether a repeated event is printed
func (tracker *repeatTracker) observe(event Event, now time.Time) (notice string, skip bool) {
	if event.Message == "" || event.Message != tracker.lastMsg || now.Sub(event.Timestamp) > repeatWindow {
		tracker.lastMsg = event.Message
		tracker.repeatCount = 1
		return
	}

	tracker.repeatCount++
	skip = true

	if tracker.repeatCount >= minRepeats && now.Sub(tracker.lastSuppressTime) >= suppressCooldown {
		notice = tracker.summary(event)
		tracker.lastSuppressTime = now
		tracker.repeatCount = 0
	}
	return
}
