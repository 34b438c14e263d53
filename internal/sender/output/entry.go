// Hands formatted wire lines to the collector connection or the offline queue
package output

import (
	"context"
	"devsyslog/internal/global"
	"devsyslog/internal/logctx"
	"devsyslog/internal/sender/connection"
	"devsyslog/internal/sender/offline"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

// host supplies the identity patched into queued lines during drains
func New(namespace []string, conn *connection.Manager, queue *offline.Queue, lockTimeout, drainDelay time.Duration, host func() string) (new *Instance) {
	new = &Instance{
		Namespace:   append(namespace, global.NSOut),
		lock:        semaphore.NewWeighted(1),
		lockTimeout: lockTimeout,
		drainDelay:  drainDelay,
		conn:        conn,
		queue:       queue,
		host:        host,
	}
	if new.lockTimeout <= 0 {
		new.lockTimeout = global.DefaultLockTimeout
	}
	if new.host == nil {
		new.host = func() string { return "" }
	}
	return
}

// Waits at most the lock timeout for exclusive use of the transport
func (instance *Instance) acquire(ctx context.Context) (err error) {
	lockCtx, cancel := context.WithTimeout(ctx, instance.lockTimeout)
	defer cancel()

	err = instance.lock.Acquire(lockCtx, 1)
	if err != nil {
		instance.Metrics.LockTimeouts.Add(1)
		err = fmt.Errorf("%w after %s: %w", ErrLockTimeout, instance.lockTimeout, err)
	}
	return
}

// Sends one line, or queues it when the collector cannot be reached.
// A lock timeout drops the line without retrying.
func (instance *Instance) Deliver(ctx context.Context, line []byte) (outcome Outcome) {
	// Resolution may block, so it happens before the lock is taken
	ready := instance.conn.Prepare(ctx)

	err := instance.acquire(ctx)
	if err != nil {
		instance.Metrics.Dropped.Add(1)
		logctx.LogEvent(ctx, global.VerbosityData, global.WarnLog,
			"dropping message: %v\n", err)
		outcome = Dropped
		return
	}
	defer instance.lock.Release(1)

	outcome = instance.deliverLocked(ctx, line, ready)
	switch outcome {
	case Sent:
		instance.Metrics.Sent.Add(1)
	case Queued:
		instance.Metrics.Queued.Add(1)
	case Dropped:
		instance.Metrics.Dropped.Add(1)
	}
	return
}

func (instance *Instance) deliverLocked(ctx context.Context, line []byte, ready bool) (outcome Outcome) {
	wasConnected := instance.conn.State() == connection.Connected

	if ready && instance.conn.Connect(ctx) {
		var err error
		if !wasConnected || instance.queue.DrainPending() {
			err = instance.drainLocked(ctx)
		}

		// Failed drain leaves the connection down, so the line joins the backlog behind the older ones
		if err == nil {
			err = instance.conn.Send(line)
			if err == nil {
				outcome = Sent
				return
			}
			logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
				"send failed, falling back to offline queue: %v\n", err)
		}
	}

	err := instance.queue.Append(line)
	if err != nil {
		if !errors.Is(err, offline.ErrNoPersistence) {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
				"dropping message: %v\n", err)
		}
		outcome = Dropped
		return
	}
	outcome = Queued
	return
}

func (instance *Instance) drainLocked(ctx context.Context) (err error) {
	if !instance.queue.Enabled() || instance.queue.Size() == 0 {
		return
	}

	instance.Metrics.Drains.Add(1)
	replayed, err := instance.queue.Drain(ctx, instance.conn.Send, instance.host(), instance.drainDelay)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"offline queue drain interrupted: %v\n", err)
		return
	}
	if replayed > 0 {
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
			"replayed %d queued messages\n", replayed)
	}
	return
}

// Connects if needed and replays the offline queue.
// Waits up to the link wait bound for the link before taking the lock.
func (instance *Instance) Drain(ctx context.Context) (replayed int, err error) {
	if !instance.queue.Enabled() || instance.queue.Size() == 0 {
		return
	}

	ready := false
	if instance.conn.WaitForLink(ctx) == nil {
		ready = instance.conn.Prepare(ctx)
	}

	err = instance.acquire(ctx)
	if err != nil {
		return
	}
	defer instance.lock.Release(1)

	if instance.queue.Size() == 0 {
		return
	}
	if !ready || !instance.conn.Connect(ctx) {
		err = connection.ErrNotConnected
		return
	}

	instance.Metrics.Drains.Add(1)
	replayed, err = instance.queue.Drain(ctx, instance.conn.Send, instance.host(), instance.drainDelay)
	return
}

// Runs fn with the transport lock held, for callers that must not interleave with deliveries
func (instance *Instance) WithLock(ctx context.Context, fn func()) (err error) {
	err = instance.acquire(ctx)
	if err != nil {
		return
	}
	defer instance.lock.Release(1)
	fn()
	return
}

// Closes the collector endpoint under the transport lock
func (instance *Instance) Close(ctx context.Context) (err error) {
	err = instance.WithLock(ctx, instance.conn.Disconnect)
	return
}

func (instance *Instance) Connection() *connection.Manager {
	return instance.conn
}

func (instance *Instance) Queue() *offline.Queue {
	return instance.queue
}
