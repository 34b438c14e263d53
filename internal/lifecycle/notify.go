// Program lifecycle: service manager notifications and signal handling
package lifecycle

import (
	"context"
	"devsyslog/internal/global"
	"devsyslog/internal/logctx"
	"fmt"
	"net"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	stateReady     string = "READY=1"
	stateStopping  string = "STOPPING=1"
	stateReloading string = "RELOADING=1"
)

// Pipeline built and workers running
func NotifyReady(ctx context.Context) (err error) {
	err = send(ctx, stateReady)
	return
}

// Thresholds are about to be re-read. notify-reload units reject RELOADING without MONOTONIC_USEC.
func NotifyReload(ctx context.Context) (err error) {
	usec, err := monotonicMicros()
	if err != nil {
		return
	}
	err = send(ctx, stateReloading, fmt.Sprintf("MONOTONIC_USEC=%d", usec))
	return
}

// Shutdown started; the final flush and queue drain follow
func NotifyStopping(ctx context.Context) (err error) {
	err = send(ctx, stateStopping)
	return
}

// One line shown by the service manager next to the unit state
func NotifyStatus(ctx context.Context, status string) (err error) {
	err = send(ctx, "STATUS="+strings.ReplaceAll(status, "\n", " "))
	return
}

func monotonicMicros() (usec int64, err error) {
	var now unix.Timespec
	err = unix.ClockGettime(unix.CLOCK_MONOTONIC, &now)
	if err != nil {
		err = fmt.Errorf("failed to read monotonic clock: %w", err)
		return
	}
	usec = now.Sec*1_000_000 + int64(now.Nsec)/1_000
	return
}

// Writes the assignments as one datagram to $NOTIFY_SOCKET.
// Outside a service manager the variable is unset and nothing is sent.
func send(ctx context.Context, assignments ...string) (err error) {
	socketPath := os.Getenv("NOTIFY_SOCKET")
	if socketPath == "" {
		return
	}

	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Name: socketPath, Net: "unixgram"})
	if err != nil {
		err = fmt.Errorf("failed to reach service manager socket %s: %w", socketPath, err)
		return
	}
	defer conn.Close()

	message := strings.Join(assignments, "\n")
	_, err = conn.Write([]byte(message))
	if err != nil {
		err = fmt.Errorf("failed to send %q to service manager: %w", assignments[0], err)
		return
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"service manager notified: %s\n", strings.Join(assignments, " "))
	return
}
