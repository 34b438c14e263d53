package lifecycle

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDaemon struct {
	shutdowns atomic.Int32
	reloads   atomic.Int32
	reloadErr error
}

func (daemon *fakeDaemon) Shutdown() { daemon.shutdowns.Add(1) }

func (daemon *fakeDaemon) Reload() error {
	daemon.reloads.Add(1)
	return daemon.reloadErr
}

func TestHandleSignals(t *testing.T) {
	tests := []struct {
		name            string
		signals         []os.Signal
		reloadErr       error
		expectReloads   int32
		expectShutdowns int32
	}{
		{"terminate", []os.Signal{syscall.SIGTERM}, nil, 0, 1},
		{"interrupt", []os.Signal{syscall.SIGINT}, nil, 0, 1},
		{"reload then terminate", []os.Signal{syscall.SIGHUP, syscall.SIGHUP, syscall.SIGQUIT}, nil, 2, 1},
		{"failed reload keeps running", []os.Signal{syscall.SIGHUP, syscall.SIGTERM}, errors.New("bad config"), 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NOTIFY_SOCKET", "")
			daemon := &fakeDaemon{reloadErr: tt.reloadErr}

			sigChan := make(chan os.Signal, len(tt.signals))
			for _, sig := range tt.signals {
				sigChan <- sig
			}

			done := make(chan struct{})
			go func() {
				handleSignals(context.Background(), daemon, sigChan)
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("signal handler did not return")
			}
			assert.Equal(t, tt.expectReloads, daemon.reloads.Load())
			assert.Equal(t, tt.expectShutdowns, daemon.shutdowns.Load())
		})
	}
}

func TestHandleSignalsStopsOnCancel(t *testing.T) {
	daemon := &fakeDaemon{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	handleSignals(ctx, daemon, make(chan os.Signal))
	assert.Zero(t, daemon.shutdowns.Load())
}

func TestNotifyWithoutSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	assert.NoError(t, NotifyReady(context.Background()))
	assert.NoError(t, NotifyStatus(context.Background(), "ok"))
}

func TestNotifyWritesToSocket(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "notify.sock")
	listener, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: sockPath, Net: "unixgram"})
	require.NoError(t, err)
	defer listener.Close()

	t.Setenv("NOTIFY_SOCKET", sockPath)

	require.NoError(t, NotifyReady(context.Background()))

	buf := make([]byte, 64)
	require.NoError(t, listener.SetReadDeadline(time.Now().Add(time.Second)))
	n, err := listener.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "READY=1", string(buf[:n]))

	require.NoError(t, NotifyReload(context.Background()))
	n, err = listener.Read(buf)
	require.NoError(t, err)
	assert.Regexp(t, `^RELOADING=1\nMONOTONIC_USEC=\d+$`, string(buf[:n]))

	require.NoError(t, NotifyStatus(context.Background(), "queue draining\n2 lines left"))
	n, err = listener.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "STATUS=queue draining 2 lines left", string(buf[:n]))

	require.NoError(t, NotifyStopping(context.Background()))
	n, err = listener.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "STOPPING=1", string(buf[:n]))
}

func TestNotifyUnreachableSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", filepath.Join(t.TempDir(), "missing.sock"))
	assert.Error(t, NotifyReady(context.Background()))
}
