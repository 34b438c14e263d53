// File-backed FIFO of wire lines used while the collector is unreachable
package offline

import (
	"bytes"
	"context"
	"devsyslog/internal/global"
	"devsyslog/pkg/protocol"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

func New(namespace []string, filesystem afero.Fs, path string, maxBytes int64) (queue *Queue) {
	queue = &Queue{
		Namespace: append(namespace, global.NSOffline),
		fs:        filesystem,
		path:      path,
		maxBytes:  maxBytes,
	}
	if queue.path == "" {
		queue.path = global.DefaultOfflineQueuePath
	}
	if queue.maxBytes <= 0 {
		queue.maxBytes = global.DefaultOfflineMaxBytes
	}
	if queue.fs != nil && queue.Size() > 0 {
		// Backlog survived a restart
		queue.drainPending.Store(true)
	}
	return
}

func (queue *Queue) Enabled() bool {
	return queue.fs != nil
}

func (queue *Queue) Path() string {
	return queue.path
}

func (queue *Queue) MaxBytes() int64 {
	return queue.maxBytes
}

// True when lines were queued since the last complete drain
func (queue *Queue) DrainPending() bool {
	return queue.drainPending.Load()
}

// Current file size in bytes (0 when absent or disabled)
func (queue *Queue) Size() (size int64) {
	if queue.fs == nil {
		return
	}
	info, err := queue.fs.Stat(queue.path)
	if err != nil {
		return
	}
	size = info.Size()
	return
}

// Appends one wire line plus newline. Refuses when persistence is off or the line would pass the cap.
func (queue *Queue) Append(line []byte) (err error) {
	if queue.fs == nil {
		err = ErrNoPersistence
		return
	}

	line = protocol.StripTerminators(line)
	if len(line) == 0 {
		return
	}

	if queue.Size()+int64(len(line))+1 > queue.maxBytes {
		queue.Metrics.AppendFails.Add(1)
		err = ErrQueueFull
		return
	}

	err = queue.fs.MkdirAll(filepath.Dir(queue.path), 0700)
	if err != nil {
		queue.Metrics.AppendFails.Add(1)
		err = fmt.Errorf("failed to create queue directory: %w", err)
		return
	}

	file, err := queue.fs.OpenFile(queue.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		queue.Metrics.AppendFails.Add(1)
		err = fmt.Errorf("failed to open queue file: %w", err)
		return
	}
	defer file.Close()

	entry := make([]byte, 0, len(line)+1)
	entry = append(entry, line...)
	entry = append(entry, '\n')

	_, err = file.Write(entry)
	if err != nil {
		queue.Metrics.AppendFails.Add(1)
		err = fmt.Errorf("failed to write queue entry: %w", err)
		return
	}

	queue.Metrics.Appended.Add(1)
	queue.drainPending.Store(true)
	return
}

// Discards an over-cap backlog. Returns whether a drain is pending afterwards.
func (queue *Queue) CheckSize() (drainPending bool) {
	if queue.fs == nil {
		return
	}

	size := queue.Size()
	if size > queue.maxBytes {
		err := queue.fs.Remove(queue.path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			queue.Metrics.Truncations.Add(1)
			queue.Metrics.DroppedBytes.Add(uint64(size))
			size = 0
		}
	}

	queue.drainPending.Store(size > 0)
	drainPending = size > 0
	return
}

// Replays queued lines oldest first through send, patching the host placeholder with host.
// Stops at the first failure and keeps that line and the rest for the next drain.
// The file is removed only after every line was sent.
func (queue *Queue) Drain(ctx context.Context, send func(line []byte) error, host string, delay time.Duration) (replayed int, err error) {
	if queue.fs == nil {
		return
	}

	content, err := afero.ReadFile(queue.fs, queue.path)
	if errors.Is(err, fs.ErrNotExist) {
		err = nil
		queue.drainPending.Store(false)
		return
	}
	if err != nil {
		err = fmt.Errorf("failed to read queue file: %w", err)
		return
	}

	lines := bytes.Split(content, []byte{'\n'})
	for index, line := range lines {
		line = protocol.StripTerminators(line)
		if len(line) == 0 {
			continue
		}

		if replayed > 0 && delay > 0 {
			err = sleepContext(ctx, delay)
			if err != nil {
				queue.keep(lines[index:])
				return
			}
		}

		line, _ = protocol.ReplaceHost(line, global.HostPlaceholder, host)

		err = send(line)
		if err != nil {
			queue.Metrics.DrainFails.Add(1)
			keepErr := queue.keep(lines[index:])
			if keepErr != nil {
				err = errors.Join(err, keepErr)
			}
			err = fmt.Errorf("drain stopped after %d lines: %w", replayed, err)
			return
		}
		replayed++
		queue.Metrics.Replayed.Add(1)
	}

	err = queue.fs.Remove(queue.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		err = fmt.Errorf("failed to remove drained queue file: %w", err)
		return
	}
	err = nil
	queue.drainPending.Store(false)
	return
}

// Rewrites the file with the lines still to be sent
func (queue *Queue) keep(remaining [][]byte) (err error) {
	var buf bytes.Buffer
	for _, line := range remaining {
		line = protocol.StripTerminators(line)
		if len(line) == 0 {
			continue
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	err = afero.WriteFile(queue.fs, queue.path, buf.Bytes(), 0600)
	if err != nil {
		err = fmt.Errorf("failed to rewrite queue file: %w", err)
	}
	return
}

func sleepContext(ctx context.Context, delay time.Duration) (err error) {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case <-timer.C:
	}
	return
}
