package offline

import (
	"errors"
	"sync/atomic"

	"github.com/spf13/afero"
)

var (
	ErrNoPersistence = errors.New("offline persistence not available")
	ErrQueueFull     = errors.New("offline queue at capacity")
)

// Append-only file of wire lines held while the collector is unreachable.
// Not safe for concurrent use; callers hold the pipeline transport lock.
type Queue struct {
	Namespace    []string
	fs           afero.Fs // nil disables persistence
	path         string
	maxBytes     int64
	drainPending atomic.Bool
	Metrics      MetricStorage
}

type MetricStorage struct {
	Appended     atomic.Uint64
	AppendFails  atomic.Uint64
	Replayed     atomic.Uint64
	DrainFails   atomic.Uint64
	Truncations  atomic.Uint64
	DroppedBytes atomic.Uint64
}
