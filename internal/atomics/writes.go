// Helper functions that deal with atomic counters
package atomics

import (
	"sync/atomic"
)

// Raises target to candidate if candidate is larger. Returns true when the value changed.
func StoreMax(target *atomic.Uint64, candidate uint64) (raised bool) {
	for {
		current := target.Load()
		if candidate <= current {
			return
		}
		if target.CompareAndSwap(current, candidate) {
			raised = true
			return
		}
	}
}

// Saturating subtract: the counter never wraps below zero
func Subtract(source *atomic.Uint64, value uint64) (remaining uint64) {
	for {
		current := source.Load()
		next := uint64(0)
		if value < current {
			next = current - value
		}
		if source.CompareAndSwap(current, next) {
			remaining = next
			return
		}
	}
}
