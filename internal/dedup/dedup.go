// Collapses unbroken runs of identical messages into a single summary
package dedup

import (
	"devsyslog/internal/format"
	"fmt"
	"hash/crc32"
	"strings"
)

const initialScratchSize int = 256

func ParseBufferMode(text string) (mode BufferMode, err error) {
	switch BufferMode(strings.ToLower(strings.TrimSpace(text))) {
	case "", BufferShared:
		mode = BufferShared
	case BufferPerCore:
		mode = BufferPerCore
	default:
		err = fmt.Errorf("unknown buffer mode %q (expected shared or per-core)", text)
	}
	return
}

// Creates a deduplicator. cores sizes the per-core scratch buffers and is ignored in shared mode.
func NewDeduplicator(mode BufferMode, cores int) (deduplicator *Deduplicator) {
	deduplicator = &Deduplicator{mode: mode}
	if mode == BufferPerCore {
		if cores < 1 {
			cores = 1
		}
		deduplicator.perCore = make([]*scratch, cores)
		for i := range deduplicator.perCore {
			deduplicator.perCore[i] = &scratch{buf: make([]byte, 0, initialScratchSize)}
		}
	} else {
		deduplicator.mode = BufferShared
		deduplicator.shared = make([]byte, 0, initialScratchSize)
	}
	return
}

// CRC-32 over "task function text"
func fingerprint(buf []byte, event format.Event) (sum uint32, scratchBuf []byte) {
	scratchBuf = buf[:0]
	scratchBuf = append(scratchBuf, event.Task...)
	scratchBuf = append(scratchBuf, ' ')
	scratchBuf = append(scratchBuf, event.Function...)
	scratchBuf = append(scratchBuf, ' ')
	scratchBuf = append(scratchBuf, event.Text...)
	sum = crc32.ChecksumIEEE(scratchBuf)
	return
}

// Decides whether event repeats the held message.
// For a new message, previous carries the outgoing state when it still has suppressed copies to summarise.
func (deduplicator *Deduplicator) Classify(event format.Event) (verdict Verdict, previous State) {
	var sum uint32

	if deduplicator.mode == BufferPerCore {
		slot := deduplicator.perCore[positiveMod(event.Core, len(deduplicator.perCore))]
		slot.mutex.Lock()
		sum, slot.buf = fingerprint(slot.buf, event)
		slot.mutex.Unlock()

		deduplicator.mutex.Lock()
		defer deduplicator.mutex.Unlock()
	} else {
		deduplicator.mutex.Lock()
		defer deduplicator.mutex.Unlock()

		sum, deduplicator.shared = fingerprint(deduplicator.shared, event)
	}

	if deduplicator.held && sum == deduplicator.state.Fingerprint && event.Priority == deduplicator.state.Priority {
		deduplicator.state.Count++
		deduplicator.state.LastMono = event.Mono
		deduplicator.state.LastWall = event.Wall
		verdict = Repeat
		return
	}

	if deduplicator.held && deduplicator.state.Count > 0 {
		previous = deduplicator.state
	}

	deduplicator.held = true
	deduplicator.state = State{
		Fingerprint: sum,
		Priority:    event.Priority,
		FirstMono:   event.Mono,
		LastMono:    event.Mono,
		FirstWall:   event.Wall,
		LastWall:    event.Wall,
		Task:        event.Task,
		Function:    event.Function,
		Core:        event.Core,
	}
	verdict = New
	return
}

// Returns and clears any pending repeat. The next message is treated as new.
func (deduplicator *Deduplicator) Flush() (pending State, ok bool) {
	deduplicator.mutex.Lock()
	defer deduplicator.mutex.Unlock()

	if deduplicator.held && deduplicator.state.Count > 0 {
		pending = deduplicator.state
		ok = true
	}
	deduplicator.held = false
	deduplicator.state = State{}
	return
}

// Number of copies currently suppressed
func (deduplicator *Deduplicator) Pending() (count int) {
	deduplicator.mutex.Lock()
	defer deduplicator.mutex.Unlock()
	count = deduplicator.state.Count
	return
}

func (deduplicator *Deduplicator) Mode() BufferMode {
	return deduplicator.mode
}

func positiveMod(value, modulus int) (result int) {
	result = value % modulus
	if result < 0 {
		result += modulus
	}
	return
}

// Summary event for a pending repeat, stamped with the last occurrence
func (state State) Summary() (event format.Event) {
	event = format.Event{
		Priority: state.Priority,
		Core:     state.Core,
		Task:     state.Task,
		Function: state.Function,
		Mono:     state.LastMono,
		Wall:     state.LastWall,
		Text:     format.RepeatText(state.Count),
	}
	return
}
