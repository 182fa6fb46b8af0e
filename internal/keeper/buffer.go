package keeper

import (
	"sync"
	"time"
)

// Buffer is the cached clipboard payload. It only ever holds nothing or a
// complete payload; readers never observe a partial transfer.
type Buffer struct {
	mu      sync.Mutex
	data    []byte
	updated time.Time
}

// Bytes returns a copy of the cached payload, or nil when empty.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.data) == 0 {
		return nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Len returns the size of the cached payload.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Replace swaps in data as the new payload. The buffer takes ownership of
// data; callers must not modify it afterwards.
func (b *Buffer) Replace(data []byte) {
	b.mu.Lock()
	b.data = data
	b.updated = time.Now()
	b.mu.Unlock()
}

// Clear drops the cached payload.
func (b *Buffer) Clear() { b.Replace(nil) }

// Updated reports when the payload was last replaced or cleared.
func (b *Buffer) Updated() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updated
}
