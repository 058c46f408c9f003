package procsandbox

import (
	"bytes"
	"sync"
)

// cappedBuffer retains at most max bytes of what is written to it and
// keeps accepting writes afterwards, so a child that produces more
// output than the cap never blocks on a full pipe.
type cappedBuffer struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	max       int64
	truncated bool
}

func newCappedBuffer(max int64) *cappedBuffer {
	return &cappedBuffer{max: max}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	remain := b.max - int64(b.buf.Len())
	switch {
	case remain <= 0:
		if len(p) > 0 {
			b.truncated = true
		}
	case int64(len(p)) > remain:
		b.buf.Write(p[:remain])
		b.truncated = true
	default:
		b.buf.Write(p)
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *cappedBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.truncated
}
