package sw

import (
	"errors"
	"fmt"
	"sync"
)

// ErrAllocation is returned when a scratch buffer cannot be obtained.
var ErrAllocation = errors.New("sw: allocation failed")

// Allocator is the seam every scratch buffer of the renderer goes through.
// Free receives buffers previously returned by Alloc.
type Allocator interface {
	Alloc(n int) ([]uint32, error)
	Free(buf []uint32)
}

// HeapAllocator allocates from the Go heap. Free is a no-op.
type HeapAllocator struct{}

// Alloc returns a zeroed buffer of n pixels.
func (HeapAllocator) Alloc(n int) ([]uint32, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d pixels", ErrAllocation, n)
	}
	return make([]uint32, n), nil
}

// Free drops buf.
func (HeapAllocator) Free([]uint32) {}

// MempoolPolicy controls how compositor scratch buffers are reused.
type MempoolPolicy uint8

const (
	// MempoolDefault keeps a free list per renderer.
	MempoolDefault MempoolPolicy = iota

	// MempoolShareable keeps one free list shared by every renderer in the
	// process.
	MempoolShareable

	// MempoolIndividual allocates a buffer for every compositor frame and
	// frees it when the frame pops.
	MempoolIndividual
)

// String returns the policy name.
func (p MempoolPolicy) String() string {
	switch p {
	case MempoolDefault:
		return "Default"
	case MempoolShareable:
		return "Shareable"
	case MempoolIndividual:
		return "Individual"
	default:
		return "Unknown"
	}
}

// maxFree bounds the number of idle buffers a free list keeps.
const maxFree = 8

// freeList is a set of idle buffers.
type freeList struct {
	mu   sync.Mutex
	bufs [][]uint32
}

// take removes the smallest buffer holding at least n pixels.
func (f *freeList) take(n int) []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	best := -1
	for i, b := range f.bufs {
		if cap(b) >= n && (best < 0 || cap(b) < cap(f.bufs[best])) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	buf := f.bufs[best]
	last := len(f.bufs) - 1
	f.bufs[best] = f.bufs[last]
	f.bufs[last] = nil
	f.bufs = f.bufs[:last]
	return buf[:n]
}

// give stores buf and returns a buffer the caller should free, if the list
// overflowed.
func (f *freeList) give(buf []uint32) []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.bufs) < maxFree {
		f.bufs = append(f.bufs, buf)
		return nil
	}
	smallest := 0
	for i, b := range f.bufs {
		if cap(b) < cap(f.bufs[smallest]) {
			smallest = i
		}
	}
	if cap(f.bufs[smallest]) >= cap(buf) {
		return buf
	}
	evicted := f.bufs[smallest]
	f.bufs[smallest] = buf
	return evicted
}

// drain empties the list.
func (f *freeList) drain() [][]uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	bufs := f.bufs
	f.bufs = nil
	return bufs
}

// shared is the process-wide list behind MempoolShareable.
var shared freeList

// mempool hands out compositor scratch buffers. It is used only by the
// goroutine driving the renderer.
type mempool struct {
	policy MempoolPolicy
	alloc  Allocator
	local  freeList
	live   int
}

func newMempool(policy MempoolPolicy, alloc Allocator) *mempool {
	if alloc == nil {
		alloc = HeapAllocator{}
	}
	return &mempool{policy: policy, alloc: alloc}
}

func (m *mempool) list() *freeList {
	switch m.policy {
	case MempoolShareable:
		return &shared
	case MempoolIndividual:
		return nil
	default:
		return &m.local
	}
}

// get returns a zeroed buffer of n pixels.
func (m *mempool) get(n int) ([]uint32, error) {
	if l := m.list(); l != nil {
		if buf := l.take(n); buf != nil {
			clear(buf)
			m.live++
			return buf, nil
		}
	}
	buf, err := m.alloc.Alloc(n)
	if err != nil {
		slogger().Warn("sw: scratch allocation failed", "pixels", n, "err", err)
		return nil, err
	}
	if len(buf) < n {
		m.alloc.Free(buf)
		return nil, fmt.Errorf("%w: allocator returned %d of %d pixels", ErrAllocation, len(buf), n)
	}
	m.live++
	slogger().Debug("sw: scratch allocated", "pixels", n, "policy", m.policy)
	return buf[:n], nil
}

// put returns buf to the pool.
func (m *mempool) put(buf []uint32) {
	if buf == nil {
		return
	}
	m.live--
	l := m.list()
	if l == nil {
		m.alloc.Free(buf)
		return
	}
	if evicted := l.give(buf); evicted != nil {
		m.alloc.Free(evicted)
	}
}

// release frees every idle buffer owned by this pool. The shared list
// outlives individual renderers and is left alone.
func (m *mempool) release() {
	for _, buf := range m.local.drain() {
		m.alloc.Free(buf)
	}
}
