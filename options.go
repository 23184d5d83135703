package tvg

import (
	"runtime"

	"github.com/gogpu/tvg/internal/sw"
)

// Option configures a Canvas during creation.
//
// Example:
//
//	// Synchronous rendering with individually allocated scratch buffers
//	c := tvg.NewCanvas(tvg.WithThreads(0), tvg.WithMempool(tvg.MempoolIndividual))
type Option func(*canvasOptions)

// canvasOptions holds optional configuration for Canvas creation.
type canvasOptions struct {
	threads   int
	allocator Allocator
	mempool   MempoolPolicy
	wide      bool
}

// defaultOptions returns the default canvas options: one worker per CPU
// minus the calling goroutine, the Go heap, the Default mempool and wide
// kernels where the CPU has them.
func defaultOptions() canvasOptions {
	return canvasOptions{
		threads: max(runtime.NumCPU()-1, 0),
		mempool: MempoolDefault,
		wide:    true,
	}
}

// WithThreads sets the number of prepare workers. Zero runs every prepare
// task synchronously on the goroutine that calls Update. Negative values
// are treated as zero.
func WithThreads(n int) Option {
	return func(o *canvasOptions) {
		o.threads = max(n, 0)
	}
}

// WithAllocator routes compositor scratch buffers through a. Nil keeps the
// Go heap.
func WithAllocator(a Allocator) Option {
	return func(o *canvasOptions) {
		o.allocator = a
	}
}

// WithMempool selects how compositor scratch buffers are reused.
func WithMempool(p MempoolPolicy) Option {
	return func(o *canvasOptions) {
		o.mempool = p
	}
}

// WithWideKernels enables or disables the 16-pixel batch fill kernel. It
// is only used when the CPU supports it; output is identical either way.
func WithWideKernels(enabled bool) Option {
	return func(o *canvasOptions) {
		o.wide = enabled
	}
}

// Allocator backs compositor scratch buffers. Alloc returns a zeroed
// buffer of n pixels; Free receives buffers the canvas no longer uses.
type Allocator = sw.Allocator

// MempoolPolicy controls reuse of compositor scratch buffers.
type MempoolPolicy = sw.MempoolPolicy

// Mempool policies.
const (
	// MempoolDefault keeps a per-canvas free list of scratch buffers.
	MempoolDefault = sw.MempoolDefault
	// MempoolShareable keeps one free list shared by every canvas in the
	// process.
	MempoolShareable = sw.MempoolShareable
	// MempoolIndividual allocates a buffer for every compositor frame and
	// frees it when the frame pops.
	MempoolIndividual = sw.MempoolIndividual
)
