package image

import "sync"

// Pool reuses tightly packed premultiplied images grouped by size.
//
// Thread safety: All methods are safe for concurrent use. A nil *Pool
// allocates on Get and discards on Put.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*Image
	maxSize int
}

type poolKey struct {
	w, h int
}

// NewPool creates a pool retaining at most maxPerBucket images of each
// size. Zero means unlimited.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*Image),
		maxSize: maxPerBucket,
	}
}

// Get returns a cleared w x h image.
func (p *Pool) Get(w, h int) *Image {
	w, h = max(w, 1), max(h, 1)
	if p != nil {
		key := poolKey{w, h}
		p.mu.Lock()
		bucket := p.buckets[key]
		if n := len(bucket); n > 0 {
			img := bucket[n-1]
			p.buckets[key] = bucket[:n-1]
			p.mu.Unlock()
			clear(img.Pix)
			img.Order, img.Premultiplied = ARGB, true
			return img
		}
		p.mu.Unlock()
	}
	img, _ := New(w, h, ARGB)
	return img
}

// Put returns img to the pool. Images that do not own a tightly packed
// buffer are dropped.
func (p *Pool) Put(img *Image) {
	if p == nil || img == nil || img.Stride != img.W || len(img.Pix) != img.W*img.H {
		return
	}
	key := poolKey{img.W, img.H}
	p.mu.Lock()
	defer p.mu.Unlock()
	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, img)
}

// Len returns the number of pooled images.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.buckets {
		n += len(b)
	}
	return n
}
