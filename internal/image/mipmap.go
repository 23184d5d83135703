package image

import "math"

// DownScaleTolerance is the scale below which images are sampled from a
// reduced mip level instead of the full image.
const DownScaleTolerance = 0.5

// Mipmaps holds pre-computed downscaled versions of an image. Level 0 is
// the original image and each further level halves both dimensions until
// the larger one reaches 1 pixel.
type Mipmaps struct {
	levels []*Image
}

// GenerateMipmaps builds the chain for src using a 2x2 box filter on
// premultiplied pixels. The source image becomes level 0 and is not copied.
// Returns nil if src is nil.
func GenerateMipmaps(src *Image, pool *Pool) *Mipmaps {
	if src == nil {
		return nil
	}
	n := 1 + int(math.Floor(math.Log2(float64(max(src.W, src.H)))))
	m := &Mipmaps{levels: make([]*Image, n)}
	m.levels[0] = src
	for i := 1; i < n; i++ {
		m.levels[i] = downsample(m.levels[i-1], pool)
	}
	return m
}

// downsample returns a half-size version of src.
func downsample(src *Image, pool *Pool) *Image {
	w, h := max(1, src.W/2), max(1, src.H/2)
	dst := pool.Get(w, h)
	dst.Order, dst.Premultiplied = src.Order, src.Premultiplied
	for dy := range h {
		sy0 := dy * 2
		sy1 := min(sy0+1, src.H-1)
		for dx := range w {
			sx0 := dx * 2
			sx1 := min(sx0+1, src.W-1)
			dst.Pix[dy*dst.Stride+dx] = average4(
				src.Pix[sy0*src.Stride+sx0], src.Pix[sy0*src.Stride+sx1],
				src.Pix[sy1*src.Stride+sx0], src.Pix[sy1*src.Stride+sx1])
		}
	}
	return dst
}

func average4(a, b, c, d uint32) uint32 {
	var out uint32
	for shift := uint(0); shift < 32; shift += 8 {
		s := (a>>shift&0xff + b>>shift&0xff + c>>shift&0xff + d>>shift&0xff + 2) >> 2
		out |= s << shift
	}
	return out
}

// Level returns the image at level n, or nil if n is out of range.
func (m *Mipmaps) Level(n int) *Image {
	if m == nil || n < 0 || n >= len(m.levels) {
		return nil
	}
	return m.levels[n]
}

// NumLevels returns the number of levels in the chain.
func (m *Mipmaps) NumLevels() int {
	if m == nil {
		return 0
	}
	return len(m.levels)
}

// LevelForScale returns the level to sample when drawing at scale and
// the factor by which that level is smaller than the original. The level
// is floor(-log2(scale)) clamped to the chain.
func (m *Mipmaps) LevelForScale(scale float32) (*Image, int) {
	if m == nil || len(m.levels) == 0 {
		return nil, 1
	}
	if scale >= 1 || scale <= 0 {
		return m.levels[0], 1
	}
	level := int(math.Floor(-math.Log2(float64(scale))))
	level = max(0, min(level, len(m.levels)-1))
	return m.levels[level], 1 << level
}

// Release returns every level except the original to the pool. The chain
// must not be used afterwards.
func (m *Mipmaps) Release(pool *Pool) {
	if m == nil {
		return
	}
	for i := 1; i < len(m.levels); i++ {
		pool.Put(m.levels[i])
		m.levels[i] = nil
	}
}
