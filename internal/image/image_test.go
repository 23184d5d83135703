package image

import (
	"errors"
	"testing"
)

func TestNewAndWrap(t *testing.T) {
	if _, err := New(0, 10, ARGB); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("New(0, 10) error = %v, want ErrInvalidSize", err)
	}
	if _, err := Wrap(make([]uint32, 10), 4, 4, 4, ARGB, true); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("Wrap short error = %v, want ErrShortBuffer", err)
	}
	if _, err := Wrap(make([]uint32, 16), 4, 4, 3, ARGB, true); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Wrap stride<w error = %v, want ErrInvalidSize", err)
	}
	img, err := Wrap(make([]uint32, 8*3), 5, 3, 8, ABGR, false)
	if err != nil {
		t.Fatal(err)
	}
	img.Set(4, 2, 0xff010203)
	if got := img.Pix[2*8+4]; got != 0xff010203 {
		t.Errorf("Set wrote %#08x at stride offset", got)
	}
	if got := img.At(5, 0); got != 0 {
		t.Errorf("At outside = %#08x, want 0", got)
	}
}

func TestPremul(t *testing.T) {
	tests := []struct {
		in, want uint32
	}{
		{0xffff8000, 0xffff8000},
		{0x00ffffff, 0},
		{0x80ff0000, 0x80800000},
		{0x80ffffff, 0x80808080},
	}
	for _, tt := range tests {
		if got := Premul(tt.in); got != tt.want {
			t.Errorf("Premul(%#08x) = %#08x, want %#08x", tt.in, got, tt.want)
		}
	}
}

func TestUnpremulRoundTrip(t *testing.T) {
	for _, p := range []uint32{0xff123456, 0x80ff0000, 0x80ffffff, 0x40ff8000} {
		got := Premul(Unpremul(Premul(p)))
		if got != Premul(p) {
			t.Errorf("round trip of %#08x = %#08x, want %#08x", p, got, Premul(p))
		}
	}
	if Unpremul(0x80808080) != 0x80ffffff {
		t.Errorf("Unpremul(0x80808080) = %#08x", Unpremul(0x80808080))
	}
}

func TestSwizzle(t *testing.T) {
	if got := Swizzle(0x11223344); got != 0x11443322 {
		t.Errorf("Swizzle = %#08x, want 0x11443322", got)
	}
	img, _ := New(2, 1, ARGB)
	img.Pix[0] = 0xffff0000
	img.ConvertOrder(ABGR)
	if img.Pix[0] != 0xff0000ff || img.Order != ABGR {
		t.Errorf("ConvertOrder gave %#08x %v", img.Pix[0], img.Order)
	}
}

func TestLuma(t *testing.T) {
	if got := Luma(0xffffffff, ARGB); got != 255 {
		t.Errorf("white luma = %d", got)
	}
	if got := Luma(0xff000000, ARGB); got != 0 {
		t.Errorf("black luma = %d", got)
	}
	if Luma(0xffff0000, ARGB) != Luma(0xff0000ff, ABGR) {
		t.Error("luma should not depend on channel order")
	}
}

func TestSample(t *testing.T) {
	img, _ := New(2, 2, ARGB)
	img.Pix = []uint32{0xff000000, 0xffffffff, 0xff000000, 0xffffffff}

	if got := img.Sample(0.5, 0.5, Nearest); got != 0xff000000 {
		t.Errorf("nearest = %#08x", got)
	}
	if got := img.Sample(1.5, 1.5, Bilinear); got != 0xffffffff {
		t.Errorf("bilinear at pixel center = %#08x", got)
	}
	if got := img.Sample(1.0, 0.5, Bilinear); got>>24 != 0xff || got&0xff < 120 || got&0xff > 135 {
		t.Errorf("bilinear midpoint = %#08x, want mid gray", got)
	}
	if got := img.Sample(-0.1, 0.5, Bilinear); got != 0 {
		t.Errorf("outside sample = %#08x, want 0", got)
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(0, 0xffffffff, 255); got != 0xffffffff {
		t.Errorf("Lerp t=255 = %#08x", got)
	}
	if got := Lerp(0x12345678, 0xffffffff, 0); got != 0x12345678 {
		t.Errorf("Lerp t=0 = %#08x", got)
	}
}

func TestMipmaps(t *testing.T) {
	src, _ := New(8, 4, ARGB)
	for i := range src.Pix {
		src.Pix[i] = 0xffffffff
	}
	pool := NewPool(4)
	m := GenerateMipmaps(src, pool)
	if m.NumLevels() != 4 {
		t.Fatalf("NumLevels = %d, want 4", m.NumLevels())
	}
	if l := m.Level(1); l.W != 4 || l.H != 2 || l.Pix[0] != 0xffffffff {
		t.Errorf("level 1 = %dx%d %#08x", l.W, l.H, l.Pix[0])
	}
	if l := m.Level(3); l.W != 1 || l.H != 1 {
		t.Errorf("level 3 = %dx%d, want 1x1", l.W, l.H)
	}
	if l, f := m.LevelForScale(0.3); l != m.Level(1) || f != 2 {
		t.Errorf("LevelForScale(0.3) = level with factor %d", f)
	}
	if l, f := m.LevelForScale(1); l != src || f != 1 {
		t.Error("LevelForScale(1) should return the source")
	}
	m.Release(pool)
	if pool.Len() != 3 {
		t.Errorf("pool holds %d images, want 3", pool.Len())
	}
}

func TestPoolReuse(t *testing.T) {
	p := NewPool(1)
	a := p.Get(3, 3)
	a.Pix[0] = 0xffffffff
	p.Put(a)
	extra, _ := New(3, 3, ARGB)
	p.Put(extra)
	if p.Len() != 1 {
		t.Errorf("pool holds %d images, want 1", p.Len())
	}
	b := p.Get(3, 3)
	if b != a {
		t.Error("expected pooled image to be reused")
	}
	if b.Pix[0] != 0 {
		t.Error("reused image was not cleared")
	}
	var nilPool *Pool
	if img := nilPool.Get(2, 2); img == nil || img.W != 2 {
		t.Error("nil pool should allocate")
	}
}
