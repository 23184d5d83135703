package sw

import (
	"errors"
	"testing"

	"github.com/gogpu/tvg/internal/blend"
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/image"
	"github.com/gogpu/tvg/internal/path"
	"github.com/gogpu/tvg/internal/raster"
	"github.com/gogpu/tvg/internal/render"
	"github.com/gogpu/tvg/internal/stroke"
)

// =============================================================================
// Helpers
// =============================================================================

func newTarget(t *testing.T, threads, w, h int) (*Renderer, []uint32) {
	t.Helper()
	r := NewRenderer(Options{Threads: threads, Wide: true})
	t.Cleanup(r.Close)
	buf := make([]uint32, w*h)
	if err := r.SetTarget(buf, w, w, h, ARGB8888); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	return r, buf
}

func rectShape(x, y, w, h float32, c render.Color) render.Shape {
	var p path.Path
	p.AppendRect(x, y, w, h, 0, 0)
	return render.Shape{Path: p, Color: c, Trim: path.NoTrim}
}

func draw(t *testing.T, r *Renderer, shapes ...render.Shape) {
	t.Helper()
	if err := r.PreRender(false); err != nil {
		t.Fatalf("PreRender: %v", err)
	}
	var data []*ShapeData
	for _, s := range shapes {
		data = append(data, r.PrepareShape(nil, s, geom.Identity(), 255, nil, render.UpdateAll, false))
	}
	for _, d := range data {
		r.RenderShape(d, blend.Normal)
	}
	r.PostRender()
	if errs := r.Sync(); len(errs) > 0 {
		t.Fatalf("Sync: %v", errs[0].Err)
	}
}

// =============================================================================
// Target Tests
// =============================================================================

func TestSetTargetValidation(t *testing.T) {
	r := NewRenderer(Options{})
	defer r.Close()

	tests := []struct {
		name            string
		n, stride, w, h int
		cs              ColorSpace
	}{
		{"zero width", 100, 10, 0, 10, ARGB8888},
		{"stride below width", 100, 5, 10, 10, ARGB8888},
		{"short buffer", 50, 10, 10, 10, ARGB8888},
		{"gray on 32-bit", 100, 10, 10, 10, Grayscale8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.SetTarget(make([]uint32, tt.n), tt.stride, tt.w, tt.h, tt.cs)
			if !errors.Is(err, ErrInvalidTarget) {
				t.Errorf("SetTarget() = %v, want ErrInvalidTarget", err)
			}
		})
	}
	if err := r.PreRender(false); !errors.Is(err, ErrNoTarget) {
		t.Errorf("PreRender without target = %v, want ErrNoTarget", err)
	}
}

func TestColorSpaceString(t *testing.T) {
	if ARGB8888S.String() != "ARGB8888S" || ColorSpace(99).String() != "Unknown" {
		t.Errorf("unexpected names %q %q", ARGB8888S, ColorSpace(99))
	}
	if ABGR8888.Order() != image.ABGR || ARGB8888S.Order() != image.ARGB {
		t.Error("unexpected channel order")
	}
}

// =============================================================================
// Shape Tests
// =============================================================================

func TestRenderRect(t *testing.T) {
	r, buf := newTarget(t, 2, 100, 100)
	draw(t, r, rectShape(10, 10, 30, 40, render.Color{R: 255, A: 255}))

	for y := range 100 {
		for x := range 100 {
			want := uint32(0)
			if x >= 10 && x < 40 && y >= 10 && y < 50 {
				want = 0xffff0000
			}
			if got := buf[y*100+x]; got != want {
				t.Fatalf("pixel (%d,%d) = %#08x, want %#08x", x, y, got, want)
			}
		}
	}
}

func TestRenderABGR(t *testing.T) {
	r := NewRenderer(Options{})
	defer r.Close()
	buf := make([]uint32, 16)
	if err := r.SetTarget(buf, 4, 4, 4, ABGR8888); err != nil {
		t.Fatal(err)
	}
	draw(t, r, rectShape(0, 0, 4, 4, render.Color{R: 255, A: 255}))
	if buf[5] != 0xff0000ff {
		t.Errorf("pixel = %#08x, want %#08x", buf[5], uint32(0xff0000ff))
	}
}

func TestRenderStroke(t *testing.T) {
	r, buf := newTarget(t, 0, 40, 40)
	s := rectShape(10, 10, 20, 20, render.Color{})
	s.Stroke = &render.Stroke{Width: 2, Color: render.Color{B: 255, A: 255}, Cap: stroke.CapButt, Join: stroke.JoinMiter, MiterLimit: 4}
	draw(t, r, s)

	if got := buf[10*40+20]; got != 0xff0000ff {
		t.Errorf("stroke pixel = %#08x, want opaque blue", got)
	}
	if got := buf[20*40+20]; got != 0 {
		t.Errorf("interior pixel = %#08x, want untouched", got)
	}
}

func TestStrokeFirstOrder(t *testing.T) {
	r, buf := newTarget(t, 0, 40, 40)
	s := rectShape(10, 10, 20, 20, render.Color{R: 255, A: 255})
	s.Stroke = &render.Stroke{Width: 4, Color: render.Color{B: 255, A: 255}, Join: stroke.JoinMiter, MiterLimit: 4, StrokeFirst: true}
	draw(t, r, s)

	// The fill covers the inner half of the stroke.
	if got := buf[11*40+20]; got != 0xffff0000 {
		t.Errorf("inner stroke pixel = %#08x, want fill on top", got)
	}
	if got := buf[9*40+20]; got != 0xff0000ff {
		t.Errorf("outer stroke pixel = %#08x, want stroke", got)
	}
}

func TestZeroOpacitySkipsShape(t *testing.T) {
	r, buf := newTarget(t, 0, 10, 10)
	r.PreRender(false)
	d := r.PrepareShape(nil, rectShape(0, 0, 10, 10, render.Color{R: 255, A: 255}), geom.Identity(), 0, nil, render.UpdateAll, false)
	r.RenderShape(d, blend.Normal)
	r.PostRender()
	r.Sync()
	for i, p := range buf {
		if p != 0 {
			t.Fatalf("pixel %d = %#08x, want untouched", i, p)
		}
	}
}

func TestGradientMidpoint(t *testing.T) {
	r, buf := newTarget(t, 0, 100, 10)
	s := rectShape(0, 0, 100, 10, render.Color{})
	s.Fill = &render.Gradient{
		Kind: render.Linear, X1: 0, Y1: 0, X2: 100, Y2: 0,
		Stops: []render.Stop{
			{Offset: 0, Color: render.Color{R: 255, A: 255}},
			{Offset: 1, Color: render.Color{B: 255, A: 255}},
		},
		Transform: geom.Identity(),
	}
	draw(t, r, s)

	a, red, _, blue := blend.Unpack(buf[5*100+50])
	if a != 255 || absDiff(red, 128) > 2 || absDiff(blue, 128) > 2 {
		t.Errorf("pixel at x=50 = %#08x, want about (128, 0, 128, 255)", buf[5*100+50])
	}
}

func TestGradientSingleStop(t *testing.T) {
	r, buf := newTarget(t, 0, 10, 10)
	s := rectShape(0, 0, 10, 10, render.Color{})
	s.Fill = &render.Gradient{
		Kind: render.Radial, CX: 5, CY: 5, R: 5,
		Stops:     []render.Stop{{Offset: 0.3, Color: render.Color{G: 255, A: 255}}},
		Transform: geom.Identity(),
	}
	draw(t, r, s)
	for i, p := range buf {
		if p != 0xff00ff00 {
			t.Fatalf("pixel %d = %#08x, want solid green", i, p)
		}
	}
}

func TestSpread(t *testing.T) {
	g := &gradient{}
	for i := range g.lut {
		g.lut[i] = uint32(i)
	}
	tests := []struct {
		spread render.Spread
		t      float32
		want   uint32
	}{
		{render.Pad, -0.5, 0},
		{render.Pad, 1.5, lutSize - 1},
		{render.Repeat, 1.25, 256},
		{render.Reflect, 1.25, 767},
		{render.Reflect, -0.25, 256},
	}
	for _, tt := range tests {
		g.spread = tt.spread
		if got := g.at(tt.t); got != tt.want {
			t.Errorf("%v at(%v) = %d, want %d", tt.spread, tt.t, got, tt.want)
		}
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// =============================================================================
// Clip and Layer Tests
// =============================================================================

func TestClipFastPath(t *testing.T) {
	r, buf := newTarget(t, 2, 20, 20)
	r.PreRender(false)
	clip := r.PrepareShape(nil, rectShape(0, 0, 10, 20, render.Color{}), geom.Identity(), 255, nil, render.UpdateAll, true)
	d := r.PrepareShape(nil, rectShape(0, 0, 20, 20, render.Color{R: 255, A: 255}), geom.Identity(), 255, []*ShapeData{clip}, render.UpdateAll, false)
	r.RenderShape(d, blend.Normal)
	r.PostRender()
	r.Sync()

	if buf[5*20+5] != 0xffff0000 {
		t.Errorf("inside clip = %#08x, want red", buf[5*20+5])
	}
	if buf[5*20+15] != 0 {
		t.Errorf("outside clip = %#08x, want untouched", buf[5*20+15])
	}
}

func TestAlphaMaskLayer(t *testing.T) {
	r, buf := newTarget(t, 0, 20, 20)
	for i := range buf {
		buf[i] = 0xffffffff
	}
	r.PreRender(false)
	paint := r.PrepareShape(nil, rectShape(0, 0, 20, 20, render.Color{R: 255, A: 255}), geom.Identity(), 255, nil, render.UpdateAll, false)
	mask := r.PrepareShape(nil, rectShape(0, 0, 10, 20, render.Color{A: 255}), geom.Identity(), 255, nil, render.UpdateAll, false)

	region := r.ShapeRegion(paint)
	pl, err := r.BeginLayer(region)
	if err != nil {
		t.Fatal(err)
	}
	r.RenderShape(paint, blend.Normal)
	r.EndLayer(pl)
	ml, err := r.BeginLayer(region)
	if err != nil {
		t.Fatal(err)
	}
	r.RenderShape(mask, blend.Normal)
	r.EndLayer(ml)
	r.Mask(pl, ml, render.MaskAlpha)
	r.Composite(pl, 255, blend.Normal)
	r.ReleaseLayer(ml)
	r.ReleaseLayer(pl)
	r.PostRender()
	r.Sync()

	if buf[5*20+5] != 0xffff0000 {
		t.Errorf("masked-in pixel = %#08x, want red", buf[5*20+5])
	}
	if buf[5*20+15] != 0xffffffff {
		t.Errorf("masked-out pixel = %#08x, want white", buf[5*20+15])
	}
}

func TestMaskCombiners(t *testing.T) {
	const (
		s = 0xff800000
		d = 0x80008000
	)
	tests := []struct {
		method render.MaskMethod
		s, d   uint32
		want   uint32
	}{
		{render.MaskAlpha, s, 0xff000000, s},
		{render.MaskAlpha, s, 0, 0},
		{render.MaskInvAlpha, s, 0, s},
		{render.MaskInvAlpha, s, 0xff000000, 0},
		{render.MaskLuma, s, 0xffffffff, s},
		{render.MaskInvLuma, s, 0xffffffff, 0},
		{render.MaskAdd, 0, d, d},
		{render.MaskSubtract, s, d, 0},
		{render.MaskSubtract, 0, d, d},
		{render.MaskIntersect, 0, d, 0},
		{render.MaskIntersect, s, d, d},
		{render.MaskDifference, s, 0, s},
		{render.MaskDifference, s, 0xff000000, 0},
		{render.MaskLighten, s, d, s},
		{render.MaskDarken, s, d, d},
	}
	for _, tt := range tests {
		f := maskCombiner(tt.method, image.ARGB)
		if got := f(tt.s, tt.d); got != tt.want {
			t.Errorf("%v(%#08x, %#08x) = %#08x, want %#08x", tt.method, tt.s, tt.d, got, tt.want)
		}
	}
	if maskCombiner(render.MaskNone, image.ARGB) != nil {
		t.Error("MaskNone should have no combiner")
	}
}

func TestBeginLayerClipsToViewport(t *testing.T) {
	r, _ := newTarget(t, 0, 20, 20)
	r.SetViewport(geom.Region{X: 5, Y: 5, W: 10, H: 10})
	l, err := r.BeginLayer(geom.Region{W: 100, H: 100})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := l.Region(), (geom.Region{X: 5, Y: 5, W: 10, H: 10}); got != want {
		t.Errorf("layer region = %v, want %v", got, want)
	}
	r.ReleaseLayer(l)
	if len(r.layers) != 0 {
		t.Error("ReleaseLayer should pop an open layer")
	}
}

// =============================================================================
// Color Space Tests
// =============================================================================

func TestGrayscaleTarget(t *testing.T) {
	r := NewRenderer(Options{})
	defer r.Close()
	buf := make([]uint8, 10*10)
	if err := r.SetTarget8(buf, 10, 10, 10); err != nil {
		t.Fatal(err)
	}
	draw(t, r, rectShape(0, 0, 5, 10, render.Color{R: 255, A: 200}))
	if buf[3] != 200 || buf[7] != 0 {
		t.Errorf("gray pixels = %d, %d, want 200, 0", buf[3], buf[7])
	}
}

func TestStraightAlphaTarget(t *testing.T) {
	r := NewRenderer(Options{})
	defer r.Close()
	buf := make([]uint32, 4*4)
	if err := r.SetTarget(buf, 4, 4, 4, ARGB8888S); err != nil {
		t.Fatal(err)
	}
	draw(t, r, rectShape(0, 0, 4, 4, render.Color{R: 255, A: 128}))
	a, red, _, _ := blend.Unpack(buf[5])
	if a != 128 || red < 253 {
		t.Errorf("straight pixel = %#08x, want red 255 at alpha 128", buf[5])
	}
}

func TestViewportLimitsDrawing(t *testing.T) {
	r, buf := newTarget(t, 0, 10, 10)
	r.SetViewport(geom.Region{X: 0, Y: 0, W: 5, H: 10})
	draw(t, r, rectShape(0, 0, 10, 10, render.Color{R: 255, A: 255}))
	if buf[2] != 0xffff0000 || buf[7] != 0 {
		t.Errorf("pixels = %#08x, %#08x, want red then untouched", buf[2], buf[7])
	}
}

// =============================================================================
// Image Tests
// =============================================================================

func TestRenderImageNearest(t *testing.T) {
	r, buf := newTarget(t, 0, 10, 10)
	img, _ := image.New(2, 2, image.ARGB)
	img.Pix = []uint32{0xffff0000, 0xff00ff00, 0xff0000ff, 0xffffffff}

	r.PreRender(false)
	d := r.PrepareImage(nil, img, nil, geom.Translation(3, 3), 255, nil, render.UpdateAll)
	r.RenderImage(d, blend.Normal)
	r.PostRender()
	r.Sync()

	want := map[[2]int]uint32{{3, 3}: 0xffff0000, {4, 3}: 0xff00ff00, {3, 4}: 0xff0000ff, {4, 4}: 0xffffffff, {5, 5}: 0}
	for p, w := range want {
		if got := buf[p[1]*10+p[0]]; got != w {
			t.Errorf("pixel %v = %#08x, want %#08x", p, got, w)
		}
	}
	if got := r.ImageRegion(d); got != (geom.Region{X: 3, Y: 3, W: 2, H: 2}) {
		t.Errorf("ImageRegion = %v", got)
	}
	r.ReleaseImage(d)
}

func TestRenderImageMesh(t *testing.T) {
	r, buf := newTarget(t, 0, 10, 10)
	img, _ := image.New(10, 10, image.ARGB)
	for i := range img.Pix {
		img.Pix[i] = 0xff00ff00
	}
	// One triangle covering the upper-left half.
	mesh := []render.Triangle{{
		{Pt: geom.Pt(0, 0), UV: geom.Pt(0, 0)},
		{Pt: geom.Pt(10, 0), UV: geom.Pt(10, 0)},
		{Pt: geom.Pt(0, 10), UV: geom.Pt(0, 10)},
	}}
	r.PreRender(false)
	d := r.PrepareImage(nil, img, mesh, geom.Identity(), 255, nil, render.UpdateAll)
	r.RenderImage(d, blend.Normal)
	r.PostRender()
	r.Sync()

	if buf[1*10+1] != 0xff00ff00 {
		t.Errorf("inside mesh = %#08x, want green", buf[11])
	}
	if buf[9*10+9] != 0 {
		t.Errorf("outside mesh = %#08x, want untouched", buf[99])
	}
}

func TestRenderImageDownscaled(t *testing.T) {
	r, buf := newTarget(t, 0, 10, 10)
	img, _ := image.New(40, 40, image.ARGB)
	for i := range img.Pix {
		img.Pix[i] = 0xff0000ff
	}
	r.PreRender(false)
	d := r.PrepareImage(nil, img, nil, geom.Scaling(0.25, 0.25), 255, nil, render.UpdateAll)
	r.RenderImage(d, blend.Normal)
	r.PostRender()
	r.Sync()
	if buf[5*10+5] != 0xff0000ff {
		t.Errorf("downscaled pixel = %#08x, want blue", buf[55])
	}
	if d.mips.NumLevels() < 2 {
		t.Error("downscaled draw should build mip levels")
	}
	r.ReleaseImage(d)
}

// =============================================================================
// Task and Mempool Tests
// =============================================================================

func TestThreadedMatchesInline(t *testing.T) {
	render1 := func(threads int) []uint32 {
		r, buf := newTarget(t, threads, 64, 64)
		var shapes []render.Shape
		for i := range 200 {
			f := float32(i % 50)
			shapes = append(shapes, rectShape(f, f*0.7, 13.3, 7.1, render.Color{R: uint8(i), G: uint8(i * 3), B: 90, A: uint8(80 + i%170)}))
		}
		draw(t, r, shapes...)
		return buf
	}
	a, b := render1(0), render1(4)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pixel %d differs: %#08x vs %#08x", i, a[i], b[i])
		}
	}
}

func TestSyncIdempotent(t *testing.T) {
	r, _ := newTarget(t, 2, 10, 10)
	r.PrepareShape(nil, rectShape(0, 0, 5, 5, render.Color{A: 255}), geom.Identity(), 255, nil, render.UpdateAll, false)
	r.Sync()
	if errs := r.Sync(); len(errs) != 0 {
		t.Errorf("second Sync returned %d errors", len(errs))
	}
}

func TestRecoveredRecordsPanic(t *testing.T) {
	var p prepared
	func() {
		defer p.recovered("test")
		panic("boom")
	}()
	if !errors.Is(p.err, ErrPrepare) {
		t.Errorf("err = %v, want ErrPrepare", p.err)
	}
}

func TestReprepareColorOnly(t *testing.T) {
	r, buf := newTarget(t, 0, 10, 10)
	s := rectShape(0, 0, 10, 10, render.Color{R: 255, A: 255})
	d := r.PrepareShape(nil, s, geom.Identity(), 255, nil, render.UpdateAll, false)
	r.Sync()
	fill := d.fill

	s.Color = render.Color{G: 255, A: 255}
	d = r.PrepareShape(d, s, geom.Identity(), 255, nil, render.UpdateColor, false)
	r.PreRender(false)
	r.RenderShape(d, blend.Normal)
	r.PostRender()
	r.Sync()
	if d.fill != fill {
		t.Error("color-only update should reuse coverage")
	}
	if buf[0] != 0xff00ff00 {
		t.Errorf("pixel = %#08x, want green", buf[0])
	}
}

type countingAllocator struct {
	allocs, frees int
}

func (a *countingAllocator) Alloc(n int) ([]uint32, error) {
	a.allocs++
	return make([]uint32, n), nil
}

func (a *countingAllocator) Free([]uint32) { a.frees++ }

type failingAllocator struct{}

func (failingAllocator) Alloc(int) ([]uint32, error) { return nil, ErrAllocation }
func (failingAllocator) Free([]uint32)               {}

func TestMempoolPolicies(t *testing.T) {
	tests := []struct {
		policy     MempoolPolicy
		wantAllocs int
		wantFrees  int
	}{
		{MempoolDefault, 1, 0},
		{MempoolIndividual, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			a := &countingAllocator{}
			m := newMempool(tt.policy, a)
			for range 3 {
				buf, err := m.get(64)
				if err != nil {
					t.Fatal(err)
				}
				buf[0] = 7
				m.put(buf)
			}
			if a.allocs != tt.wantAllocs || a.frees != tt.wantFrees {
				t.Errorf("allocs, frees = %d, %d, want %d, %d", a.allocs, a.frees, tt.wantAllocs, tt.wantFrees)
			}
			buf, _ := m.get(16)
			if buf[0] != 0 {
				t.Error("reused buffer should be cleared")
			}
			m.put(buf)
			m.release()
		})
	}
}

func TestMempoolAllocationFailure(t *testing.T) {
	r := NewRenderer(Options{Allocator: failingAllocator{}})
	defer r.Close()
	buf := make([]uint32, 100)
	if err := r.SetTarget(buf, 10, 10, 10, ARGB8888); err != nil {
		t.Fatal(err)
	}
	if _, err := r.BeginLayer(geom.Region{W: 10, H: 10}); !errors.Is(err, ErrAllocation) {
		t.Errorf("BeginLayer() = %v, want ErrAllocation", err)
	}
	if MempoolPolicy(9).String() != "Unknown" {
		t.Error("unknown policy name")
	}
}

func TestKernelWideMatchesScalar(t *testing.T) {
	rle := raster.Rect(geom.Region{W: 40, H: 3})
	for _, color := range []uint32{0x80402010, 0x20100804} {
		var out [2][]uint32
		for i, w := range []bool{false, true} {
			k := kernel{wide: w}
			s := surface{buf: make([]uint32, 120), stride: 40, region: geom.Region{W: 40, H: 3}}
			for j := range s.buf {
				v := uint32(j % 256)
				s.buf[j] = 0xff000000 | v<<16 | v<<8 | v
			}
			k.draw(&s, rle, paintSource{color: color})
			out[i] = s.buf
		}
		for j := range out[0] {
			if out[0][j] != out[1][j] {
				t.Fatalf("color %#08x pixel %d: scalar %#08x, wide %#08x", color, j, out[0][j], out[1][j])
			}
		}
	}
}
