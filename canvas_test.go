package tvg

import (
	"errors"
	"math/rand/v2"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/tvg/text"
)

// =============================================================================
// Helpers
// =============================================================================

func newCanvas(t *testing.T, w, h int, opts ...Option) (*Canvas, []uint32) {
	t.Helper()
	c := NewCanvas(opts...)
	t.Cleanup(c.Close)
	buf := make([]uint32, w*h)
	if err := c.SetTarget(buf, w, w, h, ARGB8888); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	return c, buf
}

func renderFrame(t *testing.T, c *Canvas) {
	t.Helper()
	if err := c.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := c.Draw(true); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := c.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
}

func rect(x, y, w, h float32, r, g, b, a uint8) *Shape {
	s := NewShape()
	s.AppendRect(x, y, w, h, 0, 0)
	s.SetFillColor(r, g, b, a)
	return s
}

func circle(cx, cy, radius float32, r, g, b, a uint8) *Shape {
	s := NewShape()
	s.AppendCircle(cx, cy, radius, radius)
	s.SetFillColor(r, g, b, a)
	return s
}

func push(t *testing.T, c *Canvas, paints ...Paint) {
	t.Helper()
	for _, p := range paints {
		if err := c.Push(p); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
}

func channels(p uint32) [4]uint8 {
	return [4]uint8{uint8(p >> 24), uint8(p >> 16), uint8(p >> 8), uint8(p)}
}

// =============================================================================
// Scenarios
// =============================================================================

func TestSolidRect(t *testing.T) {
	c, buf := newCanvas(t, 100, 100)
	push(t, c, rect(10, 10, 30, 40, 255, 0, 0, 255))
	renderFrame(t, c)

	for y := range 100 {
		for x := range 100 {
			want := uint32(0)
			if x >= 10 && x < 40 && y >= 10 && y < 50 {
				want = 0xFFFF0000
			}
			if got := buf[y*100+x]; got != want {
				t.Fatalf("pixel (%d,%d) = %#08x, want %#08x", x, y, got, want)
			}
		}
	}
}

func TestTranslucentCircle(t *testing.T) {
	c, buf := newCanvas(t, 100, 100)
	push(t, c, circle(50, 50, 20, 0, 255, 0, 128))
	renderFrame(t, c)

	if got := buf[50*100+50]; got != 0x80008000 {
		t.Errorf("center = %#08x, want 0x80008000", got)
	}
	partial := 0
	for x := 25; x < 35; x++ {
		a := buf[50*100+x] >> 24
		if a > 128 {
			t.Errorf("edge pixel %d alpha = %d, want <= 128", x, a)
		}
		if a > 0 && a < 128 {
			partial++
		}
	}
	if partial == 0 {
		t.Error("no fractional coverage along the circle edge")
	}
}

func TestAlphaMaskHalfCircle(t *testing.T) {
	c, buf := newCanvas(t, 100, 100)
	bg := rect(0, 0, 100, 100, 255, 255, 255, 255)
	fg := circle(50, 50, 20, 255, 0, 0, 255)
	if err := fg.Mask(rect(0, 0, 50, 100, 0, 0, 0, 255), MaskAlpha); err != nil {
		t.Fatalf("Mask: %v", err)
	}
	push(t, c, bg, fg)
	renderFrame(t, c)

	if got := buf[50*100+40]; got != 0xFFFF0000 {
		t.Errorf("left half = %#08x, want 0xFFFF0000", got)
	}
	if got := buf[50*100+60]; got != 0xFFFFFFFF {
		t.Errorf("right half = %#08x, want 0xFFFFFFFF", got)
	}
	if got := buf[5*100+5]; got != 0xFFFFFFFF {
		t.Errorf("background = %#08x, want 0xFFFFFFFF", got)
	}
}

func TestTVGRoundTripRaster(t *testing.T) {
	build := func() *Shape {
		s := NewShape()
		s.MoveTo(10, 80)
		s.CubicTo(20, 10, 60, 10, 90, 70)
		s.LineTo(40, 90)
		s.Close()
		s.SetFillColor(30, 140, 220, 200)
		_ = s.SetStrokeWidth(3)
		s.SetStrokeColor(250, 120, 0, 255)
		_ = s.SetStrokeDash([]float32{12, 4}, 2)
		_ = s.Rotate(8)
		return s
	}
	data, err := Encode(build())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	loaded := NewPicture()
	if err := loaded.LoadData(data, "tvg", false); err != nil {
		t.Fatalf("LoadData: %v", err)
	}

	c1, want := newCanvas(t, 100, 100)
	push(t, c1, build())
	renderFrame(t, c1)
	c2, got := newCanvas(t, 100, 100)
	push(t, c2, loaded)
	renderFrame(t, c2)

	for i := range want {
		a, b := channels(want[i]), channels(got[i])
		for ch := range a {
			if d := int(a[ch]) - int(b[ch]); d > 1 || d < -1 {
				t.Fatalf("pixel %d = %#08x, want %#08x (±1)", i, got[i], want[i])
			}
		}
	}
}

func TestLinearGradientMidpoint(t *testing.T) {
	c, buf := newCanvas(t, 100, 10)
	s := rect(0, 0, 100, 10, 0, 0, 0, 0)
	g := NewLinearGradient()
	if err := g.SetLinear(0, 0, 100, 0); err != nil {
		t.Fatalf("SetLinear: %v", err)
	}
	if err := g.SetColorStops([]ColorStop{
		{Offset: 0, R: 255, A: 255},
		{Offset: 1, B: 255, A: 255},
	}); err != nil {
		t.Fatalf("SetColorStops: %v", err)
	}
	s.SetFill(g)
	push(t, c, s)
	renderFrame(t, c)

	got := channels(buf[5*100+50])
	want := [4]uint8{255, 128, 0, 128}
	for i := range got {
		if d := int(got[i]) - int(want[i]); d > 2 || d < -2 {
			t.Errorf("pixel at x=50 = %v, want %v ±2", got, want)
			break
		}
	}
}

func TestThreadedMatchesSynchronous(t *testing.T) {
	build := func() *Scene {
		rng := rand.New(rand.NewPCG(7, 11))
		sc := NewScene()
		for i := range 1000 {
			var s *Shape
			x, y := rng.Float32()*180, rng.Float32()*180
			col := [4]uint8{uint8(rng.IntN(256)), uint8(rng.IntN(256)), uint8(rng.IntN(256)), uint8(64 + rng.IntN(192))}
			if i%2 == 0 {
				s = rect(x, y, 4+rng.Float32()*30, 4+rng.Float32()*30, col[0], col[1], col[2], col[3])
			} else {
				s = circle(x, y, 2+rng.Float32()*15, col[0], col[1], col[2], col[3])
			}
			if i%5 == 0 {
				_ = s.SetStrokeWidth(1 + rng.Float32()*3)
				s.SetStrokeColor(col[2], col[0], col[1], 255)
			}
			_ = sc.Push(s)
		}
		return sc
	}

	c1, sync := newCanvas(t, 200, 200, WithThreads(0))
	push(t, c1, build())
	renderFrame(t, c1)
	c4, threaded := newCanvas(t, 200, 200, WithThreads(4))
	push(t, c4, build())
	renderFrame(t, c4)

	for i := range sync {
		if sync[i] != threaded[i] {
			t.Fatalf("pixel %d: 4 workers = %#08x, synchronous = %#08x", i, threaded[i], sync[i])
		}
	}
}

// =============================================================================
// Properties
// =============================================================================

type paintState struct {
	m       Matrix
	opacity uint8
	refs    int
	cmds    []PathCommand
	pts     []Point
	color   [4]uint8
	x, y    float32
	w, h    float32
	masked  bool
	kids    int
}

func snapshot(p Paint) paintState {
	st := paintState{m: p.Transform(), opacity: p.Opacity(), refs: p.RefCount()}
	st.x, st.y, st.w, st.h, _ = p.Bounds()
	target, _ := p.MaskTarget()
	st.masked = target != nil
	switch v := p.(type) {
	case *Shape:
		st.cmds, st.pts = v.Path()
		st.color[0], st.color[1], st.color[2], st.color[3] = v.FillColor()
	case *Scene:
		st.kids = len(v.Paints())
	}
	return st
}

func equalState(a, b paintState) bool {
	if a.m != b.m || a.opacity != b.opacity || a.refs != b.refs || a.color != b.color ||
		a.x != b.x || a.y != b.y || a.w != b.w || a.h != b.h || a.masked != b.masked || a.kids != b.kids {
		return false
	}
	if len(a.cmds) != len(b.cmds) || len(a.pts) != len(b.pts) {
		return false
	}
	for i := range a.cmds {
		if a.cmds[i] != b.cmds[i] {
			return false
		}
	}
	for i := range a.pts {
		if a.pts[i] != b.pts[i] {
			return false
		}
	}
	return true
}

func TestFrameLeavesTreeUnchanged(t *testing.T) {
	c, _ := newCanvas(t, 64, 64)
	sc := NewScene()
	sc.SetOpacity(200)
	a := rect(4, 4, 20, 20, 10, 20, 30, 255)
	_ = a.Translate(3, 5)
	b := circle(40, 40, 10, 90, 80, 70, 128)
	_ = b.Clip(rect(30, 30, 12, 12, 0, 0, 0, 255))
	_ = sc.Push(a)
	_ = sc.Push(b)
	push(t, c, sc)

	paints := []Paint{sc, a, b}
	before := make([]paintState, len(paints))
	for i, p := range paints {
		before[i] = snapshot(p)
	}
	renderFrame(t, c)
	for i, p := range paints {
		if after := snapshot(p); !equalState(before[i], after) {
			t.Errorf("paint %d changed by a frame: %+v -> %+v", i, before[i], after)
		}
	}
}

func TestEmptyShapeWritesNothing(t *testing.T) {
	c, buf := newCanvas(t, 32, 32)
	for i := range buf {
		buf[i] = 0x11223344
	}
	s := NewShape()
	s.SetFillColor(255, 0, 0, 255)
	_ = s.SetStrokeWidth(4)
	push(t, c, s)
	if err := c.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := c.Draw(false); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := c.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	for i, p := range buf {
		if p != 0x11223344 {
			t.Fatalf("pixel %d = %#08x, want untouched", i, p)
		}
	}
}

func TestSyncIdempotent(t *testing.T) {
	c, buf := newCanvas(t, 32, 32)
	push(t, c, circle(16, 16, 10, 0, 0, 255, 255))
	if err := c.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := c.Draw(true); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := c.Sync(); err != nil {
		t.Fatalf("first Sync: %v", err)
	}
	want := append([]uint32(nil), buf...)
	if err := c.Sync(); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("pixel %d changed by a second Sync", i)
		}
	}
	if c.state != statePrepared {
		t.Errorf("state = %v, want Prepared", c.state)
	}
}

func TestOpacityMonotonic(t *testing.T) {
	var prev []uint32
	for _, o := range []uint8{0, 40, 128, 200, 255} {
		c, buf := newCanvas(t, 48, 48)
		s := circle(24, 24, 15, 200, 100, 50, 255)
		s.SetOpacity(o)
		push(t, c, s)
		renderFrame(t, c)
		if prev != nil {
			for i := range buf {
				a, b := channels(prev[i]), channels(buf[i])
				for ch := range a {
					if b[ch] < a[ch] {
						t.Fatalf("opacity %d: pixel %d channel %d fell from %d to %d", o, i, ch, a[ch], b[ch])
					}
				}
			}
		}
		prev = buf
	}
}

func TestClipMatchesUnclipped(t *testing.T) {
	build := func(clip bool) []Paint {
		a := circle(40, 40, 25, 200, 30, 30, 255)
		b := rect(10, 35, 70, 20, 30, 30, 200, 160)
		_ = b.SetStrokeWidth(3)
		b.SetStrokeColor(0, 0, 0, 255)
		if clip {
			_ = a.Clip(rect(20, 20, 40, 40, 0, 0, 0, 255))
			_ = b.Clip(rect(20, 20, 40, 40, 0, 0, 0, 255))
		}
		return []Paint{a, b}
	}
	c1, plain := newCanvas(t, 80, 80)
	push(t, c1, build(false)...)
	renderFrame(t, c1)
	c2, clipped := newCanvas(t, 80, 80)
	push(t, c2, build(true)...)
	renderFrame(t, c2)

	for y := range 80 {
		for x := range 80 {
			i := y*80 + x
			inside := x >= 20 && x < 60 && y >= 20 && y < 60
			switch {
			case inside && clipped[i] != plain[i]:
				t.Fatalf("inside (%d,%d) = %#08x, want %#08x", x, y, clipped[i], plain[i])
			case !inside && clipped[i] != 0:
				t.Fatalf("outside (%d,%d) = %#08x, want 0", x, y, clipped[i])
			}
		}
	}
}

// =============================================================================
// Composition
// =============================================================================

func TestMaskMethods(t *testing.T) {
	tests := []struct {
		name        string
		method      MaskMethod
		mask        *Shape
		left, right uint32
	}{
		{"inverse alpha", MaskInvAlpha, rect(0, 0, 50, 100, 0, 0, 0, 255), 0, 0xFFFF0000},
		{"luma", MaskLuma, rect(0, 0, 50, 100, 255, 255, 255, 255), 0xFFFF0000, 0},
		{"inverse luma", MaskInvLuma, rect(0, 0, 50, 100, 255, 255, 255, 255), 0, 0xFFFF0000},
		{"clip by scene", MaskClip, nil, 0xFFFF0000, 0},
		{"add", MaskAdd, rect(60, 0, 40, 100, 0, 0, 255, 255), 0xFFFF0000, 0xFF0000FF},
		{"intersect", MaskIntersect, rect(0, 0, 50, 100, 0, 0, 255, 255), 0xFF0000FF, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, buf := newCanvas(t, 100, 100)
			s := rect(0, 0, 70, 100, 255, 0, 0, 255)
			var target Paint = tt.mask
			if tt.mask == nil {
				sc := NewScene()
				_ = sc.Push(rect(0, 0, 50, 100, 0, 0, 0, 255))
				target = sc
			}
			if tt.method == MaskAdd {
				s = rect(0, 0, 50, 100, 255, 0, 0, 255)
			}
			if err := s.Mask(target, tt.method); err != nil {
				t.Fatalf("Mask: %v", err)
			}
			push(t, c, s)
			renderFrame(t, c)
			if got := buf[50*100+25]; got != tt.left {
				t.Errorf("left = %#08x, want %#08x", got, tt.left)
			}
			x := 60
			if tt.method == MaskAdd {
				x = 80
			}
			if got := buf[50*100+x]; got != tt.right {
				t.Errorf("right = %#08x, want %#08x", got, tt.right)
			}
		})
	}
}

func TestSceneOpacityIsGroupOpacity(t *testing.T) {
	c, buf := newCanvas(t, 60, 20)
	sc := NewScene()
	_ = sc.Push(rect(0, 0, 40, 20, 255, 0, 0, 255))
	_ = sc.Push(rect(20, 0, 40, 20, 255, 0, 0, 255))
	sc.SetOpacity(128)
	push(t, c, sc)
	renderFrame(t, c)

	single, overlap := buf[10*60+10], buf[10*60+30]
	if single != overlap {
		t.Errorf("overlap = %#08x, single = %#08x, want equal", overlap, single)
	}
	if a := single >> 24; a != 128 {
		t.Errorf("alpha = %d, want 128", a)
	}
}

func TestBlendMultiply(t *testing.T) {
	c, buf := newCanvas(t, 20, 20)
	top := rect(5, 5, 10, 10, 0, 0, 255, 255)
	if err := top.SetBlend(BlendMultiply); err != nil {
		t.Fatalf("SetBlend: %v", err)
	}
	push(t, c, rect(0, 0, 20, 20, 255, 0, 0, 255), top)
	renderFrame(t, c)
	if got := buf[10*20+10]; got != 0xFF000000 {
		t.Errorf("multiplied = %#08x, want 0xFF000000", got)
	}
	if got := buf[1*20+1]; got != 0xFFFF0000 {
		t.Errorf("background = %#08x, want 0xFFFF0000", got)
	}
}

func TestSceneBlendLayer(t *testing.T) {
	c, buf := newCanvas(t, 20, 20)
	sc := NewScene()
	_ = sc.Push(rect(5, 5, 10, 10, 0, 0, 255, 255))
	_ = sc.SetBlend(BlendMultiply)
	push(t, c, rect(0, 0, 20, 20, 255, 0, 0, 255), sc)
	renderFrame(t, c)
	if got := buf[10*20+10]; got != 0xFF000000 {
		t.Errorf("multiplied = %#08x, want 0xFF000000", got)
	}
}

func TestOpacityZeroSkipsSubtree(t *testing.T) {
	c, buf := newCanvas(t, 20, 20)
	sc := NewScene()
	inner := rect(0, 0, 20, 20, 255, 0, 0, 255)
	_ = sc.Push(inner)
	sc.SetOpacity(0)
	push(t, c, sc)
	renderFrame(t, c)
	if buf[10*20+10] != 0 {
		t.Errorf("hidden scene drew %#08x", buf[10*20+10])
	}
	if inner.slot.shape != nil {
		t.Error("child of a hidden scene was prepared")
	}

	sc.SetOpacity(255)
	renderFrame(t, c)
	if got := buf[10*20+10]; got != 0xFFFF0000 {
		t.Errorf("visible again = %#08x, want 0xFFFF0000", got)
	}
}

// =============================================================================
// Targets
// =============================================================================

func TestViewportLimitsDrawing(t *testing.T) {
	c, buf := newCanvas(t, 100, 100)
	if err := c.Viewport(0, 0, 50, 100); err != nil {
		t.Fatalf("Viewport: %v", err)
	}
	push(t, c, rect(0, 0, 100, 100, 255, 0, 0, 255))
	renderFrame(t, c)
	if got := buf[50*100+25]; got != 0xFFFF0000 {
		t.Errorf("inside = %#08x, want 0xFFFF0000", got)
	}
	if got := buf[50*100+75]; got != 0 {
		t.Errorf("outside = %#08x, want 0", got)
	}
}

func TestStraightAlphaTarget(t *testing.T) {
	c := NewCanvas()
	t.Cleanup(c.Close)
	buf := make([]uint32, 16*16)
	if err := c.SetTarget(buf, 16, 16, 16, ARGB8888S); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	push(t, c, rect(0, 0, 16, 16, 0, 255, 0, 128))
	renderFrame(t, c)
	if got := buf[8*16+8]; got != 0x8000FF00 {
		t.Errorf("straight pixel = %#08x, want 0x8000FF00", got)
	}
}

func TestGrayscaleTarget(t *testing.T) {
	c := NewCanvas()
	t.Cleanup(c.Close)
	buf := make([]uint8, 10*10)
	if err := c.SetTarget8(buf, 10, 10, 10); err != nil {
		t.Fatalf("SetTarget8: %v", err)
	}
	push(t, c, rect(2, 2, 4, 4, 255, 255, 255, 255))
	renderFrame(t, c)
	if buf[3*10+3] != 255 {
		t.Errorf("covered = %d, want 255", buf[3*10+3])
	}
	if buf[0] != 0 {
		t.Errorf("uncovered = %d, want 0", buf[0])
	}
}

func TestRawPicture(t *testing.T) {
	c, buf := newCanvas(t, 32, 32)
	px := make([]uint32, 4*4)
	for i := range px {
		px[i] = 0xFF0000FF
	}
	pic := NewPicture()
	if err := pic.LoadPixels(px, 4, 4, ARGB8888, true); err != nil {
		t.Fatalf("LoadPixels: %v", err)
	}
	_ = pic.Translate(10, 10)
	push(t, c, pic)
	renderFrame(t, c)
	if got := buf[11*32+11]; got != 0xFF0000FF {
		t.Errorf("picture pixel = %#08x, want 0xFF0000FF", got)
	}
	if got := buf[9*32+9]; got != 0 {
		t.Errorf("outside = %#08x, want 0", got)
	}
}

func TestTextDraws(t *testing.T) {
	c, buf := newCanvas(t, 120, 60)
	txt := NewText()
	if err := txt.SetFont(text.DefaultFamily, 40, ""); err != nil {
		t.Fatalf("SetFont: %v", err)
	}
	txt.SetText("Hi")
	txt.SetFillColor(0, 0, 0, 255)
	_ = txt.Translate(5, 5)
	push(t, c, txt)
	renderFrame(t, c)

	covered := 0
	for _, p := range buf {
		if p>>24 > 0 {
			covered++
		}
	}
	if covered < 50 {
		t.Errorf("text covered %d pixels, want at least 50", covered)
	}
	if _, _, w, h, err := txt.Bounds(); err != nil || w <= 0 || h <= 0 {
		t.Errorf("Bounds = %vx%v, %v", w, h, err)
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestCanvasStateErrors(t *testing.T) {
	c := NewCanvas(WithThreads(0))
	defer c.Close()

	if err := c.Update(); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("Update without target = %v, want ErrInsufficientCondition", err)
	}
	if err := c.SetTarget(make([]uint32, 10), 100, 100, 100, ARGB8888); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("short target = %v, want ErrInvalidArguments", err)
	}
	if err := c.Draw(true); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("Draw after bad target = %v, want ErrInsufficientCondition", err)
	}

	buf := make([]uint32, 16*16)
	if err := c.SetTarget(buf, 16, 16, 16, ARGB8888); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	if err := c.Draw(true); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := c.Draw(true); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("Draw before Sync = %v, want ErrInsufficientCondition", err)
	}
	if err := c.SetTarget(buf, 16, 16, 16, ARGB8888); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("SetTarget while drawing = %v, want ErrInsufficientCondition", err)
	}
	if err := c.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := c.Viewport(0, 0, 0, 4); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("empty viewport = %v, want ErrInvalidArguments", err)
	}
	if err := c.SetMempool(MempoolPolicy(9)); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("bad mempool = %v, want ErrInvalidArguments", err)
	}
	if err := c.SetMempool(MempoolIndividual); err != nil {
		t.Errorf("SetMempool: %v", err)
	}

	c.Close()
	if err := c.Push(NewShape()); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("Push after Close = %v, want ErrInsufficientCondition", err)
	}
}

func TestCanvasOwnership(t *testing.T) {
	c, _ := newCanvas(t, 16, 16)
	s := rect(0, 0, 4, 4, 1, 2, 3, 255)
	push(t, c, s)
	if s.RefCount() != 1 {
		t.Errorf("RefCount after Push = %d, want 1", s.RefCount())
	}
	if err := c.Push(s); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("second Push = %v, want ErrInsufficientCondition", err)
	}
	sc := NewScene()
	if err := sc.Push(s); !errors.Is(err, ErrInsufficientCondition) {
		t.Errorf("Push into scene while on canvas = %v, want ErrInsufficientCondition", err)
	}

	if err := c.Clear(false); err != nil {
		t.Fatalf("Clear(false): %v", err)
	}
	if s.RefCount() != 0 || len(c.Paints()) != 0 {
		t.Errorf("after Clear(false): refs %d, paints %d", s.RefCount(), len(c.Paints()))
	}
	push(t, c, s)
	if err := c.Clear(true); err != nil {
		t.Fatalf("Clear(true): %v", err)
	}
	if err := c.Push(s); !errors.Is(err, ErrMemoryCorruption) {
		t.Errorf("Push of destroyed paint = %v, want ErrMemoryCorruption", err)
	}

	kept := rect(0, 0, 4, 4, 1, 2, 3, 255)
	kept.Ref()
	push(t, c, kept)
	if err := c.Remove(kept); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := c.Push(kept); err != nil {
		t.Errorf("Push of referenced paint after Remove: %v", err)
	}
	if err := c.Remove(NewShape()); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("Remove of foreign paint = %v, want ErrInvalidArguments", err)
	}
}

func TestPartialUpdate(t *testing.T) {
	c, buf := newCanvas(t, 20, 20)
	a := rect(0, 0, 10, 20, 255, 0, 0, 255)
	b := rect(10, 0, 10, 20, 0, 0, 255, 255)
	push(t, c, a, b)
	renderFrame(t, c)

	if err := c.Update(NewShape()); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("Update of foreign paint = %v, want ErrInvalidArguments", err)
	}
	b.SetFillColor(0, 255, 0, 255)
	if err := c.Update(b); err != nil {
		t.Fatalf("Update(b): %v", err)
	}
	if err := c.Draw(true); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := c.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := buf[10*20+15]; got != 0xFF00FF00 {
		t.Errorf("updated paint = %#08x, want 0xFF00FF00", got)
	}
	if got := buf[10*20+5]; got != 0xFFFF0000 {
		t.Errorf("untouched paint = %#08x, want 0xFFFF0000", got)
	}
}

func TestPrepareErrorSurfacesAtSync(t *testing.T) {
	const family = "CanvasTestFace"
	if err := text.LoadData(family, goregular.TTF); err != nil {
		t.Fatalf("LoadData: %v", err)
	}
	c, buf := newCanvas(t, 40, 40)
	txt := NewText()
	if err := txt.SetFont(family, 20, ""); err != nil {
		t.Fatalf("SetFont: %v", err)
	}
	txt.SetText("x")
	txt.SetFillColor(0, 0, 0, 255)
	txt.SetID(ID("label"))
	push(t, c, txt, rect(30, 30, 10, 10, 255, 0, 0, 255))
	if err := text.Unload(family); err != nil {
		t.Fatalf("Unload: %v", err)
	}

	if err := c.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := c.Draw(true); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	err := c.Sync()
	var pe *PrepareError
	if !errors.As(err, &pe) {
		t.Fatalf("Sync = %v, want *PrepareError", err)
	}
	if pe.Type != TypeText || pe.ID != ID("label") {
		t.Errorf("PrepareError = %v/%#x, want Text/%#x", pe.Type, pe.ID, ID("label"))
	}
	if !errors.Is(err, ErrUnknown) {
		t.Errorf("errors.Is(err, ErrUnknown) = false")
	}
	if got := buf[35*40+35]; got != 0xFFFF0000 {
		t.Errorf("neighbor = %#08x, want 0xFFFF0000", got)
	}
	if err := c.Sync(); err != nil {
		t.Errorf("second Sync = %v, want nil", err)
	}
}
