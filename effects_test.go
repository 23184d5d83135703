package tvg

import (
	"errors"
	"math"
	"slices"
	"testing"
)

// =============================================================================
// Scene Effects
// =============================================================================

func effectScene(t *testing.T, e Effect, children ...Paint) *Scene {
	t.Helper()
	sc := NewScene()
	for _, ch := range children {
		if err := sc.Push(ch); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	if err := sc.PushEffect(e); err != nil {
		t.Fatalf("PushEffect: %v", err)
	}
	return sc
}

func TestSceneBlurRadius(t *testing.T) {
	c, buf := newCanvas(t, 60, 60)
	push(t, c, effectScene(t, GaussianBlur{Sigma: 2}, rect(20, 20, 20, 20, 0, 0, 255, 255)))
	renderFrame(t, c)

	if got := buf[30*60+19]; got == 0 {
		t.Error("pixel next to the edge should be blurred")
	}
	if got := buf[30*60+13]; got != 0 {
		t.Errorf("pixel beyond the blur radius = %#08x, want 0", got)
	}
	if got := buf[30*60+30]; got != 0xFF0000FF {
		t.Errorf("interior = %#08x, want 0xFF0000FF", got)
	}
	if got := buf[30*60+20]; got == 0xFF0000FF || got>>24 < 0x60 {
		t.Errorf("edge = %#08x, want partial coverage", got)
	}
}

func TestSceneBlurScalesWithTransform(t *testing.T) {
	c, buf := newCanvas(t, 60, 60)
	sc := effectScene(t, GaussianBlur{Sigma: 2}, rect(10, 10, 10, 10, 0, 0, 255, 255))
	_ = sc.Scale(2)
	push(t, c, sc)
	renderFrame(t, c)

	// Sigma 4 in device space reaches 12 pixels past the edge at x=20.
	if got := buf[30*60+12]; got == 0 {
		t.Error("pixel 8 px from the scaled edge should be blurred")
	}
	if got := buf[30*60+6]; got != 0 {
		t.Errorf("pixel beyond the scaled radius = %#08x, want 0", got)
	}
}

func TestSceneBlurDirection(t *testing.T) {
	c, buf := newCanvas(t, 40, 40)
	push(t, c, effectScene(t, GaussianBlur{Sigma: 2, Direction: BlurHorizontal}, rect(10, 10, 20, 20, 0, 0, 255, 255)))
	renderFrame(t, c)

	if got := buf[20*40+8]; got == 0 {
		t.Error("horizontal blur should spread left")
	}
	if got := buf[8*40+20]; got != 0 {
		t.Errorf("horizontal blur spread up: %#08x", got)
	}
}

func TestSceneDropShadowOffset(t *testing.T) {
	tests := []struct {
		name     string
		angle    float32
		distance float32
		x, y     int // inside the shadow
		gx, gy   int // outside both shadow and content
	}{
		{"right", 90, 10, 20, 10, 10, 20},
		{"down", 180, 10, 10, 20, 20, 10},
		{"down-right", 135, 10 * math.Sqrt2, 20, 20, 12, 20},
		{"up-left", 315, 5 * math.Sqrt2, 2, 2, 18, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, buf := newCanvas(t, 40, 40)
			shadow := DropShadow{A: 255, Angle: tt.angle, Distance: tt.distance}
			push(t, c, effectScene(t, shadow, rect(5, 5, 10, 10, 255, 0, 0, 255)))
			renderFrame(t, c)

			if got := buf[10*40+10]; got != 0xFFFF0000 {
				t.Errorf("content = %#08x, want 0xFFFF0000", got)
			}
			if got := buf[tt.y*40+tt.x]; got != 0xFF000000 {
				t.Errorf("shadow (%d,%d) = %#08x, want 0xFF000000", tt.x, tt.y, got)
			}
			if got := buf[tt.gy*40+tt.gx]; got != 0 {
				t.Errorf("gap (%d,%d) = %#08x, want 0", tt.gx, tt.gy, got)
			}
		})
	}
}

func TestSceneColorEffects(t *testing.T) {
	tests := []struct {
		name    string
		effect  Effect
		r, g, b uint8
		want    uint32
	}{
		{"fill", FillEffect{G: 255, A: 255}, 255, 0, 0, 0xFF00FF00},
		{"tint black", Tint{Black: RGB{B: 128}, White: RGB{R: 255, G: 255}, Intensity: 100}, 0, 0, 0, 0xFF000080},
		{"tint white", Tint{Black: RGB{B: 128}, White: RGB{R: 255, G: 255}, Intensity: 100}, 255, 255, 255, 0xFFFFFF00},
		{"tint off", Tint{Black: RGB{B: 128}, White: RGB{R: 255, G: 255}}, 255, 0, 0, 0xFFFF0000},
		{"tritone shadow", Tritone{Shadow: RGB{R: 255}, Midtone: RGB{G: 255}, Highlight: RGB{B: 255}}, 0, 0, 0, 0xFFFF0000},
		{"tritone highlight", Tritone{Shadow: RGB{R: 255}, Midtone: RGB{G: 255}, Highlight: RGB{B: 255}}, 255, 255, 255, 0xFF0000FF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, buf := newCanvas(t, 10, 10)
			push(t, c, effectScene(t, tt.effect, rect(0, 0, 10, 10, tt.r, tt.g, tt.b, 255)))
			renderFrame(t, c)
			if got := buf[5*10+5]; got != tt.want {
				t.Errorf("pixel = %#08x, want %#08x", got, tt.want)
			}
		})
	}
}

func TestSceneEffectsChain(t *testing.T) {
	c, buf := newCanvas(t, 40, 40)
	sc := effectScene(t, FillEffect{B: 255, A: 255}, rect(5, 5, 10, 10, 255, 0, 0, 255))
	if err := sc.PushEffect(DropShadow{R: 255, A: 255, Angle: 90, Distance: 10}); err != nil {
		t.Fatal(err)
	}
	push(t, c, sc)
	renderFrame(t, c)

	if got := buf[10*40+10]; got != 0xFF0000FF {
		t.Errorf("filled content = %#08x, want 0xFF0000FF", got)
	}
	if got := buf[10*40+20]; got != 0xFFFF0000 {
		t.Errorf("shadow = %#08x, want 0xFFFF0000", got)
	}
}

func TestPushEffectValidation(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	tests := []struct {
		name   string
		effect Effect
	}{
		{"nil", nil},
		{"negative sigma", GaussianBlur{Sigma: -1}},
		{"nan sigma", GaussianBlur{Sigma: nan}},
		{"bad direction", GaussianBlur{Sigma: 1, Direction: 3}},
		{"bad border", GaussianBlur{Sigma: 1, Border: 2}},
		{"blur quality", GaussianBlur{Sigma: 1, Quality: 101}},
		{"shadow sigma", DropShadow{Sigma: -2}},
		{"shadow distance", DropShadow{Distance: inf}},
		{"shadow angle", DropShadow{Angle: nan}},
		{"shadow quality", DropShadow{Quality: 200}},
		{"tint intensity", Tint{Intensity: 101}},
		{"tint negative", Tint{Intensity: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := NewScene()
			if err := sc.PushEffect(tt.effect); !errors.Is(err, ErrInvalidArguments) {
				t.Errorf("PushEffect = %v, want ErrInvalidArguments", err)
			}
			if n := len(sc.Effects()); n != 0 {
				t.Errorf("rejected effect stored: %d effects", n)
			}
		})
	}
}

func TestClearEffects(t *testing.T) {
	c, buf := newCanvas(t, 40, 40)
	sc := NewScene()
	_ = sc.Push(rect(10, 10, 20, 20, 0, 0, 255, 255))
	push(t, c, sc)
	renderFrame(t, c)
	if got := buf[20*40+8]; got != 0 {
		t.Fatalf("unblurred frame has %#08x outside the shape", got)
	}

	if err := sc.PushEffect(GaussianBlur{Sigma: 2}); err != nil {
		t.Fatal(err)
	}
	renderFrame(t, c)
	if got := buf[20*40+8]; got == 0 {
		t.Error("effect pushed after the first frame was not applied")
	}

	sc.ClearEffects()
	if n := len(sc.Effects()); n != 0 {
		t.Errorf("Effects after clear = %d, want 0", n)
	}
	renderFrame(t, c)
	if got := buf[20*40+8]; got != 0 {
		t.Errorf("cleared effect still drawn: %#08x", got)
	}
}

func TestDuplicateCopiesEffects(t *testing.T) {
	sc := effectScene(t, GaussianBlur{Sigma: 3, Border: BorderWrap})
	_ = sc.PushEffect(Tint{Intensity: 50})
	d := sc.Duplicate().(*Scene)
	if !slices.Equal(d.Effects(), sc.Effects()) {
		t.Fatalf("duplicate effects = %v, want %v", d.Effects(), sc.Effects())
	}
	d.ClearEffects()
	if len(sc.Effects()) != 2 {
		t.Error("clearing the duplicate changed the source")
	}
}

func TestCodecEffects(t *testing.T) {
	sc := NewScene()
	_ = sc.Push(rect(0, 0, 4, 4, 255, 0, 0, 255))
	effects := []Effect{
		GaussianBlur{Sigma: 1.5, Direction: BlurVertical, Border: BorderWrap, Quality: 80},
		DropShadow{R: 1, G: 2, B: 3, A: 4, Angle: 45, Distance: 6, Sigma: 2, Quality: 100},
		FillEffect{R: 9, G: 8, B: 7, A: 6},
		Tint{Black: RGB{1, 2, 3}, White: RGB{4, 5, 6}, Intensity: 70},
		Tritone{Shadow: RGB{10, 11, 12}, Midtone: RGB{13, 14, 15}, Highlight: RGB{16, 17, 18}},
	}
	for _, e := range effects {
		if err := sc.PushEffect(e); err != nil {
			t.Fatalf("PushEffect(%T): %v", e, err)
		}
	}
	d, ok := roundTrip(t, sc).(*Scene)
	if !ok {
		t.Fatal("decoded paint is not a scene")
	}
	if got := d.Effects(); !slices.Equal(got, effects) {
		t.Errorf("decoded effects = %v, want %v", got, effects)
	}
	if n := len(d.Paints()); n != 1 {
		t.Errorf("decoded children = %d, want 1", n)
	}
}
