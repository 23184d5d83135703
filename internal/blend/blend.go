// Package blend implements the separable blend methods applied when a paint
// is composited onto the canvas.
//
// All functions operate on 32-bit premultiplied pixels with alpha in the
// top byte. The result alpha is always Sa + Da*(1-Sa); the color channels
// follow the W3C Compositing and Blending Level 1 formulas:
//
//	Co = Cs*(1-Da) + Cd*(1-Sa) + Sa*Da*B(Cs/Sa, Cd/Da)
//
// References:
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

// Method selects how a source pixel is combined with the destination.
type Method uint8

const (
	// Normal is source-over: S + D*(1-Sa).
	Normal Method = iota
	// Add sums the channels, clamped to 255.
	Add
	// Screen is S + D - S*D.
	Screen
	// Multiply is S*D plus the uncovered parts of each layer.
	Multiply
	// Overlay is HardLight with the layers swapped.
	Overlay
	// Difference is |S - D|.
	Difference
	// Exclusion is S + D - 2*S*D.
	Exclusion
	// Darken keeps the darker channel.
	Darken
	// Lighten keeps the lighter channel.
	Lighten
	// ColorDodge brightens the destination towards the source.
	ColorDodge
	// ColorBurn darkens the destination towards the source.
	ColorBurn
	// HardLight multiplies or screens depending on the source.
	HardLight
	// SoftLight darkens or lightens depending on the source.
	SoftLight
)

// Count is the number of defined methods.
const Count = int(SoftLight) + 1

var methodNames = [...]string{
	"Normal", "Add", "Screen", "Multiply", "Overlay", "Difference", "Exclusion",
	"Darken", "Lighten", "ColorDodge", "ColorBurn", "HardLight", "SoftLight",
}

// String returns the method name.
func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return "Unknown"
}

// Valid reports whether m is a defined method.
func (m Method) Valid() bool { return int(m) < Count }

// Func combines a premultiplied source pixel with a premultiplied
// destination pixel.
type Func func(s, d uint32) uint32

var funcs = [Count]Func{
	Normal:     SourceOver,
	Add:        add,
	Screen:     screen,
	Multiply:   multiply,
	Overlay:    separable(overlay),
	Difference: difference,
	Exclusion:  exclusion,
	Darken:     darken,
	Lighten:    lighten,
	ColorDodge: separable(colorDodge),
	ColorBurn:  separable(colorBurn),
	HardLight:  separable(hardLight),
	SoftLight:  separable(softLight),
}

// FuncFor returns the pixel function for m. Unknown methods fall back to
// Normal.
func FuncFor(m Method) Func {
	if !m.Valid() {
		return SourceOver
	}
	return funcs[m]
}

// Pixel blends s onto d with method m.
func Pixel(m Method, s, d uint32) uint32 {
	return FuncFor(m)(s, d)
}

// Span blends src onto dst pixel by pixel. Both slices must have the same
// length.
func Span(m Method, dst, src []uint32) {
	f := FuncFor(m)
	for i, s := range src {
		if s == 0 {
			continue
		}
		dst[i] = f(s, dst[i])
	}
}

// SourceOver computes S + D*(1-Sa) on packed pixels, two channels at a time.
func SourceOver(s, d uint32) uint32 {
	ia := 255 - s>>24
	return s + alphaMul(d, ia)
}

// Scale multiplies every channel of a packed pixel by a/255.
func Scale(c uint32, a uint8) uint32 {
	return alphaMul(c, uint32(a))
}

// alphaMul scales every channel of c by a in 0..255. a = 255 leaves c
// unchanged and a = 0 clears it.
func alphaMul(c, a uint32) uint32 {
	a++
	return (((c>>8)&0x00ff00ff)*a)&0xff00ff00 + (((c&0x00ff00ff)*a)>>8)&0x00ff00ff
}

func add(s, d uint32) uint32 {
	sa, s0, s1, s2 := Unpack(s)
	da, d0, d1, d2 := Unpack(d)
	return Pack(addClamp(sa, da), addClamp(s0, d0), addClamp(s1, d1), addClamp(s2, d2))
}

// outAlpha is Sa + Da*(1-Sa).
func outAlpha(sa, da byte) byte {
	return addClamp(sa, mulDiv255(da, 255-sa))
}

func screen(s, d uint32) uint32 {
	sa, s0, s1, s2 := Unpack(s)
	da, d0, d1, d2 := Unpack(d)
	ch := func(a, b byte) byte { return clampInt(int(a) + int(b) - int(mulDiv255(a, b))) }
	return Pack(outAlpha(sa, da), ch(s0, d0), ch(s1, d1), ch(s2, d2))
}

func multiply(s, d uint32) uint32 {
	sa, s0, s1, s2 := Unpack(s)
	da, d0, d1, d2 := Unpack(d)
	isa, ida := 255-sa, 255-da
	ch := func(a, b byte) byte {
		return addClamp(addClamp(mulDiv255(a, ida), mulDiv255(b, isa)), mulDiv255(a, b))
	}
	return Pack(outAlpha(sa, da), ch(s0, d0), ch(s1, d1), ch(s2, d2))
}

func difference(s, d uint32) uint32 {
	sa, s0, s1, s2 := Unpack(s)
	da, d0, d1, d2 := Unpack(d)
	ch := func(a, b byte) byte {
		m := min(int(mulDiv255(a, da)), int(mulDiv255(b, sa)))
		return clampInt(int(a) + int(b) - 2*m)
	}
	return Pack(outAlpha(sa, da), ch(s0, d0), ch(s1, d1), ch(s2, d2))
}

func exclusion(s, d uint32) uint32 {
	sa, s0, s1, s2 := Unpack(s)
	da, d0, d1, d2 := Unpack(d)
	ch := func(a, b byte) byte {
		return clampInt(int(a) + int(b) - 2*int(mulDiv255(a, b)))
	}
	return Pack(outAlpha(sa, da), ch(s0, d0), ch(s1, d1), ch(s2, d2))
}

func darken(s, d uint32) uint32 {
	sa, s0, s1, s2 := Unpack(s)
	da, d0, d1, d2 := Unpack(d)
	ch := func(a, b byte) byte {
		m := max(int(mulDiv255(a, da)), int(mulDiv255(b, sa)))
		return clampInt(int(a) + int(b) - m)
	}
	return Pack(outAlpha(sa, da), ch(s0, d0), ch(s1, d1), ch(s2, d2))
}

func lighten(s, d uint32) uint32 {
	sa, s0, s1, s2 := Unpack(s)
	da, d0, d1, d2 := Unpack(d)
	ch := func(a, b byte) byte {
		m := min(int(mulDiv255(a, da)), int(mulDiv255(b, sa)))
		return clampInt(int(a) + int(b) - m)
	}
	return Pack(outAlpha(sa, da), ch(s0, d0), ch(s1, d1), ch(s2, d2))
}
