package blend

import "math"

// channelFunc is a blend function B(Cs, Cd) on unpremultiplied channels.
type channelFunc func(s, d byte) byte

// separable lifts a channel function to premultiplied pixels using
// Co = Cs*(1-Da) + Cd*(1-Sa) + Sa*Da*B.
func separable(b channelFunc) Func {
	return func(s, d uint32) uint32 {
		sa, s0, s1, s2 := Unpack(s)
		da, d0, d1, d2 := Unpack(d)
		if sa == 0 {
			return d
		}
		if da == 0 {
			return s
		}
		isa, ida := 255-sa, 255-da
		both := mulDiv255(sa, da)
		ch := func(cs, cd byte) byte {
			v := addClamp(mulDiv255(cs, ida), mulDiv255(cd, isa))
			return addClamp(v, mulDiv255(both, b(unpremul(cs, sa), unpremul(cd, da))))
		}
		return Pack(outAlpha(sa, da), ch(s0, d0), ch(s1, d1), ch(s2, d2))
	}
}

// hardLight: Multiply(Cd, 2Cs) when Cs <= 0.5, else Screen(Cd, 2Cs-1).
func hardLight(s, d byte) byte {
	if s <= 127 {
		return byte(int(d) * 2 * int(s) / 255)
	}
	t := 2*int(s) - 255
	return byte(int(d) + t - int(d)*t/255)
}

func overlay(s, d byte) byte { return hardLight(d, s) }

func colorDodge(s, d byte) byte {
	switch {
	case d == 0:
		return 0
	case s == 255:
		return 255
	}
	return clampInt(int(d) * 255 / (255 - int(s)))
}

func colorBurn(s, d byte) byte {
	switch {
	case d == 255:
		return 255
	case s == 0:
		return 0
	}
	return clampInt(255 - (255-int(d))*255/int(s))
}

// softLight follows the W3C formula.
func softLight(s, d byte) byte {
	cs := float64(s) / 255
	cb := float64(d) / 255
	var r float64
	if cs <= 0.5 {
		r = cb - (1-2*cs)*cb*(1-cb)
	} else {
		var dx float64
		if cb <= 0.25 {
			dx = ((16*cb-12)*cb + 4) * cb
		} else {
			dx = math.Sqrt(cb)
		}
		r = cb + (2*cs-1)*(dx-cb)
	}
	return clampInt(int(math.Round(r * 255)))
}
