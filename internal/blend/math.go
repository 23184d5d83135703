package blend

// mulDiv255 multiplies two bytes and divides by 255 using the shift
// approximation (a*b + 255) >> 8. The result never exceeds 255.
func mulDiv255(a, b byte) byte {
	return byte((uint16(a)*uint16(b) + 255) >> 8)
}

// addClamp adds two bytes and clamps to 255.
func addClamp(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

// clampInt clamps v to the byte range.
func clampInt(v int) byte {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return byte(v)
}

// unpremul returns c/a in 0..255.
func unpremul(c, a byte) byte {
	if a == 0 {
		return 0
	}
	if c >= a {
		return 255
	}
	return byte((uint16(c)*255 + uint16(a)/2) / uint16(a))
}

// Unpack splits a pixel into alpha and three color channels. The channel
// order of c0..c2 follows the pixel packing; blend functions are symmetric
// in the color channels so ARGB and ABGR packings share them.
func Unpack(p uint32) (a, c0, c1, c2 byte) {
	return byte(p >> 24), byte(p >> 16), byte(p >> 8), byte(p)
}

// Pack is the inverse of Unpack.
func Pack(a, c0, c1, c2 byte) uint32 {
	return uint32(a)<<24 | uint32(c0)<<16 | uint32(c1)<<8 | uint32(c2)
}
