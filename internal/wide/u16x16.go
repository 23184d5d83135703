package wide

// U16x16 represents 16 uint16 values for SIMD-style operations.
type U16x16 [16]uint16

// SplatU16 creates U16x16 with all elements set to n.
func SplatU16(n uint16) U16x16 {
	var result U16x16
	for i := range result {
		result[i] = n
	}
	return result
}

// Add performs element-wise addition.
func (v U16x16) Add(other U16x16) U16x16 {
	var result U16x16
	for i := range v {
		result[i] = v[i] + other[i]
	}
	return result
}

// MulShr8 computes (v * other) >> 8 for each element. Callers keep the
// product within 16 bits.
func (v U16x16) MulShr8(other U16x16) U16x16 {
	var result U16x16
	for i := range v {
		result[i] = (v[i] * other[i]) >> 8
	}
	return result
}
