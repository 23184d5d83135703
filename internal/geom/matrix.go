package geom

import "math"

// Matrix is a 3x3 affine transform in row-major order:
//
//	| E11 E12 E13 |
//	| E21 E22 E23 |
//	| E31 E32 E33 |
//
// Only the top two rows take part in transforms; E31 and E32 are kept at
// zero and E33 at one so that the matrix round-trips through the binary
// format unchanged.
type Matrix struct {
	E11, E12, E13 float32
	E21, E22, E23 float32
	E31, E32, E33 float32
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{E11: 1, E22: 1, E33: 1}
}

// Translation returns a translation by (x, y).
func Translation(x, y float32) Matrix {
	return Matrix{E11: 1, E13: x, E22: 1, E23: y, E33: 1}
}

// Scaling returns a scale by (sx, sy).
func Scaling(sx, sy float32) Matrix {
	return Matrix{E11: sx, E22: sy, E33: 1}
}

// Rotation returns a rotation by deg degrees (clockwise with y down).
func Rotation(deg float32) Matrix {
	r := Deg2Rad(deg)
	c, s := float32(math.Cos(r)), float32(math.Sin(r))
	return Matrix{E11: c, E12: -s, E21: s, E22: c, E33: 1}
}

// Mul returns m·n: n is applied first, then m.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		E11: m.E11*n.E11 + m.E12*n.E21 + m.E13*n.E31,
		E12: m.E11*n.E12 + m.E12*n.E22 + m.E13*n.E32,
		E13: m.E11*n.E13 + m.E12*n.E23 + m.E13*n.E33,
		E21: m.E21*n.E11 + m.E22*n.E21 + m.E23*n.E31,
		E22: m.E21*n.E12 + m.E22*n.E22 + m.E23*n.E32,
		E23: m.E21*n.E13 + m.E22*n.E23 + m.E23*n.E33,
		E31: m.E31*n.E11 + m.E32*n.E21 + m.E33*n.E31,
		E32: m.E31*n.E12 + m.E32*n.E22 + m.E33*n.E32,
		E33: m.E31*n.E13 + m.E32*n.E23 + m.E33*n.E33,
	}
}

// Apply transforms p.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m.E11*p.X + m.E12*p.Y + m.E13,
		Y: m.E21*p.X + m.E22*p.Y + m.E23,
	}
}

// ApplyVector transforms v ignoring translation.
func (m Matrix) ApplyVector(v Point) Point {
	return Point{
		X: m.E11*v.X + m.E12*v.Y,
		Y: m.E21*v.X + m.E22*v.Y,
	}
}

// Det returns the determinant of the linear part.
func (m Matrix) Det() float32 {
	return m.E11*m.E22 - m.E12*m.E21
}

// Invert returns the inverse of m. ok is false when m is singular.
func (m Matrix) Invert() (inv Matrix, ok bool) {
	det := float64(m.E11)*(float64(m.E22)*float64(m.E33)-float64(m.E32)*float64(m.E23)) -
		float64(m.E12)*(float64(m.E21)*float64(m.E33)-float64(m.E23)*float64(m.E31)) +
		float64(m.E13)*(float64(m.E21)*float64(m.E32)-float64(m.E22)*float64(m.E31))
	if math.Abs(det) < 1e-12 {
		return Identity(), false
	}
	id := 1 / det
	f := func(v float64) float32 { return float32(v * id) }
	e11, e12, e13 := float64(m.E11), float64(m.E12), float64(m.E13)
	e21, e22, e23 := float64(m.E21), float64(m.E22), float64(m.E23)
	e31, e32, e33 := float64(m.E31), float64(m.E32), float64(m.E33)
	return Matrix{
		E11: f(e22*e33 - e32*e23),
		E12: f(e13*e32 - e12*e33),
		E13: f(e12*e23 - e13*e22),
		E21: f(e23*e31 - e21*e33),
		E22: f(e11*e33 - e13*e31),
		E23: f(e21*e13 - e11*e23),
		E31: f(e21*e32 - e31*e22),
		E32: f(e31*e12 - e11*e32),
		E33: f(e11*e22 - e21*e12),
	}, true
}

// IsIdentity reports whether m is the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// IsRightAngle reports whether m maps axis-aligned rectangles onto
// axis-aligned rectangles (no rotation other than multiples of 90°, no shear).
func (m Matrix) IsRightAngle() bool {
	return (Zero(m.E12) && Zero(m.E21)) || (Zero(m.E11) && Zero(m.E22))
}

// IsTranslation reports whether m only translates.
func (m Matrix) IsTranslation() bool {
	return Equal(m.E11, 1) && Zero(m.E12) && Zero(m.E21) && Equal(m.E22, 1)
}

// ScaleX returns the length of the transformed x axis.
func (m Matrix) ScaleX() float32 {
	return float32(math.Hypot(float64(m.E11), float64(m.E21)))
}

// ScaleY returns the length of the transformed y axis.
func (m Matrix) ScaleY() float32 {
	return float32(math.Hypot(float64(m.E12), float64(m.E22)))
}

// MaxScale returns the larger axis scale of m. Flattening tolerances in
// local space are divided by it so that device-space error stays bounded.
func (m Matrix) MaxScale() float32 {
	return max(m.ScaleX(), m.ScaleY())
}
