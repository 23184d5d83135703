package geom

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestMatrixMulOrder(t *testing.T) {
	// Translate after scale: the point is scaled first.
	m := Translation(10, 20).Mul(Scaling(2, 3))
	got := m.Apply(Pt(1, 1))
	if !near(got.X, 12) || !near(got.Y, 23) {
		t.Errorf("Apply = %v, want {12 23}", got)
	}
}

func TestMatrixInvert(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
	}{
		{"identity", Identity()},
		{"translate", Translation(5, -7)},
		{"scale", Scaling(2, 0.5)},
		{"rotate", Rotation(33)},
		{"combined", Translation(3, 4).Mul(Rotation(-72)).Mul(Scaling(1.5, 2))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Invert()
			if !ok {
				t.Fatal("Invert reported singular matrix")
			}
			p := Pt(17, -3)
			back := inv.Apply(tt.m.Apply(p))
			if !near(back.X, p.X) || !near(back.Y, p.Y) {
				t.Errorf("round trip = %v, want %v", back, p)
			}
		})
	}
}

func TestMatrixInvertSingular(t *testing.T) {
	if _, ok := Scaling(0, 1).Invert(); ok {
		t.Error("Invert of zero scale should fail")
	}
}

func TestRotationQuarterTurn(t *testing.T) {
	got := Rotation(90).Apply(Pt(1, 0))
	if !near(got.X, 0) || !near(got.Y, 1) {
		t.Errorf("Rotation(90) * (1,0) = %v, want {0 1}", got)
	}
	if !Rotation(90).IsRightAngle() {
		t.Error("Rotation(90) should be right-angle")
	}
	if Rotation(45).IsRightAngle() {
		t.Error("Rotation(45) should not be right-angle")
	}
}

func TestBBoxTransform(t *testing.T) {
	b := NewBBox(Pt(0, 0), Pt(10, 20))
	got := b.Transform(Rotation(90))
	if !near(got.Min.X, -20) || !near(got.Max.X, 0) || !near(got.Min.Y, 0) || !near(got.Max.Y, 10) {
		t.Errorf("rotated bbox = %+v", got)
	}
	var empty BBox
	if empty.Transform(Rotation(10)).Valid() {
		t.Error("empty bbox should stay empty")
	}
}

func TestBBoxRegion(t *testing.T) {
	r := NewBBox(Pt(0.5, 1.2), Pt(9.1, 9)).Region()
	want := Region{X: 0, Y: 1, W: 10, H: 8}
	if r != want {
		t.Errorf("Region = %+v, want %+v", r, want)
	}
}

func TestRegionOps(t *testing.T) {
	a := Region{X: 0, Y: 0, W: 10, H: 10}
	b := Region{X: 5, Y: 5, W: 10, H: 10}
	if got, want := a.Intersect(b), (Region{X: 5, Y: 5, W: 5, H: 5}); got != want {
		t.Errorf("Intersect = %+v, want %+v", got, want)
	}
	if got, want := a.Union(b), (Region{X: 0, Y: 0, W: 15, H: 15}); got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}
	c := Region{X: 20, Y: 20, W: 1, H: 1}
	if !a.Intersect(c).Empty() {
		t.Error("disjoint intersect should be empty")
	}
	if got := (Region{}).Union(c); got != c {
		t.Errorf("empty union = %+v, want %+v", got, c)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(300, 0, 255); got != 255 {
		t.Errorf("Clamp(300) = %d", got)
	}
	if got := Clamp(float32(-0.5), 0, 1); got != 0 {
		t.Errorf("Clamp(-0.5) = %v", got)
	}
	if Finite(float32(math.NaN())) || Finite(math.Inf(1)) || !Finite(float32(1)) {
		t.Error("Finite misreports")
	}
}
