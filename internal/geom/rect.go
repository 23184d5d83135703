package geom

import "math"

// BBox is an axis-aligned float rectangle given by its min and max corners.
// The zero value is an empty box that absorbs the first Add.
type BBox struct {
	Min, Max Point
	valid    bool
}

// NewBBox returns the box spanning p and q.
func NewBBox(p, q Point) BBox {
	var b BBox
	b.Add(p)
	b.Add(q)
	return b
}

// Add grows b to include p.
func (b *BBox) Add(p Point) {
	if !b.valid {
		b.Min, b.Max, b.valid = p, p, true
		return
	}
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
}

// Union grows b to include o.
func (b *BBox) Union(o BBox) {
	if !o.valid {
		return
	}
	b.Add(o.Min)
	b.Add(o.Max)
}

// Valid reports whether any point was added.
func (b BBox) Valid() bool { return b.valid }

// Width returns the horizontal extent.
func (b BBox) Width() float32 { return b.Max.X - b.Min.X }

// Height returns the vertical extent.
func (b BBox) Height() float32 { return b.Max.Y - b.Min.Y }

// Inflate returns b grown by d on every side.
func (b BBox) Inflate(d float32) BBox {
	if !b.valid {
		return b
	}
	b.Min.X -= d
	b.Min.Y -= d
	b.Max.X += d
	b.Max.Y += d
	return b
}

// Corners returns the four corners clockwise starting at Min.
func (b BBox) Corners() [4]Point {
	return [4]Point{
		b.Min,
		{b.Max.X, b.Min.Y},
		b.Max,
		{b.Min.X, b.Max.Y},
	}
}

// Transform returns the bounding box of b's corners under m.
func (b BBox) Transform(m Matrix) BBox {
	if !b.valid {
		return b
	}
	var out BBox
	for _, c := range b.Corners() {
		out.Add(m.Apply(c))
	}
	return out
}

// Overlaps reports whether b and o share interior area or an edge.
func (b BBox) Overlaps(o BBox) bool {
	if !b.valid || !o.valid {
		return false
	}
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X && b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y
}

// Region returns the smallest pixel region covering b.
func (b BBox) Region() Region {
	if !b.valid {
		return Region{}
	}
	x0 := int(math.Floor(float64(b.Min.X)))
	y0 := int(math.Floor(float64(b.Min.Y)))
	x1 := int(math.Ceil(float64(b.Max.X)))
	y1 := int(math.Ceil(float64(b.Max.Y)))
	return Region{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Region is an integer pixel rectangle. A region with W or H <= 0 is empty.
type Region struct {
	X, Y, W, H int
}

// Empty reports whether r covers no pixels.
func (r Region) Empty() bool { return r.W <= 0 || r.H <= 0 }

// X2 returns the exclusive right edge.
func (r Region) X2() int { return r.X + r.W }

// Y2 returns the exclusive bottom edge.
func (r Region) Y2() int { return r.Y + r.H }

// Intersect returns the overlap of r and o, or an empty region.
func (r Region) Intersect(o Region) Region {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X2(), o.X2()), min(r.Y2(), o.Y2())
	if x1 <= x0 || y1 <= y0 {
		return Region{}
	}
	return Region{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Union returns the smallest region covering r and o. Empty inputs are ignored.
func (r Region) Union(o Region) Region {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.X2(), o.X2()), max(r.Y2(), o.Y2())
	return Region{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains reports whether the pixel (x, y) lies inside r.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x < r.X2() && y >= r.Y && y < r.Y2()
}
