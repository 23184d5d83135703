package stroke

import (
	"math"
	"testing"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/path"
)

// winding returns the non-zero winding number of p against the outline.
func winding(polys []path.Poly, p geom.Point) int {
	w := 0
	for _, pl := range polys {
		n := len(pl.Pts)
		for i := range n {
			a, b := pl.Pts[i], pl.Pts[(i+1)%n]
			if a.Y <= p.Y {
				if b.Y > p.Y && b.Sub(a).Cross(p.Sub(a)) > 0 {
					w++
				}
			} else if b.Y <= p.Y && b.Sub(a).Cross(p.Sub(a)) < 0 {
				w--
			}
		}
	}
	return w
}

func inside(polys []path.Poly, x, y float32) bool {
	return winding(polys, geom.Pt(x, y)) != 0
}

func openLine(pts ...geom.Point) []path.Poly {
	return []path.Poly{{Pts: pts}}
}

func TestExpandZeroWidth(t *testing.T) {
	out := Expand(openLine(geom.Pt(0, 0), geom.Pt(10, 0)), Style{Width: 0, Cap: CapRound}, 0.25)
	if out != nil {
		t.Errorf("zero width produced %d polys", len(out))
	}
}

func TestExpandCaps(t *testing.T) {
	tests := []struct {
		name   string
		cap    Cap
		probe  geom.Point
		inside bool
	}{
		{"butt excludes past end", CapButt, geom.Pt(10.5, 0), false},
		{"square covers past end", CapSquare, geom.Pt(10.9, 0.9), true},
		{"round covers tip", CapRound, geom.Pt(10.9, 0), true},
		{"round excludes corner", CapRound, geom.Pt(10.9, 0.9), false},
		{"square covers before start", CapSquare, geom.Pt(-0.9, -0.9), true},
		{"round covers start tip", CapRound, geom.Pt(-0.9, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Expand(openLine(geom.Pt(0, 0), geom.Pt(10, 0)), Style{Width: 2, Cap: tt.cap, Join: JoinMiter, MiterLimit: 4}, 0.05)
			if got := inside(out, tt.probe.X, tt.probe.Y); got != tt.inside {
				t.Errorf("inside(%v) = %v, want %v", tt.probe, got, tt.inside)
			}
			if !inside(out, 5, 0.9) || !inside(out, 5, -0.9) || inside(out, 5, 1.1) {
				t.Error("body of the stroke is wrong")
			}
		})
	}
}

func TestExpandJoins(t *testing.T) {
	corner := openLine(geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10))
	tests := []struct {
		name   string
		style  Style
		inside bool
	}{
		{"miter reaches corner", Style{Width: 2, Cap: CapButt, Join: JoinMiter, MiterLimit: 4}, true},
		{"miter limit falls back to bevel", Style{Width: 2, Cap: CapButt, Join: JoinMiter, MiterLimit: 1}, false},
		{"bevel cuts corner", Style{Width: 2, Cap: CapButt, Join: JoinBevel}, false},
		{"round cuts corner", Style{Width: 2, Cap: CapButt, Join: JoinRound}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Expand(corner, tt.style, 0.05)
			if got := inside(out, 10.9, -0.9); got != tt.inside {
				t.Errorf("outer corner inside = %v, want %v", got, tt.inside)
			}
			// Every join keeps the area right at the vertex.
			if !inside(out, 10.5, -0.2) {
				t.Error("join left a gap at the vertex")
			}
		})
	}
}

func TestExpandRoundJoinArc(t *testing.T) {
	corner := openLine(geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10))
	out := Expand(corner, Style{Width: 2, Join: JoinRound, Cap: CapButt}, 0.01)
	d := float32(math.Sqrt2 / 2 * 0.95)
	if !inside(out, 10+d, -d) {
		t.Error("round join should cover the arc")
	}
}

func TestExpandClosedRing(t *testing.T) {
	sq := []path.Poly{{Pts: []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}, Closed: true}}
	out := Expand(sq, Style{Width: 2, Join: JoinMiter, MiterLimit: 4}, 0.25)
	if len(out) != 2 {
		t.Fatalf("closed stroke produced %d loops, want 2", len(out))
	}
	tests := []struct {
		x, y float32
		want bool
	}{
		{5, 5, false},
		{5, 0, true},
		{5, -0.9, true},
		{5, -1.1, false},
		{-0.9, -0.9, true},
		{9.1, 5, true},
	}
	for _, tt := range tests {
		if got := inside(out, tt.x, tt.y); got != tt.want {
			t.Errorf("inside(%v,%v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestExpandDots(t *testing.T) {
	dot := []path.Poly{{Pts: []geom.Point{{X: 5, Y: 5}, {X: 5, Y: 5}}}}
	if out := Expand(dot, Style{Width: 4, Cap: CapButt}, 0.1); len(out) != 0 {
		t.Errorf("butt dot produced %d polys", len(out))
	}
	round := Expand(dot, Style{Width: 4, Cap: CapRound}, 0.1)
	if !inside(round, 5, 6.9) || inside(round, 6.9, 6.9) {
		t.Error("round dot is not a disc of radius 2")
	}
	sq := Expand(dot, Style{Width: 4, Cap: CapSquare}, 0.1)
	if !inside(sq, 6.9, 6.9) || inside(sq, 7.1, 5) {
		t.Error("square dot is not a 4x4 square")
	}
}

func TestCapJoinStrings(t *testing.T) {
	if CapRound.String() != "Round" || JoinMiter.String() != "Miter" || Cap(9).String() != "Unknown" {
		t.Error("unexpected enum names")
	}
}
