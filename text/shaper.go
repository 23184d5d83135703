package text

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// Style selects a face variant.
type Style uint8

// Styles.
const (
	Regular Style = iota
	Italic
)

// String returns the style name.
func (s Style) String() string {
	switch s {
	case Regular:
		return "Regular"
	case Italic:
		return "Italic"
	default:
		return "Unknown"
	}
}

// ParseStyle maps a style string to a Style. "italic" and "oblique" select
// Italic; anything else is Regular.
func ParseStyle(s string) Style {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "italic", "oblique":
		return Italic
	default:
		return Regular
	}
}

// Glyph is one positioned glyph of a run.
type Glyph struct {
	ID      uint16
	Cluster int // rune index of the first source character

	// X and Y are the pen position of the glyph origin.
	X, Y    float32
	Advance float32

	// Outline is relative to the glyph origin. It may be shared with other
	// runs and must not be modified.
	Outline Outline
}

// Run is a laid out line of text.
type Run struct {
	Glyphs  []Glyph
	Advance float32
	Ascent  float32
	Descent float32
}

// Bounds returns the union of the positioned glyph outlines. ok is false
// when no glyph has an outline.
func (r *Run) Bounds() (minX, minY, maxX, maxY float32, ok bool) {
	for i := range r.Glyphs {
		g := &r.Glyphs[i]
		x0, y0, x1, y1, has := g.Outline.Bounds()
		if !has {
			continue
		}
		x0, x1, y0, y1 = x0+g.X, x1+g.X, y0+g.Y, y1+g.Y
		if !ok {
			minX, minY, maxX, maxY, ok = x0, y0, x1, y1, true
			continue
		}
		minX, minY = min(minX, x0), min(minY, y0)
		maxX, maxY = max(maxX, x1), max(maxY, y1)
	}
	return minX, minY, maxX, maxY, ok
}

// HarfbuzzShaper keeps mutable buffers, so each call takes its own.
var shaperPool = sync.Pool{
	New: func() any { return &shaping.HarfbuzzShaper{} },
}

var bufferPool = sync.Pool{
	New: func() any { return new(sfnt.Buffer) },
}

// Layout shapes s with the named family at size pixels per em and returns
// the glyphs on a single line starting at the origin.
func Layout(family string, size float32, style Style, s string) (*Run, error) {
	f, err := Lookup(family)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("text: invalid size %v", size)
	}
	run := &Run{}
	if s == "" {
		return run, nil
	}

	runes := []rune(s)
	face := font.NewFace(f.shaped)
	hb := shaperPool.Get().(*shaping.HarfbuzzShaper)
	defer shaperPool.Put(hb)
	buf := bufferPool.Get().(*sfnt.Buffer)
	defer bufferPool.Put(buf)

	var pen float32
	for _, dr := range visualOrder(directionalRuns(s, runes)) {
		dir := di.DirectionLTR
		if dr.rtl {
			dir = di.DirectionRTL
		}
		out := hb.Shape(shaping.Input{
			Text:      runes,
			RunStart:  dr.start,
			RunEnd:    dr.end,
			Direction: dir,
			Face:      face,
			Size:      fixed.Int26_6(size * 64),
			Script:    detectScript(runes[dr.start:dr.end]),
			Language:  language.NewLanguage("en"),
		})
		run.Ascent = max(run.Ascent, fixedToFloat(out.LineBounds.Ascent))
		run.Descent = max(run.Descent, -fixedToFloat(out.LineBounds.Descent))

		for _, g := range out.Glyphs {
			gid := uint16(g.GlyphID) //nolint:gosec // sfnt glyph indices are 16 bit
			o, err := f.cachedOutline(buf, sfnt.GlyphIndex(gid), size)
			if err != nil {
				slogger().Warn("text: glyph outline", "font", f.name, "gid", gid, "err", err)
			}
			if style == Italic {
				o = o.clone()
				o.shear(ItalicShear)
			}
			adv := fixedToFloat(g.Advance)
			run.Glyphs = append(run.Glyphs, Glyph{
				ID:      gid,
				Cluster: g.TextIndex(),
				X:       pen + fixedToFloat(g.XOffset),
				Y:       -fixedToFloat(g.YOffset),
				Advance: adv,
				Outline: o,
			})
			pen += adv
		}
	}
	run.Advance = pen
	slogger().Debug("text: layout", "font", f.name, "size", size, "runes", len(runes), "glyphs", len(run.Glyphs))
	return run, nil
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// dirRun is a rune range [start, end) of one embedding direction.
type dirRun struct {
	start, end int
	rtl        bool
}

// directionalRuns splits s into maximal runs of equal bidi direction in
// logical order.
func directionalRuns(s string, runes []rune) []dirRun {
	levels := bidiLevels(s, len(runes))
	var runs []dirRun
	for i, lv := range levels {
		rtl := lv == 1
		if n := len(runs); n > 0 && runs[n-1].rtl == rtl {
			runs[n-1].end = i + 1
			continue
		}
		runs = append(runs, dirRun{start: i, end: i + 1, rtl: rtl})
	}
	return runs
}

// bidiLevels returns 0 or 1 per rune. Failures of the bidi algorithm leave
// the text left to right.
func bidiLevels(s string, n int) []int {
	levels := make([]int, n)
	var p bidi.Paragraph
	if _, err := p.SetString(s, bidi.DefaultDirection(bidi.Neutral)); err != nil {
		return levels
	}
	ordering, err := p.Order()
	if err != nil {
		return levels
	}
	// run.Pos() gives inclusive rune indices.
	for i := 0; i < ordering.NumRuns(); i++ {
		r := ordering.Run(i)
		if r.Direction() != bidi.RightToLeft {
			continue
		}
		start, end := r.Pos()
		for j := max(start, 0); j <= end && j < n; j++ {
			levels[j] = 1
		}
	}
	return levels
}

// visualOrder reverses each sequence of adjacent right-to-left runs in a
// left-to-right paragraph.
func visualOrder(runs []dirRun) []dirRun {
	for i := 0; i < len(runs); {
		if !runs[i].rtl {
			i++
			continue
		}
		j := i
		for j < len(runs) && runs[j].rtl {
			j++
		}
		for a, b := i, j-1; a < b; a, b = a+1, b-1 {
			runs[a], runs[b] = runs[b], runs[a]
		}
		i = j
	}
	return runs
}
