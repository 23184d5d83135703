// Package text turns strings into glyph outlines for Text paints.
//
// Fonts live in a process-wide registry keyed by family name. The Go
// Regular face is registered as "Go" and cannot be unloaded; other faces
// are added with [Load] or [LoadData]:
//
//	name, err := text.Load("fonts/NotoSans-Regular.ttf")
//	if err != nil {
//	    return err
//	}
//	run, err := text.Layout(name, 32, text.Regular, "Hello")
//
// [Layout] resolves paragraph direction with the Unicode bidi algorithm,
// shapes each directional run with HarfBuzz (go-text/typesetting) and
// extracts the outline of every glyph through golang.org/x/image/font/sfnt.
// Outlines use a y-down coordinate system with the origin on the baseline
// at the pen position. Quadratic segments are raised to cubics so the
// result only holds MoveTo, LineTo, CubicTo and Close.
package text
