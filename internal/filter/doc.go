// Package filter implements the post-processing effects a scene applies
// to its composed layer:
//   - Gaussian blur (separable, per direction, duplicate or wrap borders)
//   - Drop shadow (offset, blurred alpha in a solid color, drawn below)
//   - Color matrices for fill and tint, and a tritone color map
//
// Every function works in place on premultiplied 32-bit surfaces.
package filter
