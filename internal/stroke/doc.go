// Package stroke expands flattened polylines into filled stroke outlines.
//
// A stroke is converted to a fill where:
//   - the forward side is offset by -width/2 along the normal and runs forward
//   - the backward side is offset by +width/2 and is appended reversed
//   - caps connect the two sides at the ends of open subpaths
//   - joins connect consecutive segments on the outer side of each turn
//
// Closed subpaths produce two loops of opposite orientation, so the result
// must be filled with the non-zero rule.
//
// # Caps
//
//   - CapButt: flat, ends at the endpoint
//   - CapSquare: extends width/2 past the endpoint
//   - CapRound: semicircle of radius width/2
//
// # Joins
//
//   - JoinBevel: straight edge across the corner
//   - JoinRound: arc around the corner
//   - JoinMiter: edges extended to their intersection, falling back to a
//     bevel when the miter length exceeds MiterLimit * width/2
//
// Round geometry is tessellated directly into points with a chord error
// bounded by the expander tolerance.
package stroke
