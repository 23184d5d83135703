// Package geom provides the float32 geometry shared by the engine:
// points, 3x3 affine matrices, float bounding boxes and integer pixel
// regions.
//
// All coordinate math in the engine runs in float32. Comparisons against
// zero use the epsilons defined here instead of exact equality.
package geom
