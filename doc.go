// Package tvg is a retained-mode 2D vector graphics engine.
//
// # Overview
//
// Scenes are trees of paints: shapes (paths with fills and strokes),
// pictures (raster images or loaded vector trees), scenes (groups) and
// text. A Canvas renders its paints into a caller-owned pixel buffer with
// a software rasterizer. Prepare work (flattening, stroking, span
// building, gradient tables, image sampling) runs on a worker pool.
//
// # Quick Start
//
//	import "github.com/gogpu/tvg"
//
//	c := tvg.NewCanvas()
//	defer c.Close()
//
//	buf := make([]uint32, 100*100)
//	_ = c.SetTarget(buf, 100, 100, 100, tvg.ARGB8888)
//
//	rect := tvg.NewShape()
//	rect.AppendRect(10, 10, 30, 40, 0, 0)
//	rect.SetFillColor(255, 0, 0, 255)
//	_ = c.Push(rect)
//
//	_ = c.Update()
//	_ = c.Draw(true)
//	_ = c.Sync()
//
// # Frame Lifecycle
//
// Update walks the tree, combines transforms and opacities and posts a
// prepare task per changed paint. Draw joins the tasks in draw order and
// composes the results. Sync waits for the pool and reports paints that
// failed to prepare as *PrepareError. The tree must not change between
// Update and Sync.
//
// # Ownership
//
// A paint belongs to at most one Scene, Picture, Canvas or masked paint.
// Attaching takes a reference and detaching drops it; a paint is destroyed
// when the last reference is dropped with free set. Callers keep a paint
// alive across detaches with Ref.
//
// # Coordinate System
//
//   - Origin (0,0) at the top-left of the target
//   - X increases right, Y increases down
//   - Angles in degrees, clockwise on screen
//
// # Errors
//
// Every error wraps one of ErrInvalidArguments, ErrInsufficientCondition,
// ErrFailedAllocation, ErrMemoryCorruption, ErrNonSupport or ErrUnknown.
// ResultOf maps an error back to its Result kind.
package tvg

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
