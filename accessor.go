package tvg

import "fmt"

// Accessor visits the paints of a loaded tree so callers can find and
// edit nodes by id.
//
// Example:
//
//	pic := tvg.NewPicture()
//	_ = pic.Load("logo.tvg")
//	want := tvg.ID("eye")
//	_ = tvg.NewAccessor().Set(pic, func(p tvg.Paint) bool {
//		if p.ID() == want {
//			p.SetOpacity(0)
//			return false
//		}
//		return true
//	})
type Accessor struct{}

// NewAccessor returns an accessor.
func NewAccessor() *Accessor { return &Accessor{} }

// Set calls fn for root and every descendant in pre-order. Mask targets
// are not visited. fn returning false stops the walk.
func (a *Accessor) Set(root Paint, fn func(Paint) bool) error {
	if root == nil || fn == nil {
		return fmt.Errorf("%w: accessor needs a paint and a callback", ErrInvalidArguments)
	}
	visit(root, fn)
	return nil
}

func visit(p Paint, fn func(Paint) bool) bool {
	if !fn(p) {
		return false
	}
	for _, ch := range children(p) {
		if !visit(ch, fn) {
			return false
		}
	}
	return true
}

// ID hashes name with DJB2. Loaders and callers use it to tag paints.
func ID(name string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(name); i++ {
		h = h*33 + uint32(name[i])
	}
	return h
}
