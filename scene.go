package tvg

import (
	"fmt"
	"slices"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/render"
)

// Scene groups paints. Children draw in insertion order.
type Scene struct {
	paint
	children []Paint
	effects  []Effect
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	s := &Scene{}
	s.init(s)
	return s
}

// Type returns TypeScene.
func (s *Scene) Type() Type { return TypeScene }

// Push appends p. The scene takes a reference to it.
func (s *Scene) Push(p Paint) error {
	return s.PushAt(p, nil)
}

// PushAt inserts p before the child before. A nil before appends.
func (s *Scene) PushAt(p Paint, before Paint) error {
	idx := len(s.children)
	if before != nil {
		idx = slices.Index(s.children, before)
		if idx < 0 {
			return fmt.Errorf("%w: insertion point is not a child", ErrInvalidArguments)
		}
	}
	if err := attach(p, s, nil); err != nil {
		return err
	}
	s.children = slices.Insert(s.children, idx, p)
	s.dirty |= render.UpdatePath
	return nil
}

// Remove detaches p and drops the scene's reference to it. A nil p
// removes every child.
func (s *Scene) Remove(p Paint) error {
	if p == nil {
		s.Clear(true)
		return nil
	}
	idx := slices.Index(s.children, p)
	if idx < 0 {
		return fmt.Errorf("%w: paint is not a child", ErrInvalidArguments)
	}
	s.children = slices.Delete(s.children, idx, idx+1)
	detach(p, true)
	s.dirty |= render.UpdatePath
	return nil
}

// Clear detaches every child. With free set the children are destroyed
// when the scene held their last reference; otherwise ownership returns
// to the caller.
func (s *Scene) Clear(free bool) {
	children := s.children
	s.children = nil
	for _, c := range children {
		detach(c, free)
	}
	s.dirty |= render.UpdatePath
}

// Paints returns the children in draw order.
func (s *Scene) Paints() []Paint {
	return slices.Clone(s.children)
}

// Duplicate returns a deep copy of the scene and its children.
func (s *Scene) Duplicate() Paint {
	d := NewScene()
	s.copyTo(&d.paint)
	d.effects = slices.Clone(s.effects)
	for _, c := range s.children {
		dup := c.Duplicate()
		dup.base().refs = 0
		_ = attach(dup, d, nil)
		d.children = append(d.children, dup)
	}
	return d
}

func (s *Scene) localBounds() geom.BBox {
	return childBounds(s.children)
}

func childBounds(children []Paint) geom.BBox {
	var bb geom.BBox
	for _, c := range children {
		cb := c.localBounds()
		if !cb.Valid() {
			continue
		}
		bb.Union(cb.Transform(c.base().m))
	}
	return bb
}

func (s *Scene) destroy() {
	s.Clear(true)
}
