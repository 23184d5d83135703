package tvg

import (
	"fmt"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/render"
	"github.com/gogpu/tvg/internal/sw"
)

// Paint is a node of the paint tree: a *Shape, *Picture, *Scene or *Text.
//
// A paint is attached to at most one parent (a Scene, a Canvas or a paint
// it masks) at a time. Attaching takes a reference; detaching drops it and
// destroys the paint when no reference is left.
//
// Paints are not safe for concurrent use. Between Canvas.Update and
// Canvas.Sync the tree must not be modified.
type Paint interface {
	// Type returns the concrete kind of the paint.
	Type() Type

	// Transform returns the local transform.
	Transform() Matrix
	// SetTransform installs a full local transform. Translate, Scale and
	// Rotate are refused until ResetTransform.
	SetTransform(m Matrix) error
	// ResetTransform returns to the identity and re-enables Translate,
	// Scale and Rotate.
	ResetTransform()
	// Translate sets the translation component.
	Translate(x, y float32) error
	// Scale sets the uniform scale component.
	Scale(s float32) error
	// Rotate sets the rotation component in degrees.
	Rotate(deg float32) error

	Opacity() uint8
	SetOpacity(o uint8)
	Blend() BlendMethod
	SetBlend(m BlendMethod) error

	// Clip is Mask(target, MaskClip).
	Clip(target Paint) error
	// Mask uses target to limit or merge with this paint. The paint takes
	// a reference to target. A nil target removes the mask.
	Mask(target Paint, method MaskMethod) error
	// MaskTarget returns the mask target and method, or nil and MaskNone.
	MaskTarget() (Paint, MaskMethod)

	// Duplicate returns a deep copy with a reference count of one. Render
	// state is not shared.
	Duplicate() Paint

	// Bounds returns the axis-aligned bounding box in world coordinates.
	Bounds() (x, y, w, h float32, err error)
	// Corners returns the local bounding box corners in world coordinates.
	Corners() ([4]Point, error)
	// Intersects reports whether the world rectangle overlaps the paint's
	// local bounding box.
	Intersects(x, y, w, h float32) bool

	Ref() int
	Unref(free bool) int
	RefCount() int

	// ID returns the accessor id, zero when unset.
	ID() uint32
	SetID(id uint32)

	// Parent returns the Scene or Picture holding this paint.
	Parent() Paint

	base() *paint
	localBounds() geom.BBox
	destroy()
}

// paint is the state shared by every Paint.
type paint struct {
	self Paint

	id     uint32
	m      geom.Matrix
	tx, ty float32
	scale  float32
	rot    float32
	custom bool

	opacity uint8
	blend   BlendMethod

	mask      Paint
	method    MaskMethod
	maskOwner Paint

	parent Paint
	canvas *Canvas

	refs  int
	freed bool

	// dirty collects the changes since the last update.
	dirty render.UpdateFlag
	slot  slot
}

// slot is the per-paint prepare state owned by the canvas.
type slot struct {
	renderer *sw.Renderer
	shape    *sw.ShapeData
	image    *sw.ImageData
	clip     bool // prepared as a clip shape only
	skip     bool // nothing to draw this frame
	layered  bool // scene drawn through a compositor layer
	opacity  uint8
	effects  []render.Effect // device-space scene effects
}

func (p *paint) init(self Paint) {
	p.self = self
	p.m = geom.Identity()
	p.scale = 1
	p.opacity = 255
	p.dirty = render.UpdateAll
}

func (p *paint) base() *paint { return p }

func (p *paint) Transform() Matrix { return p.m }

func (p *paint) SetTransform(m Matrix) error {
	vals := [...]float32{m.E11, m.E12, m.E13, m.E21, m.E22, m.E23, m.E31, m.E32, m.E33}
	for _, v := range vals {
		if !geom.Finite(v) {
			return fmt.Errorf("%w: non-finite transform", ErrInvalidArguments)
		}
	}
	p.m, p.custom = m, true
	p.dirty |= render.UpdateTransform
	return nil
}

func (p *paint) ResetTransform() {
	p.tx, p.ty, p.rot, p.scale, p.custom = 0, 0, 0, 1, false
	p.m = geom.Identity()
	p.dirty |= render.UpdateTransform
}

func (p *paint) Translate(x, y float32) error {
	if p.custom {
		return fmt.Errorf("%w: translate after SetTransform", ErrInsufficientCondition)
	}
	if !geom.Finite(x) || !geom.Finite(y) {
		return fmt.Errorf("%w: translate %v,%v", ErrInvalidArguments, x, y)
	}
	p.tx, p.ty = x, y
	p.compose()
	return nil
}

func (p *paint) Scale(s float32) error {
	if p.custom {
		return fmt.Errorf("%w: scale after SetTransform", ErrInsufficientCondition)
	}
	if !geom.Finite(s) {
		return fmt.Errorf("%w: scale %v", ErrInvalidArguments, s)
	}
	p.scale = s
	p.compose()
	return nil
}

func (p *paint) Rotate(deg float32) error {
	if p.custom {
		return fmt.Errorf("%w: rotate after SetTransform", ErrInsufficientCondition)
	}
	if !geom.Finite(deg) {
		return fmt.Errorf("%w: rotate %v", ErrInvalidArguments, deg)
	}
	p.rot = deg
	p.compose()
	return nil
}

// compose rebuilds the matrix as translate · rotate · scale.
func (p *paint) compose() {
	p.m = geom.Translation(p.tx, p.ty).Mul(geom.Rotation(p.rot)).Mul(geom.Scaling(p.scale, p.scale))
	p.dirty |= render.UpdateTransform
}

func (p *paint) Opacity() uint8 { return p.opacity }

func (p *paint) SetOpacity(o uint8) {
	if o == p.opacity {
		return
	}
	p.opacity = o
	p.dirty |= render.UpdateColor
}

func (p *paint) Blend() BlendMethod { return p.blend }

func (p *paint) SetBlend(m BlendMethod) error {
	if !m.Valid() {
		return fmt.Errorf("%w: blend method %v", ErrInvalidArguments, m)
	}
	p.blend = m
	p.dirty |= render.UpdateBlend
	return nil
}

func (p *paint) Clip(target Paint) error {
	if target == nil {
		return p.Mask(nil, MaskNone)
	}
	return p.Mask(target, MaskClip)
}

func (p *paint) Mask(target Paint, method MaskMethod) error {
	if !method.Valid() {
		return fmt.Errorf("%w: mask method %v", ErrInvalidArguments, method)
	}
	if target == nil || method == MaskNone {
		if target != nil {
			return fmt.Errorf("%w: mask target with method None", ErrInvalidArguments)
		}
		p.detachMask()
		return nil
	}
	t := target.base()
	if t == p {
		return fmt.Errorf("%w: paint masked by itself", ErrInvalidArguments)
	}
	if t.freed {
		return fmt.Errorf("%w: mask target was destroyed", ErrMemoryCorruption)
	}
	if t.attached() {
		return fmt.Errorf("%w: mask target is attached elsewhere", ErrInsufficientCondition)
	}
	for a := p.parent; a != nil; a = a.base().parent {
		if a.base() == t {
			return fmt.Errorf("%w: paint masked by its ancestor", ErrInvalidArguments)
		}
	}
	p.detachMask()
	t.refs++
	t.maskOwner = p.self
	t.dirty = render.UpdateAll
	p.mask, p.method = target, method
	p.dirty |= render.UpdateClip
	return nil
}

func (p *paint) detachMask() {
	if p.mask == nil {
		return
	}
	t := p.mask.base()
	t.maskOwner = nil
	t.releaseSlot()
	p.mask, p.method = nil, MaskNone
	p.dirty |= render.UpdateClip
	t.Unref(true)
}

func (p *paint) MaskTarget() (Paint, MaskMethod) {
	if p.mask == nil {
		return nil, MaskNone
	}
	return p.mask, p.method
}

func (p *paint) Ref() int {
	p.refs++
	return p.refs
}

func (p *paint) Unref(free bool) int {
	if p.refs > 0 {
		p.refs--
	}
	if p.refs == 0 && free && !p.attached() && !p.freed {
		p.free()
	}
	return p.refs
}

func (p *paint) RefCount() int { return p.refs }

func (p *paint) ID() uint32 { return p.id }

func (p *paint) SetID(id uint32) { p.id = id }

func (p *paint) Parent() Paint { return p.parent }

func (p *paint) attached() bool {
	return p.parent != nil || p.canvas != nil || p.maskOwner != nil
}

// free destroys the paint: its mask and children are released.
func (p *paint) free() {
	p.freed = true
	p.detachMask()
	p.releaseSlot()
	p.self.destroy()
}

// releaseSlot drops render state so a later canvas starts fresh.
func (p *paint) releaseSlot() {
	if p.slot.image != nil && p.slot.renderer != nil {
		p.slot.renderer.ReleaseImage(p.slot.image)
	}
	p.slot = slot{}
	p.dirty = render.UpdateAll
}

// copyTo copies the shared paint state into a fresh duplicate.
func (p *paint) copyTo(d *paint) {
	d.id = p.id
	d.m, d.tx, d.ty, d.scale, d.rot, d.custom = p.m, p.tx, p.ty, p.scale, p.rot, p.custom
	d.opacity, d.blend = p.opacity, p.blend
	d.refs = 1
	if p.mask != nil {
		dup := p.mask.Duplicate()
		dup.base().refs = 0
		_ = d.self.Mask(dup, p.method)
	}
}

// world returns the transform from local to world coordinates.
func (p *paint) world() geom.Matrix {
	m := p.m
	for a := p.parent; a != nil; a = a.base().parent {
		if pic, ok := a.(*Picture); ok {
			m = pic.scaling().Mul(m)
		}
		m = a.base().m.Mul(m)
	}
	return m
}

func (p *paint) Bounds() (x, y, w, h float32, err error) {
	bb := p.self.localBounds()
	if !bb.Valid() {
		return 0, 0, 0, 0, fmt.Errorf("%w: paint has no geometry", ErrInsufficientCondition)
	}
	bb = bb.Transform(p.world())
	return bb.Min.X, bb.Min.Y, bb.Width(), bb.Height(), nil
}

func (p *paint) Corners() ([4]Point, error) {
	var out [4]Point
	bb := p.self.localBounds()
	if !bb.Valid() {
		return out, fmt.Errorf("%w: paint has no geometry", ErrInsufficientCondition)
	}
	m := p.world()
	for i, c := range bb.Corners() {
		out[i] = fromInternal(m.Apply(c))
	}
	return out, nil
}

func (p *paint) Intersects(x, y, w, h float32) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	bb := p.self.localBounds()
	if !bb.Valid() {
		return false
	}
	inv, ok := p.world().Invert()
	if !ok {
		return false
	}
	q := geom.NewBBox(geom.Pt(x, y), geom.Pt(x+w, y+h)).Transform(inv)
	return bb.Overlaps(q)
}

// attach makes parent the owner of child, taking a reference.
func attach(child Paint, parent Paint, c *Canvas) error {
	if child == nil {
		return fmt.Errorf("%w: nil paint", ErrInvalidArguments)
	}
	b := child.base()
	if b.freed {
		return fmt.Errorf("%w: paint was destroyed", ErrMemoryCorruption)
	}
	if b.attached() {
		return fmt.Errorf("%w: paint already has a parent", ErrInsufficientCondition)
	}
	if parent != nil {
		if parent.base() == b {
			return fmt.Errorf("%w: paint pushed into itself", ErrInvalidArguments)
		}
		for a := parent; a != nil; a = a.base().parent {
			if a.base() == b {
				return fmt.Errorf("%w: paint pushed into its descendant", ErrInvalidArguments)
			}
		}
	}
	if err := validate(child); err != nil {
		return err
	}
	b.parent, b.canvas = parent, c
	b.refs++
	b.dirty = render.UpdateAll
	return nil
}

// detach releases child from its parent and drops the reference.
func detach(child Paint, free bool) {
	b := child.base()
	b.parent, b.canvas = nil, nil
	b.releaseSlot()
	b.Unref(free)
}

// validate rejects shapes whose commands and points disagree.
func validate(p Paint) error {
	switch v := p.(type) {
	case *Shape:
		if !v.valid() {
			return fmt.Errorf("%w: shape path commands and points disagree", ErrInvalidArguments)
		}
	case *Scene:
		for _, c := range v.children {
			if err := validate(c); err != nil {
				return err
			}
		}
	}
	return nil
}
