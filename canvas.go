package tvg

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/render"
	"github.com/gogpu/tvg/internal/sw"
)

// canvasState is the lifecycle position of a Canvas.
type canvasState uint8

const (
	stateIdle canvasState = iota
	stateConfigured
	statePrepared
	stateDrawing
)

var stateNames = [...]string{"Idle", "Configured", "Prepared", "Drawing"}

func (s canvasState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Canvas renders a list of paints into a caller-owned pixel buffer.
//
// A frame is Update, Draw and Sync. Update posts prepare work for every
// changed paint to the worker pool, Draw composes the prepared paints
// into the target and Sync waits for the workers and reports prepare
// failures. The paint tree must not be modified between Update and Sync.
//
// A Canvas is not safe for concurrent use.
type Canvas struct {
	r      *sw.Renderer
	paints []Paint

	state     canvasState
	hasTarget bool
	closed    bool

	// viewport is the requested sub-rectangle, zero when unset.
	viewport geom.Region

	// owners maps prepared renderer data back to the paint it belongs to.
	owners map[any]Paint

	// failed holds update failures reported by the next Sync.
	failed []*PrepareError

	// drawErr is the first compositor failure of the current frame.
	drawErr error
}

// NewCanvas creates a canvas and starts its worker pool.
//
// Example:
//
//	c := tvg.NewCanvas()
//	defer c.Close()
//	buf := make([]uint32, 256*256)
//	if err := c.SetTarget(buf, 256, 256, 256, tvg.ARGB8888); err != nil {
//		return err
//	}
func NewCanvas(opts ...Option) *Canvas {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &Canvas{
		r: sw.NewRenderer(sw.Options{
			Threads:   o.threads,
			Allocator: o.allocator,
			Mempool:   o.mempool,
			Wide:      o.wide,
		}),
		owners: make(map[any]Paint),
	}
	Logger().Debug("tvg: canvas created", "threads", c.r.Workers(), "mempool", o.mempool)
	return c
}

// SetTarget binds a 32-bit pixel buffer. stride is in pixels. The caller
// keeps ownership of buf. A failed call leaves the canvas without a
// target.
func (c *Canvas) SetTarget(buf []uint32, stride, w, h int, cs ColorSpace) error {
	if err := c.retarget(); err != nil {
		return err
	}
	if err := c.r.SetTarget(buf, stride, w, h, cs); err != nil {
		return classify("set target", err)
	}
	c.bound()
	return nil
}

// SetTarget8 binds an 8-bit grayscale buffer receiving coverage.
func (c *Canvas) SetTarget8(buf []uint8, stride, w, h int) error {
	if err := c.retarget(); err != nil {
		return err
	}
	if err := c.r.SetTarget8(buf, stride, w, h); err != nil {
		return classify("set target", err)
	}
	c.bound()
	return nil
}

func (c *Canvas) retarget() error {
	if c.closed {
		return fmt.Errorf("%w: canvas is closed", ErrInsufficientCondition)
	}
	if c.state == stateDrawing {
		return fmt.Errorf("%w: target changed while drawing", ErrInsufficientCondition)
	}
	_ = c.Sync()
	c.state, c.hasTarget = stateIdle, false
	return nil
}

func (c *Canvas) bound() {
	c.hasTarget = true
	c.state = stateConfigured
	if !c.viewport.Empty() {
		c.r.SetViewport(c.viewport)
	}
	c.markAll()
}

// Push appends p to the top-level paint list. The canvas takes a
// reference to p.
func (c *Canvas) Push(p Paint) error {
	if c.closed {
		return fmt.Errorf("%w: canvas is closed", ErrInsufficientCondition)
	}
	_ = c.Sync()
	if err := attach(p, nil, c); err != nil {
		return err
	}
	c.paints = append(c.paints, p)
	if c.state == statePrepared {
		c.state = stateConfigured
	}
	return nil
}

// Remove detaches p and drops the canvas reference to it. A nil p
// removes every paint.
func (c *Canvas) Remove(p Paint) error {
	if p == nil {
		return c.Clear(true)
	}
	idx := slices.Index(c.paints, p)
	if idx < 0 {
		return fmt.Errorf("%w: paint is not on the canvas", ErrInvalidArguments)
	}
	_ = c.Sync()
	c.paints = slices.Delete(c.paints, idx, idx+1)
	detach(p, true)
	return nil
}

// Paints returns the top-level paints in draw order.
func (c *Canvas) Paints() []Paint {
	return slices.Clone(c.paints)
}

// Clear detaches every paint. With free set the paints are destroyed
// when the canvas held their last reference.
func (c *Canvas) Clear(free bool) error {
	if c.closed {
		return fmt.Errorf("%w: canvas is closed", ErrInsufficientCondition)
	}
	_ = c.Sync()
	paints := c.paints
	c.paints = nil
	for _, p := range paints {
		detach(p, free)
	}
	clear(c.owners)
	if c.hasTarget {
		c.state = stateConfigured
	}
	return nil
}

// Update prepares the given paints, or every paint when none is given.
// Each listed paint must be on this canvas. Prepare work runs on the
// worker pool until Draw or Sync.
func (c *Canvas) Update(paints ...Paint) error {
	if err := c.ready("update"); err != nil {
		return err
	}
	var want map[Paint]bool
	if len(paints) > 0 {
		want = make(map[Paint]bool, len(paints))
		for _, p := range paints {
			if p == nil || !c.owns(p) {
				return fmt.Errorf("%w: paint is not on this canvas", ErrInvalidArguments)
			}
			want[p] = true
		}
	} else {
		clear(c.owners)
	}
	u := updater{c: c, want: want}
	for _, p := range c.paints {
		u.update(p, u.root())
	}
	Logger().Debug("tvg: canvas updated", "paints", len(c.paints), "prepared", u.prepared)
	c.state = statePrepared
	return nil
}

// owns reports whether p is attached below one of the canvas paints.
func (c *Canvas) owns(p Paint) bool {
	b := p.base()
	for {
		switch {
		case b.canvas == c:
			return true
		case b.parent != nil:
			b = b.parent.base()
		case b.maskOwner != nil:
			b = b.maskOwner.base()
		default:
			return false
		}
	}
}

// Draw composes the prepared paints into the target. Paints changed since
// the last Update are prepared first. With clear set the viewport is
// cleared to transparent before drawing.
func (c *Canvas) Draw(clear bool) error {
	if err := c.ready("draw"); err != nil {
		return err
	}
	if c.state == stateConfigured || c.dirty() {
		if err := c.Update(); err != nil {
			return err
		}
	}
	if err := c.r.PreRender(clear); err != nil {
		return classify("draw", err)
	}
	c.drawErr = nil
	for _, p := range c.paints {
		c.draw(p)
	}
	c.r.PostRender()
	c.state = stateDrawing
	return c.drawErr
}

// Sync waits for all prepare work. It returns one *PrepareError per paint
// that failed to prepare, joined; such paints draw empty.
func (c *Canvas) Sync() error {
	if c.closed {
		return nil
	}
	var errs []error
	for _, pe := range c.failed {
		errs = append(errs, pe)
	}
	c.failed = nil
	for _, te := range c.r.Sync() {
		pe := &PrepareError{Err: te.Err}
		if p, ok := c.owners[te.Owner]; ok {
			pe.ID, pe.Type = p.ID(), p.Type()
		}
		Logger().Warn("tvg: prepare failed", "type", pe.Type, "id", pe.ID, "err", te.Err)
		errs = append(errs, pe)
	}
	if c.state == stateDrawing {
		c.state = statePrepared
	}
	return errors.Join(errs...)
}

// Viewport restricts drawing to a sub-rectangle of the target.
func (c *Canvas) Viewport(x, y, w, h int) error {
	if c.closed {
		return fmt.Errorf("%w: canvas is closed", ErrInsufficientCondition)
	}
	if c.state == stateDrawing {
		return fmt.Errorf("%w: viewport changed while drawing", ErrInsufficientCondition)
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalidArguments, w, h)
	}
	c.viewport = geom.Region{X: x, Y: y, W: w, H: h}
	if c.hasTarget {
		c.r.SetViewport(c.viewport)
		c.state = stateConfigured
	}
	c.markAll()
	return nil
}

// SetMempool switches the compositor scratch buffer policy.
func (c *Canvas) SetMempool(policy MempoolPolicy) error {
	if c.closed {
		return fmt.Errorf("%w: canvas is closed", ErrInsufficientCondition)
	}
	if policy > MempoolIndividual {
		return fmt.Errorf("%w: mempool policy %v", ErrInvalidArguments, policy)
	}
	if c.state == stateDrawing {
		return fmt.Errorf("%w: mempool changed while drawing", ErrInsufficientCondition)
	}
	c.r.SetMempool(policy)
	return nil
}

// Close waits for outstanding work, destroys the paints the canvas holds
// the last reference to and stops the workers. A closed canvas refuses
// every operation.
func (c *Canvas) Close() {
	if c.closed {
		return
	}
	_ = c.Clear(true)
	c.closed = true
	c.hasTarget = false
	c.state = stateIdle
	c.r.Close()
	Logger().Debug("tvg: canvas closed")
}

func (c *Canvas) ready(op string) error {
	switch {
	case c.closed:
		return fmt.Errorf("%w: %s on a closed canvas", ErrInsufficientCondition, op)
	case !c.hasTarget:
		return fmt.Errorf("%w: %s without a target", ErrInsufficientCondition, op)
	case c.state == stateDrawing:
		return fmt.Errorf("%w: %s before sync", ErrInsufficientCondition, op)
	}
	return nil
}

// dirty reports whether any paint changed since it was prepared.
func (c *Canvas) dirty() bool {
	for _, p := range c.paints {
		if treeDirty(p) {
			return true
		}
	}
	return false
}

func treeDirty(p Paint) bool {
	pollFills(p)
	b := p.base()
	if b.dirty != 0 || b.slot.renderer == nil {
		return true
	}
	if b.mask != nil && treeDirty(b.mask) {
		return true
	}
	for _, ch := range children(p) {
		if treeDirty(ch) {
			return true
		}
	}
	return false
}

// markAll forces a full prepare on the next update.
func (c *Canvas) markAll() {
	for _, p := range c.paints {
		walk(p, func(q Paint) bool {
			q.base().dirty |= render.UpdateTransform
			return true
		})
	}
}

// children returns the paints drawn below p.
func children(p Paint) []Paint {
	switch v := p.(type) {
	case *Scene:
		return v.children
	case *Picture:
		if v.child != nil {
			return []Paint{v.child}
		}
	case *Text:
		if v.glyphs != nil {
			return []Paint{v.glyphs}
		}
	}
	return nil
}

// walk visits p and its descendants in pre-order, masks after their
// owner. fn returning false stops the walk.
func walk(p Paint, fn func(Paint) bool) bool {
	if !fn(p) {
		return false
	}
	if m := p.base().mask; m != nil && !walk(m, fn) {
		return false
	}
	for _, ch := range children(p) {
		if !walk(ch, fn) {
			return false
		}
	}
	return true
}
