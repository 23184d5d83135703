// Package sw is the software renderer: it turns prepared paint data into
// pixels in a caller-owned buffer.
//
// Preparing a paint posts a task to the worker pool that flattens,
// strokes and rasterizes it into coverage spans. Drawing joins that task
// and blends the spans into the current surface, which is either the
// target or the innermost compositor layer.
//
// Thread safety: a Renderer is driven by a single goroutine. Only prepare
// tasks run on workers, and they touch nothing but their own data.
package sw

import (
	"errors"
	"fmt"

	"github.com/gogpu/tvg/internal/blend"
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/image"
	"github.com/gogpu/tvg/internal/parallel"
	"github.com/gogpu/tvg/internal/render"
	"github.com/gogpu/tvg/internal/wide"
)

// Errors returned by target setup.
var (
	// ErrInvalidTarget reports an impossible buffer geometry.
	ErrInvalidTarget = errors.New("sw: invalid target")

	// ErrNoTarget reports drawing without a target.
	ErrNoTarget = errors.New("sw: no target")
)

// ColorSpace is the pixel layout of the target buffer.
type ColorSpace uint8

// Color spaces. The S variants hold straight alpha.
const (
	ABGR8888 ColorSpace = iota
	ARGB8888
	ABGR8888S
	ARGB8888S
	Grayscale8
)

// String returns the color space name.
func (cs ColorSpace) String() string {
	switch cs {
	case ABGR8888:
		return "ABGR8888"
	case ARGB8888:
		return "ARGB8888"
	case ABGR8888S:
		return "ABGR8888S"
	case ARGB8888S:
		return "ARGB8888S"
	case Grayscale8:
		return "Grayscale8"
	default:
		return "Unknown"
	}
}

// Order returns the channel order pixels are prepared in.
func (cs ColorSpace) Order() image.Order {
	if cs == ABGR8888 || cs == ABGR8888S {
		return image.ABGR
	}
	return image.ARGB
}

// Straight reports whether the color space stores straight alpha.
func (cs ColorSpace) Straight() bool {
	return cs == ABGR8888S || cs == ARGB8888S
}

// Options configures a Renderer.
type Options struct {
	// Threads is the number of prepare workers. Zero prepares inline.
	Threads int

	// Allocator backs compositor scratch buffers. Nil uses the Go heap.
	Allocator Allocator

	// Mempool selects the scratch buffer reuse policy.
	Mempool MempoolPolicy

	// Wide enables the batch solid-fill kernel when the CPU supports it.
	Wide bool
}

// TaskError is a prepare failure collected by Sync.
type TaskError struct {
	Owner any
	Err   error
}

// Renderer draws prepared paints into a target buffer.
type Renderer struct {
	pool *parallel.WorkerPool
	mem  *mempool
	mips *image.Pool
	k    kernel

	target     surface
	view       surface
	cs         ColorSpace
	gray       []uint8
	grayStride int
	hasTgt     bool
	viewport   geom.Region

	layers []*Layer
	posted []posted
}

type posted struct {
	owner any
	task  *parallel.Task
	err   func() error
}

// NewRenderer creates a renderer with its worker pool.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{
		pool: parallel.NewWorkerPool(opts.Threads),
		mem:  newMempool(opts.Mempool, opts.Allocator),
		mips: image.NewPool(4),
	}
	r.k.wide = opts.Wide && wide.Available()
	slogger().Debug("sw: renderer created", "threads", r.pool.Workers(), "mempool", opts.Mempool, "wide", r.k.wide)
	return r
}

// SetMempool switches the scratch buffer policy. Idle buffers of the old
// policy are released.
func (r *Renderer) SetMempool(policy MempoolPolicy) {
	r.mem.release()
	r.mem = newMempool(policy, r.mem.alloc)
}

// SetTarget binds a 32-bit pixel buffer. stride is in pixels.
func (r *Renderer) SetTarget(buf []uint32, stride, w, h int, cs ColorSpace) error {
	if cs == Grayscale8 || cs > Grayscale8 {
		return fmt.Errorf("%w: color space %v needs a 32-bit layout", ErrInvalidTarget, cs)
	}
	if err := checkTarget(len(buf), stride, w, h); err != nil {
		return err
	}
	r.target = surface{buf: buf, stride: stride, region: geom.Region{W: w, H: h}, order: cs.Order()}
	r.cs, r.gray, r.hasTgt = cs, nil, true
	r.viewport = r.target.region
	return nil
}

// SetTarget8 binds an 8-bit grayscale buffer. Drawing goes through an
// internal premultiplied surface whose alpha is written back in
// PostRender.
func (r *Renderer) SetTarget8(buf []uint8, stride, w, h int) error {
	if err := checkTarget(len(buf), stride, w, h); err != nil {
		return err
	}
	r.target = surface{buf: make([]uint32, w*h), stride: w, region: geom.Region{W: w, H: h}, order: image.ARGB}
	r.cs, r.gray, r.hasTgt = Grayscale8, buf, true
	r.grayStride = stride
	r.viewport = r.target.region
	return nil
}

func checkTarget(n, stride, w, h int) error {
	if w <= 0 || h <= 0 || stride < w {
		return fmt.Errorf("%w: %dx%d stride %d", ErrInvalidTarget, w, h, stride)
	}
	if n < stride*(h-1)+w {
		return fmt.Errorf("%w: buffer holds %d pixels, need %d", ErrInvalidTarget, n, stride*(h-1)+w)
	}
	return nil
}

// SetViewport restricts drawing to region, clipped to the target.
func (r *Renderer) SetViewport(region geom.Region) {
	r.viewport = region.Intersect(r.target.region)
}

// Viewport returns the active viewport.
func (r *Renderer) Viewport() geom.Region { return r.viewport }

// ColorSpace returns the target color space.
func (r *Renderer) ColorSpace() ColorSpace { return r.cs }

// current returns the surface draws go to, limited to the viewport.
func (r *Renderer) current() *surface {
	if n := len(r.layers); n > 0 {
		return &r.layers[n-1].surface
	}
	s := &r.view
	*s = r.target
	s.region = r.viewport
	return s
}

// PreRender readies the target for a frame and optionally clears the
// viewport.
func (r *Renderer) PreRender(clear bool) error {
	if !r.hasTgt {
		return ErrNoTarget
	}
	if r.cs == Grayscale8 {
		for y := r.viewport.Y; y < r.viewport.Y2(); y++ {
			row := r.target.span(y, r.viewport.X, r.viewport.X2())
			src := r.gray[y*r.grayStride+r.viewport.X:]
			for i := range row {
				row[i] = uint32(src[i]) << 24
			}
		}
	}
	if clear {
		r.target.fill(r.viewport, 0)
		return nil
	}
	if r.cs.Straight() {
		r.target.apply(r.viewport, image.PremultiplyRow)
	}
	return nil
}

// PostRender finishes a frame: straight-alpha targets are converted back
// and grayscale targets receive the rendered alpha.
func (r *Renderer) PostRender() {
	if len(r.layers) > 0 {
		slogger().Warn("sw: layers left open at frame end", "count", len(r.layers))
	}
	for n := len(r.layers); n > 0; n = len(r.layers) {
		r.ReleaseLayer(r.layers[n-1])
	}
	switch {
	case r.cs == Grayscale8:
		for y := r.viewport.Y; y < r.viewport.Y2(); y++ {
			row := r.target.span(y, r.viewport.X, r.viewport.X2())
			dst := r.gray[y*r.grayStride+r.viewport.X:]
			for i, p := range row {
				dst[i] = uint8(p >> 24)
			}
		}
	case r.cs.Straight():
		r.target.apply(r.viewport, image.UnpremultiplyRow)
	}
}

// PrepareShape posts the prepare task for a shape. prev is the data
// returned for the same paint by the previous call, or nil. clips are
// clip shapes whose coverage limits this one; clipper marks a shape that
// is itself used as a clip.
func (r *Renderer) PrepareShape(prev *ShapeData, rs render.Shape, m geom.Matrix, opacity uint8, clips []*ShapeData, flags render.UpdateFlag, clipper bool) *ShapeData {
	d := prev
	if d == nil {
		d = &ShapeData{}
		flags = render.UpdateAll
	} else {
		d.join()
	}
	d.rs, d.clipper = rs, clipper
	d.setup(m, opacity, clips, flags, r)
	d.task = parallel.NewTask(d.run)
	r.post(d, d.task, d.Err)
	return d
}

// PrepareImage posts the prepare task for a raster picture. img must not
// change while the task runs; pass UpdateImage when it is replaced.
func (r *Renderer) PrepareImage(prev *ImageData, img *image.Image, mesh []render.Triangle, m geom.Matrix, opacity uint8, clips []*ShapeData, flags render.UpdateFlag) *ImageData {
	d := prev
	if d == nil {
		d = &ImageData{pool: r.mips}
		flags = render.UpdateAll
	} else {
		d.join()
	}
	if d.src != img {
		flags |= render.UpdateImage
	}
	d.src, d.mesh = img, mesh
	d.setup(m, opacity, clips, flags, r)
	d.task = parallel.NewTask(d.run)
	r.post(d, d.task, d.Err)
	return d
}

func (p *prepared) setup(m geom.Matrix, opacity uint8, clips []*ShapeData, flags render.UpdateFlag, r *Renderer) {
	if p.order != r.target.order {
		flags = render.UpdateAll
	}
	if p.viewport != r.viewport {
		flags |= render.UpdateTransform
	}
	p.m, p.opacity, p.flags = m, opacity, flags
	p.clips = append(p.clips[:0], clips...)
	p.viewport, p.order = r.viewport, r.target.order
}

func (r *Renderer) post(owner any, t *parallel.Task, err func() error) {
	r.posted = append(r.posted, posted{owner: owner, task: t, err: err})
	r.pool.Post(t)
}

// ReleaseImage returns pooled resources held by d.
func (r *Renderer) ReleaseImage(d *ImageData) {
	if d == nil {
		return
	}
	d.join()
	d.release()
}

// RenderShape joins d's task and draws its fill and stroke onto the
// current surface.
func (r *Renderer) RenderShape(d *ShapeData, method blend.Method) {
	if d == nil {
		return
	}
	d.join()
	if d.err != nil || d.opacity == 0 {
		return
	}
	s := r.current()
	fill, stroke := d.fillSrc, d.strokeSrc
	fill.method, stroke.method = method, method
	if d.rs.Stroke != nil && d.rs.Stroke.StrokeFirst {
		r.k.draw(s, d.stroke, stroke)
		r.k.draw(s, d.fill, fill)
		return
	}
	r.k.draw(s, d.fill, fill)
	r.k.draw(s, d.stroke, stroke)
}

// RenderImage joins d's task and draws the picture onto the current
// surface.
func (r *Renderer) RenderImage(d *ImageData, method blend.Method) {
	if d == nil {
		return
	}
	d.join()
	if d.err != nil || d.sampler == nil {
		return
	}
	r.k.draw(r.current(), d.rle, paintSource{src: d.sampler, method: method})
}

// ShapeRegion returns the device pixels d may touch. It joins the task.
func (r *Renderer) ShapeRegion(d *ShapeData) geom.Region {
	if d == nil {
		return geom.Region{}
	}
	d.join()
	return d.bounds
}

// ImageRegion returns the device pixels d may touch. It joins the task.
func (r *Renderer) ImageRegion(d *ImageData) geom.Region {
	if d == nil {
		return geom.Region{}
	}
	d.join()
	return d.bounds
}

// Sync waits for every posted task and returns the failures among them.
// Calling Sync again without new work returns nothing.
func (r *Renderer) Sync() []TaskError {
	r.pool.Sync()
	var errs []TaskError
	seen := make(map[any]bool, len(r.posted))
	for _, p := range r.posted {
		p.task.Join()
		if seen[p.owner] {
			continue
		}
		seen[p.owner] = true
		if err := p.err(); err != nil {
			errs = append(errs, TaskError{Owner: p.owner, Err: err})
		}
	}
	clear(r.posted)
	r.posted = r.posted[:0]
	return errs
}

// Workers returns the number of prepare workers.
func (r *Renderer) Workers() int { return r.pool.Workers() }

// Close waits for outstanding work, stops the workers and frees pooled
// buffers.
func (r *Renderer) Close() {
	r.Sync()
	r.pool.Close()
	r.mem.release()
}
