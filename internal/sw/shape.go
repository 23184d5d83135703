package sw

import (
	"errors"
	"fmt"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/image"
	"github.com/gogpu/tvg/internal/parallel"
	"github.com/gogpu/tvg/internal/path"
	"github.com/gogpu/tvg/internal/raster"
	"github.com/gogpu/tvg/internal/render"
	"github.com/gogpu/tvg/internal/stroke"
)

// ErrPrepare marks a failure inside a prepare task.
var ErrPrepare = errors.New("sw: prepare failed")

// prepared is the state every prepare task shares.
type prepared struct {
	task     *parallel.Task
	m        geom.Matrix
	opacity  uint8
	flags    render.UpdateFlag
	clips    []*ShapeData
	viewport geom.Region
	order    image.Order
	bounds   geom.Region
	err      error
}

// join waits for the task that last prepared this data.
func (p *prepared) join() {
	p.task.Join()
}

// recovered turns a panic inside a task into err.
func (p *prepared) recovered(what string) {
	if r := recover(); r != nil {
		p.err = fmt.Errorf("%w: %s: %v", ErrPrepare, what, r)
		p.bounds = geom.Region{}
	}
}

// applyClips joins every clipper and intersects rle with its coverage.
func (p *prepared) applyClips(rle *raster.RLE) *raster.RLE {
	for _, c := range p.clips {
		if rle.Empty() {
			return nil
		}
		c.join()
		rle = raster.Intersect(rle, c.clipRLE())
	}
	return rle
}

// ShapeData is the rasterization-ready form of a shape: coverage spans of
// its fill and stroke and the paint sources to draw them with.
type ShapeData struct {
	prepared
	rs      render.Shape
	clipper bool

	fill, stroke       *raster.RLE
	fillSrc, strokeSrc paintSource
	builder            *raster.Builder
}

// Err returns the error recorded by the last prepare task, if any.
func (d *ShapeData) Err() error { return d.err }

// clipRLE returns the coverage this shape contributes as a clipper.
func (d *ShapeData) clipRLE() *raster.RLE {
	if !d.stroke.Empty() {
		return d.stroke
	}
	return d.fill
}

// run is the prepare task body.
func (d *ShapeData) run() {
	defer d.recovered("shape")
	d.err = nil
	if d.opacity == 0 && !d.clipper {
		d.fill, d.stroke, d.bounds = nil, nil, geom.Region{}
		return
	}
	rs := &d.rs
	if d.flags.Geometry() || len(d.clips) > 0 || (d.fill == nil && d.stroke == nil) {
		d.rasterize(rs)
	}
	d.fillSrc = paintSource{color: rs.Color.Pack(d.opacity, d.order)}
	if rs.Fill != nil {
		d.fillSrc = d.gradientSource(rs.Fill)
	}
	d.strokeSrc = paintSource{}
	if rs.Stroke != nil {
		d.strokeSrc = paintSource{color: rs.Stroke.Color.Pack(d.opacity, d.order)}
		if rs.Stroke.Fill != nil {
			d.strokeSrc = d.gradientSource(rs.Stroke.Fill)
		}
	}
}

func (d *ShapeData) gradientSource(g *render.Gradient) paintSource {
	gr := newGradient(g, d.m, d.opacity, d.order)
	if gr == nil {
		return paintSource{}
	}
	return paintSource{src: gr}
}

// rasterize rebuilds the fill and stroke coverage.
func (d *ShapeData) rasterize(rs *render.Shape) {
	d.fill, d.stroke = nil, nil
	d.bounds = geom.Region{}
	if d.builder == nil {
		d.builder = raster.NewBuilder()
	}
	if rs.Path.Empty() || rs.Trim.Empty() {
		return
	}
	scale := d.m.MaxScale()
	if scale < geom.Epsilon {
		return
	}
	tol := path.Tolerance / scale
	polys := path.Flatten(&rs.Path, tol)
	if rs.Trim.Active() {
		polys = rs.Trim.Apply(polys)
	}

	if rs.Filled() || d.clipper {
		d.fill = d.builder.Build(transformed(polys, d.m), rs.Rule, d.viewport, nil)
		d.fill = d.applyClips(d.fill)
	}
	if st := rs.Stroke; st != nil && st.Width > geom.Epsilon && (st.Visible() || d.clipper) {
		lines := st.Dash.Apply(polys)
		style := stroke.Style{Width: st.Width, Cap: st.Cap, Join: st.Join, MiterLimit: st.MiterLimit}
		outline := stroke.Expand(lines, style, tol)
		d.stroke = d.builder.Build(transformed(outline, d.m), raster.NonZero, d.viewport, nil)
		d.stroke = d.applyClips(d.stroke)
	}
	if !d.fill.Empty() {
		d.bounds = d.fill.Bounds
	}
	if !d.stroke.Empty() {
		d.bounds = d.bounds.Union(d.stroke.Bounds)
	}
}

// transformed returns copies of polys mapped through m.
func transformed(polys []path.Poly, m geom.Matrix) []path.Poly {
	out := make([]path.Poly, len(polys))
	for i, pl := range polys {
		pts := make([]geom.Point, len(pl.Pts))
		for j, p := range pl.Pts {
			pts[j] = m.Apply(p)
		}
		out[i] = path.Poly{Pts: pts, Closed: pl.Closed}
	}
	return out
}
