package sw

import (
	"math"

	"github.com/gogpu/tvg/internal/blend"
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/image"
	"github.com/gogpu/tvg/internal/path"
	"github.com/gogpu/tvg/internal/raster"
	"github.com/gogpu/tvg/internal/render"
)

// ImageData is the rasterization-ready form of a raster picture.
type ImageData struct {
	prepared
	src  *image.Image
	mesh []render.Triangle
	pool *image.Pool

	// converted holds src in the target channel order. Rebuilt when the
	// image changes.
	converted *image.Image
	mips      *image.Mipmaps

	rle     *raster.RLE
	sampler *imageSampler
	builder *raster.Builder
}

// Err returns the error recorded by the last prepare task, if any.
func (d *ImageData) Err() error { return d.err }

func (d *ImageData) run() {
	defer d.recovered("image")
	d.err = nil
	d.rle, d.sampler, d.bounds = nil, nil, geom.Region{}
	if d.opacity == 0 || d.src == nil || d.src.W == 0 || d.src.H == 0 {
		return
	}
	if d.flags.Has(render.UpdateImage) || d.converted == nil {
		d.convert()
	}
	inv, ok := d.m.Invert()
	if !ok {
		return
	}
	if d.builder == nil {
		d.builder = raster.NewBuilder()
	}

	var polys []path.Poly
	var tris []deviceTriangle
	if len(d.mesh) > 0 {
		for _, t := range d.mesh {
			dt := deviceTriangle{}
			pts := make([]geom.Point, 3)
			for i, v := range t {
				dt.p[i] = d.m.Apply(v.Pt)
				dt.uv[i] = v.UV
				pts[i] = dt.p[i]
			}
			if dt.prepare() {
				tris = append(tris, dt)
			}
			polys = append(polys, path.Poly{Pts: pts, Closed: true})
		}
	} else {
		w, h := float32(d.src.W), float32(d.src.H)
		corners := geom.NewBBox(geom.Pt(0, 0), geom.Pt(w, h)).Corners()
		pts := make([]geom.Point, 4)
		for i, c := range corners {
			pts[i] = d.m.Apply(c)
		}
		polys = []path.Poly{{Pts: pts, Closed: true}}
	}
	rle := d.builder.Build(polys, raster.NonZero, d.viewport, nil)
	rle = d.applyClips(rle)
	if rle.Empty() {
		return
	}

	s := &imageSampler{img: d.converted, inv: inv, opacity: d.opacity, filter: image.Bilinear, factor: 1, tris: tris}
	scale := min(d.m.ScaleX(), d.m.ScaleY())
	switch {
	case d.m.IsTranslation() && integral(d.m.E13) && integral(d.m.E23):
		s.filter = image.Nearest
	case scale < image.DownScaleTolerance:
		if d.mips == nil {
			d.mips = image.GenerateMipmaps(d.converted, d.pool)
		}
		lvl, f := d.mips.LevelForScale(scale)
		s.img, s.factor = lvl, float32(f)
	}
	d.rle, d.sampler, d.bounds = rle, s, rle.Bounds
}

// convert copies the source into the target order, premultiplied.
func (d *ImageData) convert() {
	d.mips.Release(d.pool)
	d.mips = nil
	img := d.src
	if img.Order != d.order || !img.Premultiplied {
		img = img.Clone()
		img.Premultiply()
		img.ConvertOrder(d.order)
	}
	d.converted = img
}

func integral(v float32) bool {
	return geom.Zero(v - float32(math.Round(float64(v))))
}

// release returns pooled mip levels.
func (d *ImageData) release() {
	d.mips.Release(d.pool)
	d.mips = nil
}

// deviceTriangle is a mesh triangle in device space with the data needed
// for barycentric interpolation.
type deviceTriangle struct {
	p    [3]geom.Point
	uv   [3]geom.Point
	invA float32
}

func (t *deviceTriangle) prepare() bool {
	a := t.p[1].Sub(t.p[0]).Cross(t.p[2].Sub(t.p[0]))
	if geom.Zero(a) {
		return false
	}
	t.invA = 1 / a
	return true
}

// uvAt returns the texture coordinate at q when q lies inside t.
func (t *deviceTriangle) uvAt(q geom.Point) (geom.Point, bool) {
	w0 := t.p[1].Sub(q).Cross(t.p[2].Sub(q)) * t.invA
	w1 := t.p[2].Sub(q).Cross(t.p[0].Sub(q)) * t.invA
	w2 := 1 - w0 - w1
	const e = -1e-4
	if w0 < e || w1 < e || w2 < e {
		return geom.Point{}, false
	}
	return t.uv[0].Mul(w0).Add(t.uv[1].Mul(w1)).Add(t.uv[2].Mul(w2)), true
}

// imageSampler fetches image pixels for device rows by mapping pixel
// centers back into image space.
type imageSampler struct {
	img     *image.Image
	inv     geom.Matrix
	opacity uint8
	filter  image.Filter
	factor  float32
	tris    []deviceTriangle
}

func (s *imageSampler) fetch(dst []uint32, x, y int) {
	q := geom.Pt(float32(x)+0.5, float32(y)+0.5)
	if len(s.tris) > 0 {
		for i := range dst {
			dst[i] = s.meshAt(q)
			q.X++
		}
		return
	}
	p := s.inv.Apply(q)
	step := geom.Pt(s.inv.E11, s.inv.E21)
	for i := range dst {
		dst[i] = s.at(p)
		p = p.Add(step)
	}
}

func (s *imageSampler) meshAt(q geom.Point) uint32 {
	for i := range s.tris {
		if uv, ok := s.tris[i].uvAt(q); ok {
			return s.at(uv)
		}
	}
	return 0
}

func (s *imageSampler) at(p geom.Point) uint32 {
	if s.factor != 1 {
		p = p.Mul(1 / s.factor)
	}
	c := s.img.Sample(p.X, p.Y, s.filter)
	if s.opacity < 255 {
		c = blend.Scale(c, s.opacity)
	}
	return c
}
