package tvg

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/gogpu/tvg/internal/codec"
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/image"
	"github.com/gogpu/tvg/internal/render"
	"github.com/gogpu/tvg/internal/tvgbin"
)

// Picture draws a raster image or a loaded vector tree.
//
// Raster images are placed with their top-left corner at the origin and
// one pixel per unit; SetSize scales them. TVG data loads as a child
// Scene returned by Paint.
type Picture struct {
	paint

	img   *image.Image
	child Paint

	w, h   float32 // natural size
	dw, dh float32 // display size, zero when unset

	mesh []Triangle
}

// NewPicture returns an empty picture.
func NewPicture() *Picture {
	p := &Picture{}
	p.init(p)
	return p
}

// Type returns TypePicture.
func (p *Picture) Type() Type { return TypePicture }

// Load reads a file and loads it with the mime type taken from its
// extension.
func (p *Picture) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return classify("load "+path, err)
	}
	ext := filepath.Ext(path)
	if len(ext) > 0 {
		ext = ext[1:]
	}
	return p.LoadData(data, ext, false)
}

// LoadData loads encoded data. mimeType is one of tvg, png, jpg, jpeg,
// gif, bmp, tif, tiff or webp, optionally prefixed with "image/"; an
// empty mime type sniffs the format. Decoding always copies, so copy only
// matters for formats that could alias data.
func (p *Picture) LoadData(data []byte, mimeType string, copy bool) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty picture data", ErrInvalidArguments)
	}
	m := codec.Normalize(mimeType)
	switch {
	case m == "svg" || m == "svg+xml" || m == "lottie" || m == "lot" || m == "json":
		return fmt.Errorf("%w: %s pictures", ErrNonSupport, m)
	case m == "raw":
		return fmt.Errorf("%w: raw pixels load through LoadPixels", ErrInvalidArguments)
	case m == "tvg" || (m == "" && bytes.HasPrefix(data, []byte(tvgbin.Signature))):
		if copy {
			data = bytes.Clone(data)
		}
		scene, err := Decode(data)
		if err != nil {
			Logger().Warn("tvg: picture load failed", "mime", "tvg", "err", err)
			return err
		}
		p.setChild(scene)
		return nil
	}
	img, err := codec.Decode(data, m)
	if err != nil {
		Logger().Warn("tvg: picture load failed", "mime", m, "err", err)
		return classify("load picture", err)
	}
	p.setImage(img)
	return nil
}

// LoadPixels loads raw pixels of the given color space. Without copy the
// picture keeps using pixels and the caller must not change them while
// the picture is in use.
func (p *Picture) LoadPixels(pixels []uint32, w, h int, cs ColorSpace, copy bool) error {
	switch {
	case cs == Grayscale8:
		return fmt.Errorf("%w: grayscale pictures", ErrNonSupport)
	case cs > Grayscale8:
		return fmt.Errorf("%w: color space %v", ErrInvalidArguments, cs)
	case w <= 0 || h <= 0 || len(pixels) < w*h:
		return fmt.Errorf("%w: %dx%d pixels from a buffer of %d", ErrInvalidArguments, w, h, len(pixels))
	}
	buf := pixels[:w*h]
	if copy {
		buf = slices.Clone(buf)
	}
	img, err := image.Wrap(buf, w, h, w, cs.Order(), !cs.Straight())
	if err != nil {
		return wrap(ErrInvalidArguments, "load pixels", err)
	}
	p.setImage(img)
	return nil
}

func (p *Picture) clearSource() {
	if p.child != nil {
		c := p.child
		p.child = nil
		detach(c, true)
	}
	if p.slot.image != nil && p.slot.renderer != nil {
		p.slot.renderer.ReleaseImage(p.slot.image)
		p.slot.image = nil
	}
	p.img = nil
	p.w, p.h = 0, 0
}

func (p *Picture) setImage(img *image.Image) {
	p.clearSource()
	p.img = img
	p.w, p.h = float32(img.W), float32(img.H)
	p.dirty |= render.UpdateImage
}

func (p *Picture) setChild(s *Scene) {
	p.clearSource()
	_ = attach(s, p, nil)
	p.child = s
	if bb := s.localBounds(); bb.Valid() {
		p.w, p.h = max(bb.Max.X, 0), max(bb.Max.Y, 0)
	}
	p.dirty |= render.UpdateImage
}

// SetSize sets the display size. The source is scaled to fill it.
func (p *Picture) SetSize(w, h float32) error {
	if !geom.Finite(w) || !geom.Finite(h) || w <= 0 || h <= 0 {
		return fmt.Errorf("%w: picture size %vx%v", ErrInvalidArguments, w, h)
	}
	p.dw, p.dh = w, h
	p.dirty |= render.UpdateTransform
	return nil
}

// Size returns the display size, or the natural size when none was set.
func (p *Picture) Size() (w, h float32) {
	if p.dw > 0 && p.dh > 0 {
		return p.dw, p.dh
	}
	return p.w, p.h
}

// scaling maps source units to display units.
func (p *Picture) scaling() geom.Matrix {
	if p.dw <= 0 || p.dh <= 0 || p.w <= 0 || p.h <= 0 {
		return geom.Identity()
	}
	return geom.Scaling(p.dw/p.w, p.dh/p.h)
}

// SetMesh restricts drawing to textured triangles. Vertex positions are
// in picture space and texture coordinates span [0, 1] over the image.
// An empty mesh draws the whole image again.
func (p *Picture) SetMesh(tris []Triangle) error {
	for _, t := range tris {
		for _, v := range t {
			if !geom.Finite(v.Pt.X) || !geom.Finite(v.Pt.Y) || !geom.Finite(v.UV.X) || !geom.Finite(v.UV.Y) {
				return fmt.Errorf("%w: non-finite mesh vertex", ErrInvalidArguments)
			}
		}
	}
	p.mesh = slices.Clone(tris)
	p.dirty |= render.UpdateTransform
	return nil
}

// Mesh returns a copy of the mesh.
func (p *Picture) Mesh() []Triangle { return slices.Clone(p.mesh) }

// Paint returns the loaded vector tree, or nil for raster pictures.
func (p *Picture) Paint() Paint { return p.child }

// renderMesh converts the mesh for the renderer, scaling texture
// coordinates to image pixels.
func (p *Picture) renderMesh() []render.Triangle {
	if len(p.mesh) == 0 || p.img == nil {
		return nil
	}
	w, h := float32(p.img.W), float32(p.img.H)
	out := make([]render.Triangle, len(p.mesh))
	for i, t := range p.mesh {
		for j, v := range t {
			out[i][j] = render.Vertex{Pt: v.Pt.internal(), UV: geom.Pt(v.UV.X*w, v.UV.Y*h)}
		}
	}
	return out
}

// Duplicate returns a deep copy. Pixels are copied.
func (p *Picture) Duplicate() Paint {
	d := NewPicture()
	p.copyTo(&d.paint)
	if p.img != nil {
		d.img = p.img.Clone()
	}
	if p.child != nil {
		dup := p.child.Duplicate()
		dup.base().refs = 0
		_ = attach(dup, d, nil)
		d.child = dup
	}
	d.w, d.h, d.dw, d.dh = p.w, p.h, p.dw, p.dh
	d.mesh = slices.Clone(p.mesh)
	return d
}

func (p *Picture) localBounds() geom.BBox {
	if p.img == nil && p.child == nil {
		return geom.BBox{}
	}
	w, h := p.Size()
	if w <= 0 || h <= 0 {
		return geom.BBox{}
	}
	return geom.NewBBox(geom.Pt(0, 0), geom.Pt(w, h))
}

func (p *Picture) destroy() {
	p.clearSource()
}
