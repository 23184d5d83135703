// Package image holds decoded raster images in the layout the software
// renderer consumes: 32-bit pixels with alpha in the top byte.
//
// Images loaded from files are premultiplied once at load time. Straight
// alpha buffers handed in by callers are premultiplied on demand when the
// picture is first prepared.
package image

import "errors"

// ErrInvalidSize is returned for images with a non-positive dimension or
// a stride shorter than the width.
var ErrInvalidSize = errors.New("image: invalid size")

// ErrShortBuffer is returned when the pixel slice cannot hold stride*h
// pixels.
var ErrShortBuffer = errors.New("image: pixel buffer too short")

// Order is the channel packing of a 32-bit pixel.
type Order uint8

const (
	// ARGB packs pixels as 0xAARRGGBB.
	ARGB Order = iota

	// ABGR packs pixels as 0xAABBGGRR, which is RGBA byte order in memory
	// on little-endian machines.
	ABGR
)

// String returns the string representation of the order.
func (o Order) String() string {
	switch o {
	case ARGB:
		return "ARGB"
	case ABGR:
		return "ABGR"
	default:
		return "Unknown"
	}
}

// Image is a rectangular grid of packed pixels. Stride is measured in
// pixels.
type Image struct {
	Pix           []uint32
	W, H, Stride  int
	Order         Order
	Premultiplied bool
}

// New allocates a zeroed premultiplied image.
func New(w, h int, order Order) (*Image, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrInvalidSize
	}
	return &Image{Pix: make([]uint32, w*h), W: w, H: h, Stride: w, Order: order, Premultiplied: true}, nil
}

// Wrap returns an image backed by pix without copying.
func Wrap(pix []uint32, w, h, stride int, order Order, premultiplied bool) (*Image, error) {
	if w <= 0 || h <= 0 || stride < w {
		return nil, ErrInvalidSize
	}
	if len(pix) < stride*(h-1)+w {
		return nil, ErrShortBuffer
	}
	return &Image{Pix: pix, W: w, H: h, Stride: stride, Order: order, Premultiplied: premultiplied}, nil
}

// At returns the pixel at (x, y), or 0 outside the image.
func (img *Image) At(x, y int) uint32 {
	if x < 0 || y < 0 || x >= img.W || y >= img.H {
		return 0
	}
	return img.Pix[y*img.Stride+x]
}

// Set stores the pixel at (x, y). Out of range writes are ignored.
func (img *Image) Set(x, y int, p uint32) {
	if x < 0 || y < 0 || x >= img.W || y >= img.H {
		return
	}
	img.Pix[y*img.Stride+x] = p
}

// Row returns the w pixels of row y.
func (img *Image) Row(y int) []uint32 {
	off := y * img.Stride
	return img.Pix[off : off+img.W]
}

// Clone returns a tightly packed copy.
func (img *Image) Clone() *Image {
	out := &Image{Pix: make([]uint32, img.W*img.H), W: img.W, H: img.H, Stride: img.W, Order: img.Order, Premultiplied: img.Premultiplied}
	for y := range img.H {
		copy(out.Row(y), img.Row(y))
	}
	return out
}

// Premultiply converts the image to premultiplied alpha in place.
func (img *Image) Premultiply() {
	if img.Premultiplied {
		return
	}
	for y := range img.H {
		PremultiplyRow(img.Row(y))
	}
	img.Premultiplied = true
}

// Unpremultiply converts the image to straight alpha in place.
func (img *Image) Unpremultiply() {
	if !img.Premultiplied {
		return
	}
	for y := range img.H {
		UnpremultiplyRow(img.Row(y))
	}
	img.Premultiplied = false
}

// ConvertOrder swizzles the image to the given channel order in place.
func (img *Image) ConvertOrder(o Order) {
	if img.Order == o {
		return
	}
	for y := range img.H {
		SwizzleRow(img.Row(y))
	}
	img.Order = o
}

// Premul premultiplies a single straight-alpha pixel.
func Premul(p uint32) uint32 {
	a := p >> 24
	switch a {
	case 255:
		return p
	case 0:
		return 0
	}
	c0 := (p >> 16 & 0xff) * a / 255
	c1 := (p >> 8 & 0xff) * a / 255
	c2 := (p & 0xff) * a / 255
	return a<<24 | c0<<16 | c1<<8 | c2
}

// Unpremul converts a single premultiplied pixel to straight alpha.
func Unpremul(p uint32) uint32 {
	a := p >> 24
	switch a {
	case 255:
		return p
	case 0:
		return 0
	}
	ch := func(c uint32) uint32 {
		return min((c*255+a/2)/a, 255)
	}
	return a<<24 | ch(p>>16&0xff)<<16 | ch(p>>8&0xff)<<8 | ch(p&0xff)
}

// PremultiplyRow premultiplies pixels in place.
func PremultiplyRow(row []uint32) {
	for i, p := range row {
		row[i] = Premul(p)
	}
}

// UnpremultiplyRow converts pixels to straight alpha in place.
func UnpremultiplyRow(row []uint32) {
	for i, p := range row {
		row[i] = Unpremul(p)
	}
}

// Swizzle exchanges the first and third color channels, converting
// between ARGB and ABGR packing.
func Swizzle(p uint32) uint32 {
	return p&0xff00ff00 | (p>>16)&0xff | (p&0xff)<<16
}

// SwizzleRow swizzles pixels in place.
func SwizzleRow(row []uint32) {
	for i, p := range row {
		row[i] = Swizzle(p)
	}
}

// Luma returns the luminance of a premultiplied pixel using the integer
// weights 54, 183 and 19 for red, green and blue.
func Luma(p uint32, o Order) uint8 {
	r, g, b := p>>16&0xff, p>>8&0xff, p&0xff
	if o == ABGR {
		r, b = b, r
	}
	return uint8((r*54 + g*183 + b*19) >> 8)
}
