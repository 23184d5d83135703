// Package codec decodes raster image files into premultiplied pixel
// images and encodes rendered frames as PNG.
//
// Supported inputs are PNG, JPEG, GIF, BMP, TIFF and WebP. The format is
// taken from the mime type when given and sniffed from the data
// otherwise.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	stdimage "image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"strings"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/tvg/internal/image"
)

// ErrUnsupported reports a format this package cannot decode.
var ErrUnsupported = errors.New("codec: unsupported format")

// formats maps accepted mime type names to the name the image package
// registers the decoder under.
var formats = map[string]string{
	"png":  "png",
	"jpg":  "jpeg",
	"jpeg": "jpeg",
	"gif":  "gif",
	"bmp":  "bmp",
	"tif":  "tiff",
	"tiff": "tiff",
	"webp": "webp",
}

// Normalize strips an "image/" prefix, lowercases and trims mimeType.
func Normalize(mimeType string) string {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	return strings.TrimPrefix(m, "image/")
}

// Supports reports whether mimeType names a decodable raster format.
func Supports(mimeType string) bool {
	_, ok := formats[Normalize(mimeType)]
	return ok
}

// Decode reads a raster image. An empty mime type sniffs the format.
// The result is premultiplied ARGB.
func Decode(data []byte, mimeType string) (*image.Image, error) {
	want := ""
	if m := Normalize(mimeType); m != "" {
		f, ok := formats[m]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupported, mimeType)
		}
		want = f
	}
	src, got, err := stdimage.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, stdimage.ErrFormat) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
		return nil, fmt.Errorf("codec: decode: %w", err)
	}
	if want != "" && got != want {
		return nil, fmt.Errorf("%w: data is %s, not %s", ErrUnsupported, got, want)
	}
	return FromImage(src)
}

// FromImage converts any image.Image to a premultiplied ARGB image.
func FromImage(src stdimage.Image) (*image.Image, error) {
	b := src.Bounds()
	out, err := image.New(b.Dx(), b.Dy(), image.ARGB)
	if err != nil {
		return nil, err
	}
	rgba, ok := src.(*stdimage.RGBA)
	if !ok || rgba.Rect.Min != (stdimage.Point{}) {
		rgba = stdimage.NewRGBA(stdimage.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(rgba, rgba.Bounds(), src, b.Min, xdraw.Src)
	}
	for y := range out.H {
		row := out.Row(y)
		px := rgba.Pix[y*rgba.Stride:]
		for x := range row {
			p := px[x*4 : x*4+4]
			row[x] = uint32(p[3])<<24 | uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
		}
	}
	return out, nil
}

// ToImage converts a premultiplied image into an image.NRGBA with straight
// alpha.
func ToImage(img *image.Image) *stdimage.NRGBA {
	out := stdimage.NewNRGBA(stdimage.Rect(0, 0, img.W, img.H))
	for y := range img.H {
		for x, p := range img.Row(y) {
			if img.Premultiplied {
				p = image.Unpremul(p)
			}
			a, c0, c1, c2 := uint8(p>>24), uint8(p>>16), uint8(p>>8), uint8(p)
			r, g, b := c0, c1, c2
			if img.Order == image.ABGR {
				r, b = c2, c0
			}
			out.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: a})
		}
	}
	return out
}

// EncodePNG writes img as a PNG file.
func EncodePNG(w io.Writer, img *image.Image) error {
	if err := png.Encode(w, ToImage(img)); err != nil {
		return fmt.Errorf("codec: encode png: %w", err)
	}
	return nil
}
