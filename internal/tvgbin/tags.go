// Package tvgbin reads and writes the tagged block structure of the TVG
// binary format.
//
// A file is an 8 byte header ("TVG", "000", a little-endian u16 giving the
// size of the reserved area that follows) and a sequence of blocks. A
// block is a one byte tag, a little-endian u32 payload length and the
// payload. Payloads either hold fixed-size values or further blocks.
// Readers skip tags they do not know by their length.
//
// This package knows nothing about paints; it only frames and decodes
// values. The root package maps paints to blocks.
package tvgbin

import "fmt"

// Header constants.
const (
	Signature  = "TVG"
	Version    = "000"
	HeaderSize = len(Signature) + len(Version) + 2
)

// Tag identifies a block.
type Tag uint8

// Paint classes.
const (
	TagPicture Tag = 0xfc
	TagShape   Tag = 0xfd
	TagScene   Tag = 0xfe
)

// Properties shared by every paint.
const (
	TagOpacity    Tag = 0x10 // u8
	TagTransform  Tag = 0x11 // 9 x f32, row major
	TagComposite  Tag = 0x12 // TagMaskMethod block + one paint block
	TagBlend      Tag = 0x13 // u8 blend method
	TagMaskMethod Tag = 0x20 // u8, see MaskClip etc.
)

// Scene properties.
const (
	TagReservedCount Tag = 0x30 // u32 child count hint
	TagEffect        Tag = 0x31 // u8 kind, kind specific payload
)

// Shape properties.
const (
	TagPath     Tag = 0x40 // u32 cmdCnt, u32 ptCnt, cmds, ptCnt x 2 f32
	TagStroke   Tag = 0x41 // nested stroke blocks
	TagFill     Tag = 0x42 // nested gradient blocks
	TagColor    Tag = 0x43 // RGBA
	TagFillRule Tag = 0x44 // u8

	TagStrokeCap   Tag = 0x50 // u8
	TagStrokeJoin  Tag = 0x51 // u8
	TagStrokeWidth Tag = 0x52 // f32
	TagStrokeColor Tag = 0x53 // RGBA
	TagStrokeFill  Tag = 0x54 // nested gradient blocks
	TagStrokeDash  Tag = 0x55 // u32 count, count x f32, optional f32 offset
	TagStrokeOrder Tag = 0x56 // u8, 1 draws the stroke below the fill
	TagStrokeMiter Tag = 0x57 // f32
	TagTrimPath    Tag = 0x58 // f32 begin, f32 end, u8 simultaneous
)

// Gradient properties.
const (
	TagLinear        Tag = 0x60 // 4 x f32
	TagRadial        Tag = 0x61 // 3 x f32
	TagStops         Tag = 0x62 // n x (f32 offset, RGBA)
	TagSpread        Tag = 0x63 // u8
	TagFillTransform Tag = 0x64 // 9 x f32
)

// Picture properties.
const (
	TagRawImage    Tag = 0x70 // u32 w, u32 h, w*h premultiplied ARGB u32
	TagPictureSize Tag = 0x71 // 2 x f32
	TagMesh        Tag = 0x72 // u32 n, n x 3 x (x, y, u, v) f32
)

// Flag values.
const (
	FillRuleNonZero uint8 = 0x00
	FillRuleEvenOdd uint8 = 0x01

	SpreadPad     uint8 = 0x00
	SpreadReflect uint8 = 0x01
	SpreadRepeat  uint8 = 0x02
)

var tagNames = map[Tag]string{
	TagPicture: "Picture", TagShape: "Shape", TagScene: "Scene",
	TagOpacity: "Opacity", TagTransform: "Transform", TagComposite: "Composite",
	TagBlend: "Blend", TagMaskMethod: "MaskMethod", TagReservedCount: "ReservedCount",
	TagEffect: "Effect",
	TagPath: "Path", TagStroke: "Stroke", TagFill: "Fill", TagColor: "Color",
	TagFillRule: "FillRule", TagStrokeCap: "StrokeCap", TagStrokeJoin: "StrokeJoin",
	TagStrokeWidth: "StrokeWidth", TagStrokeColor: "StrokeColor", TagStrokeFill: "StrokeFill",
	TagStrokeDash: "StrokeDash", TagStrokeOrder: "StrokeOrder", TagStrokeMiter: "StrokeMiter",
	TagTrimPath: "TrimPath", TagLinear: "Linear", TagRadial: "Radial", TagStops: "Stops",
	TagSpread: "Spread", TagFillTransform: "FillTransform", TagRawImage: "RawImage",
	TagPictureSize: "PictureSize", TagMesh: "Mesh",
}

// String returns the tag name, or its hex value for unknown tags.
func (t Tag) String() string {
	if n, ok := tagNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Tag(%#02x)", uint8(t))
}

// IsPaint reports whether t starts a paint block.
func (t Tag) IsPaint() bool {
	return t == TagPicture || t == TagShape || t == TagScene
}
