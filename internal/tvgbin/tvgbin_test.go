package tvgbin

import (
	"errors"
	"testing"
)

func TestHeader(t *testing.T) {
	w := NewWriter()
	data := w.Bytes()
	if string(data[:6]) != "TVG000" || len(data) != HeaderSize {
		t.Fatalf("header = %q", data)
	}
	body, err := ReadHeader(data)
	if err != nil || len(body) != 0 {
		t.Errorf("ReadHeader() = %v, %v", body, err)
	}

	bad := []struct {
		name string
		data []byte
	}{
		{"short", []byte("TVG")},
		{"signature", []byte("SVG000\x00\x00")},
		{"version", []byte("TVG001\x00\x00")},
		{"reserved overrun", []byte("TVG000\x04\x00ab")},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadHeader(tt.data); !errors.Is(err, ErrMalformed) {
				t.Errorf("ReadHeader() = %v, want ErrMalformed", err)
			}
		})
	}

	body, err = ReadHeader([]byte("TVG000\x02\x00xy\x10"))
	if err != nil || string(body) != "\x10" {
		t.Errorf("reserved bytes not skipped: %q, %v", body, err)
	}
}

func TestNestedBlocks(t *testing.T) {
	w := NewWriter()
	w.Begin(TagShape)
	w.U8Block(TagOpacity, 128)
	w.Begin(TagStroke)
	w.F32Block(TagStrokeWidth, 2.5)
	w.RGBABlock(TagStrokeColor, 1, 2, 3, 4)
	w.End()
	w.End()
	body, err := ReadHeader(w.Bytes())
	if err != nil {
		t.Fatal(err)
	}

	r := NewReader(body)
	shape, ok := r.Next()
	if !ok || shape.Tag != TagShape {
		t.Fatalf("first block = %v, %v", shape.Tag, ok)
	}
	if _, ok := r.Next(); ok || r.Err() != nil {
		t.Fatalf("expected a single top-level block, err %v", r.Err())
	}

	var tags []Tag
	inner := NewReader(shape.Data)
	for b, ok := inner.Next(); ok; b, ok = inner.Next() {
		tags = append(tags, b.Tag)
		if b.Tag == TagStroke {
			sr := NewReader(b.Data)
			width, _ := sr.Next()
			d := NewDecoder(width.Data)
			if v := d.F32(); v != 2.5 || d.Done() != nil {
				t.Errorf("stroke width = %v, %v", v, d.Done())
			}
			color, _ := sr.Next()
			d = NewDecoder(color.Data)
			if r, g, b, a := d.RGBA(); r != 1 || g != 2 || b != 3 || a != 4 {
				t.Errorf("stroke color = %d %d %d %d", r, g, b, a)
			}
		}
	}
	if len(tags) != 2 || tags[0] != TagOpacity || tags[1] != TagStroke {
		t.Errorf("inner tags = %v", tags)
	}
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader([]byte{byte(TagShape), 10, 0, 0, 0, 1, 2})
	if _, ok := r.Next(); ok {
		t.Fatal("Next should fail on an overrunning block")
	}
	if !errors.Is(r.Err(), ErrMalformed) {
		t.Errorf("Err() = %v, want ErrMalformed", r.Err())
	}

	r = NewReader([]byte{byte(TagShape), 1})
	if _, ok := r.Next(); ok || !errors.Is(r.Err(), ErrMalformed) {
		t.Errorf("truncated header: err = %v", r.Err())
	}
}

func TestDecoderShortRead(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3})
	if v := d.U32(); v != 0 {
		t.Errorf("U32 on short data = %d, want 0", v)
	}
	if !errors.Is(d.Err(), ErrMalformed) {
		t.Errorf("Err() = %v", d.Err())
	}
	if d.U8() != 0 {
		t.Error("reads after an error should return zero")
	}

	d = NewDecoder([]byte{1, 0, 0, 0, 9})
	if d.U32() != 1 {
		t.Error("U32 = want 1")
	}
	if !errors.Is(d.Done(), ErrMalformed) {
		t.Error("Done should report trailing bytes")
	}

	d = NewDecoder(make([]byte, 8))
	if vs := d.F32s(3); vs != nil || d.Err() == nil {
		t.Error("F32s past the end should fail")
	}
}

func TestTagString(t *testing.T) {
	if TagStrokeDash.String() != "StrokeDash" {
		t.Errorf("TagStrokeDash = %q", TagStrokeDash)
	}
	if Tag(0x99).String() != "Tag(0x99)" {
		t.Errorf("unknown tag = %q", Tag(0x99))
	}
	if !TagScene.IsPaint() || TagPath.IsPaint() {
		t.Error("IsPaint mismatch")
	}
}
