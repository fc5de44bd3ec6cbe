package astc

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Layout is the channel layout of a source image.
type Layout uint8

const (
	LayoutR Layout = iota
	LayoutRG
	LayoutRGB
	LayoutBGR
	LayoutRGBA
	LayoutBGRA
	LayoutL
	LayoutLA
	LayoutRGBX
	LayoutBGRX
)

// Encoding is the numeric encoding of a source channel.
type Encoding uint8

const (
	EncodingU8 Encoding = iota
	EncodingU16
	EncodingF16
	EncodingF32
)

// ElementKind is the storage kind of a canonical image.
type ElementKind uint8

const (
	KindU8 ElementKind = iota
	KindF16
)

func (k ElementKind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindF16:
		return "f16"
	default:
		return fmt.Sprintf("ElementKind(%d)", uint8(k))
	}
}

// GL enums accepted by FormatFromGL.
const (
	GLRed            = 0x1903
	GLRG             = 0x8227
	GLRGB            = 0x1907
	GLRGBA           = 0x1908
	GLBGR            = 0x80E0
	GLBGRA           = 0x80E1
	GLLuminance      = 0x1909
	GLLuminanceAlpha = 0x190A

	GLUnsignedByte  = 0x1401
	GLUnsignedShort = 0x1403
	GLHalfFloat     = 0x140B
	GLFloat         = 0x1406
)

// fill markers in layoutDesc.src.
const (
	srcZero = -1
	srcOne  = -2
)

// layoutDesc describes how a layout expands into RGBA.
//
// channels is the number of source elements per pixel. weighted is the number
// of meaningful channels for error weighting. src maps each destination
// channel to a source element index or a fill marker.
type layoutDesc struct {
	name     string
	channels int
	weighted int
	src      [4]int
}

var layoutDescs = [...]layoutDesc{
	LayoutR:    {name: "r", channels: 1, weighted: 1, src: [4]int{0, 0, 0, srcOne}},
	LayoutRG:   {name: "rg", channels: 2, weighted: 2, src: [4]int{0, 1, srcZero, srcOne}},
	LayoutRGB:  {name: "rgb", channels: 3, weighted: 3, src: [4]int{0, 1, 2, srcOne}},
	LayoutBGR:  {name: "bgr", channels: 3, weighted: 3, src: [4]int{2, 1, 0, srcOne}},
	LayoutRGBA: {name: "rgba", channels: 4, weighted: 4, src: [4]int{0, 1, 2, 3}},
	LayoutBGRA: {name: "bgra", channels: 4, weighted: 4, src: [4]int{2, 1, 0, 3}},
	LayoutL:    {name: "l", channels: 1, weighted: 1, src: [4]int{0, 0, 0, srcOne}},
	LayoutLA:   {name: "la", channels: 2, weighted: 2, src: [4]int{0, 0, 0, 1}},
	LayoutRGBX: {name: "rgbx", channels: 4, weighted: 3, src: [4]int{0, 1, 2, srcOne}},
	LayoutBGRX: {name: "bgrx", channels: 4, weighted: 3, src: [4]int{2, 1, 0, srcOne}},
}

// encodingDesc describes how one source element is read and converted.
//
// Exactly one of toU8/toF16 is used, selected by kind.
type encodingDesc struct {
	name  string
	size  int
	kind  ElementKind
	toU8  func(b []byte) uint8
	toF16 func(b []byte) uint16
}

var encodingDescs = [...]encodingDesc{
	EncodingU8: {
		name: "u8", size: 1, kind: KindU8,
		toU8: func(b []byte) uint8 { return b[0] },
	},
	EncodingU16: {
		name: "u16", size: 2, kind: KindF16,
		toF16: func(b []byte) uint16 { return unorm16ToHalf(binary.LittleEndian.Uint16(b)) },
	},
	EncodingF16: {
		name: "f16", size: 2, kind: KindF16,
		toF16: func(b []byte) uint16 { return binary.LittleEndian.Uint16(b) },
	},
	EncodingF32: {
		name: "f32", size: 4, kind: KindF16,
		toF16: func(b []byte) uint16 { return float32ToHalf(math.Float32frombits(binary.LittleEndian.Uint32(b))) },
	},
}

func (l Layout) desc() *layoutDesc {
	if int(l) >= len(layoutDescs) {
		contractViolation("unsupported layout %d", l)
	}
	return &layoutDescs[l]
}

func (e Encoding) desc() *encodingDesc {
	if int(e) >= len(encodingDescs) {
		contractViolation("unsupported encoding %d", e)
	}
	return &encodingDescs[e]
}

func (l Layout) String() string {
	if int(l) < len(layoutDescs) {
		return layoutDescs[l].name
	}
	return fmt.Sprintf("Layout(%d)", uint8(l))
}

func (e Encoding) String() string {
	if int(e) < len(encodingDescs) {
		return encodingDescs[e].name
	}
	return fmt.Sprintf("Encoding(%d)", uint8(e))
}

// ParseLayout parses a layout name such as "rgba" or "la".
func ParseLayout(s string) (Layout, error) {
	for i := range layoutDescs {
		if layoutDescs[i].name == s {
			return Layout(i), nil
		}
	}
	return 0, newError(ErrBadFormat, fmt.Sprintf("astc: unknown layout %q", s))
}

// ParseEncoding parses an encoding name such as "u8" or "f32".
func ParseEncoding(s string) (Encoding, error) {
	for i := range encodingDescs {
		if encodingDescs[i].name == s {
			return Encoding(i), nil
		}
	}
	return 0, newError(ErrBadFormat, fmt.Sprintf("astc: unknown encoding %q", s))
}

// Format is a source pixel format.
type Format struct {
	Layout   Layout
	Encoding Encoding
}

func (f Format) String() string {
	return f.Layout.String() + "/" + f.Encoding.String()
}

// Channels returns the number of meaningful source channels.
func (f Format) Channels() int { return f.Layout.desc().weighted }

// BytesPerPixel returns the packed size of one source pixel.
func (f Format) BytesPerPixel() int {
	return f.Layout.desc().channels * f.Encoding.desc().size
}

// ElementKind returns the canonical storage kind for f.
//
// Only 8-bit sources stay 8-bit; everything else is widened to half float.
func (f Format) ElementKind() ElementKind { return f.Encoding.desc().kind }

// FormatFromGL maps a GL format/type pair onto a Format.
func FormatFromGL(glFormat, glType uint32) (Format, error) {
	var f Format
	switch glFormat {
	case GLRed:
		f.Layout = LayoutR
	case GLRG:
		f.Layout = LayoutRG
	case GLRGB:
		f.Layout = LayoutRGB
	case GLRGBA:
		f.Layout = LayoutRGBA
	case GLBGR:
		f.Layout = LayoutBGR
	case GLBGRA:
		f.Layout = LayoutBGRA
	case GLLuminance:
		f.Layout = LayoutL
	case GLLuminanceAlpha:
		f.Layout = LayoutLA
	default:
		return Format{}, newError(ErrBadFormat, fmt.Sprintf("astc: unsupported GL format 0x%04X", glFormat))
	}

	switch glType {
	case GLUnsignedByte:
		f.Encoding = EncodingU8
	case GLUnsignedShort:
		f.Encoding = EncodingU16
	case GLHalfFloat:
		f.Encoding = EncodingF16
	case GLFloat:
		f.Encoding = EncodingF32
	default:
		return Format{}, newError(ErrBadFormat, fmt.Sprintf("astc: unsupported GL type 0x%04X", glType))
	}
	return f, nil
}

// NormalizeRowU8 expands one scanline of an 8-bit source into RGBA8.
//
// dst must hold pixels*4 bytes and src pixels*BytesPerPixel() bytes.
func NormalizeRowU8(dst []byte, src []byte, pixels int, f Format) {
	ls := f.Layout.desc()
	es := f.Encoding.desc()
	if es.kind != KindU8 {
		contractViolation("format %s does not normalize to u8", f)
	}
	checkRowBounds(len(dst), len(src), pixels, ls, es)

	stride := ls.channels * es.size
	for i := 0; i < pixels; i++ {
		s := src[i*stride : (i+1)*stride]
		d := dst[i*4 : i*4+4]
		for c, idx := range ls.src {
			switch idx {
			case srcZero:
				d[c] = 0
			case srcOne:
				d[c] = 0xFF
			default:
				d[c] = es.toU8(s[idx*es.size:])
			}
		}
	}
}

// NormalizeRowF16 expands one scanline of a 16- or 32-bit source into RGBA
// half floats.
func NormalizeRowF16(dst []uint16, src []byte, pixels int, f Format) {
	ls := f.Layout.desc()
	es := f.Encoding.desc()
	if es.kind != KindF16 {
		contractViolation("format %s does not normalize to f16", f)
	}
	checkRowBounds(len(dst), len(src), pixels, ls, es)

	stride := ls.channels * es.size
	for i := 0; i < pixels; i++ {
		s := src[i*stride : (i+1)*stride]
		d := dst[i*4 : i*4+4]
		for c, idx := range ls.src {
			switch idx {
			case srcZero:
				d[c] = 0
			case srcOne:
				d[c] = halfOne
			default:
				d[c] = es.toF16(s[idx*es.size:])
			}
		}
	}
}

func checkRowBounds(dstLen, srcLen, pixels int, ls *layoutDesc, es *encodingDesc) {
	if pixels < 0 {
		contractViolation("negative pixel count %d", pixels)
	}
	if dstLen < pixels*4 {
		contractViolation("destination row too small: %d < %d", dstLen, pixels*4)
	}
	if need := pixels * ls.channels * es.size; srcLen < need {
		contractViolation("source row too small: %d < %d", srcLen, need)
	}
}

// NormalizeImage converts packed source pixels into a canonical image.
//
// Rows are tightly packed, slices follow rows.
func NormalizeImage(pixels []byte, width, height, depth int, f Format) *Image {
	if width <= 0 || height <= 0 || depth <= 0 {
		contractViolation("invalid image dimensions %dx%dx%d", width, height, depth)
	}
	img := NewImage(width, height, depth, f.ElementKind())
	rowBytes := width * f.BytesPerPixel()
	if len(pixels) < rowBytes*height*depth {
		contractViolation("pixel buffer too small: %d < %d", len(pixels), rowBytes*height*depth)
	}

	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			row := (z*height + y)
			src := pixels[row*rowBytes : (row+1)*rowBytes]
			dstOff := row * width * 4
			switch img.Kind {
			case KindU8:
				NormalizeRowU8(img.DataU8[dstOff:dstOff+width*4], src, width, f)
			case KindF16:
				NormalizeRowF16(img.DataF16[dstOff:dstOff+width*4], src, width, f)
			}
		}
	}
	return img
}
