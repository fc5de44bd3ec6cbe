// Package ktx reads and writes KTX 1.1 containers holding ASTC textures.
package ktx

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/am-sokolov/go-astc-pipeline/astc"
)

// Identifier is the KTX 1.1 file magic.
var Identifier = [12]byte{0xAB, 'K', 'T', 'X', ' ', '1', '1', 0xBB, '\r', '\n', 0x1A, '\n'}

const (
	endianness = 0x04030201

	// GLRGBA is the base internal format of every ASTC texture written here.
	GLRGBA = 0x1908

	maxLevels = 32
)

// ASTC internal formats from KHR_texture_compression_astc_ldr.
const (
	GLCompressedRGBAASTC4x4   = 0x93B0
	GLCompressedRGBAASTC5x4   = 0x93B1
	GLCompressedRGBAASTC5x5   = 0x93B2
	GLCompressedRGBAASTC6x5   = 0x93B3
	GLCompressedRGBAASTC6x6   = 0x93B4
	GLCompressedRGBAASTC8x5   = 0x93B5
	GLCompressedRGBAASTC8x6   = 0x93B6
	GLCompressedRGBAASTC8x8   = 0x93B7
	GLCompressedRGBAASTC10x5  = 0x93B8
	GLCompressedRGBAASTC10x6  = 0x93B9
	GLCompressedRGBAASTC10x8  = 0x93BA
	GLCompressedRGBAASTC10x10 = 0x93BB
	GLCompressedRGBAASTC12x10 = 0x93BC
	GLCompressedRGBAASTC12x12 = 0x93BD
)

var internalFormats = map[[2]int]uint32{
	{4, 4}:   GLCompressedRGBAASTC4x4,
	{5, 4}:   GLCompressedRGBAASTC5x4,
	{5, 5}:   GLCompressedRGBAASTC5x5,
	{6, 5}:   GLCompressedRGBAASTC6x5,
	{6, 6}:   GLCompressedRGBAASTC6x6,
	{8, 5}:   GLCompressedRGBAASTC8x5,
	{8, 6}:   GLCompressedRGBAASTC8x6,
	{8, 8}:   GLCompressedRGBAASTC8x8,
	{10, 5}:  GLCompressedRGBAASTC10x5,
	{10, 6}:  GLCompressedRGBAASTC10x6,
	{10, 8}:  GLCompressedRGBAASTC10x8,
	{10, 10}: GLCompressedRGBAASTC10x10,
	{12, 10}: GLCompressedRGBAASTC12x10,
	{12, 12}: GLCompressedRGBAASTC12x12,
}

// InternalFormat returns the GL internal format for a 2D footprint.
func InternalFormat(fp astc.Footprint) (uint32, error) {
	if fp.Z == 1 {
		if f, ok := internalFormats[[2]int{fp.X, fp.Y}]; ok {
			return f, nil
		}
	}
	return 0, errors.Errorf("ktx: no GL internal format for footprint %s", fp)
}

// FootprintOf is the inverse of InternalFormat.
func FootprintOf(internalFormat uint32) (astc.Footprint, error) {
	for k, v := range internalFormats {
		if v == internalFormat {
			return astc.Footprint{X: k[0], Y: k[1], Z: 1}, nil
		}
	}
	return astc.Footprint{}, errors.Errorf("ktx: internal format %#x is not ASTC", internalFormat)
}

// Header is the fixed-size KTX header after the identifier.
type Header struct {
	Endianness            uint32
	GLType                uint32
	GLTypeSize            uint32
	GLFormat              uint32
	GLInternalFormat      uint32
	GLBaseInternalFormat  uint32
	PixelWidth            uint32
	PixelHeight           uint32
	PixelDepth            uint32
	NumberOfArrayElements uint32
	NumberOfFaces         uint32
	NumberOfMipmapLevels  uint32
	BytesOfKeyValueData   uint32
}

// NewHeader describes a compressed 2D texture or cubemap.
func NewHeader(fp astc.Footprint, width, height, faces, levels int) (Header, error) {
	f, err := InternalFormat(fp)
	if err != nil {
		return Header{}, err
	}
	h := Header{
		Endianness:           endianness,
		GLTypeSize:           1,
		GLInternalFormat:     f,
		GLBaseInternalFormat: GLRGBA,
		PixelWidth:           uint32(width),
		PixelHeight:          uint32(height),
		NumberOfFaces:        uint32(faces),
		NumberOfMipmapLevels: uint32(levels),
	}
	return h, h.validate()
}

func (h Header) validate() error {
	if h.NumberOfFaces != 1 && h.NumberOfFaces != 6 {
		return errors.Errorf("ktx: %d faces, want 1 or 6", h.NumberOfFaces)
	}
	if h.NumberOfMipmapLevels < 1 || h.NumberOfMipmapLevels > maxLevels {
		return errors.Errorf("ktx: %d mip levels, want 1..%d", h.NumberOfMipmapLevels, maxLevels)
	}
	if h.PixelWidth == 0 || h.PixelHeight == 0 {
		return errors.New("ktx: zero texture size")
	}
	return nil
}

// Footprint returns the ASTC footprint of h.
func (h Header) Footprint() (astc.Footprint, error) { return FootprintOf(h.GLInternalFormat) }

// LevelSize returns the byte size of one face of mip level i.
func (h Header) LevelSize(fp astc.Footprint, i int) int {
	w := max(int(h.PixelWidth)>>i, 1)
	ht := max(int(h.PixelHeight)>>i, 1)
	d := max(int(h.PixelDepth)>>i, 1)
	return fp.Blocks(w, ht, d).Total() * astc.BlockBytes
}

// Write writes h and the texture data. levels is indexed by mip level, then
// by face.
func Write(w io.Writer, h Header, levels [][][]byte) error {
	if err := h.validate(); err != nil {
		return err
	}
	if len(levels) != int(h.NumberOfMipmapLevels) {
		return errors.Errorf("ktx: header declares %d mip levels, got %d", h.NumberOfMipmapLevels, len(levels))
	}

	var buf bytes.Buffer
	buf.Write(Identifier[:])
	if err := binary.Write(&buf, binary.LittleEndian, &h); err != nil {
		return errors.Wrap(err, "ktx: encoding header")
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "ktx: writing header")
	}

	var pad [3]byte
	for i, faces := range levels {
		if len(faces) != int(h.NumberOfFaces) {
			return errors.Errorf("ktx: level %d has %d faces, want %d", i, len(faces), h.NumberOfFaces)
		}
		size := len(faces[0])
		var sz [4]byte
		binary.LittleEndian.PutUint32(sz[:], uint32(size))
		if _, err := w.Write(sz[:]); err != nil {
			return errors.Wrapf(err, "ktx: writing level %d size", i)
		}
		for f, data := range faces {
			if len(data) != size {
				return errors.Errorf("ktx: level %d face %d is %d bytes, want %d", i, f, len(data), size)
			}
			if _, err := w.Write(data); err != nil {
				return errors.Wrapf(err, "ktx: writing level %d face %d", i, f)
			}
			if _, err := w.Write(pad[:padding(size)]); err != nil {
				return errors.Wrapf(err, "ktx: writing level %d padding", i)
			}
		}
	}
	return nil
}

// Read parses a KTX file written by Write. Key/value data is skipped and
// every imageSize must match the level's block count.
func Read(r io.Reader) (Header, [][][]byte, error) {
	var ident [12]byte
	if _, err := io.ReadFull(r, ident[:]); err != nil {
		return Header{}, nil, errors.Wrap(err, "ktx: reading identifier")
	}
	if ident != Identifier {
		return Header{}, nil, errors.New("ktx: invalid identifier")
	}

	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return Header{}, nil, errors.Wrap(err, "ktx: reading header")
	}
	if h.Endianness != endianness {
		return Header{}, nil, errors.Errorf("ktx: unsupported endianness %#x", h.Endianness)
	}
	if err := h.validate(); err != nil {
		return Header{}, nil, err
	}
	fp, err := h.Footprint()
	if err != nil {
		return Header{}, nil, err
	}
	if _, err := io.CopyN(io.Discard, r, int64(h.BytesOfKeyValueData)); err != nil {
		return Header{}, nil, errors.Wrap(err, "ktx: skipping key/value data")
	}

	levels := make([][][]byte, h.NumberOfMipmapLevels)
	for i := range levels {
		var sz [4]byte
		if _, err := io.ReadFull(r, sz[:]); err != nil {
			return Header{}, nil, errors.Wrapf(err, "ktx: reading level %d size", i)
		}
		size := int(binary.LittleEndian.Uint32(sz[:]))
		if want := h.LevelSize(fp, i); size != want {
			return Header{}, nil, errors.Errorf("ktx: level %d imageSize %d, want %d", i, size, want)
		}
		levels[i] = make([][]byte, h.NumberOfFaces)
		for f := range levels[i] {
			data := make([]byte, size+padding(size))
			if _, err := io.ReadFull(r, data); err != nil {
				return Header{}, nil, errors.Wrapf(err, "ktx: reading level %d face %d", i, f)
			}
			levels[i][f] = data[:size]
		}
	}
	return h, levels, nil
}

func padding(n int) int { return (4 - n%4) % 4 }
