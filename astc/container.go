package astc

import (
	"fmt"
	"io"
)

// HeaderSize is the size in bytes of an .astc file header.
const HeaderSize = 16

var astcMagic = [4]byte{0x13, 0xAB, 0xA1, 0x5C}

const maxHeaderDim = 1<<24 - 1

// Header is the .astc file header: the block footprint followed by the image
// size as 24-bit little-endian integers.
type Header struct {
	BlockX uint8
	BlockY uint8
	BlockZ uint8

	SizeX uint32
	SizeY uint32
	SizeZ uint32
}

func (h Header) String() string {
	return fmt.Sprintf("%dx%dx%d blocks, %dx%dx%d texels",
		h.BlockX, h.BlockY, h.BlockZ,
		h.SizeX, h.SizeY, h.SizeZ)
}

// Footprint returns the block footprint recorded in h.
func (h Header) Footprint() Footprint {
	return Footprint{X: int(h.BlockX), Y: int(h.BlockY), Z: int(h.BlockZ)}
}

func (h Header) validate() error {
	if h.BlockX == 0 || h.BlockY == 0 || h.BlockZ == 0 {
		return newError(ErrBadData, "astc: header has a zero block dimension")
	}
	if h.SizeX == 0 || h.SizeY == 0 || h.SizeZ == 0 {
		return newError(ErrBadData, "astc: header has a zero image dimension")
	}
	if h.SizeX > maxHeaderDim || h.SizeY > maxHeaderDim || h.SizeZ > maxHeaderDim {
		return newError(ErrBadData, "astc: image dimension does not fit in 24 bits")
	}
	return nil
}

// BlockCount returns the block grid covering the image.
func (h Header) BlockCount() (BlockGrid, error) {
	if err := h.validate(); err != nil {
		return BlockGrid{}, err
	}
	g := h.Footprint().Blocks(int(h.SizeX), int(h.SizeY), int(h.SizeZ))
	if g.Total()/g.X/g.Y != g.Z {
		return BlockGrid{}, newError(ErrBadData, "astc: block count overflow")
	}
	return g, nil
}

// ParseHeader parses the first HeaderSize bytes of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, shortData("header", HeaderSize, len(data))
	}
	if [4]byte(data[:4]) != astcMagic {
		return Header{}, newError(ErrBadData, "astc: invalid magic")
	}

	h := Header{
		BlockX: data[4],
		BlockY: data[5],
		BlockZ: data[6],
		SizeX:  getU24(data[7:]),
		SizeY:  getU24(data[10:]),
		SizeZ:  getU24(data[13:]),
	}
	if err := h.validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// MarshalHeader encodes h.
func MarshalHeader(h Header) ([HeaderSize]byte, error) {
	var out [HeaderSize]byte
	if err := h.validate(); err != nil {
		return out, err
	}
	copy(out[:4], astcMagic[:])
	out[4], out[5], out[6] = h.BlockX, h.BlockY, h.BlockZ
	putU24(out[7:], h.SizeX)
	putU24(out[10:], h.SizeY)
	putU24(out[13:], h.SizeZ)
	return out, nil
}

// ParseFile splits an .astc file into its header and block payload. The
// payload aliases data. Zero padding after the last block is tolerated.
func ParseFile(data []byte) (Header, []byte, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Header{}, nil, err
	}
	g, err := h.BlockCount()
	if err != nil {
		return Header{}, nil, err
	}

	need := HeaderSize + g.Total()*BlockBytes
	if len(data) < need {
		return Header{}, nil, shortData("file", need, len(data))
	}
	for _, b := range data[need:] {
		if b != 0 {
			return Header{}, nil, newError(ErrBadData, "astc: trailing non-zero data")
		}
	}
	return h, data[HeaderSize:need], nil
}

// WriteFile writes h followed by the compressed blocks.
func WriteFile(w io.Writer, h Header, blocks []byte) error {
	g, err := h.BlockCount()
	if err != nil {
		return err
	}
	if want := g.Total() * BlockBytes; len(blocks) != want {
		return newError(ErrBadParam, fmt.Sprintf("astc: header describes %d block bytes, got %d", want, len(blocks)))
	}
	hdr, err := MarshalHeader(h)
	if err != nil {
		return err
	}
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err = w.Write(blocks)
	return err
}

func getU24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func putU24(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
}

func shortData(what string, want, got int) error {
	return newError(ErrBadData, fmt.Sprintf("astc: %s: unexpected EOF: want %d bytes, got %d", what, want, got))
}
