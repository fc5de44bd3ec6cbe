package ktx_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/am-sokolov/go-astc-pipeline/astc"
	"github.com/am-sokolov/go-astc-pipeline/astc/ktx"
)

func TestInternalFormat(t *testing.T) {
	f, err := ktx.InternalFormat(astc.Footprint{X: 4, Y: 4, Z: 1})
	require.NoError(t, err)
	assert.Equal(t, uint32(ktx.GLCompressedRGBAASTC4x4), f)

	f, err = ktx.InternalFormat(astc.Footprint{X: 12, Y: 12, Z: 1})
	require.NoError(t, err)
	assert.Equal(t, uint32(0x93BD), f)

	fp, err := ktx.FootprintOf(ktx.GLCompressedRGBAASTC10x6)
	require.NoError(t, err)
	assert.Equal(t, astc.Footprint{X: 10, Y: 6, Z: 1}, fp)

	_, err = ktx.InternalFormat(astc.Footprint{X: 4, Y: 4, Z: 4})
	assert.Error(t, err)
	_, err = ktx.FootprintOf(0x8C4C)
	assert.Error(t, err)
}

func TestNewHeader(t *testing.T) {
	h, err := ktx.NewHeader(astc.Footprint{X: 6, Y: 6, Z: 1}, 100, 50, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, uint32(ktx.GLRGBA), h.GLBaseInternalFormat)
	assert.Equal(t, uint32(1), h.GLTypeSize)
	assert.Zero(t, h.GLType)
	assert.Zero(t, h.GLFormat)

	_, err = ktx.NewHeader(astc.Footprint{X: 6, Y: 6, Z: 1}, 100, 50, 2, 1)
	assert.ErrorContains(t, err, "faces")
	_, err = ktx.NewHeader(astc.Footprint{X: 6, Y: 6, Z: 1}, 100, 50, 1, 0)
	assert.ErrorContains(t, err, "mip levels")
	_, err = ktx.NewHeader(astc.Footprint{X: 6, Y: 6, Z: 1}, 0, 50, 1, 1)
	assert.ErrorContains(t, err, "zero texture size")
}

func TestWriteRead(t *testing.T) {
	fp := astc.Footprint{X: 4, Y: 4, Z: 1}
	h, err := ktx.NewHeader(fp, 8, 8, 1, 2)
	require.NoError(t, err)

	levels := [][][]byte{
		{bytes.Repeat([]byte{0xAA}, 4*astc.BlockBytes)},
		{bytes.Repeat([]byte{0x55}, astc.BlockBytes)},
	}

	var buf bytes.Buffer
	require.NoError(t, ktx.Write(&buf, h, levels))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, ktx.Identifier[:]))
	assert.Equal(t, uint32(0x04030201), binary.LittleEndian.Uint32(raw[12:]))
	assert.Equal(t, 12+13*4+4+64+4+16, len(raw))
	assert.Equal(t, uint32(64), binary.LittleEndian.Uint32(raw[64:]), "imageSize of level 0")

	got, gotLevels, err := ktx.Read(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Equal(t, levels, gotLevels)

	gotFP, err := got.Footprint()
	require.NoError(t, err)
	assert.Equal(t, fp, gotFP)
}

func TestWriteCubemapPadding(t *testing.T) {
	// Faces are padded to four bytes even though ASTC data never needs it.
	h, err := ktx.NewHeader(astc.Footprint{X: 4, Y: 4, Z: 1}, 4, 4, 6, 1)
	require.NoError(t, err)

	faces := make([][]byte, 6)
	for i := range faces {
		faces[i] = []byte{byte(i), 1, 2, 3, 4, 5}
	}
	var buf bytes.Buffer
	require.NoError(t, ktx.Write(&buf, h, [][][]byte{faces}))
	assert.Equal(t, 12+13*4+4+6*8, buf.Len())

	_, _, err = ktx.Read(&buf)
	assert.ErrorContains(t, err, "level 0 imageSize 6, want 16")

	for i := range faces {
		faces[i] = bytes.Repeat([]byte{byte(i)}, astc.BlockBytes)
	}
	buf.Reset()
	require.NoError(t, ktx.Write(&buf, h, [][][]byte{faces}))
	_, levels, err := ktx.Read(&buf)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, faces, levels[0])
}

func TestWriteErrors(t *testing.T) {
	h, err := ktx.NewHeader(astc.Footprint{X: 4, Y: 4, Z: 1}, 4, 4, 1, 2)
	require.NoError(t, err)

	err = ktx.Write(&bytes.Buffer{}, h, [][][]byte{{make([]byte, 16)}})
	assert.ErrorContains(t, err, "declares 2 mip levels")

	err = ktx.Write(&bytes.Buffer{}, h, [][][]byte{{make([]byte, 16)}, {}})
	assert.ErrorContains(t, err, "level 1 has 0 faces")
}

func TestReadErrors(t *testing.T) {
	_, _, err := ktx.Read(bytes.NewReader([]byte("not a ktx file at all")))
	assert.ErrorContains(t, err, "invalid identifier")

	h, err := ktx.NewHeader(astc.Footprint{X: 4, Y: 4, Z: 1}, 4, 4, 1, 1)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, ktx.Write(&buf, h, [][][]byte{{make([]byte, 16)}}))

	_, _, err = ktx.Read(bytes.NewReader(buf.Bytes()[:buf.Len()-4]))
	assert.ErrorContains(t, err, "reading level 0 face 0")

	swapped := append([]byte{}, buf.Bytes()...)
	binary.BigEndian.PutUint32(swapped[12:], 0x04030201)
	_, _, err = ktx.Read(bytes.NewReader(swapped))
	assert.ErrorContains(t, err, "unsupported endianness")
}

func TestReadRejectsOversizedImageSize(t *testing.T) {
	h, err := ktx.NewHeader(astc.Footprint{X: 4, Y: 4, Z: 1}, 4, 4, 1, 1)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, ktx.Write(&buf, h, [][][]byte{{make([]byte, 16)}}))

	// Header plus a bare imageSize claiming nearly 2 GiB.
	raw := append([]byte{}, buf.Bytes()[:64]...)
	raw = binary.LittleEndian.AppendUint32(raw, 0x7FFFFFF0)
	require.Len(t, raw, 68)

	_, _, err = ktx.Read(bytes.NewReader(raw))
	assert.ErrorContains(t, err, "level 0 imageSize 2147483632, want 16")
}

func TestLevelSize(t *testing.T) {
	fp := astc.Footprint{X: 6, Y: 6, Z: 1}
	h, err := ktx.NewHeader(fp, 100, 50, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 17*9*astc.BlockBytes, h.LevelSize(fp, 0))
	assert.Equal(t, 9*5*astc.BlockBytes, h.LevelSize(fp, 1))
	assert.Equal(t, 5*2*astc.BlockBytes, h.LevelSize(fp, 2))
	assert.Equal(t, astc.BlockBytes, h.LevelSize(fp, 7))
}
