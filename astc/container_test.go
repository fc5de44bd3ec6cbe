package astc_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/am-sokolov/go-astc-pipeline/astc"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := astc.Header{BlockX: 6, BlockY: 5, BlockZ: 1, SizeX: 0x123456, SizeY: 17, SizeZ: 1}
	raw, err := astc.MarshalHeader(h)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x13, 0xAB, 0xA1, 0x5C, 6, 5, 1, 0x56, 0x34, 0x12, 17, 0, 0, 1, 0, 0}, raw[:])

	got, err := astc.ParseHeader(raw[:])
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Equal(t, astc.Footprint{X: 6, Y: 5, Z: 1}, got.Footprint())
	assert.Equal(t, "6x5x1 blocks, 1193046x17x1 texels", got.String())

	g, err := got.BlockCount()
	require.NoError(t, err)
	assert.Equal(t, astc.BlockGrid{X: 198841, Y: 4, Z: 1}, g)
}

func TestHeaderErrors(t *testing.T) {
	good, err := astc.MarshalHeader(astc.Header{BlockX: 4, BlockY: 4, BlockZ: 1, SizeX: 4, SizeY: 4, SizeZ: 1})
	require.NoError(t, err)

	cases := map[string]func(b []byte) []byte{
		"short":           func(b []byte) []byte { return b[:15] },
		"magic":           func(b []byte) []byte { b[0] = 0; return b },
		"zero block size": func(b []byte) []byte { b[6] = 0; return b },
		"zero image size": func(b []byte) []byte { b[7] = 0; return b },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			b := append([]byte{}, good[:]...)
			_, err := astc.ParseHeader(mutate(b))
			assert.Equal(t, astc.ErrBadData, astc.ErrorCodeOf(err))
		})
	}

	_, err = astc.MarshalHeader(astc.Header{BlockX: 4, BlockY: 4, BlockZ: 1, SizeX: 1 << 24, SizeY: 1, SizeZ: 1})
	assert.Equal(t, astc.ErrBadData, astc.ErrorCodeOf(err))
}

func TestWriteAndParseFile(t *testing.T) {
	img := rgbaPattern(10, 6, 1)
	fp := astc.Footprint{X: 4, Y: 4, Z: 1}
	r, err := astc.EncodeImage(img, astc.SpeedFast, fp, astc.Options{SuppressProgress: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, astc.WriteFile(&buf, r.Header(), r.Data))
	assert.Equal(t, astc.HeaderSize+r.Len(), buf.Len())

	h, payload, err := astc.ParseFile(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, r.Header(), h)
	assert.Equal(t, r.Data, payload)

	t.Run("zero padding", func(t *testing.T) {
		padded := append(append([]byte{}, buf.Bytes()...), 0, 0, 0, 0)
		_, payload, err := astc.ParseFile(padded)
		require.NoError(t, err)
		assert.Equal(t, r.Data, payload)
	})

	t.Run("trailing garbage", func(t *testing.T) {
		bad := append(append([]byte{}, buf.Bytes()...), 1)
		_, _, err := astc.ParseFile(bad)
		assert.Equal(t, astc.ErrBadData, astc.ErrorCodeOf(err))
	})

	t.Run("truncated", func(t *testing.T) {
		_, _, err := astc.ParseFile(buf.Bytes()[:buf.Len()-1])
		assert.Equal(t, astc.ErrBadData, astc.ErrorCodeOf(err))
	})

	t.Run("length mismatch", func(t *testing.T) {
		err := astc.WriteFile(&bytes.Buffer{}, r.Header(), r.Data[:16])
		assert.Equal(t, astc.ErrBadParam, astc.ErrorCodeOf(err))
	})
}
