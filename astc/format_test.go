package astc_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/am-sokolov/go-astc-pipeline/astc"
)

var allLayouts = []astc.Layout{
	astc.LayoutR, astc.LayoutRG, astc.LayoutRGB, astc.LayoutBGR, astc.LayoutRGBA,
	astc.LayoutBGRA, astc.LayoutL, astc.LayoutLA, astc.LayoutRGBX, astc.LayoutBGRX,
}

var allEncodings = []astc.Encoding{astc.EncodingU8, astc.EncodingU16, astc.EncodingF16, astc.EncodingF32}

func TestFormatProperties(t *testing.T) {
	channels := map[astc.Layout][2]int{ // stored, weighted
		astc.LayoutR:    {1, 1},
		astc.LayoutRG:   {2, 2},
		astc.LayoutRGB:  {3, 3},
		astc.LayoutBGR:  {3, 3},
		astc.LayoutRGBA: {4, 4},
		astc.LayoutBGRA: {4, 4},
		astc.LayoutL:    {1, 1},
		astc.LayoutLA:   {2, 2},
		astc.LayoutRGBX: {4, 3},
		astc.LayoutBGRX: {4, 3},
	}
	sizes := map[astc.Encoding]int{astc.EncodingU8: 1, astc.EncodingU16: 2, astc.EncodingF16: 2, astc.EncodingF32: 4}

	for _, l := range allLayouts {
		for _, e := range allEncodings {
			f := astc.Format{Layout: l, Encoding: e}
			t.Run(f.String(), func(t *testing.T) {
				assert.Equal(t, channels[l][0]*sizes[e], f.BytesPerPixel())
				assert.Equal(t, channels[l][1], f.Channels())
				if e == astc.EncodingU8 {
					assert.Equal(t, astc.KindU8, f.ElementKind())
				} else {
					assert.Equal(t, astc.KindF16, f.ElementKind())
				}

				pl, err := astc.ParseLayout(l.String())
				require.NoError(t, err)
				assert.Equal(t, l, pl)
				pe, err := astc.ParseEncoding(e.String())
				require.NoError(t, err)
				assert.Equal(t, e, pe)
			})
		}
	}

	_, err := astc.ParseLayout("xyz")
	assert.Equal(t, astc.ErrBadFormat, astc.ErrorCodeOf(err))
	_, err = astc.ParseEncoding("u4")
	assert.Equal(t, astc.ErrBadFormat, astc.ErrorCodeOf(err))
}

func TestNormalizeRowU8(t *testing.T) {
	cases := []struct {
		layout astc.Layout
		src    []byte
		want   []byte
	}{
		{astc.LayoutR, []byte{7}, []byte{7, 7, 7, 255}},
		{astc.LayoutL, []byte{9}, []byte{9, 9, 9, 255}},
		{astc.LayoutRG, []byte{1, 2}, []byte{1, 2, 0, 255}},
		{astc.LayoutLA, []byte{5, 6}, []byte{5, 5, 5, 6}},
		{astc.LayoutRGB, []byte{1, 2, 3}, []byte{1, 2, 3, 255}},
		{astc.LayoutBGR, []byte{1, 2, 3}, []byte{3, 2, 1, 255}},
		{astc.LayoutRGBA, []byte{1, 2, 3, 4}, []byte{1, 2, 3, 4}},
		{astc.LayoutBGRA, []byte{1, 2, 3, 4}, []byte{3, 2, 1, 4}},
		{astc.LayoutRGBX, []byte{1, 2, 3, 4}, []byte{1, 2, 3, 255}},
		{astc.LayoutBGRX, []byte{1, 2, 3, 4}, []byte{3, 2, 1, 255}},
	}
	for _, tc := range cases {
		t.Run(tc.layout.String(), func(t *testing.T) {
			f := astc.Format{Layout: tc.layout, Encoding: astc.EncodingU8}
			src := append(append([]byte{}, tc.src...), tc.src...)
			dst := make([]byte, 8)
			astc.NormalizeRowU8(dst, src, 2, f)
			assert.Equal(t, append(append([]byte{}, tc.want...), tc.want...), dst)
		})
	}
}

func TestNormalizeRowF16(t *testing.T) {
	const one = 0x3C00

	t.Run("f32 one", func(t *testing.T) {
		src := make([]byte, 4)
		binary.LittleEndian.PutUint32(src, math.Float32bits(1.0))
		dst := make([]uint16, 4)
		astc.NormalizeRowF16(dst, src, 1, astc.Format{Layout: astc.LayoutR, Encoding: astc.EncodingF32})
		assert.Equal(t, []uint16{one, one, one, one}, dst)
	})

	t.Run("f16 passes through", func(t *testing.T) {
		src := []byte{0x00, 0x38, 0x00, 0xBC} // 0.5, -1
		dst := make([]uint16, 4)
		astc.NormalizeRowF16(dst, src, 1, astc.Format{Layout: astc.LayoutRG, Encoding: astc.EncodingF16})
		assert.Equal(t, []uint16{0x3800, 0xBC00, 0, one}, dst)
	})

	t.Run("u16 full scale", func(t *testing.T) {
		src := []byte{0xFF, 0xFF, 0x00, 0x00, 0xFF, 0xFF}
		dst := make([]uint16, 4)
		astc.NormalizeRowF16(dst, src, 1, astc.Format{Layout: astc.LayoutBGR, Encoding: astc.EncodingU16})
		assert.Equal(t, []uint16{one, 0, one, one}, dst)
	})

	t.Run("wrong kind panics", func(t *testing.T) {
		assert.Panics(t, func() {
			astc.NormalizeRowF16(make([]uint16, 4), make([]byte, 4), 1, astc.Format{Layout: astc.LayoutRGBA, Encoding: astc.EncodingU8})
		})
		assert.Panics(t, func() {
			astc.NormalizeRowU8(make([]byte, 4), make([]byte, 2), 1, astc.Format{Layout: astc.LayoutR, Encoding: astc.EncodingU16})
		})
	})

	t.Run("short buffers panic", func(t *testing.T) {
		f := astc.Format{Layout: astc.LayoutRGBA, Encoding: astc.EncodingU8}
		assert.Panics(t, func() { astc.NormalizeRowU8(make([]byte, 4), make([]byte, 7), 2, f) })
		assert.Panics(t, func() { astc.NormalizeRowU8(make([]byte, 7), make([]byte, 8), 2, f) })
	})
}

func TestFormatFromGL(t *testing.T) {
	f, err := astc.FormatFromGL(astc.GLBGRA, astc.GLUnsignedByte)
	require.NoError(t, err)
	assert.Equal(t, astc.Format{Layout: astc.LayoutBGRA, Encoding: astc.EncodingU8}, f)

	f, err = astc.FormatFromGL(astc.GLLuminanceAlpha, astc.GLHalfFloat)
	require.NoError(t, err)
	assert.Equal(t, astc.Format{Layout: astc.LayoutLA, Encoding: astc.EncodingF16}, f)

	f, err = astc.FormatFromGL(astc.GLRG, astc.GLFloat)
	require.NoError(t, err)
	assert.Equal(t, "rg/f32", f.String())

	_, err = astc.FormatFromGL(0x1234, astc.GLUnsignedByte)
	assert.Equal(t, astc.ErrBadFormat, astc.ErrorCodeOf(err))
	_, err = astc.FormatFromGL(astc.GLRGBA, 0x1400)
	assert.Equal(t, astc.ErrBadFormat, astc.ErrorCodeOf(err))
}

func TestNormalizeImage(t *testing.T) {
	f := astc.Format{Layout: astc.LayoutRGB, Encoding: astc.EncodingU8}
	pixels := make([]byte, 3*2*2*3)
	for i := range pixels {
		pixels[i] = byte(i)
	}
	img := astc.NormalizeImage(pixels, 3, 2, 2, f)
	require.Equal(t, astc.KindU8, img.Kind)
	require.Len(t, img.DataU8, 3*2*2*4)

	// last texel of the second slice
	assert.Equal(t, []byte{33, 34, 35, 255}, img.DataU8[len(img.DataU8)-4:])

	assert.Panics(t, func() { astc.NormalizeImage(pixels[:10], 3, 2, 2, f) })
	assert.Panics(t, func() { astc.NormalizeImage(pixels, 0, 2, 2, f) })
}
