package astc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/am-sokolov/go-astc-pipeline/astc"
)

func TestParseFootprint(t *testing.T) {
	fp, err := astc.ParseFootprint("6x6")
	require.NoError(t, err)
	assert.Equal(t, astc.Footprint{X: 6, Y: 6, Z: 1}, fp)
	assert.Equal(t, "6x6", fp.String())
	assert.False(t, fp.Is3D())

	fp, err = astc.ParseFootprint("4X4x3")
	require.NoError(t, err)
	assert.Equal(t, astc.Footprint{X: 4, Y: 4, Z: 3}, fp)
	assert.Equal(t, "4x4x3", fp.String())
	assert.Equal(t, 48, fp.Texels())
	assert.True(t, fp.Is3D())

	for _, bad := range []string{"", "4", "4x", "7x7", "4x6", "6x6x7", "0x0", "-4x4", "4x4x4x4"} {
		_, err := astc.ParseFootprint(bad)
		assert.Equal(t, astc.ErrBadBlockSize, astc.ErrorCodeOf(err), "%q", bad)
	}
}

func TestFootprintBlocks(t *testing.T) {
	cases := []struct {
		fp         astc.Footprint
		dx, dy, dz int
		want       astc.BlockGrid
	}{
		{astc.Footprint{X: 4, Y: 4, Z: 1}, 16, 16, 1, astc.BlockGrid{X: 4, Y: 4, Z: 1}},
		{astc.Footprint{X: 4, Y: 4, Z: 1}, 17, 1, 1, astc.BlockGrid{X: 5, Y: 1, Z: 1}},
		{astc.Footprint{X: 12, Y: 10, Z: 1}, 100, 100, 1, astc.BlockGrid{X: 9, Y: 10, Z: 1}},
		{astc.Footprint{X: 8, Y: 5, Z: 1}, 1, 1, 3, astc.BlockGrid{X: 1, Y: 1, Z: 3}},
		{astc.Footprint{X: 3, Y: 3, Z: 3}, 10, 9, 8, astc.BlockGrid{X: 4, Y: 3, Z: 3}},
	}
	for _, tc := range cases {
		g := tc.fp.Blocks(tc.dx, tc.dy, tc.dz)
		assert.Equal(t, tc.want, g, "%s over %dx%dx%d", tc.fp, tc.dx, tc.dy, tc.dz)
		assert.Equal(t, tc.want.X*tc.want.Y*tc.want.Z, g.Total())
	}
}

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, "SUCCESS", astc.ErrorString(astc.Success))
	assert.Equal(t, "ERR_BAD_BLOCK_SIZE", astc.ErrorString(astc.ErrBadBlockSize))
	assert.Equal(t, "", astc.ErrorString(astc.ErrorCode(99)))

	assert.Equal(t, astc.Success, astc.ErrorCodeOf(nil))
	assert.Equal(t, astc.ErrBadParam, astc.ErrorCodeOf(assert.AnError))

	err := &astc.Error{Code: astc.ErrOutOfMem}
	assert.Equal(t, "astc: ERR_OUT_OF_MEM", err.Error())
	assert.Equal(t, astc.ErrOutOfMem, astc.ErrorCodeOf(err))
}
