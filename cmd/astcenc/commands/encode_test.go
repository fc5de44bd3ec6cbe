package commands

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/am-sokolov/go-astc-pipeline/astc"
)

func TestEncode_PNGToASTC(t *testing.T) {
	dir := t.TempDir()
	in := writeTestPNG(t, dir, 16, 12)
	out := filepath.Join(dir, "out.astc")

	_, err := execute(t, "encode", in, out, "-b", "4x4", "-s", "fast", "-j", "2", "-q")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	h, payload, err := astc.ParseFile(data)
	require.NoError(t, err)
	assert.Equal(t, astc.Footprint{X: 4, Y: 4, Z: 1}, h.Footprint())
	assert.Equal(t, uint32(16), h.SizeX)
	assert.Equal(t, uint32(12), h.SizeY)
	assert.Len(t, payload, 4*3*astc.BlockBytes)
}

func TestEncode_ProgressGoesToStdout(t *testing.T) {
	dir := t.TempDir()
	in := writeTestPNG(t, dir, 8, 8)

	stdout, err := execute(t, "encode", in, filepath.Join(dir, "out.astc"), "-s", "exhaustive", "-j", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\r4")
}

func TestEncode_RawKTXMipsZstdReport(t *testing.T) {
	dir := t.TempDir()
	raw := make([]byte, 16*16)
	for i := range raw {
		raw[i] = byte(i)
	}
	in := filepath.Join(dir, "in.r8")
	require.NoError(t, os.WriteFile(in, raw, 0644))
	out := filepath.Join(dir, "out.ktx.zst")
	report := filepath.Join(dir, "report.yml")

	_, err := execute(t, "encode", in, out,
		"--raw", "16x16", "--layout", "r", "--encoding", "u8",
		"--container", "ktx", "--mips", "0", "--compress", "zstd",
		"--report", report, "-s", "veryfast", "-q")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	tex, err := openTexture(data)
	require.NoError(t, err)
	assert.Equal(t, "ktx", tex.container)
	assert.True(t, tex.zstd)
	assert.Equal(t, 5, tex.levels)
	assert.Equal(t, [3]int{16, 16, 1}, tex.dims)
	assert.Len(t, tex.blocks, 16*astc.BlockBytes)

	var r Report
	rdata, err := os.ReadFile(report)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(rdata, &r))
	assert.Len(t, r.JobID, 36)
	assert.Equal(t, 5, r.Levels)
	assert.Equal(t, 16, r.Blocks)
	assert.Equal(t, 256, r.BlockBytes)
	assert.Equal(t, len(data), r.OutputBytes)
	assert.InDelta(t, 8.0, r.BitsPerTex, 1e-9)
	assert.Equal(t, "ktx", r.Container)
	assert.Equal(t, "zstd", r.Compress)
}

func TestEncode_ConfigProfile(t *testing.T) {
	dir := t.TempDir()
	in := writeTestPNG(t, dir, 12, 12)
	cfg := filepath.Join(dir, "profile.yml")
	require.NoError(t, os.WriteFile(cfg, []byte("speed: veryfast\nfootprint: 6x6\nquiet: true\n"), 0644))

	out := filepath.Join(dir, "out.astc")
	_, err := execute(t, "encode", in, out, "--config", cfg)
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	h, err := astc.ParseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, astc.Footprint{X: 6, Y: 6, Z: 1}, h.Footprint())

	// Flags that are set win over the profile.
	_, err = execute(t, "encode", in, out, "--config", cfg, "-b", "4x4")
	require.NoError(t, err)
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	h, err = astc.ParseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, astc.Footprint{X: 4, Y: 4, Z: 1}, h.Footprint())
}

func TestEncode_Errors(t *testing.T) {
	dir := t.TempDir()
	in := writeTestPNG(t, dir, 8, 8)
	out := filepath.Join(dir, "out.astc")

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"bad footprint", []string{"-b", "7x7"}, "invalid encode settings"},
		{"bad speed", []string{"-s", "warp"}, "invalid encode settings"},
		{"mips without ktx", []string{"--mips", "3"}, "invalid encode settings"},
		{"ktx volume", []string{"--container", "ktx", "-b", "4x4x4"}, "ktx output needs a 2D image"},
		{"short raw input", []string{"--raw", "64x64"}, "failed to load input"},
		{"missing config", []string{"--config", filepath.Join(dir, "nope.yml")}, "invalid encode settings"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"encode", in, out, "-q"}, tc.args...)
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}

	_, err := execute(t, "encode", filepath.Join(dir, "missing.png"), out, "-q")
	require.Error(t, err)
	assert.Equal(t, "failed to load input", err.Error())

	_, err = execute(t, "encode", in)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "accepts 2 arg(s)"))
}

func TestEncode_16BitPNGKeepsPrecision(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA64(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA64(x, y, color.NRGBA64{R: uint16(x * 0x2001), G: uint16(y*0x1FFF + 0x33), B: 0x8000, A: 0xFFFF})
		}
	}
	in := filepath.Join(dir, "in16.png")
	f, err := os.Create(in)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	src, err := loadSource(in, rawInput{})
	require.NoError(t, err)
	assert.Equal(t, astc.KindF16, src.img.Kind)
	assert.Equal(t, astc.EncodingU16, src.format.Encoding)
	assert.True(t, src.ldr())

	out := filepath.Join(dir, "out.ktx")
	_, err = execute(t, "encode", in, out, "--container", "ktx", "--mips", "0", "-s", "fast", "-q")
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	tex, err := openTexture(data)
	require.NoError(t, err)
	assert.Equal(t, 4, tex.levels)

	bi, err := astc.InspectBlock(tex.blocks, tex.fp)
	require.NoError(t, err)
	assert.False(t, bi.HDR, "UNORM16 input stays LDR")
}

func TestEncode_RawHalfFloatMipsStayHDR(t *testing.T) {
	dir := t.TempDir()
	raw := make([]byte, 8*8*4*2)
	for i := 0; i < len(raw); i += 2 {
		binary.LittleEndian.PutUint16(raw[i:], 0x4000)
	}
	in := filepath.Join(dir, "in.f16")
	require.NoError(t, os.WriteFile(in, raw, 0644))
	out := filepath.Join(dir, "out.ktx")

	_, err := execute(t, "encode", in, out,
		"--raw", "8x8", "--layout", "rgba", "--encoding", "f16",
		"--container", "ktx", "--mips", "0", "-s", "fast", "-q")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	tex, err := openTexture(data)
	require.NoError(t, err)
	assert.Equal(t, 4, tex.levels)

	bi, err := astc.InspectBlock(tex.blocks, tex.fp)
	require.NoError(t, err)
	assert.Equal(t, astc.BlockConstant, bi.Kind)
	assert.True(t, bi.HDR)
	assert.Equal(t, [4]uint16{0x4000, 0x4000, 0x4000, 0x4000}, bi.Constant)

	out = filepath.Join(dir, "ldr.astc")
	_, err = execute(t, "encode", in, out,
		"--raw", "8x8", "--layout", "rgba", "--encoding", "f16", "--ldr", "-q")
	require.NoError(t, err)
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	tex, err = openTexture(data)
	require.NoError(t, err)
	bi, err = astc.InspectBlock(tex.blocks, tex.fp)
	require.NoError(t, err)
	assert.False(t, bi.HDR)
	assert.Equal(t, [4]uint16{0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF}, bi.Constant, "--ldr clamps to one")
}
