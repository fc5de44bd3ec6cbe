package commands

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/am-sokolov/go-astc-pipeline/astc"
)

func encodeFixture(t *testing.T, extra ...string) (dir, out string) {
	t.Helper()
	dir = t.TempDir()
	in := writeTestPNG(t, dir, 16, 16)
	out = filepath.Join(dir, "out.bin")
	args := append([]string{"encode", in, out, "-s", "veryfast", "-q"}, extra...)
	_, err := execute(t, args...)
	require.NoError(t, err)
	return dir, out
}

func TestInfo_Text(t *testing.T) {
	_, out := encodeFixture(t, "-b", "8x8")

	stdout, err := execute(t, "info", out, "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "container: astc\n")
	assert.Contains(t, stdout, "footprint: 8x8\n")
	assert.Contains(t, stdout, "size:      16x16x1\n")
	assert.Contains(t, stdout, "blocks:    4\n")
	assert.Contains(t, stdout, "block 0: ")
	assert.Contains(t, stdout, "block 1: ")
	assert.NotContains(t, stdout, "block 2: ")
}

func TestInfo_YAML(t *testing.T) {
	_, out := encodeFixture(t, "--container", "ktx", "--mips", "3", "--compress", "zstd")

	stdout, err := execute(t, "info", out, "--yaml", "--blocks", "1")
	require.NoError(t, err)

	var fi FileInfo
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &fi))
	assert.Equal(t, "ktx", fi.Container)
	assert.True(t, fi.Zstd)
	assert.Equal(t, "4x4", fi.Footprint)
	assert.Equal(t, 3, fi.Levels)
	assert.Equal(t, 1, fi.Faces)
	assert.Equal(t, 16, fi.Blocks)
	assert.Contains(t, stdout, "inspected:")
	assert.Contains(t, stdout, "kind: normal")
}

func TestInfo_Errors(t *testing.T) {
	dir := t.TempDir()
	junk := filepath.Join(dir, "junk.astc")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not a texture"), 0644))

	_, err := execute(t, "info", junk)
	require.Error(t, err)
	assert.Equal(t, "unrecognised file", err.Error())

	_, err = execute(t, "info", filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.Equal(t, "failed to read input", err.Error())
}

func TestDecode(t *testing.T) {
	for _, container := range []string{"astc", "ktx"} {
		t.Run(container, func(t *testing.T) {
			dir, out := encodeFixture(t, "--container", container, "-b", "5x5")
			pngPath := filepath.Join(dir, "decoded.png")

			_, err := execute(t, "decode", out, pngPath, "-q")
			require.NoError(t, err)

			f, err := os.Open(pngPath)
			require.NoError(t, err)
			defer f.Close()
			img, err := png.Decode(f)
			require.NoError(t, err)
			assert.Equal(t, 16, img.Bounds().Dx())
			assert.Equal(t, 16, img.Bounds().Dy())
		})
	}
}

func TestPreview(t *testing.T) {
	dir := t.TempDir()
	in := writeTestPNG(t, dir, 10, 10)
	outPath := filepath.Join(dir, "preview.png")

	_, err := execute(t, "preview", in, outPath, "-s", "fast", "-q")
	require.NoError(t, err)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
}

func TestPSNR(t *testing.T) {
	a := astc.NewImage(2, 2, 1, astc.KindU8)
	b := astc.NewImage(2, 2, 1, astc.KindU8)
	assert.True(t, math.IsInf(psnr(a, b), 1))

	b.DataU8[0] = 255
	// One of sixteen samples is off by the full range.
	assert.InDelta(t, 10*math.Log10(16), psnr(a, b), 1e-9)
}

func TestBench(t *testing.T) {
	stdout, err := execute(t, "bench", "--size", "16x8", "-s", "veryfast", "--iters", "1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "RESULT mode=encode speed=veryfast block=4x4 size=16x8x1 iters=1"))
	assert.Contains(t, stdout, "checksum=")

	decoded, err := execute(t, "bench", "--size", "16x8", "--iters", "2", "--decode")
	require.NoError(t, err)
	assert.Contains(t, decoded, "RESULT mode=decode")

	again, err := execute(t, "bench", "--size", "16x8", "-s", "veryfast", "--iters", "1", "-j", "3")
	require.NoError(t, err)
	assert.Equal(t, checksumOf(stdout), checksumOf(again), "output does not depend on worker count")

	_, err = execute(t, "bench", "--iters", "0")
	require.Error(t, err)
	assert.Equal(t, "invalid iterations", err.Error())
}

func checksumOf(line string) string {
	i := strings.Index(line, "checksum=")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(line[i:])
}
