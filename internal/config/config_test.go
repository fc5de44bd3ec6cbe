package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/am-sokolov/go-astc-pipeline/astc"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "astcenc.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault(t *testing.T) {
	p := Default()
	assert.Equal(t, "medium", p.Speed)
	assert.Equal(t, "4x4", p.Footprint)
	assert.Equal(t, ContainerASTC, p.Container)
	assert.Equal(t, CompressNone, p.Compress)
	assert.Equal(t, 1, p.Mips)
	assert.Equal(t, astc.SpeedMedium, p.SpeedTier())
	assert.Equal(t, astc.Footprint{X: 4, Y: 4, Z: 1}, p.BlockFootprint())
	assert.Nil(t, p.WeightingFor(astc.KindU8))
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `speed: thorough
footprint: 6x6
workers: 3
container: ktx
compress: zstd
mips: -1
weighting:
  radius: 2
  alpha_radius: 1
`)

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, astc.SpeedThorough, p.SpeedTier())
	assert.Equal(t, astc.Footprint{X: 6, Y: 6, Z: 1}, p.BlockFootprint())
	assert.Equal(t, 3, p.Workers)
	assert.Equal(t, ContainerKTX, p.Container)
	assert.Equal(t, CompressZstd, p.Compress)
	assert.Equal(t, MipsFull, p.Mips)

	w := p.WeightingFor(astc.KindF16)
	require.NotNil(t, w)
	assert.Equal(t, 2, w.Radius)
	assert.Equal(t, 1, w.AlphaRadius)
	assert.Equal(t, float32(0.75), w.RGBPower, "kind defaults are kept")
}

func TestLoad_FileNotFound(t *testing.T) {
	p, err := Load("/nonexistent/astcenc.yml")
	assert.Error(t, err)
	assert.Nil(t, p)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "speed: [fast\n")
	p, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, p)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "speed: warp\n")
	p, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, p)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "unknown speed: warp")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		profile Profile
		wantErr string
	}{
		{"unsupported footprint", Profile{Footprint: "7x7"}, "unsupported footprint: 7x7"},
		{"negative workers", Profile{Workers: -1}, "workers must be >= 0"},
		{"bad container", Profile{Container: "dds"}, "invalid container: dds"},
		{"bad compress", Profile{Compress: "gzip"}, "invalid compress: gzip"},
		{"mips below full", Profile{Container: ContainerKTX, Mips: -2}, "mips must be >= 1"},
		{"mips without ktx", Profile{Mips: 4}, "mip chains need the ktx container"},
		{"negative radius", Profile{Weighting: &WeightingConfig{Radius: -1}}, "weighting radii must be >= 0"},
		{"ktx mip chain", Profile{Container: ContainerKTX, Mips: 4}, ""},
		{"3d footprint", Profile{Footprint: "4x4x4"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.profile
			err := p.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
