package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/am-sokolov/go-astc-pipeline/astc"
)

// Container names.
const (
	ContainerASTC = "astc"
	ContainerKTX  = "ktx"
)

// Output compression names.
const (
	CompressNone = "none"
	CompressZstd = "zstd"
)

// MipsFull requests a mip chain down to 1x1.
const MipsFull = -1

// Profile is an encode profile loaded from YAML.
type Profile struct {
	Speed     string           `yaml:"speed"`
	Footprint string           `yaml:"footprint"`
	Workers   int              `yaml:"workers,omitempty"`
	Quiet     bool             `yaml:"quiet,omitempty"`
	Container string           `yaml:"container"`
	Compress  string           `yaml:"compress"`
	Mips      int              `yaml:"mips"`
	LDR       bool             `yaml:"ldr,omitempty"`
	Weighting *WeightingConfig `yaml:"weighting,omitempty"`
}

// WeightingConfig overrides the perceptual weighting radii.
type WeightingConfig struct {
	Radius      int `yaml:"radius"`
	AlphaRadius int `yaml:"alpha_radius"`
}

// Default returns a profile with every default applied.
func Default() *Profile {
	p := &Profile{}
	if err := p.Validate(); err != nil {
		panic(err)
	}
	return p
}

// Load reads and validates a profile.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML")
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &p, nil
}

// Validate applies defaults and checks every field.
func (p *Profile) Validate() error {
	if p.Speed == "" {
		p.Speed = astc.SpeedMedium.String()
	}
	if _, err := astc.ParseSpeedTier(p.Speed); err != nil {
		return errors.Errorf("unknown speed: %s", p.Speed)
	}

	if p.Footprint == "" {
		p.Footprint = "4x4"
	}
	if _, err := astc.ParseFootprint(p.Footprint); err != nil {
		return errors.Errorf("unsupported footprint: %s", p.Footprint)
	}

	if p.Workers < 0 {
		return errors.Errorf("workers must be >= 0 (0 = one per CPU), got %d", p.Workers)
	}

	switch p.Container {
	case "":
		p.Container = ContainerASTC
	case ContainerASTC, ContainerKTX:
	default:
		return errors.Errorf("invalid container: %s (must be 'astc' or 'ktx')", p.Container)
	}

	switch p.Compress {
	case "":
		p.Compress = CompressNone
	case CompressNone, CompressZstd:
	default:
		return errors.Errorf("invalid compress: %s (must be 'none' or 'zstd')", p.Compress)
	}

	if p.Mips == 0 {
		p.Mips = 1
	}
	if p.Mips < MipsFull {
		return errors.Errorf("mips must be >= 1 or -1 for a full chain, got %d", p.Mips)
	}
	if p.Mips != 1 && p.Container != ContainerKTX {
		return errors.New("mip chains need the ktx container")
	}

	if w := p.Weighting; w != nil && (w.Radius < 0 || w.AlphaRadius < 0) {
		return errors.New("weighting radii must be >= 0")
	}
	return nil
}

// SpeedTier returns the parsed speed. Validate must have succeeded.
func (p *Profile) SpeedTier() astc.SpeedTier {
	t, _ := astc.ParseSpeedTier(p.Speed)
	return t
}

// BlockFootprint returns the parsed footprint. Validate must have succeeded.
func (p *Profile) BlockFootprint() astc.Footprint {
	fp, _ := astc.ParseFootprint(p.Footprint)
	return fp
}

// WeightingFor returns the weighting for kind with the profile radii applied,
// or nil when the profile leaves weighting at its defaults.
func (p *Profile) WeightingFor(kind astc.ElementKind) *astc.Weighting {
	if p.Weighting == nil {
		return nil
	}
	w := astc.DefaultWeighting(kind)
	w.Radius = p.Weighting.Radius
	w.AlphaRadius = p.Weighting.AlphaRadius
	return &w
}
