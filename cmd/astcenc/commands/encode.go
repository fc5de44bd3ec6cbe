package commands

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/disintegration/gift"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/am-sokolov/go-astc-pipeline/astc"
	"github.com/am-sokolov/go-astc-pipeline/astc/ktx"
	"github.com/am-sokolov/go-astc-pipeline/internal/config"
	"github.com/am-sokolov/go-astc-pipeline/internal/printer"
)

type encodeFlags struct {
	configPath  string
	speed       string
	footprint   string
	workers     int
	quiet       bool
	container   string
	compress    string
	mips        int
	radius      int
	alphaRadius int
	ldr         bool
	report      string
	raw         rawInput
}

func newEncodeCmd() *cobra.Command {
	var fl encodeFlags
	cmd := &cobra.Command{
		Use:   "encode INPUT OUTPUT",
		Short: "Compress an image into ASTC blocks",
		Long: `Compress a PNG, JPEG or raw pixel file into ASTC blocks.

Settings come from an optional YAML profile (--config); flags that are set
explicitly override the profile.

Examples:
  # 6x6 blocks at the thorough speed
  astcenc encode albedo.png albedo.astc --footprint 6x6 --speed thorough

  # Half-float raw input
  astcenc encode light.bin light.astc --raw 512x512 --layout rgba --encoding f16

  # KTX with a full mip chain, zstd-wrapped, plus a YAML report
  astcenc encode ui.png ui.ktx.zst --container ktx --mips 0 --compress zstd --report ui.yml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, &fl, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.StringVar(&fl.configPath, "config", "", "YAML encode profile")
	f.StringVarP(&fl.speed, "speed", "s", "medium", "speed tier: veryfast|fast|medium|thorough|exhaustive")
	f.StringVarP(&fl.footprint, "footprint", "b", "4x4", "block footprint, e.g. 6x6 or 4x4x4")
	f.IntVarP(&fl.workers, "workers", "j", 0, "compression workers (0 = one per CPU)")
	f.BoolVarP(&fl.quiet, "quiet", "q", false, "suppress progress output")
	f.StringVar(&fl.container, "container", config.ContainerASTC, "output container: astc|ktx")
	f.StringVar(&fl.compress, "compress", config.CompressNone, "output compression: none|zstd")
	f.IntVar(&fl.mips, "mips", 1, "mip levels for ktx output (0 = full chain)")
	f.IntVar(&fl.radius, "radius", 0, "perceptual weighting radius in texels")
	f.IntVar(&fl.alphaRadius, "alpha-radius", 0, "alpha weighting radius in texels")
	f.BoolVar(&fl.ldr, "ldr", false, "clamp half-float input to [0,1] and use LDR endpoint modes")
	f.StringVar(&fl.report, "report", "", "write a YAML encode report to this path")
	fl.raw.register(cmd)
	return cmd
}

// resolveProfile merges the YAML profile with explicitly set flags.
func resolveProfile(cmd *cobra.Command, fl *encodeFlags) (*config.Profile, error) {
	p := &config.Profile{}
	if fl.configPath != "" {
		loaded, err := config.Load(fl.configPath)
		if err != nil {
			return nil, err
		}
		p = loaded
	}

	f := cmd.Flags()
	if f.Changed("speed") || p.Speed == "" {
		p.Speed = fl.speed
	}
	if f.Changed("footprint") || p.Footprint == "" {
		p.Footprint = fl.footprint
	}
	if f.Changed("workers") {
		p.Workers = fl.workers
	}
	if f.Changed("quiet") {
		p.Quiet = fl.quiet
	}
	if f.Changed("container") || p.Container == "" {
		p.Container = fl.container
	}
	if f.Changed("compress") || p.Compress == "" {
		p.Compress = fl.compress
	}
	if f.Changed("mips") {
		p.Mips = fl.mips
		if p.Mips == 0 {
			p.Mips = config.MipsFull
		}
	}
	if f.Changed("ldr") {
		p.LDR = fl.ldr
	}
	if f.Changed("radius") || f.Changed("alpha-radius") {
		if p.Weighting == nil {
			p.Weighting = &config.WeightingConfig{}
		}
		if f.Changed("radius") {
			p.Weighting.Radius = fl.radius
		}
		if f.Changed("alpha-radius") {
			p.Weighting.AlphaRadius = fl.alphaRadius
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Report is the YAML summary written by --report.
type Report struct {
	JobID       string        `yaml:"job_id"`
	Input       string        `yaml:"input"`
	Output      string        `yaml:"output"`
	Width       int           `yaml:"width"`
	Height      int           `yaml:"height"`
	Depth       int           `yaml:"depth"`
	Footprint   string        `yaml:"footprint"`
	Speed       string        `yaml:"speed"`
	Workers     int           `yaml:"workers"`
	Container   string        `yaml:"container"`
	Compress    string        `yaml:"compress"`
	Levels      int           `yaml:"levels"`
	Blocks      int           `yaml:"blocks"`
	BlockBytes  int           `yaml:"block_bytes"`
	OutputBytes int           `yaml:"output_bytes"`
	BitsPerTex  float64       `yaml:"bits_per_texel"`
	Duration    time.Duration `yaml:"duration"`
}

func runEncode(cmd *cobra.Command, fl *encodeFlags, inPath, outPath string) error {
	p, err := resolveProfile(cmd, fl)
	if err != nil {
		return printer.Error("invalid encode settings", err.Error(),
			[]string{"Run 'astcenc encode --help' for the accepted values"})
	}

	src, err := loadSource(inPath, fl.raw)
	if err != nil {
		return printer.Error("failed to load input", err.Error(), nil)
	}

	fp := p.BlockFootprint()
	if p.Container == config.ContainerKTX && (fp.Is3D() || src.img.DimZ > 1) {
		return printer.Error("ktx output needs a 2D image",
			fmt.Sprintf("footprint %s with image depth %d cannot be stored in KTX", fp, src.img.DimZ),
			[]string{"Use --container astc for volume textures"})
	}

	opts := astc.Options{
		Workers:          p.Workers,
		Progress:         cmd.OutOrStdout(),
		SuppressProgress: p.Quiet,
		Weighting:        p.WeightingFor(src.img.Kind),
		LDR:              p.LDR || src.ldr(),
	}
	if !p.Quiet {
		printer.Step("Encoding %s (%dx%dx%d) with %s blocks at %s speed\n",
			inPath, src.img.DimX, src.img.DimY, src.img.DimZ, fp, p.Speed)
	}

	start := time.Now()
	levels, err := encodeLevels(src, p, fp, opts)
	if err != nil {
		return printer.Error("encode failed", err.Error(), nil)
	}
	if !p.Quiet {
		fmt.Fprintln(cmd.OutOrStdout())
	}

	var payload bytes.Buffer
	if err := writeContainer(&payload, p.Container, levels); err != nil {
		return printer.Error("failed to build container", err.Error(), nil)
	}
	n, err := writeOutput(outPath, payload.Bytes(), p.Compress)
	if err != nil {
		return printer.Error("failed to write output", err.Error(), nil)
	}
	elapsed := time.Since(start)

	base := levels[0]
	if fl.report != "" {
		workers := p.Workers
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
		texels := base.DimX * base.DimY * base.DimZ
		r := Report{
			JobID:       uuid.New().String(),
			Input:       inPath,
			Output:      outPath,
			Width:       base.DimX,
			Height:      base.DimY,
			Depth:       base.DimZ,
			Footprint:   fp.String(),
			Speed:       p.Speed,
			Workers:     workers,
			Container:   p.Container,
			Compress:    p.Compress,
			Levels:      len(levels),
			Blocks:      base.Grid.Total(),
			BlockBytes:  base.Len(),
			OutputBytes: n,
			BitsPerTex:  float64(base.Len()*8) / float64(texels),
			Duration:    elapsed,
		}
		if err := writeReport(fl.report, &r); err != nil {
			return printer.Error("failed to write report", err.Error(), nil)
		}
	}

	if !p.Quiet {
		printer.Success("Wrote %s (%d bytes, %d level(s)) in %s\n", outPath, n, len(levels), elapsed.Round(time.Millisecond))
	}
	return nil
}

// encodeLevels compresses the source and, for mip chains, each box-filtered
// half-size level after it.
func encodeLevels(src *source, p *config.Profile, fp astc.Footprint, opts astc.Options) ([]*astc.Result, error) {
	tier := p.SpeedTier()

	first, err := astc.EncodeFormatImage(src.img, src.format, tier, fp, opts)
	if err != nil {
		return nil, err
	}
	levels := []*astc.Result{first}

	want := p.Mips
	if want == config.MipsFull {
		want = mipCount(src.img.DimX, src.img.DimY)
	}
	prev := src.img
	for len(levels) < want {
		next := nextMip(prev)
		r, err := astc.EncodeFormatImage(next, src.format, tier, fp, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "mip level %d", len(levels))
		}
		levels = append(levels, r)
		prev = next
	}
	return levels, nil
}

// nextMip halves a 2D image with a box filter. Half-float levels are
// filtered in float so that HDR values survive.
func nextMip(img *astc.Image) *astc.Image {
	if img.Kind == astc.KindF16 {
		return img.HalfSize()
	}
	prev := img.Slice(0)
	b := prev.Bounds()
	g := gift.New(gift.Resize(max(b.Dx()/2, 1), max(b.Dy()/2, 1), gift.BoxResampling))
	next := image.NewNRGBA(g.Bounds(b))
	g.Draw(next, prev)
	return astc.FromImage(next)
}

// mipCount returns the length of a full mip chain down to 1x1.
func mipCount(w, h int) int {
	n := 1
	for w > 1 || h > 1 {
		w, h = max(w/2, 1), max(h/2, 1)
		n++
	}
	return n
}

func writeContainer(w io.Writer, container string, levels []*astc.Result) error {
	if container == config.ContainerASTC {
		return astc.WriteFile(w, levels[0].Header(), levels[0].Data)
	}

	base := levels[0]
	h, err := ktx.NewHeader(base.Footprint, base.DimX, base.DimY, 1, len(levels))
	if err != nil {
		return err
	}
	data := make([][][]byte, len(levels))
	for i, r := range levels {
		data[i] = [][]byte{r.Data}
	}
	return ktx.Write(w, h, data)
}

// writeOutput writes payload to path, zstd-compressed when asked, and
// returns the number of bytes written.
func writeOutput(path string, payload []byte, compress string) (int, error) {
	out := payload
	if compress == config.CompressZstd {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(runtime.NumCPU()))
		if err != nil {
			return 0, errors.Wrap(err, "failed to create zstd encoder")
		}
		out = enc.EncodeAll(payload, nil)
		if err := enc.Close(); err != nil {
			return 0, errors.Wrap(err, "failed to close zstd encoder")
		}
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return 0, errors.Wrapf(err, "failed to write %s", path)
	}
	return len(out), nil
}

func writeReport(path string, r *Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "failed to encode report")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "failed to write %s", path)
}
