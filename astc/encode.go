package astc

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
)

// Options configures one encode run. The zero value is usable.
type Options struct {
	// Workers is the number of compression goroutines. Zero selects
	// runtime.NumCPU().
	Workers int

	// Progress receives "\r<blocks>" updates. Nil selects os.Stdout.
	Progress io.Writer

	// SuppressProgress disables progress and diagnostic output.
	SuppressProgress bool

	// Codec overrides the block codec. Nil selects DefaultCodec().
	Codec BlockCodec

	// Weighting overrides the element-kind weighting defaults.
	Weighting *Weighting

	// Logger receives diagnostics. Nil selects log.Default().
	Logger *log.Logger

	// LDR clamps half-float input to [0,1] and encodes it with LDR endpoint
	// modes. By default half-float input is encoded as HDR.
	LDR bool
}

func (o *Options) workers() int {
	n := o.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return max(n, 1)
}

func (o *Options) progressWriter() io.Writer {
	if o.Progress != nil {
		return o.Progress
	}
	return os.Stdout
}

func (o *Options) codec() BlockCodec {
	if o.Codec != nil {
		return o.Codec
	}
	return DefaultCodec()
}

func (o *Options) logf(format string, args ...any) {
	if o.SuppressProgress {
		return
	}
	l := o.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}

// Result owns the compressed blocks of one encode.
type Result struct {
	Data      []byte
	Footprint Footprint
	Grid      BlockGrid
	DimX      int
	DimY      int
	DimZ      int
}

// Len returns the size of Data in bytes.
func (r *Result) Len() int { return len(r.Data) }

// Header returns the .astc container header describing r.
func (r *Result) Header() Header {
	return Header{
		BlockX: uint8(r.Footprint.X),
		BlockY: uint8(r.Footprint.Y),
		BlockZ: uint8(r.Footprint.Z),
		SizeX:  uint32(r.DimX),
		SizeY:  uint32(r.DimY),
		SizeZ:  uint32(r.DimZ),
	}
}

// Encode compresses a width x height image of format f. The output holds
// 16 bytes per block in z, y, x order with no header.
//
// Unsupported formats, tiers and footprints panic.
func Encode(pixels []byte, width, height int, f Format, tier SpeedTier, fp Footprint, opts Options) (*Result, error) {
	mustValidate(fp)
	return EncodeFormatImage(NormalizeImage(pixels, width, height, 1, f), f, tier, fp, opts)
}

// EncodeFormatImage compresses an image already normalized from format f.
// Only the channels f carries are weighted, and UNORM16 sources always use
// LDR endpoint modes.
func EncodeFormatImage(img *Image, f Format, tier SpeedTier, fp Footprint, opts Options) (*Result, error) {
	mustValidate(fp)
	if f.Encoding == EncodingU16 {
		opts.LDR = true
	}
	return encodeImage(img, f.componentWeights(), tier, fp, opts)
}

// EncodeImage compresses an image that is already in canonical form. Every
// channel is weighted.
func EncodeImage(img *Image, tier SpeedTier, fp Footprint, opts Options) (*Result, error) {
	mustValidate(fp)
	return encodeImage(img, [4]float32{1, 1, 1, 1}, tier, fp, opts)
}

// RoundTrip compresses img and decodes every block straight back, returning
// an image of the same size and kind.
func RoundTrip(img *Image, tier SpeedTier, fp Footprint, opts Options) (*Image, error) {
	mustValidate(fp)
	p := resolveParams(img, [4]float32{1, 1, 1, 1}, tier, fp, &opts)
	p.RoundTrip = true

	preview, err := allocImage(img.DimX, img.DimY, img.DimZ, img.Kind)
	if err != nil {
		return nil, err
	}
	runJob(img, fp, &p, &opts, nil, preview)
	return preview, nil
}

func encodeImage(img *Image, cw [4]float32, tier SpeedTier, fp Footprint, opts Options) (*Result, error) {
	p := resolveParams(img, cw, tier, fp, &opts)

	grid := fp.Blocks(img.DimX, img.DimY, img.DimZ)
	out, err := allocBytes(grid.Total() * BlockBytes)
	if err != nil {
		return nil, err
	}
	runJob(img, fp, &p, &opts, out, nil)

	return &Result{
		Data:      out,
		Footprint: fp,
		Grid:      grid,
		DimX:      img.DimX,
		DimY:      img.DimY,
		DimZ:      img.DimZ,
	}, nil
}

func resolveParams(img *Image, cw [4]float32, tier SpeedTier, fp Footprint, opts *Options) Params {
	p := ResolveSpeed(tier, fp)
	p.ComponentWeights = cw
	p.SuppressProgress = opts.SuppressProgress
	p.HDR = img.Kind == KindF16 && !opts.LDR
	p.Weighting = DefaultWeighting(img.Kind)
	if opts.Weighting != nil {
		p.Weighting = *opts.Weighting
	}
	return p
}

func runJob(img *Image, fp Footprint, p *Params, opts *Options, out []byte, preview *Image) {
	var st *statistics
	if p.Weighting.enabled() {
		st = computeStatistics(img, p.Weighting)
	}

	workers := opts.workers()
	job := &tileJob{
		img:      img,
		stats:    st,
		fp:       fp,
		grid:     fp.Blocks(img.DimX, img.DimY, img.DimZ),
		p:        p,
		codec:    opts.codec(),
		out:      out,
		preview:  preview,
		progress: newProgress(workers, opts.progressWriter(), p.ProgressDivisor, p.SuppressProgress),
	}

	opts.logf("[Encoder] %d blocks to process ..", job.grid.Total())
	job.run(workers)
}

func mustValidate(fp Footprint) {
	if err := fp.Validate(); err != nil {
		contractViolation("unsupported footprint %s", fp)
	}
}

// componentWeights weights the RGBA channels a source format actually
// carries. Filled channels keep a small floor weight.
func (f Format) componentWeights() [4]float32 {
	ls := f.Layout.desc()
	var w [4]float32
	var hi float32
	for c, s := range ls.src {
		if s >= 0 {
			w[c] = 1
			hi = 1
		}
	}
	for c := range w {
		w[c] = max(w[c], hi/1000)
	}
	return w
}

// allocBytes turns an impossible allocation into ErrOutOfMem.
func allocBytes(n int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, newError(ErrOutOfMem, fmt.Sprintf("astc: cannot allocate %d bytes: %v", n, r))
		}
	}()
	if n < 0 {
		return nil, newError(ErrOutOfMem, fmt.Sprintf("astc: cannot allocate %d bytes", n))
	}
	return make([]byte, n), nil
}

func allocImage(dimX, dimY, dimZ int, kind ElementKind) (img *Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, newError(ErrOutOfMem, fmt.Sprintf("astc: cannot allocate %dx%dx%d image: %v", dimX, dimY, dimZ, r))
		}
	}()
	return NewImage(dimX, dimY, dimZ, kind), nil
}
