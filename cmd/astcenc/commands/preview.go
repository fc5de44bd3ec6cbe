package commands

import (
	"image/png"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/am-sokolov/go-astc-pipeline/astc"
	"github.com/am-sokolov/go-astc-pipeline/internal/printer"
)

type previewFlags struct {
	speed     string
	footprint string
	workers   int
	quiet     bool
	ldr       bool
	raw       rawInput
}

func newPreviewCmd() *cobra.Command {
	var fl previewFlags
	cmd := &cobra.Command{
		Use:   "preview INPUT OUTPUT.png",
		Short: "Compress and decompress an image to preview ASTC quality",
		Long: `Compress every block and decode it straight back, writing the result
as a PNG and reporting the PSNR against the input. No ASTC data is written.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, &fl, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&fl.speed, "speed", "s", "medium", "speed tier: veryfast|fast|medium|thorough|exhaustive")
	f.StringVarP(&fl.footprint, "footprint", "b", "4x4", "block footprint, e.g. 6x6")
	f.IntVarP(&fl.workers, "workers", "j", 0, "compression workers (0 = one per CPU)")
	f.BoolVarP(&fl.quiet, "quiet", "q", false, "suppress progress output")
	f.BoolVar(&fl.ldr, "ldr", false, "clamp half-float input to [0,1] and use LDR endpoint modes")
	fl.raw.register(cmd)
	return cmd
}

func runPreview(cmd *cobra.Command, fl *previewFlags, inPath, outPath string) error {
	tier, err := astc.ParseSpeedTier(fl.speed)
	if err != nil {
		return printer.Error("invalid speed", err.Error(), []string{"Valid speeds: veryfast, fast, medium, thorough, exhaustive"})
	}
	fp, err := astc.ParseFootprint(fl.footprint)
	if err != nil {
		return printer.Error("invalid footprint", err.Error(), []string{"Use a legal ASTC size such as 4x4, 6x6 or 8x8"})
	}

	src, err := loadSource(inPath, fl.raw)
	if err != nil {
		return printer.Error("failed to load input", err.Error(), nil)
	}

	start := time.Now()
	out, err := astc.RoundTrip(src.img, tier, fp, astc.Options{
		Workers:          fl.workers,
		Progress:         cmd.OutOrStdout(),
		SuppressProgress: fl.quiet,
		LDR:              fl.ldr || src.ldr(),
	})
	if err != nil {
		return printer.Error("preview failed", err.Error(), nil)
	}
	elapsed := time.Since(start)

	if err := writePNG(outPath, out); err != nil {
		return printer.Error("failed to write preview", err.Error(), nil)
	}
	if !fl.quiet {
		printer.Info("\n")
		printer.Success("Wrote %s in %s, PSNR %.2f dB\n", outPath, elapsed.Round(time.Millisecond), psnr(src.img, out))
	}
	return nil
}

func writePNG(path string, img *astc.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := png.Encode(f, img.Slice(0)); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to encode %s", path)
	}
	return errors.Wrapf(f.Close(), "failed to close %s", path)
}

// psnr compares the first slices of a and b on the 8-bit scale over all four
// channels. Identical images report +Inf.
func psnr(a, b *astc.Image) float64 {
	pa, pb := a.Slice(0).Pix, b.Slice(0).Pix
	var sum float64
	for i := range pa {
		d := float64(pa[i]) - float64(pb[i])
		sum += d * d
	}
	if sum == 0 {
		return math.Inf(1)
	}
	mse := sum / float64(len(pa))
	return 10 * math.Log10(255*255/mse)
}
