package commands

import (
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/am-sokolov/go-astc-pipeline/astc"
	"github.com/am-sokolov/go-astc-pipeline/internal/printer"
)

type benchFlags struct {
	size       string
	footprint  string
	speed      string
	workers    int
	iters      int
	decode     bool
	cpuprofile string
}

func newBenchCmd() *cobra.Command {
	var fl benchFlags
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure encode or decode throughput on a synthetic image",
		Long: `Encode (or decode) a deterministic RGBA8 test pattern repeatedly and print
one RESULT line with throughput and an FNV-1a checksum of the output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.OutOrStdout(), &fl)
		},
	}

	f := cmd.Flags()
	f.StringVar(&fl.size, "size", "256x256", "image size WxH or WxHxD")
	f.StringVarP(&fl.footprint, "footprint", "b", "4x4", "block footprint")
	f.StringVarP(&fl.speed, "speed", "s", "fast", "speed tier")
	f.IntVarP(&fl.workers, "workers", "j", 0, "compression workers (0 = one per CPU)")
	f.IntVar(&fl.iters, "iters", 3, "iterations")
	f.BoolVar(&fl.decode, "decode", false, "benchmark decoding instead of encoding")
	f.StringVar(&fl.cpuprofile, "cpuprofile", "", "write a CPU profile to this path")
	return cmd
}

func runBench(w io.Writer, fl *benchFlags) error {
	dims, err := parseDims(fl.size)
	if err != nil {
		return printer.Error("invalid size", err.Error(), nil)
	}
	fp, err := astc.ParseFootprint(fl.footprint)
	if err != nil {
		return printer.Error("invalid footprint", err.Error(), nil)
	}
	tier, err := astc.ParseSpeedTier(fl.speed)
	if err != nil {
		return printer.Error("invalid speed", err.Error(), nil)
	}
	if fl.iters <= 0 {
		return printer.Error("invalid iterations", "--iters must be > 0", nil)
	}

	img := testPattern(dims[0], dims[1], dims[2])
	opts := astc.Options{Workers: fl.workers, SuppressProgress: true}

	var encoded *astc.Result
	if fl.decode {
		if encoded, err = astc.EncodeImage(img, tier, fp, opts); err != nil {
			return printer.Error("encode failed", err.Error(), nil)
		}
	}

	if fl.cpuprofile != "" {
		stop, err := startProfile(fl.cpuprofile)
		if err != nil {
			return printer.Error("failed to start CPU profile", err.Error(), nil)
		}
		defer stop()
	}

	h := fnv.New64a()
	start := time.Now()
	for i := 0; i < fl.iters; i++ {
		h.Reset()
		if fl.decode {
			out, err := astc.DecodeImage(encoded.Data, fp, img.DimX, img.DimY, img.DimZ, astc.KindU8)
			if err != nil {
				return printer.Error("decode failed", err.Error(), nil)
			}
			h.Write(out.DataU8)
			continue
		}
		r, err := astc.EncodeImage(img, tier, fp, opts)
		if err != nil {
			return printer.Error("encode failed", err.Error(), nil)
		}
		h.Write(r.Data)
	}
	dur := time.Since(start)

	mode := "encode"
	if fl.decode {
		mode = "decode"
	}
	texels := float64(dims[0]*dims[1]*dims[2]) * float64(fl.iters)
	fmt.Fprintf(w, "RESULT mode=%s speed=%s block=%s size=%dx%dx%d iters=%d seconds=%.6f mpix/s=%.3f checksum=%016x\n",
		mode, tier, fp, dims[0], dims[1], dims[2], fl.iters,
		dur.Seconds(), texels/dur.Seconds()/1e6, h.Sum64())
	return nil
}

func startProfile(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", path)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to start profiling")
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

// testPattern builds a deterministic RGBA8 image with gradients, XOR texture
// and varying alpha.
func testPattern(width, height, depth int) *astc.Image {
	img := astc.NewImage(width, height, depth, astc.KindU8)
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				off := ((z*height+y)*width + x) * 4
				img.DataU8[off+0] = uint8(x*3 + y*5 + z*7)
				img.DataU8[off+1] = uint8(x*11 + y*13 + z*17)
				img.DataU8[off+2] = uint8(x ^ y ^ z)
				img.DataU8[off+3] = 255 - uint8((x*5+y*7+z*3)&0xFF)
			}
		}
	}
	return img
}
