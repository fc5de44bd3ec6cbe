package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/am-sokolov/go-astc-pipeline/astc"
	"github.com/am-sokolov/go-astc-pipeline/internal/printer"
)

func newDecodeCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "decode INPUT OUTPUT.png",
		Short: "Decode an .astc or KTX file to PNG",
		Long: `Decode the base level of an .astc or KTX file, optionally zstd-compressed,
and write its first slice as a PNG.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return printer.Error("failed to read input", err.Error(), nil)
			}
			t, err := openTexture(data)
			if err != nil {
				return printer.Error("unrecognised file", err.Error(), nil)
			}
			img, err := astc.DecodeImage(t.blocks, t.fp, t.dims[0], t.dims[1], t.dims[2], astc.KindU8)
			if err != nil {
				return printer.Error("decode failed", err.Error(), nil)
			}
			if err := writePNG(args[1], img); err != nil {
				return printer.Error("failed to write output", err.Error(), nil)
			}
			if !quiet {
				printer.Success("Wrote %s (%dx%d)\n", args[1], t.dims[0], t.dims[1])
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")
	return cmd
}
