package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionString = "dev"

// NewRootCmd builds the astcenc command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "astcenc",
		Short: "astcenc - tiled parallel ASTC texture compressor",
		Long: `astcenc compresses images into ASTC blocks using every CPU core.

Images are split into footprint-sized blocks that are compressed
independently and written as a raw .astc file or a KTX 1.1 texture,
optionally wrapped in zstd.`,
		Version: versionString,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		FParseErrWhitelist: cobra.FParseErrWhitelist{},
		SilenceErrors:      true,
		SilenceUsage:       true,
	}

	root.AddCommand(newEncodeCmd(), newDecodeCmd(), newPreviewCmd(), newInfoCmd(), newBenchCmd())
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// SetVersionInfo sets the string printed by --version.
func SetVersionInfo(v, c, d string) {
	versionString = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}
