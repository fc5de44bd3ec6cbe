package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/am-sokolov/go-astc-pipeline/astc"
	"github.com/am-sokolov/go-astc-pipeline/astc/ktx"
	"github.com/am-sokolov/go-astc-pipeline/internal/printer"
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

type infoFlags struct {
	blocks int
	yaml   bool
}

// FileInfo is the summary printed by the info command.
type FileInfo struct {
	Container string           `yaml:"container"`
	Zstd      bool             `yaml:"zstd"`
	Footprint string           `yaml:"footprint"`
	Width     int              `yaml:"width"`
	Height    int              `yaml:"height"`
	Depth     int              `yaml:"depth"`
	Levels    int              `yaml:"levels"`
	Faces     int              `yaml:"faces"`
	Blocks    int              `yaml:"blocks"`
	Inspected []astc.BlockInfo `yaml:"inspected,omitempty"`
}

func newInfoCmd() *cobra.Command {
	var fl infoFlags
	cmd := &cobra.Command{
		Use:   "info FILE",
		Short: "Describe an .astc or .ktx file",
		Long: `Print the header of an .astc or KTX file, optionally zstd-compressed,
and decode the leading blocks of the base level.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.OutOrStdout(), &fl, args[0])
		},
	}
	cmd.Flags().IntVarP(&fl.blocks, "blocks", "n", 0, "inspect the first N blocks")
	cmd.Flags().BoolVar(&fl.yaml, "yaml", false, "print YAML instead of text")
	return cmd
}

func runInfo(w io.Writer, fl *infoFlags, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return printer.Error("failed to read input", err.Error(), nil)
	}
	fi, err := describe(data, fl.blocks)
	if err != nil {
		return printer.Error("unrecognised file", err.Error(),
			[]string{"Pass a file written by 'astcenc encode'"})
	}

	if fl.yaml {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(fi); err != nil {
			return printer.Error("failed to encode YAML", err.Error(), nil)
		}
		return enc.Close()
	}

	fmt.Fprintf(w, "container: %s", fi.Container)
	if fi.Zstd {
		fmt.Fprint(w, " (zstd)")
	}
	fmt.Fprintf(w, "\nfootprint: %s\nsize:      %dx%dx%d\nlevels:    %d\nfaces:     %d\nblocks:    %d\n",
		fi.Footprint, fi.Width, fi.Height, fi.Depth, fi.Levels, fi.Faces, fi.Blocks)
	for i, bi := range fi.Inspected {
		fmt.Fprintf(w, "block %d: %s\n", i, bi)
	}
	return nil
}

// texture is a parsed container with its base level blocks.
type texture struct {
	container string
	zstd      bool
	fp        astc.Footprint
	dims      [3]int
	levels    int
	faces     int
	blocks    []byte
}

// openTexture parses an .astc or KTX file, unwrapping zstd first.
func openTexture(data []byte) (*texture, error) {
	t := &texture{}
	if bytes.HasPrefix(data, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create zstd decoder")
		}
		defer dec.Close()
		data, err = dec.DecodeAll(data, nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decompress zstd payload")
		}
		t.zstd = true
	}

	if bytes.HasPrefix(data, ktx.Identifier[:]) {
		h, levels, err := ktx.Read(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if t.fp, err = h.Footprint(); err != nil {
			return nil, err
		}
		t.container = "ktx"
		t.dims = [3]int{int(h.PixelWidth), int(h.PixelHeight), max(int(h.PixelDepth), 1)}
		t.levels, t.faces = len(levels), int(h.NumberOfFaces)
		t.blocks = levels[0][0]
		return t, nil
	}

	h, payload, err := astc.ParseFile(data)
	if err != nil {
		return nil, err
	}
	t.fp = h.Footprint()
	t.container = "astc"
	t.dims = [3]int{int(h.SizeX), int(h.SizeY), int(h.SizeZ)}
	t.levels, t.faces = 1, 1
	t.blocks = payload
	return t, nil
}

func describe(data []byte, inspect int) (*FileInfo, error) {
	t, err := openTexture(data)
	if err != nil {
		return nil, err
	}
	fi := &FileInfo{
		Container: t.container,
		Zstd:      t.zstd,
		Footprint: t.fp.String(),
		Width:     t.dims[0],
		Height:    t.dims[1],
		Depth:     t.dims[2],
		Levels:    t.levels,
		Faces:     t.faces,
		Blocks:    t.fp.Blocks(t.dims[0], t.dims[1], t.dims[2]).Total(),
	}
	for i := 0; i < inspect && (i+1)*astc.BlockBytes <= len(t.blocks); i++ {
		bi, err := astc.InspectBlock(t.blocks[i*astc.BlockBytes:], t.fp)
		if err != nil {
			return nil, err
		}
		fi.Inspected = append(fi.Inspected, bi)
	}
	return fi, nil
}
