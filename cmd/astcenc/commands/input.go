package commands

import (
	"bytes"
	"image"
	"os"
	"strconv"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/am-sokolov/go-astc-pipeline/astc"
)

// rawInput describes headerless pixel input.
type rawInput struct {
	size     string
	layout   string
	encoding string
}

func (r *rawInput) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.size, "raw", "", "treat input as raw pixels of size WxH or WxHxD")
	cmd.Flags().StringVar(&r.layout, "layout", "rgba", "raw channel layout: r|rg|rgb|bgr|rgba|bgra|l|la|rgbx|bgrx")
	cmd.Flags().StringVar(&r.encoding, "encoding", "u8", "raw element encoding: u8|u16|f16|f32")
}

// source is a loaded input image and the format it was normalized from, so
// that the encoder weights only the channels the data carries.
type source struct {
	img    *astc.Image
	format astc.Format
}

// ldr reports whether the source is UNORM data that must not get HDR
// endpoint modes.
func (s *source) ldr() bool { return s.format.Encoding == astc.EncodingU16 }

func loadSource(path string, raw rawInput) (*source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	if raw.size == "" {
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s", path)
		}
		return &source{img: astc.FromImage(decoded), format: astc.ImageFormat(decoded)}, nil
	}

	dims, err := parseDims(raw.size)
	if err != nil {
		return nil, err
	}
	layout, err := astc.ParseLayout(raw.layout)
	if err != nil {
		return nil, err
	}
	encoding, err := astc.ParseEncoding(raw.encoding)
	if err != nil {
		return nil, err
	}
	f := astc.Format{Layout: layout, Encoding: encoding}

	need := dims[0] * dims[1] * dims[2] * f.BytesPerPixel()
	if len(data) < need {
		return nil, errors.Errorf("%s holds %d bytes, %s %s at %s needs %d", path, len(data), raw.layout, raw.encoding, raw.size, need)
	}
	return &source{
		img:    astc.NormalizeImage(data, dims[0], dims[1], dims[2], f),
		format: f,
	}, nil
}

// parseDims parses "WxH" or "WxHxD".
func parseDims(s string) ([3]int, error) {
	dims := [3]int{0, 0, 1}
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 && len(parts) != 3 {
		return dims, errors.Errorf("invalid raw size %q (want WxH or WxHxD)", s)
	}
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v <= 0 {
			return dims, errors.Errorf("invalid raw size %q (want WxH or WxHxD)", s)
		}
		dims[i] = v
	}
	return dims, nil
}
