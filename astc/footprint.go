package astc

import (
	"fmt"
	"strconv"
	"strings"
)

// Footprint is the texel size of one compressed block.
type Footprint struct {
	X, Y, Z int
}

func (fp Footprint) String() string {
	if fp.Z <= 1 {
		return fmt.Sprintf("%dx%d", fp.X, fp.Y)
	}
	return fmt.Sprintf("%dx%dx%d", fp.X, fp.Y, fp.Z)
}

// Texels returns the number of texels in one block.
func (fp Footprint) Texels() int { return fp.X * fp.Y * fp.Z }

// Is3D reports whether fp is a volumetric footprint.
func (fp Footprint) Is3D() bool { return fp.Z > 1 }

// ParseFootprint parses "NxM" or "NxMxK".
func ParseFootprint(s string) (Footprint, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 && len(parts) != 3 {
		return Footprint{}, newError(ErrBadBlockSize, fmt.Sprintf("astc: invalid footprint %q", s))
	}

	var dims [3]int
	dims[2] = 1
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v <= 0 {
			return Footprint{}, newError(ErrBadBlockSize, fmt.Sprintf("astc: invalid footprint %q", s))
		}
		dims[i] = v
	}

	fp := Footprint{X: dims[0], Y: dims[1], Z: dims[2]}
	if err := fp.Validate(); err != nil {
		return Footprint{}, err
	}
	return fp, nil
}

var legal2D = map[[2]int]bool{
	{4, 4}: true, {5, 4}: true, {5, 5}: true, {6, 5}: true,
	{6, 6}: true, {8, 5}: true, {8, 6}: true, {8, 8}: true,
	{10, 5}: true, {10, 6}: true, {10, 8}: true, {10, 10}: true,
	{12, 10}: true, {12, 12}: true,
}

var legal3D = map[[3]int]bool{
	{3, 3, 3}: true, {4, 3, 3}: true, {4, 4, 3}: true, {4, 4, 4}: true,
	{5, 4, 4}: true, {5, 5, 4}: true, {5, 5, 5}: true, {6, 5, 5}: true,
	{6, 6, 5}: true, {6, 6, 6}: true,
}

// Validate reports whether fp is a legal ASTC block size.
func (fp Footprint) Validate() error {
	var ok bool
	if fp.Z == 1 {
		ok = legal2D[[2]int{fp.X, fp.Y}]
	} else {
		ok = legal3D[[3]int{fp.X, fp.Y, fp.Z}]
	}
	if !ok {
		return newError(ErrBadBlockSize, fmt.Sprintf("astc: unsupported footprint %s", fp))
	}
	return nil
}

// BlockGrid is the number of blocks along each axis of an image.
type BlockGrid struct {
	X, Y, Z int
}

// Total returns the number of blocks in the grid.
func (g BlockGrid) Total() int { return g.X * g.Y * g.Z }

// Blocks returns the covering block grid for an image of the given size.
func (fp Footprint) Blocks(dimX, dimY, dimZ int) BlockGrid {
	return BlockGrid{
		X: (dimX + fp.X - 1) / fp.X,
		Y: (dimY + fp.Y - 1) / fp.Y,
		Z: (dimZ + fp.Z - 1) / fp.Z,
	}
}
