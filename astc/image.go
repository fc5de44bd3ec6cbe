package astc

import (
	"encoding/binary"
	"image"
	"image/color"
)

// Image is a canonical RGBA image. Exactly one of DataU8 and DataF16 is
// set, selected by Kind, holding DimX*DimY*DimZ packed RGBA texels.
type Image struct {
	DimX, DimY, DimZ int
	Kind             ElementKind
	DataU8           []byte
	DataF16          []uint16
}

// NewImage allocates a zeroed image.
func NewImage(dimX, dimY, dimZ int, kind ElementKind) *Image {
	if dimX <= 0 || dimY <= 0 || dimZ <= 0 {
		contractViolation("invalid image dimensions %dx%dx%d", dimX, dimY, dimZ)
	}
	img := &Image{DimX: dimX, DimY: dimY, DimZ: dimZ, Kind: kind}
	n := dimX * dimY * dimZ * 4
	switch kind {
	case KindU8:
		img.DataU8 = make([]byte, n)
	case KindF16:
		img.DataF16 = make([]uint16, n)
	default:
		contractViolation("unsupported element kind %d", kind)
	}
	return img
}

// ImageFormat returns the source format FromImage reads src as: 16-bit
// images as UNORM16, everything else as RGBA8.
func ImageFormat(src image.Image) Format {
	switch src.(type) {
	case *image.Gray16:
		return Format{Layout: LayoutL, Encoding: EncodingU16}
	case *image.NRGBA64, *image.RGBA64:
		return Format{Layout: LayoutRGBA, Encoding: EncodingU16}
	}
	return Format{Layout: LayoutRGBA, Encoding: EncodingU8}
}

// FromImage converts a decoded Go image into a canonical image in the
// format ImageFormat reports.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	f := ImageFormat(src)
	px := make([]byte, w*h*f.BytesPerPixel())

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.At(b.Min.X+x, b.Min.Y+y)
			switch {
			case f.Layout == LayoutL:
				binary.LittleEndian.PutUint16(px[(y*w+x)*2:], color.Gray16Model.Convert(c).(color.Gray16).Y)
			case f.Encoding == EncodingU16:
				v := color.NRGBA64Model.Convert(c).(color.NRGBA64)
				o := (y*w + x) * 8
				binary.LittleEndian.PutUint16(px[o:], v.R)
				binary.LittleEndian.PutUint16(px[o+2:], v.G)
				binary.LittleEndian.PutUint16(px[o+4:], v.B)
				binary.LittleEndian.PutUint16(px[o+6:], v.A)
			default:
				v := color.NRGBAModel.Convert(c).(color.NRGBA)
				o := (y*w + x) * 4
				px[o], px[o+1], px[o+2], px[o+3] = v.R, v.G, v.B, v.A
			}
		}
	}
	return NormalizeImage(px, w, h, 1, f)
}

// HalfSize returns the next mip level of slice 0 of a half-float image: a
// 2x2 box filter computed in float32, so values above one survive. Odd
// edges fold into the last output texel.
func (img *Image) HalfSize() *Image {
	if img.Kind != KindF16 {
		contractViolation("HalfSize needs a half-float image, got %s", img.Kind)
	}
	w, h := max(img.DimX/2, 1), max(img.DimY/2, 1)
	out := NewImage(w, h, 1, KindF16)
	for y := 0; y < h; y++ {
		y0, y1 := 2*y, min(2*y+1, img.DimY-1)
		if y == h-1 {
			y1 = img.DimY - 1
		}
		for x := 0; x < w; x++ {
			x0, x1 := 2*x, min(2*x+1, img.DimX-1)
			if x == w-1 {
				x1 = img.DimX - 1
			}
			var sum [4]float32
			n := float32((y1 - y0 + 1) * (x1 - x0 + 1))
			for sy := y0; sy <= y1; sy++ {
				for sx := x0; sx <= x1; sx++ {
					i := (sy*img.DimX + sx) * 4
					for c := 0; c < 4; c++ {
						sum[c] += halfToFloat32(img.DataF16[i+c])
					}
				}
			}
			o := (y*w + x) * 4
			for c := 0; c < 4; c++ {
				out.DataF16[o+c] = float32ToHalf(sum[c] / n)
			}
		}
	}
	return out
}

// Slice returns slice z of the image as an NRGBA image. Half-float data is
// clamped to [0,1].
func (img *Image) Slice(z int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.DimX, img.DimY))
	base := z * img.DimX * img.DimY * 4
	n := img.DimX * img.DimY * 4
	switch img.Kind {
	case KindU8:
		copy(out.Pix, img.DataU8[base:base+n])
	case KindF16:
		for i := 0; i < n; i++ {
			out.Pix[i] = unorm16ToUnorm8(halfToUnorm16(img.DataF16[base+i]))
		}
	}
	return out
}

// texel reads one channel as UNORM16, or as raw binary16 when hdr is set
// and the image holds half floats.
func (img *Image) texel(x, y, z, c int, hdr bool) uint16 {
	i := ((z*img.DimY+y)*img.DimX+x)*4 + c
	switch {
	case img.Kind == KindU8:
		return uint16(img.DataU8[i]) * 257
	case hdr:
		return img.DataF16[i]
	default:
		return halfToUnorm16(img.DataF16[i])
	}
}

func clampCoord(v, n int) int {
	if v >= n {
		return n - 1
	}
	return v
}

// fetchBlock loads the block at texel origin (x0, y0, z0). Half-float images
// load as binary16 when hdr is set and as clamped UNORM16 otherwise. Texels
// past the image edge replicate the nearest edge texel.
func fetchBlock(img *Image, st *statistics, x0, y0, z0 int, fp Footprint, hdr bool, blk *DecodedBlock) {
	hdr = hdr && img.Kind == KindF16
	blk.Footprint = fp
	blk.HDR = hdr
	blk.Weighted = st != nil
	tix := 0
	for dz := 0; dz < fp.Z; dz++ {
		z := clampCoord(z0+dz, img.DimZ)
		for dy := 0; dy < fp.Y; dy++ {
			y := clampCoord(y0+dy, img.DimY)
			for dx := 0; dx < fp.X; dx++ {
				x := clampCoord(x0+dx, img.DimX)
				for c := 0; c < 4; c++ {
					blk.Texels[tix][c] = img.texel(x, y, z, c, hdr)
				}
				if st != nil {
					blk.ErrorWeights[tix] = st.weights[(z*img.DimY+y)*img.DimX+x]
				}
				tix++
			}
		}
	}
}

// writeBlock stores a decoded block at texel origin (x0, y0, z0), clipping
// texels that fall outside the image. Binary16 texels clamp to [0,1] in 8-bit
// images.
func writeBlock(img *Image, x0, y0, z0 int, blk *DecodedBlock) {
	fp := blk.Footprint
	tix := 0
	for dz := 0; dz < fp.Z; dz++ {
		for dy := 0; dy < fp.Y; dy++ {
			for dx := 0; dx < fp.X; dx++ {
				x, y, z := x0+dx, y0+dy, z0+dz
				if x < img.DimX && y < img.DimY && z < img.DimZ {
					i := ((z*img.DimY+y)*img.DimX + x) * 4
					for c := 0; c < 4; c++ {
						v := blk.Texels[tix][c]
						switch {
						case img.Kind == KindF16 && blk.HDR:
							img.DataF16[i+c] = v
						case img.Kind == KindF16:
							img.DataF16[i+c] = unorm16ToHalf(v)
						case blk.HDR:
							img.DataU8[i+c] = unorm16ToUnorm8(halfToUnorm16(v))
						default:
							img.DataU8[i+c] = uint8(v >> 8)
						}
					}
				}
				tix++
			}
		}
	}
}
