package astc

import "fmt"

// BlockBytes is the size of one compressed ASTC block.
const BlockBytes = 16

// DecodedBlock is one block of texels in x, then y, then z order. Texels
// hold UNORM16 RGBA, or binary16 RGBA when HDR is set.
type DecodedBlock struct {
	Footprint Footprint
	Texels    [blockMaxTexels][4]uint16
	HDR       bool

	// ErrorWeights holds per-texel, per-channel error weights when Weighted
	// is set. Otherwise every texel weighs 1.
	ErrorWeights [blockMaxTexels][4]float32
	Weighted     bool
}

// BlockKind classifies a symbolic block.
type BlockKind uint8

const (
	BlockError BlockKind = iota
	BlockConstant
	BlockNormal
)

func (k BlockKind) String() string {
	switch k {
	case BlockConstant:
		return "constant"
	case BlockNormal:
		return "normal"
	default:
		return "error"
	}
}

// MarshalText writes the kind by name.
func (k BlockKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText parses a name written by MarshalText.
func (k *BlockKind) UnmarshalText(b []byte) error {
	for _, c := range []BlockKind{BlockError, BlockConstant, BlockNormal} {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return newError(ErrBadData, fmt.Sprintf("astc: unknown block kind %q", b))
}

// SymbolicBlock is a compressed block before bit packing.
type SymbolicBlock struct {
	Kind BlockKind

	// Constant is the colour of a constant block, in UNORM16 or, when
	// ConstantF16 is set, binary16.
	Constant    [4]uint16
	ConstantF16 bool

	Mode           uint16
	Partitions     int
	PartitionIndex int
	Formats        [blockMaxPartitions]uint8
	// ColorQuant is the ISE range of the endpoint integers.
	ColorQuant uint8
	// Colors holds unquantized endpoint integers per partition.
	Colors [blockMaxPartitions][8]uint8
	// Weights holds 0..64 grid weights, plane 2 starting at index 32.
	Weights [blockMaxWeights]uint8
	// Plane2Component is the channel on the second weight plane, or -1.
	Plane2Component int8
}

// BlockCodec compresses, decompresses and packs single blocks.
//
// CompressBlock must be deterministic and must not retain s or blk.
type BlockCodec interface {
	CompressBlock(blk *DecodedBlock, p *Params, s *Scratch) SymbolicBlock
	DecompressBlock(sb *SymbolicBlock, fp Footprint, dst *DecodedBlock)
	PackBlock(sb *SymbolicBlock, fp Footprint) [BlockBytes]byte
}

// Scratch holds per-worker temporaries for CompressBlock.
type Scratch struct {
	weight  [blockMaxTexels][4]float32
	ideal   [2][blockMaxTexels]float32
	sens    [2][blockMaxTexels]float32
	decoded [blockMaxTexels][4]uint16

	// texels in the encoding domain: LNS RGB and UNORM16 alpha for HDR input
	lns [blockMaxTexels][4]uint16

	// ranked partition seeds
	seeds  []int
	scores []float64
}

// NewScratch allocates compression temporaries for one worker.
func NewScratch() *Scratch {
	return &Scratch{seeds: make([]int, 0, 8), scores: make([]float64, 0, 8)}
}

// Codec is the built-in block codec. It writes LDR endpoint modes for
// UNORM16 blocks and HDR endpoint modes for binary16 blocks, and decodes both.
type Codec struct{}

// DefaultCodec returns the built-in codec.
func DefaultCodec() *Codec { return &Codec{} }

var _ BlockCodec = (*Codec)(nil)
