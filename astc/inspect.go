package astc

import "fmt"

// BlockInfo describes the symbolic content of one physical block.
type BlockInfo struct {
	Kind   BlockKind `yaml:"kind"`
	Reason string    `yaml:"reason,omitempty"`

	Constant [4]uint16 `yaml:"constant,omitempty,flow"`
	HDR      bool      `yaml:"hdr,omitempty"`

	Mode           int     `yaml:"mode,omitempty"`
	Partitions     int     `yaml:"partitions,omitempty"`
	PartitionIndex int     `yaml:"partition_index,omitempty"`
	Formats        []uint8 `yaml:"endpoint_modes,omitempty,flow"`
	WeightGrid     [3]int  `yaml:"weight_grid,omitempty,flow"`
	WeightLevels   int     `yaml:"weight_levels,omitempty"`
	ColorLevels    int     `yaml:"color_levels,omitempty"`
	DualPlane      bool    `yaml:"dual_plane,omitempty"`
	Plane2         int     `yaml:"plane2_component"`
}

func (bi BlockInfo) String() string {
	switch bi.Kind {
	case BlockConstant:
		if bi.HDR {
			return fmt.Sprintf("constant f16 %04x %04x %04x %04x", bi.Constant[0], bi.Constant[1], bi.Constant[2], bi.Constant[3])
		}
		return fmt.Sprintf("constant %04x %04x %04x %04x", bi.Constant[0], bi.Constant[1], bi.Constant[2], bi.Constant[3])
	case BlockError:
		return "error: " + bi.Reason
	}
	s := fmt.Sprintf("mode %d, %d partition(s), cem %v, grid %dx%dx%d, weights q%d, colors q%d",
		bi.Mode, bi.Partitions, bi.Formats,
		bi.WeightGrid[0], bi.WeightGrid[1], bi.WeightGrid[2],
		bi.WeightLevels, bi.ColorLevels)
	if bi.Partitions > 1 {
		s += fmt.Sprintf(", index %d", bi.PartitionIndex)
	}
	if bi.DualPlane {
		s += fmt.Sprintf(", plane 2 = %d", bi.Plane2)
	}
	return s
}

// InspectBlock decodes the header fields of a 16-byte block. Error blocks
// are reported through BlockInfo.Reason, not as an error.
func InspectBlock(block []byte, fp Footprint) (BlockInfo, error) {
	if err := fp.Validate(); err != nil {
		return BlockInfo{}, err
	}
	if len(block) < BlockBytes {
		return BlockInfo{}, shortData("block", BlockBytes, len(block))
	}

	ctx := getBlockContext(fp)
	sb, reason := unpackBlock(ctx, block)
	bi := BlockInfo{Kind: sb.Kind, Reason: reason, Plane2: -1}
	switch sb.Kind {
	case BlockConstant:
		bi.Constant = sb.Constant
		bi.HDR = sb.ConstantF16
	case BlockNormal:
		m := ctx.modes[sb.Mode]
		bi.Mode = int(sb.Mode)
		bi.Partitions = sb.Partitions
		bi.PartitionIndex = sb.PartitionIndex
		bi.Formats = append([]uint8(nil), sb.Formats[:sb.Partitions]...)
		bi.WeightGrid = [3]int{m.gridX, m.gridY, m.gridZ}
		bi.WeightLevels = m.weightQuant.levels()
		bi.ColorLevels = quantMethod(sb.ColorQuant).levels()
		bi.DualPlane = m.dualPlane
		bi.Plane2 = int(sb.Plane2Component)
		for _, f := range bi.Formats {
			bi.HDR = bi.HDR || isHDREndpointMode(f)
		}
	}
	return bi, nil
}
