package astc

import (
	"fmt"
	"math"
	"strings"
)

// SpeedTier trades compression time against quality.
type SpeedTier uint8

const (
	SpeedVeryFast SpeedTier = iota
	SpeedFast
	SpeedMedium
	SpeedThorough
	SpeedExhaustive
)

var speedNames = [...]string{
	SpeedVeryFast:   "veryfast",
	SpeedFast:       "fast",
	SpeedMedium:     "medium",
	SpeedThorough:   "thorough",
	SpeedExhaustive: "exhaustive",
}

func (t SpeedTier) String() string {
	if int(t) < len(speedNames) {
		return speedNames[t]
	}
	return fmt.Sprintf("SpeedTier(%d)", uint8(t))
}

// ParseSpeedTier parses a tier name. A leading dash is accepted so that
// "-medium" works like the classic command line switch.
func ParseSpeedTier(s string) (SpeedTier, error) {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "-")
	for i, n := range speedNames {
		if n == name {
			return SpeedTier(i), nil
		}
	}
	return 0, newError(ErrBadParam, fmt.Sprintf("astc: unknown speed tier %q", s))
}

// Params is the immutable per-run search configuration shared by every
// block call.
type Params struct {
	PartitionSearchLimit   int
	OneToTwoPartitionLimit float64
	CorrelationCutoff      float64
	BlockModeCutoff        float64
	MaxRefinementIters     int
	DBLimit                float64
	TexelAvgErrorLimit     float64
	ProgressDivisor        int

	ComponentWeights [4]float32
	Weighting        Weighting

	SuppressProgress bool
	RoundTrip        bool

	// HDR loads half-float blocks as binary16 for the HDR endpoint modes.
	HDR bool
}

// tierRow is one row of the speed table. The dB limit is
// max(dbA - dbB*L, dbC - dbD*L) for L = log10(texels per block), or fixed
// when dbFixed is set.
type tierRow struct {
	plimit  int
	oplimit float64
	corr    float64
	bmc     float64
	iters   int
	dbA     float64
	dbB     float64
	dbC     float64
	dbD     float64
	dbFixed float64
}

var tierTable = [...]tierRow{
	SpeedVeryFast:   {plimit: 2, oplimit: 1.0, corr: 0.5, bmc: 25, iters: 1, dbA: 70, dbB: 35, dbC: 53, dbD: 19},
	SpeedFast:       {plimit: 4, oplimit: 1.0, corr: 0.5, bmc: 50, iters: 1, dbA: 85, dbB: 35, dbC: 63, dbD: 19},
	SpeedMedium:     {plimit: 25, oplimit: 1.2, corr: 0.75, bmc: 75, iters: 2, dbA: 95, dbB: 35, dbC: 70, dbD: 19},
	SpeedThorough:   {plimit: 100, oplimit: 2.5, corr: 0.95, bmc: 95, iters: 4, dbA: 105, dbB: 35, dbC: 77, dbD: 19},
	SpeedExhaustive: {plimit: 1024, oplimit: 1000, corr: 0.99, bmc: 100, iters: 4, dbFixed: 999},
}

// ResolveSpeed returns the search parameters of a tier for a footprint.
func ResolveSpeed(tier SpeedTier, fp Footprint) Params {
	if int(tier) >= len(tierTable) {
		contractViolation("unknown speed tier %d", tier)
	}
	row := tierTable[tier]

	db := row.dbFixed
	if db == 0 {
		l := math.Log10(float64(fp.X * fp.Y * fp.Z))
		db = math.Max(row.dbA-row.dbB*l, row.dbC-row.dbD*l)
	}

	return Params{
		PartitionSearchLimit:   row.plimit,
		OneToTwoPartitionLimit: row.oplimit,
		CorrelationCutoff:      row.corr,
		BlockModeCutoff:        row.bmc / 100,
		MaxRefinementIters:     row.iters,
		DBLimit:                db,
		TexelAvgErrorLimit:     math.Pow(0.1, db*0.1) * 65535 * 65535,
		ProgressDivisor:        ProgressDivisor(tier, fp.Y),
		ComponentWeights:       [4]float32{1, 1, 1, 1},
	}
}

// progressDivisors is indexed by tier, then by footprint height 4, 5, 6, 8,
// 10 and finally the value used for every other height.
var progressDivisors = [...][6]int{
	SpeedVeryFast:   {240, 56, 64, 47, 36, 30},
	SpeedFast:       {60, 27, 30, 24, 16, 20},
	SpeedMedium:     {25, 15, 15, 10, 8, 6},
	SpeedThorough:   {12, 7, 7, 5, 4, 3},
	SpeedExhaustive: {1, 1, 1, 1, 1, 1},
}

// ProgressDivisor returns how many blocks a worker completes between
// progress reports.
func ProgressDivisor(tier SpeedTier, footprintY int) int {
	if int(tier) >= len(progressDivisors) {
		contractViolation("unknown speed tier %d", tier)
	}
	col := 5
	switch footprintY {
	case 4:
		col = 0
	case 5:
		col = 1
	case 6:
		col = 2
	case 8:
		col = 3
	case 10:
		col = 4
	}
	return progressDivisors[tier][col]
}
