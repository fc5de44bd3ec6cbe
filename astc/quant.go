package astc

// quantMethod is an ASTC integer-sequence range.
//
// The numeric values are fixed by the ASTC format and must not be reordered.
type quantMethod uint8

const (
	quant2 quantMethod = iota
	quant3
	quant4
	quant5
	quant6
	quant8
	quant10
	quant12
	quant16
	quant20
	quant24
	quant32
	quant40
	quant48
	quant64
	quant80
	quant96
	quant128
	quant160
	quant192
	quant256
)

// iseRange describes how one range packs into an integer sequence: a number
// of plain low bits plus at most one trit or quint per element.
type iseRange struct {
	levels int
	bits   uint8
	trits  bool
	quints bool
}

var iseRanges = [...]iseRange{
	quant2:   {levels: 2, bits: 1},
	quant3:   {levels: 3, trits: true},
	quant4:   {levels: 4, bits: 2},
	quant5:   {levels: 5, quints: true},
	quant6:   {levels: 6, bits: 1, trits: true},
	quant8:   {levels: 8, bits: 3},
	quant10:  {levels: 10, bits: 1, quints: true},
	quant12:  {levels: 12, bits: 2, trits: true},
	quant16:  {levels: 16, bits: 4},
	quant20:  {levels: 20, bits: 2, quints: true},
	quant24:  {levels: 24, bits: 3, trits: true},
	quant32:  {levels: 32, bits: 5},
	quant40:  {levels: 40, bits: 3, quints: true},
	quant48:  {levels: 48, bits: 4, trits: true},
	quant64:  {levels: 64, bits: 6},
	quant80:  {levels: 80, bits: 4, quints: true},
	quant96:  {levels: 96, bits: 5, trits: true},
	quant128: {levels: 128, bits: 7},
	quant160: {levels: 160, bits: 5, quints: true},
	quant192: {levels: 192, bits: 6, trits: true},
	quant256: {levels: 256, bits: 8},
}

func (q quantMethod) levels() int { return iseRanges[q].levels }

// iseBitCount returns the number of bits needed to store count elements of
// range q.
func iseBitCount(count int, q quantMethod) int {
	r := iseRanges[q]
	n := count * int(r.bits)
	switch {
	case r.trits:
		n += (count*8 + 4) / 5
	case r.quints:
		n += (count*7 + 2) / 3
	}
	return n
}

// colorQuantForBits returns the highest range that stores count elements in
// at most bits, or -1 when even quant2 does not fit.
func colorQuantForBits(count, bits int) int {
	if count <= 0 || bits < 0 {
		return -1
	}
	for q := quant256; ; q-- {
		if iseBitCount(count, q) <= bits {
			return int(q)
		}
		if q == quant2 {
			return -1
		}
	}
}
