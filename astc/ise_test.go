package astc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTritQuintTables(t *testing.T) {
	for v := 0; v < 256; v++ {
		tv := tritsOfInteger[v]
		for _, x := range tv {
			require.Less(t, x, uint8(3), "trit block %d", v)
		}
		back := integerOfTrits[tv[4]][tv[3]][tv[2]][tv[1]][tv[0]]
		require.Equal(t, tv, tritsOfInteger[back], "trit block %d", v)
		require.LessOrEqual(t, back, uint8(v), "inverse keeps the smallest packing")
	}
	for v := 0; v < 128; v++ {
		qv := quintsOfInteger[v]
		for _, x := range qv {
			require.Less(t, x, uint8(5), "quint block %d", v)
		}
		back := integerOfQuints[qv[2]][qv[1]][qv[0]]
		require.Equal(t, qv, quintsOfInteger[back], "quint block %d", v)
	}

	// Every tuple is reachable.
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			for c := 0; c < 3; c++ {
				for d := 0; d < 3; d++ {
					for e := 0; e < 3; e++ {
						got := tritsOfInteger[integerOfTrits[e][d][c][b][a]]
						require.Equal(t, [5]uint8{uint8(a), uint8(b), uint8(c), uint8(d), uint8(e)}, got)
					}
				}
			}
		}
	}
}

func TestBits(t *testing.T) {
	var data [BlockBytes]byte
	setBits(data[:], 5, 11, 0x5A5)
	assert.Equal(t, uint32(0x5A5), getBits(data[:], 5, 11))
	assert.Equal(t, uint32(0), getBits(data[:], 0, 5))

	setBits(data[:], 8, 3, 0)
	assert.Equal(t, uint32(0x5A5&^(7<<3)), getBits(data[:], 5, 11))

	b := [BlockBytes]byte{0x01, 0x80}
	r := reverseBlock(&b)
	assert.Equal(t, byte(0x80), r[15])
	assert.Equal(t, byte(0x01), r[14])
	assert.Equal(t, b, reverseBlock(&r))
}

func TestISERoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for q := quant2; q <= quant256; q++ {
		for count := 1; count <= 24; count++ {
			in := make([]uint8, count)
			for i := range in {
				in[i] = uint8(rng.Intn(q.levels()))
			}

			var data [64]byte
			const offset = 7
			encodeISE(q, count, in, data[:], offset)

			out := make([]uint8, count)
			decodeISE(q, count, data[:], offset, out)
			require.Equal(t, in, out, "range %d count %d", q.levels(), count)

			used := offset + iseBitCount(count, q)
			for bit := used; bit < len(data)*8; bit++ {
				require.Zero(t, getBits(data[:], bit, 1), "range %d count %d wrote past bit %d", q.levels(), count, used)
			}
		}
	}
}

func TestISEBitCount(t *testing.T) {
	assert.Equal(t, 8, iseBitCount(5, quant3))
	assert.Equal(t, 7, iseBitCount(3, quant5))
	assert.Equal(t, 16, iseBitCount(16, quant2))
	assert.Equal(t, 3*3+7, iseBitCount(3, quant40))
	assert.Equal(t, int(quant256), colorQuantForBits(4, 32))
	assert.Equal(t, -1, colorQuantForBits(8, 7))
}

func TestWeightTables(t *testing.T) {
	for q := quant2; q <= quant32; q++ {
		seen := map[uint8]bool{}
		for s := 0; s < q.levels(); s++ {
			v := weightUnquant[q][s]
			require.LessOrEqual(t, v, uint8(64))
			require.False(t, seen[v], "range %d repeats value %d", q.levels(), v)
			seen[v] = true
			require.Equal(t, uint8(s), weightQuantize[q][v], "range %d symbol %d", q.levels(), s)
		}
		assert.Equal(t, uint8(0), weightUnquant[q][weightQuantize[q][0]])
		assert.Equal(t, uint8(64), weightUnquant[q][weightQuantize[q][64]])
	}
}

func TestColorTables(t *testing.T) {
	for q := quant6; q <= quant256; q++ {
		for s := 0; s < q.levels(); s++ {
			v := colorUnquant[q][s]
			require.Equal(t, uint8(s), colorQuantize[q][v], "range %d symbol %d", q.levels(), s)
		}
		assert.Equal(t, uint8(0), colorUnquant[q][colorQuantize[q][0]])
		assert.Equal(t, uint8(255), colorUnquant[q][colorQuantize[q][255]])
	}
	for v := 0; v < 256; v++ {
		assert.Equal(t, uint8(v), colorUnquant[quant256][colorQuantize[quant256][v]])
	}
}
