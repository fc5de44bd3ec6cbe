package astc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeighting(t *testing.T) {
	u8 := DefaultWeighting(KindU8)
	assert.Equal(t, Weighting{RGBPower: 1, AlphaPower: 1, RGBBase: 1, AlphaBase: 1}, u8)
	assert.False(t, u8.enabled())

	f16 := DefaultWeighting(KindF16)
	assert.Equal(t, float32(0.75), f16.RGBPower)
	assert.Equal(t, float32(0), f16.RGBBase)
	assert.Equal(t, float32(1), f16.RGBMean)
	assert.Equal(t, float32(0.05), f16.AlphaBase)
	assert.False(t, f16.enabled(), "statistics need a radius")
}

func TestComputeStatistics(t *testing.T) {
	t.Run("flat image with base weights", func(t *testing.T) {
		img := NewImage(4, 4, 1, KindU8)
		for i := range img.DataU8 {
			img.DataU8[i] = 128
		}
		w := DefaultWeighting(KindU8)
		w.Radius = 1
		st := computeStatistics(img, w)
		require.Len(t, st.weights, 16)
		for _, v := range st.weights {
			assert.Equal(t, [4]float32{1, 1, 1, 1}, v)
		}
	})

	t.Run("mean weighting on half floats", func(t *testing.T) {
		img := NewImage(3, 3, 2, KindF16)
		quarter := float32ToHalf(0.25)
		for i := range img.DataF16 {
			img.DataF16[i] = quarter
		}
		w := DefaultWeighting(KindF16)
		w.Radius = 2
		st := computeStatistics(img, w)

		m := math.Pow(float64(halfToUnorm16(quarter))/65535, 0.75)
		for _, v := range st.weights {
			assert.InDelta(t, 1/m, v[0], 1e-3)
			assert.InDelta(t, 1/0.05, v[3], 1e-3)
		}
	})

	t.Run("stdev lowers weight at edges", func(t *testing.T) {
		img := NewImage(8, 1, 1, KindU8)
		for x := 4; x < 8; x++ {
			img.DataU8[x*4] = 255
		}
		w := Weighting{RGBPower: 1, AlphaPower: 1, RGBBase: 1, AlphaBase: 1, RGBStdev: 4, Radius: 1}
		st := computeStatistics(img, w)
		assert.Equal(t, float32(1), st.weights[0][0], "flat neighbourhood")
		assert.Less(t, st.weights[4][0], float32(1), "edge neighbourhood")
		assert.Equal(t, float32(1), st.weights[4][1], "flat channel unaffected")
	})

	t.Run("alpha radius scales colour weights", func(t *testing.T) {
		img := NewImage(4, 1, 1, KindU8)
		img.DataU8[3] = 0
		img.DataU8[3*4+3] = 255
		w := DefaultWeighting(KindU8)
		w.AlphaRadius = 0
		assert.False(t, w.enabled())

		w.AlphaRadius = 1
		st := computeStatistics(img, w)
		assert.InDelta(t, minWeightDenominator, st.weights[0][0], 1e-6, "transparent texels barely count")
		assert.InDelta(t, 0.5, st.weights[3][0], 1e-6)
		assert.Equal(t, float32(1), st.weights[3][3], "alpha keeps its own weight")
	})
}
