package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitVolumeModel(t *testing.T) {
	t.Run("recovers an exact linear relationship", func(t *testing.T) {
		// volume = 100 + 50*rain + 2*temp
		obs := []Observation{
			{RainDepth: 1, AntecedentTemp: 10, Volume: 170},
			{RainDepth: 2, AntecedentTemp: 5, Volume: 210},
			{RainDepth: 4, AntecedentTemp: 20, Volume: 340},
			{RainDepth: 8, AntecedentTemp: 12, Volume: 524},
		}

		m, err := FitVolumeModel(obs)
		require.NoError(t, err)

		assert.InDelta(t, 100, m.Intercept, 1e-6)
		assert.InDelta(t, 50, m.RainCoef, 1e-6)
		assert.InDelta(t, 2, m.TempCoef, 1e-6)
		assert.Len(t, m.Training, 4)
	})

	t.Run("fewer than three observations fail", func(t *testing.T) {
		obs := []Observation{
			{RainDepth: 1, AntecedentTemp: 10, Volume: 170},
			{RainDepth: 2, AntecedentTemp: 5, Volume: 210},
		}

		_, err := FitVolumeModel(obs)
		require.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("observations with missing fields do not count", func(t *testing.T) {
		obs := []Observation{
			{RainDepth: 1, AntecedentTemp: 10, Volume: 170},
			{RainDepth: 2, AntecedentTemp: Missing(), Volume: 210},
			{RainDepth: 4, AntecedentTemp: 20, Volume: Missing()},
			{RainDepth: Missing(), AntecedentTemp: 12, Volume: 524},
		}

		_, err := FitVolumeModel(obs)
		require.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("constant predictor is a singular design", func(t *testing.T) {
		obs := []Observation{
			{RainDepth: 3, AntecedentTemp: 10, Volume: 170},
			{RainDepth: 3, AntecedentTemp: 5, Volume: 210},
			{RainDepth: 3, AntecedentTemp: 20, Volume: 340},
			{RainDepth: 3, AntecedentTemp: 12, Volume: 524},
		}

		_, err := FitVolumeModel(obs)
		require.ErrorIs(t, err, ErrInsufficientData)
		assert.Contains(t, err.Error(), "singular")
	})
}

func TestVolumeModelPredict(t *testing.T) {
	m := VolumeModel{Intercept: 100, RainCoef: 50, TempCoef: 2}

	assert.InDelta(t, 270, m.Predict(3, 10), 1e-9)
	assert.True(t, IsMissing(m.Predict(Missing(), 10)), "missing input propagates")
}
