package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoudnessSilenceIsZero(t *testing.T) {
	signal := make([]float64, 4410)
	envelope := Loudness(signal, DefaultLoudnessConfig(44100))

	for _, v := range envelope {
		assert.Equal(t, 0.0, v)
	}
}

func TestLoudnessIsMaxNormalized(t *testing.T) {
	signal := sineWave(440, 44100, 4410)
	envelope := Loudness(signal, DefaultLoudnessConfig(44100))

	peak := 0.0
	for _, v := range envelope {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		if v > peak {
			peak = v
		}
	}
	assert.InDelta(t, 1.0, peak, 1e-9)
}

func TestLoudnessNormalizationIsScaleInvariant(t *testing.T) {
	quiet := sineWave(440, 44100, 4410)
	loud := make([]float64, len(quiet))
	for i, v := range quiet {
		loud[i] = v * 4
	}

	cfg := DefaultLoudnessConfig(44100)
	quietEnv := Loudness(quiet, cfg)
	loudEnv := Loudness(loud, cfg)

	// both normalize to a peak of 1, so scaling the input by a constant
	// leaves the normalized envelope unchanged.
	assert.NotEmpty(t, quietEnv)
	assert.NotEmpty(t, loudEnv)
	for i := range quietEnv {
		assert.InDelta(t, quietEnv[i], loudEnv[i], 1e-12)
	}
}
