package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPyinTracksPureToneAcrossFrames(t *testing.T) {
	const sampleRate = 22050.0
	const freq = 440.0
	signal := sineWave(freq, sampleRate, int(sampleRate)) // 1 second

	cfg := DefaultPyinConfig(sampleRate)
	frames := Pyin(signal, cfg)

	assert.NotEmpty(t, frames)
	voicedCount := 0
	for _, f := range frames {
		if f.Voiced {
			voicedCount++
			assert.InDelta(t, freq, f.Frequency, freq*0.5)
		}
	}
	assert.Greater(t, voicedCount, 0)
}

func TestPitchBinsAreLogSpacedAndIncreasing(t *testing.T) {
	cfg := DefaultPyinConfig(44100)
	bins := pitchBins(cfg)

	require := assert.New(t)
	require.NotEmpty(bins)
	for i := 1; i < len(bins); i++ {
		require.Greater(bins[i], bins[i-1])
	}
	require.InDelta(cfg.MinFrequency, bins[0], 1e-6)
}

func TestDefaultPyinConfigMatchesSourceDefaults(t *testing.T) {
	cfg := DefaultPyinConfig(44100)

	assert.Equal(t, ThresholdBeta2, cfg.Distribution)
	assert.Equal(t, 35.92, cfg.MaxTransitionRate)
	assert.Equal(t, 0.1, cfg.Resolution)
	assert.Equal(t, 10, cfg.binsPerSemitone())
}

func TestFirstAscentIndexFindsLocalMinimum(t *testing.T) {
	// descends through index 2, then ascends: the local minimum is at 2.
	signal := []float64{5, 3, 1, 4, 6}
	assert.Equal(t, 2, firstAscentIndex(signal))

	// strictly non-increasing: no ascent anywhere, falls back to 0.
	monotone := []float64{5, 4, 3, 2, 1}
	assert.Equal(t, 0, firstAscentIndex(monotone))
}

func TestFramePeakProbabilitiesAssignsSingleDipAsMinimum(t *testing.T) {
	// a single sharp dip near the low end of the lag range: every threshold
	// above it fires on the same minimum, so that bin is reported as the
	// minimum and collects a nonzero share of Beta2's mass.
	dPrime := make([]float64, 64)
	for i := range dPrime {
		dPrime[i] = 0.9
	}
	dPrime[10] = 0.05

	peakProb, minIndex := framePeakProbabilities(dPrime, 0, 63, &beta2Distribution)
	assert.Equal(t, 10, minIndex)
	assert.Greater(t, peakProb[10], 0.0)
}

func TestLocalizedTransitionMatrixRowsConserveWeight(t *testing.T) {
	edges := localizedTransitionMatrix(20, 7)
	totals := make([]float64, 40)
	for _, e := range edges {
		totals[e.from] += e.weight
	}
	for s, total := range totals {
		assert.InDelta(t, 1.0, total, 1e-9, "state %d", s)
	}
}
