package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessReturnsOneTrackPerSource(t *testing.T) {
	sources := []Source{
		{Name: "a", PCM: sineWave(220, 22050, 4096), SampleRate: 22050},
		{Name: "b", PCM: sineWave(440, 22050, 4096), SampleRate: 22050},
	}

	tracks, err := Process(context.Background(), sources, DefaultPyinConfig, DefaultLoudnessConfig)
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, "a", tracks[0].Name)
	assert.Equal(t, "b", tracks[1].Name)
	assert.NotEmpty(t, tracks[0].Pitch)
	assert.NotEmpty(t, tracks[0].Loudness)
}

func TestProcessErrorsOnEmptySource(t *testing.T) {
	sources := []Source{{Name: "empty", PCM: nil, SampleRate: 22050}}

	_, err := Process(context.Background(), sources, DefaultPyinConfig, DefaultLoudnessConfig)
	assert.Error(t, err)
}

func TestTrackPitchAtInterpolates(t *testing.T) {
	track := &Track{
		FrameHop: 100,
		Pitch: []PyinFrame{
			{Frequency: 100, Voiced: true},
			{Frequency: 200, Voiced: true},
		},
	}

	freq, voiced := track.PitchAt(50)
	assert.True(t, voiced)
	assert.InDelta(t, 150, freq, 1e-9)
}

func TestTrackLoudnessAtClampsToRange(t *testing.T) {
	track := &Track{Loudness: []float64{0.1, 0.5, 0.9}}

	assert.Equal(t, 0.1, track.LoudnessAt(-5))
	assert.Equal(t, 0.9, track.LoudnessAt(999))
}
