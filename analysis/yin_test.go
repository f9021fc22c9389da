package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sineWave(freq, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return out
}

func TestYinDetectsPureToneFrequency(t *testing.T) {
	const sampleRate = 44100.0
	const freq = 220.0
	frame := sineWave(freq, sampleRate, 2048)

	result := Yin(frame, DefaultYinConfig(sampleRate))

	assert.True(t, result.Voiced)
	assert.InDelta(t, freq, result.Frequency, 5)
}

func TestYinSilenceIsUnvoiced(t *testing.T) {
	frame := make([]float64, 2048)
	result := Yin(frame, DefaultYinConfig(44100))

	assert.False(t, result.Voiced)
}

func TestFFTRoundTrip(t *testing.T) {
	data := make([]complex128, 16)
	for i := range data {
		data[i] = complex(float64(i), 0)
	}
	original := make([]complex128, len(data))
	copy(original, data)

	fft(data)
	ifft(data)

	for i := range data {
		assert.InDelta(t, real(original[i]), real(data[i]), 1e-9)
		assert.InDelta(t, imag(original[i]), imag(data[i]), 1e-9)
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	assert.Equal(t, 1, nextPowerOfTwo(1))
	assert.Equal(t, 8, nextPowerOfTwo(5))
	assert.Equal(t, 1024, nextPowerOfTwo(1024))
	assert.Equal(t, 2048, nextPowerOfTwo(1025))
}
