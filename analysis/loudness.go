// loudness.go - K-weighted loudness envelope over a PCM signal.
//
// Grounded on original_source's sample_processing/loudness.rs: cascade the
// two BS.1770 K-weighting biquad stages, square and average over a moving
// window to get a running mean-square, then take the envelope's sqrt and
// normalize against its own peak so the result is comparable across
// differently-voiced samples regardless of absolute sample amplitude.
package analysis

import "math"

type LoudnessConfig struct {
	SampleRate float64
	WindowSize int // moving RMS window, in samples
}

func DefaultLoudnessConfig(sampleRate float64) LoudnessConfig {
	return LoudnessConfig{
		SampleRate: sampleRate,
		WindowSize: int(sampleRate * 0.05), // 50ms
	}
}

// Loudness computes a max-normalized K-weighted loudness envelope, one
// value per input sample, in [0, 1].
func Loudness(signal []float64, cfg LoudnessConfig) []float64 {
	shelf := highShelfKWeighting(cfg.SampleRate)
	hpass := highPassKWeighting(cfg.SampleRate)

	weighted := make([]float64, len(signal))
	for i, x := range signal {
		weighted[i] = hpass.process(shelf.process(x))
	}

	window := cfg.WindowSize
	if window < 1 {
		window = 1
	}
	ms := movingMeanSquare(weighted, window)

	envelope := make([]float64, len(ms))
	peak := 0.0
	for i, v := range ms {
		e := math.Sqrt(v)
		envelope[i] = e
		if e > peak {
			peak = e
		}
	}
	if peak > 0 {
		for i := range envelope {
			envelope[i] /= peak
		}
	}
	return envelope
}

// movingMeanSquare computes a running mean of x[i]^2 over a trailing window
// using a running sum, avoiding an O(n*window) rescan per sample.
func movingMeanSquare(x []float64, window int) []float64 {
	out := make([]float64, len(x))
	sum := 0.0
	for i := range x {
		sq := x[i] * x[i]
		sum += sq
		if i >= window {
			old := x[i-window]
			sum -= old * old
		}
		n := window
		if i+1 < window {
			n = i + 1
		}
		out[i] = sum / float64(n)
	}
	return out
}
