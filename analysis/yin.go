// yin.go - YIN pitch detection via FFT-based autocorrelation.
//
// Ported from original_source's sample_processing/yin.rs: the cumulative
// mean normalized difference function is computed through an FFT
// convolution (frame FFT times the conjugate of a zero-padded half-frame
// FFT, inverse-transformed) rather than a direct O(n^2) autocorrelation,
// matching the reference's approach.
package analysis

import "math"

type YinConfig struct {
	SampleRate   float64
	MinFrequency float64
	MaxFrequency float64
	Threshold    float64
}

func DefaultYinConfig(sampleRate float64) YinConfig {
	return YinConfig{
		SampleRate:   sampleRate,
		MinFrequency: 50,
		MaxFrequency: 1000,
		Threshold:    0.2,
	}
}

type YinResult struct {
	Frequency   float64
	Voiced      bool
	Periodicity float64
}

// cumulativeMeanNormalizedDifference computes d'(tau) for tau in
// [0, maxLag] for one frame, using FFT-based autocorrelation.
func cumulativeMeanNormalizedDifference(frame []float64, maxLag int) []float64 {
	n := len(frame)
	fftLen := nextPowerOfTwo(2 * n)

	padded := make([]complex128, fftLen)
	for i, v := range frame {
		padded[i] = complex(v, 0)
	}
	fft(padded)

	half := make([]complex128, fftLen)
	for i := 0; i < n/2; i++ {
		half[i] = complex(frame[i], 0)
	}
	fft(half)

	prod := make([]complex128, fftLen)
	for i := range prod {
		prod[i] = padded[i] * complexConj(half[i])
	}
	ifft(prod)

	r := make([]float64, maxLag+1)
	for tau := 0; tau <= maxLag; tau++ {
		r[tau] = real(prod[tau])
	}

	energy := make([]float64, maxLag+1)
	running := 0.0
	for i := 0; i <= maxLag && i < n; i++ {
		running += frame[i] * frame[i]
		energy[i] = running
	}
	for i := maxLag + 1; i < len(energy); i++ {
		energy[i] = running
	}

	dPrime := make([]float64, maxLag+1)
	dPrime[0] = 1
	runningSum := 0.0
	for tau := 1; tau <= maxLag; tau++ {
		e0 := energy[0]
		eTau := energy[tau]
		d := e0 + eTau - 2*r[tau]
		runningSum += d
		if runningSum == 0 {
			dPrime[tau] = 1
		} else {
			dPrime[tau] = d * float64(tau) / runningSum
		}
	}
	return dPrime
}

func complexConj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}

// Yin runs single-pitch-per-frame YIN detection on one frame.
func Yin(frame []float64, cfg YinConfig) YinResult {
	minLag := int(cfg.SampleRate / cfg.MaxFrequency)
	maxLag := int(cfg.SampleRate / cfg.MinFrequency)
	if maxLag >= len(frame) {
		maxLag = len(frame) - 1
	}
	if minLag < 1 {
		minLag = 1
	}
	if maxLag <= minLag {
		return YinResult{}
	}

	dPrime := cumulativeMeanNormalizedDifference(frame, maxLag)

	voiced := true
	minIdx := minLag
	minVal := dPrime[minLag]
	found := false
	for tau := minLag; tau <= maxLag; tau++ {
		if dPrime[tau] < cfg.Threshold {
			// first local minimum below threshold
			for tau+1 <= maxLag && dPrime[tau+1] < dPrime[tau] {
				tau++
			}
			minIdx = tau
			minVal = dPrime[tau]
			found = true
			break
		}
		if dPrime[tau] < minVal {
			minVal = dPrime[tau]
			minIdx = tau
		}
	}
	if !found {
		voiced = false
	}

	refined := parabolicInterpolate(dPrime, minIdx, minLag, maxLag)
	if refined <= 0 {
		return YinResult{}
	}
	return YinResult{
		Frequency:   cfg.SampleRate / refined,
		Voiced:      voiced,
		Periodicity: 1 - minVal,
	}
}

func parabolicInterpolate(d []float64, idx, lo, hi int) float64 {
	if idx <= lo || idx >= hi {
		return float64(idx)
	}
	s0, s1, s2 := d[idx-1], d[idx], d[idx+1]
	denom := s0 - 2*s1 + s2
	if denom == 0 {
		return float64(idx)
	}
	shift := 0.5 * (s0 - s2) / denom
	return float64(idx) + shift
}

// Frames splits a signal into overlapping frames of frameLen samples with
// the given hop, zero-padding the final short frame.
func Frames(signal []float64, frameLen, hop int) [][]float64 {
	if hop <= 0 {
		hop = frameLen
	}
	var frames [][]float64
	for start := 0; start < len(signal); start += hop {
		frame := make([]float64, frameLen)
		end := start + frameLen
		if end > len(signal) {
			end = len(signal)
		}
		copy(frame, signal[start:end])
		frames = append(frames, frame)
		if end == len(signal) {
			break
		}
	}
	return frames
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func applyWindow(frame, window []float64) []float64 {
	out := make([]float64, len(frame))
	for i := range frame {
		out[i] = frame[i] * window[i]
	}
	return out
}
