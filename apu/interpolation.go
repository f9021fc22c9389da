// interpolation.go - fixed-point interpolation kernels for the five
// resampling modes.
//
// The reference emulator ships these as precomputed constant tables
// (interpolation_tables.rs) derived from the real S-DSP's Gaussian/cubic/sinc
// ROM tables; that file was not present in the retrieval pack, so the tables
// here are generated at init time from the same continuous kernels (a
// Gaussian window, a Catmull-Rom-style cubic spline, a windowed sinc) and
// quantized to the same fixed-point width and tap count the reference uses.
// They reproduce the resampler's *shape* and contract (tap count, shift,
// output range) but are not bit-exact with the original ROM contents.
package apu

import "math"

const (
	gaussianTableLen = 512
	cubicTableLen    = 256
	sincTableLen     = 2048
)

var (
	gaussianKernel [gaussianTableLen]int16
	cubicKernel    [cubicTableLen]int16
	sincKernel     [sincTableLen]int16
)

func init() {
	buildGaussianKernel()
	buildCubicKernel()
	buildSincKernel()
}

// buildGaussianKernel fills a 4-tap-per-position table, 128 positions, each
// position's 4 taps summing to 2048 (the >>11 shift in the resampler).
func buildGaussianKernel() {
	const positions = gaussianTableLen / 4
	sigma := 0.5
	for p := 0; p < positions; p++ {
		frac := float64(p) / float64(positions)
		var taps [4]float64
		sum := 0.0
		for t := 0; t < 4; t++ {
			x := float64(t-1) - frac
			v := math.Exp(-(x * x) / (2 * sigma * sigma))
			taps[t] = v
			sum += v
		}
		for t := 0; t < 4; t++ {
			q := int16(math.Round(taps[t] / sum * 2048))
			gaussianKernel[p*4+t] = q
		}
	}
}

// buildCubicKernel fills a 4-tap-per-position table, 64 positions, taps
// summing to about 32768 (the >>15 shift), using Catmull-Rom spline weights;
// a tap of exactly 1.0 is stored as 32767, the int16 maximum.
func buildCubicKernel() {
	const positions = cubicTableLen / 4
	for p := 0; p < positions; p++ {
		t := float64(p) / float64(positions)
		t2 := t * t
		t3 := t2 * t
		w := [4]float64{
			-0.5*t3 + t2 - 0.5*t,
			1.5*t3 - 2.5*t2 + 1,
			-1.5*t3 + 2*t2 + 0.5*t,
			0.5*t3 - 0.5*t2,
		}
		for i := 0; i < 4; i++ {
			q := math.Round(w[i] * 32768)
			if q > math.MaxInt16 {
				q = math.MaxInt16
			}
			cubicKernel[p*4+i] = int16(q)
		}
	}
}

// buildSincKernel fills an 8-tap-per-position table, 256 positions, taps
// summing to approximately 32768, using a Hann-windowed sinc.
func buildSincKernel() {
	const positions = sincTableLen / 8
	for p := 0; p < positions; p++ {
		frac := float64(p) / float64(positions)
		var taps [8]float64
		sum := 0.0
		for t := 0; t < 8; t++ {
			x := float64(t-4) - frac + 0.5
			var sinc float64
			if x == 0 {
				sinc = 1
			} else {
				sinc = math.Sin(math.Pi*x) / (math.Pi * x)
			}
			window := 0.5 - 0.5*math.Cos(2*math.Pi*(float64(t)+0.5)/8)
			v := sinc * window
			taps[t] = v
			sum += v
		}
		for t := 0; t < 8; t++ {
			taps[t] /= sum
			sincKernel[p*8+t] = int16(math.Round(taps[t] * 32768))
		}
	}
}

// interpDot computes the dot product of a resample window with a kernel
// slice, matching the reference's interp_dot.
func interpDot(buf []int32, kernel []int16) int32 {
	var sum int32
	for i := range kernel {
		sum += buf[i] * int32(kernel[i])
	}
	return sum
}
