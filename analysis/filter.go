// filter.go - transposed direct-form-II biquad IIR, shared by the K-weighting cascade.
package analysis

type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     float64
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.z1
	f.z1 = f.b1*x + f.z2 - f.a1*y
	f.z2 = f.b2*x - f.a2*y
	return y
}

func (f *biquad) reset() {
	f.z1, f.z2 = 0, 0
}

// highShelfKWeighting returns the coefficients of the ITU-R BS.1770
// pre-filter's high-shelf stage. The coefficients are the fixed published
// 48 kHz values; sampleRate is not used.
func highShelfKWeighting(sampleRate float64) biquad {
	return biquad{
		b0: 1.53512485958697,
		b1: -2.69169618940638,
		b2: 1.19839281085285,
		a1: -1.69065929318241,
		a2: 0.73248077421585,
	}
}

// highPassKWeighting returns the coefficients of the BS.1770 pre-filter's
// revised low-frequency B (high-pass) stage.
func highPassKWeighting(sampleRate float64) biquad {
	return biquad{
		b0: 1.0,
		b1: -2.0,
		b2: 1.0,
		a1: -1.99004745483398,
		a2: 0.99007225036621,
	}
}
