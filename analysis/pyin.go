// pyin.go - probabilistic YIN: threshold-sweep emission probabilities
// decoded through a voiced/unvoiced Viterbi HMM.
//
// Ported from original_source's sample_processing/yin.rs (the pyin method)
// and sample_processing/threshold_distribution.rs: rather than picking one
// threshold and one candidate per frame (plain YIN), pyin sweeps 100
// thresholds across the same cumulative mean normalized difference curve,
// weighting each threshold's first minimum by a prior distribution
// concentrated on low thresholds, then decodes the most likely frequency
// track through a 2-states-per-pitch-bin (voiced/unvoiced) hidden Markov
// model via Viterbi.
package analysis

import "math"

// ThresholdDistribution selects the prior weighting applied across the 100
// swept thresholds. Beta2 is the reference default: most of its mass sits on
// the first few (lowest, strictest) thresholds, tapering to near zero
// by threshold 60.
type ThresholdDistribution int

const (
	ThresholdUniform ThresholdDistribution = iota
	ThresholdBeta1
	ThresholdBeta2
	ThresholdBeta3
	ThresholdBeta4
	ThresholdSingle10
	ThresholdSingle15
	ThresholdSingle20
)

func (d ThresholdDistribution) table() *[100]float64 {
	switch d {
	case ThresholdUniform:
		return &uniformDistribution
	case ThresholdBeta1:
		return &beta1Distribution
	case ThresholdBeta3:
		return &beta3Distribution
	case ThresholdBeta4:
		return &beta4Distribution
	case ThresholdSingle10:
		return &single10Distribution
	case ThresholdSingle15:
		return &single15Distribution
	case ThresholdSingle20:
		return &single20Distribution
	default:
		return &beta2Distribution
	}
}

var uniformDistribution = [100]float64{
	0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000,
	0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000,
	0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000,
	0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000,
	0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000,
	0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000,
	0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000,
	0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000,
	0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000,
	0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000, 0.0100000,
}

var beta1Distribution = [100]float64{
	0.028911, 0.048656, 0.061306, 0.068539, 0.071703, 0.071877, 0.069915, 0.066489, 0.062117, 0.057199,
	0.052034, 0.046844, 0.041786, 0.036971, 0.032470, 0.028323, 0.024549, 0.021153, 0.018124, 0.015446,
	0.013096, 0.011048, 0.009275, 0.007750, 0.006445, 0.005336, 0.004397, 0.003606, 0.002945, 0.002394,
	0.001937, 0.001560, 0.001250, 0.000998, 0.000792, 0.000626, 0.000492, 0.000385, 0.000300, 0.000232,
	0.000179, 0.000137, 0.000104, 0.000079, 0.000060, 0.000045, 0.000033, 0.000024, 0.000018, 0.000013,
	0.000009, 0.000007, 0.000005, 0.000003, 0.000002, 0.000002, 0.000001, 0.000001, 0.000001, 0.000000,
	0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000,
	0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000,
	0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000,
	0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000,
}

var beta2Distribution = [100]float64{
	0.012614, 0.022715, 0.030646, 0.036712, 0.041184, 0.044301, 0.046277, 0.047298, 0.047528, 0.047110,
	0.046171, 0.044817, 0.043144, 0.041231, 0.039147, 0.036950, 0.034690, 0.032406, 0.030133, 0.027898,
	0.025722, 0.023624, 0.021614, 0.019704, 0.017900, 0.016205, 0.014621, 0.013148, 0.011785, 0.010530,
	0.009377, 0.008324, 0.007366, 0.006497, 0.005712, 0.005005, 0.004372, 0.003806, 0.003302, 0.002855,
	0.002460, 0.002112, 0.001806, 0.001539, 0.001307, 0.001105, 0.000931, 0.000781, 0.000652, 0.000542,
	0.000449, 0.000370, 0.000303, 0.000247, 0.000201, 0.000162, 0.000130, 0.000104, 0.000082, 0.000065,
	0.000051, 0.000039, 0.000030, 0.000023, 0.000018, 0.000013, 0.000010, 0.000007, 0.000005, 0.000004,
	0.000003, 0.000002, 0.000001, 0.000001, 0.000001, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000,
	0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000,
	0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000,
}

var beta3Distribution = [100]float64{
	0.006715, 0.012509, 0.017463, 0.021655, 0.025155, 0.028031, 0.030344, 0.032151, 0.033506, 0.034458,
	0.035052, 0.035331, 0.035332, 0.035092, 0.034643, 0.034015, 0.033234, 0.032327, 0.031314, 0.030217,
	0.029054, 0.027841, 0.026592, 0.025322, 0.024042, 0.022761, 0.021489, 0.020234, 0.019002, 0.017799,
	0.016630, 0.015499, 0.014409, 0.013362, 0.012361, 0.011407, 0.010500, 0.009641, 0.008830, 0.008067,
	0.007351, 0.006681, 0.006056, 0.005475, 0.004936, 0.004437, 0.003978, 0.003555, 0.003168, 0.002814,
	0.002492, 0.002199, 0.001934, 0.001695, 0.001481, 0.001288, 0.001116, 0.000963, 0.000828, 0.000708,
	0.000603, 0.000511, 0.000431, 0.000361, 0.000301, 0.000250, 0.000206, 0.000168, 0.000137, 0.000110,
	0.000088, 0.000070, 0.000055, 0.000043, 0.000033, 0.000025, 0.000019, 0.000014, 0.000010, 0.000007,
	0.000005, 0.000004, 0.000002, 0.000002, 0.000001, 0.000001, 0.000000, 0.000000, 0.000000, 0.000000,
	0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000,
}

var beta4Distribution = [100]float64{
	0.003996, 0.007596, 0.010824, 0.013703, 0.016255, 0.018501, 0.020460, 0.022153, 0.023597, 0.024809,
	0.025807, 0.026607, 0.027223, 0.027671, 0.027963, 0.028114, 0.028135, 0.028038, 0.027834, 0.027535,
	0.027149, 0.026687, 0.026157, 0.025567, 0.024926, 0.024240, 0.023517, 0.022763, 0.021983, 0.021184,
	0.020371, 0.019548, 0.018719, 0.017890, 0.017062, 0.016241, 0.015428, 0.014627, 0.013839, 0.013068,
	0.012315, 0.011582, 0.010870, 0.010181, 0.009515, 0.008874, 0.008258, 0.007668, 0.007103, 0.006565,
	0.006053, 0.005567, 0.005107, 0.004673, 0.004264, 0.003880, 0.003521, 0.003185, 0.002872, 0.002581,
	0.002312, 0.002064, 0.001835, 0.001626, 0.001434, 0.001260, 0.001102, 0.000959, 0.000830, 0.000715,
	0.000612, 0.000521, 0.000440, 0.000369, 0.000308, 0.000254, 0.000208, 0.000169, 0.000136, 0.000108,
	0.000084, 0.000065, 0.000050, 0.000037, 0.000027, 0.000019, 0.000014, 0.000009, 0.000006, 0.000004,
	0.000002, 0.000001, 0.000001, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000, 0.000000,
}

var single10Distribution = [100]float64{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 1,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

var single15Distribution = [100]float64{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 1, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

var single20Distribution = [100]float64{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 1,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

type PyinConfig struct {
	SampleRate   float64
	MinFrequency float64
	MaxFrequency float64
	FrameLen     int
	Hop          int

	// Resolution is the pitch-bin spacing in semitones; the HMM uses
	// ceil(1/Resolution) bins per semitone.
	Resolution float64
	// Distribution weights the 100-threshold sweep; Beta2 is the reference
	// default.
	Distribution ThresholdDistribution
	// MaxTransitionRate bounds how many octaves per second a voiced pitch
	// may move, which in turn bounds the Viterbi transition matrix's width.
	MaxTransitionRate float64
}

func DefaultPyinConfig(sampleRate float64) PyinConfig {
	return PyinConfig{
		SampleRate:        sampleRate,
		MinFrequency:      50,
		MaxFrequency:      1000,
		FrameLen:          2048,
		Hop:               256,
		Resolution:        0.1,
		Distribution:      ThresholdBeta2,
		MaxTransitionRate: 35.92,
	}
}

func (cfg PyinConfig) binsPerSemitone() int {
	return int(math.Ceil(1.0 / cfg.Resolution))
}

// PyinFrame is one frame's decoded result.
type PyinFrame struct {
	Frequency   float64
	Voiced      bool
	Periodicity float64
}

// pitchBins builds the log-spaced frequency bin centers used for the HMM
// state space: ceil(12*binsPerSemitone*log2(fMax/fMin))+1 bins between
// MinFrequency and MaxFrequency.
func pitchBins(cfg PyinConfig) []float64 {
	binsPerSemitone := cfg.binsPerSemitone()
	n := int(math.Ceil(12*float64(binsPerSemitone)*math.Log2(cfg.MaxFrequency/cfg.MinFrequency))) + 1
	bins := make([]float64, n)
	for i := range bins {
		bins[i] = cfg.MinFrequency * math.Exp2(float64(i)/(12*float64(binsPerSemitone)))
	}
	return bins
}

// firstAscentIndex returns the index of the first element in signal smaller
// than its successor (the first point where a descent turns into an ascent,
// i.e. a local minimum), or 0 if signal never ascends.
func firstAscentIndex(signal []float64) int {
	for i := 0; i+1 < len(signal); i++ {
		if signal[i] < signal[i+1] {
			return i
		}
	}
	return 0
}

// framePeakProbabilities sweeps the 100 weighted thresholds across one
// frame's d' curve (restricted to [minLag, maxLag]), assigning each
// threshold's first qualifying local minimum that distribution weight. The
// single best (lowest) minimum found across the sweep also receives a small
// residual so the row never collapses to all zeros.
func framePeakProbabilities(dPrime []float64, minLag, maxLag int, dist *[100]float64) (peakProb []float64, minIndex int) {
	yinFrame := dPrime[minLag : maxLag+1]
	peakProb = make([]float64, len(yinFrame))
	if len(yinFrame) < 3 {
		return peakProb, 0
	}

	thresholdIndex := len(dist) - 1
	index := 2
	minIndex = 0
	minVal := 42.0

	for index < len(yinFrame) {
		if yinFrame[index] < 0.01*float64(thresholdIndex+1) {
			index += firstAscentIndex(yinFrame[index:])

			if yinFrame[index] < minVal && index > 2 {
				minVal = yinFrame[index]
				minIndex = index
			}
			peakProb[index] += dist[thresholdIndex]
			if thresholdIndex == 0 {
				break
			}
			thresholdIndex--
		} else {
			index++
		}
	}

	if minIndex > 0 {
		sum := 0.0
		for _, p := range peakProb {
			sum += p
		}
		peakProb[minIndex] += (1.0 - sum) * 0.01
	}
	return peakProb, minIndex
}

// emissionRow turns one frame's peak probabilities into a 2*len(bins) state
// emission row: each nonzero peak is refined by parabolic interpolation,
// converted to frequency, and assigned to its nearest pitch bin; the
// mirrored unvoiced half of the row absorbs whatever mass isn't accounted
// for by voiced candidates.
func emissionRow(peakProb []float64, dPrime []float64, minLag, maxLag int, bins []float64, cfg PyinConfig) float64Row {
	n := len(bins)
	binsPerSemitone := cfg.binsPerSemitone()
	row := make([]float64, 2*n)

	for localIdx, p := range peakProb {
		if p == 0 {
			continue
		}
		tau := minLag + localIdx
		refined := parabolicInterpolate(dPrime, tau, minLag, maxLag)
		if refined <= 0 {
			continue
		}
		f0 := cfg.SampleRate / refined
		if f0 < cfg.MinFrequency || f0 > cfg.MaxFrequency {
			continue
		}
		bin := int(math.Round(12 * float64(binsPerSemitone) * math.Log2(f0/cfg.MinFrequency)))
		if bin < 0 {
			bin = 0
		}
		if bin > n {
			bin = n
		}
		if bin == n {
			bin = n - 1
		}
		row[bin] += p
	}

	voicedProb := 0.0
	for i := 0; i < n; i++ {
		voicedProb += row[i]
	}
	if voicedProb < 0 {
		voicedProb = 0
	}
	if voicedProb > 1 {
		voicedProb = 1
	}
	if n > 0 {
		share := (1 - voicedProb) / float64(n)
		for i := 0; i < n; i++ {
			row[n+i] = share
		}
	}
	return float64Row{values: row, voicedProb: voicedProb}
}

// float64Row pairs an emission row with the frame's total voiced mass, which
// feeds the reported periodicity once a state is decoded for the frame.
type float64Row struct {
	values     []float64
	voicedProb float64
}

// transitionEdge is one weighted (from, to) edge of the sparse Viterbi
// transition matrix.
type transitionEdge struct {
	from, to int
	weight   float64
}

// localizedTransitionMatrix builds the sparse transition matrix over
// 2*stateCount states (voiced/unvoiced per pitch bin): within a
// transitionWidth-wide triangular window around each bin, weight is highest
// at zero semitone movement and falls off linearly; crossing the
// voiced/unvoiced boundary always carries a 0.01 share of that weight (0.99
// share for staying within the same voicing).
func localizedTransitionMatrix(stateCount, transitionWidth int) []transitionEdge {
	var result []transitionEdge
	half := transitionWidth / 2

	for state := 0; state < stateCount; state++ {
		theoreticalMin := float64(state) - float64(transitionWidth)/2.0
		minNext := state - half
		if minNext < 0 {
			minNext = 0
		}
		maxNext := state + half
		if maxNext > stateCount-1 {
			maxNext = stateCount - 1
		}

		weights := make([]float64, 0, maxNext-minNext)
		for i := minNext; i < maxNext; i++ {
			var w float64
			if i <= state {
				w = float64(i) - theoreticalMin + 1.0
			} else {
				w = float64(state) - theoreticalMin + 1.0 - float64(i-state)
			}
			weights = append(weights, w)
		}
		normalizeWeights(weights)

		for i, w := range weights {
			to := i + minNext
			result = append(result, transitionEdge{from: state, to: to, weight: w * 0.99})
			result = append(result, transitionEdge{from: state, to: to + stateCount, weight: w * 0.01})
			result = append(result, transitionEdge{from: state + stateCount, to: to, weight: w * 0.01})
			result = append(result, transitionEdge{from: state + stateCount, to: to + stateCount, weight: w * 0.99})
		}
	}
	return result
}

func normalizeWeights(w []float64) {
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	if sum > 0 {
		for i := range w {
			w[i] /= sum
		}
		return
	}
	if len(w) > 0 {
		share := 1.0 / float64(len(w))
		for i := range w {
			w[i] = share
		}
	}
}

// Pyin runs the full pipeline over a signal: frame it, threshold-sweep each
// frame into an emission row, then Viterbi-decode the most likely state
// sequence through the voiced/unvoiced HMM.
func Pyin(signal []float64, cfg PyinConfig) []PyinFrame {
	minLag := int(cfg.SampleRate / cfg.MaxFrequency)
	maxLag := int(cfg.SampleRate / cfg.MinFrequency)
	if maxLag >= cfg.FrameLen {
		maxLag = cfg.FrameLen - 1
	}
	if minLag < 1 {
		minLag = 1
	}

	bins := pitchBins(cfg)
	dist := cfg.Distribution.table()
	window := hannWindow(cfg.FrameLen)
	frames := Frames(signal, cfg.FrameLen, cfg.Hop)

	rows := make([]float64Row, len(frames))
	for i, frame := range frames {
		windowed := applyWindow(frame, window)
		dPrime := cumulativeMeanNormalizedDifference(windowed, maxLag)
		peakProb, _ := framePeakProbabilities(dPrime, minLag, maxLag, dist)
		rows[i] = emissionRow(peakProb, dPrime, minLag, maxLag, bins, cfg)
	}

	n := len(bins)
	binsPerSemitone := cfg.binsPerSemitone()
	maxSemitonesPerFrame := int(math.Round(cfg.MaxTransitionRate * 12 * float64(cfg.Hop) / cfg.SampleRate))
	transitionWidth := maxSemitonesPerFrame*binsPerSemitone + 1
	transitions := localizedTransitionMatrix(n, transitionWidth)

	states := viterbiDecode(rows, n, transitions)

	out := make([]PyinFrame, len(states))
	for i, s := range states {
		voiced := s < n
		bin := s
		if !voiced {
			bin = s - n
		}
		out[i] = PyinFrame{
			Frequency:   bins[bin],
			Voiced:      voiced,
			Periodicity: 1 - rows[i].voicedProb,
		}
	}
	return out
}

// viterbiDecode runs the forward Viterbi pass over the sparse transition
// matrix, renormalizing the per-frame probability vector at every step to
// avoid underflow over long recordings, then backtracks the highest-scoring
// final state through the recorded psi pointers.
func viterbiDecode(rows []float64Row, n int, transitions []transitionEdge) []int {
	if len(rows) == 0 {
		return nil
	}
	numStates := 2 * n

	psi := make([][]int, len(rows))
	psi[0] = make([]int, numStates)

	t1 := make([]float64, numStates)
	init := 1.0 / float64(n)
	for s := range t1 {
		t1[s] = init * rows[0].values[s]
	}
	normalizeWeights(t1)

	t2 := make([]float64, numStates)
	for frame := 1; frame < len(rows); frame++ {
		psi[frame] = make([]int, numStates)
		for i := range t2 {
			t2[i] = 0
		}

		for _, e := range transitions {
			v := t1[e.from] * e.weight
			if v > t2[e.to] {
				t2[e.to] = v
				psi[frame][e.to] = e.from
			}
		}

		row := rows[frame].values
		for s := range t2 {
			t2[s] *= row[s]
		}
		normalizeWeights(t2)
		t1, t2 = t2, t1
	}

	path := make([]int, len(rows))
	bestState, bestValue := numStates-1, 0.0
	for s, v := range t1 {
		if v > bestValue {
			bestValue = v
			bestState = s
		}
	}
	path[len(path)-1] = bestState
	for frame := len(path) - 1; frame > 0; frame-- {
		path[frame-1] = psi[frame][path[frame]]
	}
	return path
}
