// blarggfilter.go - post-process bass-reduction filter for final output.
//
// Ported from original_source's blargg_spc_filter.rs (itself a port of
// blargg's SPC_Filter.cpp): a two-point FIR low-pass feeding a leaky-
// integrator high-pass, run independently per stereo channel over whatever
// PCM the ring buffer produces. Real hardware output already passes
// through an RC low-pass on the console's audio board; this approximates
// that external coloration rather than anything inside the DSP itself.
package apu

const (
	BlarggGainUnit = 0x100
	BlarggBassNone = 0
	BlarggBassNorm = 8
	BlarggBassMax  = 31
)

type blarggFilterChannel struct {
	p1, pp1, sum int32
}

// BlarggFilter applies the console's external output coloration to a
// stream of stereo PCM samples.
type BlarggFilter struct {
	gain int32
	bass int32
	ch   [2]blarggFilterChannel
}

func NewBlarggFilter(gain, bass int32) *BlarggFilter {
	return &BlarggFilter{gain: gain, bass: bass}
}

func (f *BlarggFilter) Clear() { f.ch = [2]blarggFilterChannel{} }

func (f *BlarggFilter) SetGain(gain int32) { f.gain = gain }
func (f *BlarggFilter) SetBass(bass int32) { f.bass = bass }

// Run filters one channel's samples in place.
func (f *BlarggFilter) Run(channel int, io []int16) {
	c := &f.ch[channel]
	sum, pp1, p1 := c.sum, c.pp1, c.p1

	for i, raw := range io {
		sm := int32(raw)

		fv := sm + p1
		p1 = sm * 3

		delta := fv - pp1
		pp1 = fv
		s := sum >> 10 // GAIN_BITS(8) + 2
		sum += (delta * f.gain) - (sum >> f.bass)

		io[i] = int16(clamp(s))
	}

	c.sum, c.pp1, c.p1 = sum, pp1, p1
}
