// voice.go - one of the DSP's eight sample-playback voices.
//
// The reference emulator computes a whole output sample's worth of voice
// work in a single render_sample() call, with inline "// voiceN" comments
// marking where real hardware would have spread the work across distinct
// DSP cycle slots. This port splits render_sample along exactly those
// comment boundaries into voice1..voice9 (and voice3a/3b/3c) methods, which
// dsp.go's cycle dispatch table (see Dsp.stepCycle) invokes in the same
// per-cycle order the hardware datasheet describes. State that would have
// lived on the Rust stack between those comment blocks becomes the pending*
// fields below, carried across cycles for one voice's current output
// sample.
package apu

const resampleBufferLen = 12

type ResamplingMode int

const (
	ResampleLinear ResamplingMode = iota
	ResampleGaussian
	ResampleCubic
	ResampleSinc
	ResampleAccurate
)

// VoiceOutput is one voice's contribution to the current output sample.
type VoiceOutput struct {
	Left, Right, LastVoiceOut int32
}

type Voice struct {
	dsp  *DSP
	root *Root

	Envelope *Envelope

	VolLeft, VolRight   int8
	PitchLow, PitchHigh uint8
	Source              uint8
	PitchMod            bool
	NoiseOn             bool
	EchoOn              bool

	sampleStartAddress uint32
	loopStartAddress   uint32
	brr                brrDecoder
	sampleAddress      uint32
	sampleOffset       uint32
	samplePos          int32
	SampleBlockIndex   int

	edgeHit     bool
	sampleFrame int
	endxBit     bool
	endxLatch   bool
	outxValue   uint8
	envxValue   uint8
	konDelay    uint8

	ResamplingMode    ResamplingMode
	resampleBuffer    [2 * resampleBufferLen]int32
	resampleBufferPos int

	IsMuted bool
	IsSolod bool

	everyOtherSample bool
	LKon             bool
	LKof             bool
	konQueued        bool
	konLatched       bool
	kofQueued        bool

	// cross-cycle scratch for the output sample currently in flight.
	pendingPitch      int32
	nextSampleAddress uint32
	pendingSample     int32
	pendingEnvx       uint8
	looped            bool
	pendingOutx       uint8
	lastRet           VoiceOutput
}

func NewVoice(dsp *DSP, root *Root) *Voice {
	v := &Voice{dsp: dsp, root: root}
	v.Envelope = NewEnvelope(dsp)
	return v
}

func (v *Voice) SetPitchHigh(value uint8) { v.PitchHigh = value & 0x3F }

// tickLatches refreshes the source-directory shadow addresses immediately,
// used when applying a loaded snapshot so playback resumes from the
// snapshot's source register without waiting a full voice1 cycle.
func (v *Voice) tickLatches() {
	v.sampleStartAddress = v.dsp.readSourceDirStartAddress(int32(v.Source))
	v.loopStartAddress = v.dsp.readSourceDirLoopAddress(int32(v.Source))
}

func (v *Voice) Pitch() uint16 {
	return (uint16(v.PitchHigh)<<8 | uint16(v.PitchLow)) & 0x3FFF
}

func (v *Voice) EdgeDetected() bool {
	r := v.edgeHit
	v.edgeHit = false
	return r
}

func (v *Voice) SampleFrame() int {
	r := v.sampleFrame
	v.sampleFrame++
	return r
}

func (v *Voice) EndxBit() bool { return v.endxBit }

func (v *Voice) ClearEndx() {
	v.endxBit = false
	v.endxLatch = false
}

func (v *Voice) OutxValue() uint8 { return v.outxValue }
func (v *Voice) EnvxValue() uint8 { return v.envxValue }

// voice1 begins a voice's per-sample cycle: the KON/KOF two-phase latch
// transfer (resolved per the documented LKon/KonLatched/KonQueued design),
// followed by the source-directory lookup.
func (v *Voice) voice1() {
	v.everyOtherSample = !v.everyOtherSample
	if !v.everyOtherSample && v.konQueued {
		v.konLatched = false
	}
	v.konQueued = v.konLatched
	if v.LKon {
		v.konLatched = true
		v.LKon = false
	}
	v.kofQueued = v.LKof

	v.sampleStartAddress = v.dsp.readSourceDirStartAddress(int32(v.Source))
	v.loopStartAddress = v.dsp.readSourceDirLoopAddress(int32(v.Source))
}

// voice2 picks the block address that will be used if this voice's BRR
// stream reaches its end this sample.
func (v *Voice) voice2() {
	if v.konDelay != 0 {
		v.nextSampleAddress = v.sampleStartAddress
	} else {
		v.nextSampleAddress = v.loopStartAddress
	}
}

// voice3a assembles the 14-bit pitch value from the latched pitch bytes.
func (v *Voice) voice3a() {
	v.pendingPitch = int32(v.PitchHigh)<<8 | int32(v.PitchLow)
}

// voice3 runs the combined 3a+3b+3c work as a single step. Only voice 0's
// schedule slot needs the split (its cycle 22/25/30 slots interleave with
// echo and state-publish work); voices 1-7 run it atomically.
func (v *Voice) voice3() {
	v.voice3a()
	v.voice3b()
	v.voice3c()
}

// voice3b reads the BRR header byte of the current sample block.
func (v *Voice) voice3b() {
	v.brr.readHeader(v.root.ReadU8(v.sampleAddress))
}

// voice3c applies pitch modulation, runs KON-delay bookkeeping, resamples
// (or substitutes noise), applies the envelope, and evaluates key-on/off.
func (v *Voice) voice3c() {
	pitch := v.pendingPitch
	if v.PitchMod {
		pitch += (v.dsp.lastVoiceOut >> 5) * pitch >> 10
	}
	pitch = int32(uint32(pitch) & 0x7FFF)

	if v.konDelay > 0 {
		if v.konDelay == 5 {
			v.sampleAddress = v.nextSampleAddress
			v.sampleOffset = 0
			v.resampleBufferPos = 0
			v.SampleBlockIndex = 0
			v.sampleFrame = 0
			v.edgeHit = true
			v.brr.readHeader(0)
			v.brr.reset()
		}
		v.konDelay--
		if v.konDelay&3 != 0 {
			v.samplePos = 0x4000
		} else {
			v.samplePos = 0
		}
		pitch = 0
	}

	var sample int32
	if !v.NoiseOn {
		basePos := (v.resampleBufferPos + int(v.samplePos>>12)) % resampleBufferLen
		sample = v.resample(basePos)
	} else {
		sample = int32(int16(v.dsp.noise << 1))
	}

	sample = (sample * v.Envelope.Level() >> 11) &^ 1
	envx := uint8(v.Envelope.Level() >> 4)

	if v.dsp.masterReset || (v.brr.isEnd && !v.brr.isLooping) {
		v.Envelope.KeyOff()
		v.Envelope.SetLevel(0)
	}

	if v.everyOtherSample {
		if v.kofQueued {
			v.Envelope.KeyOff()
		}
		if v.konQueued {
			v.Envelope.KeyOn()
			v.konDelay = 5
		}
	}

	if v.konDelay == 0 {
		v.Envelope.Tick()
	}

	v.pendingSample = sample
	v.pendingEnvx = envx
	v.pendingPitch = pitch
}

// fractional position within the current sample step: samplePos's low 12
// bits (0x000-0xFFF), with the integer sample offset in the bits above.
func (v *Voice) fraction12() int32 { return v.samplePos & 0xFFF }

func (v *Voice) resample(basePos int) int32 {
	switch v.ResamplingMode {
	case ResampleLinear:
		p1 := int16(v.fraction12())
		p2 := int16(0x1000) - p1
		r := interpDot(v.resampleBuffer[basePos:basePos+2], []int16{p1, p2}) >> 12
		return clamp(r) &^ 1
	case ResampleGaussian:
		idx := int((v.fraction12() >> 5) * 4) // 128 positions * 4 taps
		r := interpDot(v.resampleBuffer[basePos:basePos+4], gaussianKernel[idx:idx+4]) >> 11
		return clamp(r) &^ 1
	case ResampleCubic:
		idx := int((v.fraction12() >> 6) * 4) // 64 positions * 4 taps
		r := interpDot(v.resampleBuffer[basePos:basePos+4], cubicKernel[idx:idx+4]) >> 15
		return clamp(r) &^ 1
	case ResampleSinc:
		idx := int((v.fraction12() >> 4) * 8) // 256 positions * 8 taps
		r := interpDot(v.resampleBuffer[basePos:basePos+8], sincKernel[idx:idx+8]) >> 15
		return clamp(r) &^ 1
	default: // ResampleAccurate, same position grid as Gaussian
		idx := int((v.fraction12() >> 5) * 4)
		var sum int32
		for i := 0; i < 4; i++ {
			sum += (v.resampleBuffer[basePos+i] * int32(gaussianKernel[idx+i])) >> 11
			if i == 2 {
				sum = int32(int16(sum & 0xFFFF))
			}
		}
		return clamp(sum) &^ 1
	}
}

// voice4 decodes the next four BRR samples once the fractional sample
// position rolls over, moves to the next (or loop) block once all eight data
// bytes of the current block are consumed, then advances the pitch
// accumulator.
func (v *Voice) voice4() {
	v.looped = false
	if v.samplePos >= 0x4000 {
		v.decodeBrrSamples()
		if v.sampleOffset >= 8 {
			if v.brr.isEnd {
				v.sampleAddress = v.nextSampleAddress
				v.edgeHit = true
				v.looped = true
			} else {
				v.sampleAddress += 9
			}
			v.sampleOffset = 0
			v.SampleBlockIndex++
		}
	}

	v.samplePos = (v.samplePos & 0x3FFF) + v.pendingPitch
	if v.samplePos > 0x7FFF {
		v.samplePos = 0x7FFF
	}
}

func (v *Voice) decodeBrrSamples() {
	b0 := v.root.ReadU8(v.sampleAddress + v.sampleOffset + 1)
	b1 := v.root.ReadU8(v.sampleAddress + v.sampleOffset + 2)
	v.sampleOffset += 2
	v.brr.read(b0, b1)

	for i := 0; i < 4; i++ {
		next := int32(v.brr.readNextSample())
		v.resampleBuffer[v.resampleBufferPos] = next
		v.resampleBuffer[v.resampleBufferPos+resampleBufferLen] = next
		v.resampleBufferPos = (v.resampleBufferPos + 1) % resampleBufferLen
	}
}

// voice5 finalizes this sample's stereo contribution and the ENDX latch.
func (v *Voice) voice5(anySolod bool) VoiceOutput {
	var ret VoiceOutput
	if v.IsSolod || (!v.IsMuted && !anySolod) {
		ret = VoiceOutput{
			Left:         multiplyVolume(v.pendingSample, v.VolLeft),
			Right:        multiplyVolume(v.pendingSample, v.VolRight),
			LastVoiceOut: v.pendingSample,
		}
	}

	if v.looped {
		v.endxLatch = true
	}
	if v.konDelay == 5 {
		v.endxLatch = false
	}

	v.lastRet = ret
	v.dsp.noteVoiceOutput(ret)
	v.dsp.accumulateVoiceOutput(ret, v.EchoOn)
	return ret
}

// voice6 computes the OUTX shadow value from this sample's decoded output.
func (v *Voice) voice6() { v.pendingOutx = uint8(int8(v.pendingSample >> 8)) }

// voice7 latches the outbound ENDX bit.
func (v *Voice) voice7() { v.endxBit = v.endxLatch }

// voice8 commits the OUTX shadow register.
func (v *Voice) voice8() { v.outxValue = v.pendingOutx }

// voice9 commits the ENVX shadow register.
func (v *Voice) voice9() { v.envxValue = v.pendingEnvx }
