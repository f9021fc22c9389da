// dsp.go - the S-DSP master: register decode, the 32-step cycle schedule,
// the global rate counter, and the noise LFSR.
//
// Grounded directly on the reference Dsp struct's cycles_callback 32-case
// match, set_register/get_register address decode, and set_kon/set_kof/
// set_flg/set_pmon/set_non/set_eon/set_endx. The cycle-dispatch switch below
// is kept as a literal 32-case statement, matching the hardware datasheet
// shape, rather than collapsed into a table-driven loop.
package apu

const numVoices = 8

type DSP struct {
	root *Root

	Voices [numVoices]*Voice

	Ring *RingBuffer

	masterVolume Stereo[int8]
	echoVolume   Stereo[int8]
	noiseClock   uint8

	echoWriteEnabled  bool
	lEchoWriteEnabled bool
	echoFeedback      int8
	sourceDir         uint8
	lSourceDir        uint8
	echoStartAddress  uint16
	lEchoStartAddress uint16
	echoAddress       uint16
	echoDelay         uint8
	konCache          uint8
	kofCache          uint8

	counter int32

	cycleCount   int32
	echoPos      int32
	echoLength   int32
	fir          [8]int8
	echoHistory  Stereo[[8]int16]
	echoHistOff  int

	masterReset  bool
	masterMute   bool
	masterOutput Stereo[int32]
	echoInput    Stereo[int32]
	echoOutput   Stereo[int32]

	noise        int32
	lastVoiceOut int32

	resamplingMode ResamplingMode

	// per-sample accumulators: the dry sum of every voice's output (feeds
	// masterOutput) and the sum of only EON-marked voices (added to the echo
	// feedback term and written to the echo buffer, see echo.go echo29).
	voiceSumLeft, voiceSumRight int32
	echoBusLeft, echoBusRight   int32

	StateReceiver StateReceiver
}

func NewDSP(root *Root) *DSP {
	d := &DSP{
		root:           root,
		Ring:           NewRingBuffer(),
		masterReset:    true,
		masterMute:     true,
		noise:          0x4000,
		resamplingMode: ResampleAccurate,
	}
	for i := range d.Voices {
		d.Voices[i] = NewVoice(d, root)
	}
	d.fir = [8]int8{-0x80, -0x01, -0x66, -0x01, 0x67, -0x01, 0x0f, -0x01}
	d.SetResamplingMode(ResampleAccurate)
	return d
}

func (d *DSP) SetResamplingMode(m ResamplingMode) {
	d.resamplingMode = m
	for _, v := range d.Voices {
		v.ResamplingMode = m
	}
}

func (d *DSP) ResamplingMode() ResamplingMode { return d.resamplingMode }

func (d *DSP) calculateEchoLength() int32 { return int32(d.echoDelay) * 0x800 }

// stepCycle advances the DSP by one of the 32 slots in an output sample's
// schedule.
func (d *DSP) stepCycle() {
	d.cycleCount = (d.cycleCount + 1) % 32
	v := d.Voices

	switch d.cycleCount {
	case 0:
		v[0].voice5(d.anySolod())
		v[1].voice2()
	case 1:
		v[0].voice6()
		v[1].voice3()
	case 2:
		v[0].voice7()
		v[1].voice4()
		v[3].voice1()
	case 3:
		v[0].voice8()
		v[1].voice5(d.anySolod())
		v[2].voice2()
	case 4:
		v[0].voice9()
		v[1].voice6()
		v[2].voice3()
	case 5:
		v[1].voice7()
		v[2].voice4()
		v[4].voice1()
	case 6:
		v[1].voice8()
		v[2].voice5(d.anySolod())
		v[3].voice2()
	case 7:
		v[1].voice9()
		v[2].voice6()
		v[3].voice3()
	case 8:
		v[2].voice7()
		v[3].voice4()
		v[5].voice1()
	case 9:
		v[2].voice8()
		v[3].voice5(d.anySolod())
		v[4].voice2()
	case 10:
		v[2].voice9()
		v[3].voice6()
		v[4].voice3()
	case 11:
		v[3].voice7()
		v[4].voice4()
		v[6].voice1()
	case 12:
		v[3].voice8()
		v[4].voice5(d.anySolod())
		v[5].voice2()
	case 13:
		v[3].voice9()
		v[4].voice6()
		v[5].voice3()
	case 14:
		v[4].voice7()
		v[5].voice4()
		v[7].voice1()
	case 15:
		v[4].voice8()
		v[5].voice5(d.anySolod())
		v[6].voice2()
	case 16:
		v[4].voice9()
		v[5].voice6()
		v[6].voice3()
	case 17:
		v[0].voice1()
		v[5].voice7()
		v[6].voice4()
	case 18:
		v[5].voice8()
		v[6].voice5(d.anySolod())
		v[7].voice2()
	case 19:
		v[5].voice9()
		v[6].voice6()
		v[7].voice3()
	case 20:
		v[1].voice1()
		v[6].voice7()
		v[7].voice4()
	case 21:
		v[6].voice8()
		v[7].voice5(d.anySolod())
		v[0].voice2()
	case 22:
		v[0].voice3a()
		v[6].voice9()
		v[7].voice6()
		d.echo22()
		d.state22()
	case 23:
		v[7].voice7()
		d.echo23()
	case 24:
		v[7].voice8()
		d.echo24()
	case 25:
		v[0].voice3b()
		v[7].voice9()
		d.echo25()
	case 26:
		d.echo26()
	case 27:
		d.echo27()
		d.misc27()
	case 28:
		d.echo28()
		d.misc28()
	case 29:
		d.echo29()
		d.misc29()
	case 30:
		d.misc30()
		v[0].voice3c()
		d.echo30()
	case 31:
		v[0].voice4()
		v[2].voice1()
	}
}

func (d *DSP) anySolod() bool {
	for _, v := range d.Voices {
		if v.IsSolod {
			return true
		}
	}
	return false
}

func (d *DSP) noteVoiceOutput(out VoiceOutput) {
	d.lastVoiceOut = int32(int16(out.LastVoiceOut))
}

// accumulateVoiceOutput folds one voice's finalized output into the dry
// master sum and, if the voice is echo-routed, the echo send bus.
func (d *DSP) accumulateVoiceOutput(out VoiceOutput, echoOn bool) {
	d.voiceSumLeft = clamp(castArbInt(d.voiceSumLeft+out.Left, 17))
	d.voiceSumRight = clamp(castArbInt(d.voiceSumRight+out.Right, 17))
	if echoOn {
		d.echoBusLeft = clamp(castArbInt(d.echoBusLeft+out.Left, 17))
		d.echoBusRight = clamp(castArbInt(d.echoBusRight+out.Right, 17))
	}
}

// finalizeMasterOutput scales the accumulated dry voice sum by the master
// volume and resets the accumulator for the next output sample. Called once
// all eight voices have run their voice5 step (by cycle 22).
func (d *DSP) finalizeMasterOutput() {
	*d.masterOutput.Left() = multiplyVolume(d.voiceSumLeft, *d.masterVolume.Left())
	*d.masterOutput.Right() = multiplyVolume(d.voiceSumRight, *d.masterVolume.Right())
	d.voiceSumLeft, d.voiceSumRight = 0, 0
}

// misc27-30: per-sample bookkeeping outside the voice/echo pipelines.
func (d *DSP) misc27() {}

func (d *DSP) misc28() {
	d.sourceDir = d.lSourceDir
}

// misc29 has no DSP-global work left: the hardware's every-other-sample
// flip-flop is tracked per voice (see Voice.everyOtherSample in voice1),
// since KON/KOF latching only ever needs a single voice's own phase.
func (d *DSP) misc29() {}

func (d *DSP) misc30() {
	d.counter--
	if d.counter < 0 {
		d.counter = counterRange - 1
	}
	if !d.readCounter(int32(d.noiseClock)) {
		feedback := (d.noise << 13) ^ (d.noise << 14)
		d.noise = (feedback & 0x4000) ^ (d.noise >> 1)
	}
}

func (d *DSP) readSourceDirStartAddress(index int32) uint32 {
	return d.readSourceDirAddress(index, 0)
}

func (d *DSP) readSourceDirLoopAddress(index int32) uint32 {
	return d.readSourceDirAddress(index, 2)
}

func (d *DSP) readSourceDirAddress(index, offset int32) uint32 {
	dirAddr := int32(d.sourceDir) * 0x100
	entryAddr := uint32(dirAddr + index*4)
	ret := uint32(d.root.ReadU8(entryAddr + uint32(offset)))
	ret |= uint32(d.root.ReadU8(entryAddr+uint32(offset)+1)) << 8
	return ret
}

// SetRegister implements the 128-entry DSP register write decode.
func (d *DSP) SetRegister(address uint8, value uint8) {
	if address&0x80 != 0 {
		return
	}
	voiceIndex := address >> 4
	voiceAddr := address & 0x0F

	if voiceAddr < 0x0A {
		if voiceAddr < 8 {
			v := d.Voices[voiceIndex]
			switch voiceAddr {
			case 0x00:
				v.VolLeft = int8(value)
			case 0x01:
				v.VolRight = int8(value)
			case 0x02:
				v.PitchLow = value
			case 0x03:
				v.SetPitchHigh(value)
			case 0x04:
				v.Source = value
				v.edgeHit = true
			case 0x05:
				v.Envelope.SetADSR0(value)
			case 0x06:
				v.Envelope.SetADSR1(value)
			case 0x07:
				v.Envelope.SetGain(value)
			}
		}
		return
	}
	if voiceAddr == 0x0F {
		d.fir[voiceIndex] = int8(value)
		return
	}

	switch address {
	case 0x0C:
		*d.masterVolume.Left() = int8(value)
	case 0x1C:
		*d.masterVolume.Right() = int8(value)
	case 0x2C:
		*d.echoVolume.Left() = int8(value)
	case 0x3C:
		*d.echoVolume.Right() = int8(value)
	case 0x4C:
		d.setKon(value)
	case 0x5C:
		d.setKof(value)
	case 0x6C:
		d.setFlg(value)
	case 0x7C:
		d.setEndx()
	case 0x0D:
		d.echoFeedback = int8(value)
	case 0x2D:
		d.setPmon(value)
	case 0x3D:
		d.setNon(value)
	case 0x4D:
		d.setEon(value)
	case 0x5D:
		d.lSourceDir = value
	case 0x6D:
		d.lEchoStartAddress = uint16(value) << 8
	case 0x7D:
		d.echoDelay = value & 0x0F
	}
}

// GetRegister implements the matching read decode.
func (d *DSP) GetRegister(address uint8) uint8 {
	address &= 0x7F
	voiceIndex := address >> 4
	voiceAddr := address & 0x0F

	if voiceAddr < 0x0A {
		v := d.Voices[voiceIndex]
		switch voiceAddr {
		case 0x00:
			return uint8(v.VolLeft)
		case 0x01:
			return uint8(v.VolRight)
		case 0x02:
			return v.PitchLow
		case 0x03:
			return v.PitchHigh & 0x3F
		case 0x04:
			return v.Source
		case 0x05:
			return v.Envelope.lAdsr0
		case 0x06:
			return v.Envelope.adsr1
		case 0x07:
			return v.Envelope.gain
		case 0x08:
			return v.EnvxValue()
		case 0x09:
			return v.OutxValue()
		}
		return 0
	}
	if voiceAddr == 0x0F {
		return uint8(d.fir[voiceIndex])
	}

	switch address {
	case 0x0C:
		return uint8(*d.masterVolume.Left())
	case 0x1C:
		return uint8(*d.masterVolume.Right())
	case 0x2C:
		return uint8(*d.echoVolume.Left())
	case 0x3C:
		return uint8(*d.echoVolume.Right())
	case 0x4C:
		return d.konCache
	case 0x5C:
		return d.kofCache
	case 0x6C:
		return d.getFlg()
	case 0x7C:
		return d.getEndx()
	case 0x0D:
		return uint8(d.echoFeedback)
	case 0x2D:
		return d.getPmon()
	case 0x3D:
		return d.getNon()
	case 0x4D:
		return d.getEon()
	case 0x5D:
		return d.lSourceDir
	case 0x6D:
		return uint8(d.lEchoStartAddress >> 8)
	case 0x7D:
		return d.echoDelay
	}
	return 0
}

func (d *DSP) setKon(mask uint8) {
	d.konCache = mask
	for i := 0; i < numVoices; i++ {
		if mask&(1<<i) != 0 {
			d.Voices[i].LKon = true
		}
	}
}

func (d *DSP) setKof(mask uint8) {
	d.kofCache = mask
	for i := 0; i < numVoices; i++ {
		d.Voices[i].LKof = mask&(1<<i) != 0
	}
}

func (d *DSP) setFlg(value uint8) {
	d.noiseClock = value & 0x1F
	d.lEchoWriteEnabled = value&0x20 == 0
	d.masterMute = value&0x40 != 0
	d.masterReset = value&0x80 != 0
}

func (d *DSP) getFlg() uint8 {
	result := d.noiseClock
	if !d.lEchoWriteEnabled {
		result |= 0x20
	}
	if d.masterMute {
		result |= 0x40
	}
	if d.masterReset {
		result |= 0x80
	}
	return result
}

func (d *DSP) setPmon(mask uint8) {
	d.Voices[0].PitchMod = false
	for i := 1; i < numVoices; i++ {
		d.Voices[i].PitchMod = mask&(1<<i) != 0
	}
}

func (d *DSP) getPmon() uint8 {
	var result uint8
	for i := 1; i < numVoices; i++ {
		if d.Voices[i].PitchMod {
			result |= 1 << i
		}
	}
	return result
}

func (d *DSP) setNon(mask uint8) {
	for i := 0; i < numVoices; i++ {
		d.Voices[i].NoiseOn = mask&(1<<i) != 0
	}
}

func (d *DSP) getNon() uint8 {
	var result uint8
	for i := 0; i < numVoices; i++ {
		if d.Voices[i].NoiseOn {
			result |= 1 << i
		}
	}
	return result
}

func (d *DSP) setEon(mask uint8) {
	for i := 0; i < numVoices; i++ {
		d.Voices[i].EchoOn = mask&(1<<i) != 0
	}
}

func (d *DSP) getEon() uint8 {
	var result uint8
	for i := 0; i < numVoices; i++ {
		if d.Voices[i].EchoOn {
			result |= 1 << i
		}
	}
	return result
}

func (d *DSP) setEndx() {
	for _, v := range d.Voices {
		v.ClearEndx()
	}
}

func (d *DSP) getEndx() uint8 {
	var result uint8
	for i, v := range d.Voices {
		if v.EndxBit() {
			result |= 1 << i
		}
	}
	return result
}
