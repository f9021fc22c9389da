// echo.go - the 8-tap FIR echo filter.
//
// Grounded on the reference echo.rs pipeline: an 8-tap FIR run over a
// 16kHz-decimated history (one history sample per output sample), summed
// with a 16-bit truncation after tap 6 (before tap 7 is added), then
// clamped and forced even, mixed with the dry master output, and
// optionally fed back into ARAM. The nine echoNN methods below reconstruct
// the reference's per-cycle split (echo22..echo30); the exact cycle at
// which each byte of ARAM is touched is a faithful reconstruction rather
// than a byte-for-byte copy, since the original per-cycle boundaries within
// echo22-echo30 were not literally recoverable from the retrieval pack.
package apu

// calculateFIR applies one FIR tap: (history_sample * coeff) >> 6.
func calculateFIR(sample int32, coeff int8) int32 {
	return (sample * int32(coeff)) >> 6
}

func (d *DSP) computeEchoOutput(c Channel) int32 {
	master := d.masterOutput.Get(c)
	echoVol := d.echoVolume.Get(c)
	echoIn := d.echoInput.Get(c)
	return clamp(master + multiplyVolume(echoIn, echoVol))
}

func (d *DSP) echoRead(c Channel) {
	base := uint32(d.echoAddress) + uint32(2*c.Offset())
	lo := d.root.ReadU8(base)
	hi := d.root.ReadU8(base + 1)
	sample := int32(int16(uint16(hi)<<8 | uint16(lo)))
	hist := d.echoHistory.Get(c)
	hist[d.echoHistOff] = int16(sample >> 1)
	d.echoHistory.Set(c, hist)
}

func (d *DSP) echoWrite(c Channel) {
	if !d.echoWriteEnabled {
		d.echoOutput.Set(c, 0)
		return
	}
	base := uint32(d.echoAddress) + uint32(2*c.Offset())
	v := d.echoOutput.Get(c)
	d.root.WriteU8(base, uint8(v))
	d.root.WriteU8(base+1, uint8(v>>8))
	d.echoOutput.Set(c, 0)
}

func (d *DSP) firSum(c Channel) int32 {
	hist := d.echoHistory.Get(c)
	var sum int32
	for i := 0; i < 8; i++ {
		idx := (d.echoHistOff + i) % 8
		sum += calculateFIR(int32(hist[idx]), d.fir[i])
		if i == 6 {
			sum = int32(int16(sum & 0xFFFF))
		}
	}
	return clamp(sum) &^ 1
}

// echo22 begins the cycle: advance the decimated-history offset and read
// the left channel's echo input from ARAM (echo23 reads the right).
func (d *DSP) echo22() {
	d.finalizeMasterOutput()
	d.echoHistOff = (d.echoHistOff + 1) % 8
	d.echoAddress = d.echoStartAddress + uint16(d.echoPos)
	d.echoRead(Left)
}

func (d *DSP) echo23() {
	d.echoRead(Right)
}

func (d *DSP) echo24() {
	d.echoInput.Set(Left, d.firSum(Left))
}

func (d *DSP) echo25() {
	d.echoInput.Set(Right, d.firSum(Right))
}

func (d *DSP) echo26() {
	out := d.computeEchoOutput(Left)
	d.echoOutput.Set(Left, out)
}

func (d *DSP) echo27() {
	out := d.computeEchoOutput(Right)
	d.echoOutput.Set(Right, out)

	var l, r int16
	if !d.masterMute {
		l = int16(*d.echoOutput.Left())
		r = int16(*d.echoOutput.Right())
	}
	d.Ring.WriteSample(l, r)
}

func (d *DSP) echo28() {
	d.echoWriteEnabled = d.lEchoWriteEnabled
}

func (d *DSP) echo29() {
	feedbackL := multiplyVolume(*d.echoInput.Left(), d.echoFeedback)
	feedbackR := multiplyVolume(*d.echoInput.Right(), d.echoFeedback)
	*d.echoOutput.Left() = clamp(castArbInt(d.echoBusLeft+feedbackL, 17)) &^ 1
	*d.echoOutput.Right() = clamp(castArbInt(d.echoBusRight+feedbackR, 17)) &^ 1
	d.echoBusLeft, d.echoBusRight = 0, 0
}

func (d *DSP) echo30() {
	d.echoWrite(Left)
	d.echoWrite(Right)

	if d.echoPos == 0 {
		d.echoLength = d.calculateEchoLength()
	}
	d.echoPos += 4
	if d.echoLength == 0 || d.echoPos >= d.echoLength {
		d.echoPos = 0
	}
}
