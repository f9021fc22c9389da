// rates.go - the global rate-counter table shared by envelopes and the
// noise LFSR. Ported verbatim from the reference DSP's COUNTER_RATES /
// COUNTER_OFFSETS tables; rate 0 never fires.
package apu

const counterRange int32 = 30720

var counterRates = [32]int32{
	counterRange + 1,
	2048, 1536, 1280, 1024, 768, 640, 512, 384, 320, 256, 192, 160, 128, 96,
	80, 64, 48, 40, 32, 24, 20, 16, 12, 10, 8, 6, 5, 4, 3, 2, 1,
}

var counterOffsets = [32]int32{
	0, 0, 1040, 536, 0, 1040, 536, 0, 1040, 536, 0, 1040, 536, 0, 1040,
	536, 0, 1040, 536, 0, 1040, 536, 0, 1040, 536, 0, 1040, 536, 0, 1040, 0, 0,
}

// readCounter reports whether the given rate index is still "holding" (true)
// or has just fired (false) at the DSP's current counter value. Rate 0
// always reports holding, disabling its consumer.
func (d *DSP) readCounter(rate int32) bool {
	if rate == 0 {
		return true
	}
	return (d.counter+counterOffsets[rate])%counterRates[rate] != 0
}
