package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// With the master reset flag set (the power-on default), stepping the DSP
// through several full 32-cycle schedules must never write a nonzero sample
// into the ring buffer: every voice is forced into release with its
// envelope held at zero.
func TestSilentResetProducesNoOutput(t *testing.T) {
	root := NewRoot()
	assert.True(t, root.DSP.masterReset)

	for i := 0; i < 32*200; i++ {
		root.Step(1)
	}

	left := make([]int16, root.DSP.Ring.SampleCount())
	right := make([]int16, len(left))
	root.DSP.Ring.Read(left, right)

	for i := range left {
		assert.Equal(t, int16(0), left[i])
		assert.Equal(t, int16(0), right[i])
	}
}

func TestMasterVolumeRegisterRoundTrips(t *testing.T) {
	root := NewRoot()
	root.DSP.SetRegister(0x0C, 0x40) // MVOLL
	root.DSP.SetRegister(0x1C, 0xC0) // MVOLR

	assert.Equal(t, uint8(0x40), root.DSP.GetRegister(0x0C))
	assert.Equal(t, uint8(0xC0), root.DSP.GetRegister(0x1C))
}

func TestNonRegisterSetsVoiceNoiseFlags(t *testing.T) {
	root := NewRoot()
	root.DSP.SetRegister(0x6C, 0x00) // FLG: clear master reset/mute
	root.DSP.SetRegister(0x3D, 0xFF) // NON: enable noise on all voices

	for i, v := range root.DSP.Voices {
		assert.True(t, v.NoiseOn, "voice %d should have noise enabled", i)
	}
}
