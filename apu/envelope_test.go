package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvelopeReleaseDecaysToZero(t *testing.T) {
	root := NewRoot()
	env := NewEnvelope(root.DSP)
	env.SetLevel(100)
	env.KeyOff()

	for i := 0; i < 20; i++ {
		env.Tick()
	}

	assert.Equal(t, int32(0), env.Level())
}

func TestEnvelopeAttackRampsUp(t *testing.T) {
	root := NewRoot()
	env := NewEnvelope(root.DSP)
	env.SetADSR0(0x80 | 0x0F) // enable ADSR, fast attack rate
	env.SetADSR1(0x00)
	env.KeyOn()
	env.ResetLevel()

	for i := 0; i < 50; i++ {
		env.Tick()
	}

	assert.Greater(t, env.Level(), int32(0))
}

func TestEnvelopeNeverExceedsMaxLevel(t *testing.T) {
	root := NewRoot()
	env := NewEnvelope(root.DSP)
	env.SetADSR0(0x80 | 0x0F)
	env.SetADSR1(0x00)
	env.KeyOn()
	env.ResetLevel()

	for i := 0; i < 500; i++ {
		env.Tick()
		assert.LessOrEqual(t, env.Level(), int32(0x7FF))
		assert.GreaterOrEqual(t, env.Level(), int32(0))
	}
}

func TestEnvelopeGainModeDirectSet(t *testing.T) {
	root := NewRoot()
	env := NewEnvelope(root.DSP)
	env.SetADSR0(0x00) // ADSR disabled, GAIN mode
	env.SetGain(0x60)  // direct mode: top 3 bits < 4
	env.KeyOn()
	env.ResetLevel()
	env.Tick()

	assert.Equal(t, int32(0x60*0x10), env.Level())
}
