package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingScriptHost struct {
	portAccesses int
	cycles       int
}

func (h *recordingScriptHost) OnPortAccess(addr uint32, value uint8, isWrite bool) {
	h.portAccesses++
}
func (h *recordingScriptHost) OnCycle(cycle int)        { h.cycles++ }
func (h *recordingScriptHost) ReadRAM(addr uint32) uint8 { return 0 }

func TestScriptHostReceivesPortAccessAndCycleHooks(t *testing.T) {
	root := NewRoot()
	host := &recordingScriptHost{}
	root.ScriptHost = host

	root.WriteU8(0x00F4, 0x42)
	root.ReadU8(0x00F4)
	root.Step(10)

	assert.Greater(t, host.portAccesses, 0)
	assert.Equal(t, 10, host.cycles)
}

func TestIOPageControlRegisterEnablesTimers(t *testing.T) {
	root := NewRoot()
	root.WriteU8(0x00FA, 0x01) // timer 0 target
	root.WriteU8(0x00F1, 0x01) // enable timer 0

	// timer 0's pre-divider is 128; a stage-3 increment needs
	// divider*target host cycles once enabled.
	for i := 0; i < 128*2; i++ {
		root.Step(1)
	}

	assert.NotEqual(t, uint8(0), root.ReadU8(0x00FD))
}

func TestClearEchoBufferFillsRegion(t *testing.T) {
	root := NewRoot()
	root.DSP.SetRegister(0x6D, 0x10) // echo start address = 0x1000
	root.DSP.SetRegister(0x7D, 0x02) // echo delay -> length = 2*0x800
	root.DSP.echoStartAddress = root.DSP.lEchoStartAddress
	root.WriteU8(0x0FFF, 0x77) // just before the region, must be untouched
	root.WriteU8(0x1000, 0x00)
	root.WriteU8(0x1FFF, 0x00)

	root.ClearEchoBuffer()

	assert.Equal(t, uint8(0x77), root.ReadU8(0x0FFF))
	assert.Equal(t, uint8(0xFF), root.ReadU8(0x1000))
	assert.Equal(t, uint8(0xFF), root.ReadU8(0x1FFF))
}

func TestClearEchoBufferSkippedWhenWritesDisabled(t *testing.T) {
	root := NewRoot()
	root.DSP.SetRegister(0x6D, 0x10)
	root.DSP.SetRegister(0x7D, 0x01)
	root.DSP.echoStartAddress = root.DSP.lEchoStartAddress
	root.WriteU8(0x1000, 0x42)
	root.DSP.SetRegister(0x6C, 0x20) // FLG bit 0x20: echo writes disabled

	root.ClearEchoBuffer()

	assert.Equal(t, uint8(0x42), root.ReadU8(0x1000))
}

func TestIPLROMShadowReadback(t *testing.T) {
	root := NewRoot()
	var rom [iplROMSize]byte
	rom[0] = 0xAB
	root.SetIPLROM(rom)
	root.WriteU8(0x00F1, 0x80) // enable IPL shadow

	assert.Equal(t, uint8(0xAB), root.ReadU8(iplROMBase))
}
