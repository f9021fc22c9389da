// root.go - the emulator's top-level owning struct.
//
// Root holds ARAM and the IPL ROM as plain fields; the three timers and the
// DSP are separately allocated and held through pointers, and the DSP holds
// its eight voices the same way. The DSP and each voice keep a back-pointer
// to Root (and each voice one to its DSP), which is how cross-component
// access such as a voice reading ARAM is made.
package apu

const (
	aramSize    = 0x10000
	iplROMBase  = 0xFFC0
	iplROMSize  = 0x40
	ioPageStart = 0x00F0
	ioPageEnd   = 0x00FF
)

// ScriptHost is the optional Script700 capability: three hook points into
// the core, with no scripting runtime implemented here (out of scope).
type ScriptHost interface {
	OnPortAccess(addr uint32, value uint8, isWrite bool)
	OnCycle(cycle int)
	ReadRAM(addr uint32) uint8
}

type nopScriptHost struct{}

func (nopScriptHost) OnPortAccess(uint32, uint8, bool) {}
func (nopScriptHost) OnCycle(int)                      {}
func (nopScriptHost) ReadRAM(uint32) uint8              { return 0 }

type Root struct {
	ram        [aramSize]byte
	iplROM     [iplROMSize]byte
	iplEnabled bool

	// input holds host-written bytes the guest reads back (0xF4-0xF7);
	// output holds guest-written bytes the host reads.
	input  [4]byte
	output [4]byte

	timers [3]*Timer

	DSP *DSP

	ScriptHost      ScriptHost
	lastScriptCycle int

	cpuState CPUState
}

func NewRoot() *Root {
	r := &Root{
		timers: [3]*Timer{
			NewTimer(128),
			NewTimer(128),
			NewTimer(16),
		},
		ScriptHost: nopScriptHost{},
	}
	r.DSP = NewDSP(r)
	return r
}

func (r *Root) SetIPLROM(rom [iplROMSize]byte) { r.iplROM = rom }

// ReadU8 resolves an ARAM read, honoring the I/O page and the IPL ROM
// shadow.
func (r *Root) ReadU8(addr uint32) uint8 {
	a := addr & 0xFFFF
	if a >= ioPageStart && a <= ioPageEnd {
		if v, ok := r.readIO(uint8(a - ioPageStart)); ok {
			r.ScriptHost.OnPortAccess(a, v, false)
			return v
		}
	}
	if r.iplEnabled && a >= iplROMBase {
		return r.iplROM[a-iplROMBase]
	}
	return r.ram[a]
}

// WriteU8 writes ARAM, dispatching I/O-page writes to their handlers. Writes
// to the IPL ROM shadow region always land in RAM.
func (r *Root) WriteU8(addr uint32, value uint8) {
	a := addr & 0xFFFF
	if a >= ioPageStart && a <= ioPageEnd {
		r.writeIO(uint8(a-ioPageStart), value)
		r.ScriptHost.OnPortAccess(a, value, true)
	}
	r.ram[a] = value
}

func (r *Root) readIO(reg uint8) (uint8, bool) {
	switch reg {
	case 0x04, 0x05, 0x06, 0x07: // input ports
		return r.input[reg-0x04], true
	case 0x0D, 0x0E, 0x0F: // timer counters FD-FF
		return r.timers[reg-0x0D].ReadCounter(), true
	}
	return 0, false
}

func (r *Root) writeIO(reg uint8, value uint8) {
	switch reg {
	case 0x01: // control register
		r.iplEnabled = value&0x80 != 0
		if value&0x10 != 0 {
			r.input[0] = 0
			r.input[1] = 0
		}
		if value&0x20 != 0 {
			r.input[2] = 0
			r.input[3] = 0
		}
		r.timers[0].SetEnabled(value&0x01 != 0)
		r.timers[1].SetEnabled(value&0x02 != 0)
		r.timers[2].SetEnabled(value&0x04 != 0)
	case 0x00: // test register: 0x0A forces a stage-1 resync
		if value == 0x0A {
			for _, t := range r.timers {
				t.SynchronizeStage1()
			}
		}
	case 0x04, 0x05, 0x06, 0x07: // output ports
		r.output[reg-0x04] = value
	case 0x0A, 0x0B, 0x0C: // timer targets FA-FC
		r.timers[reg-0x0A].SetTarget(value)
	}
}

// SetInput stores a host-driven byte into an input port, as if the host CPU
// had written its side of the port.
func (r *Root) SetInput(port int, value uint8) { r.input[port] = value }

// Output reads back the guest's most recent write to an output port.
func (r *Root) Output(port int) uint8 { return r.output[port] }

// ClearEchoBuffer zero-fills (0xFF) the echo region in ARAM, from the
// current echo start address through the current echo length, skipping
// the fill entirely when FLG reports echo writes disabled.
func (r *Root) ClearEchoBuffer() {
	d := r.DSP
	if d.getFlg()&0x20 != 0 {
		return
	}
	start := int32(d.echoStartAddress)
	end := start + d.calculateEchoLength()
	if end > aramSize {
		end = aramSize
	}
	for i := start; i < end; i++ {
		r.ram[i] = 0xFF
	}
}

// Step advances the emulator by n host cycles: each cycle ticks the three
// timers and the DSP's 32-slot cycle schedule.
func (r *Root) Step(n int) {
	for i := 0; i < n; i++ {
		for _, t := range r.timers {
			t.Tick()
		}
		r.DSP.stepCycle()
		r.lastScriptCycle = int(r.DSP.cycleCount)
		r.ScriptHost.OnCycle(r.lastScriptCycle)
	}
}

// scriptAttached reports whether a real ScriptHost has been installed, as
// opposed to the default no-op used when nothing is listening.
func (r *Root) scriptAttached() bool {
	_, isNop := r.ScriptHost.(nopScriptHost)
	return !isNop
}
