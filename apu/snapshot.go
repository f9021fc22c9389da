// snapshot.go - loading an .spc snapshot into a Root.
//
// Grounded on the reference Apu::load / Dsp::set_state: a 64KiB RAM image,
// the 128-byte DSP register file (applied register-by-register, with KON
// and KOF applied last, after every other register, within the same
// LoadSnapshot call), and the 7-byte SPC700 register
// block, which is out of scope here but preserved verbatim for round-trip
// fidelity by an external collaborator.
package apu

import "fmt"

const (
	spcHeaderLen  = 0x100
	spcRAMLen     = 0x10000
	spcDSPRegLen  = 0x80
	spcIDMagic    = "SNES-SPC700 Sound File Data v0.30"
)

// CPUState holds the SPC700 register block carried by an .spc file; the
// instruction decoder that would consume it is out of scope here.
type CPUState struct {
	PC       uint16
	A, X, Y  uint8
	PSW      uint8
	SP       uint8
}

// LoadSnapshot parses an .spc-format byte blob and applies it to root,
// returning the SPC700 register state for an external CPU collaborator.
func LoadSnapshot(root *Root, data []byte) (CPUState, error) {
	if len(data) < spcHeaderLen+spcRAMLen+spcDSPRegLen {
		return CPUState{}, fmt.Errorf("apu: load snapshot: truncated, got %d bytes", len(data))
	}
	if string(data[0:len(spcIDMagic)]) != spcIDMagic {
		return CPUState{}, fmt.Errorf("apu: load snapshot: bad header magic")
	}

	cpu := CPUState{
		PC:  uint16(data[0x25]) | uint16(data[0x26])<<8,
		A:   data[0x27],
		X:   data[0x28],
		Y:   data[0x29],
		PSW: data[0x2A],
		SP:  data[0x2B],
	}

	ramOff := spcHeaderLen
	copy(root.ram[:], data[ramOff:ramOff+spcRAMLen])

	regOff := ramOff + spcRAMLen
	regs := data[regOff : regOff+spcDSPRegLen]
	for i := 0; i < spcDSPRegLen; i++ {
		switch i {
		case 0x4C, 0x5C: // KON/KOF: applied after the loop, see below
		default:
			root.DSP.SetRegister(uint8(i), regs[i])
		}
	}
	root.DSP.setKon(regs[0x4C])
	root.DSP.setKof(regs[0x5C])

	root.DSP.sourceDir = root.DSP.lSourceDir
	root.DSP.echoStartAddress = root.DSP.lEchoStartAddress
	root.DSP.echoLength = root.DSP.calculateEchoLength()
	for _, v := range root.DSP.Voices {
		v.tickLatches()
	}

	root.cpuState = cpu

	return cpu, nil
}
