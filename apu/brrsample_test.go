package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBRRSampleRoundTripNoLoop(t *testing.T) {
	s := &BRRSample{
		StartBlocks: [][brrBlockLen]byte{
			{0x00, 1, 2, 3, 4, 5, 6, 7, 8},
			{0x01, 9, 10, 11, 12, 13, 14, 15, 16}, // end flag set
		},
	}
	data := s.ToBytes()
	assert.Len(t, data, 2*brrBlockLen)

	back := BRRSampleFromBytes(data, false)
	assert.Equal(t, s.StartBlocks, back.StartBlocks)
	assert.False(t, back.HasLoop)
}

func TestBRRSampleRoundTripWithLoopTailDeduped(t *testing.T) {
	loopBlock := [brrBlockLen]byte{0x03, 1, 2, 3, 4, 5, 6, 7, 8}
	s := &BRRSample{
		StartBlocks: [][brrBlockLen]byte{
			{0x00, 0, 0, 0, 0, 0, 0, 0, 0},
			loopBlock,
		},
		LoopBlocks: [][brrBlockLen]byte{loopBlock},
		HasLoop:    true,
	}
	data := s.ToBytes()
	// loop tail equals the start blocks' suffix, so it should be deduped:
	// 2-byte header + 2 blocks, not 2-byte header + 3 blocks.
	assert.Len(t, data, 2+2*brrBlockLen)

	back := BRRSampleFromBytes(data, true)
	assert.Equal(t, s.StartBlocks, back.StartBlocks)
	assert.Equal(t, [][brrBlockLen]byte{loopBlock}, back.LoopBlocks)
}

func TestExtractSampleStopsAtEndFlag(t *testing.T) {
	root := NewRoot()
	dsp := root.DSP

	const dirPage = 0x02 // source directory lives at dirPage*0x100
	const dirAddr = uint32(dirPage) * 0x100
	const sampleAddr = 0x1000
	dsp.sourceDir = dirPage
	dsp.lSourceDir = dirPage
	root.WriteU8(dirAddr, uint8(sampleAddr&0xFF))
	root.WriteU8(dirAddr+1, uint8(sampleAddr>>8))
	root.WriteU8(dirAddr+2, uint8(sampleAddr&0xFF)) // loop addr = start (no real loop region)
	root.WriteU8(dirAddr+3, uint8(sampleAddr>>8))

	// two blocks: first continues, second has the end flag set and no loop bit.
	root.WriteU8(sampleAddr, 0x00)
	root.WriteU8(sampleAddr+brrBlockLen, 0x01)

	sample := ExtractSample(root, dsp, 0)
	assert.Len(t, sample.StartBlocks, 2)
	assert.False(t, sample.HasLoop)
}

func TestBRRSampleDecodePCMLength(t *testing.T) {
	s := &BRRSample{
		StartBlocks: [][brrBlockLen]byte{
			{0x01, 0, 0, 0, 0, 0, 0, 0, 0},
			{0x01, 0, 0, 0, 0, 0, 0, 0, 0},
		},
	}
	pcm := s.DecodePCM()
	assert.Len(t, pcm, 2*brrBlockSamples)
	for _, v := range pcm {
		assert.Equal(t, int16(0), v)
	}
}
