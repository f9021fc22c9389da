package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeBlockSilence(t *testing.T) {
	var block [9]byte // header 0, all data nybbles 0

	samples, end, looping, last, lastLast := DecodeBlock(block, 0, 0)

	for _, s := range samples {
		assert.Equal(t, int16(0), s)
	}
	assert.False(t, end)
	assert.False(t, looping)
	assert.Equal(t, int16(0), last)
	assert.Equal(t, int16(0), lastLast)
}

func TestDecodeBlockHeaderFlags(t *testing.T) {
	var block [9]byte
	block[0] = 0x03 // end=1, loop=1, filter=0, shift=0

	_, end, looping, _, _ := DecodeBlock(block, 0, 0)

	assert.True(t, end)
	assert.True(t, looping)
}

func TestDecodeBlockThreadsHistoryAcrossCalls(t *testing.T) {
	var block [9]byte
	block[0] = 0xC4 // shift=12, filter=1
	block[1] = 0x10
	block[2] = 0x00

	_, _, _, last1, lastLast1 := DecodeBlock(block, 0, 0)
	samplesB, _, _, _, _ := DecodeBlock(block, last1, lastLast1)

	// continuing the stream with nonzero predictor history should not
	// reproduce the same first sample as a fresh-history decode.
	samplesA, _, _, _, _ := DecodeBlock(block, 0, 0)
	assert.NotEqual(t, samplesA[0], samplesB[0])
}
