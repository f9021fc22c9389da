// brrsample.go - BRR sample dump / round-trip byte format.
//
// Grounded on original_source's BrrSample builder: a sample's start blocks
// and (optional) loop-tail blocks serialize to a single byte blob with an
// optional 2-byte little-endian loop-offset header, simplifying away a
// redundant tail when the start blocks already contain the loop region.
package apu

import "encoding/binary"

const brrBlockLen = 9

// BRRSample holds a decoded sample's block-structured BRR data: the blocks
// played once from the start, and (if the stream loops) the blocks played
// repeatedly thereafter.
type BRRSample struct {
	StartBlocks [][brrBlockLen]byte
	LoopBlocks  [][brrBlockLen]byte
	HasLoop     bool
}

// ToBytes serializes the sample. When HasLoop is set, the first two bytes
// are a little-endian loop-block-offset (in blocks); otherwise the blob is
// just the concatenated start blocks.
func (s *BRRSample) ToBytes() []byte {
	start := s.StartBlocks
	loop := s.LoopBlocks

	// Simplify: if the loop blocks are exactly the tail of the start
	// blocks, drop the redundant copy and loop back into the start region.
	loopOffsetBlocks := len(start)
	if s.HasLoop && len(loop) > 0 && len(loop) <= len(start) {
		tailStart := len(start) - len(loop)
		if blocksEqual(start[tailStart:], loop) {
			loopOffsetBlocks = tailStart
			loop = nil
		}
	}

	var out []byte
	if s.HasLoop {
		header := make([]byte, 2)
		binary.LittleEndian.PutUint16(header, uint16(loopOffsetBlocks))
		out = append(out, header...)
	}
	for _, b := range start {
		out = append(out, b[:]...)
	}
	for _, b := range loop {
		out = append(out, b[:]...)
	}
	return out
}

func blocksEqual(a, b [][brrBlockLen]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// BRRSampleFromBytes parses the format ToBytes produces. hasLoop must be
// known by the caller (callers typically get it from the directory entry
// or the last decoded block's loop flag) since the blob alone does not
// distinguish a loop-offset header from sample data.
func BRRSampleFromBytes(data []byte, hasLoop bool) *BRRSample {
	s := &BRRSample{HasLoop: hasLoop}
	if hasLoop {
		loopOffsetBlocks := int(binary.LittleEndian.Uint16(data[:2]))
		data = data[2:]
		blocks := splitBlocks(data)
		if loopOffsetBlocks <= len(blocks) {
			s.StartBlocks = blocks
			s.LoopBlocks = blocks[loopOffsetBlocks:]
		} else {
			s.StartBlocks = blocks
		}
		return s
	}
	s.StartBlocks = splitBlocks(data)
	return s
}

func splitBlocks(data []byte) [][brrBlockLen]byte {
	n := len(data) / brrBlockLen
	blocks := make([][brrBlockLen]byte, n)
	for i := 0; i < n; i++ {
		copy(blocks[i][:], data[i*brrBlockLen:(i+1)*brrBlockLen])
	}
	return blocks
}

// ExtractSample walks ARAM starting at a voice's source-directory entry,
// collecting BRR blocks until the end-of-stream header flag, and splits
// the result into start/loop regions using the loop address the same
// directory entry names. It lets analysis tooling pull a voice's raw
// instrument data out of a running or loaded APU without touching
// playback state.
func ExtractSample(root *Root, dsp *DSP, sourceIndex uint8) *BRRSample {
	startAddr := dsp.readSourceDirStartAddress(int32(sourceIndex))
	loopAddr := dsp.readSourceDirLoopAddress(int32(sourceIndex))

	var blocks [][brrBlockLen]byte
	loopBlockIdx := -1
	addr := startAddr
	for {
		if addr == loopAddr {
			loopBlockIdx = len(blocks)
		}
		var block [brrBlockLen]byte
		for i := 0; i < brrBlockLen; i++ {
			block[i] = root.ReadU8(addr + uint32(i))
		}
		blocks = append(blocks, block)
		isEnd := block[0]&0x01 != 0
		isLooping := block[0]&0x02 != 0
		addr += brrBlockLen
		if isEnd {
			if !isLooping {
				return &BRRSample{StartBlocks: blocks}
			}
			if loopBlockIdx < 0 {
				loopBlockIdx = len(blocks)
			}
			return &BRRSample{
				StartBlocks: blocks,
				LoopBlocks:  blocks[loopBlockIdx:],
				HasLoop:     true,
			}
		}
	}
}

// DecodePCM decodes every block in the sample (start blocks only, since
// the loop blocks are either a suffix of StartBlocks or meant to repeat
// indefinitely and have no natural finite length) into a single PCM
// stream, threading predictor history across blocks the way playback
// does.
func (s *BRRSample) DecodePCM() []int16 {
	pcm := make([]int16, 0, len(s.StartBlocks)*brrBlockSamples)
	var last, lastLast int16
	for _, block := range s.StartBlocks {
		samples, _, _, newLast, newLastLast := DecodeBlock(block, last, lastLast)
		pcm = append(pcm, samples[:]...)
		last, lastLast = newLast, newLastLast
	}
	return pcm
}
