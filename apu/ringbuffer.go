// ringbuffer.go - bounded single-producer/single-consumer stereo sample FIFO.
//
// Ported from the reference RingBuffer<const N: usize>: the emulator thread
// writes one stereo sample per output sample (echo27, see echo.go); a host
// audio callback thread drains samples independently. No locking is used —
// correctness for a single writer/single reader pair comes from the
// monotonic read/write cursors alone, matching the reference's contract.
package apu

const ringBufferSampleRate = 32000

// ringBufferLen holds >= 1 second of stereo audio at 32kHz.
const ringBufferLen = ringBufferSampleRate * 2

type RingBuffer struct {
	left, right [ringBufferLen]int16
	writePos    int
	readPos     int
	sampleCount int
}

func NewRingBuffer() *RingBuffer {
	return &RingBuffer{}
}

// WriteSample appends one stereo sample, overwriting the oldest unread
// sample if the buffer is full (matching the reference's wrap-without-grow
// behavior under overrun).
func (r *RingBuffer) WriteSample(left, right int16) {
	r.left[r.writePos] = left
	r.right[r.writePos] = right
	r.writePos = (r.writePos + 1) % ringBufferLen
	if r.sampleCount < ringBufferLen {
		r.sampleCount++
	} else {
		r.readPos = (r.readPos + 1) % ringBufferLen
	}
}

// Read drains up to len(left) samples (left/right must be equal length),
// returning the number actually read.
func (r *RingBuffer) Read(left, right []int16) int {
	n := len(left)
	if n > r.sampleCount {
		n = r.sampleCount
	}
	for i := 0; i < n; i++ {
		pos := (r.readPos + i) % ringBufferLen
		left[i] = r.left[pos]
		right[i] = r.right[pos]
	}
	r.readPos = (r.readPos + n) % ringBufferLen
	r.sampleCount -= n
	return n
}

func (r *RingBuffer) SampleCount() int { return r.sampleCount }

func (r *RingBuffer) Clear() {
	r.writePos = 0
	r.readPos = 0
	r.sampleCount = 0
}
