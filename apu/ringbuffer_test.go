package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestRingBufferReadWriteOrder(t *testing.T) {
	rb := NewRingBuffer()
	rb.WriteSample(1, -1)
	rb.WriteSample(2, -2)
	rb.WriteSample(3, -3)

	left := make([]int16, 3)
	right := make([]int16, 3)
	n := rb.Read(left, right)

	assert.Equal(t, 3, n)
	assert.Equal(t, []int16{1, 2, 3}, left)
	assert.Equal(t, []int16{-1, -2, -3}, right)
	assert.Equal(t, 0, rb.SampleCount())
}

func TestRingBufferOverwritesOldestOnOverrun(t *testing.T) {
	rb := NewRingBuffer()
	for i := 0; i < ringBufferLen+10; i++ {
		rb.WriteSample(int16(i), int16(i))
	}

	assert.Equal(t, ringBufferLen, rb.SampleCount())

	left := make([]int16, 1)
	right := make([]int16, 1)
	rb.Read(left, right)
	assert.Equal(t, int16(10), left[0])
}

func TestRingBufferNeverReportsMoreThanWritten(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rb := NewRingBuffer()
		writes := rapid.IntRange(0, ringBufferLen*2).Draw(rt, "writes")
		for i := 0; i < writes; i++ {
			rb.WriteSample(int16(i), int16(-i))
		}
		expected := writes
		if expected > ringBufferLen {
			expected = ringBufferLen
		}
		assert.Equal(rt, expected, rb.SampleCount())
	})
}
