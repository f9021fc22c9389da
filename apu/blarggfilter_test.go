package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlarggFilterSilenceStaysSilent(t *testing.T) {
	filter := NewBlarggFilter(BlarggGainUnit, BlarggBassNorm)
	io := make([]int16, 32)

	filter.Run(0, io)

	for _, s := range io {
		assert.Equal(t, int16(0), s)
	}
}

func TestBlarggFilterClearResetsState(t *testing.T) {
	filter := NewBlarggFilter(BlarggGainUnit, BlarggBassNorm)
	io := []int16{1000, 2000, -1500, 500}
	filter.Run(0, io)

	filter.Clear()
	io2 := []int16{1000, 2000, -1500, 500}
	filter.Run(0, io2)

	assert.Equal(t, io, io2)
}

func TestBlarggFilterChannelsAreIndependent(t *testing.T) {
	filter := NewBlarggFilter(BlarggGainUnit, BlarggBassNorm)
	left := []int16{1000, 1000, 1000}
	right := []int16{-1000, -1000, -1000}

	filter.Run(0, left)
	filter.Run(1, right)

	assert.NotEqual(t, left[1], right[1])
}
