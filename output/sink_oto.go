//go:build !headless

// sink_oto.go - oto/v3-backed stereo audio output, pulling interleaved
// float32 frames from an apu.RingBuffer.
//
// Adapted from the teacher's audio_backend_oto.go: same atomic-pointer
// lock-free Read() hot path and a pre-allocated sample buffer, but
// retargeted from a single SoundChip ring to apu.RingBuffer's stereo int16
// SPSC buffer, and from mono float32 output to interleaved stereo.
package output

import (
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"

	"github.com/snes-apu/spcapu/apu"
)

// OtoSink drives real-time stereo playback of an apu.RingBuffer through oto.
type OtoSink struct {
	ctx      *oto.Context
	player   *oto.Player
	ring     atomic.Pointer[apu.RingBuffer]
	filter   atomic.Pointer[apu.BlarggFilter]
	scratchL []int16
	scratchR []int16
	started  bool
	mutex    sync.Mutex
}

func NewOtoSink(sampleRate int) (*OtoSink, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}

	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, err
	}
	<-ready

	return &OtoSink{ctx: ctx}, nil
}

func (s *OtoSink) Attach(ring *apu.RingBuffer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ring.Store(ring)
	s.player = s.ctx.NewPlayer(s)
	s.scratchL = make([]int16, 1024)
	s.scratchR = make([]int16, 1024)
}

// SetFilter installs the output coloration filter applied to samples as
// they're pulled off the ring buffer, or nil to bypass it.
func (s *OtoSink) SetFilter(filter *apu.BlarggFilter) {
	s.filter.Store(filter)
}

// Read implements io.Reader for oto.Player: p holds interleaved
// little-endian float32 L/R frames.
func (s *OtoSink) Read(p []byte) (n int, err error) {
	ring := s.ring.Load()
	if ring == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	frames := len(p) / 8 // 2 channels * 4 bytes
	if cap(s.scratchL) < frames {
		s.scratchL = make([]int16, frames)
		s.scratchR = make([]int16, frames)
	}
	left := s.scratchL[:frames]
	right := s.scratchR[:frames]
	got := ring.Read(left, right)

	if filter := s.filter.Load(); filter != nil && got > 0 {
		filter.Run(0, left[:got])
		filter.Run(1, right[:got])
	}

	for i := 0; i < frames; i++ {
		var l, r float32
		if i < got {
			l = float32(left[i]) / 32768.0
			r = float32(right[i]) / 32768.0
		}
		putFloat32LE(p[i*8:], l)
		putFloat32LE(p[i*8+4:], r)
	}
	return len(p), nil
}

func (s *OtoSink) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.started && s.player != nil {
		s.player.Play()
		s.started = true
	}
}

func (s *OtoSink) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.started && s.player != nil {
		s.player.Close()
		s.started = false
	}
}

func (s *OtoSink) Close() {
	s.Stop()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.player != nil {
		s.player.Close()
		s.player = nil
	}
}

func (s *OtoSink) IsStarted() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.started
}
