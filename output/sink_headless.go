//go:build headless

// sink_headless.go - no-op sink for headless analysis/CI runs, adapted
// from the teacher's audio_backend_headless.go.
package output

import "github.com/snes-apu/spcapu/apu"

type OtoSink struct {
	started bool
	ring    *apu.RingBuffer
}

func NewOtoSink(sampleRate int) (*OtoSink, error) {
	return &OtoSink{}, nil
}

func (s *OtoSink) Attach(ring *apu.RingBuffer)        { s.ring = ring }
func (s *OtoSink) SetFilter(filter *apu.BlarggFilter) {}
func (s *OtoSink) Read(p []byte) (int, error)         { return len(p), nil }
func (s *OtoSink) Start()                             { s.started = true }
func (s *OtoSink) Stop()                              { s.started = false }
func (s *OtoSink) Close()                             { s.started = false }
func (s *OtoSink) IsStarted() bool                    { return s.started }
