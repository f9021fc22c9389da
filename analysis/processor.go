// processor.go - concurrent per-source analysis pipeline.
//
// Grounded on original_source's sample_processing mod.rs, which fans a
// directory of samples out across worker threads and collects per-sample
// pitch/loudness tracks keyed by source name. This port uses
// golang.org/x/sync/errgroup the way the domain stack's other concurrent
// paths do, one goroutine per source, cancelling the group on first error.
package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Source is one sample to analyze: decoded mono PCM plus a name used to key
// the result set and report errors.
type Source struct {
	Name       string
	PCM        []float64
	SampleRate float64
}

// Track holds one source's analysis results: a pitch curve (frequency, one
// entry per pYIN frame, spaced Hop samples apart) and a loudness envelope
// (one entry per input sample).
type Track struct {
	Name       string
	FrameHop   int
	Pitch      []PyinFrame
	Loudness   []float64
	SampleRate float64
}

// PitchAt returns the linearly-interpolated frequency and voiced flag at
// the given sample offset. Voicing interpolates by nearest-frame, since
// "half voiced" has no meaning.
func (t *Track) PitchAt(sampleOffset int) (frequency float64, voiced bool) {
	if len(t.Pitch) == 0 || t.FrameHop <= 0 {
		return 0, false
	}
	pos := float64(sampleOffset) / float64(t.FrameHop)
	i0 := int(pos)
	if i0 >= len(t.Pitch)-1 {
		last := t.Pitch[len(t.Pitch)-1]
		return last.Frequency, last.Voiced
	}
	if i0 < 0 {
		i0 = 0
	}
	frac := pos - float64(i0)
	a, b := t.Pitch[i0], t.Pitch[i0+1]
	freq := a.Frequency + frac*(b.Frequency-a.Frequency)
	nearest := a
	if frac >= 0.5 {
		nearest = b
	}
	return freq, nearest.Voiced
}

// LoudnessAt returns the linearly-interpolated loudness value at the given
// sample offset.
func (t *Track) LoudnessAt(sampleOffset int) float64 {
	if len(t.Loudness) == 0 {
		return 0
	}
	if sampleOffset <= 0 {
		return t.Loudness[0]
	}
	if sampleOffset >= len(t.Loudness)-1 {
		return t.Loudness[len(t.Loudness)-1]
	}
	i0 := sampleOffset
	return t.Loudness[i0]
}

// Process runs pitch and loudness analysis over every source concurrently,
// returning one Track per source in input order, or the first error any
// source's pipeline hit.
func Process(ctx context.Context, sources []Source, pyinCfg func(sampleRate float64) PyinConfig, loudnessCfg func(sampleRate float64) LoudnessConfig) ([]*Track, error) {
	tracks := make([]*Track, len(sources))
	g, gctx := errgroup.WithContext(ctx)

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if len(src.PCM) == 0 {
				return fmt.Errorf("analysis: source %q has no samples", src.Name)
			}
			pCfg := pyinCfg(src.SampleRate)
			lCfg := loudnessCfg(src.SampleRate)

			pitch := Pyin(src.PCM, pCfg)
			loud := Loudness(src.PCM, lCfg)

			tracks[i] = &Track{
				Name:       src.Name,
				FrameHop:   pCfg.Hop,
				Pitch:      pitch,
				Loudness:   loud,
				SampleRate: src.SampleRate,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tracks, nil
}
