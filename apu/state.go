// state.go - the per-output-sample telemetry publisher.
//
// Grounded on the reference Dsp::state22: a StateReceiver is an optional
// callback capability (not a locked shared handle, see SPEC_FULL.md §9)
// invoked synchronously once per output sample, before the echo mix, so
// observers see exactly the voices that contributed to the sample about to
// be produced.
package apu

// ChannelState is one voice's published telemetry for the current sample.
type ChannelState struct {
	Source            uint8
	Muted             bool
	EnvelopeLevel     int32
	VolumeLeft        int8
	VolumeRight       int8
	AmplitudeLeft     int32
	AmplitudeRight    int32
	Pitch             uint16
	NoiseClock        *uint8
	Edge              bool
	KonFrames         int
	SampleBlockIndex  int
	EchoDelay         *uint8
	PitchModulation   bool
}

// MasterState is the DSP-wide telemetry for the current sample.
type MasterState struct {
	MasterVolumeLeft  int8
	MasterVolumeRight int8
	EchoVolumeLeft    int8
	EchoVolumeRight   int8
	EchoDelay         uint8
	EchoFeedback      int8
	AmplitudeLeft     int32
	AmplitudeRight    int32
}

// ScriptState is the Script700 hook's published status: whether a host is
// currently attached and the last host cycle it was notified of. No
// script interpreter runs here, so this only reports the hook's own
// activity, not any guest script state.
type ScriptState struct {
	Attached  bool
	LastCycle int
}

// StateReceiver is the publish capability; consumers wanting cross-thread
// delivery must queue internally rather than block here.
type StateReceiver interface {
	ReceiveChannel(index int, state ChannelState)
	ReceiveMaster(state MasterState)
	ReceiveSMP(state CPUState)
	ReceiveScript(state ScriptState)
}

func (d *DSP) state22() {
	if d.StateReceiver == nil {
		return
	}

	for i, v := range d.Voices {
		var noiseClock *uint8
		if v.NoiseOn {
			nc := d.noiseClock
			noiseClock = &nc
		}
		var echoDelay *uint8
		if d.echoWriteEnabled && v.EchoOn {
			ed := d.echoDelay
			echoDelay = &ed
		}

		state := ChannelState{
			Source:           v.Source,
			Muted:            v.IsMuted,
			EnvelopeLevel:    v.Envelope.Level(),
			VolumeLeft:       v.VolLeft,
			VolumeRight:      v.VolRight,
			AmplitudeLeft:    v.lastRet.Left,
			AmplitudeRight:   v.lastRet.Right,
			Pitch:            v.Pitch(),
			NoiseClock:       noiseClock,
			Edge:             v.EdgeDetected(),
			KonFrames:        v.SampleFrame(),
			SampleBlockIndex: v.SampleBlockIndex,
			EchoDelay:        echoDelay,
			PitchModulation:  v.PitchMod,
		}
		d.StateReceiver.ReceiveChannel(i, state)
	}

	d.StateReceiver.ReceiveMaster(MasterState{
		MasterVolumeLeft:  *d.masterVolume.Left(),
		MasterVolumeRight: *d.masterVolume.Right(),
		EchoVolumeLeft:    *d.echoVolume.Left(),
		EchoVolumeRight:   *d.echoVolume.Right(),
		EchoDelay:         d.echoDelay,
		EchoFeedback:      d.echoFeedback,
		AmplitudeLeft:     *d.masterOutput.Left(),
		AmplitudeRight:    *d.masterOutput.Right(),
	})

	d.StateReceiver.ReceiveSMP(d.root.cpuState)
	d.StateReceiver.ReceiveScript(ScriptState{
		Attached:  d.root.scriptAttached(),
		LastCycle: d.root.lastScriptCycle,
	})
}
