// spcplay loads an .spc snapshot, runs the APU emulation in real time, and
// streams the result to the system's audio output.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/snes-apu/spcapu/apu"
	"github.com/snes-apu/spcapu/output"
)

func main() {
	var (
		path        = flag.String("spc", "", "path to an .spc snapshot file")
		sampleRate  = flag.Int("rate", 32000, "output sample rate in Hz")
		resampling  = flag.String("resample", "gaussian", "resampling kernel: linear, gaussian, cubic, sinc, accurate")
		bass        = flag.Int("bass", apu.BlarggBassNorm, "output bass level, 0 (none) to 31 (max)")
		verbose     = flag.Bool("v", false, "enable debug logging")
		durationSec = flag.Int("duration", 0, "stop after N seconds (0 = run until killed)")
	)
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if *path == "" {
		logger.Error("missing required flag", "flag", "-spc")
		os.Exit(1)
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		logger.Error("read snapshot", "path", *path, "err", err)
		os.Exit(1)
	}

	root := apu.NewRoot()
	mode, err := parseResamplingMode(*resampling)
	if err != nil {
		logger.Error("bad resampling mode", "err", err)
		os.Exit(1)
	}
	root.DSP.SetResamplingMode(mode)

	cpu, err := apu.LoadSnapshot(root, data)
	if err != nil {
		logger.Error("load snapshot", "err", err)
		os.Exit(1)
	}
	logger.Info("loaded snapshot", "path", *path, "pc", cpu.PC)

	sink, err := output.NewOtoSink(*sampleRate)
	if err != nil {
		logger.Error("open audio sink", "err", err)
		os.Exit(1)
	}
	defer sink.Close()

	sink.Attach(root.DSP.Ring)
	sink.SetFilter(apu.NewBlarggFilter(apu.BlarggGainUnit, int32(*bass)))
	sink.Start()
	logger.Info("playback started", "sampleRate", *sampleRate, "resampling", *resampling)

	stop := make(chan struct{})
	if *durationSec > 0 {
		go func() {
			time.Sleep(time.Duration(*durationSec) * time.Second)
			close(stop)
		}()
	}

	const cyclesPerTick = 32 * 32 // 32 output samples, 1 ms at 32 kHz, per 1 ms tick
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			logger.Info("playback stopped", "reason", "duration elapsed")
			return
		case <-ticker.C:
			root.Step(cyclesPerTick)
		}
	}
}

func parseResamplingMode(name string) (apu.ResamplingMode, error) {
	switch name {
	case "linear":
		return apu.ResampleLinear, nil
	case "gaussian":
		return apu.ResampleGaussian, nil
	case "cubic":
		return apu.ResampleCubic, nil
	case "sinc":
		return apu.ResampleSinc, nil
	case "accurate":
		return apu.ResampleAccurate, nil
	default:
		return 0, errUnknownResamplingMode(name)
	}
}

type errUnknownResamplingMode string

func (e errUnknownResamplingMode) Error() string {
	return "unknown resampling mode: " + string(e)
}
