// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gopxl/beep"

	"tuner/cmd"
	"tuner/internal/audio"
	"tuner/internal/config"
	"tuner/internal/note"
	"tuner/internal/tui"
	"tuner/internal/tuner"
)

// executeCommand handles one-off commands that don't require the capture
// engine to be running.
func executeCommand(ctx context.Context, options *cmd.Options, cfg *config.Config) error {
	switch options.Command {
	case cmd.CommandList:
		return listDevices(options.TUIMode)
	case cmd.CommandAnalyze:
		return analyzeFile(os.Stdout, cfg, options.Args[0])
	case cmd.CommandNote:
		return describeFrequency(os.Stdout, cfg, options.Args[0])
	case cmd.CommandTone:
		return playTone(ctx, cfg, options.Args[0])
	}
	return fmt.Errorf("unknown command: %q", options.Command)
}

func listDevices(tuiMode bool) error {
	if !tuiMode {
		if err := audio.Initialize(); err != nil {
			return err
		}
		defer audio.Terminate()
		return audio.ListDevices(os.Stdout)
	}

	device, ok, err := tui.PickDevice(audio.GetDevices)
	if err != nil || !ok {
		return err
	}
	fmt.Printf("Selected input device %d: %s\n", device.ID, device.Name)
	fmt.Printf("Use --device %d or audio.input_device: %d in %s\n", device.ID, device.ID, config.DefaultPath)
	return nil
}

// analyzeFile prints one line per block of the WAV file at path.
func analyzeFile(w io.Writer, cfg *config.Config, path string) error {
	opts, err := cfg.SessionOptions()
	if err != nil {
		return err
	}
	session, err := tuner.NewSession(opts)
	if err != nil {
		return err
	}

	clip, err := audio.ReadWAV(path, session.BlockSize())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d Hz, %d-bit, %d channel(s), %s, %d blocks of %d\n",
		clip.Path, clip.SampleRate, clip.BitDepth, clip.Channels,
		clip.Duration().Round(time.Millisecond), len(clip.Blocks), session.BlockSize())

	blockDuration := time.Duration(session.BlockSize()) * time.Second / time.Duration(clip.SampleRate)
	for i, block := range clip.Blocks {
		result, err := session.Analyze(block)
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		fmt.Fprintf(w, "%9s  %s\n", (time.Duration(i) * blockDuration).Round(time.Millisecond), formatResult(result))
	}
	return nil
}

// describeFrequency prints the note nearest to the frequency in arg.
func describeFrequency(w io.Writer, cfg *config.Config, arg string) error {
	hz, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return fmt.Errorf("invalid frequency %q: %w", arg, err)
	}
	ref, err := note.NewReference(cfg.Tuning.ReferenceHz)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, formatResult(note.NewMapper(ref).Map(hz)))
	return nil
}

// toneFrequency resolves a note label such as "E2" or a frequency in Hz.
func toneFrequency(mapper *note.Mapper, arg string) (float64, error) {
	if hz, err := strconv.ParseFloat(arg, 64); err == nil {
		return hz, nil
	}
	n, err := mapper.ParseName(arg)
	if err != nil {
		return 0, err
	}
	return mapper.IdealFrequency(n), nil
}

func playTone(ctx context.Context, cfg *config.Config, arg string) error {
	ref, err := note.NewReference(cfg.Tuning.ReferenceHz)
	if err != nil {
		return err
	}
	freq, err := toneFrequency(note.NewMapper(ref), arg)
	if err != nil {
		return err
	}
	fmt.Printf("Playing %.2f Hz for %s\n", freq, cfg.Tone.Duration)
	return audio.PlayTone(ctx, freq, beep.SampleRate(cfg.Audio.SampleRate), cfg.Tone.Duration, cfg.Tone.Volume)
}

func formatResult(r note.Result) string {
	if !r.Signal {
		return r.Label
	}
	return fmt.Sprintf("%-4s %+3d cents  %8.2f Hz (ideal %.2f Hz)", r.Label, r.Cents, r.Frequency, r.Ideal)
}
