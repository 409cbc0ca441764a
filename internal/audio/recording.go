// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"tuner/internal/log"
)

// ErrAlreadyRecording is returned by StartRecording while a recording is active.
var ErrAlreadyRecording = errors.New("already recording")

// RecordingFilename returns a timestamped WAV path inside dir.
func RecordingFilename(dir string, t time.Time) string {
	return filepath.Join(dir, "recording-"+t.UTC().Format("02-01-2006-150405")+".wav")
}

// StartRecording writes every captured frame, all channels, to a WAV file
// at the configured bit depth. Missing parent directories are created.
func (e *Engine) StartRecording(filename string) error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		return ErrAlreadyRecording
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create recording directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	e.outputFile = file

	channels := e.config.Audio.InputChannels
	bitDepth := e.config.Recording.BitDepth
	e.wavEncoder = wav.NewEncoder(file, e.config.Audio.SampleRate, bitDepth, channels, 1)

	e.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  e.config.Audio.SampleRate,
		},
		Data:           make([]int, e.config.Audio.BlockSize*channels),
		SourceBitDepth: bitDepth,
	}

	atomic.StoreInt32(&e.isRecording, 1)
	log.Infof("audio: recording to %s (%d-bit)", filename, bitDepth)

	return nil
}

// recordBuffer converts 32-bit frames to the recording depth and encodes
// them. Encoder errors are logged and the stream keeps running.
func (e *Engine) recordBuffer(frames []int32) {
	shift := 32 - e.sampleBuf.SourceBitDepth
	for i, sample := range frames {
		e.sampleBuf.Data[i] = int(sample >> shift)
	}

	e.sampleBuf.Data = e.sampleBuf.Data[:len(frames)]

	if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
		log.Errorf("Error writing to WAV file: %v", err)
	}
}

func (e *Engine) StopRecording() error {
	if atomic.LoadInt32(&e.isRecording) == 0 {
		return nil
	}

	atomic.StoreInt32(&e.isRecording, 0)

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return err
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			return err
		}
		e.outputFile = nil
	}

	return nil
}

func (e *Engine) Close() error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		if err := e.StopRecording(); err != nil {
			return err
		}
	}

	if err := e.StopInputStream(); err != nil {
		return err
	}

	return nil
}
