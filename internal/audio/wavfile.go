// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"

	"tuner/internal/pitch"
)

// ErrNotWAV is returned for files without a valid RIFF/WAVE header.
var ErrNotWAV = errors.New("not a valid WAV file")

// Clip is a decoded WAV file split into analysis blocks.
type Clip struct {
	Path       string
	SampleRate int
	BitDepth   int
	Channels   int
	Frames     int                // frames in the file
	Blocks     []pitch.AudioBlock // consecutive, non-overlapping
}

// Duration returns the length of the file.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames) * time.Second / time.Duration(c.SampleRate)
}

// ReadWAV decodes the WAV file at path, keeps channel 0 and splits it into
// blocks of blockSize samples normalised by bit depth. A trailing partial
// block is dropped, so a file shorter than one block yields no blocks.
func ReadWAV(path string, blockSize int) (*Clip, error) {
	if blockSize < 1 {
		return nil, fmt.Errorf("invalid block size: %d", blockSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotWAV)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	clip := &Clip{
		Path:       path,
		SampleRate: int(decoder.SampleRate),
		BitDepth:   int(decoder.BitDepth),
		Channels:   int(decoder.NumChans),
	}
	if clip.Channels < 1 {
		return nil, fmt.Errorf("%s: %w: no channels", path, ErrNotWAV)
	}
	clip.Frames = len(buf.Data) / clip.Channels

	// Channel 0 only.
	mono := make([]int, clip.Frames)
	for i := range mono {
		mono[i] = buf.Data[i*clip.Channels]
	}
	// 8-bit WAV is unsigned.
	if clip.BitDepth == 8 {
		for i := range mono {
			mono[i] -= 128
		}
	}

	for start := 0; start+blockSize <= len(mono); start += blockSize {
		block, err := pitch.FromInts(mono[start:start+blockSize], clip.BitDepth, clip.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		clip.Blocks = append(clip.Blocks, block)
	}

	return clip, nil
}
