// SPDX-License-Identifier: MIT
package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"tuner/internal/config"
	"tuner/internal/note"
	"tuner/pkg/utils"
)

func TestDescribeFrequency(t *testing.T) {
	tests := []struct {
		arg       string
		reference float64
		want      string
		wantErr   bool
	}{
		{"440", 440, "A4", false},
		{"453", 440, "A#4  -50 cents", false},
		{"440", 432, "A4   +32 cents", false},
		{"0", 440, note.NoSignalLabel, false},
		{"abc", 440, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			cfg := config.Default()
			cfg.Tuning.ReferenceHz = tt.reference

			var out bytes.Buffer
			err := describeFrequency(&out, cfg, tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("describeFrequency() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output = %q, want it to contain %q", out.String(), tt.want)
			}
		})
	}
}

func TestToneFrequency(t *testing.T) {
	mapper := note.Default()
	tests := []struct {
		arg     string
		want    float64
		wantErr bool
	}{
		{"A4", 440, false},
		{"a3", 220, false},
		{"329.5", 329.5, false},
		{"H2", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := toneFrequency(mapper, tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("toneFrequency() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, note.ErrInvalidName) {
					t.Errorf("error = %v, want ErrInvalidName", err)
				}
				return
			}
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("toneFrequency(%q) = %v, want %v", tt.arg, got, tt.want)
			}
		})
	}
}

func TestAnalyzeFile(t *testing.T) {
	const rate = 4096 // 1 Hz bins with 4096-sample blocks

	path := filepath.Join(t.TempDir(), "a4.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	samples := utils.SineWave(2*rate, rate, 440, 0.5, 0)
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	if err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           utils.ToInts(samples, 16),
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg := config.Default()
	cfg.Audio.BlockSize = rate

	var out bytes.Buffer
	if err := analyzeFile(&out, cfg, path); err != nil {
		t.Fatalf("analyzeFile() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header and 2 blocks:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[0], "2 blocks of 4096") {
		t.Errorf("header = %q", lines[0])
	}
	for _, line := range lines[1:] {
		if !strings.Contains(line, "A4") || !strings.Contains(line, "+0 cents") {
			t.Errorf("block line = %q, want A4 +0 cents", line)
		}
	}

	if err := analyzeFile(&out, cfg, filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("analyzeFile() on a missing file returned nil error")
	}
}
