// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"strconv"
	"testing"

	"tuner/internal/config"
	"tuner/internal/tuner"
	"tuner/pkg/utils"
)

const (
	testSampleRate = 8192
	testFrameSize  = 1024 // 8 Hz bins at testSampleRate

	lowThreshold  = int32(math.MaxInt32 / 1000)
	highThreshold = int32(math.MaxInt32 / 10 * 9)
)

var (
	testBuffer  = utils.ToInt32(utils.SineWave(testFrameSize, testSampleRate, 440, 0.5, 0))
	quietBuffer = utils.ToInt32(utils.SineWave(testFrameSize, testSampleRate, 440, 0.001, 0))
	loudBuffer  = utils.ToInt32(utils.SineWave(testFrameSize, testSampleRate, 440, 0.95, 0))
)

func testConfig(channels int) *config.Config {
	cfg := config.Default()
	cfg.Audio.SampleRate = testSampleRate
	cfg.Audio.BlockSize = testFrameSize
	cfg.Audio.InputChannels = channels
	return cfg
}

func newTestSession(t testing.TB, cfg *config.Config) *tuner.Session {
	t.Helper()
	opts, err := cfg.SessionOptions()
	if err != nil {
		t.Fatal(err)
	}
	session, err := tuner.NewSession(opts)
	if err != nil {
		t.Fatal(err)
	}
	return session
}

func newTestEngine(t testing.TB, channels int, sinks ...Sink) *Engine {
	t.Helper()
	cfg := testConfig(channels)
	engine, err := newEngine(cfg, newTestSession(t, cfg), sinks...)
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

// interleave repeats mono into channels, with the other channels silent.
func interleave(mono []int32, channels int) []int32 {
	out := make([]int32, len(mono)*channels)
	for i, s := range mono {
		out[i*channels] = s
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func absFloat(f float64) float64 {
	return math.Abs(f)
}
