// SPDX-License-Identifier: MIT

// Package note maps frequencies onto the twelve-tone equal-tempered scale:
// a note name, an octave and the signed deviation in cents from the
// nearest ideal pitch.
package note

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultReference is the concert pitch of A4 in Hz.
	DefaultReference = 440.0

	// ReferenceNumber is the note number anchored to the reference pitch
	// (A4). Changing the reference moves the frequency, not the anchor.
	ReferenceNumber = 69

	// NoSignalLabel is the label of the no-signal result.
	NoSignalLabel = "Silence/Noise"

	centsPerSemitone = 100
)

var (
	// ErrInvalidReference is returned for non-finite or non-positive references.
	ErrInvalidReference = errors.New("reference frequency must be finite and positive")

	// ErrInvalidName is returned by ParseName for unknown note labels.
	ErrInvalidName = errors.New("invalid note name")
)

// Reference is the validated frequency in Hz assigned to A4.
type Reference float64

// NewReference validates hz as a tuning reference.
func NewReference(hz float64) (Reference, error) {
	if math.IsNaN(hz) || math.IsInf(hz, 0) || hz <= 0 {
		return 0, fmt.Errorf("%w, got %v", ErrInvalidReference, hz)
	}
	return Reference(hz), nil
}

// Hz returns the reference as a plain frequency.
func (r Reference) Hz() float64 {
	return float64(r)
}

// Scale is the pitch-class naming of one octave.
type Scale struct {
	Names [12]string
}

// SemitonesPerOctave returns the number of pitch classes.
func (s Scale) SemitonesPerOctave() int {
	return len(s.Names)
}

// Chromatic returns the canonical sharp-based naming, C through B.
func Chromatic() Scale {
	return Scale{Names: [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}}
}

// Result is one tuning reading. Signal is false for the no-signal variant,
// in which case only Label is meaningful.
type Result struct {
	Signal    bool    `json:"signal"`
	Name      string  `json:"name,omitempty"`      // pitch class, e.g. "E"
	Octave    int     `json:"octave"`              // scientific octave, C4 = middle C
	Label     string  `json:"label"`               // Name + Octave, e.g. "E2"
	Cents     int     `json:"cents"`               // rounded deviation, positive is sharp
	Number    int     `json:"number"`              // note number, A4 = 69
	Frequency float64 `json:"frequency,omitempty"` // input frequency (Hz)
	Ideal     float64 `json:"ideal,omitempty"`     // ideal frequency of Number (Hz)
	Deviation float64 `json:"deviation"`           // unrounded cents
}

// NoSignalResult is returned for frequencies that carry no pitch.
func NoSignalResult() Result {
	return Result{Label: NoSignalLabel}
}

// String formats the reading for display, e.g. "E2 -7 cents".
func (r Result) String() string {
	if !r.Signal {
		return r.Label
	}
	return fmt.Sprintf("%s %+d cents", r.Label, r.Cents)
}

// Mapper converts frequencies to notes against one reference. It holds no
// mutable state and is safe for concurrent use.
type Mapper struct {
	reference Reference
	scale     Scale
}

// NewMapper returns a mapper for ref using the chromatic scale.
func NewMapper(ref Reference) *Mapper {
	return &Mapper{reference: ref, scale: Chromatic()}
}

// Default returns a mapper tuned to A4 = 440 Hz.
func Default() *Mapper {
	return NewMapper(Reference(DefaultReference))
}

// Reference returns the mapper's A4 frequency.
func (m *Mapper) Reference() Reference {
	return m.reference
}

// semitones returns the fractional note number of f.
func (m *Mapper) semitones(f float64) float64 {
	n := float64(m.scale.SemitonesPerOctave())
	return n*math.Log2(f/m.reference.Hz()) + ReferenceNumber
}

// NoteNumber returns the nearest note number of f. A frequency exactly
// half-way between two notes belongs to the lower one, so deviations fall
// in (-50, +50] cents.
func (m *Mapper) NoteNumber(f float64) int {
	return nearest(m.semitones(f))
}

// IdealFrequency returns the exact frequency of note number n.
func (m *Mapper) IdealFrequency(n int) float64 {
	per := float64(m.scale.SemitonesPerOctave())
	return m.reference.Hz() * math.Pow(2, float64(n-ReferenceNumber)/per)
}

// Name returns the pitch class and octave of note number n.
func (m *Mapper) Name(n int) (string, int) {
	per := m.scale.SemitonesPerOctave()
	class := ((n % per) + per) % per
	octave := floorDiv(n, per) - 1
	return m.scale.Names[class], octave
}

// Map converts f to a tuning result. f <= 0 (including the 0 no-signal
// estimate) and NaN yield NoSignalResult.
func (m *Mapper) Map(f float64) Result {
	if !(f > 0) || math.IsInf(f, 0) {
		return NoSignalResult()
	}

	n := m.NoteNumber(f)
	name, octave := m.Name(n)
	ideal := m.IdealFrequency(n)
	deviation := float64(m.scale.SemitonesPerOctave()*centsPerSemitone) * math.Log2(f/ideal)

	return Result{
		Signal:    true,
		Name:      name,
		Octave:    octave,
		Label:     name + strconv.Itoa(octave),
		Cents:     int(math.Round(deviation)),
		Number:    n,
		Frequency: f,
		Ideal:     ideal,
		Deviation: deviation,
	}
}

// ParseName returns the note number of a label such as "A4", "c#3" or
// "Bb-1". Flats are accepted and folded onto the sharp names.
func (m *Mapper) ParseName(label string) (int, error) {
	s := strings.TrimSpace(label)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidName)
	}

	letter := strings.ToUpper(s[:1])
	rest := s[1:]
	shift := 0
	switch {
	case strings.HasPrefix(rest, "#"):
		shift, rest = 1, rest[1:]
	case strings.HasPrefix(rest, "b"):
		shift, rest = -1, rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, label)
	}

	class := -1
	for i, name := range m.scale.Names {
		if name == letter {
			class = i
			break
		}
	}
	if class < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, label)
	}

	per := m.scale.SemitonesPerOctave()
	return (octave+1)*per + class + shift, nil
}

// nearest rounds half-way values down so a tie never flips between notes.
func nearest(x float64) int {
	return int(math.Ceil(x - 0.5))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
