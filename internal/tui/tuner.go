// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tuner/internal/tuner"
)

const (
	// InTuneCents is the deviation shown as in tune.
	InTuneCents = 5
	// closeCents is the deviation shown as nearly in tune.
	closeCents = 15

	meterWidth = 41 // odd, so zero has its own cell
)

// Feed is a sink that hands readings to the display. It never blocks the
// analysis loop: when the display lags, readings are dropped.
type Feed struct {
	ch chan tuner.Reading
}

// NewFeed returns a feed buffering up to size readings.
func NewFeed(size int) *Feed {
	return &Feed{ch: make(chan tuner.Reading, size)}
}

// Send queues a reading and ignores other values.
func (f *Feed) Send(data any) error {
	reading, ok := data.(tuner.Reading)
	if !ok {
		return nil
	}
	select {
	case f.ch <- reading:
	default:
	}
	return nil
}

// Readings is the receiving end used by the display model.
func (f *Feed) Readings() <-chan tuner.Reading {
	return f.ch
}

// Close ends the feed; the display quits once it drains.
func (f *Feed) Close() error {
	close(f.ch)
	return nil
}

type readingMsg tuner.Reading

type feedClosedMsg struct{}

func waitForReading(readings <-chan tuner.Reading) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-readings
		if !ok {
			return feedClosedMsg{}
		}
		return readingMsg(r)
	}
}

type tunerKeys struct {
	Quit key.Binding
}

var defaultTunerKeys = tunerKeys{
	Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// TunerModel is the Bubble Tea model of the live display.
type TunerModel struct {
	readings  <-chan tuner.Reading
	reference float64
	source    string
	keys      tunerKeys

	reading tuner.Reading
	seen    bool
	width   int
}

// NewTunerModel displays readings from ch. reference and source are shown
// in the header.
func NewTunerModel(readings <-chan tuner.Reading, reference float64, source string) TunerModel {
	return TunerModel{
		readings:  readings,
		reference: reference,
		source:    source,
		keys:      defaultTunerKeys,
	}
}

// Init waits for the first reading.
func (m TunerModel) Init() tea.Cmd {
	return waitForReading(m.readings)
}

func (m TunerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case readingMsg:
		m.reading = tuner.Reading(msg)
		m.seen = true
		return m, waitForReading(m.readings)

	case feedClosedMsg:
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the UI
func (m TunerModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Tuner"))
	sb.WriteString(infoStyle.Render(fmt.Sprintf("  A4 = %.1f Hz  %s", m.reference, m.source)))
	sb.WriteString("\n\n")

	switch {
	case !m.seen:
		sb.WriteString(dimStyle.Render("Listening..."))
		sb.WriteString("\n\n")
	case !m.reading.Result.Signal:
		sb.WriteString(noteStyle.Render(m.reading.Result.Label))
		sb.WriteString("\n\n")
		sb.WriteString(dimStyle.Render(Meter(0, meterWidth, false)))
		sb.WriteString("\n")
	default:
		r := m.reading.Result
		style := centsStyle(r.Cents)
		sb.WriteString(noteStyle.Inherit(style).Render(r.Label))
		sb.WriteString(fmt.Sprintf("%+4d cents   %.2f Hz (target %.2f Hz)", r.Cents, m.reading.Estimate, r.Ideal))
		sb.WriteString("\n\n")
		sb.WriteString(style.Render(Meter(r.Cents, meterWidth, true)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(m.keys.Quit.Help().Key + ": " + m.keys.Quit.Help().Desc))
	return sb.String()
}

func centsStyle(cents int) lipgloss.Style {
	switch {
	case abs(cents) <= InTuneCents:
		return inTuneStyle
	case abs(cents) <= closeCents:
		return closeStyle
	default:
		return offTuneStyle
	}
}

// Meter draws a cents scale from -50 to +50 across width cells with a
// needle at cents. Deviations beyond the scale pin to its ends. Without
// a needle only the scale is drawn.
func Meter(cents, width int, needle bool) string {
	if width < 3 {
		width = 3
	}
	if width%2 == 0 {
		width++
	}

	cells := make([]rune, width)
	for i := range cells {
		cells[i] = '─'
	}
	mid := width / 2
	cells[0], cells[mid], cells[width-1] = '├', '┼', '┤'

	if needle {
		c := max(-50, min(50, cents))
		pos := mid + int(math.Round(float64(c)/50*float64(mid)))
		cells[pos] = '█'
	}

	return "-50 " + string(cells) + " +50"
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// RunTuner shows readings from feed until the user quits or the feed is
// closed.
func RunTuner(feed *Feed, reference float64, source string) error {
	p := tea.NewProgram(
		NewTunerModel(feed.Readings(), reference, source),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
