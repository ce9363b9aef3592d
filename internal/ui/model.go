// ABOUTME: Bubbletea model for the synthesizer TUI
// ABOUTME: Maps keys to frequency commands and renders live synth status
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	// PresetLow and PresetHigh are the tones bound to q and w
	PresetLow  = 400.0
	PresetHigh = 500.0

	minFrequency = 20.0
)

// semitone is the frequency ratio between adjacent equal-tempered notes
var semitone = math.Pow(2, 1.0/12)

// Model represents the TUI state
type Model struct {
	name string

	// Synth
	running      bool
	backend      string
	frequency    float64
	sampleRate   int
	frameSamples int

	// Stats
	buffered  time.Duration
	frames    int64
	skipped   int64
	underruns int64
	remotes   int
	lastError string

	// Debug
	showDebug bool

	startTime time.Time
	quitting  bool
	controls  *Controls

	// Dimensions
	width  int
	height int
}

type tickMsg time.Time

// StatusMsg updates TUI state
type StatusMsg struct {
	Running      bool
	Backend      string
	Frequency    float64
	SampleRate   int
	FrameSamples int
	Buffered     time.Duration
	Frames       int64
	Skipped      int64
	Underruns    int64
	Remotes      int
	Error        string
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		return m, tickEvery()
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "e", "esc", "ctrl+c":
		m.quitting = true
		m.controls.quit()
		return m, tea.Quit
	case "q":
		m.setFrequency(PresetLow)
	case "w":
		m.setFrequency(PresetHigh)
	case "+", "=", "up":
		m.setFrequency(m.frequency * semitone)
	case "-", "down":
		m.setFrequency(m.frequency / semitone)
	case " ", "space":
		m.controls.send(Command{Kind: CommandToggle})
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// setFrequency clamps hz to the audible range below Nyquist, shows it
// immediately and forwards it to the synthesizer
func (m *Model) setFrequency(hz float64) {
	hz = math.Max(hz, minFrequency)
	if m.sampleRate > 0 {
		hz = math.Min(hz, float64(m.sampleRate)/2)
	}
	m.frequency = hz
	m.controls.send(Command{Kind: CommandFrequency, Frequency: hz})
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	m.running = msg.Running
	m.backend = msg.Backend
	if msg.Frequency > 0 {
		m.frequency = msg.Frequency
	}
	if msg.SampleRate > 0 {
		m.sampleRate = msg.SampleRate
		m.frameSamples = msg.FrameSamples
	}
	m.buffered = msg.Buffered
	m.frames = msg.Frames
	m.skipped = msg.Skipped
	m.underruns = msg.Underruns
	m.remotes = msg.Remotes
	m.lastError = msg.Error
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Stopping synthesizer...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86"))

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("Tonesynth: " + m.name))
	b.WriteString("\n\n")

	status := "Stopped"
	if m.running {
		status = "Playing on " + m.backend
	}
	writeField(&b, headerStyle, valueStyle, "Status:    ", status)
	writeField(&b, headerStyle, valueStyle, "Frequency: ", fmt.Sprintf("%.2f Hz (%s)", m.frequency, noteName(m.frequency)))
	writeField(&b, headerStyle, valueStyle, "Format:    ", fmt.Sprintf("%d Hz mono 16-bit, %d samples/frame", m.sampleRate, m.frameSamples))
	writeField(&b, headerStyle, valueStyle, "Buffer:    ", fmt.Sprintf("[%s] %dms", renderBar(int(m.buffered/time.Millisecond), 500, 20), m.buffered/time.Millisecond))
	writeField(&b, headerStyle, valueStyle, "Remotes:   ", fmt.Sprintf("%d", m.remotes))

	if m.showDebug {
		b.WriteString("\n")
		writeField(&b, headerStyle, valueStyle, "Frames:    ", fmt.Sprintf("%d generated, %d skipped", m.frames, m.skipped))
		writeField(&b, headerStyle, valueStyle, "Underruns: ", fmt.Sprintf("%d", m.underruns))
		writeField(&b, headerStyle, valueStyle, "Uptime:    ", time.Since(m.startTime).Round(time.Second).String())
	}

	if m.lastError != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.lastError))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render("q:400Hz  w:500Hz  +/-:semitone  space:start/stop  d:debug  e/esc:exit"))

	return b.String()
}

func writeField(b *strings.Builder, header, value lipgloss.Style, label, text string) {
	b.WriteString(header.Render(label))
	b.WriteString(value.Render(text))
	b.WriteString("\n")
}

// Utility functions
func renderBar(value, max, width int) string {
	if value < 0 {
		value = 0
	}
	if value > max {
		value = max
	}
	filled := (value * width) / max
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

var noteNames = [12]string{"A", "A#", "B", "C", "C#", "D", "D#", "E", "F", "F#", "G", "G#"}

// noteName returns the nearest equal-tempered note, e.g. "A4" for 440Hz
func noteName(hz float64) string {
	if hz <= 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
		return "-"
	}

	n := int(math.Round(12 * math.Log2(hz/440)))
	idx := ((n % 12) + 12) % 12
	// Octave numbers change at C, three semitones above A
	octave := 4 + int(math.Floor(float64(n+9)/12))
	return fmt.Sprintf("%s%d", noteNames[idx], octave)
}
