// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests key bindings, status updates and rendering
package ui

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, key string) (Model, tea.Cmd) {
	updated, cmd := m.Update(keyMsg(key))
	return updated.(Model), cmd
}

func TestNewModel(t *testing.T) {
	model := NewModel("Test", nil) // Controls are optional for testing

	if model.running {
		t.Error("expected running to be false initially")
	}
	if model.showDebug {
		t.Error("expected showDebug to be false initially")
	}
	if model.name != "Test" {
		t.Errorf("expected name Test, got %q", model.name)
	}
}

func TestPresetKeys(t *testing.T) {
	tests := []struct {
		key  string
		want float64
	}{
		{"q", PresetLow},
		{"w", PresetHigh},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			controls := NewControls()
			model := NewModel("Test", controls)
			model.frequency = 440

			model, cmd := press(model, tt.key)
			if cmd != nil {
				t.Error("preset key should not return a command")
			}
			if model.frequency != tt.want {
				t.Errorf("expected frequency %v, got %v", tt.want, model.frequency)
			}

			select {
			case c := <-controls.Commands:
				if c.Kind != CommandFrequency || c.Frequency != tt.want {
					t.Errorf("unexpected command: %+v", c)
				}
			default:
				t.Fatal("expected a frequency command")
			}
		})
	}
}

func TestExitKeys(t *testing.T) {
	for _, key := range []string{"e", "esc", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			controls := NewControls()
			model, cmd := press(NewModel("Test", controls), key)

			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected tea.QuitMsg")
			}
			if !model.quitting {
				t.Error("expected quitting to be set")
			}

			select {
			case <-controls.Quit:
			default:
				t.Error("expected quit signal on controls")
			}
		})
	}
}

func TestQDoesNotQuit(t *testing.T) {
	model, cmd := press(NewModel("Test", nil), "q")
	if cmd != nil || model.quitting {
		t.Error("q selects 400Hz and must not exit")
	}
}

func TestSemitoneKeys(t *testing.T) {
	model := NewModel("Test", nil)
	model.frequency = 440
	model.sampleRate = 44100

	model, _ = press(model, "+")
	if math.Abs(model.frequency-466.1638) > 0.001 {
		t.Errorf("expected ~466.16Hz after +, got %v", model.frequency)
	}

	model, _ = press(model, "-")
	model, _ = press(model, "-")
	if math.Abs(model.frequency-415.3047) > 0.001 {
		t.Errorf("expected ~415.30Hz after two -, got %v", model.frequency)
	}
}

func TestFrequencyClamped(t *testing.T) {
	model := NewModel("Test", nil)
	model.sampleRate = 44100

	model.frequency = minFrequency
	model, _ = press(model, "-")
	if model.frequency != minFrequency {
		t.Errorf("expected clamp to %v, got %v", minFrequency, model.frequency)
	}

	model.frequency = 22050
	model, _ = press(model, "+")
	if model.frequency != 22050 {
		t.Errorf("expected clamp to Nyquist, got %v", model.frequency)
	}
}

func TestSpaceTogglesPlayback(t *testing.T) {
	controls := NewControls()
	press(NewModel("Test", controls), " ")

	select {
	case c := <-controls.Commands:
		if c.Kind != CommandToggle {
			t.Errorf("expected toggle, got %+v", c)
		}
	default:
		t.Fatal("expected toggle command")
	}
}

func TestDebugToggle(t *testing.T) {
	model := NewModel("Test", nil)

	model, _ = press(model, "d")
	if !model.showDebug {
		t.Error("expected showDebug after d")
	}
	model, _ = press(model, "d")
	if model.showDebug {
		t.Error("expected showDebug cleared after second d")
	}
}

func TestFullControlsDoNotBlock(t *testing.T) {
	controls := &Controls{Commands: make(chan Command), Quit: make(chan struct{})}
	model := NewModel("Test", controls)

	done := make(chan struct{})
	go func() {
		press(model, "w")
		press(model, "e")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("key handling blocked on a full channel")
	}
}

func TestApplyStatus(t *testing.T) {
	model := NewModel("Test", nil)

	model.applyStatus(StatusMsg{
		Running:      true,
		Backend:      "pulse",
		Frequency:    500,
		SampleRate:   44100,
		FrameSamples: 735,
		Buffered:     320 * time.Millisecond,
		Frames:       42,
		Remotes:      2,
	})

	if !model.running || model.backend != "pulse" || model.frequency != 500 {
		t.Errorf("unexpected model after status: %+v", model)
	}
	if model.frameSamples != 735 || model.remotes != 2 || model.frames != 42 {
		t.Errorf("unexpected counters after status: %+v", model)
	}

	// A stopped status keeps the last known frequency and format
	model.applyStatus(StatusMsg{})
	if model.running || model.frequency != 500 || model.sampleRate != 44100 {
		t.Errorf("unexpected model after empty status: %+v", model)
	}
}

func TestViewShowsStatus(t *testing.T) {
	model := NewModel("Kitchen", nil)
	model.applyStatus(StatusMsg{Running: true, Backend: "oto", Frequency: 440, SampleRate: 44100, FrameSamples: 735})

	view := model.View()
	for _, want := range []string{"Kitchen", "Playing on oto", "440.00 Hz", "A4", "735 samples"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	model.lastError = "no backend"
	if !strings.Contains(model.View(), "no backend") {
		t.Error("view should show the last error")
	}
}

func TestNoteName(t *testing.T) {
	tests := []struct {
		hz   float64
		want string
	}{
		{440, "A4"},
		{261.63, "C4"},
		{523.25, "C5"},
		{493.88, "B4"},
		{400, "G4"},
		{500, "B4"},
		{27.5, "A0"},
		{0, "-"},
		{math.NaN(), "-"},
	}

	for _, tt := range tests {
		if got := noteName(tt.hz); got != tt.want {
			t.Errorf("noteName(%v) = %q, want %q", tt.hz, got, tt.want)
		}
	}
}

func TestRenderBar(t *testing.T) {
	if bar := renderBar(250, 500, 10); bar != "█████░░░░░" {
		t.Errorf("unexpected half bar %q", bar)
	}
	if bar := renderBar(900, 500, 4); bar != "████" {
		t.Errorf("overflow should fill the bar, got %q", bar)
	}
	if bar := renderBar(-1, 500, 4); bar != "░░░░" {
		t.Errorf("negative should be empty, got %q", bar)
	}
}
