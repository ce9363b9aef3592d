// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and its command channels
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// CommandKind identifies a keyboard-issued command
type CommandKind int

const (
	CommandFrequency CommandKind = iota
	CommandToggle
)

// Command is a control request from the keyboard
type Command struct {
	Kind      CommandKind
	Frequency float64
}

// Controls holds channels carrying keyboard commands out of the TUI
type Controls struct {
	Commands chan Command
	Quit     chan struct{}
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Commands: make(chan Command, 10),
		Quit:     make(chan struct{}, 1),
	}
}

// send forwards a command without blocking the UI; nil controls are
// allowed for tests
func (c *Controls) send(cmd Command) {
	if c == nil {
		return
	}
	select {
	case c.Commands <- cmd:
	default:
	}
}

func (c *Controls) quit() {
	if c == nil {
		return
	}
	select {
	case c.Quit <- struct{}{}:
	default:
	}
}

// NewModel creates a new TUI model
func NewModel(name string, controls *Controls) Model {
	return Model{
		name:      name,
		controls:  controls,
		startTime: time.Now(),
	}
}

// TUI manages the synthesizer TUI program
type TUI struct {
	program *tea.Program
	updates chan StatusMsg
	done    chan struct{}
}

// New creates the TUI program for the named synthesizer
func New(name string, controls *Controls) *TUI {
	return &TUI{
		program: tea.NewProgram(NewModel(name, controls), tea.WithAltScreen()),
		updates: make(chan StatusMsg, 10),
		done:    make(chan struct{}),
	}
}

// Run runs the program until the user exits
func (t *TUI) Run() error {
	go func() {
		for {
			select {
			case status := <-t.updates:
				t.program.Send(status)
			case <-t.done:
				return
			}
		}
	}()
	defer close(t.done)

	_, err := t.program.Run()
	return err
}

// Update sends a status update to the TUI
func (t *TUI) Update(status StatusMsg) {
	select {
	case t.updates <- status:
	default:
		// Don't block if channel is full
	}
}

// Stop stops the TUI
func (t *TUI) Stop() {
	t.program.Quit()
}
