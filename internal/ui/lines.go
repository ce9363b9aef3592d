// ABOUTME: Line-oriented keyboard control for -no-tui mode
// ABOUTME: Parses typed commands from stdin into the same Controls channels
package ui

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// ParseLine converts one typed line into a command. quit is true for the
// exit keys. A bare number sets the frequency directly.
func ParseLine(line string, current float64) (cmd Command, quit bool, err error) {
	line = strings.ToLower(strings.TrimSpace(line))

	switch line {
	case "e", "esc", "exit", "quit":
		return Command{}, true, nil
	case "q":
		return Command{Kind: CommandFrequency, Frequency: PresetLow}, false, nil
	case "w":
		return Command{Kind: CommandFrequency, Frequency: PresetHigh}, false, nil
	case "+":
		return Command{Kind: CommandFrequency, Frequency: current * semitone}, false, nil
	case "-":
		return Command{Kind: CommandFrequency, Frequency: current / semitone}, false, nil
	case "s", "space", "toggle":
		return Command{Kind: CommandToggle}, false, nil
	}

	hz, perr := strconv.ParseFloat(strings.TrimSuffix(line, "hz"), 64)
	if perr != nil || hz <= 0 {
		return Command{}, false, fmt.Errorf("unknown command %q (q, w, +, -, s, e or a frequency in Hz)", line)
	}
	return Command{Kind: CommandFrequency, Frequency: hz}, false, nil
}

// ReadLines feeds commands typed on r into controls until r is exhausted or
// an exit command is read. current reports the frequency the +/- keys step
// from.
func ReadLines(r io.Reader, controls *Controls, current func() float64) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}

		cmd, quit, err := ParseLine(scanner.Text(), current())
		if err != nil {
			log.Printf("%v", err)
			continue
		}
		if quit {
			controls.quit()
			return
		}
		// Blocking send: typed input is slow enough to never back up
		controls.Commands <- cmd
	}
}
