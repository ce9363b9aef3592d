// ABOUTME: Entry point for the tonesynth sine synthesizer
// ABOUTME: Parses CLI flags, starts the synthesizer and wires TUI, control and mDNS
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/tonesynth/internal/control"
	"github.com/Resonate-Protocol/tonesynth/internal/discovery"
	"github.com/Resonate-Protocol/tonesynth/internal/ui"
	"github.com/Resonate-Protocol/tonesynth/internal/version"
	"github.com/Resonate-Protocol/tonesynth/pkg/audio/output"
	"github.com/Resonate-Protocol/tonesynth/pkg/protocol"
	"github.com/Resonate-Protocol/tonesynth/pkg/synth"
)

var (
	freq        = flag.Float64("freq", synth.DefaultFrequency, "Initial tone frequency in Hz")
	sampleRate  = flag.Int("sample-rate", synth.DefaultSampleRate, "Output sample rate in Hz")
	fps         = flag.Int("fps", synth.DefaultTargetFPS, "Scheduler ticks per second")
	backends    = flag.String("backends", "", "Comma-separated output backends in priority order (default: pulse,malgo,oto,portaudio,sdl,null)")
	realtime    = flag.Bool("realtime", false, "Request elevated scheduling priority for the audio thread")
	initTimeout = flag.Duration("init-timeout", output.DefaultInitTimeout, "Per-backend initialization timeout")
	controlPort = flag.Int("control-port", control.DefaultPort, "WebSocket control port")
	noControl   = flag.Bool("no-control", false, "Disable the WebSocket control endpoint")
	noMDNS      = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	name        = flag.String("name", "", "Synthesizer friendly name (default: hostname-tonesynth)")
	logFile     = flag.String("log-file", "tonesynth.log", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, read commands from stdin and stream logs")
	debug       = flag.Bool("debug", false, "Enable debug logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
	listOutputs = flag.Bool("list-backends", false, "List output backends and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *listOutputs {
		for _, b := range output.Backends() {
			fmt.Println(b)
		}
		return
	}

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	synthName := *name
	if synthName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		synthName = fmt.Sprintf("%s-tonesynth", hostname)
	}

	backendNames := output.ParseBackends(*backends)
	if _, err := output.Candidates(backendNames); err != nil {
		log.Fatalf("Invalid -backends: %v", err)
	}

	log.Printf("Starting %s: %s", version.String(), synthName)
	if *debug {
		log.Printf("Debug logging enabled")
	}

	s, err := synth.New(synth.Config{
		SampleRate:  *sampleRate,
		TargetFPS:   *fps,
		Frequency:   *freq,
		Backends:    backendNames,
		InitTimeout: *initTimeout,
		Realtime:    *realtime,
	})
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		if errors.Is(err, synth.ErrFatalInit) {
			fmt.Fprintf(os.Stderr, "No audio output available: %v\n", err)
		}
		log.Fatalf("Failed to start synthesizer: %v", err)
	}

	// Control endpoint and mDNS
	var srv *control.Server
	var mdnsMgr *discovery.Manager
	if !*noControl {
		srv = control.New(control.Config{
			Port:  *controlPort,
			Name:  synthName,
			Debug: *debug,
		}, s)
		if err := srv.Start(); err != nil {
			log.Printf("Control endpoint disabled: %v", err)
			srv = nil
		}
	}
	if srv != nil && !*noMDNS {
		mdnsMgr = discovery.NewManager(discovery.Config{
			ServiceName: synthName,
			Port:        srv.Port(),
			Path:        protocol.ControlPath,
			Version:     version.Version,
		})
		if err := mdnsMgr.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		}
	}

	controls := ui.NewControls()

	var tui *ui.TUI
	tuiDone := make(chan struct{})
	if useTUI {
		tui = ui.New(synthName, controls)
		go func() {
			defer close(tuiDone)
			if err := tui.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
	} else {
		log.Printf("Commands: q=400Hz w=500Hz +/-=semitone s=start/stop e=exit, or a frequency in Hz")
		go ui.ReadLines(os.Stdin, controls, s.Frequency)
	}

	statusFn := func(lastErr string) ui.StatusMsg {
		stats := s.Stats()
		remotes := 0
		if srv != nil {
			remotes = srv.ClientCount()
		}
		return ui.StatusMsg{
			Running:      stats.Running,
			Backend:      stats.Backend,
			Frequency:    stats.Frequency,
			SampleRate:   stats.SampleRate,
			FrameSamples: stats.FrameSamples,
			Buffered:     stats.Buffered,
			Frames:       stats.Scheduler.Frames,
			Skipped:      stats.Scheduler.Skipped,
			Underruns:    stats.Underruns,
			Remotes:      remotes,
			Error:        lastErr,
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	runLoop(ctx, s, controls, sigChan, tui, tuiDone, statusFn)

	// Shutdown order: stop accepting control, stop the audio thread, then the UI
	if mdnsMgr != nil {
		mdnsMgr.Stop()
	}
	if srv != nil {
		srv.Stop()
	}
	if err := s.Stop(); err != nil {
		log.Printf("Error stopping synthesizer: %v", err)
	}
	if tui != nil {
		tui.Stop()
		<-tuiDone
	}

	log.Printf("Synthesizer stopped")
}

// runLoop applies keyboard commands and refreshes the TUI until exit
func runLoop(ctx context.Context, s *synth.Synthesizer, controls *ui.Controls, sigChan <-chan os.Signal, tui *ui.TUI, tuiDone <-chan struct{}, status func(string) ui.StatusMsg) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	var lastErr string
	for {
		select {
		case cmd := <-controls.Commands:
			lastErr = ""
			if err := applyCommand(ctx, s, cmd); err != nil {
				log.Printf("Command failed: %v", err)
				lastErr = err.Error()
			}
			if tui != nil {
				tui.Update(status(lastErr))
			}

		case <-ticker.C:
			if tui != nil {
				tui.Update(status(lastErr))
			}

		case <-controls.Quit:
			log.Printf("Exit requested")
			return

		case <-tuiDone:
			return

		case sig := <-sigChan:
			log.Printf("Received %v signal, shutting down", sig)
			return
		}
	}
}

// applyCommand routes a keyboard command to the synthesizer
func applyCommand(ctx context.Context, s *synth.Synthesizer, cmd ui.Command) error {
	switch cmd.Kind {
	case ui.CommandFrequency:
		if err := s.SetFrequency(cmd.Frequency); err != nil {
			return err
		}
		log.Printf("Frequency set to %.2fHz", cmd.Frequency)
	case ui.CommandToggle:
		if s.Running() {
			return s.Stop()
		}
		return s.Start(ctx)
	}
	return nil
}
