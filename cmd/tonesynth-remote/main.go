// ABOUTME: Remote control CLI for a running tonesynth
// ABOUTME: Finds a synthesizer via mDNS or -server and sends one control command
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/Resonate-Protocol/tonesynth/internal/discovery"
	"github.com/Resonate-Protocol/tonesynth/internal/version"
	"github.com/Resonate-Protocol/tonesynth/pkg/protocol"
	"github.com/google/uuid"
)

var (
	serverAddr = flag.String("server", "", "Synthesizer address host:port (default: discover via mDNS)")
	timeout    = flag.Duration("timeout", 5*time.Second, "Discovery and reply timeout")
	watch      = flag.Bool("watch", false, "Keep printing state updates after the command")
	verbose    = flag.Bool("v", false, "Verbose logging")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <start|stop|status|freq HZ>\n\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cmd, err := parseArgs(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(2)
	}

	addr := *serverAddr
	if addr == "" {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		server, err := discovery.Discover(ctx)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Discovery failed: %v\n", err)
			os.Exit(1)
		}
		addr = server.Addr()
		fmt.Printf("Found %s at %s\n", server.Name, addr)
	}

	hostname, _ := os.Hostname()
	client := protocol.NewClient(protocol.Config{
		ServerAddr: addr,
		ClientID:   uuid.New().String(),
		Name:       fmt.Sprintf("%s-remote", hostname),
		DeviceInfo: protocol.DeviceInfo{
			ProductName:     version.Product + "-remote",
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
		},
	})
	if err := client.Connect(); err != nil {
		fmt.Fprintf(os.Stderr, "Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	// Discard the state pushed on connect so the printed state reflects the command
	drain(client.States, 100*time.Millisecond)

	if err := client.SendCommand(cmd); err != nil {
		fmt.Fprintf(os.Stderr, "Command failed: %v\n", err)
		os.Exit(1)
	}

	deadline := time.After(*timeout)
	for {
		select {
		case state, ok := <-client.States:
			if !ok {
				fmt.Fprintln(os.Stderr, "Connection closed")
				os.Exit(1)
			}
			printState(state)
			if !*watch {
				return
			}
			deadline = nil
		case serverErr, ok := <-client.Errors:
			if !ok {
				fmt.Fprintln(os.Stderr, "Connection closed")
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "Error: %s: %s\n", serverErr.Error, serverErr.Message)
			os.Exit(1)
		case <-deadline:
			fmt.Fprintln(os.Stderr, "No reply from synthesizer")
			os.Exit(1)
		}
	}
}

// parseArgs maps the positional arguments to a command
func parseArgs(args []string) (protocol.SynthCommand, error) {
	if len(args) == 0 {
		return protocol.SynthCommand{}, fmt.Errorf("missing command")
	}

	var cmd protocol.SynthCommand
	switch args[0] {
	case "start":
		cmd.Command = protocol.CommandStart
	case "stop":
		cmd.Command = protocol.CommandStop
	case "status":
		cmd.Command = protocol.CommandStatus
	case "freq", "frequency":
		if len(args) < 2 {
			return cmd, fmt.Errorf("freq needs a value in Hz")
		}
		hz, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return cmd, fmt.Errorf("invalid frequency %q: %w", args[1], err)
		}
		cmd.Command = protocol.CommandFrequency
		cmd.Frequency = hz
	default:
		return cmd, fmt.Errorf("unknown command %q", args[0])
	}

	return cmd, cmd.Validate()
}

func printState(s protocol.SynthState) {
	status := "stopped"
	if s.Running {
		status = "playing on " + s.Backend
	}
	fmt.Printf("%s: %.2fHz, %dHz/%d samples per frame, buffered %.0fms, frames %d, skipped %d, underruns %d\n",
		status, s.Frequency, s.SampleRate, s.FrameSamples, s.BufferedMs, s.Frames, s.Skipped, s.Underruns)
}

// drain discards values arriving on ch for d
func drain(ch <-chan protocol.SynthState, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-timer.C:
			return
		}
	}
}
