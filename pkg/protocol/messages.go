// ABOUTME: Tonesynth control message type definitions
// ABOUTME: Defines structs for all message types in the control protocol
package protocol

import (
	"encoding/json"
	"fmt"
	"math"
)

const (
	// ProtocolVersion is the control protocol version
	ProtocolVersion = 1

	// ControlPath is the HTTP path of the WebSocket endpoint
	ControlPath = "/tonesynth"
)

// Message types
const (
	TypeClientHello   = "client/hello"
	TypeClientGoodbye = "client/goodbye"
	TypeServerHello   = "server/hello"
	TypeServerError   = "server/error"
	TypeSynthCommand  = "synth/command"
	TypeSynthState    = "synth/state"
)

// Commands carried by synth/command
const (
	CommandStart     = "start"
	CommandStop      = "stop"
	CommandFrequency = "frequency"
	CommandStatus    = "status"
)

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ClientHello is sent by clients to initiate the handshake
type ClientHello struct {
	ClientID   string      `json:"client_id"`
	Name       string      `json:"name"`
	Version    int         `json:"version"`
	DeviceInfo *DeviceInfo `json:"device_info,omitempty"`
}

// DeviceInfo contains device identification
type DeviceInfo struct {
	ProductName     string `json:"product_name"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
}

// ClientGoodbye is sent before a client disconnects
type ClientGoodbye struct {
	Reason string `json:"reason"`
}

// ServerHello is the server's response to client/hello
type ServerHello struct {
	ServerID   string `json:"server_id"`
	Name       string `json:"name"`
	Version    int    `json:"version"`
	SampleRate int    `json:"sample_rate"`
}

// ServerError reports a rejected message
type ServerError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SynthCommand is a control request from a client
type SynthCommand struct {
	Command   string  `json:"command"`
	Frequency float64 `json:"frequency,omitempty"`
}

// Validate checks the command name and, for frequency commands, the value
func (c SynthCommand) Validate() error {
	switch c.Command {
	case CommandStart, CommandStop, CommandStatus:
		return nil
	case CommandFrequency:
		if math.IsNaN(c.Frequency) || math.IsInf(c.Frequency, 0) || c.Frequency <= 0 {
			return fmt.Errorf("invalid frequency: %v", c.Frequency)
		}
		return nil
	default:
		return fmt.Errorf("unknown command: %q", c.Command)
	}
}

// SynthState reports the synthesizer's current state
type SynthState struct {
	Running      bool    `json:"running"`
	Backend      string  `json:"backend,omitempty"`
	Frequency    float64 `json:"frequency"`
	SampleRate   int     `json:"sample_rate"`
	FrameSamples int     `json:"frame_samples"`
	BufferedMs   float64 `json:"buffered_ms"`
	Frames       int64   `json:"frames"`
	Skipped      int64   `json:"skipped"`
	Underruns    int64   `json:"underruns"`
}

// DecodePayload decodes a message payload into v. Payloads arrive as
// generic JSON values, so they are re-encoded and decoded into the target.
func DecodePayload(msg Message, v interface{}) error {
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", msg.Type, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s payload: %w", msg.Type, err)
	}
	return nil
}
