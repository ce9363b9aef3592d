// ABOUTME: Tonesynth control protocol package
// ABOUTME: Defines control messages and the WebSocket control client
// Package protocol implements the tonesynth control protocol.
//
// Control messages are JSON envelopes ({"type": ..., "payload": ...}) sent
// over a WebSocket at ControlPath. They carry the synthesizer's control
// surface (start, stop, set frequency) and state reports; audio itself never
// crosses the connection.
//
// Example:
//
//	client := protocol.NewClient(protocol.Config{ServerAddr: "localhost:8928", Name: "remote"})
//	err := client.Connect()
//	err = client.SetFrequency(500)
package protocol
