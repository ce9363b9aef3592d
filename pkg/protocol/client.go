// ABOUTME: WebSocket client for the tonesynth control protocol
// ABOUTME: Handles connection, handshake, commands and state routing
package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// handshakeTimeout bounds the wait for server/hello
const handshakeTimeout = 5 * time.Second

// ErrNotConnected is returned when sending on a closed client
var ErrNotConnected = errors.New("not connected")

// Config holds client configuration
type Config struct {
	ServerAddr string
	ClientID   string
	Name       string
	DeviceInfo DeviceInfo
}

// Client represents a control connection to a synthesizer
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex

	// Message channels
	States chan SynthState
	Errors chan ServerError

	// Server identity from the handshake
	Server ServerHello

	// State
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new control client
func NewClient(config Config) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config: config,
		States: make(chan SynthState, 10),
		Errors: make(chan ServerError, 10),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Connect establishes the WebSocket connection and performs the handshake
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: ControlPath}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()

	return nil
}

// handshake sends client/hello and waits for server/hello
func (c *Client) handshake() error {
	hello := ClientHello{
		ClientID:   c.config.ClientID,
		Name:       c.config.Name,
		Version:    ProtocolVersion,
		DeviceInfo: &c.config.DeviceInfo,
	}

	if err := c.sendJSON(Message{Type: TypeClientHello, Payload: hello}); err != nil {
		return fmt.Errorf("failed to send hello: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	defer c.conn.SetReadDeadline(time.Time{})

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read server hello: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to parse server hello: %w", err)
	}

	switch msg.Type {
	case TypeServerHello:
	case TypeServerError:
		var serverErr ServerError
		if err := DecodePayload(msg, &serverErr); err != nil {
			return err
		}
		return fmt.Errorf("server rejected hello: %s: %s", serverErr.Error, serverErr.Message)
	default:
		return fmt.Errorf("expected %s, got %s", TypeServerHello, msg.Type)
	}

	var serverHello ServerHello
	if err := DecodePayload(msg, &serverHello); err != nil {
		return err
	}
	c.Server = serverHello

	log.Printf("Handshake complete with %s (%s)", serverHello.Name, serverHello.ServerID)
	return nil
}

// readMessages routes incoming messages until the connection closes
func (c *Client) readMessages() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		close(c.States)
		close(c.Errors)
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Read error: %v", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Failed to parse message: %v", err)
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage dispatches one message to its channel. Full channels drop
// the message rather than stall the reader.
func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case TypeSynthState:
		var state SynthState
		if err := DecodePayload(msg, &state); err != nil {
			log.Printf("%v", err)
			return
		}
		select {
		case c.States <- state:
		default:
		}

	case TypeServerError:
		var serverErr ServerError
		if err := DecodePayload(msg, &serverErr); err != nil {
			log.Printf("%v", err)
			return
		}
		select {
		case c.Errors <- serverErr:
		default:
			log.Printf("Server error: %s: %s", serverErr.Error, serverErr.Message)
		}

	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// SendCommand validates and sends a synth/command
func (c *Client) SendCommand(cmd SynthCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return c.sendJSON(Message{Type: TypeSynthCommand, Payload: cmd})
}

// Start asks the synthesizer to start playback
func (c *Client) Start() error {
	return c.SendCommand(SynthCommand{Command: CommandStart})
}

// Stop asks the synthesizer to stop playback
func (c *Client) Stop() error {
	return c.SendCommand(SynthCommand{Command: CommandStop})
}

// SetFrequency asks the synthesizer to change its tone
func (c *Client) SetFrequency(hz float64) error {
	return c.SendCommand(SynthCommand{Command: CommandFrequency, Frequency: hz})
}

// RequestStatus asks the synthesizer for an immediate synth/state
func (c *Client) RequestStatus() error {
	return c.SendCommand(SynthCommand{Command: CommandStatus})
}

// sendJSON sends a JSON message
func (c *Client) sendJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return ErrNotConnected
	}

	return c.conn.WriteJSON(v)
}

// Close says goodbye and closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	if c.connected && c.conn != nil {
		c.conn.WriteJSON(Message{Type: TypeClientGoodbye, Payload: ClientGoodbye{Reason: "shutdown"}})
	}
	c.connected = false
	c.mu.Unlock()

	c.cancel()

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
