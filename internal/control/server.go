// ABOUTME: WebSocket control server for a running synthesizer
// ABOUTME: Accepts remote clients, applies synth/command and broadcasts synth/state
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Resonate-Protocol/tonesynth/pkg/protocol"
	"github.com/Resonate-Protocol/tonesynth/pkg/synth"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// DefaultPort is the default control port
	DefaultPort = 8928

	// DefaultStateInterval is how often synth/state is broadcast
	DefaultStateInterval = 500 * time.Millisecond

	writeDeadline = 10 * time.Second
	pingInterval  = 30 * time.Second
)

// Synth is the control surface the server drives
type Synth interface {
	Start(ctx context.Context) error
	Stop() error
	SetFrequency(hz float64) error
	Stats() synth.Stats
}

// Config holds server configuration
type Config struct {
	Port          int // 0 picks a free port
	Name          string
	Debug         bool
	StateInterval time.Duration
}

// Server serves the control protocol
type Server struct {
	config   Config
	serverID string
	synth    Synth
	upgrader websocket.Upgrader

	httpServer *http.Server
	mux        *http.ServeMux
	listener   net.Listener

	clients   map[string]*Client
	clientsMu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
}

// Client represents a connected remote
type Client struct {
	ID   string
	Name string
	Conn *websocket.Conn

	sendChan chan interface{}
}

// New creates a control server for synth
func New(config Config, s Synth) *Server {
	if config.StateInterval <= 0 {
		config.StateInterval = DefaultStateInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := &Server{
		config:   config,
		serverID: uuid.New().String(),
		synth:    s,
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Local-network control only; browsers on other origins are logged
				if origin := r.Header.Get("Origin"); origin != "" {
					log.Printf("Warning: accepting WebSocket from origin: %s", origin)
				}
				return true
			},
		},
		clients: make(map[string]*Client),
		ctx:     ctx,
		cancel:  cancel,
	}
	srv.mux.HandleFunc(protocol.ControlPath, srv.handleWebSocket)

	return srv
}

// Handler returns the HTTP handler serving the control endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on the configured port and serves in the background
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.config.Port, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{Handler: s.mux}

	log.Printf("Control server %s listening on %s%s", s.serverID, listener.Addr(), protocol.ControlPath)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Control server error: %v", err)
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.broadcastLoop()
	}()

	return nil
}

// Port returns the bound port, or the configured one before Start
func (s *Server) Port() int {
	if s.listener == nil {
		return s.config.Port
	}
	return s.listener.Addr().(*net.TCPAddr).Port
}

// ClientCount returns the number of connected remotes
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Stop closes all connections and shuts the HTTP server down
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.shutdownMu.Lock()
		s.isShutdown = true
		s.shutdownMu.Unlock()

		s.cancel()

		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.httpServer.Shutdown(ctx); err != nil {
				log.Printf("Control server shutdown error: %v", err)
			}
		}

		// Hijacked WebSocket connections are not closed by Shutdown
		s.clientsMu.RLock()
		for _, client := range s.clients {
			client.Conn.Close()
		}
		s.clientsMu.RUnlock()

		s.wg.Wait()
		log.Printf("Control server stopped")
	})
}

// handleWebSocket upgrades and serves one connection
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	if s.config.Debug {
		log.Printf("[DEBUG] New control connection from %s", r.RemoteAddr)
	}

	s.wg.Add(1)
	defer s.wg.Done()
	s.handleConnection(conn)
}

// handleConnection runs the handshake and then the read loop
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	s.shutdownMu.RLock()
	if s.isShutdown {
		s.shutdownMu.RUnlock()
		log.Printf("Rejecting connection during shutdown")
		return
	}
	s.shutdownMu.RUnlock()

	conn.SetReadDeadline(time.Now().Add(writeDeadline))
	_, data, err := conn.ReadMessage()
	if err != nil {
		log.Printf("Error reading hello: %v", err)
		return
	}
	conn.SetReadDeadline(time.Time{})

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}

	if msg.Type != protocol.TypeClientHello {
		log.Printf("Expected %s, got %s", protocol.TypeClientHello, msg.Type)
		writeError(conn, "handshake_required", "first message must be "+protocol.TypeClientHello)
		return
	}

	var hello protocol.ClientHello
	if err := protocol.DecodePayload(msg, &hello); err != nil {
		log.Printf("Error decoding client hello: %v", err)
		return
	}

	if hello.ClientID == "" {
		hello.ClientID = uuid.New().String()
	}
	if hello.Name == "" {
		hello.Name = hello.ClientID
	}

	client := &Client{
		ID:       hello.ClientID,
		Name:     hello.Name,
		Conn:     conn,
		sendChan: make(chan interface{}, 32),
	}

	s.clientsMu.Lock()
	if existing, exists := s.clients[client.ID]; exists {
		s.clientsMu.Unlock()
		log.Printf("Client ID %s already connected (name: %s), rejecting duplicate", client.ID, existing.Name)
		writeError(conn, "duplicate_client_id", "Client ID already connected")
		return
	}
	s.clients[client.ID] = client
	s.clientsMu.Unlock()

	log.Printf("Remote connected: %s (ID: %s)", client.Name, client.ID)

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client.ID)
		close(client.sendChan)
		s.clientsMu.Unlock()
		log.Printf("Remote disconnected: %s", client.Name)
	}()

	serverHello := protocol.ServerHello{
		ServerID:   s.serverID,
		Name:       s.config.Name,
		Version:    protocol.ProtocolVersion,
		SampleRate: s.synth.Stats().SampleRate,
	}
	if err := s.sendMessage(client, protocol.TypeServerHello, serverHello); err != nil {
		log.Printf("Error sending server hello: %v", err)
		return
	}
	s.sendMessage(client, protocol.TypeSynthState, StateFromStats(s.synth.Stats()))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(client)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		if !s.handleClientMessage(client, data) {
			return
		}
	}
}

// clientWriter drains a client's send queue onto the socket
func (s *Server) clientWriter(client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.sendChan:
			if !ok {
				return
			}
			client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := client.Conn.WriteJSON(msg); err != nil {
				log.Printf("Error writing to %s: %v", client.Name, err)
				return
			}

		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

// handleClientMessage processes one message. It returns false when the
// client said goodbye.
func (s *Server) handleClientMessage(client *Client, data []byte) bool {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		s.sendMessage(client, protocol.TypeServerError, protocol.ServerError{Error: "bad_message", Message: err.Error()})
		return true
	}

	switch msg.Type {
	case protocol.TypeSynthCommand:
		var cmd protocol.SynthCommand
		if err := protocol.DecodePayload(msg, &cmd); err != nil {
			s.sendMessage(client, protocol.TypeServerError, protocol.ServerError{Error: "bad_command", Message: err.Error()})
			return true
		}
		s.handleCommand(client, cmd)
	case protocol.TypeClientGoodbye:
		return false
	default:
		log.Printf("Unknown message type: %s", msg.Type)
		s.sendMessage(client, protocol.TypeServerError, protocol.ServerError{Error: "unknown_type", Message: msg.Type})
	}
	return true
}

// handleCommand applies a command to the synthesizer and broadcasts the
// resulting state
func (s *Server) handleCommand(client *Client, cmd protocol.SynthCommand) {
	if s.config.Debug {
		log.Printf("[DEBUG] %s: command %s %v", client.Name, cmd.Command, cmd.Frequency)
	}

	if err := cmd.Validate(); err != nil {
		s.sendMessage(client, protocol.TypeServerError, protocol.ServerError{Error: "bad_command", Message: err.Error()})
		return
	}

	var err error
	switch cmd.Command {
	case protocol.CommandStart:
		err = s.synth.Start(s.ctx)
	case protocol.CommandStop:
		err = s.synth.Stop()
	case protocol.CommandFrequency:
		err = s.synth.SetFrequency(cmd.Frequency)
	case protocol.CommandStatus:
		s.sendMessage(client, protocol.TypeSynthState, StateFromStats(s.synth.Stats()))
		return
	}

	if err != nil {
		log.Printf("Command %s from %s failed: %v", cmd.Command, client.Name, err)
		s.sendMessage(client, protocol.TypeServerError, protocol.ServerError{Error: cmd.Command + "_failed", Message: err.Error()})
		return
	}

	log.Printf("%s: %s applied", client.Name, cmd.Command)
	s.broadcastState()
}

// broadcastLoop periodically pushes state to every client
func (s *Server) broadcastLoop() {
	ticker := time.NewTicker(s.config.StateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.broadcastState()
		}
	}
}

// broadcastState sends the current state to every client
func (s *Server) broadcastState() {
	state := StateFromStats(s.synth.Stats())

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, client := range s.clients {
		if err := s.sendMessage(client, protocol.TypeSynthState, state); err != nil && s.config.Debug {
			log.Printf("[DEBUG] Dropping state for %s: %v", client.Name, err)
		}
	}
}

// sendMessage queues a JSON message for a client
func (s *Server) sendMessage(client *Client, msgType string, payload interface{}) error {
	msg := protocol.Message{
		Type:    msgType,
		Payload: payload,
	}

	select {
	case client.sendChan <- msg:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}

// writeError writes a server/error directly, before a client is registered
func writeError(conn *websocket.Conn, code, message string) {
	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	conn.WriteJSON(protocol.Message{
		Type:    protocol.TypeServerError,
		Payload: protocol.ServerError{Error: code, Message: message},
	})
}

// StateFromStats converts a synthesizer snapshot to its wire form
func StateFromStats(stats synth.Stats) protocol.SynthState {
	return protocol.SynthState{
		Running:      stats.Running,
		Backend:      stats.Backend,
		Frequency:    stats.Frequency,
		SampleRate:   stats.SampleRate,
		FrameSamples: stats.FrameSamples,
		BufferedMs:   float64(stats.Buffered) / float64(time.Millisecond),
		Frames:       stats.Scheduler.Frames,
		Skipped:      stats.Scheduler.Skipped,
		Underruns:    stats.Underruns,
	}
}
