package neohubtest

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type Option func(*Server)

// WithAccessToken makes the server reject handshakes that do not carry
// "Authorization: Bearer <token>".
func WithAccessToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

func WithSessions(sessions ...Session) Option {
	return func(s *Server) {
		s.sessions = sessions
	}
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *client) writeRaw(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

type Server struct {
	// URL is the base URL of the server started by NewServer, http://ip:port.
	URL string

	token    string
	router   chi.Router
	upgrader websocket.Upgrader
	httpSrv  *httptest.Server

	mu          sync.Mutex
	sessions    []Session
	clients     map[*client]struct{}
	commands    []Command
	connections int
}

// New builds a server without starting it; mount Handler wherever needed.
func New(opts ...Option) *Server {
	s := &Server{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.With(s.authorize).Get("/api/ws", s.serveWS)
	s.router = r

	return s
}

// NewServer starts a server on a loopback port. Callers should Close it.
func NewServer(opts ...Option) *Server {
	s := New(opts...)
	s.httpSrv = httptest.NewServer(s.router)
	s.URL = s.httpSrv.URL
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Host and Port split URL for building client endpoints.
func (s *Server) Host() string {
	host, _ := s.hostPort()
	return host
}

func (s *Server) Port() int {
	_, port := s.hostPort()
	return port
}

func (s *Server) hostPort() (string, int) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", 0
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		return "", 0
	}
	n, _ := strconv.Atoi(port)
	return host, n
}

func (s *Server) Close() {
	s.DropClients()
	if s.httpSrv != nil {
		s.httpSrv.Close()
	}
}

// SetSessions replaces the state served from now on. Connected clients are not
// notified; use BroadcastFullState for that.
func (s *Server) SetSessions(sessions ...Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = sessions
}

// BroadcastFullState pushes the current state to every client.
func (s *Server) BroadcastFullState() {
	s.Broadcast(s.fullState())
}

// Broadcast sends v, encoded as JSON, to every client.
func (s *Server) Broadcast(v any) {
	for _, c := range s.snapshotClients() {
		_ = c.writeJSON(v)
	}
}

// BroadcastRaw sends data verbatim as a text frame, valid JSON or not.
func (s *Server) BroadcastRaw(data []byte) {
	for _, c := range s.snapshotClients() {
		_ = c.writeRaw(data)
	}
}

// DropClients closes every client connection without a close handshake.
func (s *Server) DropClients() {
	for _, c := range s.snapshotClients() {
		_ = c.conn.Close()
	}
}

// SetZone changes the open flag of a zone and broadcasts a zone_update. It
// reports false when the zone does not exist.
func (s *Server) SetZone(sessionID string, zone int, open bool) bool {
	s.mu.Lock()
	found := false
	for i := range s.sessions {
		if s.sessions[i].SessionID != sessionID {
			continue
		}
		zones := slices.Clone(s.sessions[i].Zones)
		for j := range zones {
			if zones[j].ZoneNumber == zone {
				zones[j].Open = open
				found = true
			}
		}
		s.sessions[i].Zones = zones
	}
	s.mu.Unlock()

	if found {
		s.Broadcast(zoneUpdate{
			Type:       "zone_update",
			SessionID:  sessionID,
			ZoneNumber: zone,
			Open:       open,
		})
	}
	return found
}

// Commands returns the arm/disarm commands received so far.
func (s *Server) Commands() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.commands)
}

// Connections counts accepted websocket handshakes.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connections
}

// Clients counts currently connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) snapshotClients() []*client {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	return clients
}

func (s *Server) fullState() fullState {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]Session, len(s.sessions))
	copy(sessions, s.sessions)
	return fullState{Type: "full_state", Sessions: sessions}
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			http.Error(w, "invalid access token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{conn: conn}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.connections++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.handle(c, data)
	}
}

func (s *Server) handle(c *client, data []byte) {
	var msg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		_ = c.writeJSON(errorMessage{Type: "error", Message: "invalid JSON"})
		return
	}

	switch msg.Type {
	case "get_full_state":
		_ = c.writeJSON(s.fullState())
	case "arm_away", "arm_home", "arm_night", "disarm":
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			_ = c.writeJSON(errorMessage{Type: "error", Message: "invalid command"})
			return
		}
		s.apply(c, cmd)
	default:
		_ = c.writeJSON(errorMessage{Type: "error", Message: "unknown message type: " + msg.Type})
	}
}

func (s *Server) apply(c *client, cmd Command) {
	status := commandStatus[cmd.Type]

	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	found := false
	for i := range s.sessions {
		if s.sessions[i].SessionID != cmd.SessionID {
			continue
		}
		// copy so snapshots handed out earlier are not mutated
		partitions := slices.Clone(s.sessions[i].Partitions)
		for j := range partitions {
			if partitions[j].PartitionNumber == cmd.PartitionNumber {
				partitions[j].Status = status
				found = true
			}
		}
		s.sessions[i].Partitions = partitions
	}
	s.mu.Unlock()

	if !found {
		_ = c.writeJSON(errorMessage{Type: "error", Message: "unknown partition"})
		return
	}

	s.Broadcast(partitionUpdate{
		Type:            "partition_update",
		SessionID:       cmd.SessionID,
		PartitionNumber: cmd.PartitionNumber,
		Status:          status,
	})
}
