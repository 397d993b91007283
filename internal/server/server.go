package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/pontoon/internal/session"
)

// Server exposes the game over HTTP and WebSocket.
type Server struct {
	service    *service
	logger     *log.Logger
	upgrader   websocket.Upgrader
	mux        *http.ServeMux
	httpServer *http.Server

	mu          sync.Mutex
	connections map[*Connection]struct{}
}

// NewServer creates a server backed by the given session table.
func NewServer(sessions *session.Table, logger *log.Logger) *Server {
	s := &Server{
		service: &service{sessions: sessions},
		logger:  logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers on other origins are allowed to play
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		mux:         http.NewServeMux(),
		connections: make(map[*Connection]struct{}),
	}

	s.mux.HandleFunc("POST /start", s.handleStart)
	s.mux.HandleFunc("POST /hit", s.handleHit)
	s.mux.HandleFunc("POST /stand", s.handleStand)
	s.mux.HandleFunc("POST /stick", s.handleStand)
	s.mux.HandleFunc("GET /state", s.handleState)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	return s
}

// Handler returns the server's routes wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Start listens on addr and serves until Shutdown is called.
func (s *Server) Start(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(l)
}

// Serve accepts connections on l.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("Listening", "addr", l.Addr().String())
	return srv.Serve(l)
}

// Shutdown closes WebSocket connections and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	conns := make([]*Connection, 0, len(s.connections))
	for c := range s.connections {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.Close() // Ignore close errors during shutdown
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// ConnectionCount returns the number of open WebSocket connections.
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.connections)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.start()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("Game started", "game_id", resp.GameID)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	resp, err := s.service.hit(req.GameID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStand(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	resp, err := s.service.stand(req.GameID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("Round finished", "game_id", req.GameID, "result", resp.Result.Status)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("game_id")
	if id == "" {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "game_id is required", Code: CodeBadRequest})
		return
	}
	state, err := s.service.state(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK") // Ignore write errors for health check
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	c := newConnection(conn, s.service, s.logger)
	s.mu.Lock()
	s.connections[c] = struct{}{}
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Debug("Client connected", "remote", r.RemoteAddr, "total", total)

	c.Start()
	go func() {
		<-c.Done()
		s.mu.Lock()
		delete(s.connections, c)
		s.mu.Unlock()
		s.logger.Debug("Client disconnected", "remote", r.RemoteAddr)
	}()
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (GameRequest, bool) {
	var req GameRequest
	r.Body = http.MaxBytesReader(w, r.Body, 4096)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "Invalid request body", Code: CodeBadRequest})
		return req, false
	}
	return req, true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, body := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "error", err)
	}
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		s.logger.Debug("Failed to write response", "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack is required by the WebSocket upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
