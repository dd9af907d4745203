package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pbutterworth/gochlorinator/internal/logging"
	"github.com/pbutterworth/gochlorinator/pkg/snapshot"
)

// GatherFunc runs one data gathering cycle and returns the merged snapshot.
// A partial snapshot alongside an error is still published.
type GatherFunc func(ctx context.Context) (*snapshot.Snapshot, error)

// Config holds the server configuration.
type Config struct {
	Addr     string        // listen address, e.g. ":8787"
	Interval time.Duration // gather cycle period
}

// Update is the JSON document published to subscribers and served on
// /snapshot.
type Update struct {
	Time   time.Time      `json:"time"`
	Fields map[string]any `json:"fields"`
	Error  string         `json:"error,omitempty"`
}

// Server polls a chlorinator and fans the state out to HTTP and WebSocket
// clients.
type Server struct {
	config Config
	gather GatherFunc

	mu      sync.RWMutex
	latest  *Update
	clients map[*client]struct{}

	listener net.Listener
}

// New creates a server. Interval defaults to 30 seconds.
func New(config Config, gather GatherFunc) *Server {
	if config.Interval <= 0 {
		config.Interval = 30 * time.Second
	}
	return &Server{
		config:  config,
		gather:  gather,
		clients: make(map[*client]struct{}),
	}
}

// Addr returns the bound listen address. Valid once Run has started
// listening; useful when the configured port is 0.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run listens, starts the gather loop and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	logging.Info("snapshot server listening",
		zap.String("addr", listener.Addr().String()),
		zap.Duration("interval", s.config.Interval))

	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	httpSrv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.gatherLoop(loopCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		logging.Info("shutting down snapshot server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		s.closeClients()
		wg.Wait()
		return nil
	case err := <-errCh:
		cancelLoop()
		wg.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// gatherLoop runs one cycle immediately, then one per interval.
func (s *Server) gatherLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		s.runCycle(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) runCycle(ctx context.Context) {
	snap, err := s.gather(ctx)
	if ctx.Err() != nil {
		return
	}

	update := &Update{Time: time.Now()}
	if snap != nil {
		update.Fields = renderFields(snap.Fields())
	}
	if err != nil {
		update.Error = err.Error()
		logging.Warn("gather cycle reported errors", zap.Error(err))
	}
	logging.Debug("gather cycle complete", zap.Int("fields", len(update.Fields)))

	s.mu.Lock()
	s.latest = update
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.send(update)
	}
}

// renderFields makes snapshot values JSON-friendly: enums become their
// string names, durations their Go notation. Plain numbers pass through.
func renderFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch v := v.(type) {
		case time.Duration:
			out[k] = v.String()
		case fmt.Stringer:
			out[k] = v.String()
		default:
			out[k] = v
		}
	}
	return out
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	update := s.latest
	s.mu.RUnlock()

	if update == nil {
		http.Error(w, "no snapshot gathered yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(update); err != nil {
		logging.Error("failed to encode snapshot", zap.Error(err))
	}
}

func (s *Server) addClient(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	latest := s.latest
	s.mu.Unlock()

	// New subscribers get the current state right away.
	if latest != nil {
		c.send(latest)
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

// ClientCount returns the number of connected WebSocket subscribers.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
