package peer

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/hashicorp/go-hclog"

	"github.com/neex-build/neex/internal/runcache"
)

// Server is the LAN artifact HTTP endpoint: GET /artifact/<key> serves a
// local result cache hit to any peer that asks, and GET /health is a
// liveness probe. Two static routes, not worth a routing framework.
type Server struct {
	store    *runcache.Store
	logger   hclog.Logger
	listener net.Listener
}

// NewServer binds an ephemeral TCP port and returns a Server ready for
// Serve. The bound port is exposed via Port for mDNS registration.
func NewServer(store *runcache.Store, logger hclog.Logger) (*Server, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		return nil, err
	}
	return &Server{store: store, logger: logger, listener: ln}, nil
}

// Port returns the ephemeral port this server is bound to.
func (s *Server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Serve blocks, handling requests until the listener is closed.
func (s *Server) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/artifact/", s.handleArtifact)
	mux.HandleFunc("/health", s.handleHealth)
	return http.Serve(s.listener, mux)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Path[len("/artifact/"):]
	if key == "" {
		http.NotFound(w, r)
		return
	}

	out, found, err := s.store.Get(key)
	if err != nil {
		s.logger.Warn("artifact server: store read failed", "key", key, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.logger.Warn("artifact server: failed writing response", "key", key, "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "OK")
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.listener.Close()
}
