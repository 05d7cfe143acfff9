package ipc

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/nightlyone/lockfile"
	"github.com/pkg/errors"

	"github.com/neex-build/neex/internal/daemon"
	"github.com/neex-build/neex/internal/hashing"
	"github.com/neex-build/neex/internal/turbopath"
)

// acceptPollInterval is the accept-loop deadline: between accepts, a 100ms
// tick drains the watcher and applies updates.
const acceptPollInterval = 100 * time.Millisecond

// Server is the daemon's IPC loop: it accepts connections serially,
// handling each to completion before accepting the next, and between
// accepts drains the filesystem watcher into the Daemon State.
type Server struct {
	listener *net.UnixListener
	lock     lockfile.Lockfile

	root    turbopath.AbsoluteSystemPath
	state   *daemon.State
	watcher *daemon.Watcher
	logger  hclog.Logger

	shuttingDown bool
}

// Listen acquires the per-repo pidfile lock, binds the unix socket at
// sockPath (removing a stale one left by an unclean prior exit), and
// returns a Server ready for Serve. A single daemon may run per repo at
// a time.
func Listen(sockPath, pidPath string, root turbopath.AbsoluteSystemPath, state *daemon.State, watcher *daemon.Watcher, logger hclog.Logger) (*Server, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	lock, err := lockfile.New(pidPath)
	if err != nil {
		return nil, errors.Wrapf(err, "constructing pidfile lock at %s", pidPath)
	}
	if err := lock.TryLock(); err != nil {
		return nil, errors.Wrap(err, "another daemon instance already holds the pidfile lock")
	}

	if err := os.Remove(sockPath); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "removing stale socket at %s", sockPath)
	}

	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, errors.Wrapf(err, "binding unix socket at %s", sockPath)
	}

	return &Server{
		listener: ln.(*net.UnixListener),
		lock:     lock,
		root:     root,
		state:    state,
		watcher:  watcher,
		logger:   logger,
	}, nil
}

// Serve runs the accept loop until a Shutdown request is received or the
// listener is closed. It never spawns a goroutine per connection —
// handling is strictly sequential, one request at a time.
func (s *Server) Serve() error {
	for !s.shuttingDown {
		if err := s.listener.SetDeadline(time.Now().Add(acceptPollInterval)); err != nil {
			return errors.Wrap(err, "setting accept deadline")
		}
		conn, err := s.listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				s.tick()
				continue
			}
			if s.shuttingDown {
				return nil
			}
			return errors.Wrap(err, "accepting ipc connection")
		}
		s.handleConnection(conn)
	}
	return nil
}

// tick drains the watcher and applies every change to the daemon state.
// Coalescing happens implicitly: duplicate paths in one drain collapse to
// one rehash via the map below, regardless of how many events fired.
func (s *Server) tick() {
	if s.watcher == nil || s.state == nil {
		return
	}
	changes := s.watcher.Poll()
	if len(changes) == 0 {
		return
	}

	latest := make(map[string]daemon.ChangeKind, len(changes))
	for _, c := range changes {
		latest[c.Path] = c.Kind
	}
	for path, kind := range latest {
		tp := turbopath.AbsoluteSystemPath(path)
		var err error
		if kind == daemon.Delete {
			err = s.state.RemoveFile(tp)
		} else {
			err = s.state.UpdateFile(tp)
		}
		if err != nil {
			s.logger.Warn("failed to apply watcher change", "path", path, "error", err)
		}
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		return
	}

	var req Request
	if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
		s.writeResponse(conn, errorResponse("malformed request: "+err.Error()))
		return
	}

	switch req.Type {
	case TypeShutdown:
		// Immediate exit: no response, client sees sudden EOF. We close
		// the connection (via defer) without writing anything and let the
		// caller observe Serve's return to exit.
		s.shuttingDown = true
		return
	case TypeGetHash:
		hash, found := s.state.GetHash(turbopath.AbsoluteSystemPath(req.Path))
		s.writeResponse(conn, hashResponse(hash, found))
	case TypeGlobalHash:
		files, err := hashing.WalkAndHashCombined(hashing.WalkOptions{Root: s.root}, s.logger)
		if err != nil {
			s.writeResponse(conn, errorResponse(err.Error()))
			return
		}
		s.writeResponse(conn, globalHashResponse(hashing.GlobalFingerprint(files)))
	case TypeGetChanged:
		s.writeResponse(conn, Response{Type: TypeChanged, Changed: s.state.GetChanged(req.Map)})
	case TypeRescan:
		if err := s.state.FullScan(s.root); err != nil {
			s.writeResponse(conn, errorResponse(err.Error()))
			return
		}
		s.writeResponse(conn, okResponse())
	case TypeStats:
		s.writeResponse(conn, Response{
			Type:        TypeStats,
			CachedFiles: s.state.Count(),
			DBSize:      s.state.DBSize(),
		})
	default:
		s.writeResponse(conn, errorResponse("unknown request type: "+req.Type))
	}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	raw = append(raw, '\n')
	if _, err := conn.Write(raw); err != nil {
		s.logger.Warn("failed writing ipc response", "error", err)
	}
}

// Close releases the socket and the pidfile lock.
func (s *Server) Close() error {
	closeErr := s.listener.Close()
	_ = s.lock.Unlock()
	return closeErr
}
