// Package peer implements the optional LAN cache-sharing layer: mDNS
// discovery of sibling daemons plus an HTTP artifact server/client so a
// cache hit on one machine can serve another over the local network.
package peer

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/libp2p/zeroconf/v2"
	"github.com/pkg/errors"
)

// serviceType is the mDNS service name peers register and browse.
const serviceType = "_neex._tcp"

// Peer is a sibling daemon discovered on the LAN.
type Peer struct {
	ID   string
	Host string
	Port int
}

// Registry tracks currently-reachable peers: single-writer (the mDNS
// browse loop), many readers.
type Registry struct {
	selfID string
	logger hclog.Logger

	mu    sync.RWMutex
	peers map[string]Peer

	mdnsServer *zeroconf.Server
}

// NewRegistry generates a random identifier for this instance and
// registers an mDNS service advertising artifactPort under it.
func NewRegistry(artifactPort int, logger hclog.Logger) (*Registry, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	selfID := uuid.NewString()

	server, err := zeroconf.Register(selfID, serviceType, "local.", artifactPort, []string{"id=" + selfID}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "registering mdns service")
	}

	return &Registry{
		selfID:     selfID,
		logger:     logger,
		peers:      make(map[string]Peer),
		mdnsServer: server,
	}, nil
}

// Browse runs the continuous mDNS browse loop until ctx is cancelled,
// adding resolved peers (other than ourselves) to the registry and
// dropping them on removal. Intended to run in its own goroutine.
func (r *Registry) Browse(ctx context.Context) error {
	entries := make(chan *zeroconf.ServiceEntry, 16)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return errors.Wrap(err, "creating mdns resolver")
	}

	go func() {
		for entry := range entries {
			r.handleEntry(entry)
		}
	}()

	if err := resolver.Browse(ctx, serviceType, "local.", entries); err != nil {
		return errors.Wrap(err, "browsing mdns peers")
	}
	<-ctx.Done()
	return nil
}

func (r *Registry) handleEntry(entry *zeroconf.ServiceEntry) {
	id := peerID(entry)
	if id == "" || id == r.selfID {
		return
	}

	if len(entry.AddrIPv4) == 0 && len(entry.AddrIPv6) == 0 {
		r.mu.Lock()
		delete(r.peers, id)
		r.mu.Unlock()
		return
	}

	host := entry.HostName
	if len(entry.AddrIPv4) > 0 {
		host = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		host = entry.AddrIPv6[0].String()
	}

	r.mu.Lock()
	r.peers[id] = Peer{ID: id, Host: host, Port: entry.Port}
	r.mu.Unlock()
}

func peerID(entry *zeroconf.ServiceEntry) string {
	for _, field := range entry.Text {
		if len(field) > 3 && field[:3] == "id=" {
			return field[3:]
		}
	}
	return ""
}

// Snapshot returns the currently known peers. Order is unspecified.
func (r *Registry) Snapshot() []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Peer, 0, len(r.peers))
	for _, p := range r.peers {
		out = append(out, p)
	}
	return out
}

// Shutdown unregisters the local mDNS service.
func (r *Registry) Shutdown() {
	if r.mdnsServer != nil {
		r.mdnsServer.Shutdown()
	}
}
