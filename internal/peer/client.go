package peer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// fetchTimeout bounds a single peer's artifact request so one unreachable
// peer can't stall the whole fetch_from_network sweep.
const fetchTimeout = 2 * time.Second

// FetchFromNetwork iterates the current peer map and GETs /artifact/<key>
// from each; the first 2xx response wins. Peer iteration order is
// unspecified. Matches the runner.PeerLookup contract so it can be
// injected directly into a runner.Engine.
func (r *Registry) FetchFromNetwork(ctx context.Context, key string) ([]byte, bool, error) {
	client := &http.Client{Timeout: fetchTimeout}

	for _, p := range r.Snapshot() {
		body, ok := tryFetch(ctx, client, p, key)
		if ok {
			return body, true, nil
		}
	}
	return nil, false, nil
}

func tryFetch(ctx context.Context, client *http.Client, p Peer, key string) ([]byte, bool) {
	url := fmt.Sprintf("http://%s:%d/artifact/%s", p.Host, p.Port, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false
	}
	return body, true
}
