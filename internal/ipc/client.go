package ipc

import (
	"bufio"
	"encoding/json"
	"io"
	"net"

	"github.com/pkg/errors"
)

// Client is a short-lived connection to a daemon's IPC socket: one request,
// one response, then close.
type Client struct {
	sockPath string
}

// NewClient returns a Client targeting the unix socket at sockPath. No
// connection is made until Call.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Call dials the daemon, sends req as a single JSON line, and reads back a
// single JSON-line response.
func (c *Client) Call(req Request) (*Response, error) {
	conn, err := net.Dial("unix", c.sockPath)
	if err != nil {
		return nil, errors.Wrap(err, "dialing daemon socket")
	}
	defer conn.Close()

	raw, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling ipc request")
	}
	raw = append(raw, '\n')
	if _, err := conn.Write(raw); err != nil {
		return nil, errors.Wrap(err, "writing ipc request")
	}

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "reading ipc response")
		}
		return nil, io.EOF
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, errors.Wrap(err, "decoding ipc response")
	}
	return &resp, nil
}

// Shutdown sends a Shutdown request and tolerates the daemon closing the
// connection without a response body — a sudden EOF here is expected, not
// an error.
func (c *Client) Shutdown() error {
	_, err := c.Call(Request{Type: TypeShutdown})
	if err != nil && errors.Cause(err) == io.EOF {
		return nil
	}
	return err
}

// GetHash asks the daemon for path's current digest.
func (c *Client) GetHash(path string) (string, bool, error) {
	resp, err := c.Call(Request{Type: TypeGetHash, Path: path})
	if err != nil {
		return "", false, err
	}
	if resp.Hash == nil {
		return "", false, nil
	}
	return *resp.Hash, true, nil
}

// GlobalHash asks the daemon to compute the live global fingerprint.
func (c *Client) GlobalHash() (string, error) {
	resp, err := c.Call(Request{Type: TypeGlobalHash})
	if err != nil {
		return "", err
	}
	if resp.Type == TypeError {
		return "", errors.New(resp.Error)
	}
	return resp.GlobalHash, nil
}

// GetChanged asks the daemon which paths differ from the given baseline.
func (c *Client) GetChanged(baseline map[string]string) ([]string, error) {
	resp, err := c.Call(Request{Type: TypeGetChanged, Map: baseline})
	if err != nil {
		return nil, err
	}
	return resp.Changed, nil
}

// Rescan asks the daemon to perform a full filesystem rescan.
func (c *Client) Rescan() error {
	resp, err := c.Call(Request{Type: TypeRescan})
	if err != nil {
		return err
	}
	if resp.Type == TypeError {
		return errors.New(resp.Error)
	}
	return nil
}

// Stats asks the daemon for its current index size and db size.
func (c *Client) Stats() (cachedFiles int, dbSize int64, err error) {
	resp, err := c.Call(Request{Type: TypeStats})
	if err != nil {
		return 0, 0, err
	}
	return resp.CachedFiles, resp.DBSize, nil
}
