// Package runner implements the Task Runner: given a script name and
// a package directory, it computes the package's global fingerprint,
// checks the tiered cache (local, remote, peer), and — on a full miss —
// executes the script via the host shell, capturing its output for replay
// and writing it back through the cache tiers.
package runner

import (
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"runtime"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/neex-build/neex/internal/hashing"
	"github.com/neex-build/neex/internal/runcache"
	"github.com/neex-build/neex/internal/turbopath"
	"github.com/neex-build/neex/internal/workspace"
)

// ErrScriptNotFound is returned when the requested script is absent from
// the package's manifest.
var ErrScriptNotFound = errors.New("script not found in package manifest")

// Source names where a Run's output ultimately came from.
const (
	SourceLocalCache  = "local-cache"
	SourceRemoteCache = "remote-cache"
	SourcePeerCache   = "peer-cache"
	SourceExecuted    = "executed"
)

// PeerLookup is the Peer Layer's L3 contract: fetch a cached TaskOutput
// payload by CacheKey from any reachable peer. Declared here (rather than
// importing internal/peer) to avoid a dependency cycle; internal/peer
// implements it.
type PeerLookup func(ctx context.Context, key string) ([]byte, bool, error)

// Engine ties the result cache tiers to subprocess execution.
type Engine struct {
	Store    *runcache.Store
	Remote   *runcache.Remote
	Peer     PeerLookup // optional; nil disables L3
	Logger   hclog.Logger
	KeyChars int // truncation length for CacheKey; 0 means runcache.DefaultKeyChars
}

// Request describes a single script invocation.
type Request struct {
	Script       string
	PackageDir   turbopath.AbsoluteSystemPath
	ManifestPath turbopath.AbsoluteSystemPath
	Stdout       io.Writer
	Stderr       io.Writer
}

// Result reports a completed Run: the replayed/captured output, which
// cache tier (if any) served it, and the CacheKey it was stored under.
type Result struct {
	Output runcache.TaskOutput
	Source string
	Key    string
}

// Run implements the full L1→L2→L3→L4 lookup chain: local cache, remote
// cache, peer cache, then subprocess execution.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	logger := e.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	manifest, err := workspace.ReadManifest(req.ManifestPath)
	if err != nil {
		return nil, errors.Wrap(err, "reading package manifest")
	}
	script, ok := manifest.Scripts[req.Script]
	if !ok {
		return nil, ErrScriptNotFound
	}

	files, err := hashing.WalkAndHashCombined(hashing.WalkOptions{Root: req.PackageDir}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "computing package fingerprint")
	}
	fingerprint := hashing.GlobalFingerprint(files)
	keyChars := e.KeyChars
	if keyChars <= 0 {
		keyChars = runcache.DefaultKeyChars
	}
	key := runcache.Key(req.Script, fingerprint, keyChars)

	if e.Store != nil {
		if out, found, err := e.Store.Get(key); err != nil {
			logger.Warn("local cache lookup failed", "key", key, "error", err)
		} else if found {
			replay(out, req.Stdout, req.Stderr)
			return &Result{Output: out, Source: SourceLocalCache, Key: key}, nil
		}
	}

	if e.Remote != nil {
		if body, found, err := e.Remote.Download(ctx, key); err != nil {
			logger.Warn("remote cache lookup failed", "key", key, "error", err)
		} else if found {
			var out runcache.TaskOutput
			if err := json.Unmarshal(body, &out); err == nil {
				e.writeThrough(key, out, logger)
				replay(out, req.Stdout, req.Stderr)
				return &Result{Output: out, Source: SourceRemoteCache, Key: key}, nil
			}
			logger.Warn("remote cache payload was not valid TaskOutput JSON", "key", key)
		}
	}

	if e.Peer != nil {
		if body, found, err := e.Peer(ctx, key); err != nil {
			logger.Warn("peer cache lookup failed", "key", key, "error", err)
		} else if found {
			var out runcache.TaskOutput
			if err := json.Unmarshal(body, &out); err == nil {
				e.writeThrough(key, out, logger)
				replay(out, req.Stdout, req.Stderr)
				return &Result{Output: out, Source: SourcePeerCache, Key: key}, nil
			}
			logger.Warn("peer cache payload was not valid TaskOutput JSON", "key", key)
		}
	}

	output, err := execute(ctx, script, req.PackageDir, req.Stdout, req.Stderr)
	if err != nil {
		return nil, err
	}
	output.Fingerprint = fingerprint

	if e.Store != nil {
		if err := e.Store.Put(key, output); err != nil {
			logger.Warn("failed to persist task output to local cache", "key", key, "error", err)
		}
	}
	if e.Remote != nil {
		go func() {
			payload, err := json.Marshal(output)
			if err != nil {
				return
			}
			if err := e.Remote.Upload(context.Background(), key, payload); err != nil {
				logger.Warn("background remote cache upload failed", "key", key, "error", err)
			}
		}()
	}

	return &Result{Output: output, Source: SourceExecuted, Key: key}, nil
}

func (e *Engine) writeThrough(key string, out runcache.TaskOutput, logger hclog.Logger) {
	if e.Store == nil {
		return
	}
	if err := e.Store.Put(key, out); err != nil {
		logger.Warn("failed to write cache hit through to local cache", "key", key, "error", err)
	}
}

// replay writes a stored TaskOutput's lines to the caller's streams in
// captured order: all stdout lines, then all stderr lines.
func replay(out runcache.TaskOutput, stdout, stderr io.Writer) {
	for _, line := range out.Stdout {
		if stdout != nil {
			_, _ = io.WriteString(stdout, line+"\n")
		}
	}
	for _, line := range out.Stderr {
		if stderr != nil {
			_, _ = io.WriteString(stderr, line+"\n")
		}
	}
}

// execute spawns script via the host shell, capturing stdout/stderr
// line-by-line while also streaming them live.
func execute(ctx context.Context, script string, dir turbopath.AbsoluteSystemPath, liveStdout, liveStderr io.Writer) (runcache.TaskOutput, error) {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", script)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", script)
	}
	cmd.Dir = dir.ToString()

	stdoutCap := newLineCapture(liveStdout)
	stderrCap := newLineCapture(liveStderr)
	cmd.Stdout = stdoutCap
	cmd.Stderr = stderrCap

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	stdoutCap.Close()
	stderrCap.Close()

	exitCode := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return runcache.TaskOutput{}, errors.Wrap(runErr, "spawning task script")
		}
	}

	return runcache.TaskOutput{
		Stdout:     stdoutCap.Lines,
		Stderr:     stderrCap.Lines,
		ExitCode:   exitCode,
		DurationMS: duration.Milliseconds(),
	}, nil
}
