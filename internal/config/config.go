// Package config reads and writes neex's two JSON configuration files: a
// per-user file holding remote-cache credentials, and a per-repo file
// holding local overrides.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// RemoteCacheConfig is the persisted shape of the remote cache's
// connection details.
type RemoteCacheConfig struct {
	Endpoint  string `json:"endpoint,omitempty"`
	Bucket    string `json:"bucket,omitempty"`
	Region    string `json:"region,omitempty"`
	AccessKey string `json:"accessKey,omitempty"`
	SecretKey string `json:"secretKey,omitempty"`
	Secure    bool   `json:"secure,omitempty"`
	Enabled   bool   `json:"enabled,omitempty"`
}

// Config is the full configuration neex loads at startup: the per-user
// remote-cache credentials, plus per-repo concurrency/cache overrides.
type Config struct {
	Remote      RemoteCacheConfig `json:"remote,omitempty"`
	Concurrency int               `json:"concurrency,omitempty"`
}

// userConfigPath returns ~/.neex/config.json. HOME is the only
// environment variable neex requires.
func userConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolving user home directory")
	}
	return filepath.Join(home, ".neex", "config.json"), nil
}

// repoConfigPath returns <repoRoot>/.neex/config.json.
func repoConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".neex", "config.json")
}

// Load reads the per-user config and, if present, overlays the per-repo
// config on top of it as overlay describes. A missing file of either kind is
// not an error — Load returns the zero Config.
func Load(fsys afero.Fs, repoRoot string) (*Config, error) {
	cfg := &Config{}

	userPath, err := userConfigPath()
	if err != nil {
		return nil, err
	}
	if err := readInto(fsys, userPath, cfg); err != nil {
		return nil, err
	}

	repoPath := repoConfigPath(repoRoot)
	var repoCfg Config
	if err := readInto(fsys, repoPath, &repoCfg); err != nil {
		return nil, err
	}
	overlay(cfg, &repoCfg)

	return cfg, nil
}

func readInto(fsys afero.Fs, path string, dest interface{}) error {
	raw, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "reading config file %s", path)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(err, "parsing config file %s", path)
	}
	return nil
}

// overlay copies repoCfg's Concurrency onto base when it is non-zero, and
// replaces base's whole Remote block with repoCfg's when repoCfg's Remote
// has a non-empty Endpoint; other Remote fields of repoCfg are ignored
// when its Endpoint is empty.
func overlay(base *Config, repoCfg *Config) {
	if repoCfg.Concurrency != 0 {
		base.Concurrency = repoCfg.Concurrency
	}
	if repoCfg.Remote.Endpoint != "" {
		base.Remote = repoCfg.Remote
	}
}

// SaveUser pretty-prints cfg to ~/.neex/config.json.
func SaveUser(fsys afero.Fs, cfg *Config) error {
	path, err := userConfigPath()
	if err != nil {
		return err
	}
	return writeJSON(fsys, path, cfg)
}

// SaveRepo pretty-prints cfg to <repoRoot>/.neex/config.json.
func SaveRepo(fsys afero.Fs, repoRoot string, cfg *Config) error {
	return writeJSON(fsys, repoConfigPath(repoRoot), cfg)
}

func writeJSON(fsys afero.Fs, path string, v interface{}) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o775); err != nil {
		return errors.Wrapf(err, "creating config directory for %s", path)
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	if err := afero.WriteFile(fsys, path, raw, 0o644); err != nil {
		return errors.Wrapf(err, "writing config file %s", path)
	}
	return nil
}
