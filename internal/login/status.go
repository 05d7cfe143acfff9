package login

import (
	"github.com/spf13/afero"

	"github.com/neex-build/neex/internal/config"
)

// Status reports whether remote cache credentials are currently persisted
// and enabled, and which endpoint they point at.
type Status struct {
	LoggedIn bool
	Endpoint string
}

// GetStatus reads the per-user config and reports the current login state.
func GetStatus(fsys afero.Fs) (*Status, error) {
	cfg, err := config.Load(fsys, "")
	if err != nil {
		return nil, err
	}
	return &Status{
		LoggedIn: cfg.Remote.Enabled,
		Endpoint: cfg.Remote.Endpoint,
	}, nil
}
