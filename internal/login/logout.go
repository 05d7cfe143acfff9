package login

import (
	"github.com/spf13/afero"

	"github.com/neex-build/neex/internal/config"
)

// Logout clears the persisted Remote Cache credentials from the per-user
// config file. A missing config file is not an error.
func Logout(fsys afero.Fs) error {
	cfg, err := config.Load(fsys, "")
	if err != nil {
		return err
	}
	cfg.Remote = config.RemoteCacheConfig{}
	return config.SaveUser(fsys, cfg)
}
