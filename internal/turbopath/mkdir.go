package turbopath

import "os"

func mkdirAll(path string, perm uint32) error {
	return os.MkdirAll(path, os.FileMode(perm))
}
