//go:build !windows

package store

import "os"

func replace(tmpPath, dest string) error {
	return os.Rename(tmpPath, dest)
}

// syncDir flushes the directory entry so the rename survives a crash.
func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
