//go:build !windows

package handler

import (
	"os"
	"syscall"
)

// getFreeDiskSpace reports the bytes available to unprivileged writes on
// the filesystem holding the downloads root. Returns 0 when the path is
// missing or not a directory; the stats endpoint treats that as unknown.
func getFreeDiskSpace(path string) int64 {
	stat, err := os.Stat(path)
	if err != nil || !stat.IsDir() {
		return 0
	}

	var fs syscall.Statfs_t
	if err := syscall.Statfs(path, &fs); err != nil {
		return 0
	}

	return int64(fs.Bavail) * int64(fs.Bsize)
}
