//go:build windows

package handler

import (
	"os"

	"golang.org/x/sys/windows"
)

// getFreeDiskSpace reports the bytes available to the calling user on the
// volume holding the downloads root. Returns 0 when the path is missing or
// not a directory; the stats endpoint treats that as unknown.
func getFreeDiskSpace(path string) int64 {
	stat, err := os.Stat(path)
	if err != nil || !stat.IsDir() {
		return 0
	}

	ptr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0
	}

	var freeBytes, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(ptr, &freeBytes, &totalBytes, &totalFreeBytes); err != nil {
		return 0
	}

	return int64(freeBytes)
}
