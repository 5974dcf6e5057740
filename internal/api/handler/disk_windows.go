//go:build windows

package handler

import "golang.org/x/sys/windows"

// getDiskStats returns disk usage statistics for the volume holding path.
func getDiskStats(path string) (total, free uint64, ok bool) {
	ptr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, 0, false
	}
	var freeBytes, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(ptr, &freeBytes, &totalBytes, &totalFreeBytes); err != nil {
		return 0, 0, false
	}
	return totalBytes, freeBytes, true
}
