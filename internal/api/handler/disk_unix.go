//go:build unix

package handler

import "golang.org/x/sys/unix"

// getDiskStats returns disk usage statistics for the filesystem holding path.
func getDiskStats(path string) (total, free uint64, ok bool) {
	var fs unix.Statfs_t
	if err := unix.Statfs(path, &fs); err != nil {
		return 0, 0, false
	}
	return uint64(fs.Blocks) * uint64(fs.Bsize), uint64(fs.Bavail) * uint64(fs.Bsize), true
}
