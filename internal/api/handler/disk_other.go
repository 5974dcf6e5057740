//go:build !unix && !windows

package handler

func getDiskStats(path string) (total, free uint64, ok bool) {
	return 0, 0, false
}
