package extractor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// MaterializeCookies writes the cookie blob from configuration to path and
// returns the file the engine should use. With no blob an existing file at
// path is reused; otherwise "" is returned and extraction runs without cookies.
// Call once at startup; the file is read-only afterwards.
func MaterializeCookies(path, data string, logger *slog.Logger) (string, error) {
	if path == "" {
		return "", nil
	}

	if data == "" {
		if _, err := os.Stat(path); err == nil {
			logger.Info("using existing cookie file", "path", path)
			return path, nil
		}
		logger.Warn("COOKIE_DATA not set, some sites may refuse downloads")
		return "", nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return "", fmt.Errorf("create cookie directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		return "", fmt.Errorf("write cookie file: %w", err)
	}

	logger.Info("cookie file created from environment", "path", path)
	return path, nil
}
