package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/oakwood-commons/tdx/pkg/settings"
)

// ErrConfigExists is returned by WriteDefault when the target exists and force is false.
var ErrConfigExists = errors.New("config file already exists")

const (
	fileName  = "config.yaml"
	dirPerms  = 0o755
	filePerms = 0o644
)

// DefaultPath returns $XDG_CONFIG_HOME/tdx/config.yaml, falling back to
// ~/.config/tdx/config.yaml. It returns "" when neither can be determined.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, settings.CliBinaryName, fileName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", settings.CliBinaryName, fileName)
	}
	return ""
}

// ResolvePath returns explicit when set, otherwise the default path if a
// regular file exists there, otherwise "".
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := DefaultPath()
	if candidate == "" {
		return ""
	}
	if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
		return candidate
	}
	return ""
}

// WriteDefault writes the embedded default config to path atomically.
func WriteDefault(path string, force bool) error {
	if path == "" {
		return errors.New("no config path")
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerms); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(DefaultYAML())); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	// atomic.WriteFile does not set permissions on new files
	if err := os.Chmod(path, filePerms); err != nil {
		return fmt.Errorf("set config permissions: %w", err)
	}
	return nil
}
