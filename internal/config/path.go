package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath picks the config file location. An explicit CLI path wins,
// then $XDG_CONFIG_HOME/hush/config.conf, then ~/.config/hush/config.conf.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.New("unable to resolve user home for config fallback")
		}
		base = filepath.Join(home, ".config")
	}

	return filepath.Join(base, "hush", "config.conf"), nil
}
