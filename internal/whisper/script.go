package whisper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const scriptName = "whisper_bridge.py"

// ResolveScript locates the bridge script. An explicit path wins; otherwise
// the XDG data dir and the directory holding the hush executable are searched.
func ResolveScript(explicit string) (string, error) {
	if p := strings.TrimSpace(explicit); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("whisper.bridge_path %q: %w", p, err)
		}
		return p, nil
	}

	var candidates []string
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, "hush", scriptName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".local", "share", "hush", scriptName))
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), scriptName))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("bridge script %s not found; searched %s", scriptName, strings.Join(candidates, ", "))
}
