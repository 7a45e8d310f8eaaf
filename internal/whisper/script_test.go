package whisper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveScriptExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whisper_bridge.py")
	require.NoError(t, os.WriteFile(path, []byte("# bridge"), 0o644))

	resolved, err := ResolveScript(path)
	require.NoError(t, err)
	require.Equal(t, path, resolved)
}

func TestResolveScriptExplicitMissing(t *testing.T) {
	_, err := ResolveScript("/nonexistent/whisper_bridge.py")
	require.Error(t, err)
	require.Contains(t, err.Error(), "bridge_path")
}

func TestResolveScriptFromXDGDataHome(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	path := filepath.Join(dataHome, "hush", "whisper_bridge.py")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("# bridge"), 0o644))

	resolved, err := ResolveScript("")
	require.NoError(t, err)
	require.Equal(t, path, resolved)
}

func TestResolveScriptNotFound(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	_, err := ResolveScript("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "whisper_bridge.py not found")
}
