package doctor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tbromley/hush/internal/config"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckEnv(t *testing.T) {
	t.Setenv("TEST_DOCTOR_ENV", "wayland")

	check := checkEnv(
		"TEST_DOCTOR_ENV",
		func(v string) bool { return strings.EqualFold(v, "wayland") },
		"looks good",
		"unexpected",
	)

	require.True(t, check.Pass)
	require.Equal(t, "looks good", check.Message)
}

func TestCheckCommandEmpty(t *testing.T) {
	check := checkCommand(nil, "clipboard_cmd")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "command is empty")
}

func TestCheckBinaryFound(t *testing.T) {
	check := checkBinary("sh", "shell available")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "shell available")
}

func TestCheckBinaryMissing(t *testing.T) {
	check := checkBinary("definitely-not-a-real-binary", "unused")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func TestCheckCommandUsesBinaryFromPath(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "fake-bin")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/usr/bin/env bash\nexit 0\n"), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))

	check := checkCommand([]string{"fake-bin", "--arg"}, "clipboard_cmd")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "clipboard_cmd command is available")
}

func TestCheckBridgeScriptResolves(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataDir)
	scriptPath := filepath.Join(dataDir, "hush", "whisper_bridge.py")
	require.NoError(t, os.MkdirAll(filepath.Dir(scriptPath), 0o755))
	require.NoError(t, os.WriteFile(scriptPath, []byte("print('ok')\n"), 0o644))

	check := checkBridgeScript(config.Default())
	require.True(t, check.Pass)
	require.Contains(t, check.Message, scriptPath)
}

func TestCheckBridgeScriptMissing(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	check := checkBridgeScript(config.Default())
	require.False(t, check.Pass)
}

func TestCheckModelUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.Whisper.Model = "gigantic-v9"

	check := checkModel(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "unknown model")
}

func TestCheckModelNotCachedStillPasses(t *testing.T) {
	t.Setenv("HF_HOME", t.TempDir())

	check := checkModel(config.Default())
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "not cached")
}

func TestCheckModelCached(t *testing.T) {
	hfHome := t.TempDir()
	t.Setenv("HF_HOME", hfHome)
	snapshot := filepath.Join(hfHome, "hub", "models--Systran--faster-whisper-base", "snapshots", "abc123")
	require.NoError(t, os.MkdirAll(snapshot, 0o755))

	check := checkModel(config.Default())
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "cached locally")
}

func TestCheckSidecarUnreachable(t *testing.T) {
	check := checkSidecar("127.0.0.1:1")
	require.False(t, check.Pass)
}

func TestCheckAudioSelectionFailureWithInvalidPulseServer(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	check := checkAudioSelection(config.Default())
	require.False(t, check.Pass)
	require.Contains(t, check.Name, "audio.device")
}

func TestRunUsesPasteCmdOverrideCheck(t *testing.T) {
	binDir := t.TempDir()
	fakePaste := filepath.Join(binDir, "fake-paste")
	require.NoError(t, os.WriteFile(fakePaste, []byte("#!/usr/bin/env sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	t.Setenv("XDG_SESSION_TYPE", "wayland")
	t.Setenv("HF_HOME", t.TempDir())

	cfg := config.Default()
	cfg.Paste.Enable = true
	cfg.PasteCmd = config.CommandConfig{Raw: fakePaste, Argv: []string{"fake-paste"}}

	report := Run(config.Loaded{Path: "/tmp/config.conf", Config: cfg})
	require.NotEmpty(t, report.Checks)

	var sawPasteCmd, sawHypr bool
	for _, check := range report.Checks {
		if check.Name == "fake-paste" {
			sawPasteCmd = true
		}
		if check.Name == "hyprctl" {
			sawHypr = true
		}
	}
	require.True(t, sawPasteCmd)
	require.False(t, sawHypr)
}

func TestRunUsesHyprctlWhenPasteCmdUnset(t *testing.T) {
	binDir := t.TempDir()
	fakeHypr := filepath.Join(binDir, "hyprctl")
	require.NoError(t, os.WriteFile(fakeHypr, []byte("#!/usr/bin/env sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	t.Setenv("XDG_SESSION_TYPE", "wayland")
	t.Setenv("HF_HOME", t.TempDir())

	cfg := config.Default()
	cfg.Paste.Enable = true
	cfg.PasteCmd = config.CommandConfig{}

	report := Run(config.Loaded{Path: "/tmp/config.conf", Config: cfg})
	require.NotEmpty(t, report.Checks)

	var sawHypr bool
	for _, check := range report.Checks {
		if check.Name == "hyprctl" {
			sawHypr = true
			break
		}
	}
	require.True(t, sawHypr)
}

func TestRunSkipsSidecarCheckWhenUnset(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	t.Setenv("HF_HOME", t.TempDir())

	cfg := config.Default()
	cfg.Whisper.SidecarGRPC = ""

	report := Run(config.Loaded{Path: "/tmp/config.conf", Config: cfg})
	for _, check := range report.Checks {
		require.NotEqual(t, "whisper.sidecar", check.Name)
	}
}
