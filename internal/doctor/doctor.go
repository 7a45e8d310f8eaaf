// Package doctor runs runtime readiness diagnostics for config, tools, audio,
// and the whisper bridge.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/tbromley/hush/internal/audio"
	"github.com/tbromley/hush/internal/config"
	"github.com/tbromley/hush/internal/whisper"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkEnv("XDG_SESSION_TYPE", func(v string) bool {
		return strings.EqualFold(strings.TrimSpace(v), "wayland")
	}, "session type is wayland", "expected XDG_SESSION_TYPE=wayland"))

	checks = append(checks, checkCommand(cfg.Config.Clipboard.Argv, "clipboard_cmd"))

	if cfg.Config.Paste.Enable {
		if len(cfg.Config.PasteCmd.Argv) > 0 {
			checks = append(checks, checkCommand(cfg.Config.PasteCmd.Argv, "paste_cmd"))
		} else {
			checks = append(checks, checkBinary("hyprctl", "default paste path requires hyprctl"))
		}
	}

	checks = append(checks, checkAudioSelection(cfg.Config))
	checks = append(checks, checkBinary(cfg.Config.Whisper.PythonBin, "runs the whisper bridge"))
	checks = append(checks, checkBridgeScript(cfg.Config))
	checks = append(checks, checkModel(cfg.Config))

	if sidecar := strings.TrimSpace(cfg.Config.Whisper.SidecarGRPC); sidecar != "" {
		checks = append(checks, checkSidecar(sidecar))
	}

	return Report{Checks: checks}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(cfg config.Config) Check {
	selection, err := audio.SelectDevice(context.Background(), cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkBridgeScript resolves the whisper bridge script the way the runtime does.
func checkBridgeScript(cfg config.Config) Check {
	path, err := whisper.ResolveScript(cfg.Whisper.BridgePath)
	if err != nil {
		return Check{Name: "whisper.bridge", Pass: false, Message: err.Error()}
	}
	return Check{Name: "whisper.bridge", Pass: true, Message: fmt.Sprintf("script at %s", path)}
}

// checkModel verifies the configured model name and checks the local cache.
// A missing snapshot is not fatal: the bridge downloads on first use.
func checkModel(cfg config.Config) Check {
	info, ok := whisper.LookupModel(cfg.Whisper.Model)
	if !ok {
		return Check{Name: "whisper.model", Pass: false, Message: fmt.Sprintf("unknown model %q", cfg.Whisper.Model)}
	}
	if whisper.IsDownloaded(info.Name) {
		return Check{Name: "whisper.model", Pass: true, Message: fmt.Sprintf("%s cached locally", info.Name)}
	}
	return Check{
		Name:    "whisper.model",
		Pass:    true,
		Message: fmt.Sprintf("%s not cached (~%d MB download on first use)", info.Name, info.SizeMB),
	}
}

// checkSidecar probes an externally managed bridge service over gRPC health.
func checkSidecar(endpoint string) Check {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := whisper.ProbeSidecar(ctx, endpoint, 2*time.Second); err != nil {
		return Check{Name: "whisper.sidecar", Pass: false, Message: err.Error()}
	}
	return Check{Name: "whisper.sidecar", Pass: true, Message: fmt.Sprintf("serving at %s", endpoint)}
}
