package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if cfg.Detect.SilenceMS < 300 || cfg.Detect.SilenceMS > 5000 {
		return nil, fmt.Errorf("detect.silence_ms must be within 300..5000, got %d", cfg.Detect.SilenceMS)
	}
	if cfg.Detect.TickMS <= 0 {
		return nil, fmt.Errorf("detect.tick_ms must be > 0")
	}
	if cfg.Detect.SpeechRatio <= 0 || cfg.Detect.SilenceRatio <= 0 {
		return nil, fmt.Errorf("detect ambient ratios must be > 0")
	}
	if cfg.Detect.DipRatio <= 0 || cfg.Detect.DipRatio >= 1 {
		return nil, fmt.Errorf("detect.dip_ratio must be between 0 and 1, got %v", cfg.Detect.DipRatio)
	}
	if cfg.Detect.ConfirmTicks <= 0 {
		return nil, fmt.Errorf("detect.confirm_ticks must be > 0")
	}
	if cfg.Detect.SilenceRatio > cfg.Detect.SpeechRatio {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("detect.silence_ratio %.2f exceeds detect.speech_ratio %.2f; speech may never register as ended",
				cfg.Detect.SilenceRatio, cfg.Detect.SpeechRatio),
		})
	}

	if strings.TrimSpace(cfg.Whisper.Model) == "" {
		return nil, fmt.Errorf("whisper.model must not be empty")
	}
	switch strings.TrimSpace(cfg.Whisper.Task) {
	case "transcribe", "translate":
	default:
		return nil, fmt.Errorf("whisper.task must be one of: transcribe, translate")
	}
	if strings.TrimSpace(cfg.Whisper.PythonBin) == "" {
		return nil, fmt.Errorf("whisper.python_bin must not be empty")
	}
	if cfg.Whisper.TimeoutMS <= 0 {
		return nil, fmt.Errorf("whisper.timeout_ms must be > 0")
	}

	if strings.TrimSpace(cfg.Indicator.AppName) == "" {
		return nil, fmt.Errorf("indicator.app_name must not be empty")
	}
	if cfg.Indicator.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.error_timeout_ms must be >= 0")
	}

	if len(cfg.Clipboard.Argv) == 0 {
		return nil, fmt.Errorf("clipboard_cmd must not be empty")
	}
	if cfg.Paste.Enable && cfg.PasteCmd.Raw != "" && len(cfg.PasteCmd.Argv) == 0 {
		return nil, fmt.Errorf("paste_cmd is configured but empty")
	}
	if cfg.Paste.Enable && len(cfg.PasteCmd.Argv) == 0 && strings.TrimSpace(cfg.Paste.Shortcut) == "" {
		return nil, fmt.Errorf("paste.shortcut must not be empty when paste.enable=true and paste_cmd is unset")
	}

	return warnings, nil
}
