package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads configuration content as JSONC (preferred) or legacy key/value
// format. JSONC is selected when the first non-whitespace character is `{`.
func Parse(content string, base Config) (Config, []Warning, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		validatedWarnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, validatedWarnings, nil
	}

	if strings.HasPrefix(trimmed, "{") {
		return parseJSONC(content, base)
	}

	cfg, warnings, err := parseLegacy(content, base)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append([]Warning{{Message: "legacy key=value config format is deprecated; migrate to JSONC"}}, warnings...)
	return cfg, warnings, nil
}

// parseLegacy reads `dotted.key = value` lines with # comments.
func parseLegacy(content string, base Config) (Config, []Warning, error) {
	cfg := base

	for idx, line := range strings.Split(content, "\n") {
		lineNo := idx + 1
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, rawValue, found := strings.Cut(line, "=")
		if !found {
			return Config{}, nil, fmt.Errorf("line %d: expected key = value, got %q", lineNo, line)
		}
		key = strings.TrimSpace(key)
		value := unquote(strings.TrimSpace(rawValue))

		if err := applyLegacyKey(&cfg, key, value); err != nil {
			return Config{}, nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func applyLegacyKey(cfg *Config, key string, value string) error {
	switch key {
	case "audio.input":
		cfg.Audio.Input = value
	case "audio.fallback":
		cfg.Audio.Fallback = value
	case "detect.enable":
		return setBool(&cfg.Detect.Enable, key, value)
	case "detect.silence_ms":
		return setInt(&cfg.Detect.SilenceMS, key, value)
	case "detect.adaptive":
		return setBool(&cfg.Detect.Adaptive, key, value)
	case "detect.tick_ms":
		return setInt(&cfg.Detect.TickMS, key, value)
	case "detect.speech_ratio":
		return setFloat(&cfg.Detect.SpeechRatio, key, value)
	case "detect.silence_ratio":
		return setFloat(&cfg.Detect.SilenceRatio, key, value)
	case "detect.dip_ratio":
		return setFloat(&cfg.Detect.DipRatio, key, value)
	case "detect.confirm_ticks":
		return setInt(&cfg.Detect.ConfirmTicks, key, value)
	case "whisper.model":
		cfg.Whisper.Model = value
	case "whisper.language":
		cfg.Whisper.Language = value
	case "whisper.task":
		cfg.Whisper.Task = value
	case "whisper.python_bin":
		cfg.Whisper.PythonBin = value
	case "whisper.bridge_path":
		cfg.Whisper.BridgePath = value
	case "whisper.server_mode":
		return setBool(&cfg.Whisper.ServerMode, key, value)
	case "whisper.sidecar_grpc":
		cfg.Whisper.SidecarGRPC = value
	case "whisper.timeout_ms":
		return setInt(&cfg.Whisper.TimeoutMS, key, value)
	case "paste.enable":
		return setBool(&cfg.Paste.Enable, key, value)
	case "paste.shortcut":
		cfg.Paste.Shortcut = value
	case "transcript.trailing_space":
		return setBool(&cfg.Transcript.TrailingSpace, key, value)
	case "transcript.capitalize_sentences":
		return setBool(&cfg.Transcript.CapitalizeSentences, key, value)
	case "indicator.enable":
		return setBool(&cfg.Indicator.Enable, key, value)
	case "indicator.app_name":
		cfg.Indicator.AppName = value
	case "indicator.sound_enable":
		return setBool(&cfg.Indicator.SoundEnable, key, value)
	case "indicator.error_timeout_ms":
		return setInt(&cfg.Indicator.ErrorTimeoutMS, key, value)
	case "clipboard_cmd":
		argv, err := parseArgv(value)
		if err != nil {
			return fmt.Errorf("invalid clipboard_cmd: %w", err)
		}
		cfg.Clipboard = CommandConfig{Raw: value, Argv: argv}
	case "paste_cmd":
		argv, err := parseArgv(value)
		if err != nil {
			return fmt.Errorf("invalid paste_cmd: %w", err)
		}
		cfg.PasteCmd = CommandConfig{Raw: value, Argv: argv}
	case "debug.audio_dump":
		return setBool(&cfg.Debug.EnableAudioDump, key, value)
	case "debug.tick_dump":
		return setBool(&cfg.Debug.EnableTickDump, key, value)
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}

func setBool(dst *bool, key string, value string) error {
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s expects true/false, got %q", key, value)
	}
	*dst = parsed
	return nil
}

func setInt(dst *int, key string, value string) error {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s expects an integer, got %q", key, value)
	}
	*dst = parsed
	return nil
}

func setFloat(dst *float64, key string, value string) error {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s expects a number, got %q", key, value)
	}
	*dst = parsed
	return nil
}

func unquote(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
