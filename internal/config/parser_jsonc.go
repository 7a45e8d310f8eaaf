package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	Audio      *jsoncAudio      `json:"audio"`
	Detect     *jsoncDetect     `json:"detect"`
	Whisper    *jsoncWhisper    `json:"whisper"`
	Paste      *jsoncPaste      `json:"paste"`
	Transcript *jsoncTranscript `json:"transcript"`
	Indicator  *jsoncIndicator  `json:"indicator"`

	ClipboardCmd *string     `json:"clipboard_cmd"`
	PasteCmd     *string     `json:"paste_cmd"`
	Debug        *jsoncDebug `json:"debug"`
}

type jsoncAudio struct {
	Input    *string `json:"input"`
	Fallback *string `json:"fallback"`
}

type jsoncDetect struct {
	Enable       *bool    `json:"enable"`
	SilenceMS    *int     `json:"silence_ms"`
	Adaptive     *bool    `json:"adaptive"`
	TickMS       *int     `json:"tick_ms"`
	SpeechRatio  *float64 `json:"speech_ratio"`
	SilenceRatio *float64 `json:"silence_ratio"`
	DipRatio     *float64 `json:"dip_ratio"`
	ConfirmTicks *int     `json:"confirm_ticks"`
}

type jsoncWhisper struct {
	Model       *string `json:"model"`
	Language    *string `json:"language"`
	Task        *string `json:"task"`
	PythonBin   *string `json:"python_bin"`
	BridgePath  *string `json:"bridge_path"`
	ServerMode  *bool   `json:"server_mode"`
	SidecarGRPC *string `json:"sidecar_grpc"`
	TimeoutMS   *int    `json:"timeout_ms"`
}

type jsoncPaste struct {
	Enable   *bool   `json:"enable"`
	Shortcut *string `json:"shortcut"`
}

type jsoncTranscript struct {
	TrailingSpace       *bool `json:"trailing_space"`
	CapitalizeSentences *bool `json:"capitalize_sentences"`
}

type jsoncIndicator struct {
	Enable         *bool   `json:"enable"`
	AppName        *string `json:"app_name"`
	SoundEnable    *bool   `json:"sound_enable"`
	ErrorTimeoutMS *int    `json:"error_timeout_ms"`
}

type jsoncDebug struct {
	AudioDump *bool `json:"audio_dump"`
	TickDump  *bool `json:"tick_dump"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	if err := payload.applyTo(&cfg); err != nil {
		return Config{}, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) error {
	if payload.Audio != nil {
		applyString(&cfg.Audio.Input, payload.Audio.Input)
		applyString(&cfg.Audio.Fallback, payload.Audio.Fallback)
	}

	if payload.Detect != nil {
		applyBool(&cfg.Detect.Enable, payload.Detect.Enable)
		applyInt(&cfg.Detect.SilenceMS, payload.Detect.SilenceMS)
		applyBool(&cfg.Detect.Adaptive, payload.Detect.Adaptive)
		applyInt(&cfg.Detect.TickMS, payload.Detect.TickMS)
		applyFloat(&cfg.Detect.SpeechRatio, payload.Detect.SpeechRatio)
		applyFloat(&cfg.Detect.SilenceRatio, payload.Detect.SilenceRatio)
		applyFloat(&cfg.Detect.DipRatio, payload.Detect.DipRatio)
		applyInt(&cfg.Detect.ConfirmTicks, payload.Detect.ConfirmTicks)
	}

	if payload.Whisper != nil {
		applyString(&cfg.Whisper.Model, payload.Whisper.Model)
		applyString(&cfg.Whisper.Language, payload.Whisper.Language)
		applyString(&cfg.Whisper.Task, payload.Whisper.Task)
		applyString(&cfg.Whisper.PythonBin, payload.Whisper.PythonBin)
		applyString(&cfg.Whisper.BridgePath, payload.Whisper.BridgePath)
		applyBool(&cfg.Whisper.ServerMode, payload.Whisper.ServerMode)
		applyString(&cfg.Whisper.SidecarGRPC, payload.Whisper.SidecarGRPC)
		applyInt(&cfg.Whisper.TimeoutMS, payload.Whisper.TimeoutMS)
	}

	if payload.Paste != nil {
		applyBool(&cfg.Paste.Enable, payload.Paste.Enable)
		if payload.Paste.Shortcut != nil {
			cfg.Paste.Shortcut = strings.TrimSpace(*payload.Paste.Shortcut)
		}
	}

	if payload.Transcript != nil {
		applyBool(&cfg.Transcript.TrailingSpace, payload.Transcript.TrailingSpace)
		applyBool(&cfg.Transcript.CapitalizeSentences, payload.Transcript.CapitalizeSentences)
	}

	if payload.Indicator != nil {
		applyBool(&cfg.Indicator.Enable, payload.Indicator.Enable)
		if payload.Indicator.AppName != nil {
			cfg.Indicator.AppName = strings.TrimSpace(*payload.Indicator.AppName)
		}
		applyBool(&cfg.Indicator.SoundEnable, payload.Indicator.SoundEnable)
		applyInt(&cfg.Indicator.ErrorTimeoutMS, payload.Indicator.ErrorTimeoutMS)
	}

	if payload.ClipboardCmd != nil {
		raw := *payload.ClipboardCmd
		argv, err := parseArgv(raw)
		if err != nil {
			return fmt.Errorf("invalid clipboard_cmd: %w", err)
		}
		cfg.Clipboard = CommandConfig{Raw: raw, Argv: argv}
	}

	if payload.PasteCmd != nil {
		raw := *payload.PasteCmd
		argv, err := parseArgv(raw)
		if err != nil {
			return fmt.Errorf("invalid paste_cmd: %w", err)
		}
		cfg.PasteCmd = CommandConfig{Raw: raw, Argv: argv}
	}

	if payload.Debug != nil {
		applyBool(&cfg.Debug.EnableAudioDump, payload.Debug.AudioDump)
		applyBool(&cfg.Debug.EnableTickDump, payload.Debug.TickDump)
	}

	return nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func applyBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func applyInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func applyFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// normalizeJSONC strips comments and trailing commas so encoding/json can
// decode the remainder.
func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' || ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
