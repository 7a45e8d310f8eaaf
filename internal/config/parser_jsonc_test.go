package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseJSONCWithCommentsAndTrailingCommas(t *testing.T) {
	content := `{
  // input source override
  "audio": { "input": "pipewire" },
  "detect": {
    "silence_ms": 2000,
    "adaptive": false, /* fixed thresholds */
    "confirm_ticks": 3,
  },
  "whisper": {
    "model": "large-v3",
    "server_mode": false,
  },
  "clipboard_cmd": "xclip -selection clipboard",
}`

	cfg, warnings, err := Parse(content, Default())
	require.NoError(t, err)
	require.Empty(t, warnings)

	require.Equal(t, "pipewire", cfg.Audio.Input)
	require.Equal(t, 2000, cfg.Detect.SilenceMS)
	require.False(t, cfg.Detect.Adaptive)
	require.Equal(t, 3, cfg.Detect.ConfirmTicks)
	require.Equal(t, "large-v3", cfg.Whisper.Model)
	require.False(t, cfg.Whisper.ServerMode)
	require.Equal(t, []string{"xclip", "-selection", "clipboard"}, cfg.Clipboard.Argv)

	// untouched sections keep defaults
	require.Equal(t, Default().Detect.TickMS, cfg.Detect.TickMS)
	require.Equal(t, Default().Indicator, cfg.Indicator)
}

func TestParseJSONCRejectsUnknownField(t *testing.T) {
	_, _, err := Parse(`{"detect": {"volume": 11}}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "volume")
}

func TestParseJSONCSyntaxErrorReportsLocation(t *testing.T) {
	content := "{\n  \"detect\": {\n    \"silence_ms\": oops\n  }\n}"

	_, _, err := Parse(content, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 3")
}

func TestParseJSONCRejectsTypeMismatch(t *testing.T) {
	_, _, err := Parse(`{"detect": {"silence_ms": "soon"}}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 1")
}

func TestParseJSONCRejectsTrailingValue(t *testing.T) {
	_, _, err := Parse(`{"audio": {"input": "default"}} {"extra": true}`, Default())
	require.Error(t, err)
}

func TestParseJSONCUnterminatedBlockComment(t *testing.T) {
	_, _, err := Parse("{ /* never closed\n \"audio\": {} }", Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unterminated block comment")
}

func TestParseJSONCCommentMarkersInsideStrings(t *testing.T) {
	cfg, _, err := Parse(`{"paste": {"shortcut": "CTRL//V"}, "indicator": {"app_name": "a/*b*/c"}}`, Default())
	require.NoError(t, err)
	require.Equal(t, "CTRL//V", cfg.Paste.Shortcut)
	require.Equal(t, "a/*b*/c", cfg.Indicator.AppName)
}

func TestStripJSONCTrailingCommasPreservesStringCommas(t *testing.T) {
	out := stripJSONCTrailingCommas(`{"shortcut": "CTRL,V", }`)
	require.Equal(t, `{"shortcut": "CTRL,V" }`, out)
}

func TestParseJSONCInvalidClipboardCmd(t *testing.T) {
	_, _, err := Parse(`{"clipboard_cmd": "wl-copy 'unterminated"}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "clipboard_cmd")
}
