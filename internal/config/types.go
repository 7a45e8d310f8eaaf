// Package config resolves, parses, validates, and defaults hush configuration.
package config

// Config is the fully materialized runtime configuration used by hush.
type Config struct {
	Audio      AudioConfig
	Detect     DetectConfig
	Whisper    WhisperConfig
	Paste      PasteConfig
	Transcript TranscriptConfig
	Indicator  IndicatorConfig
	Clipboard  CommandConfig
	PasteCmd   CommandConfig
	Debug      DebugConfig
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string
	Fallback string
}

// DetectConfig controls silence auto-stop behavior during recording.
type DetectConfig struct {
	// Enable turns silence auto-stop on; the recording always remains
	// manually stoppable regardless.
	Enable bool
	// SilenceMS is how long speech must stay quiet before auto-stop (300-5000).
	SilenceMS int
	// Adaptive calibrates thresholds against measured background noise; when
	// false, fixed absolute thresholds apply for the whole session.
	Adaptive bool
	// TickMS is the detection cycle interval.
	TickMS int
	// SpeechRatio and SilenceRatio scale the ambient floor into the
	// speech-start and silence-end thresholds.
	SpeechRatio  float64
	SilenceRatio float64
	// DipRatio treats a drop below peak*DipRatio as silence.
	DipRatio float64
	// ConfirmTicks is how many consecutive loud ticks confirm speech onset.
	ConfirmTicks int
}

// WhisperConfig controls the local transcription bridge.
type WhisperConfig struct {
	Model      string
	Language   string
	Task       string
	PythonBin  string
	BridgePath string
	// ServerMode keeps a persistent bridge process with the model loaded
	// across recordings instead of one exec per transcription.
	ServerMode bool
	// SidecarGRPC optionally points doctor at an externally managed bridge
	// service for a readiness probe.
	SidecarGRPC string
	// TimeoutMS bounds one transcription request.
	TimeoutMS int
}

// PasteConfig controls post-commit paste behavior.
type PasteConfig struct {
	Enable   bool
	Shortcut string
}

// TranscriptConfig controls transcript normalization.
type TranscriptConfig struct {
	TrailingSpace       bool
	CapitalizeSentences bool
}

// IndicatorConfig controls desktop notifications and audio cue behavior.
type IndicatorConfig struct {
	Enable         bool
	AppName        string
	SoundEnable    bool
	ErrorTimeoutMS int
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	EnableAudioDump bool
	// EnableTickDump logs a per-tick detector snapshot at debug level.
	EnableTickDump bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
