package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	clipboard := "wl-copy --trim-newline"

	return Config{
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Detect: DetectConfig{
			Enable:       true,
			SilenceMS:    1000,
			Adaptive:     true,
			TickMS:       200,
			SpeechRatio:  2.5,
			SilenceRatio: 1.3,
			DipRatio:     0.3,
			ConfirmTicks: 2,
		},
		Whisper: WhisperConfig{
			Model:      "base",
			Language:   "",
			Task:       "transcribe",
			PythonBin:  "python3",
			BridgePath: "",
			ServerMode: true,
			TimeoutMS:  60000,
		},
		Paste: PasteConfig{Enable: true, Shortcut: "CTRL,V"},
		Transcript: TranscriptConfig{
			TrailingSpace:       true,
			CapitalizeSentences: true,
		},
		Indicator: IndicatorConfig{
			Enable:         true,
			AppName:        "hush-indicator",
			SoundEnable:    true,
			ErrorTimeoutMS: 1600,
		},
		Clipboard: CommandConfig{Raw: clipboard, Argv: mustParseArgv(clipboard)},
		Debug:     DebugConfig{},
	}
}
