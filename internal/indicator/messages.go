package indicator

// messages holds the user-facing notification strings.
type messages struct {
	recording  string
	processing string
	errorText  string
}

func defaultMessages() messages {
	return messages{
		recording:  "Recording…",
		processing: "Transcribing…",
		errorText:  "Transcription error",
	}
}
