package indicator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultMessages(t *testing.T) {
	msg := defaultMessages()
	require.Equal(t, "Recording…", msg.recording)
	require.Equal(t, "Transcribing…", msg.processing)
	require.Equal(t, "Transcription error", msg.errorText)
}
