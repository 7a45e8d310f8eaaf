package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCuePCMPrerendered(t *testing.T) {
	for _, kind := range []cueKind{cueStart, cueStop, cueComplete, cueCancel} {
		require.NotEmpty(t, cuePCM[kind])
	}
	require.Empty(t, cuePCM[cueKind(99)])
}

func TestSynthesizeToneDuration(t *testing.T) {
	got := synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0.2})
	want := samplesForDuration(100 * time.Millisecond)
	require.Len(t, got, want)
}

func TestSynthesizeToneInvalidSpecReturnsEmpty(t *testing.T) {
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 0, duration: 100 * time.Millisecond, volume: 0.2}))
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: 0, volume: 0.2}))
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0}))
}

func TestSynthesizeToneRampsEdges(t *testing.T) {
	pcm := synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0.5})
	require.Equal(t, int16(0), pcm[0])

	peak := int16(0)
	for _, s := range pcm {
		if s > peak {
			peak = s
		}
	}
	require.Greater(t, peak, int16(8000))
}

func TestSamplesForDuration(t *testing.T) {
	require.Equal(t, 0, samplesForDuration(0))
	require.Equal(t, 1600, samplesForDuration(100*time.Millisecond))
}
