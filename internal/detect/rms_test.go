package detect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRMSEmptyBufferIsZero(t *testing.T) {
	require.Zero(t, RMS(nil))
	require.Zero(t, RMS([]int16{}))
}

func TestRMSSilenceIsZero(t *testing.T) {
	require.Zero(t, RMS(make([]int16, 3200)))
}

func TestRMSConstantAmplitude(t *testing.T) {
	samples := make([]int16, 1600)
	for i := range samples {
		samples[i] = 16384 // 0.5 normalized
	}
	require.InDelta(t, 0.5, RMS(samples), 1e-9)
}

func TestRMSAlternatingSign(t *testing.T) {
	samples := make([]int16, 1600)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 8192
		} else {
			samples[i] = -8192
		}
	}
	// Sign never changes the energy.
	require.InDelta(t, 0.25, RMS(samples), 1e-9)
}

func TestRMSFullScale(t *testing.T) {
	samples := []int16{-32768, -32768, -32768, -32768}
	require.InDelta(t, 1.0, RMS(samples), 1e-9)
}
