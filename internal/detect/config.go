// Package detect decides when speech has started and ended during a live
// recording so the session can stop itself without a hotkey press.
package detect

import (
	"fmt"
	"math"
	"time"
)

// Config is the immutable per-session tuning for the silence detector.
type Config struct {
	// TickInterval is the detection cycle cadence.
	TickInterval time.Duration
	// FrameSamples is the fixed length of one analyzed sample buffer.
	FrameSamples int

	// CalibrationTicks is the total number of ticks consumed while measuring
	// the ambient noise floor. CalibrationSkip leading ticks are discarded to
	// drop the keypress/click transient that started the recording.
	CalibrationTicks int
	CalibrationSkip  int
	// AmbientPercentile selects the calibration sample used as the noise
	// floor (0.25 avoids both single-outlier minima and spike-skewed means).
	AmbientPercentile float64
	// MinAmbientRMS clamps the computed floor from below.
	MinAmbientRMS float64
	// UnreliableAmbient marks calibration unreliable above this floor; the
	// session falls back to fixed thresholds.
	UnreliableAmbient float64
	// TooLoudAmbient permanently disables speech/silence tests above this
	// floor; manual stop remains the only way to end the recording.
	TooLoudAmbient float64

	// Adaptive enables ambient-relative thresholds. When false (or when
	// calibration was unreliable) the fixed thresholds below apply.
	Adaptive     bool
	SpeechRatio  float64
	SilenceRatio float64

	FixedSpeechRMS  float64
	FixedSilenceRMS float64
	// SpeechFloorRMS is an absolute loudness that counts as speech regardless
	// of the ambient-relative threshold.
	SpeechFloorRMS float64
	// DipRatio treats a drop below peak*DipRatio as silence even when still
	// above the ambient floor.
	DipRatio float64

	// SpeechConfirmTicks is how many consecutive loud ticks confirm speech.
	SpeechConfirmTicks int
	// MinSilenceTicks is the hard lower bound on the silence confirmation
	// window; SilenceHold is the user-configured duration translated to ticks.
	MinSilenceTicks int
	SilenceHold     time.Duration

	// RecentRMSWindow bounds the ring of recent loudness values kept for
	// telemetry snapshots.
	RecentRMSWindow int
	// ErrorBudget is the number of consecutive tick faults tolerated before
	// auto-stop is declared unavailable for the session.
	ErrorBudget int
}

// DefaultConfig returns session tuning matching the shipped UI defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval:       200 * time.Millisecond,
		FrameSamples:       3200, // 200ms @ 16kHz mono
		CalibrationTicks:   8,
		CalibrationSkip:    2,
		AmbientPercentile:  0.25,
		MinAmbientRMS:      0.0015,
		UnreliableAmbient:  0.025,
		TooLoudAmbient:     0.06,
		Adaptive:           true,
		SpeechRatio:        2.5,
		SilenceRatio:       1.3,
		FixedSpeechRMS:     0.02,
		FixedSilenceRMS:    0.012,
		SpeechFloorRMS:     0.035,
		DipRatio:           0.3,
		SpeechConfirmTicks: 2,
		MinSilenceTicks:    3,
		SilenceHold:        1000 * time.Millisecond,
		RecentRMSWindow:    25,
		ErrorBudget:        10,
	}
}

// Validate rejects configurations before any tick runs.
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("detect: tick interval must be > 0, got %s", c.TickInterval)
	}
	if c.FrameSamples <= 0 {
		return fmt.Errorf("detect: frame samples must be > 0, got %d", c.FrameSamples)
	}
	if c.CalibrationTicks <= 0 {
		return fmt.Errorf("detect: calibration ticks must be > 0, got %d", c.CalibrationTicks)
	}
	if c.CalibrationSkip < 0 {
		return fmt.Errorf("detect: calibration skip must be >= 0, got %d", c.CalibrationSkip)
	}
	if c.CalibrationSkip >= c.CalibrationTicks {
		return fmt.Errorf("detect: calibration skip %d leaves no samples from %d ticks", c.CalibrationSkip, c.CalibrationTicks)
	}
	if c.AmbientPercentile < 0 || c.AmbientPercentile >= 1 {
		return fmt.Errorf("detect: ambient percentile must be in [0,1), got %v", c.AmbientPercentile)
	}
	if c.MinAmbientRMS < 0 {
		return fmt.Errorf("detect: minimum ambient rms must be >= 0, got %v", c.MinAmbientRMS)
	}
	if c.TooLoudAmbient < c.UnreliableAmbient {
		return fmt.Errorf("detect: too-loud ceiling %v below unreliable ceiling %v", c.TooLoudAmbient, c.UnreliableAmbient)
	}
	if c.SpeechRatio <= 0 || c.SilenceRatio <= 0 {
		return fmt.Errorf("detect: ambient ratios must be > 0, got speech=%v silence=%v", c.SpeechRatio, c.SilenceRatio)
	}
	if c.FixedSpeechRMS <= 0 || c.FixedSilenceRMS <= 0 {
		return fmt.Errorf("detect: fixed thresholds must be > 0, got speech=%v silence=%v", c.FixedSpeechRMS, c.FixedSilenceRMS)
	}
	if c.DipRatio <= 0 || c.DipRatio >= 1 {
		return fmt.Errorf("detect: dip ratio must be in (0,1), got %v", c.DipRatio)
	}
	if c.SpeechConfirmTicks <= 0 {
		return fmt.Errorf("detect: speech confirm ticks must be > 0, got %d", c.SpeechConfirmTicks)
	}
	if c.MinSilenceTicks <= 0 {
		return fmt.Errorf("detect: minimum silence ticks must be > 0, got %d", c.MinSilenceTicks)
	}
	if c.SilenceHold < 0 {
		return fmt.Errorf("detect: silence hold must be >= 0, got %s", c.SilenceHold)
	}
	if c.RecentRMSWindow <= 0 {
		return fmt.Errorf("detect: recent rms window must be > 0, got %d", c.RecentRMSWindow)
	}
	if c.ErrorBudget <= 0 {
		return fmt.Errorf("detect: error budget must be > 0, got %d", c.ErrorBudget)
	}
	return nil
}

// RequiredSilenceTicks translates the user silence hold into ticks, never
// below the hard minimum confirmation window.
func (c Config) RequiredSilenceTicks() int {
	fromHold := int(math.Ceil(float64(c.SilenceHold) / float64(c.TickInterval)))
	if fromHold < c.MinSilenceTicks {
		return c.MinSilenceTicks
	}
	return fromHold
}
