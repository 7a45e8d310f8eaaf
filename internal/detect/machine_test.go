package detect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// eventLog records owner notifications for assertions.
type eventLog struct {
	speech      int
	autoStop    int
	tooLoud     []string
	unavailable []string
}

func (e *eventLog) OnSpeechDetected()                  { e.speech++ }
func (e *eventLog) OnAutoStop()                        { e.autoStop++ }
func (e *eventLog) OnEnvironmentTooLoud(msg string)    { e.tooLoud = append(e.tooLoud, msg) }
func (e *eventLog) OnDetectionUnavailable(msg string)  { e.unavailable = append(e.unavailable, msg) }

func scenarioConfig() Config {
	cfg := DefaultConfig()
	cfg.TickInterval = 200 * time.Millisecond
	cfg.CalibrationTicks = 8
	cfg.CalibrationSkip = 2
	cfg.AmbientPercentile = 0.25
	cfg.MinAmbientRMS = 0.0015
	cfg.Adaptive = true
	cfg.SpeechRatio = 1.05
	cfg.SilenceRatio = 1.05
	cfg.SpeechConfirmTicks = 2
	cfg.MinSilenceTicks = 5
	cfg.SilenceHold = 1000 * time.Millisecond
	return cfg
}

func calibrate(t *testing.T, m *Machine, samples []float64) {
	t.Helper()
	for _, rms := range samples {
		m.Feed(rms)
	}
}

var quietRoom = []float64{0.002, 0.002, 0.02, 0.004, 0.003, 0.003, 0.004, 0.003}

func TestMachineScenarioSpeechThenAutoStop(t *testing.T) {
	events := &eventLog{}
	m, err := NewMachine(scenarioConfig(), events)
	require.NoError(t, err)
	require.Equal(t, PhaseCalibrating, m.Phase())

	calibrate(t, m, quietRoom)
	est, ok := m.Estimate()
	require.True(t, ok)
	require.InDelta(t, 0.003, est.NoiseFloor, 1e-12)
	require.Equal(t, PhaseAwaitingSpeech, m.Phase())

	// Loud run: speech confirms on the second consecutive tick.
	m.Feed(0.05)
	require.Equal(t, PhaseAwaitingSpeech, m.Phase())
	require.Zero(t, events.speech)
	m.Feed(0.05)
	require.Equal(t, PhaseSpeechConfirmed, m.Phase())
	require.Equal(t, 1, events.speech)
	m.Feed(0.05)

	// Quiet run: auto-stop on exactly the fifth consecutive quiet tick.
	for i := 0; i < 4; i++ {
		m.Feed(0.002)
		require.Zero(t, events.autoStop, "stopped early on quiet tick %d", i+1)
	}
	snap := m.Feed(0.002)
	require.Equal(t, 1, events.autoStop)
	require.Equal(t, PhaseStopped, snap.Phase)

	// Further ticks are absorbed; the latch never refires.
	for i := 0; i < 3; i++ {
		m.Feed(0.002)
	}
	require.Equal(t, 1, events.autoStop)
	require.Equal(t, 1, events.speech)
}

func TestMachineSingleSpikeDoesNotConfirmSpeech(t *testing.T) {
	events := &eventLog{}
	m, err := NewMachine(scenarioConfig(), events)
	require.NoError(t, err)

	calibrate(t, m, quietRoom)
	m.Feed(0.002)
	m.Feed(0.05) // one-tick spike
	snap := m.Feed(0.002)

	require.Zero(t, events.speech)
	require.False(t, snap.SpeechDetected)
	require.Equal(t, PhaseAwaitingSpeech, snap.Phase)
	require.Zero(t, snap.SpeechTicks)
}

func TestMachineSilenceBeforeSpeechNeverCountsDown(t *testing.T) {
	events := &eventLog{}
	m, err := NewMachine(scenarioConfig(), events)
	require.NoError(t, err)

	calibrate(t, m, quietRoom)
	var snap Snapshot
	for i := 0; i < 30; i++ {
		snap = m.Feed(0.001)
	}
	require.Zero(t, events.autoStop)
	require.Zero(t, snap.SilenceTicks)
	require.Equal(t, PhaseAwaitingSpeech, snap.Phase)
}

func TestMachineAmbientTooLoudIsAbsorbing(t *testing.T) {
	cfg := scenarioConfig()
	cfg.TooLoudAmbient = 0.06
	events := &eventLog{}
	m, err := NewMachine(cfg, events)
	require.NoError(t, err)

	for i := 0; i < cfg.CalibrationTicks; i++ {
		m.Feed(0.09)
	}
	require.Equal(t, PhaseAmbientTooLoud, m.Phase())
	require.Len(t, events.tooLoud, 1)

	// Later loudness values can never produce speech or auto-stop.
	for i := 0; i < 20; i++ {
		m.Feed(0.2)
	}
	for i := 0; i < 20; i++ {
		m.Feed(0.0001)
	}
	require.Equal(t, PhaseAmbientTooLoud, m.Phase())
	require.Zero(t, events.speech)
	require.Zero(t, events.autoStop)
}

func TestMachineCalibratesExactlyOnce(t *testing.T) {
	events := &eventLog{}
	m, err := NewMachine(scenarioConfig(), events)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		snap := m.Feed(0.002)
		if i >= 8 {
			require.NotEqual(t, PhaseCalibrating, snap.Phase)
		}
	}
	est, ok := m.Estimate()
	require.True(t, ok)
	require.InDelta(t, 0.002, est.NoiseFloor, 1e-12)
}

func TestMachinePeakDipCountsAsSilence(t *testing.T) {
	events := &eventLog{}
	m, err := NewMachine(scenarioConfig(), events)
	require.NoError(t, err)

	calibrate(t, m, quietRoom)
	m.Feed(0.2)
	m.Feed(0.2)
	require.Equal(t, 1, events.speech)

	// 0.05 stays well above the ambient silence threshold but is below
	// peak*dip (0.2*0.3); a speaker trailing off still stops the session.
	var snap Snapshot
	for i := 0; i < 5; i++ {
		snap = m.Feed(0.05)
		require.Equal(t, 0.2, snap.PeakRMS)
	}
	require.Equal(t, 1, events.autoStop)
	require.Equal(t, PhaseStopped, snap.Phase)
}

func TestMachinePeakIsNonDecreasing(t *testing.T) {
	events := &eventLog{}
	m, err := NewMachine(scenarioConfig(), events)
	require.NoError(t, err)

	calibrate(t, m, quietRoom)
	m.Feed(0.1)
	m.Feed(0.1)
	snap := m.Feed(0.3)
	require.Equal(t, 0.3, snap.PeakRMS)
	snap = m.Feed(0.1)
	require.Equal(t, 0.3, snap.PeakRMS)
}

func TestMachineInterruptedSilenceResetsCounter(t *testing.T) {
	events := &eventLog{}
	m, err := NewMachine(scenarioConfig(), events)
	require.NoError(t, err)

	calibrate(t, m, quietRoom)
	m.Feed(0.05)
	m.Feed(0.05)

	for i := 0; i < 4; i++ {
		m.Feed(0.002)
	}
	snap := m.Feed(0.05) // speech resumes before the window completes
	require.Zero(t, snap.SilenceTicks)
	require.Zero(t, events.autoStop)

	for i := 0; i < 5; i++ {
		snap = m.Feed(0.002)
	}
	require.Equal(t, 1, events.autoStop)
	require.Equal(t, PhaseStopped, snap.Phase)
}

func TestMachineSnapshotCarriesRecentLoudnessWindow(t *testing.T) {
	cfg := scenarioConfig()
	cfg.RecentRMSWindow = 3

	m, err := NewMachine(cfg, &eventLog{})
	require.NoError(t, err)

	m.Feed(0.001)
	snap := m.Feed(0.002)
	require.Equal(t, []float64{0.001, 0.002}, snap.RecentRMS)

	// The window stays bounded and oldest-first once full.
	m.Feed(0.003)
	snap = m.Feed(0.004)
	require.Equal(t, []float64{0.002, 0.003, 0.004}, snap.RecentRMS)
}

func TestNewMachineRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "negative tick interval", mutate: func(c *Config) { c.TickInterval = -time.Second }},
		{name: "zero frame samples", mutate: func(c *Config) { c.FrameSamples = 0 }},
		{name: "skip consumes window", mutate: func(c *Config) { c.CalibrationSkip = c.CalibrationTicks }},
		{name: "percentile out of range", mutate: func(c *Config) { c.AmbientPercentile = 1.0 }},
		{name: "inverted ceilings", mutate: func(c *Config) { c.TooLoudAmbient = c.UnreliableAmbient / 2 }},
		{name: "zero speech ratio", mutate: func(c *Config) { c.SpeechRatio = 0 }},
		{name: "dip ratio above one", mutate: func(c *Config) { c.DipRatio = 1.5 }},
		{name: "zero confirm ticks", mutate: func(c *Config) { c.SpeechConfirmTicks = 0 }},
		{name: "negative silence hold", mutate: func(c *Config) { c.SilenceHold = -time.Second }},
		{name: "zero error budget", mutate: func(c *Config) { c.ErrorBudget = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			_, err := NewMachine(cfg, nil)
			require.Error(t, err)
		})
	}
}
