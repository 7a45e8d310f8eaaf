package detect

import (
	"fmt"
	"sync/atomic"
)

// Phase is the detector lifecycle position within one recording session.
type Phase string

const (
	PhaseCalibrating     Phase = "calibrating"
	PhaseAwaitingSpeech  Phase = "awaiting-speech"
	PhaseSpeechConfirmed Phase = "speech-confirmed"
	PhaseStopped         Phase = "stopped"
	PhaseAmbientTooLoud  Phase = "ambient-too-loud"
)

// terminal reports whether no further decisions are possible in this phase.
func (p Phase) terminal() bool {
	return p == PhaseStopped || p == PhaseAmbientTooLoud
}

// Events is the owner-facing notification surface. The owner alone stops the
// physical recorder and triggers transcription; the detector never does.
type Events interface {
	OnSpeechDetected()
	OnAutoStop()
	OnEnvironmentTooLoud(message string)
	OnDetectionUnavailable(message string)
}

// NoopEvents preserves detector flow when no owner sink is wired.
type NoopEvents struct{}

func (NoopEvents) OnSpeechDetected()                  {}
func (NoopEvents) OnAutoStop()                        {}
func (NoopEvents) OnEnvironmentTooLoud(string)        {}
func (NoopEvents) OnDetectionUnavailable(string)      {}

// Snapshot is the structured per-tick state handed to telemetry observers.
type Snapshot struct {
	Seq              uint64
	RMS              float64
	Phase            Phase
	SpeechTicks      int
	SilenceTicks     int
	SpeechDetected   bool
	PeakRMS          float64
	NoiseFloor       float64
	SpeechThreshold  float64
	SilenceThreshold float64
	// RecentRMS is an oldest-first copy of the bounded loudness history.
	RecentRMS []float64
}

// Machine is the hysteresis decision engine. One Machine serves exactly one
// recording session; construct a fresh one per session and discard it at
// teardown. All mutation happens inside Feed, which the owning loop calls
// from a single goroutine.
type Machine struct {
	cfg    Config
	events Events

	phase      Phase
	calibrator *calibrator
	policy     policy
	estimate   Estimate
	estimated  bool

	seq            uint64
	speechTicks    int
	silenceTicks   int
	speechDetected bool
	peakRMS        float64
	recent         *rmsRing

	stopping atomic.Bool
}

// NewMachine validates cfg and returns a machine in the Calibrating phase.
func NewMachine(cfg Config, events Events) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if events == nil {
		events = NoopEvents{}
	}
	return &Machine{
		cfg:        cfg,
		events:     events,
		phase:      PhaseCalibrating,
		calibrator: newCalibrator(cfg),
		recent:     newRMSRing(cfg.RecentRMSWindow),
	}, nil
}

// Phase returns the current lifecycle position.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Estimate returns the ambient measurement once calibration has completed.
func (m *Machine) Estimate() (Estimate, bool) {
	return m.estimate, m.estimated
}

// Feed consumes one tick's loudness value, advances the machine, and returns
// the post-tick snapshot.
func (m *Machine) Feed(rms float64) Snapshot {
	m.seq++
	m.recent.push(rms)

	switch m.phase {
	case PhaseCalibrating:
		m.feedCalibration(rms)
	case PhaseAwaitingSpeech, PhaseSpeechConfirmed:
		m.feedDetection(rms)
	case PhaseStopped, PhaseAmbientTooLoud:
		// Absorbing; later loudness never changes the outcome.
	}

	return m.snapshot(rms)
}

func (m *Machine) feedCalibration(rms float64) {
	est, done := m.calibrator.observe(rms)
	if !done {
		return
	}

	m.estimate = est
	m.estimated = true
	m.calibrator = nil

	if est.TooLoud {
		m.phase = PhaseAmbientTooLoud
		m.events.OnEnvironmentTooLoud(fmt.Sprintf(
			"background noise too loud for auto-stop (ambient %.4f); stop recording manually", est.NoiseFloor))
		return
	}

	m.policy = newPolicy(m.cfg, est)
	m.phase = PhaseAwaitingSpeech
}

func (m *Machine) feedDetection(rms float64) {
	th := m.policy.thresholds()

	if aboveSpeech(rms, th, m.cfg.SpeechFloorRMS) {
		m.speechTicks++
	} else {
		m.speechTicks = 0
	}

	if !m.speechDetected && m.speechTicks >= m.cfg.SpeechConfirmTicks {
		m.speechDetected = true
		m.phase = PhaseSpeechConfirmed
		m.peakRMS = rms
		m.events.OnSpeechDetected()
	}

	// Silence before any confirmed speech must never start the stop timer.
	if !m.speechDetected {
		return
	}

	if rms > m.peakRMS {
		m.peakRMS = rms
	}

	if belowSilence(rms, th, m.peakRMS, m.cfg.DipRatio) {
		m.silenceTicks++
	} else {
		m.silenceTicks = 0
	}

	if m.silenceTicks >= m.cfg.RequiredSilenceTicks() {
		m.phase = PhaseStopped
		// The latch flips false->true exactly once per session; a duplicate
		// arriving before teardown is a no-op.
		if m.stopping.CompareAndSwap(false, true) {
			m.events.OnAutoStop()
		}
	}
}

func (m *Machine) snapshot(rms float64) Snapshot {
	snap := Snapshot{
		Seq:            m.seq,
		RMS:            rms,
		Phase:          m.phase,
		SpeechTicks:    m.speechTicks,
		SilenceTicks:   m.silenceTicks,
		SpeechDetected: m.speechDetected,
		PeakRMS:        m.peakRMS,
		RecentRMS:      m.recent.values(),
	}
	if m.estimated {
		snap.NoiseFloor = m.estimate.NoiseFloor
		if m.phase != PhaseAmbientTooLoud {
			th := m.policy.thresholds()
			snap.SpeechThreshold = th.speech
			snap.SilenceThreshold = th.silence
		}
	}
	return snap
}
