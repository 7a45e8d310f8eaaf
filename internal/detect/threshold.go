package detect

// thresholds are the per-tick speech-start and silence-end cutoffs.
type thresholds struct {
	speech  float64
	silence float64
}

// policy derives per-tick thresholds from the calibration outcome. The
// adaptive decision is made once, when the estimate lands, and never changes
// mid-session.
type policy struct {
	cfg      Config
	adaptive bool
	floor    float64
}

func newPolicy(cfg Config, est Estimate) policy {
	return policy{
		cfg:      cfg,
		adaptive: cfg.Adaptive && est.Reliable,
		floor:    est.NoiseFloor,
	}
}

func (p policy) thresholds() thresholds {
	if !p.adaptive {
		return thresholds{speech: p.cfg.FixedSpeechRMS, silence: p.cfg.FixedSilenceRMS}
	}
	return thresholds{
		speech:  p.floor * p.cfg.SpeechRatio,
		silence: p.floor * p.cfg.SilenceRatio,
	}
}

// aboveSpeech reports whether a tick counts toward speech confirmation:
// louder than the session threshold, or louder than the absolute floor that
// always counts as speech.
func aboveSpeech(rms float64, th thresholds, absoluteFloor float64) bool {
	return rms > th.speech || rms > absoluteFloor
}

// belowSilence reports whether a tick counts toward the stop window: quieter
// than the session threshold, or a sharp relative drop from the loudest point
// of the utterance. The dip term handles voices whose resting level stays
// above ambient noise.
func belowSilence(rms float64, th thresholds, peakRMS float64, dipRatio float64) bool {
	if rms < th.silence {
		return true
	}
	return peakRMS > 0 && rms < peakRMS*dipRatio
}
