package detect

import "sort"

// Estimate is the one-time ambient noise measurement for a session.
type Estimate struct {
	// NoiseFloor is the clamped percentile of the calibration samples.
	NoiseFloor float64
	// TooLoud means the environment is unusable for auto-stop.
	TooLoud bool
	// Reliable is false when the floor is high enough that ambient-relative
	// thresholds would misfire; fixed thresholds apply for the session.
	Reliable bool
}

// calibrator gathers the leading ticks of a session into an Estimate.
// It is consumed exactly once and holds no samples afterward.
type calibrator struct {
	cfg     Config
	samples []float64
	seen    int
	done    bool
}

func newCalibrator(cfg Config) *calibrator {
	return &calibrator{
		cfg:     cfg,
		samples: make([]float64, 0, cfg.CalibrationTicks-cfg.CalibrationSkip),
	}
}

// observe records one calibration tick. The returned bool is true exactly
// once, when the final tick completes the estimate.
func (c *calibrator) observe(rms float64) (Estimate, bool) {
	if c.done {
		return Estimate{}, false
	}

	c.seen++
	if c.seen > c.cfg.CalibrationSkip {
		c.samples = append(c.samples, rms)
	}
	if c.seen < c.cfg.CalibrationTicks {
		return Estimate{}, false
	}

	est := c.estimate()
	c.done = true
	c.samples = nil
	return est, true
}

func (c *calibrator) estimate() Estimate {
	sorted := append([]float64(nil), c.samples...)
	sort.Float64s(sorted)

	idx := int(float64(len(sorted)) * c.cfg.AmbientPercentile)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	floor := sorted[idx]
	if floor < c.cfg.MinAmbientRMS {
		floor = c.cfg.MinAmbientRMS
	}

	return Estimate{
		NoiseFloor: floor,
		TooLoud:    floor > c.cfg.TooLoudAmbient,
		Reliable:   floor <= c.cfg.UnreliableAmbient,
	}
}
