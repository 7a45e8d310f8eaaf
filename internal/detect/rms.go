package detect

import "math"

// RMS computes root-mean-square amplitude over s16 samples normalized to
// [-1,1]. An empty buffer yields 0.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
