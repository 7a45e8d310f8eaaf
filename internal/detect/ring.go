package detect

// rmsRing is a bounded ring of recent loudness values kept for telemetry.
type rmsRing struct {
	buf  []float64
	next int
	full bool
}

func newRMSRing(n int) *rmsRing {
	return &rmsRing{buf: make([]float64, n)}
}

func (r *rmsRing) push(v float64) {
	r.buf[r.next] = v
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
}

// values returns an oldest-first copy of the stored window.
func (r *rmsRing) values() []float64 {
	if !r.full {
		return append([]float64(nil), r.buf[:r.next]...)
	}
	out := make([]float64, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	out = append(out, r.buf[:r.next]...)
	return out
}
