package audio

import (
	"encoding/binary"
	"errors"
	"sync"
)

// maxBufferedFrames bounds how much undelivered PCM a tap retains. Older
// samples are discarded; only the newest audio matters for level detection.
const maxBufferedFrames = 4

// FrameTap accumulates little-endian s16 PCM pushed by the capture drain and
// serves the newest fixed-length sample frame on demand. It decouples the
// capture goroutine from the detection tick: Push never blocks on the
// detector, and Frame never blocks on Pulse.
type FrameTap struct {
	frameSamples int

	mu       sync.Mutex
	buf      []int16
	leftover []byte
	closed   bool
}

// NewFrameTap returns a tap producing frames of frameSamples samples.
func NewFrameTap(frameSamples int) *FrameTap {
	if frameSamples <= 0 {
		panic("audio: frame tap requires a positive frame size")
	}
	return &FrameTap{frameSamples: frameSamples}
}

// Push appends raw PCM bytes to the tap. A trailing odd byte is held until
// the next call completes the sample.
func (t *FrameTap) Push(pcm []byte) {
	if len(pcm) == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	data := pcm
	if len(t.leftover) > 0 {
		data = append(append([]byte(nil), t.leftover...), pcm...)
		t.leftover = nil
	}
	if len(data)%2 != 0 {
		t.leftover = []byte{data[len(data)-1]}
		data = data[:len(data)-1]
	}

	for i := 0; i+1 < len(data); i += 2 {
		t.buf = append(t.buf, int16(binary.LittleEndian.Uint16(data[i:])))
	}

	if limit := maxBufferedFrames * t.frameSamples; len(t.buf) > limit {
		t.buf = append(t.buf[:0], t.buf[len(t.buf)-limit:]...)
	}
}

// Frame returns the newest full frame and drains the buffer. ok is false when
// less than one frame of fresh audio arrived since the previous call.
func (t *FrameTap) Frame() ([]int16, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, false, errors.New("frame tap is closed")
	}
	if len(t.buf) < t.frameSamples {
		return nil, false, nil
	}

	frame := make([]int16, t.frameSamples)
	copy(frame, t.buf[len(t.buf)-t.frameSamples:])
	t.buf = t.buf[:0]
	return frame, true, nil
}

// Release discards buffered audio and rejects further pushes.
func (t *FrameTap) Release() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.buf = nil
	t.leftover = nil
	return nil
}
