package indicator

import (
	"fmt"
	"math"
	"time"

	"github.com/jfreymuth/pulse"
)

type cueKind int

const (
	cueStart cueKind = iota + 1
	cueStop
	cueComplete
	cueCancel
)

const (
	cueSampleRate = 16000
	cueVolume     = 0.18
	cueToneGap    = 22 * time.Millisecond
)

type toneSpec struct {
	frequencyHz float64
	duration    time.Duration
	volume      float64
}

// cuePCM holds each cue pre-rendered at startup. Rising intervals mark the
// start of a take, falling ones a cancel.
var cuePCM = map[cueKind][]int16{
	cueStart: synthesizeCue(
		toneSpec{frequencyHz: 880, duration: 70 * time.Millisecond, volume: cueVolume},
		toneSpec{frequencyHz: 1175, duration: 70 * time.Millisecond, volume: cueVolume},
	),
	cueStop: synthesizeCue(
		toneSpec{frequencyHz: 620, duration: 120 * time.Millisecond, volume: cueVolume},
	),
	cueComplete: synthesizeCue(
		toneSpec{frequencyHz: 740, duration: 65 * time.Millisecond, volume: cueVolume},
		toneSpec{frequencyHz: 988, duration: 90 * time.Millisecond, volume: cueVolume},
	),
	cueCancel: synthesizeCue(
		toneSpec{frequencyHz: 480, duration: 75 * time.Millisecond, volume: cueVolume},
		toneSpec{frequencyHz: 360, duration: 90 * time.Millisecond, volume: cueVolume},
	),
}

// emitCue plays a synthesized cue through the default playback sink.
func emitCue(kind cueKind) error {
	samples := cuePCM[kind]
	if len(samples) == 0 {
		return nil
	}
	return playSynthCue(samples)
}

func playSynthCue(samples []int16) error {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("hush"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	cursor := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if cursor >= len(samples) {
			return 0, pulse.EndOfData
		}

		n := copy(buf, samples[cursor:])
		cursor += n
		if cursor >= len(samples) {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	stream, err := client.NewPlayback(
		reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(cueSampleRate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackMediaName("hush indicator cue"),
	)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play cue stream: %w", err)
	}

	return nil
}

// synthesizeCue concatenates tone bursts with a short silent gap between
// them.
func synthesizeCue(parts ...toneSpec) []int16 {
	var pcm []int16
	for i, part := range parts {
		if i > 0 {
			pcm = append(pcm, make([]int16, samplesForDuration(cueToneGap))...)
		}
		pcm = append(pcm, synthesizeTone(part)...)
	}
	return pcm
}

// synthesizeTone renders a sine burst with a short attack/release ramp so cues
// start and end without clicks.
func synthesizeTone(spec toneSpec) []int16 {
	n := samplesForDuration(spec.duration)
	if n <= 0 || spec.frequencyHz <= 0 || spec.volume <= 0 {
		return nil
	}

	attackRelease := n / 10
	maxRamp := cueSampleRate / 200 // 5ms
	if attackRelease > maxRamp {
		attackRelease = maxRamp
	}
	if attackRelease < 1 {
		attackRelease = 1
	}

	pcm := make([]int16, n)
	for i := 0; i < n; i++ {
		envelope := 1.0
		if i < attackRelease {
			envelope = float64(i) / float64(attackRelease)
		}
		releaseIndex := n - i - 1
		if releaseIndex < attackRelease {
			release := float64(releaseIndex) / float64(attackRelease)
			if release < envelope {
				envelope = release
			}
		}
		t := float64(i) / cueSampleRate
		sample := math.Sin(2 * math.Pi * spec.frequencyHz * t)
		pcm[i] = int16(math.Round(sample * spec.volume * envelope * 32767))
	}

	return pcm
}

func samplesForDuration(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * cueSampleRate))
}
