// Package pipeline owns one end-to-end capture -> silence detection ->
// whisper -> transcript instance per recording session.
package pipeline

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tbromley/hush/internal/audio"
	"github.com/tbromley/hush/internal/config"
	"github.com/tbromley/hush/internal/detect"
	"github.com/tbromley/hush/internal/session"
	"github.com/tbromley/hush/internal/transcript"
	"github.com/tbromley/hush/internal/whisper"
)

// Transcriber records from the selected Pulse source, watches the stream for
// end-of-speech, and turns the captured audio into a transcript on stop.
type Transcriber struct {
	cfg    config.Config
	logger *slog.Logger

	mu      sync.Mutex
	started bool

	selection audio.Selection
	capture   *audio.Capture
	tap       *audio.FrameTap
	loop      *detect.Loop
	bridge    *whisper.Bridge
	events    detect.Events

	drainDone chan struct{}
}

// NewTranscriber constructs a pipeline transcriber from runtime config.
func NewTranscriber(cfg config.Config, logger *slog.Logger) *Transcriber {
	return &Transcriber{cfg: cfg, logger: logger}
}

// SetDetectorEvents wires the consumer that receives detection callbacks.
// Must be called before Start.
func (t *Transcriber) SetDetectorEvents(events detect.Events) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = events
}

// Start resolves device selection, starts audio capture, and launches the
// silence detector. In server mode the whisper bridge starts now so the model
// loads while the user is still talking.
func (t *Transcriber) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return fmt.Errorf("transcriber already started")
	}

	selection, err := audio.SelectDevice(ctx, t.cfg.Audio.Input, t.cfg.Audio.Fallback)
	if err != nil {
		return err
	}
	t.selection = selection
	if selection.Warning != "" {
		t.logWarn(selection.Warning)
	}

	capture, err := audio.StartCapture(ctx, selection.Device)
	if err != nil {
		return err
	}
	t.capture = capture

	detectCfg := detectorConfig(t.cfg.Detect)
	t.tap = audio.NewFrameTap(detectCfg.FrameSamples)

	if t.cfg.Detect.Enable {
		loop, err := detect.NewLoop(detectCfg, t.logger, t.tap, t.events, t.tickObserver())
		if err != nil {
			_ = capture.Stop()
			t.capture = nil
			return fmt.Errorf("start silence detector: %w", err)
		}
		t.loop = loop
		loop.Start()
	}

	if t.cfg.Whisper.ServerMode {
		bridge, err := t.startBridge(ctx)
		if err != nil {
			t.teardownLocked()
			return err
		}
		t.bridge = bridge
	}

	t.drainDone = make(chan struct{})
	go t.drainChunks(capture, t.tap)

	t.started = true
	return nil
}

// StopAndTranscribe stops capture, writes the take to a WAV file, and runs it
// through whisper.
func (t *Transcriber) StopAndTranscribe(ctx context.Context) (session.StopResult, error) {
	t.mu.Lock()
	started := t.started
	capture := t.capture
	loop := t.loop
	bridge := t.bridge
	drainDone := t.drainDone
	selection := t.selection
	t.mu.Unlock()

	if !started || capture == nil {
		return session.StopResult{}, session.ErrPipelineUnavailable
	}

	stoppedAt := time.Now()
	_ = capture.Stop()
	if drainDone != nil {
		<-drainDone
	}
	if loop != nil {
		_ = loop.Close()
	}

	rawPCM := capture.RawPCM()
	t.writeDebugAudio(rawPCM)

	result := session.StopResult{
		AudioDevice:   describeDevice(selection.Device),
		BytesCaptured: capture.BytesCaptured(),
	}

	if len(rawPCM) == 0 {
		t.closeBridge(bridge)
		return result, fmt.Errorf("no audio captured")
	}

	wavPath, err := writeTakeWAV(rawPCM)
	if err != nil {
		t.closeBridge(bridge)
		return result, err
	}
	defer func() { _ = os.Remove(wavPath) }()

	text, err := t.transcribe(ctx, bridge, wavPath)
	t.closeBridge(bridge)
	result.Latency = time.Since(stoppedAt)
	if err != nil {
		return result, fmt.Errorf("transcribe take: %w", err)
	}

	result.Transcript = transcript.Clean(text, transcript.Options{
		TrailingSpace:       t.cfg.Transcript.TrailingSpace,
		CapitalizeSentences: t.cfg.Transcript.CapitalizeSentences,
	})
	return result, nil
}

// Cancel stops capture and the detector immediately without transcription.
func (t *Transcriber) Cancel(_ context.Context) error {
	t.mu.Lock()
	capture := t.capture
	loop := t.loop
	bridge := t.bridge
	drainDone := t.drainDone
	t.mu.Unlock()

	if capture != nil {
		_ = capture.Stop()
		if drainDone != nil {
			<-drainDone
		}
		t.writeDebugAudio(capture.RawPCM())
	}
	if loop != nil {
		_ = loop.Close()
	}
	t.closeBridge(bridge)
	return nil
}

// DetectionPhase reports the detector phase for status queries. Empty when
// silence detection is disabled or the pipeline has not started.
func (t *Transcriber) DetectionPhase() string {
	t.mu.Lock()
	loop := t.loop
	t.mu.Unlock()
	if loop == nil {
		return ""
	}
	return string(loop.Phase())
}

// drainChunks feeds capture chunks into the detector tap. It must keep
// consuming even when detection is disabled so capture never stalls.
func (t *Transcriber) drainChunks(capture *audio.Capture, tap *audio.FrameTap) {
	defer close(t.drainDone)
	for chunk := range capture.Chunks() {
		tap.Push(chunk)
	}
}

// tickObserver logs per-tick detector snapshots when debug tick dump is on.
func (t *Transcriber) tickObserver() detect.Observer {
	if !t.cfg.Debug.EnableTickDump || t.logger == nil {
		return nil
	}
	logger := t.logger
	return detect.ObserverFunc(func(s detect.Snapshot) {
		logger.Debug("detector tick",
			"seq", s.Seq,
			"phase", string(s.Phase),
			"rms", s.RMS,
			"noise_floor", s.NoiseFloor,
			"speech_threshold", s.SpeechThreshold,
			"silence_threshold", s.SilenceThreshold,
			"speech_ticks", s.SpeechTicks,
			"silence_ticks", s.SilenceTicks,
			"peak_rms", s.PeakRMS,
			"recent_rms", s.RecentRMS,
		)
	})
}

func (t *Transcriber) startBridge(ctx context.Context) (*whisper.Bridge, error) {
	opts, err := t.bridgeOptions()
	if err != nil {
		return nil, err
	}
	bridge, err := whisper.StartBridge(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("start whisper bridge: %w", err)
	}
	return bridge, nil
}

// transcribe routes through the live bridge when present and falls back to a
// one-shot subprocess otherwise.
func (t *Transcriber) transcribe(ctx context.Context, bridge *whisper.Bridge, wavPath string) (string, error) {
	if bridge != nil {
		result, err := bridge.Transcribe(ctx, wavPath)
		if err != nil {
			return "", err
		}
		return result.Text, nil
	}

	opts, err := t.bridgeOptions()
	if err != nil {
		return "", err
	}
	result, err := whisper.TranscribeFile(ctx, opts, wavPath)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

func (t *Transcriber) bridgeOptions() (whisper.Options, error) {
	scriptPath, err := whisper.ResolveScript(t.cfg.Whisper.BridgePath)
	if err != nil {
		return whisper.Options{}, err
	}

	timeout := time.Duration(t.cfg.Whisper.TimeoutMS) * time.Millisecond
	return whisper.Options{
		PythonBin:  t.cfg.Whisper.PythonBin,
		ScriptPath: scriptPath,
		Model:      t.cfg.Whisper.Model,
		Language:   t.cfg.Whisper.Language,
		Task:       t.cfg.Whisper.Task,
		Timeout:    timeout,
		Logger:     t.logger,
	}, nil
}

func (t *Transcriber) closeBridge(bridge *whisper.Bridge) {
	if bridge == nil {
		return
	}
	if err := bridge.Close(); err != nil {
		t.logWarn(fmt.Sprintf("close whisper bridge: %v", err))
	}
	t.mu.Lock()
	if t.bridge == bridge {
		t.bridge = nil
	}
	t.mu.Unlock()
}

// teardownLocked unwinds a partially constructed pipeline. Caller holds t.mu.
func (t *Transcriber) teardownLocked() {
	if t.loop != nil {
		_ = t.loop.Close()
		t.loop = nil
	}
	if t.capture != nil {
		_ = t.capture.Stop()
		t.capture = nil
	}
}

// detectorConfig maps user settings onto the detector tuning, holding the
// calibrated internals at their defaults.
func detectorConfig(cfg config.DetectConfig) detect.Config {
	out := detect.DefaultConfig()
	if cfg.TickMS > 0 {
		out.TickInterval = time.Duration(cfg.TickMS) * time.Millisecond
		out.FrameSamples = audio.SampleRate * cfg.TickMS / 1000
	}
	if cfg.SilenceMS > 0 {
		out.SilenceHold = time.Duration(cfg.SilenceMS) * time.Millisecond
	}
	out.Adaptive = cfg.Adaptive
	if cfg.SpeechRatio > 0 {
		out.SpeechRatio = cfg.SpeechRatio
	}
	if cfg.SilenceRatio > 0 {
		out.SilenceRatio = cfg.SilenceRatio
	}
	if cfg.DipRatio > 0 {
		out.DipRatio = cfg.DipRatio
	}
	if cfg.ConfirmTicks > 0 {
		out.SpeechConfirmTicks = cfg.ConfirmTicks
	}
	return out
}

// describeDevice formats device metadata for logs/session results.
func describeDevice(device audio.Device) string {
	description := strings.TrimSpace(device.Description)
	id := strings.TrimSpace(device.ID)
	if description == "" {
		return id
	}
	if id == "" {
		return description
	}
	return fmt.Sprintf("%s (%s)", description, id)
}

// logWarn emits warning-level logs when logger is configured.
func (t *Transcriber) logWarn(message string) {
	if t.logger == nil {
		return
	}
	t.logger.Warn(message)
}

// writeTakeWAV writes the captured PCM to a private temp file for whisper.
func writeTakeWAV(pcm []byte) (string, error) {
	file, err := os.CreateTemp("", "hush-take-*.wav")
	if err != nil {
		return "", fmt.Errorf("create take file: %w", err)
	}
	if err := os.Chmod(file.Name(), 0o600); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("restrict take file: %w", err)
	}
	if err := writePCM16WAV(file, pcm, audio.SampleRate, 1); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("write take file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("close take file: %w", err)
	}
	return file.Name(), nil
}

// createDebugFile creates timestamped debug artifacts under state/hush/debug.
func createDebugFile(prefix string, extension string) (*os.File, error) {
	stateDir, err := resolveStateDir()
	if err != nil {
		return nil, err
	}
	debugDir := filepath.Join(stateDir, "hush", "debug")
	if err := os.MkdirAll(debugDir, 0o700); err != nil {
		return nil, fmt.Errorf("create debug dir: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405.000")
	path := filepath.Join(debugDir, fmt.Sprintf("%s-%s.%s", prefix, timestamp, extension))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open debug file %q: %w", path, err)
	}
	return file, nil
}

// resolveStateDir returns XDG_STATE_HOME fallback path for debug artifacts.
func resolveStateDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return xdg, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for state: %w", err)
	}
	return filepath.Join(home, ".local", "state"), nil
}

// writeDebugAudio writes raw PCM to WAV when debug.audio_dump is enabled.
func (t *Transcriber) writeDebugAudio(rawPCM []byte) {
	if !t.cfg.Debug.EnableAudioDump || len(rawPCM) == 0 {
		return
	}

	file, err := createDebugFile("audio", "wav")
	if err != nil {
		t.logWarn(fmt.Sprintf("unable to create debug audio dump: %v", err))
		return
	}
	defer file.Close()

	if err := writePCM16WAV(file, rawPCM, audio.SampleRate, 1); err != nil {
		t.logWarn(fmt.Sprintf("unable to write debug audio dump: %v", err))
	}
}

// writePCM16WAV writes raw little-endian PCM bytes with a minimal WAV header.
func writePCM16WAV(file *os.File, pcm []byte, sampleRate int, channels int) error {
	if channels <= 0 {
		channels = 1
	}
	const bitsPerSample = 16
	byteRate := sampleRate * channels * (bitsPerSample / 8)
	blockAlign := channels * (bitsPerSample / 8)

	chunkSize := uint32(36 + len(pcm))
	subChunk2Size := uint32(len(pcm))

	header := make([]byte, 44)
	copy(header[0:4], []byte("RIFF"))
	binary.LittleEndian.PutUint32(header[4:8], chunkSize)
	copy(header[8:12], []byte("WAVE"))
	copy(header[12:16], []byte("fmt "))
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], []byte("data"))
	binary.LittleEndian.PutUint32(header[40:44], subChunk2Size)

	if _, err := file.Write(header); err != nil {
		return err
	}
	_, err := file.Write(pcm)
	return err
}
