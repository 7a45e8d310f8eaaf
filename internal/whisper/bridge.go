package whisper

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Result is one completed transcription.
type Result struct {
	Text     string
	Language string
}

// Options configures the bridge subprocess.
type Options struct {
	PythonBin  string
	ScriptPath string
	Model      string
	Language   string
	Task       string

	// Timeout bounds one transcription request.
	Timeout time.Duration
	// StartTimeout bounds model load at startup; defaults to 120s because a
	// first run may download weights.
	StartTimeout time.Duration

	Logger *slog.Logger
}

// Bridge is a persistent transcription subprocess speaking JSON over stdio.
// The model stays loaded across recordings. Requests are serialized; the
// protocol has no correlation ids.
type Bridge struct {
	opts Options

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	replies chan bridgeReply
	waitErr chan error

	mu     sync.Mutex
	model  string
	closed bool
}

type bridgeRequest struct {
	Command   string `json:"command"`
	AudioPath string `json:"audio_path,omitempty"`
	Language  string `json:"language,omitempty"`
	Task      string `json:"task,omitempty"`
	Model     string `json:"model,omitempty"`
}

type bridgeReply struct {
	Type     string `json:"type,omitempty"`
	Text     string `json:"text,omitempty"`
	Language string `json:"language,omitempty"`
	Model    string `json:"model,omitempty"`
	Error    string `json:"error,omitempty"`
	Success  bool   `json:"success"`
}

// StartBridge launches the bridge in server mode and waits for the model to
// load.
func StartBridge(ctx context.Context, opts Options) (*Bridge, error) {
	if strings.TrimSpace(opts.PythonBin) == "" {
		return nil, errors.New("whisper python binary is empty")
	}
	if strings.TrimSpace(opts.ScriptPath) == "" {
		return nil, errors.New("whisper bridge script path is empty")
	}
	if strings.TrimSpace(opts.Model) == "" {
		opts.Model = "base"
	}
	if strings.TrimSpace(opts.Task) == "" {
		opts.Task = "transcribe"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = 120 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cmd := exec.Command(opts.PythonBin, opts.ScriptPath, "--mode", "server", "--model", opts.Model)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open bridge stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open bridge stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("open bridge stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start whisper bridge %q: %w", opts.ScriptPath, err)
	}

	bridge := &Bridge{
		opts:    opts,
		cmd:     cmd,
		stdin:   stdin,
		replies: make(chan bridgeReply, 8),
		waitErr: make(chan error, 1),
		model:   opts.Model,
	}

	// Wait closes the pipes, so it must not run until both readers hit EOF
	// or the bridge's final reply line can be lost mid-read.
	var readers sync.WaitGroup
	readers.Add(2)
	go func() {
		defer readers.Done()
		bridge.drainStderr(stderr)
	}()
	go func() {
		defer readers.Done()
		bridge.readReplies(stdout)
	}()
	go func() {
		readers.Wait()
		bridge.waitErr <- cmd.Wait()
	}()

	readyCtx, cancel := context.WithTimeout(ctx, opts.StartTimeout)
	defer cancel()

	ready, err := bridge.awaitReply(readyCtx)
	if err != nil {
		_ = bridge.Close()
		return nil, fmt.Errorf("wait for bridge ready: %w", err)
	}
	if !ready.Success || ready.Type != "ready" {
		_ = bridge.Close()
		return nil, fmt.Errorf("bridge failed to load model %q: %s", opts.Model, ready.Error)
	}

	opts.Logger.Info("whisper bridge ready", "model", ready.Model)
	return bridge, nil
}

// Model returns the currently loaded model name.
func (b *Bridge) Model() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.model
}

// Transcribe submits one WAV file and returns the recognized text.
func (b *Bridge) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()

	reply, err := b.request(ctx, bridgeRequest{
		Command:   "transcribe",
		AudioPath: audioPath,
		Language:  b.opts.Language,
		Task:      b.opts.Task,
	})
	if err != nil {
		return Result{}, err
	}
	if !reply.Success {
		return Result{}, fmt.Errorf("bridge transcription failed: %s", reply.Error)
	}
	return Result{Text: reply.Text, Language: reply.Language}, nil
}

// Ping verifies the bridge process is responsive.
func (b *Bridge) Ping(ctx context.Context) error {
	reply, err := b.request(ctx, bridgeRequest{Command: "ping"})
	if err != nil {
		return err
	}
	if !reply.Success || reply.Type != "pong" {
		return fmt.Errorf("unexpected ping reply: %s", reply.Error)
	}
	return nil
}

// Reload swaps the loaded model without restarting the process.
func (b *Bridge) Reload(ctx context.Context, model string) error {
	reply, err := b.request(ctx, bridgeRequest{Command: "reload", Model: model})
	if err != nil {
		return err
	}
	if !reply.Success || reply.Type != "reloaded" {
		return fmt.Errorf("bridge reload to %q failed: %s", model, reply.Error)
	}

	b.mu.Lock()
	b.model = reply.Model
	b.mu.Unlock()
	return nil
}

// Close asks the bridge to shut down, then reaps or kills the process.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true

	// Best-effort shutdown command; EOF on stdin also stops the server loop.
	payload, _ := json.Marshal(bridgeRequest{Command: "shutdown"})
	_, _ = b.stdin.Write(append(payload, '\n'))
	_ = b.stdin.Close()
	b.mu.Unlock()

	select {
	case err := <-b.waitErr:
		return err
	case <-time.After(3 * time.Second):
		_ = b.cmd.Process.Kill()
		return <-b.waitErr
	}
}

// request serializes one command/reply round trip.
func (b *Bridge) request(ctx context.Context, req bridgeRequest) (bridgeReply, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return bridgeReply{}, errors.New("whisper bridge is closed")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		b.mu.Unlock()
		return bridgeReply{}, fmt.Errorf("encode bridge request: %w", err)
	}
	if _, err := b.stdin.Write(append(payload, '\n')); err != nil {
		b.mu.Unlock()
		return bridgeReply{}, fmt.Errorf("write bridge request: %w", err)
	}

	reply, err := b.awaitReply(ctx)
	b.mu.Unlock()
	if err != nil {
		return bridgeReply{}, fmt.Errorf("%s command: %w", req.Command, err)
	}
	return reply, nil
}

func (b *Bridge) awaitReply(ctx context.Context) (bridgeReply, error) {
	select {
	case reply, ok := <-b.replies:
		if !ok {
			return bridgeReply{}, errors.New("bridge process exited")
		}
		return reply, nil
	case <-ctx.Done():
		return bridgeReply{}, ctx.Err()
	}
}

// readReplies decodes stdout lines into replies until the process exits.
func (b *Bridge) readReplies(stdout io.Reader) {
	defer close(b.replies)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var reply bridgeReply
		if err := json.Unmarshal([]byte(line), &reply); err != nil {
			b.opts.Logger.Warn("discarding malformed bridge output", "line", line, "error", err)
			continue
		}
		b.replies <- reply
	}
}

// drainStderr forwards bridge diagnostics to the log at debug level.
func (b *Bridge) drainStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		b.opts.Logger.Debug("whisper bridge", "stderr", scanner.Text())
	}
}
