package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// TranscribeFile runs the bridge once in transcribe mode, loading the model
// for a single request. Used when whisper.server_mode is off.
func TranscribeFile(ctx context.Context, opts Options, audioPath string) (Result, error) {
	if strings.TrimSpace(opts.PythonBin) == "" {
		return Result{}, fmt.Errorf("whisper python binary is empty")
	}
	if strings.TrimSpace(opts.ScriptPath) == "" {
		return Result{}, fmt.Errorf("whisper bridge script path is empty")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	args := []string{
		opts.ScriptPath,
		"--mode", "transcribe",
		"--model", opts.Model,
		"--output-format", "json",
	}
	if task := strings.TrimSpace(opts.Task); task != "" {
		args = append(args, "--task", task)
	}
	if lang := strings.TrimSpace(opts.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	args = append(args, audioPath)

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, opts.PythonBin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	// The bridge prints its JSON result on the last stdout line even when it
	// exits nonzero, so decode before deciding on runErr.
	var reply bridgeReply
	decodeErr := json.Unmarshal(lastLine(stdout.Bytes()), &reply)

	switch {
	case decodeErr == nil && reply.Success:
		return Result{Text: reply.Text, Language: reply.Language}, nil
	case decodeErr == nil && reply.Error != "":
		return Result{}, fmt.Errorf("bridge transcription failed: %s", reply.Error)
	case runErr != nil:
		return Result{}, fmt.Errorf("run whisper bridge: %w (stderr: %s)", runErr, strings.TrimSpace(stderr.String()))
	default:
		return Result{}, fmt.Errorf("unreadable bridge output: %q", strings.TrimSpace(stdout.String()))
	}
}

// lastLine returns the final non-empty line of output.
func lastLine(output []byte) []byte {
	lines := bytes.Split(bytes.TrimSpace(output), []byte("\n"))
	if len(lines) == 0 {
		return nil
	}
	return bytes.TrimSpace(lines[len(lines)-1])
}
