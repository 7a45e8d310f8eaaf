// Package output delivers committed transcripts to the desktop (clipboard and paste).
package output

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/tbromley/hush/internal/config"
)

const (
	clipboardTimeout    = 2 * time.Second
	pasteCommandTimeout = 2 * time.Second
	defaultPasteTimeout = 1200 * time.Millisecond
)

// Committer copies transcript text to the clipboard and optionally pastes it
// into the focused window. Paste failures never fail the commit: the clipboard
// already holds the text, so the user can paste by hand.
type Committer struct {
	config config.Config
	logger *slog.Logger
}

// NewCommitter builds a committer from runtime config.
func NewCommitter(cfg config.Config, logger *slog.Logger) *Committer {
	return &Committer{config: cfg, logger: logger}
}

// Commit writes transcript text to the clipboard and dispatches paste when enabled.
func (c *Committer) Commit(ctx context.Context, transcript string) error {
	if transcript == "" {
		return nil
	}

	if err := c.writeClipboard(ctx, transcript); err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}

	if c.config.Paste.Enable {
		c.dispatchPaste(ctx)
	}
	return nil
}

func (c *Committer) writeClipboard(ctx context.Context, transcript string) error {
	ctx, cancel := context.WithTimeout(ctx, clipboardTimeout)
	defer cancel()
	return runCommandWithInput(ctx, c.config.Clipboard.Argv, transcript)
}

// dispatchPaste prefers the user-supplied paste_cmd and falls back to a
// compositor shortcut aimed at the active window.
func (c *Committer) dispatchPaste(ctx context.Context) {
	if argv := c.config.PasteCmd.Argv; len(argv) > 0 {
		pasteCtx, cancel := context.WithTimeout(ctx, pasteCommandTimeout)
		defer cancel()
		if err := runCommandWithInput(pasteCtx, argv, ""); err != nil {
			c.logPasteFailure(err)
		}
		return
	}

	pasteCtx, cancel := context.WithTimeout(ctx, defaultPasteTimeout)
	defer cancel()
	if err := defaultPaste(pasteCtx, c.config.Paste.Shortcut); err != nil {
		c.logPasteFailure(err)
	}
}

// runCommandWithInput executes argv, feeding input to stdin when non-empty.
// Stderr is captured so command failures surface their diagnostic text.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("run %s: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	return nil
}

func (c *Committer) logPasteFailure(err error) {
	if c.logger == nil || err == nil {
		return
	}
	c.logger.Error("paste dispatch failed; clipboard remains set", "error", err.Error())
}
