// Package indicator handles visual state notifications and audio cue playback.
package indicator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tbromley/hush/internal/config"
	"github.com/tbromley/hush/internal/hypr"
)

// Controller is the session-facing indicator contract.
type Controller interface {
	ShowRecording(context.Context)
	ShowTranscribing(context.Context)
	ShowError(context.Context, string)
	ShowNotice(context.Context, string)
	CueStop(context.Context)
	CueComplete(context.Context)
	CueCancel(context.Context)
	Hide(context.Context)
}

// Notifier is the concrete indicator used by runtime sessions. It dispatches
// through Hyprland's notify surface when hyprctl is present and falls back to
// freedesktop DBus notifications otherwise.
type Notifier struct {
	cfg      config.IndicatorConfig
	logger   *slog.Logger
	messages messages
	useHypr  bool

	mu                    sync.Mutex
	desktopNotificationID uint32
	soundMu               sync.Mutex
}

// New creates an indicator controller from config.
func New(cfg config.IndicatorConfig, logger *slog.Logger) *Notifier {
	return &Notifier{
		cfg:      cfg,
		logger:   logger,
		messages: defaultMessages(),
		useHypr:  hypr.Available(),
	}
}

// ShowRecording signals recording start and emits the start cue.
func (n *Notifier) ShowRecording(ctx context.Context) {
	n.playCue(cueStart)
	if !n.cfg.Enable {
		return
	}
	n.run(ctx, func(ctx context.Context) error {
		return n.notify(ctx, 1, 300000, "rgb(89b4fa)", n.messages.recording)
	})
}

// ShowTranscribing signals the post-capture transcription state.
func (n *Notifier) ShowTranscribing(ctx context.Context) {
	if !n.cfg.Enable {
		return
	}
	n.run(ctx, func(ctx context.Context) error {
		return n.notify(ctx, 1, 300000, "rgb(cba6f7)", n.messages.processing)
	})
}

// ShowError displays an error-state indicator message.
func (n *Notifier) ShowError(ctx context.Context, text string) {
	if !n.cfg.Enable {
		return
	}
	if text == "" {
		text = n.messages.errorText
	}
	n.run(ctx, func(ctx context.Context) error {
		return n.notify(ctx, 3, n.errorTimeoutMS(), "rgb(f38ba8)", text)
	})
}

// ShowNotice displays a transient advisory message without changing session state.
// The detector uses it for ambient-noise and fault warnings.
func (n *Notifier) ShowNotice(ctx context.Context, text string) {
	if !n.cfg.Enable || strings.TrimSpace(text) == "" {
		return
	}
	n.run(ctx, func(ctx context.Context) error {
		return n.notify(ctx, 0, n.errorTimeoutMS(), "rgb(f9e2af)", text)
	})
}

// CueStop emits the stop cue.
func (n *Notifier) CueStop(context.Context) {
	n.playCue(cueStop)
}

// CueComplete emits the successful-commit cue.
func (n *Notifier) CueComplete(context.Context) {
	n.playCue(cueComplete)
}

// CueCancel emits the cancel cue.
func (n *Notifier) CueCancel(context.Context) {
	n.playCue(cueCancel)
}

// Hide dismisses the active indicator surface.
func (n *Notifier) Hide(ctx context.Context) {
	if !n.cfg.Enable {
		return
	}
	n.run(ctx, n.dismiss)
}

func (n *Notifier) errorTimeoutMS() int {
	if n.cfg.ErrorTimeoutMS > 0 {
		return n.cfg.ErrorTimeoutMS
	}
	return 1200
}

// notify dispatches indicator output through the detected backend.
func (n *Notifier) notify(ctx context.Context, icon int, timeoutMS int, color string, text string) error {
	if n.useHypr {
		return hypr.Notify(ctx, icon, timeoutMS, color, text)
	}
	return n.notifyDesktop(ctx, timeoutMS, text)
}

func (n *Notifier) dismiss(ctx context.Context) error {
	if n.useHypr {
		return hypr.DismissNotify(ctx)
	}
	return n.dismissDesktop(ctx)
}

// notifyDesktop sends a replaceable desktop notification and stores its ID so
// state changes update one bubble instead of stacking new ones.
func (n *Notifier) notifyDesktop(ctx context.Context, timeoutMS int, text string) error {
	n.mu.Lock()
	replaceID := n.desktopNotificationID
	n.mu.Unlock()

	appName := strings.TrimSpace(n.cfg.AppName)
	if appName == "" {
		appName = "hush-indicator"
	}

	id, err := desktopNotify(ctx, appName, replaceID, text, timeoutMS)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.desktopNotificationID = id
	n.mu.Unlock()
	return nil
}

func (n *Notifier) dismissDesktop(ctx context.Context) error {
	n.mu.Lock()
	id := n.desktopNotificationID
	n.desktopNotificationID = 0
	n.mu.Unlock()

	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}

// run executes an indicator operation with a bounded timeout.
func (n *Notifier) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, 400*time.Millisecond)
	defer cancel()
	if err := fn(runCtx); err != nil {
		n.log("indicator dispatch failed", err)
	}
}

// playCue serializes cue playback and emits audio asynchronously.
func (n *Notifier) playCue(kind cueKind) {
	if !n.cfg.SoundEnable {
		return
	}
	go func() {
		n.soundMu.Lock()
		defer n.soundMu.Unlock()
		if err := emitCue(kind); err != nil {
			n.log("indicator audio cue failed", err)
		}
	}()
}

// log emits debug-only indicator failures to the runtime logger.
func (n *Notifier) log(message string, err error) {
	if n.logger == nil || err == nil {
		return
	}
	n.logger.Debug(message, "error", err.Error())
}
