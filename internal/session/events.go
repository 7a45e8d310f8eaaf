package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/tbromley/hush/internal/detect"
)

// DetectorEvents returns the silence-detector callback sink for this
// controller. Auto-stop feeds the same action queue as IPC stop commands, so
// whichever arrives first wins.
func (c *Controller) DetectorEvents() detect.Events {
	return detectorEvents{controller: c, logger: c.logger}
}

type detectorEvents struct {
	controller *Controller
	logger     *slog.Logger
}

func (e detectorEvents) OnSpeechDetected() {
	if e.logger != nil {
		e.logger.Debug("speech confirmed; silence countdown armed")
	}
}

func (e detectorEvents) OnAutoStop() {
	e.controller.requestAutoStop()
}

func (e detectorEvents) OnEnvironmentTooLoud(reason string) {
	if e.logger != nil {
		e.logger.Warn("silence auto-stop disabled for this session", "reason", reason)
	}
	e.notify("Environment too loud for silence auto-stop; stop manually")
}

func (e detectorEvents) OnDetectionUnavailable(reason string) {
	if e.logger != nil {
		e.logger.Warn("silence detection unavailable", "reason", reason)
	}
	e.notify("Silence auto-stop unavailable; stop manually")
}

// notify surfaces a non-fatal detector notice while recording continues.
func (e detectorEvents) notify(message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
	defer cancel()
	e.controller.indicator.ShowNotice(ctx, message)
}
