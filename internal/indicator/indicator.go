// Package indicator surfaces pipeline progress as desktop notifications.
package indicator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/voicenote/internal/config"
)

// Controller is the session-facing notification contract.
type Controller interface {
	ShowRecording(context.Context)
	ShowTranscribing(context.Context)
	ShowChoosing(context.Context)
	ShowGenerating(context.Context, string)
	ShowSaved(context.Context, string)
	ShowError(context.Context, string)
	Hide(context.Context)
}

// DesktopNotify routes progress messages through freedesktop notifications,
// replacing the previous notification so only one is visible at a time.
type DesktopNotify struct {
	cfg      config.NotifyConfig
	logger   *slog.Logger
	messages messages

	mu             sync.Mutex
	notificationID uint32
}

// NewDesktopNotify creates a notification controller from config.
func NewDesktopNotify(cfg config.NotifyConfig, logger *slog.Logger) *DesktopNotify {
	return &DesktopNotify{
		cfg:      cfg,
		logger:   logger,
		messages: defaultMessages(),
	}
}

// ShowRecording signals that capture has started.
func (d *DesktopNotify) ShowRecording(ctx context.Context) {
	d.show(ctx, 300000, d.messages.recording)
}

// ShowTranscribing signals the post-capture transcription phase.
func (d *DesktopNotify) ShowTranscribing(ctx context.Context) {
	d.show(ctx, 300000, d.messages.transcribing)
}

// ShowChoosing signals that a transcript is waiting on a category choice.
func (d *DesktopNotify) ShowChoosing(ctx context.Context) {
	d.show(ctx, 300000, d.messages.choosing)
}

// ShowGenerating signals the rewrite phase for the chosen category.
func (d *DesktopNotify) ShowGenerating(ctx context.Context, categoryName string) {
	text := d.messages.generating
	if categoryName != "" {
		text = text + " (" + categoryName + ")"
	}
	d.show(ctx, 300000, text)
}

// ShowSaved confirms that the note was persisted.
func (d *DesktopNotify) ShowSaved(ctx context.Context, categoryName string) {
	text := d.messages.saved
	if categoryName != "" {
		text = text + " (" + categoryName + ")"
	}
	d.show(ctx, 3000, text)
}

// ShowError displays a failure message.
func (d *DesktopNotify) ShowError(ctx context.Context, text string) {
	if text == "" {
		text = d.messages.errorText
	}
	d.show(ctx, 5000, text)
}

// Hide dismisses the active notification.
func (d *DesktopNotify) Hide(ctx context.Context) {
	if !d.cfg.Enable {
		return
	}
	d.run(ctx, d.dismiss)
}

func (d *DesktopNotify) show(ctx context.Context, timeoutMS int, text string) {
	if !d.cfg.Enable {
		return
	}
	d.run(ctx, func(ctx context.Context) error {
		return d.notify(ctx, timeoutMS, text)
	})
}

// notify sends a replaceable desktop notification and stores its ID.
func (d *DesktopNotify) notify(ctx context.Context, timeoutMS int, text string) error {
	d.mu.Lock()
	replaceID := d.notificationID
	d.mu.Unlock()

	appName := strings.TrimSpace(d.cfg.AppName)
	if appName == "" {
		appName = "voicenote"
	}

	id, err := desktopNotify(ctx, appName, replaceID, text, timeoutMS)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.notificationID = id
	d.mu.Unlock()
	return nil
}

// dismiss closes the current notification ID when present.
func (d *DesktopNotify) dismiss(ctx context.Context) error {
	d.mu.Lock()
	id := d.notificationID
	d.notificationID = 0
	d.mu.Unlock()

	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}

// run executes a notification operation with a bounded timeout.
func (d *DesktopNotify) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, 400*time.Millisecond)
	defer cancel()
	if err := fn(runCtx); err != nil {
		d.log("notification dispatch failed", err)
	}
}

// log emits debug-only notification failures to the runtime logger.
func (d *DesktopNotify) log(message string, err error) {
	if d.logger == nil || err == nil {
		return
	}
	d.logger.Debug(message, "error", err.Error())
}
