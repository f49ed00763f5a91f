// Package pipeline owns the capture -> transcription -> generation flow
// backing one recording session.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rbright/voicenote/internal/audio"
	"github.com/rbright/voicenote/internal/category"
	"github.com/rbright/voicenote/internal/config"
	"github.com/rbright/voicenote/internal/session"
)

// APIClient is the SiliconFlow surface the pipeline depends on.
type APIClient interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
	Generate(ctx context.Context, categoryID, instruction, transcript string) (string, error)
}

// SettingsSource returns the current user settings snapshot. Category
// validation and prompt resolution read through it so edits made while a
// session is open are honored.
type SettingsSource func() category.Settings

// captureStream is the slice of audio.Capture behavior the pipeline needs,
// kept as an interface so tests can substitute a canned recording.
type captureStream interface {
	Stop() error
	RawPCM() []byte
	BytesCaptured() int64
}

// Processor implements the session Transcriber and Generator contracts on
// top of Pulse capture and the SiliconFlow API.
type Processor struct {
	cfg      config.Config
	api      APIClient
	settings SettingsSource
	logger   *slog.Logger

	// startCapture is swapped in tests to avoid a live Pulse server.
	startCapture func(context.Context, audio.Device) (captureStream, error)
	// selectDevice is swapped in tests alongside startCapture.
	selectDevice func(context.Context, string, string) (audio.Selection, error)

	mu        sync.Mutex
	started   bool
	selection audio.Selection
	capture   captureStream
}

// NewProcessor constructs a pipeline processor from runtime config.
func NewProcessor(cfg config.Config, api APIClient, settings SettingsSource, logger *slog.Logger) *Processor {
	if settings == nil {
		settings = func() category.Settings { return category.Settings{} }
	}
	return &Processor{
		cfg:      cfg,
		api:      api,
		settings: settings,
		logger:   logger,
		startCapture: func(ctx context.Context, device audio.Device) (captureStream, error) {
			return audio.StartCapture(ctx, device)
		},
		selectDevice: audio.SelectDevice,
	}
}

// Start resolves device selection and begins audio capture.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("capture already started")
	}

	selection, err := p.selectDevice(ctx, p.cfg.Audio.Input, p.cfg.Audio.Fallback)
	if err != nil {
		return err
	}
	p.selection = selection
	if selection.Warning != "" {
		p.logWarn(selection.Warning)
	}

	capture, err := p.startCapture(ctx, selection.Device)
	if err != nil {
		return err
	}
	p.capture = capture
	p.started = true
	return nil
}

// StopAndTranscribe stops capture, encodes the recording as WAV, and sends
// it to the transcription endpoint.
func (p *Processor) StopAndTranscribe(ctx context.Context) (session.StopResult, error) {
	p.mu.Lock()
	started := p.started
	capture := p.capture
	selection := p.selection
	p.started = false
	p.mu.Unlock()

	if !started || capture == nil {
		return session.StopResult{}, session.ErrPipelineUnavailable
	}

	_ = capture.Stop()
	rawPCM := capture.RawPCM()
	p.writeDebugAudio(rawPCM)

	result := session.StopResult{
		AudioDevice:   describeDevice(selection.Device),
		BytesCaptured: capture.BytesCaptured(),
	}

	if len(rawPCM) == 0 {
		return result, nil
	}

	apiCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	startedAt := time.Now()
	text, err := p.api.Transcribe(apiCtx, audio.EncodeWAV(rawPCM))
	result.APILatency = time.Since(startedAt)
	if err != nil {
		return result, fmt.Errorf("transcribe recording: %w", err)
	}

	result.Transcript = text
	return result, nil
}

// Cancel stops capture immediately and discards the recording.
func (p *Processor) Cancel(_ context.Context) error {
	p.mu.Lock()
	capture := p.capture
	p.started = false
	p.mu.Unlock()

	if capture != nil {
		_ = capture.Stop()
		p.writeDebugAudio(capture.RawPCM())
	}
	return nil
}

// ValidateCategory resolves an id against the effective category set.
func (p *Processor) ValidateCategory(id string) (string, error) {
	settings := p.settings()
	c, ok := category.Find(id, settings)
	if !ok {
		return "", fmt.Errorf("unknown category %q", id)
	}
	return c.Name, nil
}

// Generate rewrites the transcript using the category's effective prompt.
func (p *Processor) Generate(ctx context.Context, categoryID, transcript string) (string, error) {
	settings := p.settings()
	if _, ok := category.Find(categoryID, settings); !ok {
		return "", fmt.Errorf("unknown category %q", categoryID)
	}
	instruction := category.ResolvePrompt(categoryID, settings)

	apiCtx, cancel := context.WithTimeout(ctx, 90*time.Second)
	defer cancel()

	content, err := p.api.Generate(apiCtx, categoryID, instruction, transcript)
	if err != nil {
		return "", fmt.Errorf("generate note content: %w", err)
	}
	return content, nil
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
func (p *Processor) logWarn(message string) {
	if p.logger == nil {
		return
	}
	p.logger.Warn(message)
}

// writeDebugAudio dumps the recording as WAV when debug.audio_dump is enabled.
func (p *Processor) writeDebugAudio(rawPCM []byte) {
	if !p.cfg.Debug.EnableAudioDump || len(rawPCM) == 0 {
		return
	}

	path, err := debugFilePath("audio", "wav")
	if err != nil {
		p.logWarn(fmt.Sprintf("unable to create debug audio dump: %v", err))
		return
	}
	if err := os.WriteFile(path, audio.EncodeWAV(rawPCM), 0o600); err != nil {
		p.logWarn(fmt.Sprintf("unable to write debug audio dump: %v", err))
	}
}

// debugFilePath builds a timestamped artifact path under state/voicenote/debug.
func debugFilePath(prefix string, extension string) (string, error) {
	stateDir, err := resolveStateDir()
	if err != nil {
		return "", err
	}
	debugDir := filepath.Join(stateDir, "voicenote", "debug")
	if err := os.MkdirAll(debugDir, 0o700); err != nil {
		return "", fmt.Errorf("create debug dir: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405.000")
	return filepath.Join(debugDir, fmt.Sprintf("%s-%s.%s", prefix, timestamp, extension)), nil
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
