// Package app wires parsed commands to storage, the session owner loop, and
// IPC forwarding.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/rbright/voicenote/internal/audio"
	"github.com/rbright/voicenote/internal/category"
	"github.com/rbright/voicenote/internal/cli"
	"github.com/rbright/voicenote/internal/config"
	"github.com/rbright/voicenote/internal/doctor"
	"github.com/rbright/voicenote/internal/indicator"
	"github.com/rbright/voicenote/internal/ipc"
	"github.com/rbright/voicenote/internal/logging"
	"github.com/rbright/voicenote/internal/notes"
	"github.com/rbright/voicenote/internal/output"
	"github.com/rbright/voicenote/internal/pipeline"
	"github.com/rbright/voicenote/internal/session"
	"github.com/rbright/voicenote/internal/siliconflow"
	"github.com/rbright/voicenote/internal/storage"
	"github.com/rbright/voicenote/internal/version"
)

const binaryName = "voicenote"

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	store, err := storage.Open(logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("open storage failed", "error", err.Error())
		return 1
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"data", store.Dir,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandRecord:
		return r.commandRecord(ctx, cfgLoaded.Config, store, logger)
	case cli.CommandStop:
		return r.forwardOrFail(ctx, ipc.Request{Command: "stop"})
	case cli.CommandCancel:
		return r.forwardOrFail(ctx, ipc.Request{Command: "cancel"})
	case cli.CommandChoose:
		return r.forwardOrFail(ctx, ipc.Request{Command: "choose", Category: parsed.CategoryID})
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandNotes:
		return r.commandNotes(ctx, parsed, cfgLoaded.Config, store, logger)
	case cli.CommandCategories:
		return r.commandCategories(store, logger)
	case cli.CommandCategory:
		return r.commandCategory(parsed, store, logger)
	case cli.CommandPrompt:
		return r.commandPrompt(parsed, store, logger)
	case cli.CommandToken:
		return r.commandToken(parsed, store)
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandDoctor:
		settings, _ := loadSettings(store, logger)
		report := doctor.Run(cfgLoaded, settings, store.Dir)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// loadSettings reads the settings slot and upgrades legacy category
// references in place, writing the migrated form back immediately.
func loadSettings(store *storage.Store, logger *slog.Logger) (category.Settings, bool) {
	settings, ok := store.LoadSettings()
	migrated, changed := category.MigrateSettings(settings)
	if changed {
		if err := store.SaveSettings(migrated); err != nil && logger != nil {
			logger.Warn("persist migrated settings failed", "error", err.Error())
		}
	}
	return migrated, ok
}

// loadNotes reads the notes slot with the same one-time migration treatment.
func loadNotes(store *storage.Store, logger *slog.Logger) []notes.Note {
	collection, _ := store.LoadNotes()
	migrated, changed := notes.Migrate(collection)
	if changed {
		if err := store.SaveNotes(migrated); err != nil && logger != nil {
			logger.Warn("persist migrated notes failed", "error", err.Error())
		}
	}
	return migrated
}

// commandRecord runs the owner session: capture, transcribe, category
// choice, generation, and note persistence.
func (r Runner) commandRecord(ctx context.Context, cfg config.Config, store *storage.Store, logger *slog.Logger) int {
	settings, _ := loadSettings(store, logger)
	if strings.TrimSpace(settings.APIToken) == "" {
		fmt.Fprintf(r.Stderr, "error: SiliconFlow API token is missing; run: %s token set <value>\n", binaryName)
		return 1
	}

	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	// A second record invocation acts as stop on the running session.
	if resp, handled, forwardErr := tryForward(ctx, socketPath, ipc.Request{Command: "stop"}); handled {
		if forwardErr != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", forwardErr)
			return 1
		}
		if resp.Message != "" {
			fmt.Fprintln(r.Stdout, resp.Message)
		}
		return 0
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8, nil)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			resp, _, forwardErr := tryForward(ctx, socketPath, ipc.Request{Command: "stop"})
			if forwardErr != nil {
				fmt.Fprintf(r.Stderr, "error: %v\n", forwardErr)
				return 1
			}
			if resp.Message != "" {
				fmt.Fprintln(r.Stdout, resp.Message)
			}
			return 0
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	settingsSource := func() category.Settings {
		s, _ := loadSettings(store, logger)
		return s
	}

	api := siliconflow.New(
		cfg.API.BaseURL,
		settings.APIToken,
		cfg.API.TranscribeModel,
		cfg.API.GenerateModel,
		logger,
	)
	processor := pipeline.NewProcessor(cfg, api, settingsSource, logger)
	copier := output.NewCopier(cfg, logger)

	committer := session.CommitFunc(func(ctx context.Context, commit session.Commit) error {
		collection := loadNotes(store, logger)
		note := notes.New(commit.Transcript, commit.Content, commit.CategoryID, time.Now())
		if err := store.SaveNotes(notes.Prepend(collection, note)); err != nil {
			return err
		}
		if cfg.Copy.Auto {
			if err := copier.Copy(ctx, commit.Content); err != nil {
				logger.Warn("auto-copy failed; note is saved", "error", err.Error())
			}
		}
		return nil
	})

	indicatorCtl := indicator.NewDesktopNotify(cfg.Notify, logger)
	controller := session.NewController(logger, processor, processor, committer, indicatorCtl)
	controller.OnChoosing = func(_ context.Context, transcript string) {
		fmt.Fprintln(r.Stdout, strings.TrimSpace(transcript))
		fmt.Fprintln(r.Stdout)
		fmt.Fprintln(r.Stdout, "Choose a category:")
		for _, c := range category.Effective(settingsSource()) {
			fmt.Fprintf(r.Stdout, "  %s %s  (%s choose %s)\n", c.Icon, c.Name, binaryName, c.ID)
		}
	}

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, controller)
	}()

	result := controller.Run(ctx)
	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		return 1
	}

	logSessionResult(logger, result)

	if result.Cancelled {
		fmt.Fprintln(r.Stdout, "cancelled")
		return 0
	}
	if result.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
		return 1
	}
	if strings.TrimSpace(result.Content) != "" {
		fmt.Fprintln(r.Stdout, strings.TrimSpace(result.Content))
	}
	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, ipc.Request{Command: "status"})
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.State == "" {
			resp.State = "idle"
		}
		fmt.Fprintln(r.Stdout, resp.State)
		return 0
	}

	fmt.Fprintln(r.Stdout, "idle")
	return 0
}

func (r Runner) commandNotes(ctx context.Context, parsed cli.Parsed, cfg config.Config, store *storage.Store, logger *slog.Logger) int {
	collection := loadNotes(store, logger)
	settings, _ := loadSettings(store, logger)

	switch parsed.Subcommand {
	case "copy":
		index := parsed.NoteIndex
		if index == 0 {
			index = 1
		}
		if index > len(collection) {
			fmt.Fprintf(r.Stderr, "error: only %d notes saved\n", len(collection))
			return 1
		}
		note := collection[index-1]
		copier := output.NewCopier(cfg, logger)
		if err := copier.Copy(ctx, note.ProcessedContent); err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintf(r.Stdout, "copied note from %s\n", note.Created().Format("2006-01-02 15:04"))
		return 0
	case "search":
		collection = notes.Search(collection, parsed.Text)
	}

	if len(collection) == 0 {
		fmt.Fprintln(r.Stdout, "no notes")
		return 0
	}
	for i, note := range collection {
		icon := category.DisplayIcon(note.PromptType, settings)
		name := category.DisplayName(note.PromptType, settings)
		fmt.Fprintf(r.Stdout, "%3d. %s  %s %s\n", i+1, note.Created().Format("2006-01-02 15:04"), icon, name)
		for _, line := range strings.Split(strings.TrimSpace(note.ProcessedContent), "\n") {
			fmt.Fprintf(r.Stdout, "     %s\n", line)
		}
	}
	return 0
}

func (r Runner) commandCategories(store *storage.Store, logger *slog.Logger) int {
	settings, _ := loadSettings(store, logger)
	for _, c := range category.Effective(settings) {
		kind := "custom"
		if c.Default {
			kind = "built-in"
		}
		fmt.Fprintf(r.Stdout, "%s %s  %s (%s)\n", c.Icon, c.Name, c.ID, kind)
	}
	return 0
}

func (r Runner) commandCategory(parsed cli.Parsed, store *storage.Store, logger *slog.Logger) int {
	settings, _ := loadSettings(store, logger)

	switch parsed.Subcommand {
	case "add":
		icon := ""
		if parsed.Icon != nil {
			icon = *parsed.Icon
		}
		updated, err := category.Add(settings, *parsed.Name, icon, time.Now())
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if err := store.SaveSettings(updated); err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		added := category.Effective(updated)
		newest := added[len(added)-1]
		fmt.Fprintf(r.Stdout, "added %s %s (%s)\n", newest.Icon, newest.Name, newest.ID)
		return 0

	case "edit":
		updated, err := category.Update(settings, parsed.CategoryID, category.Fields{Name: parsed.Name, Icon: parsed.Icon})
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if err := store.SaveSettings(updated); err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		c, _ := category.Find(parsed.CategoryID, updated)
		fmt.Fprintf(r.Stdout, "updated %s %s (%s)\n", c.Icon, c.Name, c.ID)
		return 0

	case "rm":
		if _, ok := category.Find(parsed.CategoryID, settings); !ok {
			fmt.Fprintf(r.Stderr, "error: unknown category %q\n", parsed.CategoryID)
			return 1
		}
		updated := category.Delete(settings, parsed.CategoryID)
		if err := store.SaveSettings(updated); err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintf(r.Stdout, "removed %s\n", parsed.CategoryID)
		return 0

	default:
		fmt.Fprintf(r.Stderr, "error: unsupported category subcommand %q\n", parsed.Subcommand)
		return 2
	}
}

func (r Runner) commandPrompt(parsed cli.Parsed, store *storage.Store, logger *slog.Logger) int {
	settings, _ := loadSettings(store, logger)

	switch parsed.Subcommand {
	case "show":
		prompt := category.ResolvePrompt(parsed.CategoryID, settings)
		if prompt == "" {
			fmt.Fprintf(r.Stderr, "error: no prompt known for category %q\n", parsed.CategoryID)
			return 1
		}
		fmt.Fprintln(r.Stdout, prompt)
		return 0

	case "set":
		if _, ok := category.Find(parsed.CategoryID, settings); !ok {
			fmt.Fprintf(r.Stderr, "error: unknown category %q\n", parsed.CategoryID)
			return 1
		}
		updated := category.SetPrompt(settings, parsed.CategoryID, parsed.Text)
		if err := store.SaveSettings(updated); err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintf(r.Stdout, "prompt set for %s\n", parsed.CategoryID)
		return 0

	case "clear":
		updated := category.ClearPrompt(settings, parsed.CategoryID)
		if err := store.SaveSettings(updated); err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintf(r.Stdout, "prompt cleared for %s\n", parsed.CategoryID)
		return 0

	default:
		fmt.Fprintf(r.Stderr, "error: unsupported prompt subcommand %q\n", parsed.Subcommand)
		return 2
	}
}

func (r Runner) commandToken(parsed cli.Parsed, store *storage.Store) int {
	settings, _ := store.LoadSettings()

	switch parsed.Subcommand {
	case "set":
		settings.APIToken = parsed.TokenValue
		if err := store.SaveSettings(settings); err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintln(r.Stdout, "token stored")
		return 0

	case "clear":
		settings.APIToken = ""
		if err := store.SaveSettings(settings); err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintln(r.Stdout, "token cleared")
		return 0

	default:
		fmt.Fprintf(r.Stderr, "error: unsupported token subcommand %q\n", parsed.Subcommand)
		return 2
	}
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, req ipc.Request) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, req)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no active recording session\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

func logSessionResult(logger *slog.Logger, result session.Result) {
	if logger == nil {
		return
	}
	fields := []any{
		"state", result.State,
		"cancelled", result.Cancelled,
		"started_at", result.StartedAt.Format(time.RFC3339Nano),
		"finished_at", result.FinishedAt.Format(time.RFC3339Nano),
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
		"audio_device", result.AudioDevice,
		"bytes_captured", result.BytesCaptured,
		"transcript_length", len(result.Transcript),
		"content_length", len(result.Content),
		"category", result.CategoryID,
		"api_latency_ms", result.APILatency.Milliseconds(),
	}

	if result.Err != nil {
		logger.Error("session failed", append(fields, "error", result.Err.Error())...)
		return
	}
	logger.Info("session complete", fields...)
}

func tryForward(ctx context.Context, socketPath string, req ipc.Request) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, req, 220*time.Millisecond)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) {
		return ipc.Response{}, false, nil
	}
	if isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", req.Command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
