// Package session coordinates the capture lifecycle: recording, transcription,
// category choice, generation, and note commit.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/voicenote/internal/fsm"
	"github.com/rbright/voicenote/internal/ipc"
)

type actionKind int

const (
	actionStop actionKind = iota + 1
	actionCancel
	actionChoose
)

type action struct {
	kind     actionKind
	category string
}

// Result is the complete lifecycle output returned by one Run invocation.
type Result struct {
	State         fsm.State
	Transcript    string
	Content       string
	CategoryID    string
	Cancelled     bool
	Err           error
	AudioDevice   string
	BytesCaptured int64
	APILatency    time.Duration
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Indicator is the session-facing subset of notification behavior.
type Indicator interface {
	ShowRecording(context.Context)
	ShowTranscribing(context.Context)
	ShowChoosing(context.Context)
	ShowGenerating(context.Context, string)
	ShowSaved(context.Context, string)
	ShowError(context.Context, string)
	Hide(context.Context)
}

// noopIndicator preserves session flow when no indicator is wired.
type noopIndicator struct{}

func (noopIndicator) ShowRecording(context.Context)          {}
func (noopIndicator) ShowTranscribing(context.Context)       {}
func (noopIndicator) ShowChoosing(context.Context)           {}
func (noopIndicator) ShowGenerating(context.Context, string) {}
func (noopIndicator) ShowSaved(context.Context, string)      {}
func (noopIndicator) ShowError(context.Context, string)      {}
func (noopIndicator) Hide(context.Context)                   {}

// Controller orchestrates session state transitions and side effects.
type Controller struct {
	logger     *slog.Logger
	transcribe Transcriber
	generate   Generator
	commit     Committer
	indicator  Indicator

	// OnChoosing, when set, runs once the transcript is ready and the
	// session is waiting for a category choice.
	OnChoosing func(ctx context.Context, transcript string)

	mu    sync.RWMutex
	state fsm.State

	actions chan action
}

// NewController constructs a session controller with safe default fallbacks.
func NewController(
	logger *slog.Logger,
	transcriber Transcriber,
	generator Generator,
	committer Committer,
	indicator Indicator,
) *Controller {
	if transcriber == nil {
		transcriber = PlaceholderTranscriber{}
	}
	if generator == nil {
		generator = GeneratorFuncs{}
	}
	if committer == nil {
		committer = CommitFunc(func(context.Context, Commit) error { return nil })
	}
	if indicator == nil {
		indicator = noopIndicator{}
	}

	return &Controller{
		logger:     logger,
		transcribe: transcriber,
		generate:   generator,
		commit:     committer,
		indicator:  indicator,
		state:      fsm.StateIdle,
		actions:    make(chan action, 1),
	}
}

// State returns the current FSM state snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// transition applies one FSM event to the controller state.
func (c *Controller) transition(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// Run executes one owner lifecycle from record start to note commit,
// cancellation, or failure.
func (c *Controller) Run(ctx context.Context) Result {
	result := Result{StartedAt: time.Now()}

	if err := c.transition(fsm.EventStart); err != nil {
		return c.finish(result, err)
	}

	c.indicator.ShowRecording(ctx)

	if err := c.transcribe.Start(ctx); err != nil {
		c.indicator.ShowError(ctx, "Unable to start recording")
		c.toErrorAndReset()
		return c.finish(result, err)
	}

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
		defer cancel()
		c.indicator.Hide(cleanupCtx)
	}()

	select {
	case <-ctx.Done():
		_ = c.transcribe.Cancel(context.Background())
		c.indicator.ShowError(context.Background(), "Cancelled")
		c.toErrorAndReset()
		return c.finish(result, ctx.Err())
	case a := <-c.actions:
		switch a.kind {
		case actionCancel:
			_ = c.transcribe.Cancel(context.Background())
			_ = c.transition(fsm.EventCancel)
			result.Cancelled = true
			return c.finish(result, nil)
		case actionStop:
			return c.runTranscription(ctx, result)
		default:
			c.toErrorAndReset()
			return c.finish(result, fmt.Errorf("unexpected action %d while recording", a.kind))
		}
	}
}

// runTranscription stops capture, transcribes, and enters the choosing phase.
func (c *Controller) runTranscription(ctx context.Context, result Result) Result {
	if err := c.transition(fsm.EventStop); err != nil {
		c.toErrorAndReset()
		return c.finish(result, err)
	}
	c.indicator.ShowTranscribing(ctx)

	stopResult, err := c.transcribe.StopAndTranscribe(ctx)
	result.Transcript = stopResult.Transcript
	result.AudioDevice = stopResult.AudioDevice
	result.BytesCaptured = stopResult.BytesCaptured
	result.APILatency = stopResult.APILatency
	if err != nil {
		c.indicator.ShowError(context.Background(), "Speech recognition failed")
		c.toErrorAndReset()
		return c.finish(result, err)
	}

	if strings.TrimSpace(stopResult.Transcript) == "" {
		c.indicator.ShowError(context.Background(), "No speech detected")
		c.toErrorAndReset()
		return c.finish(result, ErrEmptyTranscript)
	}

	if err := c.transition(fsm.EventTranscribed); err != nil {
		c.toErrorAndReset()
		return c.finish(result, err)
	}
	c.indicator.ShowChoosing(ctx)
	if c.OnChoosing != nil {
		c.OnChoosing(ctx, stopResult.Transcript)
	}

	return c.runChoice(ctx, result)
}

// runChoice waits for the category choice and drives generation and commit.
func (c *Controller) runChoice(ctx context.Context, result Result) Result {
	select {
	case <-ctx.Done():
		c.indicator.ShowError(context.Background(), "Cancelled")
		c.toErrorAndReset()
		return c.finish(result, ctx.Err())
	case a := <-c.actions:
		switch a.kind {
		case actionCancel:
			_ = c.transition(fsm.EventCancel)
			result.Cancelled = true
			result.Transcript = ""
			return c.finish(result, nil)
		case actionChoose:
			return c.runGeneration(ctx, result, a.category)
		default:
			c.toErrorAndReset()
			return c.finish(result, fmt.Errorf("unexpected action %d while choosing", a.kind))
		}
	}
}

// runGeneration rewrites the transcript for the chosen category and commits
// the resulting note.
func (c *Controller) runGeneration(ctx context.Context, result Result, categoryID string) Result {
	result.CategoryID = categoryID

	name, err := c.generate.ValidateCategory(categoryID)
	if err != nil {
		c.toErrorAndReset()
		return c.finish(result, err)
	}

	if err := c.transition(fsm.EventChoose); err != nil {
		c.toErrorAndReset()
		return c.finish(result, err)
	}
	c.indicator.ShowGenerating(ctx, name)

	content, err := c.generate.Generate(ctx, categoryID, result.Transcript)
	if err != nil {
		c.indicator.ShowError(context.Background(), "Note generation failed")
		c.toErrorAndReset()
		return c.finish(result, err)
	}
	result.Content = content

	if err := c.commit.Commit(ctx, Commit{
		Transcript: result.Transcript,
		Content:    content,
		CategoryID: categoryID,
	}); err != nil {
		c.indicator.ShowError(context.Background(), "Saving note failed")
		c.toErrorAndReset()
		return c.finish(result, err)
	}

	if err := c.transition(fsm.EventGenerated); err != nil {
		return c.finish(result, err)
	}

	c.indicator.ShowSaved(ctx, name)
	return c.finish(result, nil)
}

// finish stamps the terminal state and timing onto a result.
func (c *Controller) finish(result Result, err error) Result {
	result.State = c.State()
	result.Err = err
	result.FinishedAt = time.Now()
	if err != nil && c.logger != nil {
		c.logger.Error("session ended with error", "state", string(result.State), "error", err.Error())
	}
	return result
}

// Handle serves IPC commands for the active owner session.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "status":
		return ipc.Response{OK: true, State: string(c.State()), Message: "status"}
	case "stop":
		return c.requestStop()
	case "cancel":
		return c.requestCancel()
	case "choose":
		return c.requestChoose(req.Category)
	default:
		return ipc.Response{OK: false, State: string(c.State()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

// requestStop enqueues a stop action when state permits it.
func (c *Controller) requestStop() ipc.Response {
	state := c.State()
	if state != fsm.StateRecording {
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot stop from state %s", state)}
	}

	select {
	case c.actions <- action{kind: actionStop}:
		return ipc.Response{OK: true, State: string(state), Message: "stop requested"}
	default:
		return ipc.Response{OK: true, State: string(state), Message: "stop already requested"}
	}
}

// requestCancel enqueues a cancel action when state permits it. Cancel is
// legal while recording or while a transcript awaits its category.
func (c *Controller) requestCancel() ipc.Response {
	state := c.State()
	if state != fsm.StateRecording && state != fsm.StateChoosing {
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot cancel from state %s", state)}
	}

	select {
	case c.actions <- action{kind: actionCancel}:
		return ipc.Response{OK: true, State: string(state), Message: "cancel requested"}
	default:
		return ipc.Response{OK: true, State: string(state), Message: "cancel already requested"}
	}
}

// requestChoose validates the category id and enqueues the choice.
func (c *Controller) requestChoose(categoryID string) ipc.Response {
	state := c.State()
	if state != fsm.StateChoosing {
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("no transcript awaiting a category in state %s", state)}
	}
	if strings.TrimSpace(categoryID) == "" {
		return ipc.Response{OK: false, State: string(state), Error: "choose requires a category id"}
	}

	name, err := c.generate.ValidateCategory(categoryID)
	if err != nil {
		return ipc.Response{OK: false, State: string(state), Error: err.Error()}
	}

	select {
	case c.actions <- action{kind: actionChoose, category: categoryID}:
		return ipc.Response{OK: true, State: string(state), Message: fmt.Sprintf("generating %s", name)}
	default:
		return ipc.Response{OK: false, State: string(state), Error: "another action is already pending"}
	}
}

// toErrorAndReset transitions to error and back to idle best-effort.
func (c *Controller) toErrorAndReset() {
	_ = c.transition(fsm.EventFail)
	_ = c.transition(fsm.EventReset)
}
