// Package output copies processed note content to the system clipboard.
package output

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/rbright/voicenote/internal/config"
)

// Copier writes note content to the clipboard via the configured command.
type Copier struct {
	config config.Config
	logger *slog.Logger
}

// NewCopier constructs a clipboard copier from runtime config.
func NewCopier(cfg config.Config, logger *slog.Logger) *Copier {
	return &Copier{config: cfg, logger: logger}
}

// Copy pipes text into the clipboard command. Empty text is a no-op.
func (c *Copier) Copy(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	cmdCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := runCommandWithInput(cmdCtx, c.config.Clipboard.Argv, text); err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("copied to clipboard", "chars", len(text))
	}
	return nil
}

// runCommandWithInput executes argv and writes input to stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start command %s: %w", argv[0], err)
	}

	if input != "" {
		if _, err := stdin.Write([]byte(input)); err != nil {
			_ = stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("write stdin for %s: %w", argv[0], err)
		}
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait for %s: %w", argv[0], err)
	}
	return nil
}
