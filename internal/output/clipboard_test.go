package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rbright/voicenote/internal/config"
	"github.com/stretchr/testify/require"
)

func TestRunCommandWithInputWritesStdin(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	outputPath := filepath.Join(t.TempDir(), "stdin.txt")

	err := runCommandWithInput(context.Background(), []string{scriptPath, outputPath}, "note content")
	require.NoError(t, err)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.Equal(t, "note content", string(data))
}

func TestRunCommandWithInputRejectsEmptyArgv(t *testing.T) {
	err := runCommandWithInput(context.Background(), nil, "payload")
	require.Error(t, err)
	require.Contains(t, err.Error(), "argv cannot be empty")
}

func TestCopierCopyWritesClipboard(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	clipboardPath := filepath.Join(t.TempDir(), "clipboard.txt")

	cfg := config.Default()
	cfg.Clipboard = config.CommandConfig{Argv: []string{scriptPath, clipboardPath}}

	copier := NewCopier(cfg, nil)
	require.NoError(t, copier.Copy(context.Background(), "- buy milk\n- call dentist"))

	data, err := os.ReadFile(clipboardPath)
	require.NoError(t, err)
	require.Equal(t, "- buy milk\n- call dentist", string(data))
}

func TestCopierCopySkipsEmptyText(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	clipboardPath := filepath.Join(t.TempDir(), "clipboard.txt")

	cfg := config.Default()
	cfg.Clipboard = config.CommandConfig{Argv: []string{scriptPath, clipboardPath}}

	copier := NewCopier(cfg, nil)
	require.NoError(t, copier.Copy(context.Background(), ""))

	_, statErr := os.Stat(clipboardPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestCopierCopyReturnsErrorWhenCommandFails(t *testing.T) {
	failScript := writeFailScript(t)

	cfg := config.Default()
	cfg.Clipboard = config.CommandConfig{Argv: []string{failScript}}

	copier := NewCopier(cfg, nil)
	err := copier.Copy(context.Background(), "content")
	require.Error(t, err)
	require.Contains(t, err.Error(), "set clipboard")
}

func writeStdinCaptureScript(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "capture-stdin.sh")
	script := `#!/usr/bin/env bash
set -euo pipefail
cat > "$1"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeFailScript(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fail.sh")
	script := "#!/usr/bin/env bash\nexit 1\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}
