package indicator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rbright/voicenote/internal/config"
	"github.com/stretchr/testify/require"
)

// installBusctlStub puts a fake busctl on PATH that logs its arguments and
// answers Notify calls with a fixed notification ID.
func installBusctlStub(t *testing.T, notifyID string) string {
	t.Helper()

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "busctl-args.log")
	t.Setenv("BUSCTL_ARGS_FILE", argsFile)

	script := `#!/usr/bin/env bash
set -euo pipefail
printf '%s\n' "$*" >> "${BUSCTL_ARGS_FILE}"
for arg in "$@"; do
  if [[ "$arg" == "Notify" ]]; then
    echo "u ` + notifyID + `"
    exit 0
  fi
done
exit 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "busctl"), []byte(script), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
	return argsFile
}

func TestShowRecordingSendsNotification(t *testing.T) {
	argsFile := installBusctlStub(t, "42")

	n := NewDesktopNotify(config.NotifyConfig{Enable: true, AppName: "voicenote"}, nil)
	n.ShowRecording(context.Background())

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "Notify")
	require.Contains(t, string(data), "voicenote")
	require.Contains(t, string(data), "Recording…")

	n.mu.Lock()
	require.Equal(t, uint32(42), n.notificationID)
	n.mu.Unlock()
}

func TestShowGeneratingIncludesCategoryName(t *testing.T) {
	argsFile := installBusctlStub(t, "7")

	n := NewDesktopNotify(config.NotifyConfig{Enable: true, AppName: "voicenote"}, nil)
	n.ShowGenerating(context.Background(), "Action Items")

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "Generating… (Action Items)")
}

func TestNotificationsReplacePreviousID(t *testing.T) {
	argsFile := installBusctlStub(t, "9")

	n := NewDesktopNotify(config.NotifyConfig{Enable: true, AppName: "voicenote"}, nil)
	n.ShowRecording(context.Background())
	n.ShowTranscribing(context.Background())

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	// Second call passes the first call's ID as the replace target.
	require.Contains(t, string(data), "voicenote 9")
}

func TestHideDismissesActiveNotification(t *testing.T) {
	argsFile := installBusctlStub(t, "13")

	n := NewDesktopNotify(config.NotifyConfig{Enable: true, AppName: "voicenote"}, nil)
	n.ShowChoosing(context.Background())
	n.Hide(context.Background())

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "CloseNotification")
	require.Contains(t, string(data), "13")

	n.mu.Lock()
	require.Zero(t, n.notificationID)
	n.mu.Unlock()
}

func TestHideWithoutActiveNotificationIsNoop(t *testing.T) {
	argsFile := installBusctlStub(t, "1")

	n := NewDesktopNotify(config.NotifyConfig{Enable: true, AppName: "voicenote"}, nil)
	n.Hide(context.Background())

	_, err := os.ReadFile(argsFile)
	require.True(t, os.IsNotExist(err))
}

func TestDisabledNotifySendsNothing(t *testing.T) {
	argsFile := installBusctlStub(t, "1")

	n := NewDesktopNotify(config.NotifyConfig{Enable: false, AppName: "voicenote"}, nil)
	n.ShowRecording(context.Background())
	n.ShowError(context.Background(), "boom")
	n.Hide(context.Background())

	_, err := os.ReadFile(argsFile)
	require.True(t, os.IsNotExist(err))
}

func TestShowErrorFallsBackToDefaultText(t *testing.T) {
	argsFile := installBusctlStub(t, "5")

	n := NewDesktopNotify(config.NotifyConfig{Enable: true, AppName: "voicenote"}, nil)
	n.ShowError(context.Background(), "")

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "Voice note error")
}
