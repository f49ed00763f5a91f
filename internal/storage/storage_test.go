package storage

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/voicenote/internal/category"
	"github.com/rbright/voicenote/internal/notes"
)

func openTestStore(t *testing.T) (*Store, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	var logBuf bytes.Buffer
	store, err := Open(slog.New(slog.NewJSONHandler(&logBuf, nil)))
	require.NoError(t, err)
	return store, &logBuf
}

func TestLoadSettingsAbsentWhenNeverWritten(t *testing.T) {
	store, logBuf := openTestStore(t)

	_, ok := store.LoadSettings()
	require.False(t, ok)
	require.Empty(t, logBuf.String())
}

func TestSettingsRoundTrip(t *testing.T) {
	store, _ := openTestStore(t)

	in := category.Settings{
		APIToken:          "sk-test",
		CustomPrompts:     map[string]string{"summary": "short"},
		CustomCategories:  []category.Category{{ID: "custom_1", Name: "Meeting", Icon: "🗓️"}},
		DeletedCategories: []string{"code"},
	}
	require.NoError(t, store.SaveSettings(in))

	out, ok := store.LoadSettings()
	require.True(t, ok)
	require.Equal(t, in, out)
}

func TestNotesRoundTripNewestFirst(t *testing.T) {
	store, _ := openTestStore(t)

	collection := []notes.Note{
		{ID: "b", CreatedAt: 2, OriginalText: "two", ProcessedContent: "two", PromptType: "raw"},
		{ID: "a", CreatedAt: 1, OriginalText: "one", ProcessedContent: "one", PromptType: "summary"},
	}
	require.NoError(t, store.SaveNotes(collection))

	out, ok := store.LoadNotes()
	require.True(t, ok)
	require.Equal(t, collection, out)
}

func TestSaveNotesNilWritesEmptyArray(t *testing.T) {
	store, _ := openTestStore(t)
	require.NoError(t, store.SaveNotes(nil))

	content, err := os.ReadFile(filepath.Join(store.Dir, "notes.json"))
	require.NoError(t, err)
	require.Equal(t, "[]", string(content))
}

func TestParseFailureLogsAndFallsBackToAbsent(t *testing.T) {
	store, logBuf := openTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir, "settings.json"), []byte("{not json"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir, "notes.json"), []byte("broken"), 0o600))

	_, ok := store.LoadSettings()
	require.False(t, ok)
	_, ok = store.LoadNotes()
	require.False(t, ok)
	require.Contains(t, logBuf.String(), "parse slot failed")
}

func TestWriteReplacesSlotContent(t *testing.T) {
	store, _ := openTestStore(t)

	require.NoError(t, store.SaveSettings(category.Settings{APIToken: "first"}))
	require.NoError(t, store.SaveSettings(category.Settings{APIToken: "second"}))

	out, ok := store.LoadSettings()
	require.True(t, ok)
	require.Equal(t, "second", out.APIToken)
}
