// Package storage persists the notes and settings slots as JSON files under
// the user data directory. Each slot is replaced wholesale on write; a slot
// that is missing or fails to parse reads back as absent, never as an error
// surfaced to the user.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbright/voicenote/internal/category"
	"github.com/rbright/voicenote/internal/notes"
)

const (
	notesSlot    = "notes.json"
	settingsSlot = "settings.json"
)

// Store reads and writes the two persistence slots rooted at Dir.
type Store struct {
	Dir    string
	Logger *slog.Logger
}

// Open resolves the data directory (XDG_DATA_HOME fallback ~/.local/share)
// and ensures it exists.
func Open(logger *slog.Logger) (*Store, error) {
	dir, err := resolveDataDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir %q: %w", dir, err)
	}
	return &Store{Dir: dir, Logger: logger}, nil
}

// LoadSettings reads the settings slot. ok is false when the slot was never
// written or cannot be parsed.
func (s *Store) LoadSettings() (category.Settings, bool) {
	var settings category.Settings
	ok := s.readSlot(settingsSlot, &settings)
	if !ok {
		return category.Settings{}, false
	}
	return settings, true
}

// SaveSettings replaces the settings slot.
func (s *Store) SaveSettings(settings category.Settings) error {
	return s.writeSlot(settingsSlot, settings)
}

// LoadNotes reads the notes slot (newest first). ok is false when the slot
// was never written or cannot be parsed.
func (s *Store) LoadNotes() ([]notes.Note, bool) {
	var collection []notes.Note
	ok := s.readSlot(notesSlot, &collection)
	if !ok {
		return nil, false
	}
	return collection, true
}

// SaveNotes replaces the notes slot.
func (s *Store) SaveNotes(collection []notes.Note) error {
	if collection == nil {
		collection = []notes.Note{}
	}
	return s.writeSlot(notesSlot, collection)
}

// readSlot decodes one slot file into v. Parse failures are logged and
// reported as absent so corrupted state falls back to empty defaults.
func (s *Store) readSlot(name string, v any) bool {
	path := filepath.Join(s.Dir, name)
	content, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logWarn("read slot failed", "slot", name, "error", err.Error())
		}
		return false
	}

	if err := json.Unmarshal(content, v); err != nil {
		s.logWarn("parse slot failed; falling back to defaults", "slot", name, "error", err.Error())
		return false
	}
	return true
}

// writeSlot fully replaces one slot's content.
func (s *Store) writeSlot(name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", name, err)
	}

	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return fmt.Errorf("write slot %s: %w", name, err)
	}
	return nil
}

func (s *Store) logWarn(message string, args ...any) {
	if s.Logger == nil {
		return
	}
	s.Logger.Warn(message, args...)
}

// resolveDataDir selects XDG_DATA_HOME when available, otherwise
// ~/.local/share.
func resolveDataDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "voicenote"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for data: %w", err)
	}
	return filepath.Join(home, ".local", "share", "voicenote"), nil
}
