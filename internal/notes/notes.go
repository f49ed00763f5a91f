// Package notes holds the immutable voice-note collection: newest first,
// prepend and read only.
package notes

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rbright/voicenote/internal/category"
)

// Note is one captured voice note. PromptType is recorded at creation time
// and never revalidated; it may reference a category id that has since been
// edited or deleted.
type Note struct {
	ID               string `json:"id"`
	CreatedAt        int64  `json:"createdAt"`
	OriginalText     string `json:"originalText"`
	ProcessedContent string `json:"processedContent"`
	PromptType       string `json:"promptType"`
}

// New builds a note with a fresh uuid and millisecond timestamp.
func New(originalText, processedContent, promptType string, now time.Time) Note {
	return Note{
		ID:               uuid.NewString(),
		CreatedAt:        now.UnixMilli(),
		OriginalText:     originalText,
		ProcessedContent: processedContent,
		PromptType:       promptType,
	}
}

// Created returns the note timestamp as a time.Time.
func (n Note) Created() time.Time {
	return time.UnixMilli(n.CreatedAt)
}

// Prepend inserts a new note at the front of the collection.
func Prepend(collection []Note, note Note) []Note {
	out := make([]Note, 0, len(collection)+1)
	out = append(out, note)
	out = append(out, collection...)
	return out
}

// Search filters notes by case-insensitive substring match against the
// processed content and the original transcript. An empty query returns the
// collection unchanged.
func Search(collection []Note, query string) []Note {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return collection
	}

	out := make([]Note, 0, len(collection))
	for _, n := range collection {
		if strings.Contains(strings.ToLower(n.ProcessedContent), query) ||
			strings.Contains(strings.ToLower(n.OriginalText), query) {
			out = append(out, n)
		}
	}
	return out
}

// Migrate upgrades legacy free-text promptType references to stable ids.
// Idempotent; the returned flag reports whether anything changed so callers
// can persist the upgraded form immediately.
func Migrate(collection []Note) ([]Note, bool) {
	changed := false
	for _, n := range collection {
		if category.MigrateID(n.PromptType) != n.PromptType {
			changed = true
			break
		}
	}
	if !changed {
		return collection, false
	}

	out := make([]Note, len(collection))
	copy(out, collection)
	for i := range out {
		out[i].PromptType = category.MigrateID(out[i].PromptType)
	}
	return out, true
}
