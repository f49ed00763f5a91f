package category

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyName rejects category creation with a whitespace-only name.
var ErrEmptyName = errors.New("category name must not be empty")

// Effective computes the final duplicate-free category list: built-ins in
// fixed order minus deletions, custom entries overlaid in place by id, new
// custom entries appended in insertion order.
func Effective(s Settings) []Category {
	deleted := make(map[string]struct{}, len(s.DeletedCategories))
	for _, id := range s.DeletedCategories {
		deleted[id] = struct{}{}
	}

	out := make([]Category, 0, len(builtins)+len(s.CustomCategories))
	index := make(map[string]int, len(builtins)+len(s.CustomCategories))
	for _, c := range builtins {
		if _, gone := deleted[c.ID]; gone {
			continue
		}
		index[c.ID] = len(out)
		out = append(out, c)
	}

	for _, c := range s.CustomCategories {
		if at, ok := index[c.ID]; ok {
			out[at] = c
			continue
		}
		index[c.ID] = len(out)
		out = append(out, c)
	}

	return out
}

// Find looks id up in the effective set. Absent is an expected outcome used
// to detect deleted categories at display time, not an error.
func Find(id string, s Settings) (Category, bool) {
	for _, c := range Effective(s) {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Add appends a new user category with a generated unique id. The name is
// trimmed and must be non-empty. now seeds the id; ids are bumped forward
// until unique against the effective set.
func Add(s Settings, name, icon string, now time.Time) (Settings, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, ErrEmptyName
	}

	s.CustomCategories = append(cloneCategories(s.CustomCategories), Category{
		ID:   generateID(s, now),
		Name: name,
		Icon: strings.TrimSpace(icon),
	})
	return s, nil
}

// Fields carries a partial category edit; nil means "leave unchanged".
type Fields struct {
	Name *string
	Icon *string
}

// Update merges fields into the custom entry for id when one exists.
// Unmodified built-ins are copy-on-write: the current effective values are
// materialized into a new overlay entry the first time they are edited.
func Update(s Settings, id string, fields Fields) (Settings, error) {
	custom := cloneCategories(s.CustomCategories)
	for i := range custom {
		if custom[i].ID == id {
			applyFields(&custom[i], fields)
			s.CustomCategories = custom
			return s, nil
		}
	}

	current, ok := Find(id, s)
	if !ok {
		return s, fmt.Errorf("category %q not found", id)
	}
	applyFields(&current, fields)
	s.CustomCategories = append(custom, current)
	return s, nil
}

// Delete hides a built-in via the deletion set (idempotent) or removes a
// user category outright. An overlay for a deleted built-in is dropped as
// well so it cannot re-append the entry. Any prompt override for id is
// discarded either way. Existing notes keep referencing id and are never
// rewritten.
func Delete(s Settings, id string) Settings {
	if IsBuiltinID(id) && !containsID(s.DeletedCategories, id) {
		s.DeletedCategories = append(cloneIDs(s.DeletedCategories), id)
	}

	kept := make([]Category, 0, len(s.CustomCategories))
	for _, c := range s.CustomCategories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.CustomCategories = kept

	if _, has := s.CustomPrompts[id]; has {
		prompts := make(map[string]string, len(s.CustomPrompts))
		for k, v := range s.CustomPrompts {
			if k != id {
				prompts[k] = v
			}
		}
		s.CustomPrompts = prompts
	}
	return s
}

// generateID derives a custom_<unix-millis> id, bumping the millisecond
// component until it collides with nothing in the effective set.
func generateID(s Settings, now time.Time) string {
	millis := now.UnixMilli()
	for {
		id := fmt.Sprintf("custom_%d", millis)
		if _, exists := Find(id, s); !exists {
			return id
		}
		millis++
	}
}

func applyFields(c *Category, fields Fields) {
	if fields.Name != nil {
		if name := strings.TrimSpace(*fields.Name); name != "" {
			c.Name = name
		}
	}
	if fields.Icon != nil {
		c.Icon = strings.TrimSpace(*fields.Icon)
	}
}

func cloneCategories(in []Category) []Category {
	out := make([]Category, len(in))
	copy(out, in)
	return out
}

func cloneIDs(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
