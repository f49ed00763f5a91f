package category

// legacyLabels maps the six historical free-text category labels to stable
// ids. Anything not in this table is returned unchanged: it is either an
// already-migrated id or a user-defined one. A legacy label that collides
// with a string a user later chose as a custom id is indistinguishable from
// a migrated id; that ambiguity is accepted.
var legacyLabels = map[string]string{
	"Raw Record":    IDRaw,
	"Summary":       IDSummary,
	"Action Items":  IDActionItems,
	"Journal Entry": IDJournal,
	"Email Draft":   IDEmail,
	"Code Snippet":  IDCode,
}

// MigrateID upgrades a legacy free-text category label to its stable id.
// Idempotent: the table's values are never themselves keys.
func MigrateID(ref string) string {
	if id, ok := legacyLabels[ref]; ok {
		return id
	}
	return ref
}

// MigrateSettings rewrites legacy category references inside settings to
// stable ids: customPrompts keys and deletedCategories entries. The returned
// flag reports whether anything changed, so callers can persist the upgraded
// form immediately.
func MigrateSettings(s Settings) (Settings, bool) {
	changed := false
	for key := range s.CustomPrompts {
		if MigrateID(key) != key {
			changed = true
			break
		}
	}
	if !changed {
		for _, id := range s.DeletedCategories {
			if MigrateID(id) != id {
				changed = true
				break
			}
		}
	}
	if !changed {
		return s, false
	}

	prompts := make(map[string]string, len(s.CustomPrompts))
	for key, text := range s.CustomPrompts {
		prompts[MigrateID(key)] = text
	}
	s.CustomPrompts = prompts

	if len(s.DeletedCategories) > 0 {
		deleted := make([]string, len(s.DeletedCategories))
		for i, id := range s.DeletedCategories {
			deleted[i] = MigrateID(id)
		}
		s.DeletedCategories = deleted
	}
	return s, true
}
