package category

import "strings"

// ResolvePrompt returns the instruction text for a category id: a non-empty
// user override wins, then the built-in preset, then "". The lookup is keyed
// purely by id and never consults the effective set, so it still resolves
// for a category that has since been deleted.
func ResolvePrompt(id string, s Settings) string {
	if override, ok := s.CustomPrompts[id]; ok && strings.TrimSpace(override) != "" {
		return override
	}
	return presets[id]
}

// SetPrompt records an override for id, replacing any previous one.
func SetPrompt(s Settings, id, text string) Settings {
	prompts := make(map[string]string, len(s.CustomPrompts)+1)
	for k, v := range s.CustomPrompts {
		prompts[k] = v
	}
	prompts[id] = text
	s.CustomPrompts = prompts
	return s
}

// ClearPrompt removes the override for id; resolution falls back to the
// preset for built-ins.
func ClearPrompt(s Settings, id string) Settings {
	if _, has := s.CustomPrompts[id]; !has {
		return s
	}
	prompts := make(map[string]string, len(s.CustomPrompts))
	for k, v := range s.CustomPrompts {
		if k != id {
			prompts[k] = v
		}
	}
	s.CustomPrompts = prompts
	return s
}
