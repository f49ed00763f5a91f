package category

// fallbackIcon is shown for notes whose category no longer exists.
const fallbackIcon = "📄"

// DisplayName resolves a category id for display. Deleted categories fall
// back to the raw id so old notes stay identifiable; an empty reference
// falls back to a generic label.
func DisplayName(id string, s Settings) string {
	if c, ok := Find(id, s); ok {
		return c.Name
	}
	if id != "" {
		return id
	}
	return "deleted category"
}

// DisplayIcon resolves a category id to its icon, with a generic fallback
// for deleted categories.
func DisplayIcon(id string, s Settings) string {
	if c, ok := Find(id, s); ok && c.Icon != "" {
		return c.Icon
	}
	return fallbackIcon
}
