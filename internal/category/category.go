// Package category models prompt categories and resolves the effective
// category set from built-in defaults, user overlays, and deletions.
package category

// Category is one named, iconified rewriting style for transcribed text.
type Category struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	Default bool   `json:"isDefault"`
}

// Settings is the persisted user configuration. Custom entries whose id
// matches a built-in act as overlays; DeletedCategories only ever holds
// built-in ids. The JSON shape matches the legacy web client's settings slot.
type Settings struct {
	APIToken          string            `json:"siliconFlowToken"`
	CustomPrompts     map[string]string `json:"customPrompts,omitempty"`
	CustomCategories  []Category        `json:"customCategories,omitempty"`
	DeletedCategories []string          `json:"deletedCategories,omitempty"`
}

// Built-in category ids. Categories are opaque string identifiers, not a
// closed enum; these six are the ones shipped by default.
const (
	IDRaw         = "raw"
	IDSummary     = "summary"
	IDActionItems = "action_items"
	IDJournal     = "journal"
	IDEmail       = "email"
	IDCode        = "code"
)

// builtins is the fixed built-in list in display order.
var builtins = []Category{
	{ID: IDRaw, Name: "Raw Record", Icon: "🎙️", Default: true},
	{ID: IDSummary, Name: "Summary", Icon: "📝", Default: true},
	{ID: IDActionItems, Name: "Action Items", Icon: "✅", Default: true},
	{ID: IDJournal, Name: "Journal Entry", Icon: "📔", Default: true},
	{ID: IDEmail, Name: "Email Draft", Icon: "✉️", Default: true},
	{ID: IDCode, Name: "Code Snippet", Icon: "💻", Default: true},
}

// presets holds the default instruction text per built-in id. Category
// deletion never removes entries here; it only hides the category.
var presets = map[string]string{
	IDRaw:         "Keep the text exactly as is, just fix minor punctuation.",
	IDSummary:     "Summarize the following text into a concise paragraph, capturing the main points.",
	IDActionItems: "Extract a list of actionable tasks and to-do items from the text. Format them as a bulleted list.",
	IDJournal:     "Rewrite the text as a reflective journal entry, maintaining a personal and thoughtful tone.",
	IDEmail:       "Convert the spoken notes into a professional email draft.",
	IDCode:        "Extract any technical logic or code concepts and format them as a code snippet or technical explanation.",
}

// Builtins returns a copy of the built-in category list in display order.
func Builtins() []Category {
	out := make([]Category, len(builtins))
	copy(out, builtins)
	return out
}

// IsBuiltinID reports whether id belongs to the fixed built-in list.
func IsBuiltinID(id string) bool {
	for _, c := range builtins {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Preset returns the built-in default instruction for id, or "" when id is
// not a built-in.
func Preset(id string) string {
	return presets[id]
}
