package category

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateIDTable(t *testing.T) {
	tests := []struct {
		legacy string
		want   string
	}{
		{legacy: "Raw Record", want: "raw"},
		{legacy: "Summary", want: "summary"},
		{legacy: "Action Items", want: "action_items"},
		{legacy: "Journal Entry", want: "journal"},
		{legacy: "Email Draft", want: "email"},
		{legacy: "Code Snippet", want: "code"},
	}

	for _, tc := range tests {
		t.Run(tc.legacy, func(t *testing.T) {
			require.Equal(t, tc.want, MigrateID(tc.legacy))
		})
	}
}

func TestMigrateIDPassesUnknownThrough(t *testing.T) {
	for _, ref := range []string{"raw", "custom_1700000000000", "Meeting", ""} {
		require.Equal(t, ref, MigrateID(ref))
	}
}

func TestMigrateIDIdempotent(t *testing.T) {
	inputs := []string{"Raw Record", "Summary", "Code Snippet", "raw", "custom_5", "whatever"}
	for _, ref := range inputs {
		once := MigrateID(ref)
		require.Equal(t, once, MigrateID(once), ref)
	}
}

func TestMigrateSettingsRewritesPromptKeys(t *testing.T) {
	s := Settings{CustomPrompts: map[string]string{
		"Summary": "short",
		"code":    "keep",
		"Meeting": "agenda",
	}}

	migrated, changed := MigrateSettings(s)
	require.True(t, changed)
	require.Equal(t, map[string]string{
		"summary": "short",
		"code":    "keep",
		"Meeting": "agenda",
	}, migrated.CustomPrompts)

	again, changed := MigrateSettings(migrated)
	require.False(t, changed)
	require.Equal(t, migrated, again)
}

func TestMigrateSettingsRewritesDeletedCategories(t *testing.T) {
	s := Settings{DeletedCategories: []string{"Code Snippet", "email"}}

	migrated, changed := MigrateSettings(s)
	require.True(t, changed)
	require.Equal(t, []string{"code", "email"}, migrated.DeletedCategories)

	again, changed := MigrateSettings(migrated)
	require.False(t, changed)
	require.Equal(t, migrated, again)
}

func TestMigrateSettingsNoChangeLeavesSettingsUntouched(t *testing.T) {
	s := Settings{
		CustomPrompts:     map[string]string{"summary": "short"},
		DeletedCategories: []string{"email"},
	}
	migrated, changed := MigrateSettings(s)
	require.False(t, changed)
	require.Equal(t, s, migrated)
}
