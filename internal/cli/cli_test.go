package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBareCommands(t *testing.T) {
	for _, cmd := range []Command{
		CommandRecord, CommandStop, CommandCancel, CommandStatus,
		CommandCategories, CommandDevices, CommandDoctor, CommandVersion,
	} {
		parsed, err := Parse([]string{string(cmd)})
		require.NoError(t, err, cmd)
		require.Equal(t, cmd, parsed.Command)
		require.False(t, parsed.ShowHelp)
	}
}

func TestParseNoArgsShowsHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, CommandHelp, parsed.Command)
	require.True(t, parsed.ShowHelp)
}

func TestParseConfigFlagBeforeCommand(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/alt.jsonc", "status"})
	require.NoError(t, err)
	require.Equal(t, CommandStatus, parsed.Command)
	require.Equal(t, "/tmp/alt.jsonc", parsed.ConfigPath)
}

func TestParseConfigFlagRequiresPath(t *testing.T) {
	_, err := Parse([]string{"--config"})
	require.ErrorContains(t, err, "--config requires a path")
}

func TestParseChoose(t *testing.T) {
	parsed, err := Parse([]string{"choose", "action_items"})
	require.NoError(t, err)
	require.Equal(t, CommandChoose, parsed.Command)
	require.Equal(t, "action_items", parsed.CategoryID)

	_, err = Parse([]string{"choose"})
	require.ErrorContains(t, err, "choose <category-id>")

	_, err = Parse([]string{"choose", "a", "b"})
	require.Error(t, err)
}

func TestParseNotes(t *testing.T) {
	parsed, err := Parse([]string{"notes"})
	require.NoError(t, err)
	require.Equal(t, CommandNotes, parsed.Command)
	require.Empty(t, parsed.Subcommand)

	parsed, err = Parse([]string{"notes", "search", "standup", "notes"})
	require.NoError(t, err)
	require.Equal(t, "search", parsed.Subcommand)
	require.Equal(t, "standup notes", parsed.Text)

	_, err = Parse([]string{"notes", "search"})
	require.ErrorContains(t, err, "notes search <query>")

	parsed, err = Parse([]string{"notes", "copy"})
	require.NoError(t, err)
	require.Equal(t, "copy", parsed.Subcommand)
	require.Zero(t, parsed.NoteIndex)

	parsed, err = Parse([]string{"notes", "copy", "3"})
	require.NoError(t, err)
	require.Equal(t, 3, parsed.NoteIndex)

	_, err = Parse([]string{"notes", "copy", "zero"})
	require.ErrorContains(t, err, "positive number")

	_, err = Parse([]string{"notes", "copy", "0"})
	require.Error(t, err)

	_, err = Parse([]string{"notes", "purge"})
	require.ErrorContains(t, err, "unknown notes subcommand")
}

func TestParseCategoryAdd(t *testing.T) {
	parsed, err := Parse([]string{"category", "add", "Meeting Notes", "🗓️"})
	require.NoError(t, err)
	require.Equal(t, CommandCategory, parsed.Command)
	require.Equal(t, "add", parsed.Subcommand)
	require.NotNil(t, parsed.Name)
	require.Equal(t, "Meeting Notes", *parsed.Name)
	require.NotNil(t, parsed.Icon)
	require.Equal(t, "🗓️", *parsed.Icon)

	parsed, err = Parse([]string{"category", "add", "Ideas"})
	require.NoError(t, err)
	require.Equal(t, "Ideas", *parsed.Name)
	require.Nil(t, parsed.Icon)

	_, err = Parse([]string{"category", "add"})
	require.ErrorContains(t, err, "category add <name>")
}

func TestParseCategoryEdit(t *testing.T) {
	parsed, err := Parse([]string{"category", "edit", "summary", "--name", "Digest", "--icon", "🧾"})
	require.NoError(t, err)
	require.Equal(t, "edit", parsed.Subcommand)
	require.Equal(t, "summary", parsed.CategoryID)
	require.Equal(t, "Digest", *parsed.Name)
	require.Equal(t, "🧾", *parsed.Icon)

	parsed, err = Parse([]string{"category", "edit", "summary", "--icon", "🧾"})
	require.NoError(t, err)
	require.Nil(t, parsed.Name)
	require.Equal(t, "🧾", *parsed.Icon)

	_, err = Parse([]string{"category", "edit", "summary"})
	require.ErrorContains(t, err, "provide --name and/or --icon")

	_, err = Parse([]string{"category", "edit", "summary", "--name"})
	require.ErrorContains(t, err, "--name requires a value")

	_, err = Parse([]string{"category", "edit", "summary", "--color", "red"})
	require.ErrorContains(t, err, "unknown category edit flag")
}

func TestParseCategoryRm(t *testing.T) {
	parsed, err := Parse([]string{"category", "rm", "code"})
	require.NoError(t, err)
	require.Equal(t, "rm", parsed.Subcommand)
	require.Equal(t, "code", parsed.CategoryID)

	_, err = Parse([]string{"category", "rm"})
	require.Error(t, err)

	_, err = Parse([]string{"category", "drop", "code"})
	require.ErrorContains(t, err, "unknown category subcommand")
}

func TestParsePrompt(t *testing.T) {
	parsed, err := Parse([]string{"prompt", "show", "journal"})
	require.NoError(t, err)
	require.Equal(t, CommandPrompt, parsed.Command)
	require.Equal(t, "show", parsed.Subcommand)
	require.Equal(t, "journal", parsed.CategoryID)

	parsed, err = Parse([]string{"prompt", "set", "journal", "Keep", "it", "short."})
	require.NoError(t, err)
	require.Equal(t, "set", parsed.Subcommand)
	require.Equal(t, "journal", parsed.CategoryID)
	require.Equal(t, "Keep it short.", parsed.Text)

	_, err = Parse([]string{"prompt", "set", "journal"})
	require.ErrorContains(t, err, "prompt set <id> <text>")

	parsed, err = Parse([]string{"prompt", "clear", "journal"})
	require.NoError(t, err)
	require.Equal(t, "clear", parsed.Subcommand)

	_, err = Parse([]string{"prompt", "reset", "journal"})
	require.ErrorContains(t, err, "unknown prompt subcommand")
}

func TestParseToken(t *testing.T) {
	parsed, err := Parse([]string{"token", "set", "sk-test"})
	require.NoError(t, err)
	require.Equal(t, CommandToken, parsed.Command)
	require.Equal(t, "set", parsed.Subcommand)
	require.Equal(t, "sk-test", parsed.TokenValue)

	parsed, err = Parse([]string{"token", "clear"})
	require.NoError(t, err)
	require.Equal(t, "clear", parsed.Subcommand)

	_, err = Parse([]string{"token", "set"})
	require.Error(t, err)

	_, err = Parse([]string{"token", "rotate"})
	require.ErrorContains(t, err, "unknown token subcommand")
}

func TestParseRejectsUnknown(t *testing.T) {
	_, err := Parse([]string{"transcode"})
	require.ErrorContains(t, err, "unknown command")

	_, err = Parse([]string{"--verbose"})
	require.ErrorContains(t, err, "unknown flag")

	_, err = Parse([]string{"status", "extra"})
	require.ErrorContains(t, err, "unexpected arguments")
}

func TestHelpTextNamesEveryCommand(t *testing.T) {
	text := HelpText("voicenote")
	for _, want := range []string{
		"record", "stop", "cancel", "choose", "status",
		"notes", "categories", "category add", "prompt set",
		"token set", "devices", "doctor", "version",
	} {
		require.Contains(t, text, want)
	}
}
