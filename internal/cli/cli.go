package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Command string

const (
	CommandRecord     Command = "record"
	CommandStop       Command = "stop"
	CommandCancel     Command = "cancel"
	CommandChoose     Command = "choose"
	CommandStatus     Command = "status"
	CommandNotes      Command = "notes"
	CommandCategories Command = "categories"
	CommandCategory   Command = "category"
	CommandPrompt     Command = "prompt"
	CommandToken      Command = "token"
	CommandDevices    Command = "devices"
	CommandDoctor     Command = "doctor"
	CommandVersion    Command = "version"
	CommandHelp       Command = "help"
)

// Parsed is the result of command-line parsing. Only the fields relevant
// to the parsed command are populated.
type Parsed struct {
	Command    Command
	Subcommand string
	ConfigPath string
	ShowHelp   bool

	// choose <id>, category edit/rm <id>, prompt show/set/clear <id>
	CategoryID string

	// category add/edit
	Name *string
	Icon *string

	// notes search, prompt set
	Text string

	// notes copy [n], 1-based from most recent; 0 means latest
	NoteIndex int

	// token set
	TokenValue string
}

// Parse interprets the process arguments. Global flags may appear before
// the command; everything after the command is command-specific.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	i := 0
	for ; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			return Parsed{Command: CommandHelp, ShowHelp: true, ConfigPath: parsed.ConfigPath}, nil
		case "--version":
			return Parsed{Command: CommandVersion, ConfigPath: parsed.ConfigPath}, nil
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}
			return parseCommand(parsed, Command(arg), args[i+1:])
		}
	}

	return parsed, nil
}

func parseCommand(parsed Parsed, cmd Command, rest []string) (Parsed, error) {
	parsed.Command = cmd
	parsed.ShowHelp = cmd == CommandHelp

	switch cmd {
	case CommandRecord, CommandStop, CommandCancel, CommandStatus,
		CommandCategories, CommandDevices, CommandDoctor, CommandVersion, CommandHelp:
		if len(rest) != 0 {
			return Parsed{}, fmt.Errorf("unexpected arguments after command %q", cmd)
		}
		return parsed, nil

	case CommandChoose:
		if len(rest) != 1 {
			return Parsed{}, errors.New("usage: choose <category-id>")
		}
		parsed.CategoryID = rest[0]
		return parsed, nil

	case CommandNotes:
		return parseNotes(parsed, rest)

	case CommandCategory:
		return parseCategory(parsed, rest)

	case CommandPrompt:
		return parsePrompt(parsed, rest)

	case CommandToken:
		return parseToken(parsed, rest)

	default:
		return Parsed{}, fmt.Errorf("unknown command: %s", cmd)
	}
}

func parseNotes(parsed Parsed, rest []string) (Parsed, error) {
	if len(rest) == 0 {
		return parsed, nil
	}

	switch rest[0] {
	case "search":
		if len(rest) < 2 {
			return Parsed{}, errors.New("usage: notes search <query>")
		}
		parsed.Subcommand = "search"
		parsed.Text = strings.Join(rest[1:], " ")
		return parsed, nil
	case "copy":
		parsed.Subcommand = "copy"
		switch len(rest) {
		case 1:
			return parsed, nil
		case 2:
			n, err := strconv.Atoi(rest[1])
			if err != nil || n < 1 {
				return Parsed{}, fmt.Errorf("notes copy: index must be a positive number, got %q", rest[1])
			}
			parsed.NoteIndex = n
			return parsed, nil
		default:
			return Parsed{}, errors.New("usage: notes copy [n]")
		}
	default:
		return Parsed{}, fmt.Errorf("unknown notes subcommand: %s", rest[0])
	}
}

func parseCategory(parsed Parsed, rest []string) (Parsed, error) {
	if len(rest) == 0 {
		return Parsed{}, errors.New("usage: category <add|edit|rm> ...")
	}
	parsed.Subcommand = rest[0]
	rest = rest[1:]

	switch parsed.Subcommand {
	case "add":
		if len(rest) < 1 || len(rest) > 2 {
			return Parsed{}, errors.New("usage: category add <name> [icon]")
		}
		parsed.Name = &rest[0]
		if len(rest) == 2 {
			parsed.Icon = &rest[1]
		}
		return parsed, nil

	case "edit":
		if len(rest) < 1 {
			return Parsed{}, errors.New("usage: category edit <id> [--name NAME] [--icon ICON]")
		}
		parsed.CategoryID = rest[0]
		rest = rest[1:]
		for len(rest) > 0 {
			switch rest[0] {
			case "--name":
				if len(rest) < 2 {
					return Parsed{}, errors.New("--name requires a value")
				}
				parsed.Name = &rest[1]
			case "--icon":
				if len(rest) < 2 {
					return Parsed{}, errors.New("--icon requires a value")
				}
				parsed.Icon = &rest[1]
			default:
				return Parsed{}, fmt.Errorf("unknown category edit flag: %s", rest[0])
			}
			rest = rest[2:]
		}
		if parsed.Name == nil && parsed.Icon == nil {
			return Parsed{}, errors.New("category edit: provide --name and/or --icon")
		}
		return parsed, nil

	case "rm":
		if len(rest) != 1 {
			return Parsed{}, errors.New("usage: category rm <id>")
		}
		parsed.CategoryID = rest[0]
		return parsed, nil

	default:
		return Parsed{}, fmt.Errorf("unknown category subcommand: %s", parsed.Subcommand)
	}
}

func parsePrompt(parsed Parsed, rest []string) (Parsed, error) {
	if len(rest) == 0 {
		return Parsed{}, errors.New("usage: prompt <show|set|clear> <id> ...")
	}
	parsed.Subcommand = rest[0]
	rest = rest[1:]

	switch parsed.Subcommand {
	case "show", "clear":
		if len(rest) != 1 {
			return Parsed{}, fmt.Errorf("usage: prompt %s <id>", parsed.Subcommand)
		}
		parsed.CategoryID = rest[0]
		return parsed, nil

	case "set":
		if len(rest) < 2 {
			return Parsed{}, errors.New("usage: prompt set <id> <text>")
		}
		parsed.CategoryID = rest[0]
		parsed.Text = strings.Join(rest[1:], " ")
		return parsed, nil

	default:
		return Parsed{}, fmt.Errorf("unknown prompt subcommand: %s", parsed.Subcommand)
	}
}

func parseToken(parsed Parsed, rest []string) (Parsed, error) {
	if len(rest) == 0 {
		return Parsed{}, errors.New("usage: token <set|clear> ...")
	}
	parsed.Subcommand = rest[0]
	rest = rest[1:]

	switch parsed.Subcommand {
	case "set":
		if len(rest) != 1 {
			return Parsed{}, errors.New("usage: token set <value>")
		}
		parsed.TokenValue = rest[0]
		return parsed, nil

	case "clear":
		if len(rest) != 0 {
			return Parsed{}, errors.New("usage: token clear")
		}
		return parsed, nil

	default:
		return Parsed{}, fmt.Errorf("unknown token subcommand: %s", parsed.Subcommand)
	}
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command>

Recording:
  record                Start a recording session
  stop                  Stop recording and transcribe
  cancel                Cancel recording or category choice
  choose <id>           Pick the category for the pending transcript
  status                Print current session state

Notes:
  notes                 List saved notes, newest first
  notes search <query>  Filter notes by substring match
  notes copy [n]        Copy the nth newest note to the clipboard

Categories:
  categories            List the effective category set
  category add <name> [icon]
  category edit <id> [--name NAME] [--icon ICON]
  category rm <id>
  prompt show <id>      Print the effective prompt for a category
  prompt set <id> <text>
  prompt clear <id>     Revert a category to its preset prompt

Setup:
  token set <value>     Store the SiliconFlow API token
  token clear           Remove the stored token
  devices               List available input devices
  doctor                Run configuration and environment checks
  version               Print version information
  help                  Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/voicenote/config.jsonc)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
