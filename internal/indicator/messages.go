package indicator

type messages struct {
	recording    string
	transcribing string
	choosing     string
	generating   string
	saved        string
	errorText    string
}

func defaultMessages() messages {
	return messages{
		recording:    "Recording…",
		transcribing: "Transcribing…",
		choosing:     "Choose a category",
		generating:   "Generating…",
		saved:        "Note saved",
		errorText:    "Voice note error",
	}
}
