package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	clipboard := "wl-copy --trim-newline"

	return Config{
		API: APIConfig{
			BaseURL:         "https://api.siliconflow.cn/v1",
			TranscribeModel: "TeleAI/TeleSpeechASR",
			GenerateModel:   "deepseek-ai/DeepSeek-V3",
		},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Copy: CopyConfig{Auto: false},
		Notify: NotifyConfig{
			Enable:  true,
			AppName: "voicenote",
		},
		Clipboard: CommandConfig{Raw: clipboard, Argv: mustParseArgv(clipboard)},
		Debug:     DebugConfig{},
	}
}
