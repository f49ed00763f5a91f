// Package config resolves, parses, validates, and defaults voicenote
// runtime configuration.
package config

// Config is the fully materialized runtime configuration used by voicenote.
type Config struct {
	API       APIConfig
	Audio     AudioConfig
	Copy      CopyConfig
	Notify    NotifyConfig
	Clipboard CommandConfig
	Debug     DebugConfig
}

// APIConfig controls the SiliconFlow endpoint and model selection.
type APIConfig struct {
	BaseURL         string
	TranscribeModel string
	GenerateModel   string
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string
	Fallback string
}

// CopyConfig controls clipboard behavior after note generation.
type CopyConfig struct {
	Auto bool
}

// NotifyConfig controls desktop notification behavior.
type NotifyConfig struct {
	Enable  bool
	AppName string
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	EnableAudioDump bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
