package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	baseURL := strings.TrimSpace(cfg.API.BaseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("api.base_url must not be empty")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("api.base_url must start with http:// or https://")
	}
	if strings.TrimSpace(cfg.API.TranscribeModel) == "" {
		return nil, fmt.Errorf("api.transcribe_model must not be empty")
	}
	if strings.TrimSpace(cfg.API.GenerateModel) == "" {
		return nil, fmt.Errorf("api.generate_model must not be empty")
	}
	if cfg.Notify.Enable && strings.TrimSpace(cfg.Notify.AppName) == "" {
		return nil, fmt.Errorf("notify.app_name must not be empty when notify.enable=true")
	}
	if len(cfg.Clipboard.Argv) == 0 {
		return nil, fmt.Errorf("clipboard_cmd must not be empty")
	}

	if strings.HasPrefix(baseURL, "http://") {
		warnings = append(warnings, Warning{Message: "api.base_url uses plain http; the bearer token will be sent unencrypted"})
	}

	return warnings, nil
}
