// Package doctor runs runtime readiness diagnostics for config, storage,
// audio, and the SiliconFlow API.
package doctor

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rbright/voicenote/internal/audio"
	"github.com/rbright/voicenote/internal/category"
	"github.com/rbright/voicenote/internal/config"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks.
func Run(cfg config.Loaded, settings category.Settings, dataDir string) Report {
	checks := []Check{}

	configMessage := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		configMessage = fmt.Sprintf("using defaults; %q not found", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: configMessage})

	checks = append(checks, checkToken(settings))
	checks = append(checks, checkStorage(dataDir))
	checks = append(checks, checkCommand(cfg.Config.Clipboard.Argv, "clipboard_cmd"))

	if cfg.Config.Notify.Enable {
		checks = append(checks, checkBinary("busctl", "desktop notifications require busctl"))
	}

	checks = append(checks, checkAudioSelection(cfg.Config))
	checks = append(checks, checkAPIReachable(cfg.Config, settings))

	return Report{Checks: checks}
}

// checkToken verifies an API token is configured.
func checkToken(settings category.Settings) Check {
	if strings.TrimSpace(settings.APIToken) == "" {
		return Check{Name: "api.token", Pass: false, Message: "no API token configured; run: voicenote token set <value>"}
	}
	return Check{Name: "api.token", Pass: true, Message: "API token configured"}
}

// checkStorage verifies the data directory is writable.
func checkStorage(dataDir string) Check {
	if strings.TrimSpace(dataDir) == "" {
		return Check{Name: "storage", Pass: false, Message: "data directory is not resolved"}
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return Check{Name: "storage", Pass: false, Message: fmt.Sprintf("create data dir: %v", err)}
	}

	probe := filepath.Join(dataDir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return Check{Name: "storage", Pass: false, Message: fmt.Sprintf("data dir not writable: %v", err)}
	}
	_ = os.Remove(probe)
	return Check{Name: "storage", Pass: true, Message: fmt.Sprintf("data dir writable at %s", dataDir)}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(cfg config.Config) Check {
	selection, err := audio.SelectDevice(context.Background(), cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkAPIReachable probes the configured API base URL. Any HTTP response
// below 500 counts as reachable; auth problems surface at request time.
func checkAPIReachable(cfg config.Config, settings category.Settings) Check {
	base := strings.TrimSpace(cfg.API.BaseURL)
	if base == "" {
		return Check{Name: "api.reachable", Pass: false, Message: "api.base_url is empty"}
	}

	url := strings.TrimRight(base, "/") + "/models"
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return Check{Name: "api.reachable", Pass: false, Message: fmt.Sprintf("build request: %v", err)}
	}
	if token := strings.TrimSpace(settings.APIToken); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := http.Client{Timeout: 3 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Check{Name: "api.reachable", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Check{Name: "api.reachable", Pass: false, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, url)}
	}
	return Check{Name: "api.reachable", Pass: true, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, url)}
}
