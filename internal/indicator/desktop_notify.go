package indicator

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// busctlCall invokes one org.freedesktop.Notifications method via busctl
// and returns the trimmed command output.
func busctlCall(ctx context.Context, method string, signature string, args ...string) (string, error) {
	call := append([]string{
		"--user",
		"call",
		"org.freedesktop.Notifications",
		"/org/freedesktop/Notifications",
		"org.freedesktop.Notifications",
		method,
		signature,
	}, args...)

	out, err := exec.CommandContext(ctx, "busctl", call...).CombinedOutput()
	trimmed := strings.TrimSpace(string(out))
	if err != nil {
		if trimmed == "" {
			return "", fmt.Errorf("busctl %s failed: %w", method, err)
		}
		return "", fmt.Errorf("busctl %s failed: %w (%s)", method, err, trimmed)
	}
	return trimmed, nil
}

// desktopNotify sends a freedesktop notification and returns the
// notification ID assigned by the server.
func desktopNotify(ctx context.Context, appName string, replaceID uint32, summary string, timeoutMS int) (uint32, error) {
	out, err := busctlCall(ctx, "Notify", "susssasa{sv}i",
		appName,
		strconv.FormatUint(uint64(replaceID), 10),
		"",
		summary,
		"",
		"0", // actions array length
		"0", // hints map length
		strconv.Itoa(timeoutMS),
	)
	if err != nil {
		return 0, err
	}

	fields := strings.Fields(out)
	if len(fields) < 2 || fields[0] != "u" {
		return 0, fmt.Errorf("desktop notify invalid response: %q", out)
	}

	value, parseErr := strconv.ParseUint(fields[1], 10, 32)
	if parseErr != nil {
		return 0, fmt.Errorf("desktop notify parse id %q: %w", fields[1], parseErr)
	}
	return uint32(value), nil
}

// desktopDismiss requests explicit close by notification ID.
func desktopDismiss(ctx context.Context, id uint32) error {
	_, err := busctlCall(ctx, "CloseNotification", "u", strconv.FormatUint(uint64(id), 10))
	return err
}
