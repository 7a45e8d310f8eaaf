package indicator

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const notificationsBus = "org.freedesktop.Notifications"
const notificationsPath = "/org/freedesktop/Notifications"

// desktopNotify posts a freedesktop notification through busctl and returns
// the server-assigned notification ID. A non-zero replaceID updates the
// existing notification in place.
func desktopNotify(ctx context.Context, appName string, replaceID uint32, summary string, timeoutMS int) (uint32, error) {
	out, err := callNotifications(ctx, "Notify",
		"susssasa{sv}i",
		appName,
		strconv.FormatUint(uint64(replaceID), 10),
		"", // icon
		summary,
		"",  // body
		"0", // actions array length
		"0", // hints map length
		strconv.Itoa(timeoutMS),
	)
	if err != nil {
		return 0, fmt.Errorf("desktop notify failed: %w", err)
	}

	// busctl prints the reply signature and value, e.g. "u 42".
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

// desktopDismiss closes a previously posted notification by ID.
func desktopDismiss(ctx context.Context, id uint32) error {
	_, err := callNotifications(ctx, "CloseNotification", "u", strconv.FormatUint(uint64(id), 10))
	if err != nil {
		return fmt.Errorf("desktop dismiss failed: %w", err)
	}
	return nil
}

func callNotifications(ctx context.Context, method string, args ...string) (string, error) {
	busctlArgs := append(
		[]string{"--user", "call", notificationsBus, notificationsPath, notificationsBus, method},
		args...,
	)

	out, err := exec.CommandContext(ctx, "busctl", busctlArgs...).CombinedOutput()
	trimmed := strings.TrimSpace(string(out))
	if err != nil {
		if trimmed == "" {
			return "", err
		}
		return "", fmt.Errorf("%w (%s)", err, trimmed)
	}
	return trimmed, nil
}
