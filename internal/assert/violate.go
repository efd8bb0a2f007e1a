//go:build !debug

package assert

import "log/slog"

// Enabled reports whether violations panic.
const Enabled = false

// In production builds a violation is logged and execution continues.
func violated(msg string) {
	slog.Error("invariant violated", "detail", msg)
}
