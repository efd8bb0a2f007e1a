//go:build debug

package assert

// Enabled reports whether violations panic.
const Enabled = true

// In debug builds a violation panics.
func violated(msg string) {
	panic("invariant violated: " + msg)
}
