// Package assert guards internal invariants on the planning path. Debug builds
// panic on a violated invariant; production builds log it and carry on so the
// control loop keeps producing output.
package assert

import "fmt"

// That checks cond and reports a violation described by format and args.
// It returns cond so callers can fall back inline:
//
//	if !assert.That(ok, "path is empty") { return fallback }
func That(cond bool, format string, args ...any) bool {
	if !cond {
		violated(fmt.Sprintf(format, args...))
	}
	return cond
}

// NoError reports err as a violation when it is non-nil.
func NoError(err error, context string) bool {
	if err != nil {
		violated(fmt.Sprintf("%s: %v", context, err))
		return false
	}
	return true
}
