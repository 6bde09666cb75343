// Package testutil provides testing helpers for slogsnap tests.
package testutil

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/slogsnap/slogsnap/internal/pretty"
)

// Here returns the source line number of the call site. Tests use it to
// record where a log statement was emitted without hard-coding line numbers
// that shift with every edit.
func Here(t *testing.T) int {
	t.Helper()

	_, _, line, ok := runtime.Caller(1)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return line
}

// At returns the "    at <file>:<line>" trailer that rendered records carry
// for a log statement at the given line of the calling test file.
func At(t *testing.T, line int) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(1)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return fmt.Sprintf("    at %s:%d", pretty.ShortSource(file), line)
}
