// Package slogsnap collects a copy of all slog output into a memory buffer
// so tests can assert it against snapshot literals.
//
// A Collector installs itself as the process's default slog logger and tees
// every record to both an internal capture buffer and stdout, so interactive
// test runs still show logs. Rendering the Collector (via String or Render)
// drains the buffer, strips ANSI escape sequences, and prepends a prefix
// glyph, yielding a byte-stable string suitable for snapshot comparison.
//
// IMPORTANT: slogsnap is meant for tests. The capture buffer grows until it
// is read, cleared, or the Collector is closed; using it in production will
// eventually exhaust memory.
//
// # Rendering
//
// Each render is destructive: it atomically swaps the buffer out for an
// empty one, so two renders in a row without intervening log activity yield
// only the prefix (or the empty string) the second time. The default prefix
// is '㏒', which keeps leading whitespace intact inside raw-string snapshot
// literals; it can be changed with SetPrefix or dropped with RemovePrefix.
//
// # Usage
//
//	func TestLogs(t *testing.T) {
//		log := slogsnap.InitDebugLevel()
//		defer log.Close()
//
//		slog.Info("First log")
//
//		got := log.String()
//		// got == "㏒   INFO  First log\n    at pkg/file_test.go:9\n\n"
//	}
package slogsnap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/slogsnap/slogsnap/internal/capture"
	"github.com/slogsnap/slogsnap/internal/pretty"
)

// DefaultPrefix is the glyph prepended to each rendered capture. It marks
// where log output starts inside surrounding test-fixture text and keeps
// snapshot literals from beginning with stripped leading whitespace.
const DefaultPrefix = '㏒'

// LevelTrace is the most verbose severity, below slog.LevelDebug.
const LevelTrace = pretty.LevelTrace

// ErrInvalidUTF8 is returned by Render when the captured bytes are not
// valid UTF-8 after escape-sequence stripping. Corrupted log text is
// surfaced rather than lossily decoded so it cannot hide inside a
// passing snapshot.
var ErrInvalidUTF8 = errors.New("captured log contains invalid UTF-8")

// Collector captures slog output for the duration of a test.
//
// A Collector is created with Init (or one of the level-specific
// constructors), which installs it as the default slog logger, and released
// with Close, which restores the previous logger. Only one Collector should
// be active at a time; slog's single default-logger slot makes a second
// concurrent install shadow the first.
type Collector struct {
	buf *capture.Buffer

	mu        sync.Mutex
	prefix    rune
	hasPrefix bool
	prev      *slog.Logger
	closed    bool
}

// Init creates a Collector capturing records at or above level and installs
// it as the default slog logger. Records are teed to stdout as well, with
// ANSI colors, so failing or verbose test runs remain readable.
//
// The previous default logger is retained and restored by Close.
func Init(level slog.Level) *Collector {
	c := &Collector{
		buf:       capture.NewBuffer(),
		prefix:    DefaultPrefix,
		hasPrefix: true,
		prev:      slog.Default(),
	}

	handler := pretty.NewHandler(
		io.MultiWriter(c.buf.Writer(), os.Stdout),
		&pretty.Options{Level: level},
	)
	slog.SetDefault(slog.New(handler))
	return c
}

// InitTraceLevel creates a Collector that captures records down to TRACE.
func InitTraceLevel() *Collector {
	return Init(LevelTrace)
}

// InitDebugLevel creates a Collector that captures records down to DEBUG.
func InitDebugLevel() *Collector {
	return Init(slog.LevelDebug)
}

// InitInfoLevel creates a Collector that captures records down to INFO.
func InitInfoLevel() *Collector {
	return Init(slog.LevelInfo)
}

// SetPrefix changes the glyph prepended to future renders. It takes effect
// on the next render; content already buffered is unaffected until then.
func (c *Collector) SetPrefix(prefix rune) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prefix = prefix
	c.hasPrefix = true
}

// RemovePrefix makes future renders return the captured text with no
// prefix glyph.
func (c *Collector) RemovePrefix() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hasPrefix = false
}

// Clear drains and discards everything captured so far without rendering
// it. Use it to reset state between assertions.
func (c *Collector) Clear() {
	c.buf.Clear()
}

// Render drains the capture buffer, strips ANSI escape sequences, and
// prepends the configured prefix.
//
// Render is destructive: concurrent writers accumulate into a fresh buffer
// from the moment of the drain, and a second Render without new log
// activity returns only the prefix. It returns ErrInvalidUTF8 (wrapped) if
// the captured bytes are not valid text.
func (c *Collector) Render() (string, error) {
	raw := c.buf.Drain()

	cleaned := ansi.Strip(string(raw))
	if !utf8.ValidString(cleaned) {
		return "", fmt.Errorf("rendering captured log: %w", ErrInvalidUTF8)
	}

	c.mu.Lock()
	prefix, hasPrefix := c.prefix, c.hasPrefix
	c.mu.Unlock()

	if hasPrefix {
		return string(prefix) + cleaned, nil
	}
	return cleaned, nil
}

// String renders the capture, implementing fmt.Stringer.
//
// A render failure panics: in a test context an invalid capture means the
// log stream itself is corrupted, and aborting loudly beats producing a
// misleading snapshot. Use Render to receive the error instead.
func (c *Collector) String() string {
	s, err := c.Render()
	if err != nil {
		panic(err)
	}
	return s
}

// Close tears the Collector down: it discards any remaining captured
// bytes, releases the buffer's backing storage, and restores the default
// slog logger that was active before Init.
//
// Close is idempotent. A closed Collector cannot be re-activated; create a
// new one instead. Writer adapters already handed to slog keep the (now
// empty) buffer alive, bounding retained memory to a small constant.
func (c *Collector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	c.buf.Teardown()
	slog.SetDefault(c.prev)
}

// ParseLevel converts a severity name ("trace", "debug", "info", "warn",
// "error") to its slog level. Matching is case-insensitive.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown severity level %q", s)
	}
}
