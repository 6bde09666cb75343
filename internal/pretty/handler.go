// Package pretty provides the slog.Handler that formats captured records
// for snapshot comparison.
//
// Each record is rendered as a fixed, timestamp-free block:
//
//	   INFO  message key=value
//	    at dir/file.go:42
//
// followed by a blank line. Severity labels are right-aligned and colored
// with ANSI escape sequences so interactive test runs stay readable; the
// collector strips the color codes before snapshotting.
package pretty

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// LevelTrace extends slog's level set with a level below Debug, matching
// the most-verbose canonical severity (trace < debug < info < warn < error).
const LevelTrace = slog.LevelDebug - 4

// labelWidth is the column the right-aligned severity label ends at.
// "DEBUG" (the widest used label) plus two leading spaces.
const labelWidth = 7

// Options configures a Handler.
type Options struct {
	// Level is the most verbose severity that will be captured, inclusive.
	// Records below it are dropped. Defaults to slog.LevelInfo.
	Level slog.Leveler

	// NoColor disables ANSI styling of severity labels and source
	// locations.
	NoColor bool
}

// Handler is a slog.Handler that writes pretty-formatted records to a
// single writer, typically a tee of the capture buffer and stdout.
type Handler struct {
	opts   Options
	groups string // dotted prefix applied to attr keys added from here on
	attrs  string // preformatted attrs accumulated via WithAttrs
	st     styles

	mu *sync.Mutex
	w  io.Writer
}

type styles struct {
	trace    lipgloss.Style
	debug    lipgloss.Style
	info     lipgloss.Style
	warn     lipgloss.Style
	err      lipgloss.Style
	location lipgloss.Style
}

// NewHandler creates a Handler writing to w.
//
// Styling is forced to the ANSI color profile regardless of whether w is a
// terminal: the capture buffer is never a terminal, and the collector
// relies on escape sequences being present so that stripping them is
// exercised on every render.
func NewHandler(w io.Writer, opts *Options) *Handler {
	h := &Handler{
		mu: &sync.Mutex{},
		w:  w,
	}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}

	r := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.ANSI))
	h.st = styles{
		trace:    r.NewStyle().Foreground(lipgloss.Color("5")),
		debug:    r.NewStyle().Foreground(lipgloss.Color("4")),
		info:     r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:     r.NewStyle().Foreground(lipgloss.Color("3")),
		err:      r.NewStyle().Foreground(lipgloss.Color("1")),
		location: r.NewStyle().Faint(true),
	}
	return h
}

// Enabled reports whether records at the given level are captured.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle formats the record and writes it as one block.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	label := fmt.Sprintf("%*s", labelWidth, Label(r.Level))
	if !h.opts.NoColor {
		label = h.labelStyle(r.Level).Render(label)
	}
	b.WriteString(label)
	b.WriteString("  ")
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.groups, a)
		return true
	})
	b.WriteByte('\n')

	if file, line := recordSource(r); file != "" {
		loc := fmt.Sprintf("    at %s:%d", ShortSource(file), line)
		if !h.opts.NoColor {
			loc = h.st.location.Render(loc)
		}
		b.WriteString(loc)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// WithAttrs returns a handler that includes attrs in every record block.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&b, h.groups, a)
	}
	h2.attrs = b.String()
	return &h2
}

// WithGroup returns a handler that qualifies subsequent attr keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = h.groups + name + "."
	return &h2
}

// Label returns the fixed-width severity label text for a level. Levels
// between the canonical ones round down to the nearest label.
func Label(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ShortSource trims a source file path to its last two components,
// e.g. "/home/u/proj/collector_test.go" becomes "proj/collector_test.go".
func ShortSource(file string) string {
	if i := strings.LastIndexByte(file, '/'); i >= 0 {
		if j := strings.LastIndexByte(file[:i], '/'); j >= 0 {
			return file[j+1:]
		}
	}
	return file
}

func (h *Handler) labelStyle(level slog.Level) lipgloss.Style {
	switch {
	case level < slog.LevelDebug:
		return h.st.trace
	case level < slog.LevelInfo:
		return h.st.debug
	case level < slog.LevelWarn:
		return h.st.info
	case level < slog.LevelError:
		return h.st.warn
	default:
		return h.st.err
	}
}

func appendAttr(b *strings.Builder, groups string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		prefix := groups
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range v.Group() {
			appendAttr(b, prefix, ga)
		}
		return
	}
	// An empty-keyed attr carries no information.
	if a.Key == "" {
		return
	}
	fmt.Fprintf(b, " %s=%v", groups+a.Key, v.Any())
}

func recordSource(r slog.Record) (file string, line int) {
	if r.PC == 0 {
		return "", 0
	}
	frames := runtime.CallersFrames([]uintptr{r.PC})
	f, _ := frames.Next()
	return f.File, f.Line
}
