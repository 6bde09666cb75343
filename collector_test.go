package slogsnap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/slogsnap/slogsnap/internal/testutil"
)

func TestCollector_Snapshot(t *testing.T) {
	log := InitDebugLevel()
	defer log.Close()

	slog.Info("First log")
	first := testutil.Here(t) - 1

	want := fmt.Sprintf("㏒   INFO  First log\n%s\n\n", testutil.At(t, first))
	if got := log.String(); got != want {
		t.Errorf("rendered %q, want %q", got, want)
	}

	slog.Debug("Second log")
	second := testutil.Here(t) - 1
	slog.Info("Third log")
	third := testutil.Here(t) - 1

	want = fmt.Sprintf("㏒  DEBUG  Second log\n%s\n\n   INFO  Third log\n%s\n\n",
		testutil.At(t, second), testutil.At(t, third))
	if got := log.String(); got != want {
		t.Errorf("rendered %q, want %q", got, want)
	}
}

func TestCollector_SeverityFilter(t *testing.T) {
	log := InitInfoLevel()
	defer log.Close()

	slog.Debug("below the threshold")

	if got := log.String(); got != "㏒" {
		t.Errorf("rendered %q, want just the prefix", got)
	}
}

func TestCollector_TraceLevel(t *testing.T) {
	log := InitTraceLevel()
	defer log.Close()

	slog.Log(context.Background(), LevelTrace, "deep detail")

	got := log.String()
	if !strings.Contains(got, "  TRACE  deep detail\n") {
		t.Errorf("rendered %q, want a TRACE block", got)
	}
}

func TestCollector_RenderIsDestructive(t *testing.T) {
	log := InitDebugLevel()
	defer log.Close()

	slog.Info("only once")

	first := log.String()
	if !strings.Contains(first, "only once") {
		t.Errorf("first render %q missing the message", first)
	}
	if got := log.String(); got != "㏒" {
		t.Errorf("second render %q, want just the prefix", got)
	}
}

func TestCollector_Clear(t *testing.T) {
	log := InitDebugLevel()
	defer log.Close()

	slog.Info("discarded without rendering")
	log.Clear()

	if got := log.String(); got != "㏒" {
		t.Errorf("render after Clear = %q, want just the prefix", got)
	}
}

func TestCollector_Prefix(t *testing.T) {
	log := InitDebugLevel()
	defer log.Close()

	// Changing the prefix after content is buffered still applies it,
	// exactly once, to the next render.
	slog.Info("buffered before SetPrefix")
	log.SetPrefix('→')

	got := log.String()
	if !strings.HasPrefix(got, "→") {
		t.Errorf("rendered %q, want '→' prefix", got)
	}
	if strings.Count(got, "→") != 1 {
		t.Errorf("prefix applied %d times in %q, want once", strings.Count(got, "→"), got)
	}

	log.RemovePrefix()
	slog.Info("no prefix now")
	got = log.String()
	if !strings.HasPrefix(got, "   INFO  no prefix now") {
		t.Errorf("rendered %q, want unprefixed record", got)
	}

	log.RemovePrefix()
	if got := log.String(); got != "" {
		t.Errorf("empty render without prefix = %q, want \"\"", got)
	}
}

func TestCollector_StripsEscapes(t *testing.T) {
	log := InitDebugLevel()
	defer log.Close()

	slog.Warn("colored on the wire")

	// The handler writes ANSI-styled output into the buffer; the rendered
	// string must carry none of it.
	if _, err := log.buf.Write([]byte("\x1b[1;31mraw red\x1b[0m\n")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	got := log.String()
	if strings.Contains(got, "\x1b") {
		t.Errorf("rendered output still contains escape bytes: %q", got)
	}
	if !strings.Contains(got, "raw red\n") {
		t.Errorf("rendered %q, want the message to survive stripping", got)
	}
}

func TestCollector_RenderInvalidUTF8(t *testing.T) {
	log := InitDebugLevel()
	defer log.Close()

	if _, err := log.buf.Write([]byte{0xff, 0xfe}); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	if _, err := log.Render(); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("Render error = %v, want ErrInvalidUTF8", err)
	}
}

func TestCollector_StringPanicsOnInvalidUTF8(t *testing.T) {
	log := InitDebugLevel()
	defer log.Close()

	if _, err := log.buf.Write([]byte{0xff}); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("String did not panic on invalid UTF-8 capture")
		}
	}()
	_ = log.String()
}

func TestCollector_CloseRestoresDefault(t *testing.T) {
	prev := slog.Default()

	log := InitInfoLevel()
	if slog.Default() == prev {
		t.Fatal("Init did not install a new default logger")
	}

	log.Close()
	if slog.Default() != prev {
		t.Error("Close did not restore the previous default logger")
	}

	// Idempotent: a second Close must not disturb the restored logger.
	log.Close()
	if slog.Default() != prev {
		t.Error("second Close disturbed the restored default logger")
	}
}

func TestCollector_ConcurrentLogging(t *testing.T) {
	const (
		workers = 8
		repeats = 25
	)

	log := InitDebugLevel()
	defer log.Close()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < repeats; j++ {
				slog.Info(fmt.Sprintf("worker %d message %d", id, j))
			}
		}(i)
	}
	wg.Wait()

	got := log.String()
	for i := 0; i < workers; i++ {
		for j := 0; j < repeats; j++ {
			msg := fmt.Sprintf("worker %d message %d\n", i, j)
			if n := strings.Count(got, msg); n != 1 {
				t.Fatalf("message %q appears %d times, want 1", msg, n)
			}
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		{"trace", LevelTrace, false},
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLevel(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
