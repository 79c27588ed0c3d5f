package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn", "json")
	t.Cleanup(func() { InitWriter(&bytes.Buffer{}, "warn", "json") })

	Debug("hidden %d", 1)
	Info("hidden %d", 2)
	Warn("dropped match %d", 3)
	Error("boom")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug/info should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "[WARN] dropped match 3") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] boom") {
		t.Errorf("missing error line: %q", out)
	}
	if Enabled(DebugLevel) || !Enabled(WarnLevel) || !Enabled(ErrorLevel) {
		t.Error("Enabled disagrees with the warn threshold")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": DebugLevel, "INFO": InfoLevel, "warning": WarnLevel,
		"error": ErrorLevel, "bogus": InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %d, want %d", in, got, want)
		}
	}
}
