package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestTextFormatterFieldsSortedAndLeveled(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithLevel(DebugLevel), WithFormatter(&TextFormatter{}), WithOutput(NewWriterOutput(&buf)))
	l.Info("hello", Str("b", "2"), Str("a", "1"))
	line := buf.String()
	if !strings.Contains(line, "INFO") || !strings.Contains(line, "hello") {
		t.Fatalf("unexpected line: %q", line)
	}
	if strings.Index(line, "a=1") > strings.Index(line, "b=2") {
		t.Fatalf("fields not sorted: %q", line)
	}
}

func TestLevelGating(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithLevel(WarnLevel), WithFormatter(&TextFormatter{}), WithOutput(NewWriterOutput(&buf)))
	l.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be gated at warn level, got %q", buf.String())
	}
	l.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn should pass: %q", buf.String())
	}
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithLevel(InfoLevel), WithFormatter(&JSONFormatter{}), WithOutput(NewWriterOutput(&buf)))
	l.With(Component("vault"), Str("tenant", "t1")).Info("op done", Int("n", 3))
	var obj map[string]any
	if err := json.Unmarshal(buf.Bytes(), &obj); err != nil {
		t.Fatalf("invalid json line: %v", err)
	}
	if obj["component"] != "vault" || obj["tenant"] != "t1" {
		t.Fatalf("missing carried fields: %v", obj)
	}
	if obj["msg"] != "op done" {
		t.Fatalf("missing message: %v", obj)
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("debug"); err != nil || l != DebugLevel {
		t.Fatalf("want debug, got %v err=%v", l, err)
	}
	if _, err := ParseLevel("nope"); err == nil {
		t.Fatalf("want error for unknown level")
	}
}
