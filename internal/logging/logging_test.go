package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWithWriterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, LevelInfo)
	l.Debug("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("debug line leaked through an info-level logger: %q", buf.String())
	}
	l.Info("hello", "key", "value")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("expected the info line to be written, got %q", buf.String())
	}
}

func TestDiscardDropsEverything(t *testing.T) {
	l := Discard()
	l.Info("anything")
	l.Error("anything else")
}

func TestWithPrefixTagsLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, LevelInfo).WithPrefix("layout")
	l.Info("assembling")
	if !strings.Contains(buf.String(), "layout") {
		t.Fatalf("expected prefixed logger output to mention its prefix, got %q", buf.String())
	}
}
