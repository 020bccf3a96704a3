package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSourceTail(t *testing.T) {
	dir := t.TempDir()
	content := "line one\nline two\nline three\n"
	if err := os.WriteFile(filepath.Join(dir, "bot.log"), []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	src := NewFileSource(dir)
	lines, err := src.Tail(context.Background(), "bot", 2)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "line two" || lines[1] != "line three" {
		t.Errorf("Wrong tail window: %v", lines)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(t.TempDir())
	lines, err := src.Tail(context.Background(), "absent", 10)
	if err != nil {
		t.Fatalf("Missing log file must not error: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("Expected no lines, got %v", lines)
	}
}

func TestFileSourceSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bot.log"), []byte("a\n\n   \nb\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	src := NewFileSource(dir)
	lines, err := src.Tail(context.Background(), "bot", 0)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(lines) != 2 || lines[0] != "a" || lines[1] != "b" {
		t.Errorf("Expected [a b], got %v", lines)
	}
}

func TestSampleSourceServesStatus(t *testing.T) {
	src := NewSampleSource("log-reader", []string{"trader-a", "trader-b"})

	lines, err := src.Tail(context.Background(), "log-reader", 0)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(lines) == 0 {
		t.Fatal("Expected sample status lines")
	}

	lines, err = src.Tail(context.Background(), "unknown", 0)
	if err != nil {
		t.Fatalf("tail unknown: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("Unknown container must yield no lines, got %v", lines)
	}
}
