package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voicecheck/internal/reconcile"
)

func TestWrite(t *testing.T) {
	verdicts := []reconcile.Verdict{
		{ID: "A1", Similarity: 0.95, ScriptText: "こんにちは", RecognizedText: "こんにちは", Status: reconcile.StatusSuccess},
		{ID: "B1", Similarity: 0.5, ScriptText: `say "hi", ok`, RecognizedText: "line\nbreak", Status: reconcile.StatusWarning},
		{ID: "C1", Similarity: 0, ScriptText: "x", Status: reconcile.StatusError},
	}
	var buf bytes.Buffer
	if err := Write(&buf, verdicts); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "id,similarity,script,recognized,status\n" +
		"A1,0.9500,こんにちは,こんにちは,success\n" +
		"B1,0.5000,\"say \"\"hi\"\", ok\",\"line\nbreak\",warning\n" +
		"C1,0.0000,x,,error\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected export:\n%q\nwant\n%q", got, want)
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "id,similarity,script,recognized,status\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestEscape(t *testing.T) {
	tests := map[string]string{
		"plain":  "plain",
		"a,b":    `"a,b"`,
		`q"uote`: `"q""uote"`,
		"cr\rlf": "\"cr\rlf\"",
		"":       "",
		"タブ\tok": "タブ\tok",
	}
	for in, want := range tests {
		if got := Escape(in); got != want {
			t.Fatalf("Escape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDefaultPath(t *testing.T) {
	now := time.Date(2024, 3, 5, 7, 8, 9, 0, time.Local)
	got := DefaultPath("/tmp/out", now)
	if got != filepath.Join("/tmp/out", "results_20240305_070809.csv") {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestWriteFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.csv")
	verdicts := []reconcile.Verdict{{ID: "A1", Similarity: 1, Status: reconcile.StatusSuccess}}
	if err := WriteFile(path, verdicts); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "id,similarity") || !strings.Contains(string(data), "A1,1.0000") {
		t.Fatalf("unexpected file contents %q", data)
	}
}
