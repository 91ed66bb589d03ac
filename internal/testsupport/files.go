package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteScriptFile writes a comma-delimited script file with one line per row.
func WriteScriptFile(t testing.TB, path string, rows ...string) {
	t.Helper()
	WriteFile(t, path, strings.Join(rows, "\n")+"\n")
}

// WriteAudioFiles creates placeholder audio files in dir.
func WriteAudioFiles(t testing.TB, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		WriteFile(t, filepath.Join(dir, name), "RIFF")
	}
}

// WriteEngineScript writes a /bin/sh stub engine into dir and returns its path.
func WriteEngineScript(t testing.TB, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "engine.sh")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir for engine script: %v", err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write engine script: %v", err)
	}
	return path
}

// DirEntries lists the names in dir, failing the test on error.
func DirEntries(t testing.TB, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}
