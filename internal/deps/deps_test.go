package deps

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeStub(t, t.TempDir(), "present", "exit 0\n")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present || results[0].Detail != "" {
		t.Fatalf("unexpected status for present binary: %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" || results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected status for missing binary: %#v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" || !results[2].Optional {
		t.Fatalf("unexpected status for blank command: %#v", results[2])
	}
}

func TestVersion(t *testing.T) {
	dir := t.TempDir()
	ok := writeStub(t, dir, "codec-ok", "echo 'ffmpeg version 6.1 Copyright'\necho 'built with gcc'\n")
	failing := writeStub(t, dir, "codec-fail", "exit 1\n")
	slow := writeStub(t, dir, "codec-slow", "exec sleep 10\n")

	version, err := Version(context.Background(), ok, time.Second)
	if err != nil {
		t.Fatalf("Version returned error: %v", err)
	}
	if version != "ffmpeg version 6.1 Copyright" {
		t.Fatalf("unexpected version line %q", version)
	}

	if _, err := Version(context.Background(), failing, time.Second); err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if _, err := Version(context.Background(), filepath.Join(dir, "absent"), time.Second); err == nil {
		t.Fatal("expected error for missing binary")
	}

	started := time.Now()
	_, err = Version(context.Background(), slow, 200*time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "deadline") {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if time.Since(started) > 5*time.Second {
		t.Fatal("timeout was not enforced")
	}
}
