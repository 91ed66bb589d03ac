package mapping

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"voicecheck/internal/services"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("RIFF"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestScanFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b2.MP3", "a1.wav", "notes.txt", "c3.flac", "d4.ogg", "e5.aiff")
	if err := os.Mkdir(filepath.Join(dir, "nested.wav"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	touch(t, filepath.Join(dir, "nested.wav"), "inner.wav")

	got, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	want := []Mapping{
		{FileName: "a1.wav", AssignedID: Unassigned},
		{FileName: "b2.MP3", AssignedID: Unassigned},
		{FileName: "c3.flac", AssignedID: Unassigned},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Scan = %+v, want %+v", got, want)
	}
}

func TestScanFollowsSymlinkedFiles(t *testing.T) {
	store := t.TempDir()
	touch(t, store, "take1.wav")
	if err := os.Mkdir(filepath.Join(store, "takes"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	dir := t.TempDir()
	touch(t, dir, "a2.wav")
	links := map[string]string{
		"a1.wav":     filepath.Join(store, "take1.wav"),
		"broken.wav": filepath.Join(store, "missing.wav"),
		"folder.wav": filepath.Join(store, "takes"),
	}
	for name, target := range links {
		if err := os.Symlink(target, filepath.Join(dir, name)); err != nil {
			t.Fatalf("symlink %s: %v", name, err)
		}
	}

	got, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	want := []Mapping{
		{FileName: "a1.wav", AssignedID: Unassigned},
		{FileName: "a2.wav", AssignedID: Unassigned},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Scan = %+v, want %+v", got, want)
	}
}

func TestScanMissingFolder(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, services.ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", err)
	}

	file := filepath.Join(t.TempDir(), "file.wav")
	touch(t, filepath.Dir(file), "file.wav")
	if _, err := Scan(file); !errors.Is(err, services.ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound for non-directory, got %v", err)
	}
}

func TestScanEmptyFolder(t *testing.T) {
	got, err := Scan(t.TempDir())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no mappings, got %+v", got)
	}
}

func TestAssignAndReset(t *testing.T) {
	mappings := []Mapping{{FileName: "a1.wav", AssignedID: Unassigned}}
	if !Assign(mappings, "a1.wav", " A1 ") {
		t.Fatal("expected assignment to succeed")
	}
	if mappings[0].AssignedID != "A1" || !mappings[0].Assigned() {
		t.Fatalf("unexpected mapping %+v", mappings[0])
	}
	mappings[0].Assign("")
	if mappings[0].Assigned() {
		t.Fatalf("blank id should reset to unassigned, got %+v", mappings[0])
	}
	if Assign(mappings, "zz.wav", "Z") {
		t.Fatal("expected unknown file to report false")
	}
}

func TestNeedsCodec(t *testing.T) {
	tests := map[string]bool{
		"a.wav":  false,
		"a.WAV":  false,
		"a.flac": false,
		"a.aiff": false,
		"a.aif":  false,
		"a.mp3":  true,
		"a.m4a":  true,
		"a":      true,
	}
	for name, want := range tests {
		if got := NeedsCodec(name); got != want {
			t.Fatalf("NeedsCodec(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestLoadAssignmentsAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assign.toml")
	content := "[assignments]\n\"a1.wav\" = \"A1\"\n\"ghost.wav\" = \"G\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write assignments: %v", err)
	}
	assignments, err := LoadAssignments(path)
	if err != nil {
		t.Fatalf("LoadAssignments returned error: %v", err)
	}

	mappings := []Mapping{{FileName: "a1.wav", AssignedID: Unassigned}, {FileName: "b2.wav", AssignedID: Unassigned}}
	unknown := Apply(mappings, assignments)
	if !reflect.DeepEqual(unknown, []string{"ghost.wav"}) {
		t.Fatalf("unexpected unknown names %q", unknown)
	}
	if mappings[0].AssignedID != "A1" || mappings[1].AssignedID != Unassigned {
		t.Fatalf("unexpected mappings %+v", mappings)
	}
}

func TestApplySameBaseNameIsDeterministic(t *testing.T) {
	for i := 0; i < 20; i++ {
		mappings := []Mapping{{FileName: "a1.wav", AssignedID: Unassigned}}
		unknown := Apply(mappings, Assignments{"a1.wav": "A1", "x/a1.wav": "X1"})
		if len(unknown) != 0 {
			t.Fatalf("unexpected unknown names %q", unknown)
		}
		if mappings[0].AssignedID != "X1" {
			t.Fatalf("attempt %d: expected the later sorted name to win, got %q", i, mappings[0].AssignedID)
		}
	}
}

func TestLoadAssignmentsErrors(t *testing.T) {
	if _, err := LoadAssignments(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[assignments\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadAssignments(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParsePairs(t *testing.T) {
	got, err := ParsePairs([]string{"a1.wav=A1", " b2.wav = B2 "})
	if err != nil {
		t.Fatalf("ParsePairs returned error: %v", err)
	}
	if !reflect.DeepEqual(got, Assignments{"a1.wav": "A1", "b2.wav": "B2"}) {
		t.Fatalf("unexpected assignments %v", got)
	}
	if _, err := ParsePairs([]string{"no-separator"}); err == nil {
		t.Fatal("expected error for malformed pair")
	}
}

func TestAutoAssignByStem(t *testing.T) {
	mappings := []Mapping{
		{FileName: "a1.wav", AssignedID: Unassigned},
		{FileName: "B2.mp3", AssignedID: Unassigned},
		{FileName: "c3.wav", AssignedID: "X9"},
		{FileName: "zz.wav", AssignedID: Unassigned},
	}
	ids := []string{Unassigned, "A1", "b2", "C3"}

	if n := AutoAssign(mappings, ids); n != 2 {
		t.Fatalf("expected 2 assignments, got %d", n)
	}
	want := []string{"A1", "b2", "X9", Unassigned}
	for i, m := range mappings {
		if m.AssignedID != want[i] {
			t.Fatalf("mapping %d: got %q want %q", i, m.AssignedID, want[i])
		}
	}
}
