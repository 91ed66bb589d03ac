package tasks

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"voicecheck/internal/mapping"
	"voicecheck/internal/script"
)

func table(rows ...[]string) *script.Table {
	return &script.Table{Rows: rows}
}

func TestColumnIndex(t *testing.T) {
	header := []string{"id", " context ", "Context"}
	if idx, ok := ColumnIndex(header, "context"); !ok || idx != 1 {
		t.Fatalf("ColumnIndex = %d,%v want 1,true", idx, ok)
	}
	if idx, ok := ColumnIndex(header, "Context"); !ok || idx != 2 {
		t.Fatalf("case-sensitive lookup failed: %d,%v", idx, ok)
	}
	if idx, ok := ColumnIndex(header, "missing"); ok || idx != -1 {
		t.Fatalf("expected -1,false got %d,%v", idx, ok)
	}
}

func TestBuildScenarioA(t *testing.T) {
	tbl := table([]string{"id", "context"}, []string{"A1", "Hello"}, []string{"A2", "World"})
	mappings := []mapping.Mapping{
		{FileName: "a1.wav", AssignedID: "A1"},
		{FileName: "a2.wav", AssignedID: "A2"},
	}
	got := Build(tbl, mappings, "context", "/audio", nil)
	want := []Task{
		{ID: "A1", AudioPath: filepath.Join("/audio", "a1.wav"), ScriptText: "Hello"},
		{ID: "A2", AudioPath: filepath.Join("/audio", "a2.wav"), ScriptText: "World"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Build = %+v, want %+v", got, want)
	}
}

func TestBuildSkipsUnassignedAndUnmatched(t *testing.T) {
	tbl := table([]string{"id", "context"}, []string{"A1", " Hello "}, []string{"A2"})
	mappings := []mapping.Mapping{
		{FileName: "x.wav", AssignedID: mapping.Unassigned},
		{FileName: "a1.wav", AssignedID: "A1"},
		{FileName: "a2.wav", AssignedID: "A2"},
		{FileName: "a9.wav", AssignedID: "A9"},
	}
	got := Build(tbl, mappings, "context", "/audio", nil)
	if len(got) != 1 || got[0].ID != "A1" || got[0].ScriptText != "Hello" {
		t.Fatalf("unexpected tasks %+v", got)
	}
	for _, task := range got {
		if task.ID == mapping.Unassigned {
			t.Fatal("unassigned mapping produced a task")
		}
	}
}

func TestBuildUnassignedNeverProducesTask(t *testing.T) {
	// A row whose id equals the placeholder text must still not be matched.
	tbl := table([]string{"id", "context"}, []string{mapping.Unassigned, "trap"})
	mappings := []mapping.Mapping{{FileName: "a.wav", AssignedID: mapping.Unassigned}}
	if got := Build(tbl, mappings, "context", "/audio", nil); len(got) != 0 {
		t.Fatalf("expected no tasks, got %+v", got)
	}
}

func TestBuildMissingColumn(t *testing.T) {
	tbl := table([]string{"id", "line"}, []string{"A1", "Hello"})
	mappings := []mapping.Mapping{{FileName: "a1.wav", AssignedID: "A1"}}
	if got := Build(tbl, mappings, "context", "/audio", nil); len(got) != 0 {
		t.Fatalf("expected no tasks, got %+v", got)
	}
	if got := Build(&script.Table{}, mappings, "context", "/audio", nil); len(got) != 0 {
		t.Fatalf("expected no tasks from empty table, got %+v", got)
	}
}

func TestBuildDuplicateIDsFirstWinsAndWarnsOnce(t *testing.T) {
	tbl := table(
		[]string{"id", "context"},
		[]string{"A1", "first"},
		[]string{"A1", "second"},
	)
	mappings := []mapping.Mapping{
		{FileName: "a1.wav", AssignedID: "A1"},
		{FileName: "a1-take2.wav", AssignedID: "A1"},
	}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	got := Build(tbl, mappings, "context", "/audio", logger)
	if len(got) != 2 || got[0].ScriptText != "first" || got[1].ScriptText != "first" {
		t.Fatalf("unexpected tasks %+v", got)
	}
	if n := strings.Count(buf.String(), "event_type=duplicate_script_id"); n != 1 {
		t.Fatalf("expected one duplicate warning, got %d in %q", n, buf.String())
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	in := []Task{
		{ID: "A1", AudioPath: "/audio/a1.wav", ScriptText: "こんにちは, \"world\"\n<tag>"},
		{ID: "A2", AudioPath: `C:\audio\a2.wav`, ScriptText: ""},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, in); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), `{"tasks":[{"id":"A1","audioPath":`) {
		t.Fatalf("unexpected document shape %q", buf.String())
	}
	out, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch: %+v vs %+v", in, out)
	}
}

func TestEncodeEmptyList(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, nil); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != `{"tasks":[]}` {
		t.Fatalf("unexpected document %q", buf.String())
	}
}

func TestWriteArtifact(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteArtifact(dir, []Task{{ID: "A1", AudioPath: "a.wav", ScriptText: "x"}})
	if err != nil {
		t.Fatalf("WriteArtifact returned error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("artifact written outside %s: %s", dir, path)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "voice_validation_") || !strings.HasSuffix(base, ".json") {
		t.Fatalf("unexpected artifact name %q", base)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer file.Close()
	got, err := Decode(file)
	if err != nil || len(got) != 1 || got[0].ID != "A1" {
		t.Fatalf("unexpected artifact contents %+v err=%v", got, err)
	}
}
