package tasks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ArtifactPattern is the temp file pattern for engine input documents.
const ArtifactPattern = "voice_validation_*.json"

// Document is the engine input: {"tasks": [...]}.
type Document struct {
	Tasks []Task `json:"tasks"`
}

// Encode writes the input document for tasks.
func Encode(w io.Writer, tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Document{Tasks: tasks}); err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	return nil
}

// Decode reads an input document.
func Decode(r io.Reader) ([]Task, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return doc.Tasks, nil
}

// WriteArtifact writes tasks to a new temp file in dir (the system temp
// directory when empty) and returns its path. The caller removes it.
func WriteArtifact(dir string, tasks []Task) (string, error) {
	file, err := os.CreateTemp(dir, ArtifactPattern)
	if err != nil {
		return "", fmt.Errorf("create task artifact: %w", err)
	}
	path := file.Name()
	if err := Encode(file, tasks); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close task artifact: %w", err)
	}
	return path, nil
}
