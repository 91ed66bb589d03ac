// Package mapping pairs audio files in a folder with script row ids.
package mapping

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"voicecheck/internal/script"
	"voicecheck/internal/services"
)

// Unassigned is the placeholder id carried by a mapping nobody has paired yet.
const Unassigned = script.Unassigned

// AudioExtensions lists the file extensions Scan picks up, lowercased.
var AudioExtensions = []string{".wav", ".mp3", ".flac"}

// nativeExtensions decode without the external codec tool.
var nativeExtensions = []string{".wav", ".aiff", ".aif", ".flac"}

// Mapping pairs one audio file with the id of the script row it voices.
type Mapping struct {
	FileName   string `json:"file_name"`
	AssignedID string `json:"assigned_id"`
}

// Assign sets the row id. A blank id resets the mapping to Unassigned.
func (m *Mapping) Assign(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = Unassigned
	}
	m.AssignedID = id
}

// Assigned reports whether the mapping has a real row id.
func (m Mapping) Assigned() bool {
	return m.AssignedID != "" && m.AssignedID != Unassigned
}

// Scan lists supported audio files directly inside dir, sorted by name, each
// starting Unassigned.
func Scan(dir string) ([]Mapping, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrInputNotFound, "map", "scan audio folder", fmt.Sprintf("audio folder %q not found", dir), err)
		}
		return nil, services.Wrap(services.ErrInputNotFound, "map", "scan audio folder", fmt.Sprintf("stat audio folder %q", dir), err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrInputNotFound, "map", "scan audio folder", fmt.Sprintf("%q is not a directory", dir), nil)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrInputNotFound, "map", "scan audio folder", fmt.Sprintf("read audio folder %q", dir), err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !IsAudioFile(entry.Name()) || !regularFile(dir, entry) {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)

	mappings := make([]Mapping, len(names))
	for i, name := range names {
		mappings[i] = Mapping{FileName: name, AssignedID: Unassigned}
	}
	return mappings, nil
}

// regularFile accepts regular files and symlinks that resolve to one.
func regularFile(dir string, entry fs.DirEntry) bool {
	mode := entry.Type()
	if mode.IsRegular() {
		return true
	}
	if mode&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}

// IsAudioFile reports whether name has a supported audio extension.
func IsAudioFile(name string) bool {
	return slices.Contains(AudioExtensions, strings.ToLower(filepath.Ext(name)))
}

// NeedsCodec reports whether decoding the file requires the external codec tool.
func NeedsCodec(fileName string) bool {
	return !slices.Contains(nativeExtensions, strings.ToLower(filepath.Ext(fileName)))
}
