package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir    string `toml:"log_dir"`
	ExportDir string `toml:"export_dir"`
	StateDir  string `toml:"state_dir"`
	TempDir   string `toml:"temp_dir"`
}

// Engine contains settings for the external recognition engine subprocess.
type Engine struct {
	// Interpreter launches the engine script (usually a Python executable).
	Interpreter string `toml:"interpreter"`
	// ScriptPath points at the engine entry script. Empty enables discovery of
	// RecognizeAndCompare.py next to the working directory or executable.
	ScriptPath string `toml:"script_path"`
	// Name selects the recognizer: google, whisper, or sphinx.
	Name string `toml:"name"`
	// Language is the locale passed to the engine. Empty picks the engine default.
	Language     string `toml:"language"`
	WhisperModel string `toml:"whisper_model"`
	// CodecBinary is the external audio codec tool probed before runs that need it.
	CodecBinary             string `toml:"codec_binary"`
	DrainTimeoutSeconds     int    `toml:"drain_timeout_seconds"`
	CancelGraceSeconds      int    `toml:"cancel_grace_seconds"`
	RunTimeoutSeconds       int    `toml:"run_timeout_seconds"`
	PreflightTimeoutSeconds int    `toml:"preflight_timeout_seconds"`
}

// Script contains settings for reading the tabular script file.
type Script struct {
	Column           string `toml:"column"`
	Delimiter        string `toml:"delimiter"`
	FallbackEncoding string `toml:"fallback_encoding"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for voicecheck.
//
// Configuration sections by subsystem:
//   - Paths: log, export, state, and scratch directories
//   - Engine: recognition engine subprocess and codec preflight
//   - Script: tabular script decoding and column selection
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	Engine  Engine  `toml:"engine"`
	Script  Script  `toml:"script"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/voicecheck/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("voicecheck.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories. The export
// directory is created lazily when results are written.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// EngineScript returns the configured engine script, discovering
// RecognizeAndCompare.py when no explicit path is set.
func (c *Config) EngineScript() string {
	if path := strings.TrimSpace(c.Engine.ScriptPath); path != "" {
		return path
	}
	return findEngineScript(defaultEngineScriptName)
}

// DrainTimeout is the bounded wait applied when joining the output readers.
func (c *Config) DrainTimeout() time.Duration {
	return time.Duration(c.Engine.DrainTimeoutSeconds) * time.Second
}

// CancelGrace is how long a cancelled engine gets before a hard kill.
func (c *Config) CancelGrace() time.Duration {
	return time.Duration(c.Engine.CancelGraceSeconds) * time.Second
}

// RunTimeout caps a whole engine run. Zero disables the cap.
func (c *Config) RunTimeout() time.Duration {
	return time.Duration(c.Engine.RunTimeoutSeconds) * time.Second
}

// PreflightTimeout bounds the codec tool version probe.
func (c *Config) PreflightTimeout() time.Duration {
	return time.Duration(c.Engine.PreflightTimeoutSeconds) * time.Second
}

// LockPath returns the cross-process run lock location, or "" when no state
// directory is configured.
func (c *Config) LockPath() string {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.StateDir, "voicecheck.lock")
}

// findEngineScript looks in the working directory, next to the running
// executable, and then in each parent of the working directory. The bare name
// is returned when nothing is found so the interpreter reports the failure.
func findEngineScript(name string) string {
	if abs, err := filepath.Abs(name); err == nil {
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			return abs
		}
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	if found := FindUpward(name); found != "" {
		return found
	}
	return name
}

// FindUpward searches the working directory and its parents for name.
func FindUpward(name string) string {
	dir, err := filepath.Abs(".")
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
