package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"voicecheck/internal/config"
)

func clearEngineEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VOICECHECK_PYTHON", "")
	t.Setenv("VOICECHECK_ENGINE_SCRIPT", "")
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearEngineEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogs := filepath.Join(tempHome, ".local", "share", "voicecheck", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	wantExport := filepath.Join(tempHome, "Documents", "VoiceValidator", "results")
	if cfg.Paths.ExportDir != wantExport {
		t.Fatalf("unexpected export dir: got %q want %q", cfg.Paths.ExportDir, wantExport)
	}
	if cfg.Engine.Interpreter != "python" {
		t.Fatalf("unexpected interpreter: %q", cfg.Engine.Interpreter)
	}
	if cfg.Engine.Name != "google" {
		t.Fatalf("unexpected engine: %q", cfg.Engine.Name)
	}
	if cfg.Engine.WhisperModel != "base" {
		t.Fatalf("unexpected whisper model: %q", cfg.Engine.WhisperModel)
	}
	if cfg.Script.Column != "context" {
		t.Fatalf("unexpected column: %q", cfg.Script.Column)
	}
	if cfg.Script.FallbackEncoding != "windows-31j" {
		t.Fatalf("unexpected fallback encoding: %q", cfg.Script.FallbackEncoding)
	}
	if cfg.DrainTimeout().Seconds() != 2 {
		t.Fatalf("unexpected drain timeout: %v", cfg.DrainTimeout())
	}
	if cfg.RunTimeout() != 0 {
		t.Fatalf("expected run timeout disabled, got %v", cfg.RunTimeout())
	}
	if cfg.LockPath() != filepath.Join(tempHome, ".local", "share", "voicecheck", "voicecheck.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if _, err := os.Stat(cfg.Paths.ExportDir); !os.IsNotExist(err) {
		t.Fatalf("expected export dir to be created lazily, stat err=%v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearEngineEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "voicecheck.toml")

	type payload struct {
		Engine struct {
			Name               string `toml:"name"`
			WhisperModel       string `toml:"whisper_model"`
			RunTimeoutSeconds  int    `toml:"run_timeout_seconds"`
			CancelGraceSeconds int    `toml:"cancel_grace_seconds"`
		} `toml:"engine"`
		Script struct {
			Column string `toml:"column"`
		} `toml:"script"`
	}
	custom := payload{}
	custom.Engine.Name = "Whisper"
	custom.Engine.WhisperModel = "small"
	custom.Engine.RunTimeoutSeconds = 600
	custom.Engine.CancelGraceSeconds = 1
	custom.Script.Column = "  line  "
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Engine.Name != "whisper" {
		t.Fatalf("expected engine name to be lowercased, got %q", cfg.Engine.Name)
	}
	if cfg.Engine.WhisperModel != "small" {
		t.Fatalf("expected whisper model small, got %q", cfg.Engine.WhisperModel)
	}
	if cfg.RunTimeout().Minutes() != 10 {
		t.Fatalf("expected 10 minute run timeout, got %v", cfg.RunTimeout())
	}
	if cfg.CancelGrace().Seconds() != 1 {
		t.Fatalf("expected 1s cancel grace, got %v", cfg.CancelGrace())
	}
	if cfg.Script.Column != "line" {
		t.Fatalf("expected trimmed column, got %q", cfg.Script.Column)
	}
}

func TestEnvVarOverridesInterpreterAndScript(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "voicecheck.toml")
	content := "[engine]\ninterpreter = \"python3.9\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	scriptPath := filepath.Join(tempDir, "engine.py")
	t.Setenv("VOICECHECK_PYTHON", "/opt/venv/bin/python")
	t.Setenv("VOICECHECK_ENGINE_SCRIPT", scriptPath)

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Engine.Interpreter != "/opt/venv/bin/python" {
		t.Fatalf("expected interpreter from env, got %q", cfg.Engine.Interpreter)
	}
	if cfg.EngineScript() != scriptPath {
		t.Fatalf("expected script path from env, got %q", cfg.EngineScript())
	}
}

func TestEngineScriptDiscoveryFallsBackToBareName(t *testing.T) {
	clearEngineEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := config.Default()
	if got := cfg.EngineScript(); got != "RecognizeAndCompare.py" {
		// A copy next to the test binary or in a parent of the temp dir would be found first.
		if !strings.HasSuffix(got, "RecognizeAndCompare.py") {
			t.Fatalf("unexpected discovery result %q", got)
		}
	}

	local := filepath.Join(dir, "RecognizeAndCompare.py")
	if err := os.WriteFile(local, []byte("# engine\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	got := cfg.EngineScript()
	if resolvedGot, err := filepath.EvalSymlinks(got); err == nil {
		got = resolvedGot
	}
	want, _ := filepath.EvalSymlinks(local)
	if got != want {
		t.Fatalf("expected discovered script %q, got %q", want, got)
	}
}

func TestFindUpwardSearchesParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "marker.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	t.Chdir(nested)

	got := config.FindUpward("marker.txt")
	if got == "" {
		t.Fatal("expected marker to be found in a parent directory")
	}
	if filepath.Base(got) != "marker.txt" {
		t.Fatalf("unexpected result %q", got)
	}
	if config.FindUpward("definitely-missing.txt") != "" {
		t.Fatal("expected empty result for missing file")
	}
}

func TestCreateSample(t *testing.T) {
	clearEngineEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	for _, section := range []string{"[paths]", "[engine]", "[script]", "[logging]"} {
		if !strings.Contains(string(data), section) {
			t.Fatalf("sample config missing %s", section)
		}
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "unknown engine",
			mutate:  func(c *config.Config) { c.Engine.Name = "vosk" },
			wantErr: "engine.name",
		},
		{
			name:    "unknown whisper model",
			mutate:  func(c *config.Config) { c.Engine.WhisperModel = "huge" },
			wantErr: "engine.whisper_model",
		},
		{
			name:    "non-positive drain timeout",
			mutate:  func(c *config.Config) { c.Engine.DrainTimeoutSeconds = -1 },
			wantErr: "engine.drain_timeout_seconds",
		},
		{
			name:    "negative run timeout",
			mutate:  func(c *config.Config) { c.Engine.RunTimeoutSeconds = -5 },
			wantErr: "engine.run_timeout_seconds",
		},
		{
			name:    "unsupported delimiter",
			mutate:  func(c *config.Config) { c.Script.Delimiter = "||" },
			wantErr: "script.delimiter",
		},
		{
			name:    "unknown encoding",
			mutate:  func(c *config.Config) { c.Script.FallbackEncoding = "klingon-8" },
			wantErr: "script.fallback_encoding",
		},
		{
			name:    "bad log level",
			mutate:  func(c *config.Config) { c.Logging.Level = "chatty" },
			wantErr: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestFallbackEncodingName(t *testing.T) {
	cfg := config.Default()
	if got := cfg.FallbackEncodingName(); got != "shift_jis" {
		t.Fatalf("FallbackEncodingName = %q, want shift_jis", got)
	}
	cfg.Script.FallbackEncoding = "not-a-charset"
	if got := cfg.FallbackEncodingName(); got != "not-a-charset" {
		t.Fatalf("unresolvable label should be returned as is, got %q", got)
	}
}
