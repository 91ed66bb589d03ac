package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voicecheck/internal/config"
	"voicecheck/internal/logging"
	"voicecheck/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	scriptPath string
	audioDir   string
}

const scenarioAEngine = `echo "processing 1/2 50%" >&2
echo "processing 2/2 100%" >&2
echo '{"results":[{"id":"A1","similarity":0.95,"script_text":"Hello","recognized_text":"Hello"},{"id":"A2","similarity":0.5,"script_text":"World","recognized_text":"Word"}]}'
`

func setupCLITestEnv(t *testing.T, engineBody string, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	opts = append([]testsupport.ConfigOption{
		testsupport.WithEngineScript(engineBody),
		testsupport.WithStubbedBinaries(),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)

	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("VOICECHECK_PYTHON", "")
	t.Setenv("VOICECHECK_ENGINE_SCRIPT", "")

	configPath := filepath.Join(base, "voicecheck.toml")
	writeTestConfig(t, configPath, cfg)

	scriptPath := filepath.Join(base, "script.csv")
	testsupport.WriteScriptFile(t, scriptPath, "id,context", "A1,Hello", "A2,World")
	audioDir := filepath.Join(base, "audio")
	testsupport.WriteAudioFiles(t, audioDir, "a1.wav", "a2.wav")

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		scriptPath: scriptPath,
		audioDir:   audioDir,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	if closeErr := logging.CloseLogFiles(); closeErr != nil {
		t.Fatalf("close log files: %v", closeErr)
	}
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
log_dir = %q
export_dir = %q
state_dir = %q
temp_dir = %q

[engine]
interpreter = %q
script_path = %q
name = %q
codec_binary = %q
drain_timeout_seconds = %d
cancel_grace_seconds = %d
preflight_timeout_seconds = %d

[script]
column = %q

[logging]
level = "warn"
`,
		cfg.Paths.LogDir,
		cfg.Paths.ExportDir,
		cfg.Paths.StateDir,
		cfg.Paths.TempDir,
		cfg.Engine.Interpreter,
		cfg.Engine.ScriptPath,
		cfg.Engine.Name,
		cfg.Engine.CodecBinary,
		cfg.Engine.DrainTimeoutSeconds,
		cfg.Engine.CancelGraceSeconds,
		cfg.Engine.PreflightTimeoutSeconds,
		cfg.Script.Column,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
