package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"voicecheck/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The engine runs under /bin/sh so stub scripts written with WithEngineScript
// stand in for the recognition engine.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ExportDir = filepath.Join(base, "exports")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.TempDir = filepath.Join(base, "tmp")
	cfgVal.Engine.Interpreter = "/bin/sh"
	cfgVal.Engine.ScriptPath = filepath.Join(base, "engine.sh")
	cfgVal.Engine.DrainTimeoutSeconds = 1
	cfgVal.Engine.CancelGraceSeconds = 1
	cfgVal.Engine.PreflightTimeoutSeconds = 2
	if err := os.MkdirAll(cfgVal.Paths.TempDir, 0o755); err != nil {
		t.Fatalf("mkdir temp dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithEngineScript writes body as the stub engine script. The script receives
// engine, language, model, and input path as $1..$4.
func WithEngineScript(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engine.ScriptPath = WriteEngineScript(b.t, b.baseDir, body)
	}
}

// WithEngine selects the recognizer name.
func WithEngine(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engine.Name = name
	}
}

// WithCodecBinary points the codec preflight at a specific binary.
func WithCodecBinary(binary string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engine.CodecBinary = binary
	}
}

// WithStubbedBinaries writes stub executables that exit 0 for the provided
// names and prepends them to PATH. If names is empty, the codec tool is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg"}
		}
		StubBinaries(b.t, filepath.Join(b.baseDir, "bin"), "exit 0\n", names...)
	}
}

// StubBinaries writes executables running body under /bin/sh into dir and
// prepends dir to PATH for the rest of the test.
func StubBinaries(t testing.TB, dir, body string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	for _, name := range names {
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
