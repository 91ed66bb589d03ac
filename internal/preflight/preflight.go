package preflight

import (
	"context"
	"fmt"
	"time"

	"voicecheck/internal/config"
	"voicecheck/internal/deps"
	"voicecheck/internal/engine"
	"voicecheck/internal/mapping"
	"voicecheck/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// CodecToolAvailable reports whether binary answers "-version" with a zero
// exit within timeout.
func CodecToolAvailable(ctx context.Context, binary string, timeout time.Duration) bool {
	_, err := deps.Version(ctx, binary, timeout)
	return err == nil
}

// CodecRequired reports whether a run needs the codec tool: always for
// whisper, otherwise only when an assigned file is not natively decodable.
func CodecRequired(e engine.Engine, mappings []mapping.Mapping) bool {
	if e == engine.Whisper {
		return true
	}
	for _, m := range mappings {
		if m.Assigned() && mapping.NeedsCodec(m.FileName) {
			return true
		}
	}
	return false
}

// Require refuses a run with services.ErrPreflightUnavailable when the codec
// tool is needed but unavailable.
func Require(ctx context.Context, binary string, timeout time.Duration, e engine.Engine, mappings []mapping.Mapping) error {
	if !CodecRequired(e, mappings) {
		return nil
	}
	if CodecToolAvailable(ctx, binary, timeout) {
		return nil
	}
	reason := "the selected audio files"
	if e == engine.Whisper {
		reason = "the whisper engine"
	}
	return services.Wrap(services.ErrPreflightUnavailable, "preflight", "codec tool",
		fmt.Sprintf("%s is required by %s but did not respond to -version; install it and add it to PATH", binary, reason), nil)
}

// RunAll executes every environment check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckInterpreter(cfg.Engine.Interpreter),
		CheckEngineScript(cfg.EngineScript()),
		CheckCodecTool(ctx, cfg.Engine.CodecBinary, cfg.PreflightTimeout()),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	export := CheckDirectoryAccess("Export directory", cfg.Paths.ExportDir)
	if !export.Passed && !pathExists(cfg.Paths.ExportDir) {
		export = Result{Name: "Export directory", Passed: true, Detail: fmt.Sprintf("%s (created on first export)", cfg.Paths.ExportDir)}
	}
	results = append(results, export)
	if cfg.Paths.TempDir != "" {
		results = append(results, CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir))
	}
	return results
}
