package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeEngine(); err != nil {
		return err
	}
	c.normalizeScript()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TempDir) != "" {
		if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
			return fmt.Errorf("paths.temp_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeEngine() error {
	if value, ok := os.LookupEnv("VOICECHECK_PYTHON"); ok && strings.TrimSpace(value) != "" {
		c.Engine.Interpreter = value
	}
	c.Engine.Interpreter = strings.TrimSpace(c.Engine.Interpreter)
	if c.Engine.Interpreter == "" {
		c.Engine.Interpreter = defaultInterpreter
	}

	if strings.TrimSpace(c.Engine.ScriptPath) == "" {
		if value, ok := os.LookupEnv("VOICECHECK_ENGINE_SCRIPT"); ok {
			c.Engine.ScriptPath = value
		}
	}
	if strings.TrimSpace(c.Engine.ScriptPath) != "" {
		var err error
		if c.Engine.ScriptPath, err = expandPath(strings.TrimSpace(c.Engine.ScriptPath)); err != nil {
			return fmt.Errorf("engine.script_path: %w", err)
		}
	}

	c.Engine.Name = strings.ToLower(strings.TrimSpace(c.Engine.Name))
	if c.Engine.Name == "" {
		c.Engine.Name = defaultEngineName
	}
	c.Engine.Language = strings.TrimSpace(c.Engine.Language)
	c.Engine.WhisperModel = strings.ToLower(strings.TrimSpace(c.Engine.WhisperModel))
	if c.Engine.WhisperModel == "" {
		c.Engine.WhisperModel = defaultWhisperModel
	}
	c.Engine.CodecBinary = strings.TrimSpace(c.Engine.CodecBinary)
	if c.Engine.CodecBinary == "" {
		c.Engine.CodecBinary = defaultCodecBinary
	}
	if c.Engine.DrainTimeoutSeconds == 0 {
		c.Engine.DrainTimeoutSeconds = defaultDrainTimeoutSeconds
	}
	if c.Engine.CancelGraceSeconds == 0 {
		c.Engine.CancelGraceSeconds = defaultCancelGraceSeconds
	}
	if c.Engine.PreflightTimeoutSeconds == 0 {
		c.Engine.PreflightTimeoutSeconds = defaultPreflightTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeScript() {
	c.Script.Column = strings.TrimSpace(c.Script.Column)
	if c.Script.Column == "" {
		c.Script.Column = defaultScriptColumn
	}
	if c.Script.Delimiter == "" {
		c.Script.Delimiter = defaultScriptDelimiter
	}
	c.Script.FallbackEncoding = strings.ToLower(strings.TrimSpace(c.Script.FallbackEncoding))
	if c.Script.FallbackEncoding == "" {
		c.Script.FallbackEncoding = defaultFallbackEncoding
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
