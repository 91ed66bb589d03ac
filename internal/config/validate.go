package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// EngineNames lists the recognizers the engine script understands.
var EngineNames = []string{"google", "whisper", "sphinx"}

// WhisperModels lists the accepted whisper model sizes.
var WhisperModels = []string{"tiny", "base", "small", "medium", "large"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateScript(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEngine() error {
	if !slices.Contains(EngineNames, c.Engine.Name) {
		return fmt.Errorf("engine.name must be one of %s (got %q)", strings.Join(EngineNames, ", "), c.Engine.Name)
	}
	if !slices.Contains(WhisperModels, c.Engine.WhisperModel) {
		return fmt.Errorf("engine.whisper_model must be one of %s", strings.Join(WhisperModels, ", "))
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	if c.Engine.RunTimeoutSeconds < 0 {
		return errors.New("engine.run_timeout_seconds must be >= 0")
	}
	return ensurePositiveMap(map[string]int{
		"engine.drain_timeout_seconds":     c.Engine.DrainTimeoutSeconds,
		"engine.cancel_grace_seconds":      c.Engine.CancelGraceSeconds,
		"engine.preflight_timeout_seconds": c.Engine.PreflightTimeoutSeconds,
	})
}

func (c *Config) validateScript() error {
	if utf8.RuneCountInString(c.Script.Delimiter) != 1 || strings.ContainsAny(c.Script.Delimiter, "\r\n\"") {
		return fmt.Errorf("script.delimiter must be a single character other than a quote or line break (got %q)", c.Script.Delimiter)
	}
	if _, err := htmlindex.Get(c.Script.FallbackEncoding); err != nil {
		return fmt.Errorf("script.fallback_encoding: %w", err)
	}
	return nil
}

// FallbackEncodingName returns the canonical name of the script fallback
// encoding, or the configured label when it cannot be resolved.
func (c *Config) FallbackEncodingName() string {
	enc, err := htmlindex.Get(c.Script.FallbackEncoding)
	if err != nil {
		return c.Script.FallbackEncoding
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return c.Script.FallbackEncoding
	}
	return name
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
