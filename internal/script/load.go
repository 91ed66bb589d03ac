package script

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"voicecheck/internal/logging"
	"voicecheck/internal/services"
)

// Options controls decoding and splitting.
type Options struct {
	// Delimiter separates fields. Defaults to ",".
	Delimiter string
	// FallbackEncoding is used when UTF-8 decoding looks wrong. Defaults to windows-31j.
	FallbackEncoding string
	Logger           *slog.Logger
}

// Load reads and decodes the script file at path.
func Load(path string, opts Options) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrInputNotFound, "ingest", "read script", fmt.Sprintf("script file %q not found", path), err)
		}
		return nil, services.Wrap(services.ErrInputNotFound, "ingest", "read script", fmt.Sprintf("read script file %q", path), err)
	}
	return Parse(data, opts), nil
}

// Parse decodes raw bytes into a Table. An empty input yields an empty table.
func Parse(data []byte, opts Options) *Table {
	logger := logging.NewComponentLogger(opts.Logger, "script")
	delimiter := opts.Delimiter
	if delimiter == "" {
		delimiter = ","
	}

	lines := splitLines(decodeUTF8(data))
	encodingName := EncodingUTF8
	if Misdecoded(lines) {
		fallback := strings.ToLower(strings.TrimSpace(opts.FallbackEncoding))
		if fallback == "" {
			fallback = DefaultFallbackEncoding
		}
		if text, err := decodeFallback(fallback, data); err != nil {
			logging.WarnWithContext(logger, "fallback decoding failed; keeping UTF-8 text", "script_decode_fallback_failed",
				logging.String("encoding", fallback),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "save the script file as UTF-8"),
				logging.String(logging.FieldImpact, "script text may contain replacement characters"),
			)
		} else {
			lines = splitLines(text)
			encodingName = fallback
			logger.Debug("script decoded with fallback encoding", logging.String("encoding", fallback))
		}
	}

	return newTable(lines, delimiter, encodingName)
}

func decodeFallback(name string, data []byte) (string, error) {
	enc, err := ResolveEncoding(name)
	if err != nil {
		return "", err
	}
	return decodeWith(enc, data)
}
