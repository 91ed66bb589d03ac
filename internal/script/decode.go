package script

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

const (
	// EncodingUTF8 names the primary decoding.
	EncodingUTF8 = "utf-8"
	// DefaultFallbackEncoding is the legacy encoding tried when UTF-8 looks wrong.
	DefaultFallbackEncoding = "windows-31j"

	sampleLines  = 10
	minJunkRunes = 5
)

// ResolveEncoding maps a WHATWG encoding label such as "windows-31j" or
// "shift_jis" to a decoder.
func ResolveEncoding(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if label == "" {
		label = DefaultFallbackEncoding
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return enc, nil
}

// decodeUTF8 strips a leading BOM and replaces invalid sequences with U+FFFD.
func decodeUTF8(data []byte) string {
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), string(utf8.RuneError))
	}
	return string(out)
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Misdecoded reports whether the first lines look like text decoded with the
// wrong encoding: more than max(5, total/20) replacement characters among the
// runes of the first ten lines.
func Misdecoded(lines []string) bool {
	check := min(sampleLines, len(lines))
	junk, total := 0, 0
	for _, line := range lines[:check] {
		for _, r := range line {
			total++
			if r == utf8.RuneError {
				junk++
			}
		}
	}
	return total > 0 && junk > max(minJunkRunes, total/20)
}

// splitLines breaks text on \n, \r\n, or \r. A final terminator does not
// produce a trailing empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
