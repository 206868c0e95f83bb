// Package encoding provides text encoding utilities for the game's data files.
//
// Strings in content files and archive directories are Windows-1252; Go code
// works in UTF-8, so every decoded identifier and display name passes through here.
package encoding

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Windows1252ToUTF8 converts Windows-1252 bytes to a UTF-8 string.
// Pure ASCII input is returned without going through the decoder.
func Windows1252ToUTF8(data []byte) string {
	if isASCII(data) {
		return string(data)
	}
	result, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		// Return as-is if decoding fails
		return string(data)
	}
	return string(result)
}

// UTF8ToWindows1252 converts a UTF-8 string to Windows-1252 bytes.
// Runes with no Windows-1252 form make the whole conversion fall back to the raw bytes.
func UTF8ToWindows1252(s string) []byte {
	if isASCII([]byte(s)) {
		return []byte(s)
	}
	result, _, err := transform.Bytes(charmap.Windows1252.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// FixedStringToUTF8 decodes a NUL-padded Windows-1252 field.
func FixedStringToUTF8(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return Windows1252ToUTF8(data)
}

// TrimNullString removes trailing NUL bytes and decodes the rest.
func TrimNullString(data []byte) string {
	return Windows1252ToUTF8(bytes.TrimRight(data, "\x00"))
}

// FoldKey returns the case-insensitive lookup key for an identifier.
func FoldKey(id string) string {
	return strings.ToLower(id)
}

// NormalizeArchivePath lowercases a path and uses backslash separators,
// the form archive directories store.
func NormalizeArchivePath(path string) string {
	path = strings.ReplaceAll(path, "/", "\\")
	return strings.ToLower(path)
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
