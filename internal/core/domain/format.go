package domain

import (
	"path/filepath"
	"strings"
)

// Format identifies a document format that can be extracted.
type Format string

// Supported formats.
const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
)

// AllFormats returns every format the extractors understand.
func AllFormats() []Format {
	return []Format{FormatPDF, FormatDOCX, FormatTXT}
}

// IsValid returns true if the format is recognised.
func (f Format) IsValid() bool {
	switch f {
	case FormatPDF, FormatDOCX, FormatTXT:
		return true
	default:
		return false
	}
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// String returns the string representation.
func (f Format) String() string {
	return string(f)
}

// FormatFromPath derives the format from a file extension (case-insensitive).
// Returns an empty Format for unknown extensions.
func FormatFromPath(path string) Format {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	f := Format(ext)
	if !f.IsValid() {
		return ""
	}
	return f
}
