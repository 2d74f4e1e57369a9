package loader

import (
	"regexp"
	"strings"

	"doc-assistant-be/internal/errs"
)

// Supported declared types. "md" and "markdown" are read as plain text.
var loaders = map[string]func(data []byte) (string, error){
	"pdf":      loadPDF,
	"docx":     loadDOCX,
	"txt":      loadText,
	"md":       loadText,
	"markdown": loadText,
	"json":     loadJSON,
}

// Supported reports whether a declared type has a loader.
func Supported(fileType string) bool {
	_, ok := loaders[strings.ToLower(fileType)]
	return ok
}

// Extensions lists the supported declared types.
func Extensions() []string {
	return []string{"pdf", "docx", "txt", "md", "markdown", "json"}
}

// Load is a pure transform from raw bytes plus a declared type to normalized
// plain text. Whitespace is normalized so downstream chunk boundaries are
// deterministic for identical input bytes.
func Load(filename, fileType string, data []byte) (string, error) {
	fn, ok := loaders[strings.ToLower(fileType)]
	if !ok {
		return "", errs.ErrUnsupportedFormat.WithDetail("%s (%s)", fileType, filename)
	}
	text, err := fn(data)
	if err != nil {
		if _, typed := errs.As(err); typed {
			return "", err
		}
		return "", errs.ErrExtractionFailed.WithDetail("%s", filename).WithCause(err)
	}
	text = normalizeWhitespace(text)
	if text == "" {
		return "", errs.ErrEmptyFile.WithDetail("%s", filename)
	}
	return text, nil
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func loadText(data []byte) (string, error) {
	return string(data), nil
}
