package loader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"
)

// loadDOCX extracts paragraph and table text from a Word document.
func loadDOCX(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docx parser panic: %v", r)
		}
	}()

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch item.(type) {
		case *docx.Paragraph, *docx.Table:
			part := strings.TrimSpace(fmt.Sprint(item))
			if part == "" {
				continue
			}
			sb.WriteString(part)
			sb.WriteString("\n\n")
		}
	}
	return sb.String(), nil
}
