package loader

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// loadPDF extracts the text layer of a PDF. Encrypted or structurally broken
// files surface as extraction errors; recovered panics from the parser are
// treated the same way since malformed PDFs can trip it.
func loadPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
