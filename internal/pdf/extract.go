// Package pdf extracts plain text from PDF documents.
package pdf

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DocumentParseError reports a PDF that could not be opened or read.
type DocumentParseError struct {
	Path string
	Err  error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *DocumentParseError) Unwrap() error { return e.Err }

// ExtractText returns the text of every page, pages separated by newlines.
// Pages whose content cannot be decoded are skipped.
func ExtractText(filePath string) (text string, err error) {
	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", &DocumentParseError{Path: filePath, Err: fmt.Errorf("malformed document: %v", r)}
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", &DocumentParseError{Path: filePath, Err: err}
	}
	defer f.Close()

	var builder strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("skipping unreadable page", "path", filePath, "page", i, "error", err)
			continue
		}
		builder.WriteString(pageText)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}
