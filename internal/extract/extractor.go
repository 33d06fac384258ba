// Package extract converts uploaded document bytes into normalized plain
// text plus page boundary metadata for types that have pages.
package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cloo-solutions/hrdesk/internal/domain"
)

// Result is the outcome of text extraction. Note carries a human-readable
// partial-success remark when benign irregularities were skipped.
type Result struct {
	Text  string
	Pages []domain.PageMark
	Note  string
}

// Extractor turns raw document bytes into normalized UTF-8 text.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract dispatches on the declared type. Corrupt or unsupported input
// fails with an extraction error carrying the document id; benign content
// irregularities are recorded in Result.Note instead.
func (e *Extractor) Extract(documentID string, data []byte, docType domain.DocumentType) (*Result, error) {
	if len(data) == 0 {
		return nil, domain.NewExtractionError(documentID, fmt.Errorf("document is empty"))
	}

	var result *Result
	var err error

	switch docType {
	case domain.DocumentTypePDF:
		result, err = extractPDF(data)
	case domain.DocumentTypeWord:
		result, err = extractDocx(data)
	case domain.DocumentTypePlainText:
		result, err = extractPlainText(data)
	default:
		err = fmt.Errorf("unsupported document type: %s", docType)
	}

	if err != nil {
		return nil, domain.NewExtractionError(documentID, err)
	}

	if strings.TrimSpace(result.Text) == "" {
		return nil, domain.NewExtractionError(documentID, fmt.Errorf("no text content found"))
	}

	return result, nil
}

func extractPlainText(data []byte) (*Result, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("content is not valid UTF-8")
	}
	return &Result{Text: normalize(string(data))}, nil
}

// normalize makes whitespace consistent: LF line endings, no trailing
// space per line, runs of blank lines collapsed to one blank line.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blankRun := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blankRun++
			if blankRun > 1 {
				continue
			}
		} else {
			blankRun = 0
		}
		out = append(out, line)
	}

	return strings.Trim(strings.Join(out, "\n"), "\n")
}
