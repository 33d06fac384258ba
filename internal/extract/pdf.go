package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/cloo-solutions/hrdesk/internal/domain"
)

// extractPDF pulls text page by page and records the rune offset at which
// each page starts. Pages that fail to decode are skipped and counted in
// the partial-success note; the whole document fails only when the file
// itself cannot be opened.
func extractPDF(data []byte) (result *Result, err error) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var builder strings.Builder
	var marks []domain.PageMark
	offset := 0
	skipped := 0

	total := reader.NumPage()
	for pageNum := 1; pageNum <= total; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			skipped++
			continue
		}

		text, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			skipped++
			continue
		}

		clean := normalize(text)
		if clean == "" {
			continue
		}

		if builder.Len() > 0 {
			builder.WriteString("\n\n")
			offset += 2
		}
		marks = append(marks, domain.PageMark{Offset: offset, Page: pageNum})
		builder.WriteString(clean)
		offset += utf8.RuneCountInString(clean)
	}

	result = &Result{Text: builder.String(), Pages: marks}
	if skipped > 0 {
		result.Note = fmt.Sprintf("skipped %d of %d pages that could not be decoded", skipped, total)
	}
	return result, nil
}
