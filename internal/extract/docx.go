package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// extractDocx reads word/document.xml out of the docx archive and walks
// its paragraphs and tables. Table rows are flattened to "cell | cell"
// lines. The pack's document tooling shells out for .docx, so the XML is
// tokenized directly here.
func extractDocx(data []byte) (*Result, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open docx archive: %w", err)
	}

	var docFile *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("docx archive has no word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to read word/document.xml: %w", err)
	}
	defer rc.Close()

	text, err := docxText(rc)
	if err != nil {
		return nil, err
	}

	return &Result{Text: normalize(text)}, nil
}

func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var out strings.Builder
	var paragraph strings.Builder
	var row []string
	var cell strings.Builder
	inText := false
	cellDepth := 0

	flushParagraph := func() {
		line := strings.TrimSpace(paragraph.String())
		paragraph.Reset()
		if line == "" {
			return
		}
		if cellDepth > 0 {
			if cell.Len() > 0 {
				cell.WriteString(" ")
			}
			cell.WriteString(line)
			return
		}
		out.WriteString(line)
		out.WriteString("\n")
	}

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tc":
				cellDepth++
			case "tab":
				paragraph.WriteString("\t")
			case "br":
				paragraph.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flushParagraph()
			case "tc":
				cellDepth--
				if c := strings.TrimSpace(cell.String()); c != "" {
					row = append(row, c)
				}
				cell.Reset()
			case "tr":
				if len(row) > 0 {
					out.WriteString(strings.Join(row, " | "))
					out.WriteString("\n")
				}
				row = nil
			}
		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		}
	}

	return out.String(), nil
}
