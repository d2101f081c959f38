package ingest

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// ExtractedSection is one unit of extracted text. Page is zero-based and
// only set for formats with page structure (PDF).
type ExtractedSection struct {
	Page *int
	Text string
}

// Extract pulls plain text out of a document based on its extension.
func Extract(path string) ([]ExtractedSection, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".csv":
		return extractPlain(path)
	case ".pdf":
		return extractPDF(path)
	case ".xlsx":
		return extractXLSX(path)
	case ".docx":
		return extractDOCX(path)
	default:
		return nil, fmt.Errorf("unsupported document format %q", filepath.Ext(path))
	}
}

func extractPlain(path string) ([]ExtractedSection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("document contains no text")
	}
	return []ExtractedSection{{Text: text}}, nil
}

func extractPDF(path string) ([]ExtractedSection, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var sections []ExtractedSection
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages rather than failing the whole document.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		page := i - 1
		sections = append(sections, ExtractedSection{Page: &page, Text: text})
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("document contains no extractable text")
	}
	return sections, nil
}

func extractXLSX(path string) ([]ExtractedSection, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		sb.WriteString(sheet)
		sb.WriteString("\n")
		for _, row := range rows {
			sb.WriteString(strings.Join(row, ", "))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, fmt.Errorf("document contains no text")
	}
	return []ExtractedSection{{Text: text}}, nil
}

// extractDOCX reads the main document part of the OOXML package and collects
// the text runs. Paragraph boundaries become newlines.
func extractDOCX(path string) ([]ExtractedSection, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc, err = f.Open()
			if err != nil {
				return nil, fmt.Errorf("open document part: %w", err)
			}
			break
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("docx missing document part")
	}
	defer doc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(doc)
	inRun := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document part: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inRun {
				sb.Write(t)
			}
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, fmt.Errorf("document contains no text")
	}
	return []ExtractedSection{{Text: text}}, nil
}
