package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"university-rag-assistant/models"
)

// PDFExtractor turns PDF files into corpus documents.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractDocument reads a PDF and returns it as a single document. The
// document title is the file name without extension; the ID is derived
// from it.
func (e *PDFExtractor) ExtractDocument(filePath string) (models.Document, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to read PDF file: %w", err)
	}

	text, err := e.extractText(content)
	if err != nil {
		return models.Document{}, err
	}

	base := filepath.Base(filePath)
	title := strings.TrimSuffix(base, filepath.Ext(base))

	return models.Document{
		ID:      "pdf_" + slugify(title),
		Title:   title,
		Content: text,
	}, nil
}

func (e *PDFExtractor) extractText(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var textBuilder strings.Builder
	pages := reader.NumPage()

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			// Pages with broken font tables are skipped, not fatal
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	extracted := strings.TrimSpace(textBuilder.String())
	if extracted == "" {
		return "", fmt.Errorf("no text extracted from PDF")
	}
	return extracted, nil
}

func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	return b.String()
}
