package extractors

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
)

// PDF extracts text from PDF documents.
type PDF struct{}

func (e *PDF) SupportedTypes() []string {
	return []string{"application/pdf"}
}

func (e *PDF) Priority() int {
	return 100 // Format-specific, always preferred for PDFs
}

// Extract walks every page and concatenates its text content. Pages whose
// content streams cannot be decoded are skipped rather than failing the
// whole document, since scanned or partially corrupt policies are common.
func (e *PDF) Extract(data []byte, _ string) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: parse pdf: %w", domain.ErrUnsupportedFormat, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("%w: pdf has no extractable text", domain.ErrIngestion)
	}
	return out, nil
}
