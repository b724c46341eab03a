package extractors

import (
	"strings"
)

// Text handles plain text and acts as the universal fallback.
type Text struct{}

func (e *Text) SupportedTypes() []string {
	return []string{"text/plain", "text/markdown", "*/*"}
}

func (e *Text) Priority() int {
	return 1 // Lowest priority - fallback
}

func (e *Text) Extract(data []byte, _ string) (string, error) {
	content := string(data)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.TrimSpace(content), nil
}
