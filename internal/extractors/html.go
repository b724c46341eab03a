package extractors

import (
	"strings"
)

// HTML extracts text from HTML documents. Tables are flattened into
// pipe-separated rows so their cell relationships survive chunking.
type HTML struct{}

func (e *HTML) SupportedTypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

func (e *HTML) Priority() int {
	return 50
}

func (e *HTML) Extract(data []byte, _ string) (string, error) {
	content := string(data)

	content = removeHTMLBlocks(content, "script")
	content = removeHTMLBlocks(content, "style")
	content = flattenTables(content)
	content = stripHTMLTags(content)
	content = decodeHTMLEntities(content)

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	// Collapse runs of spaces left behind by stripped tags
	for strings.Contains(content, "  ") {
		content = strings.ReplaceAll(content, "  ", " ")
	}
	for strings.Contains(content, "\n\n\n") {
		content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(content), nil
}

// flattenTables rewrites every <table> so each <tr> becomes one line with
// its cell texts joined by " | ". Rows keep their header/data distinction
// only through position.
func flattenTables(content string) string {
	lower := strings.ToLower(content)
	for {
		start := strings.Index(lower, "<table")
		if start == -1 {
			return content
		}
		end := strings.Index(lower[start:], "</table>")
		if end == -1 {
			return content
		}
		end += start + len("</table>")

		flattened := flattenTable(content[start:end])
		content = content[:start] + flattened + content[end:]
		lower = strings.ToLower(content)
	}
}

func flattenTable(table string) string {
	var rows []string
	lower := strings.ToLower(table)
	for {
		start := strings.Index(lower, "<tr")
		if start == -1 {
			break
		}
		end := strings.Index(lower[start:], "</tr>")
		if end == -1 {
			break
		}
		end += start + len("</tr>")

		row := table[start:end]
		var cells []string
		for _, cell := range splitCells(row) {
			text := strings.TrimSpace(decodeHTMLEntities(stripHTMLTags(cell)))
			if text != "" {
				cells = append(cells, text)
			}
		}
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " | "))
		}

		table = table[end:]
		lower = lower[end:]
	}
	return "\n" + strings.Join(rows, "\n") + "\n"
}

// splitCells returns the inner markup of every <td> or <th> in a row,
// in document order.
func splitCells(row string) []string {
	var cells []string
	rest := row
	for {
		lower := strings.ToLower(rest)

		tag := "td"
		open := strings.Index(lower, "<td")
		if th := strings.Index(lower, "<th"); th != -1 && (open == -1 || th < open) {
			open, tag = th, "th"
		}
		if open == -1 {
			return cells
		}

		openEnd := strings.Index(lower[open:], ">")
		if openEnd == -1 {
			return cells
		}
		contentStart := open + openEnd + 1
		close := strings.Index(lower[contentStart:], "</"+tag+">")
		if close == -1 {
			return cells
		}
		cells = append(cells, rest[contentStart:contentStart+close])
		rest = rest[contentStart+close+len("</"+tag+">"):]
	}
}

func removeHTMLBlocks(content, tagName string) string {
	result := content

	for {
		startTag := "<" + strings.ToLower(tagName)
		endTag := "</" + strings.ToLower(tagName) + ">"

		startIdx := strings.Index(strings.ToLower(result), startTag)
		if startIdx == -1 {
			break
		}

		endIdx := strings.Index(strings.ToLower(result[startIdx:]), endTag)
		if endIdx == -1 {
			break
		}

		result = result[:startIdx] + result[startIdx+endIdx+len(endTag):]
	}

	return result
}

func stripHTMLTags(content string) string {
	var result strings.Builder
	inTag := false

	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			result.WriteRune(' ')
		case !inTag:
			result.WriteRune(r)
		}
	}

	return result.String()
}

func decodeHTMLEntities(content string) string {
	replacements := map[string]string{
		"&nbsp;": " ",
		"&amp;":  "&",
		"&lt;":   "<",
		"&gt;":   ">",
		"&quot;": "\"",
		"&apos;": "'",
		"&#39;":  "'",
	}

	for entity, replacement := range replacements {
		content = strings.ReplaceAll(content, entity, replacement)
	}

	return content
}
