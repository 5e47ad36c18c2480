package parser

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"docqa/internal/domain"
)

// Text parses UTF-8 text and markdown files into header-delimited prose
// sections and pipe-table sections. It is the in-tree default behind
// port.Parser; binary formats substitute their own parser behind the same
// port.
type Text struct{}

// NewText creates the default parser.
func NewText() *Text {
	return &Text{}
}

// Parse reads the file and extracts its ordered sections.
func (p *Text) Parse(path string) ([]domain.Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	lines := strings.Split(string(data), "\n")

	var sections []domain.Section
	var header string
	var body []string

	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		body = nil
		if text == "" {
			return
		}
		sections = append(sections, domain.Section{
			Kind:   domain.KindText,
			Header: header,
			Body:   text,
		})
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " \t\r")

		if isTableRow(line) {
			flush()
			table, consumed := parseTable(lines[i:])
			sections = append(sections, table)
			i += consumed - 1
			continue
		}

		if h, ok := headerText(line); ok {
			flush()
			header = h
			continue
		}

		body = append(body, line)
	}
	flush()

	return sections, nil
}

// headerText reports whether a line is a section header: a markdown
// heading, or a short all-caps line without terminal punctuation.
func headerText(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}

	if strings.HasPrefix(trimmed, "#") {
		return strings.TrimSpace(strings.TrimLeft(trimmed, "#")), true
	}

	if len(trimmed) > 80 || strings.ContainsAny(string(trimmed[len(trimmed)-1]), ".!?,;:") {
		return "", false
	}
	hasLetter := false
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return "", false
			}
		}
	}
	if !hasLetter {
		return "", false
	}
	return trimmed, true
}

// isTableRow reports whether a line looks like a pipe-table row.
func isTableRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.Count(trimmed, "|") >= 2 && strings.HasPrefix(trimmed, "|")
}

// isSeparatorRow matches the |---|---| divider under a table header.
func isSeparatorRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !isTableRow(trimmed) {
		return false
	}
	for _, r := range trimmed {
		if r != '|' && r != '-' && r != ':' && r != ' ' {
			return false
		}
	}
	return true
}

// parseTable consumes the run of table rows starting at lines[0] and
// returns the table section plus the number of lines consumed. The first
// row supplies the column names; data rows are serialized one per line
// with cells joined by ", ".
func parseTable(lines []string) (domain.Section, int) {
	consumed := 0
	var rows [][]string
	for consumed < len(lines) && isTableRow(lines[consumed]) {
		if !isSeparatorRow(lines[consumed]) {
			rows = append(rows, splitCells(lines[consumed]))
		}
		consumed++
	}

	var columns []string
	var bodyRows []string
	for i, cells := range rows {
		if i == 0 {
			columns = cells
			continue
		}
		bodyRows = append(bodyRows, strings.Join(cells, ", "))
	}

	return domain.Section{
		Kind:    domain.KindTable,
		Columns: columns,
		Body:    strings.Join(bodyRows, "\n"),
	}, consumed
}

func splitCells(line string) []string {
	trimmed := strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(trimmed, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}
