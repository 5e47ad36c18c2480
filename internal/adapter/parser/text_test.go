package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseHeadersAndBody(t *testing.T) {
	path := writeDoc(t, `# Annual Report

Revenue grew steadily over the year.

## Outlook

Growth is expected to continue.
`)

	p := NewText()
	sections, err := p.Parse(path)
	require.NoError(t, err)
	require.Len(t, sections, 2)

	assert.Equal(t, domain.KindText, sections[0].Kind)
	assert.Equal(t, "Annual Report", sections[0].Header)
	assert.Equal(t, "Revenue grew steadily over the year.", sections[0].Body)

	assert.Equal(t, "Outlook", sections[1].Header)
	assert.Equal(t, "Growth is expected to continue.", sections[1].Body)
}

func TestParseAllCapsHeader(t *testing.T) {
	path := writeDoc(t, `FINANCIAL SUMMARY

Net income increased by ten percent.
`)

	sections, err := NewText().Parse(path)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "FINANCIAL SUMMARY", sections[0].Header)
	assert.Equal(t, "Net income increased by ten percent.", sections[0].Body)
}

func TestParseTable(t *testing.T) {
	path := writeDoc(t, `# Loans

| Quarter | Amount |
|---------|--------|
| Q1      | 100    |
| Q2      | 200    |

Totals exclude write-offs.
`)

	sections, err := NewText().Parse(path)
	require.NoError(t, err)
	require.Len(t, sections, 2)

	table := sections[0]
	assert.Equal(t, domain.KindTable, table.Kind)
	assert.Equal(t, []string{"Quarter", "Amount"}, table.Columns)
	assert.Equal(t, "Q1, 100\nQ2, 200", table.Body)

	assert.Equal(t, domain.KindText, sections[1].Kind)
	assert.Equal(t, "Loans", sections[1].Header)
	assert.Equal(t, "Totals exclude write-offs.", sections[1].Body)
}

func TestParsePlainProseIsNotHeader(t *testing.T) {
	path := writeDoc(t, `This is an ordinary sentence.
And another one follows it.
`)

	sections, err := NewText().Parse(path)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Empty(t, sections[0].Header)
	assert.Contains(t, sections[0].Body, "ordinary sentence")
}

func TestParseMissingFile(t *testing.T) {
	_, err := NewText().Parse(filepath.Join(t.TempDir(), "absent.md"))
	assert.Error(t, err)
}
