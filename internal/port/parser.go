package port

import "docqa/internal/domain"

// Parser turns a source file into ordered text and table sections.
// Parse errors propagate unchanged to the caller.
type Parser interface {
	Parse(path string) ([]domain.Section, error)
}
