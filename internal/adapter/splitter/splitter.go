package splitter

import (
	"strings"
	"unicode"

	"docqa/internal/domain"
)

// Splitter cuts section text into overlapping windows of at most chunkSize
// characters, attaching the caller's metadata verbatim to every chunk.
// Windows end on sentence boundaries; a single atomic unit larger than the
// target (one sentence, or a whole table) is kept in one chunk rather than
// split.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New creates a splitter. Non-positive arguments fall back to the
// 1000/200 defaults.
func New(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 200
	}
	return &Splitter{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Split produces the ordered chunk sequence for one section. It is a pure
// function of its input: the full list is built eagerly.
func (s *Splitter) Split(text string, meta domain.ChunkMetadata) []domain.Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	// Tables are atomic: one serialized table is one chunk, however large.
	if meta.Kind == domain.KindTable || len(text) <= s.chunkSize {
		return []domain.Chunk{{Content: text, Metadata: meta}}
	}

	sentences := SplitSentences(text)

	var chunks []domain.Chunk
	emit := func(content string) {
		chunks = append(chunks, domain.Chunk{Content: content, Metadata: meta})
	}

	var window []string
	winLen := 0
	fresh := 0 // sentences in the window not carried over from the previous chunk

	push := func(sent string) {
		if winLen > 0 {
			winLen++ // joining space
		}
		window = append(window, sent)
		winLen += len(sent)
	}

	// carryOver keeps the trailing sentences of the emitted window, up to
	// the overlap budget, as the start of the next window.
	carryOver := func() {
		var carry []string
		carryLen := 0
		for i := len(window) - 1; i >= 1; i-- {
			add := len(window[i]) + 1
			if carryLen+add > s.overlap {
				break
			}
			carryLen += add
			carry = append(carry, window[i])
		}
		for l, r := 0, len(carry)-1; l < r; l, r = l+1, r-1 {
			carry[l], carry[r] = carry[r], carry[l]
		}
		window = carry
		winLen = carryLen
		fresh = 0
	}

	for _, sent := range sentences {
		if len(sent) > s.chunkSize {
			// Atomic unit exceeding the target: flush and keep it whole.
			if fresh > 0 {
				emit(strings.Join(window, " "))
			}
			emit(sent)
			window = nil
			winLen = 0
			fresh = 0
			continue
		}

		if winLen > 0 && winLen+1+len(sent) > s.chunkSize {
			if fresh > 0 {
				emit(strings.Join(window, " "))
				carryOver()
			} else {
				window = nil
				winLen = 0
			}
			if winLen > 0 && winLen+1+len(sent) > s.chunkSize {
				// The overlap alone would overflow; start clean.
				window = nil
				winLen = 0
			}
		}

		push(sent)
		fresh++
	}

	if fresh > 0 {
		emit(strings.Join(window, " "))
	}

	return chunks
}

// SplitSentences splits text into sentences. A sentence ends at '.', '!'
// or '?' followed by whitespace, or at a line break. Periods inside tokens
// ("3.14", "v1.2") do not end a sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
			continue
		}
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
				continue
			}
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
