package quality

import (
	"strings"
	"unicode"
)

// Heuristic signal that an answer engages with the document domain.
var domainKeywords = []string{
	"financial", "revenue", "loan", "income", "assets",
	"liabilities", "deposits", "capital", "growth", "strategy",
}

// Score rates an answer from 0 to 10 against the retrieved context.
// Length, domain vocabulary, readability, and overlap with the context
// each contribute a capped whole-number share; the total is clamped at
// 10. Length and overlap use integer division, so partial steps earn
// nothing.
func Score(answer string, contexts []string) int {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return 0
	}

	score := 0

	lengthScore := len(strings.Fields(answer)) / 10
	if lengthScore > 5 {
		lengthScore = 5
	}
	score += lengthScore

	lower := strings.ToLower(answer)
	keywordScore := 0
	for _, kw := range domainKeywords {
		if strings.Contains(lower, kw) {
			keywordScore++
		}
	}
	if keywordScore > 3 {
		keywordScore = 3
	}
	score += keywordScore

	if fleschReadingEase(answer) > 60 {
		score += 2
	}

	overlap := sharedWords(answer, strings.Join(contexts, " ")) / 5
	if overlap > 3 {
		overlap = 3
	}
	score += overlap

	if score > 10 {
		score = 10
	}
	return score
}

// sharedWords counts distinct words longer than three characters that
// appear in both texts.
func sharedWords(a, b string) int {
	inB := make(map[string]bool)
	for _, w := range tokenize(b) {
		inB[w] = true
	}

	seen := make(map[string]bool)
	count := 0
	for _, w := range tokenize(a) {
		if len(w) > 3 && inB[w] && !seen[w] {
			seen[w] = true
			count++
		}
	}
	return count
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// fleschReadingEase computes the standard 206.835 - 1.015*(words/sentences)
// - 84.6*(syllables/words) readability formula. Higher means easier.
func fleschReadingEase(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	sentences := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	return 206.835 -
		1.015*(float64(len(words))/float64(sentences)) -
		84.6*(float64(syllables)/float64(len(words)))
}

// countSyllables approximates by counting vowel groups, discounting a
// trailing silent e.
func countSyllables(word string) int {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	if word == "" {
		return 0
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}

	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}
