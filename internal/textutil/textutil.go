// Package textutil holds the word tokenizer shared by the hashing embedder
// and the summarizer.
package textutil

import (
	"regexp"
	"strings"
)

var (
	wordPattern  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)
	spacePattern = regexp.MustCompile(`\s+`)
)

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// Words returns the lowercased words and numbers of text.
func Words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// IsStopword reports whether w is a common English function word.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// CollapseSpace replaces every whitespace run with a single space.
func CollapseSpace(text string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}
