// Package summarizer builds short extractive summaries of ingested documents.
package summarizer

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"strings"

	"pdfrag/internal/textutil"
)

const defaultMaxSentences = 5

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// FrequencySummarizer picks the sentences whose content words are most
// frequent across the whole document.
type FrequencySummarizer struct{}

// NewFrequencySummarizer creates a FrequencySummarizer.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{}
}

type rankedSentence struct {
	pos   int
	text  string
	score float64
}

// Summarize returns up to maxSentences of the highest scoring sentences in
// document order. Line breaks from page layout are folded into spaces. Text
// without a sentence terminator is returned whole.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = defaultMaxSentences
	}
	text = textutil.CollapseSpace(text)
	raw := sentencePattern.FindAllString(text, -1)
	if len(raw) == 0 {
		return text, nil
	}

	words := make([][]string, len(raw))
	for i, sent := range raw {
		words[i] = textutil.Words(sent)
	}
	weights := termWeights(words)

	ranked := make([]rankedSentence, len(raw))
	for i, sent := range raw {
		ranked[i] = rankedSentence{pos: i, text: strings.TrimSpace(sent), score: score(words[i], weights)}
	}
	slices.SortStableFunc(ranked, func(a, b rankedSentence) int { return cmp.Compare(b.score, a.score) })
	ranked = ranked[:min(maxSentences, len(ranked))]
	slices.SortFunc(ranked, func(a, b rankedSentence) int { return cmp.Compare(a.pos, b.pos) })

	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.text
	}
	return strings.Join(out, " "), nil
}

// termWeights counts content words over all sentences, scaled so the most
// frequent word weighs 1.
func termWeights(sentences [][]string) map[string]float64 {
	counts := make(map[string]float64)
	top := 0.0
	for _, toks := range sentences {
		for _, tok := range toks {
			if textutil.IsStopword(tok) {
				continue
			}
			counts[tok]++
			top = max(top, counts[tok])
		}
	}
	for tok, n := range counts {
		counts[tok] = n / top
	}
	return counts
}

// score sums the word weights, damped by sqrt(length) so long sentences do
// not win on size alone.
func score(words []string, weights map[string]float64) float64 {
	if len(words) == 0 {
		return 0
	}
	total := 0.0
	for _, w := range words {
		total += weights[w]
	}
	return total / math.Sqrt(float64(len(words)))
}
