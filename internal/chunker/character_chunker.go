package chunker

// CharacterChunker splits text into fixed-size rune windows. Consecutive
// windows share exactly overlap runes; the last window may be shorter.
type CharacterChunker struct {
	size    int
	overlap int
}

// NewCharacterChunker creates a chunker. Non-positive sizes fall back to 300,
// and an overlap outside [0, size) falls back to a quarter of the size.
func NewCharacterChunker(size, overlap int) *CharacterChunker {
	if size <= 0 {
		size = 300
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 4
	}
	return &CharacterChunker{size: size, overlap: overlap}
}

// Size returns the nominal chunk length in runes.
func (c *CharacterChunker) Size() int { return c.size }

// Overlap returns the number of runes shared by adjacent chunks.
func (c *CharacterChunker) Overlap() int { return c.overlap }

// Split returns the chunks of text. Empty text yields no chunks.
func (c *CharacterChunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	step := c.size - c.overlap
	var chunks []string
	for start := 0; ; start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// Join reverses Split: it concatenates chunks dropping the shared overlap.
func (c *CharacterChunker) Join(chunks []string) string {
	var out []rune
	for i, ch := range chunks {
		r := []rune(ch)
		if i > 0 {
			r = r[c.overlap:]
		}
		out = append(out, r...)
	}
	return string(out)
}
