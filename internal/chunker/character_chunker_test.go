package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCharacterChunker_ThousandCharacters(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 1000; i++ {
		b.WriteByte(byte('a' + i%26))
	}
	text := b.String()

	c := NewCharacterChunker(300, 75)
	chunks := c.Split(text)

	want := [][2]int{{0, 300}, {225, 525}, {450, 750}, {675, 975}, {900, 1000}}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, w := range want {
		if chunks[i] != text[w[0]:w[1]] {
			t.Errorf("chunk %d does not match text[%d:%d] (len %d)", i, w[0], w[1], len(chunks[i]))
		}
	}
}

func TestCharacterChunker_Properties(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
	}{
		{name: "shorter than size", text: "hello world", size: 300, overlap: 75},
		{name: "exact size", text: strings.Repeat("x", 300), size: 300, overlap: 75},
		{name: "one past size", text: strings.Repeat("y", 301), size: 300, overlap: 75},
		{name: "no overlap", text: strings.Repeat("abc ", 100), size: 50, overlap: 0},
		{name: "multibyte", text: strings.Repeat("ção naïve 日本語 ", 40), size: 37, overlap: 9},
		{name: "tiny window", text: "abcdefghij", size: 2, overlap: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCharacterChunker(tt.size, tt.overlap)
			chunks := c.Split(tt.text)
			if len(chunks) == 0 {
				t.Fatal("expected at least one chunk")
			}
			if got := c.Join(chunks); got != tt.text {
				t.Errorf("Join(Split(text)) did not reconstruct the text")
			}
			for i, ch := range chunks {
				if n := utf8.RuneCountInString(ch); n > tt.size {
					t.Errorf("chunk %d has %d runes, limit %d", i, n, tt.size)
				}
				if i == 0 {
					continue
				}
				prev := []rune(chunks[i-1])
				cur := []rune(ch)
				if string(prev[len(prev)-tt.overlap:]) != string(cur[:tt.overlap]) {
					t.Errorf("chunks %d and %d do not share %d runes", i-1, i, tt.overlap)
				}
			}
		})
	}
}

func TestCharacterChunker_EmptyText(t *testing.T) {
	c := NewCharacterChunker(300, 75)
	if chunks := c.Split(""); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
}

func TestNewCharacterChunker_Defaults(t *testing.T) {
	tests := []struct {
		name        string
		size        int
		overlap     int
		wantSize    int
		wantOverlap int
	}{
		{name: "valid", size: 300, overlap: 75, wantSize: 300, wantOverlap: 75},
		{name: "zero size", size: 0, overlap: 10, wantSize: 300, wantOverlap: 10},
		{name: "overlap too large", size: 100, overlap: 100, wantSize: 100, wantOverlap: 25},
		{name: "negative overlap", size: 40, overlap: -1, wantSize: 40, wantOverlap: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCharacterChunker(tt.size, tt.overlap)
			if c.Size() != tt.wantSize || c.Overlap() != tt.wantOverlap {
				t.Errorf("got size=%d overlap=%d, want %d/%d", c.Size(), c.Overlap(), tt.wantSize, tt.wantOverlap)
			}
		})
	}
}
