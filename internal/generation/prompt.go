package generation

import (
	"fmt"
	"strings"
)

// PromptMode selects the prompt template and the matching answer extraction.
type PromptMode string

const (
	ModeCompletion PromptMode = "completion"
	ModeChat       PromptMode = "chat"
)

const (
	assistantMarker = "<|assistant|>"
	endOfTurn       = "</s>"

	chatSystemPrompt = "You answer questions using only the provided context. " +
		"If the context does not contain the answer, say that you do not know."
)

// ParseMode converts a configured mode name.
func ParseMode(s string) (PromptMode, error) {
	switch PromptMode(s) {
	case ModeCompletion, ModeChat:
		return PromptMode(s), nil
	case "":
		return ModeCompletion, nil
	}
	return "", fmt.Errorf("unknown prompt mode %q", s)
}

// BuildPrompt fills the template for mode with the retrieved context and the
// user question.
func BuildPrompt(mode PromptMode, context, question string) string {
	if mode == ModeChat {
		return "<|system|>\n" + chatSystemPrompt + endOfTurn + "\n" +
			"<|user|>\nContext:\n" + context + "\n\nQuestion: " + question + endOfTurn + "\n" +
			assistantMarker + "\n"
	}
	return "\nContext:\n" + context + "\n---\nQuestion:\n" + question + "\n---\nAnswer:\n"
}

// ExtractAnswer isolates the model's answer from raw output.
//
// In completion mode the echoed prompt is removed: as a prefix when present,
// otherwise everything up to its first occurrence. Output that never echoes
// the prompt is taken as the answer. In chat mode the answer is the text
// after the last assistant marker, without a closing end-of-turn token.
// The result is trimmed.
func ExtractAnswer(mode PromptMode, prompt, raw string) string {
	if mode == ModeChat {
		if i := strings.LastIndex(raw, assistantMarker); i >= 0 {
			raw = raw[i+len(assistantMarker):]
		}
		return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), endOfTurn))
	}
	if rest, ok := strings.CutPrefix(raw, prompt); ok {
		return strings.TrimSpace(rest)
	}
	if _, after, ok := strings.Cut(raw, prompt); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(raw)
}
