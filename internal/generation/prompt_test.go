package generation

import (
	"strings"
	"testing"
)

func TestBuildPrompt_Completion(t *testing.T) {
	got := BuildPrompt(ModeCompletion, "alpha\n---\nbeta", "What?")
	want := "\nContext:\nalpha\n---\nbeta\n---\nQuestion:\nWhat?\n---\nAnswer:\n"
	if got != want {
		t.Errorf("BuildPrompt =\n%q\nwant\n%q", got, want)
	}
}

func TestBuildPrompt_Chat(t *testing.T) {
	got := BuildPrompt(ModeChat, "ctx", "Who?")
	if !strings.HasPrefix(got, "<|system|>\n") {
		t.Errorf("chat prompt should start with the system block: %q", got)
	}
	if !strings.Contains(got, "<|user|>\nContext:\nctx\n\nQuestion: Who?</s>\n") {
		t.Errorf("chat prompt missing user block: %q", got)
	}
	if !strings.HasSuffix(got, "<|assistant|>\n") {
		t.Errorf("chat prompt should end with the assistant marker: %q", got)
	}
}

func TestExtractAnswer(t *testing.T) {
	completion := BuildPrompt(ModeCompletion, "ctx", "q")
	chat := BuildPrompt(ModeChat, "ctx", "q")

	tests := []struct {
		name   string
		mode   PromptMode
		prompt string
		raw    string
		want   string
	}{
		{"completion echo", ModeCompletion, completion, completion + "  Paris. \n", "Paris."},
		{"completion without echo", ModeCompletion, completion, " Paris", "Paris"},
		{"completion with leading noise", ModeCompletion, completion, "<s>" + completion + "Paris", "Paris"},
		{"completion empty answer", ModeCompletion, completion, completion, ""},
		{"chat echo", ModeChat, chat, chat + "Lyon</s>", "Lyon"},
		{"chat without marker", ModeChat, chat, "  Lyon  ", "Lyon"},
		{"chat uses last marker", ModeChat, chat, "<|assistant|>one<|assistant|> two ", "two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractAnswer(tt.mode, tt.prompt, tt.raw); got != tt.want {
				t.Errorf("ExtractAnswer = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeCompletion {
		t.Errorf("ParseMode(\"\") = %q, %v", m, err)
	}
	if m, err := ParseMode("chat"); err != nil || m != ModeChat {
		t.Errorf("ParseMode(chat) = %q, %v", m, err)
	}
	if _, err := ParseMode("free"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
