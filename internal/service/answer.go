package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"pdfrag/internal/domain"
	"pdfrag/internal/generation"
	"pdfrag/internal/observability"
)

// ContextDelimiter separates retrieved chunks in the prompt context.
const ContextDelimiter = "\n---\n"

// AnswerDetails is an answer together with the chunks it was conditioned on.
type AnswerDetails struct {
	Answer string
	Chunks []domain.Chunk
}

// Answer returns the answer to question. It never fails: every problem is
// logged and reported as a fixed message.
func (e *Engine) Answer(ctx context.Context, question string) string {
	return e.AnswerDetails(ctx, question).Answer
}

// AnswerDetails is Answer plus the retrieved context, nearest first.
func (e *Engine) AnswerDetails(ctx context.Context, question string) AnswerDetails {
	if strings.TrimSpace(question) == "" {
		return AnswerDetails{Answer: MsgEmptyQuestion}
	}
	if !e.Ready() {
		return AnswerDetails{Answer: MsgNotInitialized}
	}

	ctx, span := observability.Start(ctx, "engine.answer")
	defer span.End()
	start := time.Now()

	chunks, answer, err := e.answer(ctx, question)
	if err != nil {
		observability.RecordError(span, err)
		slog.Error("answering question failed", "error", err)
		return AnswerDetails{Answer: MsgAnswerFailed, Chunks: chunks}
	}
	span.SetAttributes(attribute.Int("answer.chunks", len(chunks)))
	slog.Info("question answered", "chunks", len(chunks), "elapsed", time.Since(start))
	return AnswerDetails{Answer: answer, Chunks: chunks}
}

func (e *Engine) answer(ctx context.Context, question string) ([]domain.Chunk, string, error) {
	qv, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return nil, "", fmt.Errorf("embedding question: %w", err)
	}
	chunks, err := e.store.Nearest(ctx, qv, e.opts.TopK)
	if err != nil {
		return nil, "", fmt.Errorf("retrieving chunks: %w", err)
	}
	if len(chunks) == 0 {
		return chunks, MsgNoInformation, nil
	}

	prompt := generation.BuildPrompt(e.opts.PromptMode, BuildContext(chunks), question)
	raw, err := e.generator.Generate(ctx, prompt, e.opts.Params)
	if err != nil {
		return chunks, "", fmt.Errorf("generating answer: %w", err)
	}
	return chunks, generation.ExtractAnswer(e.opts.PromptMode, prompt, raw), nil
}

// BuildContext joins chunk texts in the given order.
func BuildContext(chunks []domain.Chunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, ContextDelimiter)
}
