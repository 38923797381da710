package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"pdfrag/internal/domain"
	"pdfrag/internal/observability"
	"pdfrag/internal/pdf"
)

// Ingest extracts, chunks, embeds and stores the PDF at path. Chunks that
// fail to embed are skipped; the message counts only chunks written.
func (e *Engine) Ingest(ctx context.Context, path string) domain.IngestResult {
	ctx, span := observability.Start(ctx, "engine.ingest", attribute.String("ingest.path", path))
	defer span.End()
	start := time.Now()

	if strings.TrimSpace(path) == "" {
		return domain.IngestResult{Message: MsgInvalidPath}
	}
	if !e.embedder.Ready() || !e.storeReady.Load() {
		return domain.IngestResult{Message: MsgNotInitialized}
	}

	text, err := e.extract(path)
	if err != nil {
		observability.RecordError(span, err)
		slog.Error("pdf extraction failed", "path", path, "error", err)
		var perr *pdf.DocumentParseError
		if errors.As(err, &perr) {
			return domain.IngestResult{Message: fmt.Sprintf("Failed to read the PDF: %v", perr.Err)}
		}
		return domain.IngestResult{Message: fmt.Sprintf("Failed to read the PDF: %v", err)}
	}

	var pieces []string
	for _, c := range e.chunker.Split(text) {
		if strings.TrimSpace(c) != "" {
			pieces = append(pieces, c)
		}
	}
	records := e.embedAll(ctx, path, pieces)

	written, err := e.appendAll(ctx, records)
	if written > 0 || err == nil {
		e.projections.TriggerRecompute()
	}
	span.SetAttributes(
		attribute.Int("ingest.chunks_total", len(pieces)),
		attribute.Int("ingest.chunks_written", written),
	)
	if err != nil {
		observability.RecordError(span, err)
		slog.Error("storing chunks failed", "path", path, "written", written, "total", len(records), "error", err)
		return domain.IngestResult{
			Message: fmt.Sprintf("Failed to store the PDF after %d of %d chunks.", written, len(records)),
			Chunks:  written,
		}
	}

	res := domain.IngestResult{
		Success: true,
		Message: fmt.Sprintf("PDF ingested with %d chunks.", written),
		Chunks:  written,
	}
	if e.summarizer != nil {
		summary, err := e.summarizer.Summarize(text, e.opts.SummaryMaxSentences)
		if err != nil {
			slog.Warn("summarizing document failed", "path", path, "error", err)
		} else {
			res.Summary = summary
		}
	}
	slog.Info("pdf ingested", "path", path, "chunks", len(pieces), "written", written, "elapsed", time.Since(start))
	return res
}

// embedAll embeds pieces with bounded concurrency and returns the successful
// records in document order.
func (e *Engine) embedAll(ctx context.Context, path string, pieces []string) []domain.Chunk {
	vectors := make([][]float32, len(pieces))
	var g errgroup.Group
	g.SetLimit(e.opts.EmbedConcurrency)
	for i, piece := range pieces {
		i, piece := i, piece
		g.Go(func() error {
			v, err := e.embedder.Embed(ctx, piece)
			if err != nil {
				slog.Warn("skipping chunk that failed to embed", "path", path, "chunk", i, "error", err)
				return nil
			}
			vectors[i] = v
			return nil
		})
	}
	_ = g.Wait()

	records := make([]domain.Chunk, 0, len(pieces))
	for i, v := range vectors {
		if v != nil {
			records = append(records, domain.Chunk{Vector: v, Text: pieces[i]})
		}
	}
	return records
}

// appendAll writes one record per call under the ingestion lock.
func (e *Engine) appendAll(ctx context.Context, records []domain.Chunk) (int, error) {
	e.ingestMu.Lock()
	defer e.ingestMu.Unlock()
	for i, r := range records {
		if err := e.store.Append(ctx, []domain.Chunk{r}); err != nil {
			return i, fmt.Errorf("appending chunk %d: %w", i, err)
		}
	}
	return len(records), nil
}
