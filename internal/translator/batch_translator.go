package translator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nerdneilsfield/go-docx-translator/internal/config"
	"github.com/nerdneilsfield/go-docx-translator/internal/document"
	"github.com/nerdneilsfield/go-docx-translator/pkg/providers"
	"go.uber.org/zap"
)

// BatchTranslator partitions text units into fixed-size batches and
// drives one translation round-trip per batch through the backend.
// Batches run strictly sequentially: unit order is deterministic and
// the backend is never hit concurrently.
type BatchTranslator struct {
	provider       providers.TranslationProvider
	parser         *AlignmentParser
	logger         *zap.Logger
	targetLanguage string
	batchSize      int
	batchDelay     time.Duration
}

// NewBatchTranslator creates a new batch translator
func NewBatchTranslator(provider providers.TranslationProvider, cfg *config.Config, logger *zap.Logger) *BatchTranslator {
	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	return &BatchTranslator{
		provider:       provider,
		parser:         NewAlignmentParser(logger),
		logger:         logger,
		targetLanguage: cfg.TargetLanguage,
		batchSize:      batchSize,
		batchDelay:     time.Duration(cfg.BatchDelay) * time.Second,
	}
}

// ProcessUnits translates all units batch by batch. The returned slice
// has the same length and order as the input; only Text changes, and a
// batch whose backend call fails keeps its original texts.
func (t *BatchTranslator) ProcessUnits(ctx context.Context, units []document.TextUnit) []document.TextUnit {
	result := make([]document.TextUnit, len(units))
	copy(result, units)

	totalBatches := (len(units) + t.batchSize - 1) / t.batchSize
	t.logger.Info("processing paragraphs in batches",
		zap.Int("paragraphs", len(units)),
		zap.Int("batches", totalBatches))

	for start := 0; start < len(result); start += t.batchSize {
		end := start + t.batchSize
		if end > len(result) {
			end = len(result)
		}
		batch := result[start:end]
		batchIndex := start / t.batchSize

		t.logger.Info("processing batch",
			zap.Int("batch", batchIndex+1),
			zap.Int("total", totalBatches))

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].Text
		}

		translated := t.translateBatch(ctx, texts, batchIndex)
		for i := range batch {
			batch[i].Text = translated[i]
			t.logSample(&batch[i])
		}

		// Courtesy throttle between batches, not an error-recovery wait.
		if t.batchDelay > 0 && end < len(result) {
			select {
			case <-ctx.Done():
				t.logger.Warn("run cancelled, remaining batches keep original text")
				return result
			case <-time.After(t.batchDelay):
			}
		}
	}

	t.logger.Info("completed batch processing", zap.Int("paragraphs", len(result)))
	return result
}

// translateBatch performs one round-trip for a batch of texts. Any
// backend failure degrades the whole batch to its original texts; the
// failure never propagates.
func (t *BatchTranslator) translateBatch(ctx context.Context, texts []string, batchIndex int) []string {
	body := buildBatchBody(texts)
	if body == "" {
		// Nothing translatable in this batch.
		return texts
	}

	req := &providers.ProviderRequest{
		Text:           buildPrompt(body, t.targetLanguage),
		TargetLanguage: t.targetLanguage,
	}

	resp, err := t.provider.Translate(ctx, req)
	if err != nil {
		t.logger.Error("batch translation failed, keeping original texts",
			zap.Int("batch", batchIndex+1),
			zap.Error(err))
		return texts
	}

	return t.parser.Parse(resp.Text, texts)
}

// buildBatchBody builds the numbered prompt body. Units are numbered by
// their 1-based position in the batch; empty texts are excluded from
// the prompt but keep their slot for realignment.
func buildBatchBody(texts []string) string {
	var numbered []string
	for i, text := range texts {
		if strings.TrimSpace(text) != "" {
			numbered = append(numbered, fmt.Sprintf("%d. %s", i+1, text))
		}
	}
	return strings.Join(numbered, "\n\n")
}

// buildPrompt wraps the numbered body in the translation instruction.
func buildPrompt(body, targetLanguage string) string {
	return fmt.Sprintf(`Translate the following text to %s:

%s

Requirements:
- Translate each numbered paragraph separately
- Return each translation on separate lines, maintaining the same numbering
- Only provide the %s translation
- Do not add any comments or explanations`, targetLanguage, body, targetLanguage)
}

// logSample logs a short sample of the translation for verification
func (t *BatchTranslator) logSample(unit *document.TextUnit) {
	text := unit.Text

	switch {
	case unit.HasImage && strings.TrimSpace(text) == "":
		t.logger.Debug("image-only paragraph", zap.Int("paragraph", unit.Index))
	case unit.HasImage:
		t.logger.Debug("paragraph contains image and text",
			zap.Int("paragraph", unit.Index),
			zap.String("sample", truncate(text, 50)))
	case strings.TrimSpace(text) != "":
		t.logger.Debug("sample translation",
			zap.Int("paragraph", unit.Index),
			zap.String("sample", truncate(text, 100)))
	}
}

// truncate shortens s for log output
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
