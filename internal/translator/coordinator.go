package translator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nerdneilsfield/go-docx-translator/internal/config"
	"github.com/nerdneilsfield/go-docx-translator/internal/document"
	"github.com/nerdneilsfield/go-docx-translator/pkg/providers"
	"go.uber.org/zap"
)

// TranslationResult is the immutable summary of one run.
type TranslationResult struct {
	RunID                string
	Status               string
	OutputFile           string
	ParagraphsTranslated int
	TotalParagraphs      int
	TablesTranslated     int
	ImagesPreserved      int
	TargetLanguage       string
	Duration             time.Duration
}

// Coordinator sequences one document translation run: read, batch
// translate paragraphs, carry tables through, merge into the original
// skeleton, write, summarize. Any fatal step aborts the run; recovery
// from backend failures lives inside the batch translator.
type Coordinator struct {
	reader *document.DocxReader
	writer *document.DocxWriter
	batch  *BatchTranslator
	cfg    *config.Config
	logger *zap.Logger
}

// NewCoordinator creates a new coordinator
func NewCoordinator(cfg *config.Config, provider providers.TranslationProvider, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		reader: document.NewDocxReader(logger),
		writer: document.NewDocxWriter(logger),
		batch:  NewBatchTranslator(provider, cfg, logger),
		cfg:    cfg,
		logger: logger,
	}
}

// Run executes the complete translation workflow.
func (c *Coordinator) Run(ctx context.Context) (*TranslationResult, error) {
	start := time.Now()

	c.logger.Info("starting translation",
		zap.String("targetLanguage", c.cfg.TargetLanguage),
		zap.String("provider", c.batch.provider.GetName()))

	inputPath, err := c.cfg.ResolveInputPath()
	if err != nil {
		return nil, err
	}

	content, err := c.reader.Read(inputPath)
	if err != nil {
		return nil, fmt.Errorf("reading document failed: %w", err)
	}

	translated := c.batch.ProcessUnits(ctx, content.Units)

	// Tables pass through untranslated.
	tables := c.mergeTables(content.Tables)

	merged := &document.Content{
		Units:  translated,
		Images: content.Images,
		Tables: tables,
	}

	if err := c.writer.Write(merged, c.cfg.OutputDoc, inputPath); err != nil {
		return nil, fmt.Errorf("writing document failed: %w", err)
	}

	result := &TranslationResult{
		RunID:                uuid.NewString(),
		Status:               "completed",
		OutputFile:           c.cfg.OutputDoc,
		ParagraphsTranslated: len(translated),
		TotalParagraphs:      len(content.Units),
		TablesTranslated:     len(tables),
		ImagesPreserved:      len(content.Images),
		TargetLanguage:       c.cfg.TargetLanguage,
		Duration:             time.Since(start),
	}

	c.logger.Info("translation completed",
		zap.String("runID", result.RunID),
		zap.String("output", result.OutputFile),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// mergeTables carries table snapshots through unchanged. Tables without
// any rows are skipped rather than counted in the run summary.
func (c *Coordinator) mergeTables(tables []document.TableSnapshot) []document.TableSnapshot {
	merged := make([]document.TableSnapshot, 0, len(tables))
	for i, table := range tables {
		if len(table.Rows) == 0 {
			c.logger.Debug("skipping table without rows", zap.Int("table", i+1))
			continue
		}
		c.logger.Info("carrying table through", zap.Int("table", i+1))
		merged = append(merged, table)
	}
	return merged
}
