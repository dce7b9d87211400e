package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nerdneilsfield/go-docx-translator/internal/config"
	"github.com/nerdneilsfield/go-docx-translator/internal/logger"
	"github.com/nerdneilsfield/go-docx-translator/internal/translator"
	"github.com/nerdneilsfield/go-docx-translator/pkg/providers/factory"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile     string
	targetLang  string
	batchSize   int
	batchDelay  int
	provider    string
	model       string
	verboseMode bool
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docx-translator [flags] [input_file [output_file]]",
		Short: "Translate DOCX documents while preserving structure and images",
		Long: `docx-translator translates the text of a Word document to another
language while keeping paragraphs, run formatting, tables and embedded
images intact. Paragraphs are translated in batches through a local or
remote LLM backend; anything the pipeline does not understand is
carried through untouched.

Supported providers:
  - ollama: local LLM server (default, no API key needed)
  - openai: OpenAI chat completion API`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args:    cobra.MaximumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			log := logger.NewLogger(verboseMode)
			defer func() {
				_ = log.Sync()
			}()

			cfg, err := config.LoadConfig(cfgFile)
			if err != nil {
				log.Error("failed to load configuration", zap.Error(err))
				os.Exit(1)
			}

			applyFlags(cmd, cfg, args)

			if err := cfg.Validate(); err != nil {
				log.Error("invalid configuration", zap.Error(err))
				os.Exit(1)
			}

			backend, err := factory.NewProvider(cfg)
			if err != nil {
				log.Error("failed to create provider", zap.Error(err))
				os.Exit(1)
			}

			coordinator := translator.NewCoordinator(cfg, backend, log)
			result, err := coordinator.Run(cmd.Context())
			if err != nil {
				log.Error("translation failed", zap.Error(err))
				color.Red("translation failed: %v", err)
				os.Exit(1)
			}

			renderSummary(result)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default .docx-translator.yaml)")
	rootCmd.PersistentFlags().StringVarP(&targetLang, "target-lang", "t", "", "target language")
	rootCmd.PersistentFlags().IntVarP(&batchSize, "batch-size", "b", 0, "paragraphs per translation batch")
	rootCmd.PersistentFlags().IntVar(&batchDelay, "batch-delay", -1, "seconds to wait between batches")
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "translation provider (ollama, openai)")
	rootCmd.PersistentFlags().StringVarP(&model, "model", "m", "", "model name for the provider")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "show verbose logs")

	return rootCmd
}

// applyFlags layers command-line flags and positional arguments over the
// loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config, args []string) {
	if len(args) >= 1 {
		cfg.InputDoc = args[0]
	}
	if len(args) == 2 {
		cfg.OutputDoc = args[1]
	}

	if targetLang != "" {
		cfg.TargetLanguage = targetLang
	}
	if batchSize > 0 {
		cfg.BatchSize = batchSize
	}
	if cmd.Flags().Changed("batch-delay") && batchDelay >= 0 {
		cfg.BatchDelay = batchDelay
	}
	if provider != "" {
		cfg.Provider = provider
	}
	if model != "" {
		cfg.Model = model
	}
	if verboseMode {
		cfg.Verbose = true
	}
}

// renderSummary prints the run summary table
func renderSummary(result *translator.TranslationResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Translation Summary")
	t.AppendRows([]table.Row{
		{"Status", result.Status},
		{"Target language", result.TargetLanguage},
		{"Output file", result.OutputFile},
		{"Paragraphs translated", fmt.Sprintf("%d/%d", result.ParagraphsTranslated, result.TotalParagraphs)},
		{"Tables processed", result.TablesTranslated},
		{"Images preserved", result.ImagesPreserved},
		{"Duration", result.Duration.Round(10 * time.Millisecond)},
	})
	t.SetStyle(table.StyleLight)
	t.Render()

	color.Green("✓ translation completed: %s", result.OutputFile)
}
