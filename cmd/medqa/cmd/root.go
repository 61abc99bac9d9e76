package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kirillkom/health-assistant/internal/bootstrap"
	"github.com/kirillkom/health-assistant/internal/config"
	"github.com/kirillkom/health-assistant/internal/core/usecase"
	"github.com/kirillkom/health-assistant/internal/observability/logging"
)

type rootOptions struct {
	corpusPath  string
	lexiconPath string
	logLevel    string

	cfg config.Config
}

// config resolves the environment and lets flags override it.
func (o *rootOptions) config(cmd *cobra.Command) config.Config {
	cfg := o.cfg
	if cmd.Flags().Changed("corpus") {
		cfg.CorpusPath = o.corpusPath
	}
	if cmd.Flags().Changed("lexicon") {
		cfg.LexiconPath = o.lexiconPath
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	return cfg
}

func (o *rootOptions) assistant(cmd *cobra.Command) (*usecase.AssistantUseCase, error) {
	return bootstrap.LoadAssistant(cmd.Context(), o.config(cmd))
}

// NewRootCmd builds the medqa command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "medqa",
		Short:         "Vietnamese health Q&A assistant",
		Long:          "Answer health questions, search and sample the curated Q/A corpus, and serve it over MCP.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return fmt.Errorf("load .env: %w", err)
			}
			opts.cfg = config.Load()
			cfg := opts.config(cmd)
			slog.SetDefault(logging.NewJSONLoggerTo(cmd.ErrOrStderr(), "medqa", cfg.LogLevel))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.corpusPath, "corpus", "", "corpus JSON file (overrides CORPUS_PATH)")
	flags.StringVar(&opts.lexiconPath, "lexicon", "", "lexicon YAML file (overrides LEXICON_PATH)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newAskCmd(opts))
	root.AddCommand(newSearchCmd(opts))
	root.AddCommand(newSuggestCmd(opts))
	root.AddCommand(newStatsCmd(opts))
	root.AddCommand(newLexiconCmd(opts))
	root.AddCommand(newMCPCmd(opts))
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
