package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kirillkom/health-assistant/internal/infrastructure/lexicon"
	"github.com/kirillkom/health-assistant/internal/infrastructure/storage/localfs"
)

func newLexiconCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lexicon",
		Short: "Print the effective lexicon as YAML",
		Long:  "Print stop words, synonyms, penalty keywords and categories in the format accepted by --lexicon.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lex, err := lexicon.Load(cmd.Context(), localfs.New(""), opts.config(cmd).LexiconPath)
			if err != nil {
				return err
			}
			return lexicon.Encode(cmd.OutOrStdout(), lex)
		},
	}
}
