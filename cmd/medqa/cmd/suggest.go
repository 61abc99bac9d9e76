package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSuggestCmd(opts *rootOptions) *cobra.Command {
	var (
		topic string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Sample stored questions, optionally about a topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			assistant, err := opts.assistant(cmd)
			if err != nil {
				return err
			}
			for _, question := range assistant.SuggestedQuestions(cmd.Context(), topic, limit) {
				fmt.Fprintln(cmd.OutOrStdout(), question)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "only questions containing this text")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of questions (default from SUGGESTIONS_DEFAULT_LIMIT)")
	return cmd
}
