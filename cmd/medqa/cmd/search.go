package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <question>",
		Short: "List corpus documents ranked by relevance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			assistant, err := opts.assistant(cmd)
			if err != nil {
				return err
			}

			docs := assistant.SearchRelevantDocs(cmd.Context(), strings.Join(args, " "), limit)
			out := cmd.OutOrStdout()
			if len(docs) == 0 {
				fmt.Fprintln(out, "no matching documents")
				return nil
			}
			for i, doc := range docs {
				fmt.Fprintf(out, "%d. [%s] %s (%s)\n", i+1, doc.DocID, doc.QuestionVI, doc.Source)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of documents (default from SEARCH_DEFAULT_LIMIT)")
	return cmd
}
