package cmd

import (
	"github.com/spf13/cobra"

	mcpadapter "github.com/kirillkom/health-assistant/internal/adapters/mcp"
)

var version = "dev"

func newMCPCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the assistant as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			assistant, err := opts.assistant(cmd)
			if err != nil {
				return err
			}
			cfg := opts.config(cmd)
			server := mcpadapter.NewServer(assistant, mcpadapter.Options{
				Version:         version,
				SearchLimit:     cfg.SearchDefaultLimit,
				SuggestionLimit: cfg.SuggestionsDefaultLimit,
			})
			return server.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
