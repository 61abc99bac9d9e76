package cmd

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/health-assistant/internal/core/domain"
	"github.com/kirillkom/health-assistant/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/health-assistant/internal/infrastructure/storage/localfs"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show corpus statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			assistant, err := opts.assistant(cmd)
			if err != nil {
				return err
			}
			stats := assistant.Statistics(cmd.Context())

			if xlsxPath != "" {
				var buf bytes.Buffer
				if err := xlsx.WriteStatistics(&buf, stats); err != nil {
					return err
				}
				if err := localfs.New("").Save(cmd.Context(), xlsxPath, &buf); err != nil {
					return fmt.Errorf("save workbook: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "statistics written to %s\n", xlsxPath)
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), formatStats(stats))
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the statistics to an Excel workbook instead of stdout")
	return cmd
}

func formatStats(stats domain.Statistics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "documents: %d\n", stats.TotalDocs)
	fmt.Fprintf(&b, "sources:   %s\n", strings.Join(stats.Sources, ", "))

	names := make([]string, 0, len(stats.Categories))
	for name := range stats.Categories {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %-14s %d\n", name, stats.Categories[name])
	}
	return b.String()
}
