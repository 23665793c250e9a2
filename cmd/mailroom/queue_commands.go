package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect or clear archived analysis results",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueStatsCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show archived analysis results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			archive, err := ctx.requireCatalog(cfg)
			if err != nil {
				return err
			}
			defer archive.Close()

			rows, err := archive.Results(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No archived results.")
				return nil
			}

			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				id := row.CanonicalID
				if row.GeneratedID {
					id += " (generated)"
				}
				tableRows = append(tableRows, []string{
					id,
					row.DocumentDate,
					row.Sender,
					row.Recipient,
					row.Classification,
					row.DisplayName,
				})
			}
			headers := []string{"ID", "Date", "Sender", "Recipient", "Classification", "Document"}
			fmt.Fprintln(out, renderTable(headers, tableRows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of rows (0 shows all)")
	return cmd
}

func newQueueStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize archived results per classification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			archive, err := ctx.requireCatalog(cfg)
			if err != nil {
				return err
			}
			defer archive.Close()

			rows, err := archive.Results(cmd.Context(), 0)
			if err != nil {
				return err
			}

			counts := make(map[string]int)
			for _, row := range rows {
				counts[row.Classification]++
			}
			classifications := make([]string, 0, len(counts))
			for classification := range counts {
				classifications = append(classifications, classification)
			}
			sort.Strings(classifications)

			tableRows := make([][]string, 0, len(classifications)+1)
			for _, classification := range classifications {
				tableRows = append(tableRows, []string{classification, fmt.Sprintf("%d", counts[classification])})
			}
			tableRows = append(tableRows, []string{"total", fmt.Sprintf("%d", len(rows))})
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Classification", "Pieces"}, tableRows, "Pieces"))
			return nil
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every archived result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			archive, err := ctx.requireCatalog(cfg)
			if err != nil {
				return err
			}
			defer archive.Close()

			removed, err := archive.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d archived result(s)\n", removed)
			return nil
		},
	}
}
