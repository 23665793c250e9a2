package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mailroom/internal/importer"
	"mailroom/internal/queue"
	"mailroom/internal/textutil"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "List the documents a run would pick up",
		Long:  "Lists the configured source and merges it into a fresh queue, showing which documents would be analyzed and which are duplicates within the listing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source, kind, location, err := ctx.buildSource(cfg)
			if err != nil {
				return err
			}

			store := queue.NewStore()
			result, err := importer.Sync(cmd.Context(), source, location, kind, store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(result.Added) == 0 {
				fmt.Fprintln(out, "No documents found.")
				return nil
			}

			rows := make([][]string, 0, len(result.Added))
			for i, item := range result.Added {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					item.DisplayName,
					textutil.DeriveTitle(item.DisplayName),
					string(item.SourceRef.Kind),
					item.SourceRef.MimeHint,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Document", "Title", "Source", "Type"}, rows, "#"))
			fmt.Fprintf(out, "%d document(s) ready, %d skipped\n", len(result.Added), result.Skipped)
			return nil
		},
	}
}
