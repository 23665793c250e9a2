package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mailroom/internal/importer"
	"mailroom/internal/queue"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var retryFailed bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze every document in the configured source once",
		Long:  "Merges the source listing into the queue, drains it one document at a time, and prints the classification of every extracted mail piece.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sess, err := ctx.buildSession(cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			result, err := importer.Sync(cmd.Context(), sess.source, sess.loc, sess.kind, sess.store)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(result.Added) == 0 {
				fmt.Fprintln(out, "No documents to analyze.")
				return nil
			}
			fmt.Fprintf(out, "Analyzing %d document(s)...\n", len(result.Added))

			sess.engine.Run(cmd.Context())

			if retryFailed {
				if reset := sess.store.RetryFailed(); reset > 0 {
					fmt.Fprintf(out, "Retrying %d failed document(s)...\n", reset)
					sess.engine.Run(cmd.Context())
				}
			}

			printOutcomes(cmd, sess.store)
			return nil
		},
	}

	cmd.Flags().BoolVar(&retryFailed, "retry-failed", false, "Reset failed documents and drain the queue a second time")
	return cmd
}

func printOutcomes(cmd *cobra.Command, store *queue.Store) {
	out := cmd.OutOrStdout()

	var rows [][]string
	for _, item := range store.List() {
		if item.Status == queue.StatusFailed {
			rows = append(rows, []string{
				item.DisplayName, string(item.Status), "", "", "", item.ErrorMessage,
			})
			continue
		}
		for _, piece := range item.Results {
			id := piece.CanonicalID
			if piece.GeneratedID {
				id += " (generated)"
			}
			rows = append(rows, []string{
				item.DisplayName,
				string(item.Status),
				id,
				string(piece.Classification),
				string(piece.Routing),
				piece.SuggestedFilename,
			})
		}
	}
	if len(rows) > 0 {
		headers := []string{"Document", "Status", "ID", "Classification", "Routing", "Suggested name"}
		fmt.Fprintln(out, renderTable(headers, rows))
	}
	fmt.Fprintln(out, statusSummary(store))
}

// statusSummary renders per-status counts in lifecycle order, skipping
// states with no items.
func statusSummary(store *queue.Store) string {
	stats := store.Stats()
	counts := map[queue.Status]int{
		queue.StatusPending:   stats.Pending,
		queue.StatusAnalyzing: stats.Analyzing,
		queue.StatusCompleted: stats.Completed,
		queue.StatusReview:    stats.Review,
		queue.StatusFailed:    stats.Failed,
	}
	parts := make([]string, 0, len(counts))
	for _, status := range store.SortedStatuses() {
		parts = append(parts, fmt.Sprintf("%s %d", status, counts[status]))
	}
	if len(parts) == 0 {
		return "queue empty"
	}
	return strings.Join(parts, ", ")
}
