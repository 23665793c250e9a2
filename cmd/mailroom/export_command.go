package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write archived results as CSV",
		Long:  "Exports every archived analysis result in spreadsheet-compatible column order. Use --output - to write to stdout.",
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

			if strings.TrimSpace(outputPath) == "-" {
				_, err := archive.ExportCSV(cmd.Context(), cmd.OutOrStdout())
				return err
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				name := fmt.Sprintf("mailroom_%s.csv", time.Now().Format("20060102_150405"))
				target = filepath.Join(cfg.Paths.ExportDir, name)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create export directory: %w", err)
			}
			file, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			count, err := archive.ExportCSV(cmd.Context(), file)
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d result(s) to %s\n", count, target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (default: a timestamped file in the export directory, - for stdout)")
	return cmd
}
