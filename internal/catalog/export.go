package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

// exportHeader is the fixed column order consumed by downstream
// spreadsheets. Do not reorder.
var exportHeader = []string{
	"canonicalItemId",
	"date",
	"sender",
	"recipient",
	"classification",
	"address",
	"reason",
	"suggestedFilename",
}

// ExportCSV writes every archived result as CSV in recording order and
// returns the number of data rows written.
func (c *Catalog) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	rows, err := c.Results(ctx, 0)
	if err != nil {
		return 0, err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("catalog: write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.CanonicalID,
			row.DocumentDate,
			row.Sender,
			row.Recipient,
			row.Classification,
			row.Address,
			row.Reason,
			row.SuggestedFilename,
		}
		if err := writer.Write(record); err != nil {
			return 0, fmt.Errorf("catalog: write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("catalog: flush csv: %w", err)
	}
	return len(rows), nil
}
