package catalog

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"mailroom/internal/classify"
	"mailroom/internal/queue"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func completedItem(id, displayName string) queue.Item {
	item := queue.Item{
		ID:          id,
		DisplayName: displayName,
		Status:      queue.StatusPending,
	}
	item.SetResults([]queue.AnalysisResult{{
		RawRecord: classify.RawRecord{
			RecipientName:   "Senga Dougall",
			DeliveryAddress: "10 Uist Wynd, Ayr KA8 0SS",
			Sender:          "Scottish Power",
			DocumentType:    "bill",
			DocumentDate:    "2025-07-08",
			Importance:      classify.ImportanceHighForward,
			Confidence:      0.92,
		},
		Routing:           classify.RoutingAyr,
		Classification:    classify.ForwardAyr,
		CanonicalID:       "96279",
		SuggestedFilename: "20250708_[Scottish Power]_[Senga Dougall]_[AYR]",
	}})
	return item
}

func TestRecordAndResults(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	if err := c.Record(ctx, completedItem("item-1", "scan.pdf")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	rows, err := c.Results(ctx, 0)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	row := rows[0]
	if row.CanonicalID != "96279" || row.Classification != "forward_ayr" {
		t.Fatalf("row = %+v", row)
	}
	if row.ItemStatus != "completed" {
		t.Errorf("item status = %q", row.ItemStatus)
	}
	if !strings.Contains(row.Reason, "forward_to_ayr") {
		t.Errorf("reason = %q", row.Reason)
	}
}

func TestRecordReplacesPreviousRows(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	item := completedItem("item-1", "scan.pdf")
	if err := c.Record(ctx, item); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := c.Record(ctx, item); err != nil {
		t.Fatalf("Record again: %v", err)
	}

	rows, err := c.Results(ctx, 0)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d after re-record", len(rows))
	}
}

func TestResultsLimit(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := c.Record(ctx, completedItem(id, id+".pdf")); err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
	}
	rows, err := c.Results(ctx, 2)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
}

func TestExportCSVColumnOrder(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	if err := c.Record(ctx, completedItem("item-1", "scan.pdf")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	var buf strings.Builder
	count, err := c.ExportCSV(ctx, &buf)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d", count)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %v", lines)
	}
	wantHeader := "canonicalItemId,date,sender,recipient,classification,address,reason,suggestedFilename"
	if lines[0] != wantHeader {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "96279,2025-07-08,Scottish Power,Senga Dougall,forward_ayr,") {
		t.Fatalf("row = %q", lines[1])
	}
}

func TestClear(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	if err := c.Record(ctx, completedItem("item-1", "scan.pdf")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	removed, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d", removed)
	}
	rows, err := c.Results(ctx, 0)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %d after clear", len(rows))
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.db")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := c.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	c.Close()

	if _, err := Open(path); err == nil {
		t.Fatal("expected schema mismatch error")
	}
}
