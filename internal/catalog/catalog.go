// Package catalog archives terminal analysis outcomes in SQLite so they can
// be searched and exported after the in-memory queue is gone.
package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"mailroom/internal/classify"
	"mailroom/internal/queue"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped on incompatible schema changes; an existing
// database with another version is rejected rather than migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the catalog database was written by an
// incompatible version.
var ErrSchemaMismatch = errors.New("catalog schema version mismatch")

// Catalog is a SQLite-backed archive of analysis results.
type Catalog struct {
	db   *sql.DB
	path string
}

// Open connects to (or creates) the catalog database at path.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("catalog: create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("catalog: apply pragma %q: %w", pragma, execErr)
		}
	}

	catalog := &Catalog{db: db, path: path}
	if err := catalog.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return catalog, nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Catalog) initSchema(ctx context.Context) error {
	var tableExists int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("catalog: check schema_version table: %w", err)
	}
	if tableExists == 0 {
		if _, err := c.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("catalog: create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := c.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("catalog: read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, c.path)
	}
	return nil
}

// Record replaces any previously archived rows for the item with its current
// results. Items without results (failed ones) leave no rows behind.
func (c *Catalog) Record(ctx context.Context, item queue.Item) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM analysis_results WHERE item_id = ?", item.ID); err != nil {
		return fmt.Errorf("catalog: clear previous rows: %w", err)
	}

	recordedAt := time.Now().UTC().Format(time.RFC3339Nano)
	for i, result := range item.Results {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO analysis_results (
                item_id, display_name, item_status, piece_index,
                canonical_id, generated_id, document_date, sender, recipient,
                address, document_type, importance, routing, classification,
                reason, confidence, suggested_filename, recorded_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID,
			item.DisplayName,
			string(item.Status),
			i,
			result.CanonicalID,
			boolToInt(result.GeneratedID),
			result.DocumentDate,
			result.Sender,
			result.RecipientName,
			result.DeliveryAddress,
			result.DocumentType,
			string(result.Importance),
			string(result.Routing),
			string(result.Classification),
			reasonFor(result),
			result.Confidence,
			result.SuggestedFilename,
			recordedAt,
		)
		if err != nil {
			return fmt.Errorf("catalog: insert result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit: %w", err)
	}
	return nil
}

// Row is one archived analysis result.
type Row struct {
	ItemID            string
	DisplayName       string
	ItemStatus        string
	CanonicalID       string
	GeneratedID       bool
	DocumentDate      string
	Sender            string
	Recipient         string
	Address           string
	DocumentType      string
	Importance        string
	Routing           string
	Classification    string
	Reason            string
	Confidence        float64
	SuggestedFilename string
	RecordedAt        string
}

// Results returns archived rows in recording order, newest last. A limit of
// zero or less returns everything.
func (c *Catalog) Results(ctx context.Context, limit int) ([]Row, error) {
	query := `SELECT item_id, display_name, item_status, canonical_id, generated_id,
        document_date, sender, recipient, address, document_type, importance,
        routing, classification, reason, confidence, suggested_filename, recorded_at
        FROM analysis_results ORDER BY recorded_at, id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: query results: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		var generated int
		if err := rows.Scan(
			&row.ItemID, &row.DisplayName, &row.ItemStatus, &row.CanonicalID, &generated,
			&row.DocumentDate, &row.Sender, &row.Recipient, &row.Address, &row.DocumentType,
			&row.Importance, &row.Routing, &row.Classification, &row.Reason,
			&row.Confidence, &row.SuggestedFilename, &row.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("catalog: scan row: %w", err)
		}
		row.GeneratedID = generated != 0
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate rows: %w", err)
	}
	return out, nil
}

// Clear removes every archived result and reports how many rows went away.
func (c *Catalog) Clear(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM analysis_results")
	if err != nil {
		return 0, fmt.Errorf("catalog: clear: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("catalog: rows affected: %w", err)
	}
	return removed, nil
}

// reasonFor summarizes why a piece landed in its bucket.
func reasonFor(result queue.AnalysisResult) string {
	switch result.Classification {
	case classify.ForwardAyr, classify.ForwardOz:
		return "destination " + string(result.Routing)
	case classify.DigitalStoreAction:
		return "urgency " + string(result.Importance)
	case classify.DigitalStore:
		return "auto action " + string(result.AutoAction)
	case classify.Shred:
		return "importance " + string(result.Importance) + ", no destination"
	default:
		return "no routing or disposition signal"
	}
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
