package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/gantt/internal/apperr"
	"github.com/starford/gantt/internal/models"
)

const chartColumns = `source, profile, output, checksum, row_count, dropped, status, error, rendered_at`

// UpsertChart inserts or replaces a chart record and its warnings within a transaction.
func (db *DB) UpsertChart(rec models.ChartRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO charts (`+chartColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			profile     = excluded.profile,
			output      = excluded.output,
			checksum    = excluded.checksum,
			row_count   = excluded.row_count,
			dropped     = excluded.dropped,
			status      = excluded.status,
			error       = excluded.error,
			rendered_at = excluded.rendered_at
	`, rec.Source, rec.Profile, rec.Output, rec.Checksum, rec.Rows, rec.Dropped,
		rec.Status, rec.Error, rec.RenderedAt.UTC())
	if err != nil {
		return fmt.Errorf("catalog: upsert chart: %w", err)
	}

	// Replace warnings: delete old then bulk insert.
	if _, err := tx.Exec(`DELETE FROM warnings WHERE source = ?`, rec.Source); err != nil {
		return fmt.Errorf("catalog: clear warnings: %w", err)
	}
	if len(rec.Warnings) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO warnings (source, seq, message) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("catalog: prepare warning insert: %w", err)
		}
		defer stmt.Close()
		for i, msg := range rec.Warnings {
			if _, err := stmt.Exec(rec.Source, i, msg); err != nil {
				return fmt.Errorf("catalog: insert warning: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteChart removes a chart record and its warnings.
func (db *DB) DeleteChart(source string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM warnings WHERE source = ?`, source)
	_, _ = tx.Exec(`DELETE FROM charts WHERE source = ?`, source)

	return tx.Commit()
}

// GetChart returns one record, or apperr.ErrNotFound.
func (db *DB) GetChart(source string) (*models.ChartRecord, error) {
	row := db.conn.QueryRow(`SELECT `+chartColumns+` FROM charts WHERE source = ?`, source)
	rec, err := scanChart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chart %s: %w", source, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get chart: %w", err)
	}

	rows, err := db.conn.Query(`SELECT message FROM warnings WHERE source = ? ORDER BY seq`, source)
	if err != nil {
		return nil, fmt.Errorf("catalog: warnings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, err
		}
		rec.Warnings = append(rec.Warnings, msg)
	}
	return rec, rows.Err()
}

// ListCharts returns a page of records ordered by source, optionally
// filtered by profile and status, plus the total number of matches.
func (db *DB) ListCharts(profile, status string, limit, offset int) ([]models.ChartRecord, int, error) {
	var (
		where []string
		args  []any
	)
	if profile != "" {
		where = append(where, "profile = ?")
		args = append(args, profile)
	}
	if status != "" {
		where = append(where, "status = ?")
		args = append(args, status)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM charts`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("catalog: count charts: %w", err)
	}

	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(`SELECT `+chartColumns+` FROM charts`+clause+` ORDER BY source LIMIT ? OFFSET ?`,
		append(args, limit, max(offset, 0))...)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list charts: %w", err)
	}
	defer rows.Close()

	var out []models.ChartRecord
	for rows.Next() {
		rec, err := scanChart(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rec)
	}
	return out, total, rows.Err()
}

// AllChecksums returns source → checksum for every successfully rendered chart.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT source, checksum FROM charts WHERE status = ?`, models.StatusRendered)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var source, cs string
		if err := rows.Scan(&source, &cs); err != nil {
			return nil, err
		}
		out[source] = cs
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChart(s scanner) (*models.ChartRecord, error) {
	var rec models.ChartRecord
	err := s.Scan(&rec.Source, &rec.Profile, &rec.Output, &rec.Checksum, &rec.Rows, &rec.Dropped,
		&rec.Status, &rec.Error, &rec.RenderedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
