package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lukeswitz/wardragon-analytics/internal/apperr"
	"github.com/lukeswitz/wardragon-analytics/pkg/archive"
	"github.com/lukeswitz/wardragon-analytics/pkg/log"
)

// Archiver is the subset of pkg/archive.S3Store that retention needs; an
// interface so retention can be unit-tested without a real S3 client.
type Archiver interface {
	PutChunk(ctx context.Context, name string, data []byte) error
}

// RunRetention drops rows older than retain from table. On postgres this
// uses TimescaleDB's chunk-level drop_chunks, which never blocks access to
// live chunks; on the sqlite3 test backend it falls back to a plain DELETE
// scoped by the time column. If archiver is non-nil and the driver is
// postgres, each chunk's rows are exported as newline-delimited JSON and
// uploaded before the chunk is dropped.
func (db *DB) RunRetention(ctx context.Context, table string, retain time.Duration, archiver Archiver) error {
	cutoff := time.Now().Add(-retain)

	if db.Driver != "postgres" {
		_, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE time < ?", table), cutoff)
		if err != nil {
			return apperr.New(apperr.KindInternal, fmt.Sprintf("retention delete on %s", table), err)
		}
		return nil
	}

	if archiver != nil {
		if err := db.archiveOldChunks(ctx, table, cutoff, archiver); err != nil {
			log.Warnf("retention: archival failed for %s, proceeding with drop anyway: %v", table, err)
		}
	}

	if _, err := db.ExecContext(ctx, `SELECT drop_chunks($1::regclass, older_than => $2)`, table, cutoff); err != nil {
		return apperr.New(apperr.KindInternal, fmt.Sprintf("drop_chunks on %s", table), err)
	}
	return nil
}

// archiveOldChunks exports every chunk of table fully older than cutoff to
// S3 as newline-delimited JSON before the caller drops it.
func (db *DB) archiveOldChunks(ctx context.Context, table string, cutoff time.Time, archiver Archiver) error {
	rows, err := db.QueryxContext(ctx, `
		SELECT chunk_name FROM timescaledb_information.chunks
		WHERE hypertable_name = $1 AND range_end <= $2`, table, cutoff)
	if err != nil {
		return fmt.Errorf("listing chunks for %s: %w", table, err)
	}
	defer rows.Close()

	var chunkNames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scanning chunk name: %w", err)
		}
		chunkNames = append(chunkNames, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, chunk := range chunkNames {
		if err := db.archiveChunk(ctx, table, chunk, archiver); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) archiveChunk(ctx context.Context, table, chunk string, archiver Archiver) error {
	rows, err := db.QueryxContext(ctx, fmt.Sprintf(`SELECT * FROM %s`, chunk))
	if err != nil {
		return fmt.Errorf("reading chunk %s: %w", chunk, err)
	}
	defer rows.Close()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for rows.Next() {
		record := map[string]interface{}{}
		if err := rows.MapScan(record); err != nil {
			return fmt.Errorf("scanning row from %s: %w", chunk, err)
		}
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("encoding row from %s: %w", chunk, err)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	name := fmt.Sprintf("%s/%s_%s.ndjson", table, chunk, time.Now().UTC().Format("20060102T150405Z"))
	return archiver.PutChunk(ctx, name, buf.Bytes())
}

var _ Archiver = (*archive.S3Store)(nil)
