package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/lukeswitz/wardragon-analytics/internal/apperr"
	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

// ErrKitNotFound is returned by GetKit and RemoveKit when kit_id is unknown.
var ErrKitNotFound = errors.New("repository: kit not found")

var kitColumns = []string{
	"kit_id", "name", "location", "base_url", "enabled", "removed", "created_at", "last_seen",
}

// InsertKit inserts a new kit. It fails (returns a postgres/sqlite unique
// violation wrapped in apperr.KindInternal) if kit_id already exists.
func (db *DB) InsertKit(ctx context.Context, k *schema.Kit) error {
	_, err := db.StatementBuilder().Insert("kits").
		Columns("kit_id", "name", "location", "base_url", "enabled", "created_at").
		Values(k.KitID, k.Name, k.Location, k.BaseURL, k.Enabled, k.CreatedAt).
		ExecContext(ctx)
	if err != nil {
		return apperr.New(apperr.KindInternal, fmt.Sprintf("inserting kit %s", k.KitID), err)
	}
	return nil
}

// GetKit fetches one kit by id, including removed ones (historical data
// still references them).
func (db *DB) GetKit(ctx context.Context, kitID string) (*schema.Kit, error) {
	row := db.StatementBuilder().Select(kitColumns...).From("kits").
		Where(sq.Eq{"kit_id": kitID}).QueryRowContext(ctx)

	var k schema.Kit
	if err := row.Scan(&k.KitID, &k.Name, &k.Location, &k.BaseURL, &k.Enabled, &k.Removed, &k.CreatedAt, &k.LastSeen); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKitNotFound
		}
		return nil, apperr.New(apperr.KindInternal, "scanning kit row", err)
	}
	return &k, nil
}

// ListKits returns every non-removed kit, optionally filtered to one kit_id.
func (db *DB) ListKits(ctx context.Context, kitID string) ([]*schema.Kit, error) {
	q := db.StatementBuilder().Select(kitColumns...).From("kits").Where(sq.Eq{"removed": false})
	if kitID != "" {
		q = q.Where(sq.Eq{"kit_id": kitID})
	}

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, apperr.New(apperr.KindStorageUnavailable, "listing kits", err)
	}
	defer rows.Close()

	var out []*schema.Kit
	for rows.Next() {
		var k schema.Kit
		if err := rows.Scan(&k.KitID, &k.Name, &k.Location, &k.BaseURL, &k.Enabled, &k.Removed, &k.CreatedAt, &k.LastSeen); err != nil {
			return nil, apperr.New(apperr.KindStorageRow, "scanning kit row", err)
		}
		out = append(out, &k)
	}
	return out, rows.Err()
}

// RemoveKit marks a kit removed without deleting it, preserving historical
// drones/signals/health rows that reference it.
func (db *DB) RemoveKit(ctx context.Context, kitID string) error {
	res, err := db.StatementBuilder().Update("kits").
		Set("removed", true).Set("enabled", false).
		Where(sq.Eq{"kit_id": kitID}).ExecContext(ctx)
	if err != nil {
		return apperr.New(apperr.KindInternal, fmt.Sprintf("removing kit %s", kitID), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.New(apperr.KindInternal, "reading rows affected", err)
	}
	if n == 0 {
		return ErrKitNotFound
	}
	return nil
}

// TouchLastSeen sets last_seen to the greater of the existing value and now,
// implementing the upsert rule from the storage contract (last_seen =
// greatest(existing, incoming)).
func (db *DB) TouchLastSeen(ctx context.Context, kitID string, now time.Time) error {
	_, err := db.StatementBuilder().Update("kits").
		Set("last_seen", sq.Expr("CASE WHEN last_seen IS NULL OR last_seen < ? THEN ? ELSE last_seen END", now, now)).
		Where(sq.Eq{"kit_id": kitID}).ExecContext(ctx)
	if err != nil {
		return apperr.New(apperr.KindInternal, fmt.Sprintf("touching last_seen for kit %s", kitID), err)
	}
	return nil
}
