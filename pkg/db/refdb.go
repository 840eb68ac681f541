package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// RefDB is the reference-genome contig index. The underlying sqlite
// file is read-only and shared by every session, so lookups are safe
// to cache process-wide.
type RefDB struct {
	db    *sql.DB
	cache *lru.Cache[string, int64]
}

const contigCacheSize = 1024

func NewRefDB(sqldb *sql.DB) (*RefDB, error) {
	cache, err := lru.New[string, int64](contigCacheSize)
	if err != nil {
		return nil, err
	}
	return &RefDB{db: sqldb, cache: cache}, nil
}

// ContigLength returns the length of a named contig. The second return
// is false when the contig is not part of the active reference.
func (r *RefDB) ContigLength(name string) (int64, bool, error) {

	if length, ok := r.cache.Get(name); ok {
		return length, true, nil
	}

	ctx := context.TODO()

	var length int64
	err := r.db.QueryRowContext(ctx,
		`SELECT length FROM contig_info WHERE contig_id = ?`, name).Scan(&length)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("contig lookup for %q failed: %w", name, err)
	}

	r.cache.Add(name, length)
	return length, true, nil
}

// Contigs lists all contig names in the reference, for display.
func (r *RefDB) Contigs() ([]string, error) {

	ctx := context.TODO()

	rows, err := r.db.QueryContext(ctx,
		`SELECT contig_id FROM contig_info ORDER BY contig_id`)
	if err != nil {
		return nil, fmt.Errorf("contig listing failed: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}
