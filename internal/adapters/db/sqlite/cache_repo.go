package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"wikitrans/internal/domain"
)

// CacheRepo stores transliterated words keyed by (input, script).
type CacheRepo struct{ *Repo }

func NewCacheRepo(db *sql.DB) *CacheRepo { return &CacheRepo{NewRepo(db)} }

func (r *CacheRepo) Get(ctx context.Context, input, script string) (*domain.CacheEntry, error) {
	q := r.SQ.Select("id", "input", "script", "output", "created_at").
		From("translit_cache").
		Where(sq.Eq{"input": input, "script": script}).
		Limit(1)
	var e domain.CacheEntry
	var created string
	found, err := r.scanOne(ctx, q, &e.ID, &e.Input, &e.Script, &e.Output, &created)
	if !found {
		return nil, err
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &e, nil
}

func (r *CacheRepo) Put(ctx context.Context, entry *domain.CacheEntry) error {
	q := r.SQ.
		Insert("translit_cache").
		Columns("input", "script", "output", "created_at").
		Values(entry.Input, entry.Script, entry.Output, time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(input, script) DO UPDATE SET output=excluded.output")
	_, err := r.exec(ctx, r.DB, q)
	return err
}
