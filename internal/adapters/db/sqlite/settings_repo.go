package sqlite

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

type SettingsRepo struct{ *Repo }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{NewRepo(db)} }

// Get returns "" for a key that was never set.
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var v string
	if _, err := r.scanOne(ctx, r.SQ.Select("value").From("settings").Where(sq.Eq{"key": key}), &v); err != nil {
		return "", err
	}
	return v, nil
}

func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	q := r.SQ.Insert("settings").Columns("key", "value").Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value")
	_, err := r.exec(ctx, r.DB, q)
	return err
}

func (r *SettingsRepo) Delete(ctx context.Context, key string) error {
	_, err := r.exec(ctx, r.DB, r.SQ.Delete("settings").Where(sq.Eq{"key": key}))
	return err
}
