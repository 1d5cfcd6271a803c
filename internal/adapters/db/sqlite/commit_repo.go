package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"wikitrans/internal/domain"
)

// CommitRepo journals every commit and the outcome of each pushed record.
type CommitRepo struct{ *Repo }

func NewCommitRepo(db *sql.DB) *CommitRepo { return &CommitRepo{NewRepo(db)} }

var commitColumns = []string{"id", "project_id", "status", "attempted", "succeeded", "failed", "started_at", "finished_at"}

func (r *CommitRepo) Begin(ctx context.Context, e *domain.CommitEntry) error {
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now().UTC()
	}
	q := r.SQ.Insert("commits").
		Columns("id", "project_id", "status", "attempted", "started_at").
		Values(e.ID, e.ProjectID, e.Status, e.Attempted, e.StartedAt.UTC().Format(time.RFC3339))
	_, err := r.exec(ctx, r.DB, q)
	return err
}

func (r *CommitRepo) AddItem(ctx context.Context, it *domain.CommitItem) error {
	now := time.Now().UTC()
	q := r.SQ.Insert("commit_items").
		Columns("commit_id", "sentence_id", "status", "error", "created_at").
		Values(it.CommitID, it.SentenceID, it.Status, it.Error, now.Format(time.RFC3339))
	res, err := r.exec(ctx, r.DB, q)
	if err != nil {
		return err
	}
	it.ID, _ = res.LastInsertId()
	it.CreatedAt = now
	return nil
}

func (r *CommitRepo) Finish(ctx context.Context, e *domain.CommitEntry) error {
	if e.FinishedAt.IsZero() {
		e.FinishedAt = time.Now().UTC()
	}
	q := r.SQ.Update("commits").
		Set("status", e.Status).
		Set("succeeded", e.Succeeded).
		Set("failed", e.Failed).
		Set("finished_at", e.FinishedAt.UTC().Format(time.RFC3339)).
		Where(sq.Eq{"id": e.ID})
	_, err := r.exec(ctx, r.DB, q)
	return err
}

func (r *CommitRepo) Get(ctx context.Context, id string) (*domain.CommitEntry, error) {
	q := r.SQ.Select(commitColumns...).From("commits").Where(sq.Eq{"id": id}).Limit(1)
	rows, err := r.query(ctx, r.DB, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanCommit(rows)
}

func (r *CommitRepo) List(ctx context.Context, limit int) ([]*domain.CommitEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	q := r.SQ.Select(commitColumns...).From("commits").OrderBy("started_at DESC", "rowid DESC").Limit(uint64(limit))
	rows, err := r.query(ctx, r.DB, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.CommitEntry
	for rows.Next() {
		e, err := scanCommit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *CommitRepo) ListItems(ctx context.Context, commitID string) ([]*domain.CommitItem, error) {
	q := r.SQ.Select("id", "commit_id", "sentence_id", "status", "error", "created_at").
		From("commit_items").Where(sq.Eq{"commit_id": commitID}).OrderBy("id")
	rows, err := r.query(ctx, r.DB, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.CommitItem
	for rows.Next() {
		var it domain.CommitItem
		var created string
		if err := rows.Scan(&it.ID, &it.CommitID, &it.SentenceID, &it.Status, &it.Error, &created); err != nil {
			return nil, err
		}
		it.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, &it)
	}
	return out, rows.Err()
}

// Delete removes a commit together with its items.
func (r *CommitRepo) Delete(ctx context.Context, id string) error {
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := r.exec(ctx, tx, r.SQ.Delete("commit_items").Where(sq.Eq{"commit_id": id})); err != nil {
			return err
		}
		_, err := r.exec(ctx, tx, r.SQ.Delete("commits").Where(sq.Eq{"id": id}))
		return err
	})
}

type rowScanner interface{ Scan(dest ...any) error }

func scanCommit(s rowScanner) (*domain.CommitEntry, error) {
	var e domain.CommitEntry
	var started, finished string
	if err := s.Scan(&e.ID, &e.ProjectID, &e.Status, &e.Attempted, &e.Succeeded, &e.Failed, &started, &finished); err != nil {
		return nil, err
	}
	e.StartedAt, _ = time.Parse(time.RFC3339, started)
	if finished != "" {
		e.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	}
	return &e, nil
}
