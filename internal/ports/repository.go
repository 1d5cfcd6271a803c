package ports

import (
	"context"
	"wikitrans/internal/domain"
)

type CommitJournal interface {
	Begin(ctx context.Context, e *domain.CommitEntry) error
	AddItem(ctx context.Context, it *domain.CommitItem) error
	Finish(ctx context.Context, e *domain.CommitEntry) error
	Get(ctx context.Context, id string) (*domain.CommitEntry, error)
	List(ctx context.Context, limit int) ([]*domain.CommitEntry, error)
	ListItems(ctx context.Context, commitID string) ([]*domain.CommitItem, error)
}

type CacheRepository interface {
	Get(ctx context.Context, input, script string) (*domain.CacheEntry, error)
	Put(ctx context.Context, entry *domain.CacheEntry) error
}

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Messages renders user-facing text for a message key.
type Messages interface {
	T(locale, key string, data map[string]any) string
}
