package ports

import (
	"context"
	"wikitrans/internal/domain"
)

// SentenceStore is the remote backend holding a project's sentences.
//
// PatchTranslation returns domain.ErrUnauthorized (wrapped) on 401 and a
// *domain.RecordError when the backend rejects the record.
type SentenceStore interface {
	ListSentences(ctx context.Context, projectID string) ([]*domain.Sentence, error)
	PatchTranslation(ctx context.Context, sentenceID int64, text string) error
}

// Credentials is the session collaborator seen by the core: the current
// bearer token and the hook to call when the backend rejects it.
type Credentials interface {
	Token() (string, bool)
	Expire()
}
