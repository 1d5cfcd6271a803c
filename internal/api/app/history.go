package app

import (
	"context"
	"time"

	"wikitrans/internal/ports"
)

type HistoryAPI struct{ repo ports.CommitJournal }

func NewHistoryAPI(repo ports.CommitJournal) *HistoryAPI { return &HistoryAPI{repo: repo} }

type CommitDTO struct {
	ID         string `json:"id"`
	ProjectID  string `json:"project"`
	Status     string `json:"status"`
	Attempted  int    `json:"attempted"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}

func (a *HistoryAPI) List(limit int) ([]*CommitDTO, error) {
	ctx := context.Background()
	cs, err := a.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*CommitDTO, 0, len(cs))
	for _, c := range cs {
		d := &CommitDTO{ID: c.ID, ProjectID: c.ProjectID, Status: c.Status, Attempted: c.Attempted, Succeeded: c.Succeeded, Failed: c.Failed, StartedAt: c.StartedAt.Format(time.RFC3339)}
		if !c.FinishedAt.IsZero() {
			d.FinishedAt = c.FinishedAt.Format(time.RFC3339)
		}
		out = append(out, d)
	}
	return out, nil
}

type CommitItemDTO struct {
	ID         int64  `json:"id"`
	SentenceID int64  `json:"sentence_id"`
	Status     string `json:"status"`
	Error      string `json:"error"`
}

func (a *HistoryAPI) Items(commitID string) ([]*CommitItemDTO, error) {
	ctx := context.Background()
	items, err := a.repo.ListItems(ctx, commitID)
	if err != nil {
		return nil, err
	}
	out := make([]*CommitItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, &CommitItemDTO{ID: it.ID, SentenceID: it.SentenceID, Status: it.Status, Error: it.Error})
	}
	return out, nil
}
