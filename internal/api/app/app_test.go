package app

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	csvexp "wikitrans/internal/adapters/exporter/csv"
	exreg "wikitrans/internal/adapters/exporter/registry"
	"wikitrans/internal/adapters/parser/jsonmap"
	parreg "wikitrans/internal/adapters/parser/registry"
	"wikitrans/internal/domain"
	"wikitrans/internal/usecase/editor"
	"wikitrans/internal/usecase/exporter"
	"wikitrans/internal/usecase/importer"
	"wikitrans/internal/usecase/syncer"
)

type store struct{ patched map[int64]string }

func (s *store) ListSentences(ctx context.Context, projectID string) ([]*domain.Sentence, error) {
	return []*domain.Sentence{
		{ID: 1, ProjectID: projectID, OriginalText: "Tea"},
		{ID: 2, ProjectID: projectID, OriginalText: "Milk"},
	}, nil
}

func (s *store) PatchTranslation(ctx context.Context, id int64, text string) error {
	s.patched[id] = text
	return nil
}

type journal struct {
	entries []*domain.CommitEntry
	items   []*domain.CommitItem
}

func (j *journal) Begin(ctx context.Context, e *domain.CommitEntry) error {
	j.entries = append(j.entries, e)
	return nil
}
func (j *journal) AddItem(ctx context.Context, it *domain.CommitItem) error {
	j.items = append(j.items, it)
	return nil
}
func (j *journal) Finish(ctx context.Context, e *domain.CommitEntry) error { return nil }
func (j *journal) Get(ctx context.Context, id string) (*domain.CommitEntry, error) {
	return nil, nil
}
func (j *journal) List(ctx context.Context, limit int) ([]*domain.CommitEntry, error) {
	return j.entries, nil
}
func (j *journal) ListItems(ctx context.Context, commitID string) ([]*domain.CommitItem, error) {
	var out []*domain.CommitItem
	for _, it := range j.items {
		if it.CommitID == commitID {
			out = append(out, it)
		}
	}
	return out, nil
}

func TestImportCommitExportHistory(t *testing.T) {
	st := &store{patched: map[int64]string{}}
	j := &journal{}
	vm := editor.New(editor.Deps{
		Store:       st,
		Committer:   syncer.New(syncer.Deps{Store: st, Journal: j}),
		ErrorWindow: time.Hour,
	})
	ed := NewEditorAPI(vm, nil)
	if _, err := ed.Open("hi_tea"); err != nil {
		t.Fatal(err)
	}

	imp := NewImportAPI(importer.New(parreg.New(jsonmap.New()), nil), vm)
	res, err := imp.ImportBase64(ImportRequest{
		Filename:   "edits.json",
		Format:     "json",
		ContentB64: base64.StdEncoding.EncodeToString([]byte(`{"2":"doodh"}`)),
	})
	if err != nil || res.Applied != 1 {
		t.Fatalf("import = %+v, %v", res, err)
	}
	if s := ed.State(); s.DirtySize != 1 {
		t.Errorf("dirty = %d", s.DirtySize)
	}

	exp := NewExportAPI(exporter.New(exreg.New(csvexp.New())), vm)
	out, err := exp.ExportBase64("csv")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := base64.StdEncoding.DecodeString(out.ContentB64)
	if out.Filename != "hi_tea.csv" || string(b) != "id,original,translation\n1,Tea,\n2,Milk,doodh\n" {
		t.Errorf("export = %s %q", out.Filename, b)
	}

	report, err := ed.Commit()
	if err != nil || len(report.Succeeded) != 1 || st.patched[2] != "doodh" {
		t.Fatalf("commit = %+v, %v", report, err)
	}

	h := NewHistoryAPI(j)
	list, err := h.List(10)
	if err != nil || len(list) != 1 || list[0].ProjectID != "hi_tea" {
		t.Fatalf("history = %+v, %v", list, err)
	}
	items, err := h.Items(list[0].ID)
	if err != nil || len(items) != 1 || items[0].SentenceID != 2 {
		t.Errorf("items = %+v, %v", items, err)
	}
}

func TestImportBadBase64(t *testing.T) {
	vm := editor.New(editor.Deps{})
	imp := NewImportAPI(importer.New(parreg.New(jsonmap.New()), nil), vm)
	if _, err := imp.ImportBase64(ImportRequest{Format: "json", ContentB64: "%%%"}); err == nil {
		t.Error("expected decode error")
	}
}
