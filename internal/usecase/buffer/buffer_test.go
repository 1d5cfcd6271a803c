package buffer

import (
	"errors"
	"reflect"
	"testing"

	"wikitrans/internal/domain"
)

func sample() []*domain.Sentence {
	return []*domain.Sentence{
		{ID: 1, ProjectID: "fr_greeting", OriginalText: "Hello"},
		{ID: 2, ProjectID: "fr_greeting", OriginalText: "World"},
		{ID: 7, ProjectID: "fr_greeting", OriginalText: "Again"},
	}
}

func loaded(t *testing.T) *Buffer {
	t.Helper()
	b := New()
	if err := b.Load("fr_greeting", sample()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return b
}

func TestDirtyIDsKeepFirstTouchOrder(t *testing.T) {
	b := loaded(t)
	edits := []struct {
		id   int64
		text string
	}{
		{7, "a"}, {1, "b"}, {7, "c"}, {2, "d"}, {1, "e"}, {7, "f"},
	}
	for _, e := range edits {
		if err := b.ApplyEdit(e.id, e.text); err != nil {
			t.Fatalf("ApplyEdit(%d): %v", e.id, err)
		}
	}
	want := []int64{7, 1, 2}
	if got := b.DirtyIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("DirtyIDs = %v, want %v", got, want)
	}
}

func TestApplyEditTwiceKeepsLatestText(t *testing.T) {
	b := loaded(t)
	_ = b.ApplyEdit(1, "Bonjour")
	_ = b.ApplyEdit(1, "Salut")
	if got := b.DirtyIDs(); !reflect.DeepEqual(got, []int64{1}) {
		t.Errorf("DirtyIDs = %v, want [1]", got)
	}
	s, _ := b.Get(1)
	if s.TranslatedText != "Salut" {
		t.Errorf("text = %q, want Salut", s.TranslatedText)
	}
}

func TestApplyEditUnchangedTextStillDirty(t *testing.T) {
	b := loaded(t)
	if err := b.ApplyEdit(2, ""); err != nil {
		t.Fatal(err)
	}
	if !b.IsDirty(2) {
		t.Error("touching a record must mark it dirty")
	}
}

func TestApplyEditUnknownRecord(t *testing.T) {
	b := loaded(t)
	err := b.ApplyEdit(99, "x")
	if !errors.Is(err, domain.ErrUnknownRecord) {
		t.Fatalf("expected ErrUnknownRecord, got %v", err)
	}
	if b.DirtySize() != 0 {
		t.Error("unknown record must not touch the dirty set")
	}
}

func TestLoadClearsDirty(t *testing.T) {
	b := loaded(t)
	_ = b.ApplyEdit(1, "x")
	if err := b.Load("fr_greeting", sample()[:1]); err != nil {
		t.Fatal(err)
	}
	if b.DirtySize() != 0 {
		t.Errorf("DirtySize = %d after Load", b.DirtySize())
	}
	if n := len(b.Records()); n != 1 {
		t.Errorf("Records = %d, want 1", n)
	}
}

func TestLoadRejectedWhileCommitting(t *testing.T) {
	b := loaded(t)
	if _, err := b.BeginCommit(); err != nil {
		t.Fatal(err)
	}
	err := b.Load("fr_greeting", nil)
	var le *domain.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if !errors.Is(err, domain.ErrCommitInProgress) {
		t.Errorf("LoadError should wrap ErrCommitInProgress, got %v", err)
	}
	b.EndCommit()
	if err := b.Load("fr_greeting", nil); err != nil {
		t.Errorf("Load after EndCommit: %v", err)
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	b := loaded(t)
	_ = b.ApplyEdit(1, "x")
	recs := []*domain.Sentence{{ID: 9}, {ID: 9}}
	var le *domain.LoadError
	if err := b.Load("other", recs); !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if b.ProjectID() != "other" || len(b.Records()) != 0 || b.DirtySize() != 0 {
		t.Errorf("buffer after rejected load: project=%q records=%d dirty=%v", b.ProjectID(), len(b.Records()), b.DirtyIDs())
	}
}

func TestBeginCommitIsExclusive(t *testing.T) {
	b := loaded(t)
	_ = b.ApplyEdit(2, "x")
	pending, err := b.BeginCommit()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].SentenceID != 2 || pending[0].Text != "x" {
		t.Fatalf("pending = %+v", pending)
	}
	if _, err := b.BeginCommit(); !errors.Is(err, domain.ErrCommitInProgress) {
		t.Fatalf("expected ErrCommitInProgress, got %v", err)
	}
	if got := b.DirtyIDs(); !reflect.DeepEqual(got, []int64{2}) {
		t.Errorf("DirtyIDs changed by rejected commit: %v", got)
	}
}

func TestAcknowledgeKeepsNewerEdit(t *testing.T) {
	b := loaded(t)
	_ = b.ApplyEdit(1, "first")
	pending, _ := b.BeginCommit()
	_ = b.ApplyEdit(1, "second")
	if b.Acknowledge(pending[0]) {
		t.Error("stale acknowledgement must not clear a newer edit")
	}
	b.EndCommit()
	if !b.IsDirty(1) {
		t.Fatal("record edited mid-push must stay dirty")
	}
	if p, _ := b.Persisted(1); p != "first" {
		t.Errorf("persisted = %q, want first", p)
	}
}

func TestAcknowledgeClears(t *testing.T) {
	b := loaded(t)
	_ = b.ApplyEdit(1, "Bonjour")
	pending, _ := b.BeginCommit()
	if !b.Acknowledge(pending[0]) {
		t.Fatal("Acknowledge returned false")
	}
	b.EndCommit()
	if b.DirtySize() != 0 {
		t.Errorf("DirtyIDs = %v", b.DirtyIDs())
	}
	// editing again after success re-marks the record
	_ = b.ApplyEdit(1, "Bonjour!")
	if !b.IsDirty(1) {
		t.Error("edit after acknowledged push must re-mark dirty")
	}
}

func TestClearDirty(t *testing.T) {
	b := loaded(t)
	_ = b.ApplyEdit(1, "a")
	_ = b.ApplyEdit(2, "b")
	_ = b.ApplyEdit(7, "c")
	b.ClearDirty(2, 42)
	if got := b.DirtyIDs(); !reflect.DeepEqual(got, []int64{1, 7}) {
		t.Errorf("DirtyIDs = %v, want [1 7]", got)
	}
	if p, _ := b.Persisted(2); p != "b" {
		t.Errorf("persisted = %q, want b", p)
	}
}
