package editor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"wikitrans/internal/domain"
	"wikitrans/internal/usecase/syncer"
)

type memStore struct {
	mu      sync.Mutex
	records []*domain.Sentence
	listErr error
	errs    map[int64]error
	patched map[int64]string
}

func newMemStore() *memStore {
	return &memStore{
		records: []*domain.Sentence{
			{ID: 1, ProjectID: "hi_india", OriginalText: "Hello"},
			{ID: 2, ProjectID: "hi_india", OriginalText: "World"},
			{ID: 3, ProjectID: "hi_india", OriginalText: "Again"},
		},
		errs:    map[int64]error{},
		patched: map[int64]string{},
	}
}

func (m *memStore) ListSentences(ctx context.Context, projectID string) ([]*domain.Sentence, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*domain.Sentence, len(m.records))
	for i, r := range m.records {
		c := *r
		out[i] = &c
	}
	return out, nil
}

func (m *memStore) PatchTranslation(ctx context.Context, id int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs[id]; err != nil {
		return err
	}
	m.patched[id] = text
	return nil
}

type events struct {
	mu    sync.Mutex
	names []string
	last  map[string]any
}

func (e *events) Emit(name string, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		e.last = map[string]any{}
	}
	e.names = append(e.names, name)
	e.last[name] = payload
}

func (e *events) count(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, x := range e.names {
		if x == name {
			n++
		}
	}
	return n
}

type creds struct{ expired int }

func (c *creds) Token() (string, bool) { return "tok", true }
func (c *creds) Expire()               { c.expired++ }

type upper struct{ calls int }

func (u *upper) Transliterate(ctx context.Context, input, script string) (string, error) {
	u.calls++
	return strings.ToUpper(input) + "/" + script, nil
}

func newVM(store *memStore, ev *events, c *creds, window time.Duration) *ViewModel {
	return New(Deps{
		Store:          store,
		Committer:      syncer.New(syncer.Deps{Store: store, Credentials: c}),
		Credentials:    c,
		Transliterator: &upper{},
		Events:         ev,
		ErrorWindow:    window,
	})
}

func TestOpenEditCommit(t *testing.T) {
	store := newMemStore()
	ev := &events{}
	vm := newVM(store, ev, &creds{}, time.Hour)
	ctx := context.Background()

	if err := vm.Open(ctx, "hi_india"); err != nil {
		t.Fatal(err)
	}
	st := vm.State()
	if st.Phase != PhaseReady || len(st.Records) != 3 || st.Script != "hi" {
		t.Fatalf("state = %+v", st)
	}
	if st.DirtySize != 0 {
		t.Errorf("dirty after open = %d", st.DirtySize)
	}
	if err := vm.Edit(2, "dunia"); err != nil {
		t.Fatal(err)
	}
	if vm.State().DirtySize != 1 {
		t.Errorf("dirty size = %d", vm.State().DirtySize)
	}
	r, err := vm.Commit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.Succeeded, []int64{2}) {
		t.Errorf("succeeded = %v", r.Succeeded)
	}
	st = vm.State()
	if st.Phase != PhaseReady || st.DirtySize != 0 || st.LastReport != r || st.CommitInFlight {
		t.Errorf("state after commit = %+v", st)
	}
	if store.patched[2] != "dunia" {
		t.Errorf("patched = %v", store.patched)
	}
	if ev.count(EventCommitDone) != 1 {
		t.Error("commit.done not emitted")
	}
}

func TestCommitFailureShowsReasonVerbatim(t *testing.T) {
	store := newMemStore()
	store.errs[3] = &domain.RecordError{SentenceID: 3, Status: 403, Reason: "Not enough permission"}
	vm := newVM(store, &events{}, &creds{}, time.Hour)
	ctx := context.Background()
	_ = vm.Open(ctx, "hi_india")
	_ = vm.Edit(1, "a")
	_ = vm.Edit(3, "c")
	r, err := vm.Commit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Failed) != 1 {
		t.Fatalf("failed = %+v", r.Failed)
	}
	st := vm.State()
	if st.ErrorMessage != "Not enough permission" {
		t.Errorf("error = %q", st.ErrorMessage)
	}
	if !reflect.DeepEqual(st.DirtyIDs, []int64{3}) {
		t.Errorf("dirty = %v", st.DirtyIDs)
	}
}

func TestCommitSeveralFailuresListsAll(t *testing.T) {
	store := newMemStore()
	store.errs[1] = &domain.RecordError{Reason: "bad one"}
	store.errs[2] = &domain.RecordError{Reason: "bad two"}
	vm := newVM(store, &events{}, &creds{}, time.Hour)
	ctx := context.Background()
	_ = vm.Open(ctx, "hi_india")
	_ = vm.Edit(1, "a")
	_ = vm.Edit(2, "b")
	_, _ = vm.Commit(ctx)
	msg := vm.State().ErrorMessage
	if !strings.Contains(msg, "bad one") || !strings.Contains(msg, "bad two") {
		t.Errorf("error = %q", msg)
	}
}

func TestOpenFailureRecoversAfterWindow(t *testing.T) {
	store := newMemStore()
	store.listErr = errors.New("connection refused")
	vm := newVM(store, &events{}, &creds{}, 50*time.Millisecond)
	err := vm.Open(context.Background(), "hi_india")
	var le *domain.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	st := vm.State()
	if st.Phase != PhaseError || st.ErrorMessage == "" || len(st.Records) != 0 {
		t.Fatalf("state = %+v", st)
	}
	waitFor(t, func() bool { return vm.State().Phase == PhaseReady })
	if vm.State().ErrorMessage != "" {
		t.Error("banner not cleared")
	}
}

func TestOpenUnauthorizedDelegatesToSession(t *testing.T) {
	store := newMemStore()
	store.listErr = fmt.Errorf("list: %w", domain.ErrUnauthorized)
	c := &creds{}
	ev := &events{}
	vm := newVM(store, ev, c, time.Hour)
	err := vm.Open(context.Background(), "hi_india")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v", err)
	}
	if c.expired != 1 || ev.count(EventSessionGone) != 1 {
		t.Errorf("expired = %d, events = %d", c.expired, ev.count(EventSessionGone))
	}
	if vm.State().ErrorMessage != "" {
		t.Error("authorization failure must not show an in-place error")
	}
}

func TestEditUnknownRecordSurfaces(t *testing.T) {
	vm := newVM(newMemStore(), &events{}, &creds{}, time.Hour)
	_ = vm.Open(context.Background(), "hi_india")
	if err := vm.Edit(99, "x"); !errors.Is(err, domain.ErrUnknownRecord) {
		t.Fatalf("err = %v", err)
	}
	if vm.State().ErrorMessage == "" {
		t.Error("unknown record must set the banner")
	}
}

func TestTransliterateAppliesOnce(t *testing.T) {
	store := newMemStore()
	vm := newVM(store, &events{}, &creds{}, time.Hour)
	ctx := context.Background()
	_ = vm.Open(ctx, "hi_india")
	for _, raw := range []string{"n", "na", "nam"} {
		if _, err := vm.Transliterate(ctx, 1, raw); err != nil {
			t.Fatal(err)
		}
	}
	s, _ := vm.Buffer().Get(1)
	if s.TranslatedText != "NAM/hi" {
		t.Errorf("text = %q", s.TranslatedText)
	}
	if got := vm.State().DirtyIDs; !reflect.DeepEqual(got, []int64{1}) {
		t.Errorf("dirty = %v", got)
	}
}

func TestSignOutEmitsSessionExpired(t *testing.T) {
	c := &creds{}
	ev := &events{}
	vm := newVM(newMemStore(), ev, c, time.Hour)
	vm.SignOut()
	if c.expired != 1 || ev.count(EventSessionGone) != 1 {
		t.Errorf("expired = %d", c.expired)
	}
}

type blockingCommitter struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingCommitter) Commit(ctx context.Context, buf syncer.Buffer) (*domain.CommitReport, error) {
	close(b.started)
	<-b.release
	return &domain.CommitReport{}, nil
}

func TestCommitWhileCommittingIsRejected(t *testing.T) {
	bc := &blockingCommitter{started: make(chan struct{}), release: make(chan struct{})}
	vm := New(Deps{Store: newMemStore(), Committer: bc, ErrorWindow: time.Hour})
	_ = vm.Open(context.Background(), "hi_india")
	done := make(chan struct{})
	go func() {
		_, _ = vm.Commit(context.Background())
		close(done)
	}()
	<-bc.started
	if !vm.State().CommitInFlight {
		t.Error("CommitInFlight not set")
	}
	if _, err := vm.Commit(context.Background()); !errors.Is(err, domain.ErrCommitInProgress) {
		t.Errorf("err = %v", err)
	}
	if vm.State().ErrorMessage != "" {
		t.Error("re-entrancy guard must stay silent")
	}
	// text fields remain editable while committing
	if err := vm.Edit(1, "x"); err != nil {
		t.Errorf("edit during commit: %v", err)
	}
	close(bc.release)
	<-done
}

func TestCommitUnauthorizedExpiresOnce(t *testing.T) {
	store := newMemStore()
	store.errs[1] = fmt.Errorf("patch: %w", domain.ErrUnauthorized)
	store.errs[2] = fmt.Errorf("patch: %w", domain.ErrUnauthorized)
	ev := &events{}
	c := &creds{}
	vm := newVM(store, ev, c, time.Hour)
	ctx := context.Background()
	if err := vm.Open(ctx, "hi_india"); err != nil {
		t.Fatal(err)
	}
	_ = vm.Edit(1, "a")
	_ = vm.Edit(2, "b")
	r, err := vm.Commit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Unauthorized) != 2 || r.HasFailures() {
		t.Errorf("report = %+v", r)
	}
	if c.expired != 1 || ev.count(EventSessionGone) != 1 {
		t.Errorf("expired = %d, events = %d", c.expired, ev.count(EventSessionGone))
	}
	st := vm.State()
	if st.DirtySize != 2 || st.ErrorMessage != "" {
		t.Errorf("state = %+v", st)
	}
}

func TestReloadWithBadRecordsEmptiesBuffer(t *testing.T) {
	store := newMemStore()
	vm := newVM(store, &events{}, &creds{}, time.Hour)
	ctx := context.Background()
	if err := vm.Open(ctx, "hi_india"); err != nil {
		t.Fatal(err)
	}
	_ = vm.Edit(1, "namaste")

	store.records = []*domain.Sentence{
		{ID: 9, ProjectID: "ta_b", OriginalText: "a"},
		{ID: 9, ProjectID: "ta_b", OriginalText: "b"},
	}
	var le *domain.LoadError
	if err := vm.Open(ctx, "ta_b"); !errors.As(err, &le) {
		t.Fatalf("err = %v", err)
	}
	st := vm.State()
	if st.Phase != PhaseError || st.ProjectID != "ta_b" || st.Script != "" {
		t.Errorf("state = %+v", st)
	}
	if len(st.Records) != 0 || st.DirtySize != 0 || vm.Buffer().ProjectID() != "ta_b" {
		t.Errorf("previous project leaked: records=%d dirty=%v buffer=%q", len(st.Records), st.DirtyIDs, vm.Buffer().ProjectID())
	}

	r, err := vm.Commit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if r.Attempted != 0 || len(store.patched) != 0 {
		t.Errorf("stale edits pushed: report=%+v patched=%v", r, store.patched)
	}
}
