// Package editor is the view model behind the sentence editor: it owns
// the edit buffer of one session and exposes the state the presentation
// layer renders.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"wikitrans/internal/domain"
	"wikitrans/internal/ports"
	"wikitrans/internal/usecase/buffer"
	"wikitrans/internal/usecase/syncer"
)

type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseReady      Phase = "ready"
	PhaseCommitting Phase = "committing"
	PhaseError      Phase = "error"
)

const DefaultErrorWindow = 5 * time.Second

// Event names pushed through ports.EventEmitter.
const (
	EventState       = "editor.state"
	EventError       = "editor.error"
	EventCommitDone  = "commit.done"
	EventSessionGone = "session.expired"
)

type State struct {
	Phase          Phase                `json:"phase"`
	ProjectID      string               `json:"project_id"`
	Script         string               `json:"script"`
	Records        []domain.Sentence    `json:"records"`
	DirtyIDs       []int64              `json:"dirty_ids"`
	DirtySize      int                  `json:"dirty_size"`
	ErrorMessage   string               `json:"error_message"`
	CommitInFlight bool                 `json:"commit_in_flight"`
	LastReport     *domain.CommitReport `json:"last_report,omitempty"`
}

// Committer is satisfied by *syncer.Controller.
type Committer interface {
	Commit(ctx context.Context, buf syncer.Buffer) (*domain.CommitReport, error)
}

type Deps struct {
	Store          ports.SentenceStore
	Committer      Committer
	Credentials    ports.Credentials
	Transliterator ports.Transliterator
	Messages       ports.Messages
	Events         ports.EventEmitter
	Logger         *slog.Logger
	Locale         string
	ErrorWindow    time.Duration
}

type ViewModel struct {
	d      Deps
	buf    *buffer.Buffer
	banner *Banner

	mu      sync.Mutex
	phase   Phase
	project string
	script  string
	report  *domain.CommitReport
}

func New(d Deps) *ViewModel {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Events == nil {
		d.Events = ports.NopEmitter{}
	}
	if d.ErrorWindow <= 0 {
		d.ErrorWindow = DefaultErrorWindow
	}
	vm := &ViewModel{d: d, buf: buffer.New(), phase: PhaseReady}
	vm.banner = NewBanner(d.ErrorWindow, vm.onBanner)
	return vm
}

// Buffer exposes the session's edit buffer.
func (vm *ViewModel) Buffer() *buffer.Buffer { return vm.buf }

// Open loads a project's sentences into a fresh buffer.
func (vm *ViewModel) Open(ctx context.Context, projectID string) error {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return vm.fail(&domain.LoadError{Err: domain.ErrEmptyProject})
	}
	if vm.buf.Committing() {
		return vm.fail(&domain.LoadError{ProjectID: projectID, Err: domain.ErrCommitInProgress})
	}
	vm.setPhase(PhaseLoading, func() { vm.project = projectID; vm.script = ""; vm.report = nil })

	script, err := domain.ScriptCode(projectID)
	if err != nil {
		vm.d.Logger.Warn("no transliteration script for project", "project", projectID, "err", err)
		script = ""
	}
	records, err := vm.d.Store.ListSentences(ctx, projectID)
	if err != nil {
		if lerr := vm.buf.Load(projectID, nil); lerr != nil {
			vm.d.Logger.Warn("reset buffer after failed load", "project", projectID, "err", lerr)
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			vm.sessionExpired()
			vm.setPhase(PhaseReady, nil)
			return err
		}
		vm.setPhase(PhaseError, nil)
		return vm.fail(&domain.LoadError{ProjectID: projectID, Err: err})
	}
	if err := vm.buf.Load(projectID, records); err != nil {
		vm.setPhase(PhaseError, nil)
		return vm.fail(err)
	}
	vm.d.Logger.Info("project loaded", "project", projectID, "sentences", len(records))
	vm.setPhase(PhaseReady, func() { vm.script = script })
	return nil
}

// Edit replaces the translated text of one record.
func (vm *ViewModel) Edit(id int64, text string) error {
	if err := vm.buf.ApplyEdit(id, text); err != nil {
		return vm.fail(err)
	}
	vm.emitState()
	return nil
}

// Transliterate runs raw keystrokes through the transliteration provider
// and applies the result as one edit.
func (vm *ViewModel) Transliterate(ctx context.Context, id int64, raw string) (string, error) {
	vm.mu.Lock()
	script := vm.script
	vm.mu.Unlock()
	feed := Feed{T: vm.d.Transliterator, Script: script, Apply: vm.Edit}
	out, err := feed.Emit(ctx, id, raw)
	if err != nil && !errors.Is(err, domain.ErrUnknownRecord) {
		// Edit already surfaced unknown records
		return out, vm.fail(err)
	}
	return out, err
}

// Commit pushes the dirty set. ErrCommitInProgress is returned without
// touching the banner.
func (vm *ViewModel) Commit(ctx context.Context) (*domain.CommitReport, error) {
	vm.mu.Lock()
	switch vm.phase {
	case PhaseCommitting:
		vm.mu.Unlock()
		return nil, domain.ErrCommitInProgress
	case PhaseLoading:
		vm.mu.Unlock()
		return nil, domain.ErrNotReady
	}
	vm.phase = PhaseCommitting
	vm.mu.Unlock()
	vm.emitState()

	report, err := vm.d.Committer.Commit(ctx, vm.buf)
	if err != nil {
		vm.setPhase(PhaseReady, nil)
		if errors.Is(err, domain.ErrCommitInProgress) {
			return nil, err
		}
		return nil, vm.fail(err)
	}
	vm.setPhase(PhaseReady, func() { vm.report = report })
	vm.d.Events.Emit(EventCommitDone, report)
	if len(report.Unauthorized) > 0 {
		// the committer already expired the credential
		vm.d.Events.Emit(EventSessionGone, nil)
	}
	if report.HasFailures() {
		vm.banner.Show(vm.commitFailedText(report))
	}
	return report, nil
}

// SignOut tears the session down the same way a 401 does.
func (vm *ViewModel) SignOut() {
	vm.sessionExpired()
}

func (vm *ViewModel) State() State {
	vm.mu.Lock()
	st := State{
		Phase:      vm.phase,
		ProjectID:  vm.project,
		Script:     vm.script,
		LastReport: vm.report,
	}
	vm.mu.Unlock()
	st.Records = vm.buf.Records()
	st.DirtyIDs = vm.buf.DirtyIDs()
	st.DirtySize = len(st.DirtyIDs)
	st.CommitInFlight = st.Phase == PhaseCommitting
	st.ErrorMessage = vm.banner.Message()
	return st
}

func (vm *ViewModel) sessionExpired() {
	if vm.d.Credentials != nil {
		vm.d.Credentials.Expire()
	}
	vm.d.Events.Emit(EventSessionGone, nil)
}

// fail surfaces err on the banner and returns it.
func (vm *ViewModel) fail(err error) error {
	var le *domain.LoadError
	switch {
	case errors.As(err, &le):
		vm.banner.Show(vm.text("error.load", map[string]any{"Project": le.ProjectID, "Reason": le.Err.Error()}, err.Error()))
	case errors.Is(err, domain.ErrUnknownRecord):
		vm.banner.Show(vm.text("error.unknown_record", map[string]any{"Reason": err.Error()}, err.Error()))
	default:
		vm.banner.Show(err.Error())
	}
	vm.d.Logger.Error("editor", "err", err)
	return err
}

func (vm *ViewModel) commitFailedText(r *domain.CommitReport) string {
	if len(r.Failed) == 1 {
		return r.Failed[0].Reason
	}
	reasons := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		reasons = append(reasons, fmt.Sprintf("#%d: %s", f.SentenceID, f.Reason))
	}
	joined := strings.Join(reasons, "; ")
	return vm.text("error.commit_failed", map[string]any{"Count": len(r.Failed), "Reasons": joined}, joined)
}

func (vm *ViewModel) text(key string, data map[string]any, fallback string) string {
	if vm.d.Messages == nil {
		return fallback
	}
	msg := vm.d.Messages.T(vm.d.Locale, key, data)
	if msg == "" || msg == key {
		return fallback
	}
	return msg
}

func (vm *ViewModel) setPhase(p Phase, with func()) {
	vm.mu.Lock()
	vm.phase = p
	if with != nil {
		with()
	}
	vm.mu.Unlock()
	vm.emitState()
}

func (vm *ViewModel) onBanner(msg string) {
	vm.d.Events.Emit(EventError, msg)
	if msg == "" {
		vm.mu.Lock()
		recovered := vm.phase == PhaseError
		if recovered {
			vm.phase = PhaseReady
		}
		vm.mu.Unlock()
		if recovered {
			vm.emitState()
		}
	}
}

// Refresh pushes the current state to the presentation layer, for callers
// that mutate the buffer directly.
func (vm *ViewModel) Refresh() { vm.emitState() }

func (vm *ViewModel) emitState() {
	vm.d.Events.Emit(EventState, vm.State())
}
