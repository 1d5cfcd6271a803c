package app

import (
	"context"
	"errors"

	"wikitrans/internal/adapters/session"
	"wikitrans/internal/domain"
	"wikitrans/internal/usecase/editor"
)

// EditorAPI is the binding the editor view talks to. State changes are
// also pushed as editor.state events.
type EditorAPI struct {
	vm   *editor.ViewModel
	sess *session.Session
}

func NewEditorAPI(vm *editor.ViewModel, sess *session.Session) *EditorAPI {
	return &EditorAPI{vm: vm, sess: sess}
}

func (a *EditorAPI) Open(projectID string) (editor.State, error) {
	ctx := context.Background()
	err := a.vm.Open(ctx, projectID)
	return a.vm.State(), err
}

func (a *EditorAPI) Edit(sentenceID int64, text string) (editor.State, error) {
	err := a.vm.Edit(sentenceID, text)
	return a.vm.State(), err
}

// Transliterate applies the transliteration of raw to the sentence and
// returns the text now shown in the field.
func (a *EditorAPI) Transliterate(sentenceID int64, raw string) (string, error) {
	ctx := context.Background()
	return a.vm.Transliterate(ctx, sentenceID, raw)
}

// Commit pushes the dirty sentences. A commit already in flight yields a
// nil report and no error.
func (a *EditorAPI) Commit() (*domain.CommitReport, error) {
	ctx := context.Background()
	r, err := a.vm.Commit(ctx)
	if errors.Is(err, domain.ErrCommitInProgress) {
		return nil, nil
	}
	return r, err
}

func (a *EditorAPI) State() editor.State { return a.vm.State() }

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *EditorAPI) Login(req LoginRequest) (bool, error) {
	ctx := context.Background()
	if _, err := a.sess.Login(ctx, req.Username, req.Password); err != nil {
		return false, err
	}
	return true, nil
}

func (a *EditorAPI) SessionActive() bool { return a.sess.Active() }

func (a *EditorAPI) SignOut() { a.vm.SignOut() }
