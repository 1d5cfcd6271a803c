package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownRecord    = errors.New("unknown sentence record")
	ErrCommitInProgress = errors.New("commit already in progress")
	ErrUnauthorized     = errors.New("session expired or not authorized")
	ErrNoSession        = errors.New("no active session")
	ErrInvalidLanguage  = errors.New("invalid target language")
	ErrEmptyProject     = errors.New("project id is required")
	ErrNotReady         = errors.New("editor is not ready")
)

// LoadError reports a failed read of a project's sentences.
type LoadError struct {
	ProjectID string
	Err       error
}

func (e *LoadError) Error() string {
	if e.ProjectID == "" {
		return "load sentences: " + e.Err.Error()
	}
	return fmt.Sprintf("load sentences for %s: %v", e.ProjectID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// RecordError is an application-level rejection of one record. Reason is
// the backend's text and is shown to the user verbatim.
type RecordError struct {
	SentenceID int64
	Status     int
	Reason     string
}

func (e *RecordError) Error() string { return e.Reason }
