package domain

import "time"

type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
	// OutcomeUnauthorized records a push rejected with 401. It is neither
	// surfaced as an in-place error nor cleared from the dirty set.
	OutcomeUnauthorized OutcomeStatus = "unauthorized"
)

type CommitOutcome struct {
	SentenceID int64         `json:"sentence_id"`
	Status     OutcomeStatus `json:"status"`
	Reason     string        `json:"reason,omitempty"`
}

type FailedRecord struct {
	SentenceID int64  `json:"sentence_id"`
	Reason     string `json:"reason"`
}

// CommitReport aggregates the outcomes of one commit.
type CommitReport struct {
	ID           string         `json:"id"`
	ProjectID    string         `json:"project"`
	Attempted    int            `json:"attempted"`
	Succeeded    []int64        `json:"succeeded"`
	Failed       []FailedRecord `json:"failed"`
	Unauthorized []int64        `json:"unauthorized,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
}

func (r *CommitReport) HasFailures() bool { return len(r.Failed) > 0 }

// Record appends one outcome to the report.
func (r *CommitReport) Record(o CommitOutcome) {
	switch o.Status {
	case OutcomeSucceeded:
		r.Succeeded = append(r.Succeeded, o.SentenceID)
	case OutcomeUnauthorized:
		r.Unauthorized = append(r.Unauthorized, o.SentenceID)
	default:
		r.Failed = append(r.Failed, FailedRecord{SentenceID: o.SentenceID, Reason: o.Reason})
	}
}

// CommitEntry is a journal row for one commit, CommitItem one per record.
type CommitEntry struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project"`
	Status     string    `json:"status"` // running, done, partial, failed
	Attempted  int       `json:"attempted"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

type CommitItem struct {
	ID         int64     `json:"id"`
	CommitID   string    `json:"commit_id"`
	SentenceID int64     `json:"sentence_id"`
	Status     string    `json:"status"`
	Error      string    `json:"error"`
	CreatedAt  time.Time `json:"created_at"`
}

type CacheEntry struct {
	ID        int64     `json:"id"`
	Input     string    `json:"input"`
	Script    string    `json:"script"`
	Output    string    `json:"output"`
	CreatedAt time.Time `json:"created_at"`
}
