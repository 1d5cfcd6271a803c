// Package syncer pushes the dirty records of an edit buffer to the remote
// sentence store and reports the outcome per record.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"wikitrans/internal/domain"
	"wikitrans/internal/ports"
	"wikitrans/internal/usecase/buffer"
)

const defaultMaxParallel = 8

// Buffer is the part of the edit buffer the controller drives.
type Buffer interface {
	ProjectID() string
	BeginCommit() ([]buffer.Pending, error)
	Acknowledge(p buffer.Pending) bool
	EndCommit()
}

type Deps struct {
	Store       ports.SentenceStore
	Credentials ports.Credentials
	// Journal is optional; journal failures are logged and never fail a commit.
	Journal     ports.CommitJournal
	Events      ports.EventEmitter
	Logger      *slog.Logger
	MaxParallel int
}

type Controller struct {
	d   Deps
	now func() time.Time
}

func New(d Deps) *Controller {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Events == nil {
		d.Events = ports.NopEmitter{}
	}
	if d.MaxParallel <= 0 {
		d.MaxParallel = defaultMaxParallel
	}
	return &Controller{d: d, now: time.Now}
}

// Commit issues one independent update per dirty record. A failed record
// never blocks or rolls back the others; only succeeded records leave the
// dirty set. A second call while one is running returns
// domain.ErrCommitInProgress without side effects.
func (c *Controller) Commit(ctx context.Context, buf Buffer) (*domain.CommitReport, error) {
	pending, err := buf.BeginCommit()
	if err != nil {
		return nil, err
	}
	defer buf.EndCommit()

	report := &domain.CommitReport{
		ID:        uuid.NewString(),
		ProjectID: buf.ProjectID(),
		Attempted: len(pending),
		StartedAt: c.now().UTC(),
	}
	if len(pending) == 0 {
		report.FinishedAt = report.StartedAt
		return report, nil
	}
	log := c.d.Logger.With("commit", report.ID, "project", report.ProjectID)
	c.begin(ctx, report)
	log.Info("commit started", "records", len(pending))

	outcomes := make([]domain.CommitOutcome, len(pending))
	var expireOnce sync.Once
	g := new(errgroup.Group)
	g.SetLimit(c.d.MaxParallel)
	for i, p := range pending {
		i, p := i, p
		g.Go(func() error {
			o := c.push(ctx, p)
			switch o.Status {
			case domain.OutcomeSucceeded:
				if !buf.Acknowledge(p) {
					log.Debug("record edited during push, kept dirty", "sentence", p.SentenceID)
				}
			case domain.OutcomeUnauthorized:
				expireOnce.Do(c.expire)
			default:
				log.Warn("record push failed", "sentence", p.SentenceID, "reason", o.Reason)
			}
			outcomes[i] = o
			c.d.Events.Emit("commit.item.done", o)
			return nil
		})
	}
	_ = g.Wait()

	// outcomes keep dirty-set order regardless of completion order
	for _, o := range outcomes {
		report.Record(o)
		c.item(ctx, report.ID, o)
	}
	report.FinishedAt = c.now().UTC()
	c.finish(ctx, report)
	log.Info("commit finished", "succeeded", len(report.Succeeded), "failed", len(report.Failed), "unauthorized", len(report.Unauthorized))
	return report, nil
}

func (c *Controller) push(ctx context.Context, p buffer.Pending) domain.CommitOutcome {
	err := c.d.Store.PatchTranslation(ctx, p.SentenceID, p.Text)
	return Classify(p.SentenceID, err)
}

// Classify maps a store error to a per-record outcome.
func Classify(id int64, err error) domain.CommitOutcome {
	if err == nil {
		return domain.CommitOutcome{SentenceID: id, Status: domain.OutcomeSucceeded}
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		return domain.CommitOutcome{SentenceID: id, Status: domain.OutcomeUnauthorized, Reason: err.Error()}
	}
	var re *domain.RecordError
	if errors.As(err, &re) {
		return domain.CommitOutcome{SentenceID: id, Status: domain.OutcomeFailed, Reason: re.Reason}
	}
	return domain.CommitOutcome{SentenceID: id, Status: domain.OutcomeFailed, Reason: err.Error()}
}

func (c *Controller) expire() {
	if c.d.Credentials != nil {
		c.d.Credentials.Expire()
	}
}

func (c *Controller) begin(ctx context.Context, r *domain.CommitReport) {
	if c.d.Journal == nil {
		return
	}
	e := &domain.CommitEntry{ID: r.ID, ProjectID: r.ProjectID, Status: "running", Attempted: r.Attempted, StartedAt: r.StartedAt}
	if err := c.d.Journal.Begin(ctx, e); err != nil {
		c.d.Logger.Error("journal begin", "commit", r.ID, "err", err)
	}
}

func (c *Controller) item(ctx context.Context, commitID string, o domain.CommitOutcome) {
	if c.d.Journal == nil {
		return
	}
	it := &domain.CommitItem{CommitID: commitID, SentenceID: o.SentenceID, Status: string(o.Status), Error: o.Reason}
	if err := c.d.Journal.AddItem(ctx, it); err != nil {
		c.d.Logger.Error("journal item", "commit", commitID, "sentence", o.SentenceID, "err", err)
	}
}

func (c *Controller) finish(ctx context.Context, r *domain.CommitReport) {
	if c.d.Journal == nil {
		return
	}
	e := &domain.CommitEntry{
		ID:         r.ID,
		ProjectID:  r.ProjectID,
		Status:     commitStatus(r),
		Attempted:  r.Attempted,
		Succeeded:  len(r.Succeeded),
		Failed:     len(r.Failed) + len(r.Unauthorized),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	if err := c.d.Journal.Finish(ctx, e); err != nil {
		c.d.Logger.Error("journal finish", "commit", r.ID, "err", err)
	}
}

func commitStatus(r *domain.CommitReport) string {
	bad := len(r.Failed) + len(r.Unauthorized)
	switch {
	case bad == 0:
		return "done"
	case len(r.Succeeded) == 0:
		return "failed"
	default:
		return "partial"
	}
}

// Summary renders a one-line description of a report for logs and CLIs.
func Summary(r *domain.CommitReport) string {
	return fmt.Sprintf("commit %s: %d attempted, %d succeeded, %d failed", r.ID, r.Attempted, len(r.Succeeded), len(r.Failed)+len(r.Unauthorized))
}
