package informatics

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Job describes a single submission, it is the only input of Run
type Job struct {
	Username   string
	Password   string
	Problem    string // statement id or problem id
	Source     string // path to the source file
	LanguageID int
}

// Validate job before any request is made
func (j *Job) Validate() error {
	if strings.TrimSpace(j.Username) == "" {
		return fmt.Errorf("%w: username is empty", ErrInvalidJob)
	}

	if strings.TrimSpace(j.Problem) == "" {
		return fmt.Errorf("%w: problem is empty", ErrInvalidJob)
	}

	if j.LanguageID <= 0 {
		return fmt.Errorf("%w: language id must be positive, got %d", ErrInvalidJob, j.LanguageID)
	}

	info, err := os.Stat(j.Source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidJob, j.Source)
	}

	return nil
}

// Receipt describes confirmed submission
type Receipt struct {
	Problem     string       `json:"problem"`
	ProblemID   string       `json:"problem_id"`
	UserID      string       `json:"user_id"`
	LanguageID  int          `json:"language_id"`
	Source      string       `json:"source"`
	Submission  SubmissionID `json:"submission_id"`
	SubmittedAt time.Time    `json:"submitted_at"`
}

// Observer is notified about workflow progress
type Observer interface {
	Authenticated(session *Session)
	ProblemResolved(ref, problemID string)
	Submitted(ctx context.Context, receipt *Receipt) error
}

// NopObserver can be embedded to implement only some of Observer methods
type NopObserver struct{}

func (NopObserver) Authenticated(*Session) {}

func (NopObserver) ProblemResolved(string, string) {}

func (NopObserver) Submitted(context.Context, *Receipt) error {
	return nil
}

// Run logs in, resolves problem and submits the source file until the judge confirms it
func (c *Client) Run(ctx context.Context, job *Job) (*Receipt, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	session, err := c.Auth(ctx, job.Username, job.Password)
	if err != nil {
		return nil, fmt.Errorf("unable to authenticate: %w", err)
	}

	for _, o := range c.observers {
		o.Authenticated(session)
	}

	problemID, err := c.ProblemID(ctx, session, job.Problem)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve problem %q: %w", job.Problem, err)
	}

	for _, o := range c.observers {
		o.ProblemResolved(job.Problem, problemID)
	}

	tracker := c.NewTracker(session, problemID, job.LanguageID, job.Source)

	id, err := c.NewSubmitter(session, tracker).Submit(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to submit %s: %w", job.Source, err)
	}

	receipt := &Receipt{
		Problem:     job.Problem,
		ProblemID:   problemID,
		UserID:      session.UserID,
		LanguageID:  job.LanguageID,
		Source:      job.Source,
		Submission:  id,
		SubmittedAt: c.clock.Now(),
	}

	for _, o := range c.observers {
		if err := o.Submitted(ctx, receipt); err != nil {
			c.log.Error("Observer has failed", zap.Stringer("submission_id", id), zap.Error(err))
		}
	}

	return receipt, nil
}
