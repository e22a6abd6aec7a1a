package informatics

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/eolymp/autosubmit/cmd/backoff"
	"go.uber.org/zap"
)

// Submitter uploads source file until the judge lists a submission with exactly the same source
type Submitter struct {
	client  *Client
	session *Session
	tracker *Tracker
}

// NewSubmitter for the file tracked by tracker
func (c *Client) NewSubmitter(session *Session, tracker *Tracker) *Submitter {
	return &Submitter{client: c, session: session, tracker: tracker}
}

// Submit returns id of the matching submission. If the file has been submitted before no upload is made. Upload
// responses are ignored, each upload is followed by a look-up in the submission table. The policy is asked with the
// number of uploads made so far before every upload, so MaxAttempts of backoff.Constant is the upload limit.
func (s *Submitter) Submit(ctx context.Context) (SubmissionID, error) {
	c := s.client

	id, ok, err := s.tracker.HasSubmitted(ctx)
	if err != nil {
		return SubmissionID{}, err
	}

	if ok {
		c.log.Info("Source has been submitted before", zap.Stringer("submission_id", id))
		return id, nil
	}

	start := c.clock.Now()

	for upload := 1; ; upload++ {
		wait, ok := c.policy.Next(upload-1, c.clock.Now().Sub(start))
		if !ok {
			return SubmissionID{}, fmt.Errorf("%w: submission of %s is not confirmed after %d uploads", backoff.ErrExhausted, s.tracker.source, upload-1)
		}

		if err := c.clock.Sleep(ctx, wait); err != nil {
			return SubmissionID{}, err
		}

		if err := s.upload(ctx); err != nil {
			return SubmissionID{}, err
		}

		id, ok, err := s.tracker.HasSubmitted(ctx)
		if err != nil {
			return SubmissionID{}, err
		}

		if ok {
			c.log.Info("Submission confirmed", zap.Stringer("submission_id", id), zap.Int("uploads", upload))
			return id, nil
		}
	}
}

func (s *Submitter) upload(ctx context.Context) error {
	t := s.tracker

	content, err := os.ReadFile(t.source)
	if err != nil {
		return fmt.Errorf("unable to read source file: %w", err)
	}

	form := url.Values{"lang_id": []string{strconv.Itoa(t.languageID)}}
	files := []File{{Field: "file", Name: filepath.Base(t.source), Content: content}}

	if _, err := s.client.requester.Post(ctx, s.client.endpoints.submit(t.problemID), form, s.session.Jar, files, s.client.submitTimeout); err != nil {
		return err
	}

	return nil
}
