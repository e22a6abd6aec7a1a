package informatics

import (
	"errors"
	"fmt"
)

var (
	ErrAuthenticationRejected = errors.New("informatics: authentication rejected")
	ErrInvalidSubmissionID    = errors.New("informatics: invalid submission id")
	ErrInvalidJob             = errors.New("informatics: invalid job")
)

// ParseError is returned when a page does not have the shape a scraper depends on
type ParseError struct {
	Page     string // page name, eg. "statement"
	Selector string // CSS selector or JSON path which was expected to match
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("informatics: unable to parse %s page, %q not found", e.Page, e.Selector)
}

// TransientFailure describes an attempt which may succeed if repeated: a timeout or a 5xx response
type TransientFailure struct {
	Op     string
	Status int // zero when request has timed out
}

func (e *TransientFailure) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("informatics: %s has timed out", e.Op)
	}

	return fmt.Sprintf("informatics: %s failed with status code %d", e.Op, e.Status)
}

// StatusError is returned for a response status which can not be handled
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("informatics: unexpected status code %d from %s", e.Status, e.URL)
}
