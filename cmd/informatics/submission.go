package informatics

import (
	"fmt"
	"strconv"
	"strings"
)

// SubmissionID identifies a run on the judge, its text form is "<contest>-<run>"
type SubmissionID struct {
	ContestID string
	RunID     string
}

// ParseSubmissionID parses "<contest>-<run>" string
func ParseSubmissionID(s string) (SubmissionID, error) {
	contest, run, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok || !isNumber(contest) || !isNumber(run) {
		return SubmissionID{}, fmt.Errorf("%w: %q", ErrInvalidSubmissionID, s)
	}

	return SubmissionID{ContestID: contest, RunID: run}, nil
}

func (id SubmissionID) String() string {
	return id.ContestID + "-" + id.RunID
}

func (id SubmissionID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *SubmissionID) UnmarshalText(text []byte) error {
	parsed, err := ParseSubmissionID(string(text))
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

// IsZero returns true for an empty id
func (id SubmissionID) IsZero() bool {
	return id.ContestID == "" && id.RunID == ""
}

// SubmissionRecord is a row of submission table, first cell is submission id
type SubmissionRecord []string

// ID of the submission
func (r SubmissionRecord) ID() (SubmissionID, error) {
	if len(r) == 0 {
		return SubmissionID{}, fmt.Errorf("%w: empty row", ErrInvalidSubmissionID)
	}

	return ParseSubmissionID(r[0])
}

func isNumber(s string) bool {
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}
