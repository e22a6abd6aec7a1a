package informatics

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	runsEnvelopePath = "result.text"
	runsPageSize     = 500
)

// Tracker looks up submissions of a user for a problem and finds the one matching local source file
type Tracker struct {
	client     *Client
	session    *Session
	problemID  string
	languageID int
	source     string
	seen       map[SubmissionID]struct{}
}

// NewTracker for user's submissions of the source file to the problem in the language
func (c *Client) NewTracker(session *Session, problemID string, languageID int, source string) *Tracker {
	return &Tracker{
		client:     c,
		session:    session,
		problemID:  problemID,
		languageID: languageID,
		source:     source,
		seen:       map[SubmissionID]struct{}{},
	}
}

// Submits returns all rows of the submission table including the header row, in the order given by the judge
func (t *Tracker) Submits(ctx context.Context) ([]SubmissionRecord, error) {
	query := url.Values{
		"problem_id":     []string{t.problemID},
		"from_timestamp": []string{"-1"},
		"to_timestamp":   []string{"-1"},
		"group_id":       []string{"0"},
		"user_id":        []string{t.session.UserID},
		"lang_id":        []string{strconv.Itoa(t.languageID)},
		"status_id":      []string{"-1"},
		"statement_id":   []string{"0"},
		"count":          []string{strconv.Itoa(runsPageSize)},
		"with_comment":   []string{""},
		"page":           []string{"1"},
	}

	page, err := t.client.GetPage(ctx, t.client.endpoints.runs(t.problemID), query, t.session.Jar)
	if err != nil {
		return nil, err
	}

	text := gjson.GetBytes(page.Body, runsEnvelopePath)
	if !text.Exists() {
		return nil, &ParseError{Page: "submissions", Selector: runsEnvelopePath}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text.String()))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, &ParseError{Page: "submissions", Selector: "table"}
	}

	var records []SubmissionRecord

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.Closest("table").Get(0) != table.Get(0) {
			return
		}

		var record SubmissionRecord
		row.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
			record = append(record, strings.TrimSpace(cell.Text()))
		})

		records = append(records, record)
	})

	return records, nil
}

// Source downloads source code of the submission
func (t *Tracker) Source(ctx context.Context, id SubmissionID) (string, error) {
	query := url.Values{
		"objectName": []string{"source"},
		"contest_id": []string{id.ContestID},
		"run_id":     []string{id.RunID},
	}

	page, err := t.client.GetPage(ctx, t.client.endpoints.source(), query, t.session.Jar)
	if err != nil {
		return "", err
	}

	source, ok := textarea(page.Body)
	if !ok {
		return "", &ParseError{Page: "source", Selector: "textarea"}
	}

	return source, nil
}

// textarea returns content of the first textarea as it was sent: line endings and the leading newline are kept,
// only character references are decoded.
func textarea(body []byte) (string, bool) {
	z := html.NewTokenizer(bytes.NewReader(body))

	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) != "textarea" {
				continue
			}

			var raw []byte
			for {
				switch z.Next() {
				case html.TextToken:
					raw = append(raw, z.Raw()...)
				case html.EndTagToken, html.ErrorToken:
					return html.UnescapeString(string(raw)), true
				}
			}
		}
	}
}

// HasSubmitted looks for a submission whose source is exactly the same as the local file. Submissions which were
// compared once are not downloaded again by the same tracker.
func (t *Tracker) HasSubmitted(ctx context.Context) (SubmissionID, bool, error) {
	local, err := os.ReadFile(t.source)
	if err != nil {
		return SubmissionID{}, false, fmt.Errorf("unable to read source file: %w", err)
	}

	records, err := t.Submits(ctx)
	if err != nil {
		return SubmissionID{}, false, err
	}

	if len(records) < 2 {
		return SubmissionID{}, false, nil
	}

	for _, record := range records[1:] {
		id, err := record.ID()
		if err != nil {
			t.client.log.Debug("Skipping submission table row", zap.Strings("row", record), zap.Error(err))
			continue
		}

		if _, ok := t.seen[id]; ok {
			continue
		}

		remote, err := t.Source(ctx, id)
		if err != nil {
			return SubmissionID{}, false, err
		}

		if remote == string(local) {
			return id, true, nil
		}

		t.seen[id] = struct{}{}
	}

	return SubmissionID{}, false, nil
}
