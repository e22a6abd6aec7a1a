package informatics

import (
	"context"
	"net/http"
	"net/url"
	"regexp"

	"go.uber.org/zap"
)

const problemLinkSelector = `[href*="/py/problem/"], [action*="/py/problem/"]`

var problemLinkRule = regexp.MustCompile(`/py/problem/(\d+)`)

// ProblemID resolves problem reference (statement id from URL or title number) to the canonical problem id. When
// the statement page does not exist, reference is assumed to be canonical already.
func (c *Client) ProblemID(ctx context.Context, session *Session, ref string) (string, error) {
	rawurl := c.endpoints.statement()

	page, err := c.GetPage(ctx, rawurl, url.Values{"id": []string{ref}}, session.Jar)
	if err != nil {
		return "", err
	}

	switch page.StatusCode {
	case http.StatusOK:
		id, err := parseProblemID(page)
		if err != nil {
			return "", err
		}

		c.log.Debug("Problem reference resolved", zap.String("reference", ref), zap.String("problem_id", id))

		return id, nil
	case http.StatusNotFound:
		return ref, nil
	default:
		return "", &StatusError{URL: page.URL.String(), Status: page.StatusCode}
	}
}

func parseProblemID(page *Page) (string, error) {
	doc, err := page.Document()
	if err != nil {
		return "", err
	}

	sel := doc.Find(problemLinkSelector)
	for i := range sel.Nodes {
		node := sel.Eq(i)

		for _, attr := range []string{"href", "action"} {
			if match := problemLinkRule.FindStringSubmatch(node.AttrOr(attr, "")); match != nil {
				return match[1], nil
			}
		}
	}

	return "", &ParseError{Page: "statement", Selector: problemLinkSelector}
}
