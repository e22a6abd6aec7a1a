package informatics

import (
	"context"
	"net/http"
	"net/url"

	"github.com/eolymp/autosubmit/cmd/backoff"
	"go.uber.org/zap"
)

// GetPage repeats GET request until page is received and server does not respond with 5xx status code. With the
// default policy it never gives up.
func (c *Client) GetPage(ctx context.Context, rawurl string, query url.Values, jar http.CookieJar) (*Page, error) {
	var page *Page

	err := backoff.Retry(ctx, c.policy, c.clock, func(attempt int) (bool, error, error) {
		p, err := c.requester.Get(ctx, rawurl, query, jar, 0)
		if err != nil {
			return false, nil, err
		}

		if p == nil {
			return false, &TransientFailure{Op: "GET " + rawurl}, nil
		}

		if p.StatusCode/100 == 5 {
			c.log.Debug("Server error, retrying", zap.String("url", rawurl), zap.Int("status", p.StatusCode), zap.Int("attempt", attempt))
			return false, &TransientFailure{Op: "GET " + rawurl, Status: p.StatusCode}, nil
		}

		page = p
		return true, nil, nil
	})

	if err != nil {
		return nil, err
	}

	return page, nil
}
