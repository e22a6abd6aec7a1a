package informatics

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/eolymp/autosubmit/cmd/backoff"
	"go.uber.org/zap"
)

const userLinkSelector = `div.logininfo a[href*="/user/view.php"]`

// Auth logs in. Successful login is recognized by redirect, response without redirect means credentials were
// rejected. Both rejected and transient failures are retried unless WithRejectedLoginRetry(false) is given.
func (c *Client) Auth(ctx context.Context, username, password string) (*Session, error) {
	form := url.Values{
		"username": []string{username},
		"password": []string{password},
	}

	var page *Page

	err := backoff.Retry(ctx, c.policy, c.clock, func(attempt int) (bool, error, error) {
		jar, err := newJar()
		if err != nil {
			return false, nil, err
		}

		p, err := c.requester.Post(ctx, c.endpoints.login(), form, jar, nil, 0)
		if err != nil {
			return false, nil, err
		}

		var reason error

		switch {
		case p == nil:
			reason = &TransientFailure{Op: "login"}
		case p.StatusCode/100 == 5:
			reason = &TransientFailure{Op: "login", Status: p.StatusCode}
		case len(p.History) == 0:
			if !c.retryRejected {
				return false, nil, ErrAuthenticationRejected
			}

			reason = ErrAuthenticationRejected
		default:
			page = p
			return true, nil, nil
		}

		c.log.Warn("Login attempt has failed", zap.Int("attempt", attempt), zap.Error(reason))

		return false, reason, nil
	})

	if err != nil {
		return nil, err
	}

	userID, err := parseUserID(page)
	if err != nil {
		return nil, err
	}

	first := page.History[0]

	session, err := NewSession(first.Request.URL.String(), userID, first.Cookies())
	if err != nil {
		return nil, err
	}

	c.log.Info("Authenticated", zap.String("username", username), zap.String("user_id", userID))

	return session, nil
}

func parseUserID(page *Page) (string, error) {
	doc, err := page.Document()
	if err != nil {
		return "", err
	}

	link := doc.Find(userLinkSelector).First()

	href, ok := link.Attr("href")
	if !ok {
		return "", &ParseError{Page: "landing", Selector: userLinkSelector}
	}

	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", &ParseError{Page: "landing", Selector: userLinkSelector}
	}

	id := u.Query().Get("id")
	if _, err := strconv.Atoi(id); err != nil {
		return "", &ParseError{Page: "landing", Selector: userLinkSelector + " id"}
	}

	return id, nil
}
