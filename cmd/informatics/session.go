package informatics

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"golang.org/x/net/publicsuffix"
)

// Session of the authenticated user, it is read-only once created
type Session struct {
	Jar    http.CookieJar
	UserID string
}

func newJar() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// NewSession restores session from cookies, eg. saved by a previous run
func NewSession(base string, userID string, cookies []*http.Cookie) (*Session, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}

	jar, err := newJar()
	if err != nil {
		return nil, err
	}

	jar.SetCookies(u, cookies)

	return &Session{Jar: jar, UserID: userID}, nil
}
