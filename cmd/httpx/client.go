package httpx

import (
	"net/http"
)

// Client is well-known HTTP client interface
type Client interface {
	Do(*http.Request) (*http.Response, error)
}

// NewClient with middleware
func NewClient(cli Client, mw ...func(Client) Client) Client {
	for _, m := range mw {
		cli = m(cli)
	}

	return cli
}

// ClientFunc which implements Client interface
type ClientFunc func(req *http.Request) (*http.Response, error)

// Do HTTP request
func (f ClientFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Transport turns a round tripper into a Client, so middleware can be applied to every single request of a
// redirect chain rather than once per http.Client call.
func Transport(rt http.RoundTripper) Client {
	if rt == nil {
		rt = http.DefaultTransport
	}

	return ClientFunc(rt.RoundTrip)
}

// RoundTripper adapts Client back to http.RoundTripper to be used as http.Client transport. The client must not
// follow redirects itself.
func RoundTripper(c Client) http.RoundTripper {
	return roundTripperFunc(c.Do)
}

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
