package informatics

import (
	"net/http"
	"time"

	"github.com/eolymp/autosubmit/cmd/backoff"
	"github.com/eolymp/autosubmit/cmd/httpx"
	"go.uber.org/zap"
)

type Option func(*Client)

// WithTransport sets HTTP client used for every single request, it must not follow redirects
func WithTransport(transport httpx.Client) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithLogger sets logger
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithPolicy sets retry policy used by page fetcher, login and submission polling
func WithPolicy(policy backoff.Policy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithClock replaces system clock, used in tests
func WithClock(clock backoff.Clock) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

// WithTimeout sets timeout of a single request
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithSubmitTimeout sets timeout of the upload request. Upload is expected to time out, the result is confirmed by
// polling submission list.
func WithSubmitTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.submitTimeout = timeout
	}
}

// WithUserAgent sets User-Agent header
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.userAgent = agent
	}
}

// WithHeaders adds headers to every outgoing request
func WithHeaders(headers http.Header) Option {
	return func(c *Client) {
		if c.headers == nil {
			c.headers = http.Header{}
		}

		for h, v := range headers {
			c.headers[http.CanonicalHeaderKey(h)] = v
		}
	}
}

// WithRejectedLoginRetry controls whether a login rejected by the judge is retried like a transient failure
func WithRejectedLoginRetry(retry bool) Option {
	return func(c *Client) {
		c.retryRejected = retry
	}
}

// WithObserver adds workflow observer
func WithObserver(observers ...Observer) Option {
	return func(c *Client) {
		c.observers = append(c.observers, observers...)
	}
}
