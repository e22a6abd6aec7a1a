package informatics

import (
	"net/http"
	"time"

	"github.com/eolymp/autosubmit/cmd/backoff"
	"github.com/eolymp/autosubmit/cmd/httpx"
	"go.uber.org/zap"
)

// Client automates informatics.msk.ru judge: login, problem lookup, submission and polling
type Client struct {
	endpoints     endpoints
	transport     httpx.Client
	requester     *requester
	log           *zap.Logger
	policy        backoff.Policy
	clock         backoff.Clock
	timeout       time.Duration
	submitTimeout time.Duration
	userAgent     string
	headers       http.Header
	retryRejected bool
	observers     []Observer
}

// NewClient for the judge located at base URL
func NewClient(base string, opts ...Option) *Client {
	if base == "" {
		base = DefaultURL
	}

	cli := &Client{
		endpoints:     newEndpoints(base),
		transport:     httpx.Transport(nil),
		log:           zap.NewNop(),
		policy:        backoff.Forever(),
		clock:         backoff.System,
		timeout:       10 * time.Second,
		submitTimeout: time.Second,
		userAgent:     "autosubmit/1.0",
		retryRejected: true,
	}

	for _, opt := range opts {
		opt(cli)
	}

	if cli.log == nil {
		cli.log = zap.NewNop()
	}

	if cli.policy == nil {
		cli.policy = backoff.Forever()
	}

	if cli.clock == nil {
		cli.clock = backoff.System
	}

	cli.requester = &requester{
		transport: httpx.RoundTripper(httpx.NewClient(
			cli.transport,
			httpx.WithHeaders(cli.headers),
			httpx.WithUserAgent(cli.userAgent),
			httpx.WithLog(cli.log),
		)),
		timeout: cli.timeout,
		log:     cli.log,
	}

	return cli
}
