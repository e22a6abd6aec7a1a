package informatics

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Page is a fully read HTTP response
type Page struct {
	StatusCode int
	Body       []byte
	URL        *url.URL
	History    []*http.Response // redirect responses, oldest first, bodies are closed
}

// Document parses page body as HTML
func (p *Page) Document() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
}

// File attached to a multipart POST request
type File struct {
	Field   string
	Name    string
	Content []byte
}

// requester performs single requests. Connect and read timeouts are reported by returning nil page and nil error,
// any other failure is returned as is.
type requester struct {
	transport http.RoundTripper
	timeout   time.Duration
	log       *zap.Logger
}

func (r *requester) Get(ctx context.Context, rawurl string, query url.Values, jar http.CookieJar, timeout time.Duration) (*Page, error) {
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(rawurl, "?") {
			sep = "&"
		}

		rawurl += sep + query.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, err
	}

	return r.do(ctx, req, jar, timeout)
}

func (r *requester) Post(ctx context.Context, rawurl string, form url.Values, jar http.CookieJar, files []File, timeout time.Duration) (*Page, error) {
	if len(files) == 0 {
		req, err := http.NewRequest(http.MethodPost, rawurl, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}

		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		return r.do(ctx, req, jar, timeout)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, f := range files {
		part, err := writer.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return nil, err
		}

		if _, err := part.Write(f.Content); err != nil {
			return nil, err
		}
	}

	for key, values := range form {
		for _, value := range values {
			if err := writer.WriteField(key, value); err != nil {
				return nil, err
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, rawurl, &body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())

	return r.do(ctx, req, jar, timeout)
}

func (r *requester) do(ctx context.Context, req *http.Request, jar http.CookieJar, timeout time.Duration) (*Page, error) {
	if timeout <= 0 {
		timeout = r.timeout
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cli := &http.Client{Transport: r.transport, Jar: jar}

	resp, err := cli.Do(req.WithContext(tctx))
	if err != nil {
		return nil, r.timedOut(ctx, tctx, req, err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, r.timedOut(ctx, tctx, req, err)
	}

	return &Page{
		StatusCode: resp.StatusCode,
		Body:       body,
		URL:        resp.Request.URL,
		History:    history(resp),
	}, nil
}

// timedOut logs timeouts and swallows them, other errors are returned
func (r *requester) timedOut(ctx, tctx context.Context, req *http.Request, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var nerr net.Error
	if !errors.Is(tctx.Err(), context.DeadlineExceeded) && !(errors.As(err, &nerr) && nerr.Timeout()) {
		return err
	}

	kind := "read timeout"

	var oerr *net.OpError
	if errors.As(err, &oerr) && oerr.Op == "dial" {
		kind = "connect timeout"
	}

	r.log.Warn(kind, zap.String("http_method", req.Method), zap.String("http_url", req.URL.String()))

	return nil
}

func history(resp *http.Response) (h []*http.Response) {
	for prev := resp.Request.Response; prev != nil; prev = prev.Request.Response {
		h = append([]*http.Response{prev}, h...)
	}

	return
}
