package informatics_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/eolymp/autosubmit/cmd/backoff"
	"github.com/eolymp/autosubmit/cmd/httpx"
	"github.com/eolymp/autosubmit/cmd/informatics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestClient_GetPage(t *testing.T) {
	t.Run("retries timeouts and server errors", func(t *testing.T) {
		f := newFixture(t, []func(httpx.Client) httpx.Client{flaky("/mod/statements/view3.php", 3)})
		f.judge.statements["1"] = "113"
		f.judge.failures["/mod/statements/view3.php"] = 2

		page, err := f.client.GetPage(context.Background(), f.server.URL+"/mod/statements/view3.php?id=1", nil, nil)
		if err != nil {
			t.Fatal("GetPage has failed:", err)
		}

		if page == nil || page.StatusCode != http.StatusOK {
			t.Fatalf("GetPage must return successful page, got %+v", page)
		}

		if got := len(f.clock.Sleeps()); got != 5 {
			t.Errorf("GetPage must sleep once per failed attempt (5), got %d", got)
		}

		for _, d := range f.clock.Sleeps() {
			if d != time.Second {
				t.Errorf("GetPage must sleep 1 second between attempts, got %v", d)
			}
		}
	})

	t.Run("client errors are returned as is", func(t *testing.T) {
		f := newFixture(t, nil)

		page, err := f.client.GetPage(context.Background(), f.server.URL+"/mod/statements/view3.php?id=404", nil, nil)
		if err != nil {
			t.Fatal("GetPage has failed:", err)
		}

		if page.StatusCode != http.StatusNotFound {
			t.Errorf("GetPage must return 404 page, got %v", page.StatusCode)
		}

		if len(f.clock.Sleeps()) != 0 {
			t.Errorf("GetPage must not retry 404, slept %v", f.clock.Sleeps())
		}
	})

	t.Run("transport errors are not retried", func(t *testing.T) {
		broken := errors.New("connection refused")

		f := newFixture(t, []func(httpx.Client) httpx.Client{
			func(httpx.Client) httpx.Client {
				return httpx.ClientFunc(func(req *http.Request) (*http.Response, error) {
					return nil, broken
				})
			},
		})

		_, err := f.client.GetPage(context.Background(), f.server.URL+"/", nil, nil)
		if !errors.Is(err, broken) {
			t.Errorf("GetPage must return transport error, got %v", err)
		}
	})

	t.Run("bounded policy gives up", func(t *testing.T) {
		f := newFixture(t, nil, informatics.WithPolicy(&backoff.Constant{Interval: time.Second, MaxAttempts: 3}))
		f.judge.failures["/"] = 10

		_, err := f.client.GetPage(context.Background(), f.server.URL+"/", nil, nil)
		if !errors.Is(err, backoff.ErrExhausted) {
			t.Fatalf("GetPage must return ErrExhausted, got %v", err)
		}

		var failure *informatics.TransientFailure
		if !errors.As(err, &failure) || failure.Status != http.StatusInternalServerError {
			t.Errorf("GetPage must wrap the last transient failure, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		f := newFixture(t, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.client.GetPage(ctx, f.server.URL+"/", nil, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("GetPage must return context error, got %v", err)
		}
	})

	t.Run("slow response is a timeout", func(t *testing.T) {
		f := newFixture(t, []func(httpx.Client) httpx.Client{
			func(c httpx.Client) httpx.Client {
				calls := 0
				return httpx.ClientFunc(func(req *http.Request) (*http.Response, error) {
					calls++
					if calls == 1 {
						<-req.Context().Done()
						return nil, req.Context().Err()
					}

					return c.Do(req)
				})
			},
		}, informatics.WithTimeout(50*time.Millisecond))

		page, err := f.client.GetPage(context.Background(), f.server.URL+"/", nil, nil)
		if err != nil {
			t.Fatal("GetPage has failed:", err)
		}

		if page.StatusCode != http.StatusOK {
			t.Errorf("GetPage must return landing page, got %v", page.StatusCode)
		}

		if len(f.clock.Sleeps()) != 1 {
			t.Errorf("GetPage must retry timed out request once, slept %v", f.clock.Sleeps())
		}
	})
}

func TestClient_GetPageHeaders(t *testing.T) {
	var got http.Header

	record := func(c httpx.Client) httpx.Client {
		return httpx.ClientFunc(func(req *http.Request) (*http.Response, error) {
			got = req.Header.Clone()
			return c.Do(req)
		})
	}

	f := newFixture(t, []func(httpx.Client) httpx.Client{record},
		informatics.WithHeaders(http.Header{"accept-language": {"ru"}}),
		informatics.WithUserAgent("tester/2.0"),
	)

	if _, err := f.client.GetPage(context.Background(), f.server.URL+"/mod/statements/view3.php?id=404", nil, nil); err != nil {
		t.Fatal("GetPage has failed:", err)
	}

	if got.Get("Accept-Language") != "ru" {
		t.Errorf("Request must carry configured headers, got %v", got)
	}

	if got.Get("User-Agent") != "tester/2.0" {
		t.Errorf("Request must carry configured user agent, got %q", got.Get("User-Agent"))
	}
}

func TestClient_GetPageTimeoutKinds(t *testing.T) {
	tt := []struct {
		name string
		err  error
		want string
	}{
		{name: "dial", err: &net.OpError{Op: "dial", Net: "tcp", Err: timeoutError{}}, want: "connect timeout"},
		{name: "read", err: &net.OpError{Op: "read", Net: "tcp", Err: timeoutError{}}, want: "read timeout"},
		{name: "bare", err: timeoutError{}, want: "read timeout"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)

			failed := false
			fail := func(c httpx.Client) httpx.Client {
				return httpx.ClientFunc(func(req *http.Request) (*http.Response, error) {
					if !failed {
						failed = true
						return nil, tc.err
					}

					return c.Do(req)
				})
			}

			f := newFixture(t, []func(httpx.Client) httpx.Client{fail}, informatics.WithLogger(zap.New(core)))
			f.judge.statements["1"] = "113"

			page, err := f.client.GetPage(context.Background(), f.server.URL+"/mod/statements/view3.php?id=1", nil, nil)
			if err != nil {
				t.Fatal("GetPage has failed:", err)
			}

			if page.StatusCode != http.StatusOK {
				t.Errorf("GetPage must return page after timeout, got %v", page.StatusCode)
			}

			entries := logs.FilterMessage(tc.want).All()
			if len(entries) != 1 || entries[0].Level != zapcore.WarnLevel {
				t.Errorf("Timeout must be logged once as %q warning, got %v", tc.want, entries)
			}

			other := "read timeout"
			if tc.want == other {
				other = "connect timeout"
			}

			if n := logs.FilterMessage(other).Len(); n != 0 {
				t.Errorf("Timeout must not be logged as %q, got %d entries", other, n)
			}
		})
	}
}
