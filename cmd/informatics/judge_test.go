package informatics_test

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eolymp/autosubmit/cmd/backoff"
	"github.com/eolymp/autosubmit/cmd/httpx"
	"github.com/eolymp/autosubmit/cmd/informatics"
	"go.uber.org/zap/zaptest"
)

const (
	testUsername = "alice"
	testPassword = "secret"
	testUserID   = "42"
	testCookie   = "MoodleSession"
	testSession  = "s3ss10n"
)

type run struct {
	id     string
	source string
}

// judge is a fake informatics.msk.ru
type judge struct {
	mu sync.Mutex

	statements  map[string]string // statement id -> problem id
	runs        []run             // newest first
	ignore      int               // number of uploads ignored before they start to register
	nextRun     int
	logins      int
	uploads     int
	listings    int
	sources     map[string]int // run id -> number of downloads
	failures    map[string]int // path -> number of 500 responses to give
	landingHTML string
	verbatim    bool // escape only & and < in sources, raw CR bytes stay in the page
	stall       bool // upload handler registers the run and then hangs until the client gives up
}

func newJudge() *judge {
	return &judge{
		statements: map[string]string{},
		sources:    map[string]int{},
		failures:   map[string]int{},
		nextRun:    100,
		landingHTML: `<html><body><div class="logininfo">You are logged in as ` +
			`<a href="/user/view.php?id=` + testUserID + `&amp;course=1">Alice</a> (<a href="/login/logout.php">Logout</a>)</div></body></html>`,
	}
}

func (j *judge) authorized(r *http.Request) bool {
	c, err := r.Cookie(testCookie)
	return err == nil && c.Value == testSession
}

func (j *judge) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /login/index.php", func(w http.ResponseWriter, r *http.Request) {
		j.mu.Lock()
		j.logins++
		j.mu.Unlock()

		if r.PostFormValue("username") != testUsername || r.PostFormValue("password") != testPassword {
			fmt.Fprint(w, `<html><body><form id="login"><span class="error">Invalid login, please try again</span></form></body></html>`)
			return
		}

		http.SetCookie(w, &http.Cookie{Name: testCookie, Value: testSession, Path: "/"})
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		if !j.authorized(r) {
			fmt.Fprint(w, `<html><body><div class="logininfo">You are not logged in.</div></body></html>`)
			return
		}

		j.mu.Lock()
		defer j.mu.Unlock()

		fmt.Fprint(w, j.landingHTML)
	})

	mux.HandleFunc("GET /mod/statements/view3.php", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "teapot" {
			w.WriteHeader(http.StatusTeapot)
			return
		}

		j.mu.Lock()
		problem, ok := j.statements[id]
		j.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}

		if problem == "" {
			fmt.Fprint(w, `<html><body><div class="statements_content">No links here</div></body></html>`)
			return
		}

		fmt.Fprintf(w, `<html><body><div class="statements_content"><a href="/mod/statements/view3.php?id=%s">Statement</a>`+
			`<form action="/py/problem/%s/submit" method="post"></form></div></body></html>`, id, problem)
	})

	mux.HandleFunc("GET /py/problem/{id}/filter-runs", func(w http.ResponseWriter, r *http.Request) {
		if !j.authorized(r) {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		j.mu.Lock()
		defer j.mu.Unlock()

		j.listings++

		var b strings.Builder
		b.WriteString(`<table class="table"><tr><th>ID</th><th>User</th><th>Problem</th><th>Status</th></tr>`)
		for _, item := range j.runs {
			fmt.Fprintf(&b, `<tr><td>%s</td><td><a href="/user/view.php?id=%s">Alice</a></td><td>%s</td><td>OK</td></tr>`, item.id, testUserID, r.PathValue("id"))
		}
		b.WriteString(`</table>`)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"result": map[string]interface{}{"text": b.String()},
		})
	})

	mux.HandleFunc("GET /ajax/ajax_file.php", func(w http.ResponseWriter, r *http.Request) {
		if !j.authorized(r) {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		id := r.URL.Query().Get("contest_id") + "-" + r.URL.Query().Get("run_id")

		j.mu.Lock()
		defer j.mu.Unlock()

		j.sources[id]++

		for _, item := range j.runs {
			if item.id == id {
				content := html.EscapeString(item.source)
				if j.verbatim {
					content = strings.NewReplacer("&", "&amp;", "<", "&lt;").Replace(item.source)
				}

				fmt.Fprintf(w, `<html><body><textarea id="source" readonly>%s</textarea></body></html>`, content)
				return
			}
		}

		http.NotFound(w, r)
	})

	mux.HandleFunc("POST /py/problem/{id}/submit", func(w http.ResponseWriter, r *http.Request) {
		if !j.authorized(r) {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil || r.FormValue("lang_id") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		j.mu.Lock()
		j.uploads++
		if j.uploads <= j.ignore {
			j.mu.Unlock()
			return
		}

		j.nextRun++
		j.runs = append([]run{{id: fmt.Sprintf("7-%d", j.nextRun), source: string(data)}}, j.runs...)
		stall := j.stall
		j.mu.Unlock()

		if stall {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}

			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status": "success"}`)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		j.mu.Lock()
		fail := j.failures[r.URL.Path] > 0
		if fail {
			j.failures[r.URL.Path]--
		}
		j.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func (j *judge) count(f func() int) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	return f()
}

// timeoutError mimics a network timeout
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var _ net.Error = timeoutError{}

// flaky fails requests to the path with timeout the given number of times
func flaky(path string, failures int) func(httpx.Client) httpx.Client {
	var mu sync.Mutex

	return func(c httpx.Client) httpx.Client {
		return httpx.ClientFunc(func(req *http.Request) (*http.Response, error) {
			mu.Lock()
			fail := req.URL.Path == path && failures > 0
			if fail {
				failures--
			}
			mu.Unlock()

			if fail {
				return nil, timeoutError{}
			}

			return c.Do(req)
		})
	}
}

type fixture struct {
	judge  *judge
	server *httptest.Server
	clock  *backoff.FakeClock
	client *informatics.Client
}

func newFixture(t *testing.T, mw []func(httpx.Client) httpx.Client, opts ...informatics.Option) *fixture {
	t.Helper()

	j := newJudge()
	srv := httptest.NewServer(j.handler())
	t.Cleanup(srv.Close)

	clock := backoff.NewFakeClock()

	opts = append([]informatics.Option{
		informatics.WithTransport(httpx.NewClient(httpx.Transport(nil), mw...)),
		informatics.WithClock(clock),
		informatics.WithLogger(zaptest.NewLogger(t)),
	}, opts...)

	return &fixture{
		judge:  j,
		server: srv,
		clock:  clock,
		client: informatics.NewClient(srv.URL, opts...),
	}
}

func (f *fixture) session(t *testing.T) *informatics.Session {
	t.Helper()

	session, err := informatics.NewSession(f.server.URL, testUserID, []*http.Cookie{{Name: testCookie, Value: testSession, Path: "/"}})
	if err != nil {
		t.Fatal("Session can not be created:", err)
	}

	return session
}

func writeSource(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "solution.py")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal("Unable to write source file:", err)
	}

	return path
}
