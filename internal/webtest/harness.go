// Package webtest runs module handlers against a fake record store with real
// sessions, for handler tests.
package webtest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/erpdesk/erpdesk/internal/dashboard"
	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/erpapi/erpapitest"
	"github.com/erpdesk/erpdesk/internal/export"
	"github.com/erpdesk/erpdesk/internal/gate"
	"github.com/erpdesk/erpdesk/internal/shared"
	"github.com/erpdesk/erpdesk/internal/view"
)

const cookieName = "erpdesk_test"

// Harness wires one router, one fake store and one browser session.
type Harness struct {
	t        testing.TB
	Store    *erpapitest.Store
	Client   *erpapi.Client
	Sessions *shared.SessionManager
	Pages    view.Responder
	Runtime  dashboard.Runtime
	Files    export.Sender
	Logger   *slog.Logger

	router chi.Router
	cookie string
}

// New starts the fake store, miniredis and the template engine.
func New(t testing.TB) *Harness {
	t.Helper()
	store := erpapitest.NewServer(t)
	client, err := erpapi.New(store.URL(), erpapi.WithTimeout(5*time.Second))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	templates, err := view.NewEngine()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := shared.NewSessionManager(rdb, cookieName, "secret", time.Hour, false)
	h := &Harness{
		t:        t,
		Store:    store,
		Client:   client,
		Sessions: sessions,
		Pages: view.Responder{
			Logger:    logger,
			Templates: templates,
			CSRF:      shared.NewCSRFManager("csrfsecret"),
		},
		Runtime: dashboard.Runtime{Logger: logger, Timeout: 5 * time.Second},
		Files: export.Sender{
			Logger: logger,
			Now:    func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) },
		},
		Logger: logger,
	}
	h.router = chi.NewRouter()
	h.router.Use(sessions.Middleware(logger), gate.Middleware(logger))
	return h
}

// Mount registers routes under prefix.
func (h *Harness) Mount(prefix string, mount func(chi.Router)) {
	h.router.Route(prefix, mount)
}

// Router exposes the router for custom registrations.
func (h *Harness) Router() chi.Router {
	return h.router
}

// Login stores the store's bearer token in the browser session.
func (h *Harness) Login() {
	h.t.Helper()
	h.withSession(func(sess *shared.Session) {
		sess.Set(shared.CredentialSessionKey, h.Store.Token())
		sess.Set(shared.ProfileSessionKey, "owner")
	})
}

// Session loads a copy of the current browser session.
func (h *Harness) Session() *shared.Session {
	h.t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if h.cookie != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: h.cookie})
	}
	sess, err := h.Sessions.Load(context.Background(), req)
	require.NoError(h.t, err)
	return sess
}

func (h *Harness) withSession(fn func(*shared.Session)) {
	sess := h.Session()
	fn(sess)
	rec := httptest.NewRecorder()
	require.NoError(h.t, h.Sessions.Commit(context.Background(), rec, sess))
	h.cookie = sess.ID
}

// Get issues a GET request.
func (h *Harness) Get(path string) *httptest.ResponseRecorder {
	return h.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

// Post submits form values.
func (h *Harness) Post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.Do(req)
}

// Do sends req with the browser cookie and keeps any new session cookie.
func (h *Harness) Do(req *http.Request) *httptest.ResponseRecorder {
	if h.cookie != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: h.cookie})
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name != cookieName {
			continue
		}
		if c.MaxAge < 0 {
			h.cookie = ""
		} else {
			h.cookie = c.Value
		}
	}
	return rec
}

// Flashes drains the queued flash messages.
func (h *Harness) Flashes() []string {
	h.t.Helper()
	var out []string
	h.withSession(func(sess *shared.Session) {
		for msg := sess.PopFlash(); msg != nil; msg = sess.PopFlash() {
			out = append(out, msg.Message)
		}
	})
	return out
}
