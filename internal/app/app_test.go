package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpdesk/erpdesk/internal/erpapi/erpapitest"
	"github.com/erpdesk/erpdesk/internal/records"
)

var csrfInput = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

type browser struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodGet, b.server.URL+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodPost, b.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) csrfToken(path string) string {
	b.t.Helper()
	_, body := b.get(path)
	m := csrfInput.FindStringSubmatch(body)
	require.Len(b.t, m, 2, "no csrf token on %s", path)
	return m[1]
}

func (b *browser) signIn() {
	b.t.Helper()
	token := b.csrfToken("/auth/login")
	resp, _ := b.post("/auth/login", url.Values{
		"csrf_token": {token},
		"email":      {"owner@example.com"},
		"password":   {"secret1"},
	})
	require.Equal(b.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(b.t, "/", resp.Header.Get("Location"))
}

func newApp(t *testing.T) (*browser, *erpapitest.Store) {
	t.Helper()
	store := erpapitest.NewServer(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &Config{
		AppEnv:            "test",
		AppRequestTimeout: 10 * time.Second,
		SessionSecret:     "session-secret",
		SessionTTL:        time.Hour,
		CSRFSecret:        "csrf-secret",
		ERPAPIURL:         store.URL(),
		ERPAPITimeout:     5 * time.Second,
		ViewTimeout:       5 * time.Second,
		PDFRenderer:       PDFRendererNative,
		CurrencySymbol:    "Rs.",
		Location:          "UTC",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler, err := Build(cfg, logger, Dependencies{Redis: rdb})
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &browser{t: t, server: server, client: client}, store
}

func TestHealthzAndStatic(t *testing.T) {
	b, _ := newApp(t)

	resp, body := b.get("/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	resp, _ = b.get("/static/css/app.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
}

func TestAnonymousVisitorsAreSentToLogin(t *testing.T) {
	b, _ := newApp(t)

	for _, path := range []string{"/", "/sales", "/reports", "/admin"} {
		resp, _ := b.get(path)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/auth/login", resp.Header.Get("Location"), path)
	}

	resp, _ := b.get("/auth/login")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}

func TestPostWithoutCSRFTokenIsForbidden(t *testing.T) {
	b, store := newApp(t)

	resp, _ := b.post("/auth/login", url.Values{
		"email":    {"owner@example.com"},
		"password": {"secret1"},
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, store.Hits(http.MethodPost, "/auth/login"))
}

func TestSignInAndBrowseModules(t *testing.T) {
	b, store := newApp(t)
	store.SeedSales(records.SaleRecord{
		ID:          "s1",
		ProductName: "Widget",
		Quantity:    2,
		UnitPrice:   decimal.NewFromInt(50),
		TotalAmount: decimal.NewFromInt(100),
		Profit:      decimal.NewFromInt(20),
	})

	b.signIn()

	resp, body := b.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome back, owner.")

	for _, path := range []string{"/sales", "/inventory", "/expenses", "/tasks", "/sheets", "/reports", "/admin"} {
		resp, _ := b.get(path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, body = b.get("/sales")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Widget")

	resp, _ = b.get("/sales/export.xlsx")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
}

func TestRejectedCredentialSignsOutAndCounts(t *testing.T) {
	b, store := newApp(t)
	b.signIn()
	_, body := b.get("/")
	require.Contains(t, body, "Welcome back, owner.")

	store.ExpireToken()

	resp, _ := b.get("/sales")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth/login", resp.Header.Get("Location"))

	resp, body = b.get("/auth/login")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Your session has expired. Please sign in again.")

	resp, _ = b.get("/sales")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, metrics := b.get("/metrics")
	assert.Contains(t, metrics, "erpdesk_session_revocations_total 1")
}

func TestLogoutIsNotCountedAsRevocation(t *testing.T) {
	b, _ := newApp(t)
	b.signIn()

	token := b.csrfToken("/sales")
	resp, _ := b.post("/auth/logout", url.Values{"csrf_token": {token}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth/login", resp.Header.Get("Location"))

	resp, _ = b.get("/sales")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, metrics := b.get("/metrics")
	assert.Contains(t, metrics, "erpdesk_session_revocations_total 0")
}

func TestCredentialProblemsAreNotSectionFailures(t *testing.T) {
	b, store := newApp(t)

	for i := 0; i < 3; i++ {
		resp, _ := b.get("/")
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	}
	assert.Zero(t, store.Hits(http.MethodGet, "/dashboard"))

	b.signIn()
	store.ExpireToken()
	resp, _ := b.get("/")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, metrics := b.get("/metrics")
	assert.NotContains(t, metrics, "erpdesk_section_failures_total{")
	assert.Contains(t, metrics, "erpdesk_session_revocations_total 1")
}
