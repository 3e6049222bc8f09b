package view_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/shared"
	"github.com/erpdesk/erpdesk/internal/view"
)

func newSession(t *testing.T) *shared.Session {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sm := shared.NewSessionManager(rdb, "test", "secret", time.Hour, false)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return sess
}

func TestResponderFillsLayoutFromSession(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)
	pages := view.Responder{Templates: engine, CSRF: shared.NewCSRFManager("csrf")}

	sess := newSession(t)
	sess.Set(shared.ProfileSessionKey, "owner")
	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	view.Flash(req, "success", "Saved.")
	view.RecordFreshness(req, time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC))

	rec := httptest.NewRecorder()
	pages.Render(rec, req, http.StatusAccepted, "pages/confirm_delete.html", "Delete", view.ConfirmDelete{Kind: "sale", Name: "Widget"})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "Saved.")
	assert.Contains(t, rec.Body.String(), "01 Jun 2024 08:30")
	assert.NotEmpty(t, sess.Get(shared.CSRFSessionKey))
	assert.Nil(t, sess.PopFlash())
}

func TestResponderUnknownTemplateIs500(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)
	pages := view.Responder{Templates: engine, CSRF: shared.NewCSRFManager("csrf")}

	rec := httptest.NewRecorder()
	pages.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "pages/missing.html", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPinnedSheetsRoundTrip(t *testing.T) {
	sess := newSession(t)
	view.RememberPinnedSheets(sess, []records.SheetLink{
		{ID: "a", Name: "Ledger", IsPinned: true},
		{ID: "b", Name: "Stock"},
	})
	pinned := view.PinnedSheets(sess)
	require.Len(t, pinned, 1)
	assert.Equal(t, "Ledger", pinned[0].Name)
	assert.Nil(t, view.PinnedSheets(nil))
}

func postForm(t *testing.T, values url.Values) *view.FormReader {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	f, err := view.NewFormReader(req)
	require.NoError(t, err)
	return f
}

func TestFormReaderConversions(t *testing.T) {
	f := postForm(t, url.Values{
		"qty":     {" 3 "},
		"bad":     {"three"},
		"amount":  {"1,23,456.70"},
		"due":     {"2024-03-15"},
		"when":    {"someday"},
		"confirm": {"Yes"},
	})
	assert.Equal(t, 3, f.Int("qty", "Quantity"))
	assert.Equal(t, 0, f.Int("bad", "Quantity"))
	assert.True(t, decimal.RequireFromString("123456.70").Equal(f.Decimal("amount", "Amount")))
	assert.Equal(t, "2024-03-15", f.Date("due", "Due date").DateString())
	assert.Nil(t, f.Date("when", "Due date"))
	assert.Nil(t, f.Date("missing", "Due date"))
	assert.True(t, f.Confirmed())

	errs := f.Merge(map[string]string{"bad": "Quantity must be at least 0", "name": "Name is required"})
	assert.Equal(t, "Quantity must be a whole number", errs["bad"])
	assert.Equal(t, "Due date must be a date", errs["when"])
	assert.Equal(t, "Name is required", errs["name"])
}

func TestWriteErrorMessage(t *testing.T) {
	assert.Equal(t, "Amount too large", view.WriteErrorMessage("save", &erpapi.ValidationError{Status: 400, Message: "Amount too large"}))
	assert.Equal(t, "The record no longer exists.", view.WriteErrorMessage("save", erpapi.ErrNotFound))
	assert.Equal(t, "Could not save the sale. Please try again.", view.WriteErrorMessage("save the sale", errors.New("boom")))
}
