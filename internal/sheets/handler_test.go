package sheets_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/sheets"
	"github.com/erpdesk/erpdesk/internal/sheets/google"
	"github.com/erpdesk/erpdesk/internal/view"
	"github.com/erpdesk/erpdesk/internal/webtest"
)

const sheetURL = "https://docs.google.com/spreadsheets/d/abc123/edit"

type stubTitles struct {
	title string
	err   error
	calls int
}

func (s *stubTitles) Title(context.Context, string) (string, error) {
	s.calls++
	return s.title, s.err
}

func newHarness(t *testing.T, titles google.Resolver) *webtest.Harness {
	t.Helper()
	h := webtest.New(t)
	handler := sheets.NewHandler(h.Logger, h.Client, h.Runtime, h.Pages, titles)
	h.Mount("/sheets", handler.MountRoutes)
	h.Login()
	return h
}

func TestListSplitsPinnedAndCachesNavigation(t *testing.T) {
	h := newHarness(t, nil)
	h.Store.SeedSheets(
		records.SheetLink{ID: "s1", Name: "Ledger", URL: sheetURL, IsPinned: true},
		records.SheetLink{ID: "s2", Name: "Stock", URL: sheetURL},
	)

	res := h.Get("/sheets/")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Ledger")
	assert.Contains(t, res.Body.String(), "Stock")

	pinned := view.PinnedSheets(h.Session())
	require.Len(t, pinned, 1)
	assert.Equal(t, "Ledger", pinned[0].Name)
}

func TestCreateRejectsForeignURL(t *testing.T) {
	h := newHarness(t, nil)

	res := h.Post("/sheets/", url.Values{"name": {"Ledger"}, "url": {"https://example.com/sheet"}})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Please enter a valid Google Sheets URL")
	assert.Empty(t, h.Store.Sheets())
}

func TestCreateRequiresNameWithoutLookup(t *testing.T) {
	h := newHarness(t, nil)

	res := h.Post("/sheets/", url.Values{"url": {sheetURL}})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Please enter a sheet name")
}

func TestCreateFillsNameFromSpreadsheetTitle(t *testing.T) {
	titles := &stubTitles{title: "Quarterly ledger"}
	h := newHarness(t, titles)

	res := h.Post("/sheets/", url.Values{"url": {sheetURL}})
	require.Equal(t, http.StatusOK, res.Code)
	require.Len(t, h.Store.Sheets(), 1)
	assert.Equal(t, "Quarterly ledger", h.Store.Sheets()[0].Name)
	assert.Equal(t, 1, titles.calls)
}

func TestCreateLookupFailureFallsBackToValidation(t *testing.T) {
	titles := &stubTitles{err: errors.New("forbidden")}
	h := newHarness(t, titles)

	res := h.Post("/sheets/", url.Values{"url": {sheetURL}})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Please enter a sheet name")
}

func TestTogglePinUpdatesNavigation(t *testing.T) {
	h := newHarness(t, nil)
	h.Store.SeedSheets(records.SheetLink{ID: "s1", Name: "Ledger", URL: sheetURL})

	res := h.Post("/sheets/s1/pin", url.Values{})
	require.Equal(t, http.StatusOK, res.Code)
	assert.True(t, h.Store.Sheets()[0].IsPinned)
	assert.Len(t, view.PinnedSheets(h.Session()), 1)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t, nil)
	h.Store.SeedSheets(records.SheetLink{ID: "s1", Name: "Ledger", URL: sheetURL})

	res := h.Post("/sheets/s1/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/sheets/s1/delete", res.Header().Get("Location"))

	res = h.Get("/sheets/s1/delete")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Ledger")

	res = h.Post("/sheets/s1/delete", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Empty(t, h.Store.Sheets())
}
