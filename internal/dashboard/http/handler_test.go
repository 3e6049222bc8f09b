package dashboardhttp_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboardhttp "github.com/erpdesk/erpdesk/internal/dashboard/http"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/shared"
	"github.com/erpdesk/erpdesk/internal/view"
	"github.com/erpdesk/erpdesk/internal/webtest"
)

const sheetURL = "https://docs.google.com/spreadsheets/d/abc/edit"

func newHarness(t *testing.T) *webtest.Harness {
	t.Helper()
	h := webtest.New(t)
	handler := dashboardhttp.NewHandler(h.Logger, h.Client, h.Runtime, h.Pages)
	admin := dashboardhttp.NewAdminHandler(h.Logger, h.Client, h.Runtime, h.Pages)
	h.Router().Group(func(r chi.Router) { handler.MountRoutes(r) })
	h.Mount("/admin", admin.MountRoutes)
	h.Login()
	return h
}

func TestDashboardRendersSectionsAndRecordsFreshness(t *testing.T) {
	h := newHarness(t)
	updated := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	h.Store.SetDashboard(records.DashboardData{
		TotalSales:    decimal.NewFromInt(250000),
		TotalExpenses: decimal.NewFromInt(1000),
		TotalProfit:   decimal.NewFromInt(5000),
		LastUpdated:   records.NewTimestamp(updated),
	})
	h.Store.SeedTasks(records.TaskRecord{ID: "t1", Title: "Count stock", Priority: records.PriorityLow, Status: records.TaskPending, IsPinned: true})
	h.Store.SeedSheets(records.SheetLink{ID: "s1", Name: "Ledger", URL: sheetURL, IsPinned: true})

	res := h.Get("/")
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "₹2,50,000.00")
	assert.Contains(t, body, "Count stock")
	assert.Contains(t, body, "<svg")

	sess := h.Session()
	assert.Equal(t, updated.Format(time.RFC3339), sess.Get(shared.LastUpdatedSessionKey))
	assert.Len(t, view.PinnedSheets(sess), 1)
}

func TestDashboardDegradesOneSection(t *testing.T) {
	h := newHarness(t)
	h.Store.SeedSheets(records.SheetLink{ID: "s1", Name: "Ledger", URL: sheetURL})
	h.Store.Fail(http.MethodGet, "/dashboard", http.StatusInternalServerError)

	res := h.Get("/")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Summary unavailable")
	assert.Contains(t, res.Body.String(), "Ledger")
}

func TestDashboardRedirectsAnonymous(t *testing.T) {
	h := newHarness(t)
	h.Store.ExpireToken()

	res := h.Get("/")
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/auth/login", res.Header().Get("Location"))
	assert.Contains(t, h.Flashes(), "Your session has expired. Please sign in again.")
}

func TestSummaryJSON(t *testing.T) {
	h := newHarness(t)
	h.Store.SetDashboard(records.DashboardData{TotalSales: decimal.RequireFromString("10.50")})
	h.Store.Fail(http.MethodGet, "/sheets", http.StatusBadGateway)

	res := h.Get("/dashboard.json")
	require.Equal(t, http.StatusOK, res.Code)
	var body struct {
		TotalSales string   `json:"totalSales"`
		Degraded   []string `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "10.5", body.TotalSales)
	assert.Equal(t, []string{"sheets"}, body.Degraded)
}

func TestImportValidatesAndCallsStore(t *testing.T) {
	h := newHarness(t)

	res := h.Post("/dashboard/import", url.Values{"dataLink": {"not a link"}, "dataType": {"sales"}})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Data link must be a valid URL")

	res = h.Post("/dashboard/import", url.Values{"dataLink": {sheetURL}, "dataType": {"sales"}})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Data imported successfully")
	require.Len(t, h.Store.Imports(), 1)
	assert.Equal(t, "sales", h.Store.Imports()[0].DataType)
}

func TestSheetShortcuts(t *testing.T) {
	h := newHarness(t)

	res := h.Post("/dashboard/sheets", url.Values{"name": {"Ledger"}, "url": {sheetURL}})
	require.Equal(t, http.StatusOK, res.Code)
	require.Len(t, h.Store.Sheets(), 1)
	id := h.Store.Sheets()[0].ID

	res = h.Post("/dashboard/sheets/"+id+"/pin", url.Values{})
	require.Equal(t, http.StatusOK, res.Code)
	assert.True(t, h.Store.Sheets()[0].IsPinned)

	res = h.Post("/dashboard/sheets/"+id+"/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, res.Code)

	res = h.Post("/dashboard/sheets/"+id+"/delete", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Empty(t, h.Store.Sheets())
}

func TestUnpinTaskFromDashboard(t *testing.T) {
	h := newHarness(t)
	h.Store.SeedTasks(records.TaskRecord{ID: "t1", Title: "Count stock", Priority: records.PriorityLow, Status: records.TaskPending, IsPinned: true})

	res := h.Post("/dashboard/tasks/t1/pin", url.Values{})
	require.Equal(t, http.StatusOK, res.Code)
	assert.False(t, h.Store.Tasks()[0].IsPinned)
	assert.NotContains(t, res.Body.String(), "Count stock")
}

func TestAdminShowsProfileAndUpdatesLink(t *testing.T) {
	h := newHarness(t)

	res := h.Get("/admin/")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "owner@example.com")

	res = h.Post("/admin/link", url.Values{"dataLink": {sheetURL}})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, sheetURL, h.Store.Profile().DataLink)
	assert.Contains(t, res.Body.String(), "Data link updated.")
}

func TestMutationsReadEachSectionOnce(t *testing.T) {
	h := newHarness(t)
	h.Store.SeedSheets(records.SheetLink{ID: "s1", Name: "Ledger", URL: sheetURL})

	res := h.Post("/dashboard/sheets/s1/pin", url.Values{})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 1, h.Store.Hits(http.MethodGet, "/sheets"))
	assert.Equal(t, 1, h.Store.Hits(http.MethodGet, "/dashboard"))
	assert.Equal(t, 1, h.Store.Hits(http.MethodGet, "/tasks/pinned/all"))

	res = h.Post("/dashboard/import", url.Values{"dataLink": {sheetURL}, "dataType": {"sales"}})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 2, h.Store.Hits(http.MethodGet, "/dashboard"))
	assert.Equal(t, 2, h.Store.Hits(http.MethodGet, "/sheets"))
}
