package reports_test

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/reports"
	"github.com/erpdesk/erpdesk/internal/webtest"
)

func newHarness(t *testing.T) *webtest.Harness {
	t.Helper()
	h := webtest.New(t)
	handler := reports.NewHandler(h.Logger, h.Client, h.Runtime, h.Pages, h.Files, time.UTC)
	h.Mount("/reports", handler.MountRoutes)
	h.Login()
	return h
}

func seed(h *webtest.Harness) {
	day := records.NewTimestamp(time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC))
	h.Store.SeedSales(
		records.SaleRecord{ID: "s1", ProductName: "Tea", Quantity: 10, UnitPrice: decimal.NewFromInt(100), TotalAmount: decimal.NewFromInt(1000), Profit: decimal.NewFromInt(250), Date: day},
		records.SaleRecord{ID: "s2", ProductName: "Coffee", Quantity: 1, UnitPrice: decimal.NewFromInt(1000), TotalAmount: decimal.NewFromInt(1000), Profit: decimal.NewFromInt(250), Date: day},
	)
	h.Store.SeedExpenses(records.ExpenseRecord{ID: "e1", Category: records.CategoryRent, Amount: decimal.NewFromInt(500), Status: records.ExpenseApproved, Date: day})
	h.Store.SeedInventory(records.InventoryItem{ID: "i1", ProductName: "Tea", Quantity: 2, Price: decimal.NewFromInt(50), MinStock: 5})
}

func TestReportAggregatesAllLists(t *testing.T) {
	h := newHarness(t)
	seed(h)

	res := h.Get("/reports/")
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "₹2,000.00")
	assert.Contains(t, body, "₹500.00")
	assert.Contains(t, body, "25.00%")
	assert.Contains(t, body, "<svg")
	assert.Equal(t, 1, h.Store.Hits(http.MethodGet, "/sales"))
	assert.Equal(t, 1, h.Store.Hits(http.MethodGet, "/expenses"))
	assert.Equal(t, 1, h.Store.Hits(http.MethodGet, "/inventory"))
}

func TestReportWithFailedListStillRenders(t *testing.T) {
	h := newHarness(t)
	seed(h)
	h.Store.Fail(http.MethodGet, "/expenses", http.StatusInternalServerError)

	res := h.Get("/reports/")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Expenses unavailable")
	assert.Contains(t, res.Body.String(), "₹2,000.00")

	res = h.Get("/reports/export.xlsx")
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Contains(t, h.Flashes(), "Some report data could not be loaded, export cancelled.")
}

func TestSummaryExports(t *testing.T) {
	h := newHarness(t)
	seed(h)

	res := h.Get("/reports/export.xlsx")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Header().Get("Content-Disposition"), "erp_report_2024-03-01.xlsx")
	f, err := excelize.OpenReader(bytes.NewReader(res.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Metric", "Value"}, rows[0])

	res = h.Get("/reports/export.pdf")
	require.Equal(t, http.StatusOK, res.Code)
	assert.True(t, bytes.HasPrefix(res.Body.Bytes(), []byte("%PDF")))

	res = h.Get("/reports/export.csv")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Total Sales,2000.00")
}

func TestWorkbookHasOneSheetPerList(t *testing.T) {
	h := newHarness(t)
	seed(h)

	res := h.Get("/reports/workbook.xlsx")
	require.Equal(t, http.StatusOK, res.Code)
	f, err := excelize.OpenReader(bytes.NewReader(res.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Report", "Sales", "Expenses", "Inventory"}, f.GetSheetList())
}
