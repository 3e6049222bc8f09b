package inventory_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpdesk/erpdesk/internal/erpapi/erpapitest"
	"github.com/erpdesk/erpdesk/internal/gate"
	"github.com/erpdesk/erpdesk/internal/inventory"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/webtest"
)

func newHarness(t *testing.T) *webtest.Harness {
	t.Helper()
	h := webtest.New(t)
	handler := inventory.NewHandler(h.Logger, h.Client, h.Runtime, h.Pages, h.Files)
	h.Mount("/inventory", handler.MountRoutes)
	return h
}

func seed(h *webtest.Harness) {
	h.Store.SeedInventory(
		records.InventoryItem{ID: "i1", ProductName: "Bolt", SKU: "B-1", Quantity: 5, MinStock: 5, Price: decimal.NewFromInt(10)},
		records.InventoryItem{ID: "i2", ProductName: "Nut", SKU: "N-1", Quantity: 100, MinStock: 10, Price: decimal.NewFromInt(2)},
	)
}

func TestListShowsLowStockAlert(t *testing.T) {
	h := newHarness(t)
	h.Login()
	seed(h)

	res := h.Get("/inventory/")
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "Low stock")
	assert.Contains(t, body, "Bolt")
	assert.Contains(t, body, "₹250.00")
}

func TestPresenterFallsBackToLocalLowStock(t *testing.T) {
	h := webtest.New(t)
	seed(h)
	h.Store.Fail(http.MethodGet, "/inventory/low-stock", http.StatusInternalServerError)
	g, err := gate.New(gate.NewMemoryStore())
	require.NoError(t, err)
	require.NoError(t, g.Login(erpapitest.DefaultToken))

	p := inventory.NewPresenter(h.Runtime, h.Client.With(g))
	failures := p.Load(context.Background())
	require.Contains(t, failures, inventory.SectionLowStock)
	require.False(t, p.Degraded())
	low := p.LowStock()
	require.Len(t, low, 1)
	assert.Equal(t, "Bolt", low[0].ProductName)
}

func TestCreateRefreshesLowStock(t *testing.T) {
	h := newHarness(t)
	h.Login()

	res := h.Post("/inventory/", url.Values{
		"productName": {"Washer"},
		"sku":         {"W-1"},
		"quantity":    {"1"},
		"price":       {"3.50"},
		"minStock":    {"4"},
	})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Item added.")
	assert.Equal(t, 1, h.Store.Hits(http.MethodGet, "/inventory/low-stock"))
	assert.Equal(t, 1, h.Store.Hits(http.MethodGet, "/inventory"))
	require.Len(t, h.Store.Inventory(), 1)
}

func TestCreateRejectsNegativeQuantity(t *testing.T) {
	h := newHarness(t)
	h.Login()

	res := h.Post("/inventory/", url.Values{"productName": {"Washer"}, "quantity": {"-1"}})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Quantity must be at least 0")
	assert.Empty(t, h.Store.Inventory())
}

func TestUpdateAndDelete(t *testing.T) {
	h := newHarness(t)
	h.Login()
	seed(h)

	res := h.Post("/inventory/i2", url.Values{"productName": {"Nut"}, "quantity": {"3"}, "price": {"2"}, "minStock": {"10"}})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 3, h.Store.Inventory()[1].Quantity)

	res = h.Post("/inventory/i1/delete", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusOK, res.Code)
	require.Len(t, h.Store.Inventory(), 1)

	res = h.Get("/inventory/i1/delete")
	assert.Equal(t, http.StatusSeeOther, res.Code)
}

func TestExports(t *testing.T) {
	h := newHarness(t)
	h.Login()
	seed(h)

	res := h.Get("/inventory/export.xlsx")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Header().Get("Content-Disposition"), "inventory_report_2024-03-01.xlsx")

	res = h.Get("/inventory/export.pdf")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "application/pdf", res.Header().Get("Content-Type"))
}
