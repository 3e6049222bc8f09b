package dashboard_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpdesk/erpdesk/internal/dashboard"
	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/erpapi/erpapitest"
	"github.com/erpdesk/erpdesk/internal/records"
)

type tokenAuth struct {
	mu    sync.Mutex
	token string
}

func (a *tokenAuth) Credential() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token, nil
}

func (a *tokenAuth) Revoke(string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = ""
}

func connect(t *testing.T) (*erpapitest.Store, *erpapi.Conn) {
	t.Helper()
	store := erpapitest.NewServer(t)
	client, err := erpapi.New(store.URL())
	require.NoError(t, err)
	return store, client.With(&tokenAuth{token: store.Token()})
}

type failureRecorder struct {
	mu       sync.Mutex
	sections []string
}

func (f *failureRecorder) record(section string, _ error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sections = append(f.sections, section)
}

func TestDashboardPinnedTasksFailureKeepsSummary(t *testing.T) {
	store, conn := connect(t)
	updated := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	store.SetDashboard(records.DashboardData{
		TotalSales:  decimal.NewFromInt(1200),
		TotalProfit: decimal.NewFromInt(300),
		LastUpdated: records.NewTimestamp(updated),
	})
	store.SeedSheets(
		records.SheetLink{Name: "Ledger", URL: "https://docs.google.com/spreadsheets/d/a", IsPinned: true},
		records.SheetLink{Name: "Stock", URL: "https://docs.google.com/spreadsheets/d/b"},
	)
	store.Fail(http.MethodGet, "/tasks/pinned/all", http.StatusInternalServerError)

	failures := &failureRecorder{}
	var observed time.Time
	d := dashboard.NewDashboard(dashboard.Runtime{OnFailure: failures.record}, conn, func(at time.Time) { observed = at })
	errs := d.Activate(context.Background())

	require.Len(t, errs, 1)
	require.Contains(t, errs, dashboard.SectionPinnedTasks)
	assert.Equal(t, []string{dashboard.SectionPinnedTasks}, failures.sections)

	view := d.View()
	assert.False(t, view.SummaryDegraded)
	assert.Equal(t, "1200", view.Summary.TotalSales.String())
	assert.True(t, view.TasksDegraded)
	assert.NotNil(t, view.PinnedTasks)
	assert.Empty(t, view.PinnedTasks)
	require.Len(t, view.PinnedSheets, 1)
	require.Len(t, view.OtherSheets, 1)
	assert.Equal(t, "Ledger", view.PinnedSheets[0].Name)
	assert.True(t, observed.Equal(updated))
}

func TestDashboardAllSectionsFailIndependently(t *testing.T) {
	store, conn := connect(t)
	store.Fail(http.MethodGet, "/dashboard", erpapitest.FailTransport)
	store.Fail(http.MethodGet, "/sheets", http.StatusBadGateway)
	store.SeedTasks(records.TaskRecord{Title: "Pinned", IsPinned: true})

	called := false
	d := dashboard.NewDashboard(dashboard.Runtime{}, conn, func(time.Time) { called = true })
	errs := d.Activate(context.Background())
	assert.Len(t, errs, 2)

	view := d.View()
	assert.True(t, view.SummaryDegraded)
	assert.True(t, view.Summary.TotalSales.IsZero())
	assert.True(t, view.SheetsDegraded)
	require.Len(t, view.PinnedTasks, 1)
	assert.False(t, called)
}

func TestDashboardToggleTaskPinRefetches(t *testing.T) {
	store, conn := connect(t)
	store.SeedTasks(records.TaskRecord{ID: "t1", Title: "Pay rent", IsPinned: true})
	d := dashboard.NewDashboard(dashboard.Runtime{}, conn, nil)
	d.Activate(context.Background())
	require.Len(t, d.View().PinnedTasks, 1)

	require.NoError(t, d.ToggleTaskPin(context.Background(), "t1"))
	assert.Empty(t, d.View().PinnedTasks)
	assert.Equal(t, 2, store.Hits(http.MethodGet, "/tasks/pinned/all"))

	require.NoError(t, d.ToggleTaskPin(context.Background(), "t1"))
	assert.Len(t, d.View().PinnedTasks, 1)
}

func TestDashboardSheetLifecycle(t *testing.T) {
	store, conn := connect(t)
	d := dashboard.NewDashboard(dashboard.Runtime{}, conn, nil)
	ctx := context.Background()

	require.NoError(t, d.AddSheet(ctx, records.SheetInput{Name: "Budget", URL: "https://docs.google.com/spreadsheets/d/xyz/edit"}))
	view := d.View()
	require.Len(t, view.OtherSheets, 1)
	id := view.OtherSheets[0].ID

	require.NoError(t, d.ToggleSheetPin(ctx, id))
	assert.Len(t, d.View().PinnedSheets, 1)

	require.ErrorIs(t, d.DeleteSheet(ctx, id, false), dashboard.ErrConfirmationRequired)
	assert.Len(t, store.Sheets(), 1)

	require.NoError(t, d.DeleteSheet(ctx, id, true))
	assert.Empty(t, store.Sheets())
	assert.Empty(t, d.View().PinnedSheets)
}

func TestDashboardImportRefreshesSummary(t *testing.T) {
	store, conn := connect(t)
	d := dashboard.NewDashboard(dashboard.Runtime{}, conn, nil)
	ctx := context.Background()
	d.Activate(ctx)

	store.SeedSales(records.SaleRecord{TotalAmount: decimal.NewFromInt(99), Profit: decimal.NewFromInt(9)})
	_, err := d.ImportData(ctx, records.ImportInput{DataLink: "https://example.com/sales.csv", DataType: "sales"})
	require.NoError(t, err)
	assert.Equal(t, "99", d.View().Summary.TotalSales.String())
}

func TestCollectionDeleteAlreadyGone(t *testing.T) {
	store, conn := connect(t)
	store.SeedSales(
		records.SaleRecord{ID: "s1", ProductName: "Desk", TotalAmount: decimal.NewFromInt(10)},
		records.SaleRecord{ID: "s2", ProductName: "Lamp", TotalAmount: decimal.NewFromInt(5)},
	)
	sales := dashboard.NewCollection(dashboard.Runtime{}, "sales", conn.ListSales)
	ctx := context.Background()
	sales.Load(ctx)
	require.Len(t, sales.Items(), 2)

	// another client removes s1 first
	require.NoError(t, conn.DeleteSale(ctx, "s1"))

	err := sales.Delete(ctx, true, func(ctx context.Context) error { return conn.DeleteSale(ctx, "s1") })
	require.NoError(t, err)
	require.Len(t, sales.Items(), 1)
	assert.Equal(t, "s2", sales.Items()[0].ID)
}

func TestCollectionWriteFailureKeepsSnapshot(t *testing.T) {
	store, conn := connect(t)
	store.SeedSales(records.SaleRecord{ID: "s1", ProductName: "Desk"})
	sales := dashboard.NewCollection(dashboard.Runtime{}, "sales", conn.ListSales)
	ctx := context.Background()
	sales.Load(ctx)
	before := store.Hits(http.MethodGet, "/sales")

	store.Fail(http.MethodPost, "/sales", http.StatusServiceUnavailable)
	err := sales.Apply(ctx, func(ctx context.Context) error {
		_, err := conn.CreateSale(ctx, records.NewSaleInput("Chair", 1, decimal.NewFromInt(10), decimal.Zero))
		return err
	})
	require.ErrorIs(t, err, erpapi.ErrTransport)
	assert.Equal(t, before, store.Hits(http.MethodGet, "/sales"))
	require.Len(t, sales.Items(), 1)
	assert.Equal(t, 1, store.Hits(http.MethodPost, "/sales"))
}

func TestCollectionRefreshesRelatedSections(t *testing.T) {
	store, conn := connect(t)
	low := dashboard.NewSection("low-stock", conn.ListLowStock)
	inventory := dashboard.NewCollection(dashboard.Runtime{}, "inventory", conn.ListInventory, low.Dependency())
	ctx := context.Background()
	inventory.Load(ctx)
	assert.Empty(t, low.Value())

	err := inventory.Apply(ctx, func(ctx context.Context) error {
		_, err := conn.CreateInventoryItem(ctx, records.InventoryInput{ProductName: "Toner", Quantity: 1, MinStock: 1, Price: decimal.NewFromInt(40)})
		return err
	})
	require.NoError(t, err)
	assert.Len(t, inventory.Items(), 1)
	assert.Len(t, low.Value(), 1)
	assert.Len(t, store.Inventory(), 1)
}

func TestSectionLastWriterWins(t *testing.T) {
	calls := 0
	section := dashboard.NewSection("counter", func(context.Context) (int, error) {
		calls++
		if calls == 2 {
			return 0, errors.New("boom")
		}
		return calls, nil
	})
	ctx := context.Background()
	require.NoError(t, section.Refresh(ctx))
	assert.Equal(t, 1, section.Value())
	require.Error(t, section.Refresh(ctx))
	assert.Equal(t, 0, section.Value())
	assert.True(t, section.Degraded())
	require.NoError(t, section.Refresh(ctx))
	assert.Equal(t, 3, section.Value())
	assert.False(t, section.Degraded())
}

func TestRejectedCredentialIsNotASectionFailure(t *testing.T) {
	store, conn := connect(t)
	store.ExpireToken()

	failures := &failureRecorder{}
	d := dashboard.NewDashboard(dashboard.Runtime{OnFailure: failures.record}, conn, nil)
	errs := d.Activate(context.Background())

	assert.Len(t, errs, 3)
	for _, err := range errs {
		assert.ErrorIs(t, err, erpapi.ErrUnauthorized)
	}
	assert.Empty(t, failures.sections)
}

func TestDashboardFillSkipsLoadedSections(t *testing.T) {
	store, conn := connect(t)
	store.SeedTasks(records.TaskRecord{ID: "t1", Title: "Pay rent", IsPinned: true})
	d := dashboard.NewDashboard(dashboard.Runtime{}, conn, nil)
	ctx := context.Background()

	require.NoError(t, d.ToggleTaskPin(ctx, "t1"))
	assert.Empty(t, d.Fill(ctx))
	assert.Equal(t, 1, store.Hits(http.MethodGet, "/tasks/pinned/all"))
	assert.Equal(t, 1, store.Hits(http.MethodGet, "/dashboard"))
	assert.Equal(t, 1, store.Hits(http.MethodGet, "/sheets"))

	assert.Empty(t, d.Fill(ctx))
	assert.Equal(t, 1, store.Hits(http.MethodGet, "/dashboard"))
}
