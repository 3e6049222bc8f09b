package erpapi_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/erpapi/erpapitest"
	"github.com/erpdesk/erpdesk/internal/records"
)

type stubAuthorizer struct {
	mu      sync.Mutex
	token   string
	revoked []string
}

func (s *stubAuthorizer) Credential() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", errors.New("anonymous")
	}
	return s.token, nil
}

func (s *stubAuthorizer) Revoke(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.revoked = append(s.revoked, reason)
}

func newConn(t *testing.T) (*erpapitest.Store, *erpapi.Conn, *stubAuthorizer) {
	t.Helper()
	store := erpapitest.NewServer(t)
	client, err := erpapi.New(store.URL())
	require.NoError(t, err)
	auth := &stubAuthorizer{token: store.Token()}
	return store, client.With(auth), auth
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := erpapi.New("/api")
	require.Error(t, err)
	_, err = erpapi.New("")
	require.Error(t, err)
}

func TestLoginReturnsToken(t *testing.T) {
	store := erpapitest.NewServer(t)
	client, err := erpapi.New(store.URL())
	require.NoError(t, err)

	token, err := client.Login(context.Background(), records.Credentials{Email: "owner@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, erpapitest.DefaultToken, token)

	_, err = client.Login(context.Background(), records.Credentials{Email: "owner@example.com", Password: "nope"})
	require.ErrorIs(t, err, erpapi.ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestRegisterCreatesProfile(t *testing.T) {
	store := erpapitest.NewServer(t)
	client, err := erpapi.New(store.URL())
	require.NoError(t, err)

	token, err := client.Register(context.Background(), records.Registration{Username: "asha", Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	profile, err := client.With(&stubAuthorizer{token: token}).Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "asha", profile.Username)
}

func TestUnauthorizedRevokesAuthorizer(t *testing.T) {
	store, conn, auth := newConn(t)
	store.ExpireToken()

	_, err := conn.ListSales(context.Background())
	require.ErrorIs(t, err, erpapi.ErrUnauthorized)
	require.Len(t, auth.revoked, 1)

	// the next call fails locally without reaching the store
	before := store.Hits(http.MethodGet, "/sales")
	_, err = conn.ListSales(context.Background())
	require.ErrorIs(t, err, erpapi.ErrUnauthorized)
	assert.Equal(t, before, store.Hits(http.MethodGet, "/sales"))
}

func TestSalesCRUD(t *testing.T) {
	store, conn, _ := newConn(t)
	ctx := context.Background()

	created, err := conn.CreateSale(ctx, records.NewSaleInput("Notebook", 4, decimal.RequireFromString("12.50"), decimal.NewFromInt(10)))
	require.NoError(t, err)
	assert.Equal(t, "50.00", created.TotalAmount.StringFixed(2))

	sales, err := conn.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)

	_, err = conn.UpdateSale(ctx, created.ID, records.NewSaleInput("Notebook", 5, decimal.RequireFromString("12.50"), decimal.NewFromInt(12)))
	require.NoError(t, err)
	assert.Equal(t, 5, store.Sales()[0].Quantity)

	require.NoError(t, conn.DeleteSale(ctx, created.ID))
	err = conn.DeleteSale(ctx, created.ID)
	require.ErrorIs(t, err, erpapi.ErrNotFound)
}

func TestTogglePinTwiceRestoresState(t *testing.T) {
	store, conn, _ := newConn(t)
	store.SeedTasks(records.TaskRecord{ID: "t1", Title: "Call supplier", Priority: records.PriorityHigh, Status: records.TaskPending})
	store.SeedSheets(records.SheetLink{ID: "s1", Name: "Ledger", URL: "https://docs.google.com/spreadsheets/d/x", IsPinned: true})
	ctx := context.Background()

	task, err := conn.ToggleTaskPin(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, task.IsPinned)
	task, err = conn.ToggleTaskPin(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, task.IsPinned)

	sheet, err := conn.ToggleSheetPin(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, sheet.IsPinned)
	sheet, err = conn.ToggleSheetPin(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, sheet.IsPinned)
}

func TestValidationErrorCarriesMessage(t *testing.T) {
	_, conn, _ := newConn(t)
	_, err := conn.CreateSheet(context.Background(), records.SheetInput{Name: "Bad", URL: "https://example.com"})
	msg, ok := erpapi.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid Google Sheets URL", msg)
}

func TestTransportFailures(t *testing.T) {
	store, conn, auth := newConn(t)
	store.Fail(http.MethodGet, "/dashboard", http.StatusInternalServerError)
	_, err := conn.Dashboard(context.Background())
	require.ErrorIs(t, err, erpapi.ErrTransport)
	var statusErr *erpapi.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Status)

	store.Fail(http.MethodGet, "/tasks/pinned/all", erpapitest.FailTransport)
	_, err = conn.ListPinnedTasks(context.Background())
	require.ErrorIs(t, err, erpapi.ErrTransport)
	assert.Empty(t, auth.revoked)
}

func TestFilteredLists(t *testing.T) {
	store, conn, _ := newConn(t)
	store.SeedExpenses(
		records.ExpenseRecord{Category: records.CategoryRent, Amount: decimal.NewFromInt(500), Status: records.ExpenseApproved},
		records.ExpenseRecord{Category: records.CategoryUtilities, Amount: decimal.NewFromInt(80), Status: records.ExpensePending},
	)
	store.SeedTasks(
		records.TaskRecord{Title: "a", Status: records.TaskInProgress},
		records.TaskRecord{Title: "b", Status: records.TaskCompleted},
	)
	store.SeedInventory(
		records.InventoryItem{ProductName: "Ink", Quantity: 2, MinStock: 2},
		records.InventoryItem{ProductName: "Paper", Quantity: 40, MinStock: 10},
	)
	ctx := context.Background()

	rent, err := conn.ListExpensesByCategory(ctx, records.CategoryRent)
	require.NoError(t, err)
	require.Len(t, rent, 1)

	inProgress, err := conn.ListTasksByStatus(ctx, records.TaskInProgress)
	require.NoError(t, err)
	require.Len(t, inProgress, 1)
	assert.Equal(t, "a", inProgress[0].Title)

	low, err := conn.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Ink", low[0].ProductName)
}

func TestImportAndDataLink(t *testing.T) {
	store, conn, _ := newConn(t)
	ctx := context.Background()

	_, err := conn.ImportData(ctx, records.ImportInput{DataLink: "https://example.com/data.csv", DataType: "sales"})
	require.NoError(t, err)
	require.Len(t, store.Imports(), 1)

	require.NoError(t, conn.UpdateDataLink(ctx, "https://example.com/other.csv"))
	profile, err := conn.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/other.csv", profile.DataLink)
}
