// Package erpapitest provides an in-memory record store served over HTTP for
// tests of code built on erpapi.
package erpapitest

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/erpdesk/erpdesk/internal/records"
)

// DefaultToken is the bearer token accepted by a fresh Store.
const DefaultToken = "test-token"

// FailTransport makes Fail drop the connection instead of answering.
const FailTransport = -1

// Store is a fake record store. All methods are safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	token     string
	accounts  map[string]string
	profile   records.Profile
	sales     []records.SaleRecord
	inventory []records.InventoryItem
	expenses  []records.ExpenseRecord
	tasks     []records.TaskRecord
	sheets    []records.SheetLink
	dashboard *records.DashboardData
	imports   []records.ImportInput
	failures  map[string]int
	hits      map[string]int
	seq       int
	now       func() time.Time

	server *httptest.Server
}

// NewServer starts a Store and stops it when the test ends.
func NewServer(t testing.TB) *Store {
	t.Helper()
	s := &Store{
		token:    DefaultToken,
		accounts: map[string]string{"owner@example.com": "secret1"},
		profile:  records.Profile{ID: "user-1", Username: "owner", Email: "owner@example.com"},
		failures: make(map[string]int),
		hits:     make(map[string]int),
		now:      time.Now,
	}
	s.server = httptest.NewServer(s.routes())
	t.Cleanup(s.server.Close)
	return s
}

// URL is the API base URL.
func (s *Store) URL() string { return s.server.URL }

// SetNow fixes the clock used for record dates and lastUpdated.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Token returns the accepted bearer token.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// ExpireToken rotates the accepted token so existing credentials get 401.
func (s *Store) ExpireToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = fmt.Sprintf("rotated-%d", s.nextSeq())
}

// Fail makes every request to method+path answer with status, or drop the
// connection when status is FailTransport. A zero status clears the failure.
func (s *Store) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(s.failures, key)
		return
	}
	s.failures[key] = status
}

// Hits counts requests received for method+path.
func (s *Store) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// SetDashboard fixes the /dashboard response instead of deriving it.
func (s *Store) SetDashboard(d records.DashboardData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dashboard = &d
}

// SeedSales appends sales, assigning ids where missing.
func (s *Store) SeedSales(sales ...records.SaleRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sale := range sales {
		if sale.ID == "" {
			sale.ID = fmt.Sprintf("sale-%d", s.nextSeq())
		}
		s.sales = append(s.sales, sale)
	}
}

// SeedInventory appends inventory items.
func (s *Store) SeedInventory(items ...records.InventoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if item.ID == "" {
			item.ID = fmt.Sprintf("item-%d", s.nextSeq())
		}
		s.inventory = append(s.inventory, item)
	}
}

// SeedExpenses appends expenses.
func (s *Store) SeedExpenses(expenses ...records.ExpenseRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range expenses {
		if e.ID == "" {
			e.ID = fmt.Sprintf("expense-%d", s.nextSeq())
		}
		s.expenses = append(s.expenses, e)
	}
}

// SeedTasks appends tasks.
func (s *Store) SeedTasks(tasks ...records.TaskRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range tasks {
		if task.ID == "" {
			task.ID = fmt.Sprintf("task-%d", s.nextSeq())
		}
		s.tasks = append(s.tasks, task)
	}
}

// SeedSheets appends sheet links.
func (s *Store) SeedSheets(sheets ...records.SheetLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sheet := range sheets {
		if sheet.ID == "" {
			sheet.ID = fmt.Sprintf("sheet-%d", s.nextSeq())
		}
		s.sheets = append(s.sheets, sheet)
	}
}

// Sales returns a copy of the stored sales.
func (s *Store) Sales() []records.SaleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]records.SaleRecord(nil), s.sales...)
}

// Inventory returns a copy of the stored items.
func (s *Store) Inventory() []records.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]records.InventoryItem(nil), s.inventory...)
}

// Expenses returns a copy of the stored expenses.
func (s *Store) Expenses() []records.ExpenseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]records.ExpenseRecord(nil), s.expenses...)
}

// Tasks returns a copy of the stored tasks.
func (s *Store) Tasks() []records.TaskRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]records.TaskRecord(nil), s.tasks...)
}

// Sheets returns a copy of the stored sheet links.
func (s *Store) Sheets() []records.SheetLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]records.SheetLink(nil), s.sheets...)
}

// Imports returns the import requests received so far.
func (s *Store) Imports() []records.ImportInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]records.ImportInput(nil), s.imports...)
}

// Profile returns the stored profile.
func (s *Store) Profile() records.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

func (s *Store) nextSeq() int {
	s.seq++
	return s.seq
}

func (s *Store) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.failureInjection)
	r.Post("/auth/login", s.login)
	r.Post("/auth/register", s.register)
	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/auth/profile", s.getProfile)

		r.Get("/sales", s.listSales)
		r.Get("/sales/range/{start}/{end}", s.listSalesByRange)
		r.Post("/sales", s.createSale)
		r.Put("/sales/{id}", s.updateSale)
		r.Delete("/sales/{id}", s.deleteSale)

		r.Get("/inventory", s.listInventory)
		r.Get("/inventory/low-stock", s.listLowStock)
		r.Post("/inventory", s.createInventory)
		r.Put("/inventory/{id}", s.updateInventory)
		r.Delete("/inventory/{id}", s.deleteInventory)

		r.Get("/expenses", s.listExpenses)
		r.Get("/expenses/category/{category}", s.listExpensesByCategory)
		r.Post("/expenses", s.createExpense)
		r.Put("/expenses/{id}", s.updateExpense)
		r.Delete("/expenses/{id}", s.deleteExpense)

		r.Get("/tasks", s.listTasks)
		r.Get("/tasks/status/{status}", s.listTasksByStatus)
		r.Get("/tasks/pinned/all", s.listPinnedTasks)
		r.Post("/tasks", s.createTask)
		r.Put("/tasks/{id}", s.updateTask)
		r.Put("/tasks/{id}/pin", s.toggleTaskPin)
		r.Delete("/tasks/{id}", s.deleteTask)

		r.Get("/sheets", s.listSheets)
		r.Get("/sheets/pinned", s.listPinnedSheets)
		r.Post("/sheets", s.createSheet)
		r.Put("/sheets/{id}/pin", s.toggleSheetPin)
		r.Delete("/sheets/{id}", s.deleteSheet)

		r.Get("/dashboard", s.getDashboard)
		r.Post("/import/data", s.importData)
		r.Post("/import/link", s.updateLink)
	})
	return r
}

func (s *Store) failureInjection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.hits[key]++
		status := s.failures[key]
		s.mu.Unlock()
		switch {
		case status == FailTransport:
			if hj, ok := w.(http.Hijacker); ok {
				conn, _, err := hj.Hijack()
				if err == nil {
					closeQuietly(conn)
					return
				}
			}
			writeError(w, http.StatusBadGateway, "connection dropped")
		case status > 0:
			writeError(w, status, http.StatusText(status))
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func closeQuietly(conn net.Conn) {
	_ = conn.Close()
}

func (s *Store) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		want := "Bearer " + s.token
		s.mu.Unlock()
		if r.Header.Get("Authorization") != want {
			writeError(w, http.StatusUnauthorized, "Token is not valid")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (s *Store) login(w http.ResponseWriter, r *http.Request) {
	var creds records.Credentials
	if !decode(w, r, &creds) {
		return
	}
	s.mu.Lock()
	password, ok := s.accounts[strings.ToLower(creds.Email)]
	token := s.token
	s.mu.Unlock()
	if !ok || password != creds.Password {
		writeError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Store) register(w http.ResponseWriter, r *http.Request) {
	var reg records.Registration
	if !decode(w, r, &reg) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(reg.Email)
	if _, exists := s.accounts[email]; exists {
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	}
	s.accounts[email] = reg.Password
	s.profile = records.Profile{ID: fmt.Sprintf("user-%d", s.nextSeq()), Username: reg.Username, Email: email}
	writeJSON(w, http.StatusCreated, map[string]string{"token": s.token})
}

func (s *Store) getProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Profile())
}

func (s *Store) getDashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dashboard != nil {
		writeJSON(w, http.StatusOK, s.dashboard)
		return
	}
	now := s.now()
	today := now.Format("2006-01-02")
	var data records.DashboardData
	for _, sale := range s.sales {
		data.TotalSales = data.TotalSales.Add(sale.TotalAmount)
		data.TotalProfit = data.TotalProfit.Add(sale.Profit)
		if sale.Date.DateString() == today {
			data.TodaySales = data.TodaySales.Add(sale.TotalAmount)
		}
	}
	for _, e := range s.expenses {
		data.TotalExpenses = data.TotalExpenses.Add(e.Amount)
	}
	data.LastUpdated = records.NewTimestamp(now)
	writeJSON(w, http.StatusOK, data)
}

func (s *Store) importData(w http.ResponseWriter, r *http.Request) {
	var in records.ImportInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	s.imports = append(s.imports, in)
	s.profile.DataLink = in.DataLink
	s.profile.LastUpdated = records.NewTimestamp(s.now())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"message": "Data imported successfully", "imported": 0})
}

func (s *Store) updateLink(w http.ResponseWriter, r *http.Request) {
	var in records.DataLinkInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	s.profile.DataLink = in.DataLink
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Data link updated"})
}

func zeroIfNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
