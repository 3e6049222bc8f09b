package erpapitest

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/erpdesk/erpdesk/internal/records"
)

func (s *Store) listSales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sales())
}

func (s *Store) listSalesByRange(w http.ResponseWriter, r *http.Request) {
	start, err1 := time.Parse("2006-01-02", chi.URLParam(r, "start"))
	end, err2 := time.Parse("2006-01-02", chi.URLParam(r, "end"))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range")
		return
	}
	end = end.Add(24*time.Hour - time.Nanosecond)
	out := []records.SaleRecord{}
	for _, sale := range s.Sales() {
		if !sale.Date.Before(start) && !sale.Date.After(end) {
			out = append(out, sale)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Store) createSale(w http.ResponseWriter, r *http.Request) {
	var in records.SaleInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.ProductName) == "" {
		writeError(w, http.StatusBadRequest, "Product name is required")
		return
	}
	s.mu.Lock()
	sale := records.SaleRecord{
		ID:          fmt.Sprintf("sale-%d", s.nextSeq()),
		ProductName: in.ProductName,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		TotalAmount: in.TotalAmount,
		Profit:      zeroIfNegative(in.Profit),
		Date:        records.NewTimestamp(s.now()),
		Status:      "completed",
	}
	s.sales = append(s.sales, sale)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, sale)
}

func (s *Store) updateSale(w http.ResponseWriter, r *http.Request) {
	var in records.SaleInput
	if !decode(w, r, &in) {
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sales {
		if s.sales[i].ID == id {
			s.sales[i].ProductName = in.ProductName
			s.sales[i].Quantity = in.Quantity
			s.sales[i].UnitPrice = in.UnitPrice
			s.sales[i].TotalAmount = in.TotalAmount
			s.sales[i].Profit = in.Profit
			writeJSON(w, http.StatusOK, s.sales[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Sale not found")
}

func (s *Store) deleteSale(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sales {
		if s.sales[i].ID == id {
			s.sales = append(s.sales[:i], s.sales[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Sale deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Sale not found")
}

func (s *Store) listInventory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Inventory())
}

func (s *Store) listLowStock(w http.ResponseWriter, r *http.Request) {
	out := []records.InventoryItem{}
	for _, item := range s.Inventory() {
		if item.IsLowStock() {
			out = append(out, item)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Store) createInventory(w http.ResponseWriter, r *http.Request) {
	var in records.InventoryInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	item := records.InventoryItem{
		ID:          fmt.Sprintf("item-%d", s.nextSeq()),
		ProductName: in.ProductName,
		SKU:         in.SKU,
		Category:    in.Category,
		Quantity:    in.Quantity,
		Price:       in.Price,
		MinStock:    in.MinStock,
	}
	s.inventory = append(s.inventory, item)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, item)
}

func (s *Store) updateInventory(w http.ResponseWriter, r *http.Request) {
	var in records.InventoryInput
	if !decode(w, r, &in) {
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.inventory {
		if s.inventory[i].ID == id {
			s.inventory[i] = records.InventoryItem{
				ID: id, ProductName: in.ProductName, SKU: in.SKU, Category: in.Category,
				Quantity: in.Quantity, Price: in.Price, MinStock: in.MinStock,
			}
			writeJSON(w, http.StatusOK, s.inventory[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Item not found")
}

func (s *Store) deleteInventory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.inventory {
		if s.inventory[i].ID == id {
			s.inventory = append(s.inventory[:i], s.inventory[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Item deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Item not found")
}

func (s *Store) listExpenses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Expenses())
}

func (s *Store) listExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	category := records.ExpenseCategory(chi.URLParam(r, "category"))
	out := []records.ExpenseRecord{}
	for _, e := range s.Expenses() {
		if e.Category == category {
			out = append(out, e)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Store) createExpense(w http.ResponseWriter, r *http.Request) {
	var in records.ExpenseInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	e := records.ExpenseRecord{
		ID:          fmt.Sprintf("expense-%d", s.nextSeq()),
		Category:    in.Category,
		Description: in.Description,
		Amount:      in.Amount,
		Status:      in.Status,
		Date:        records.NewTimestamp(s.now()),
	}
	s.expenses = append(s.expenses, e)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, e)
}

func (s *Store) updateExpense(w http.ResponseWriter, r *http.Request) {
	var in records.ExpenseInput
	if !decode(w, r, &in) {
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses[i].Category = in.Category
			s.expenses[i].Description = in.Description
			s.expenses[i].Amount = in.Amount
			s.expenses[i].Status = in.Status
			writeJSON(w, http.StatusOK, s.expenses[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Expense not found")
}

func (s *Store) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Expense not found")
}

func (s *Store) listTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Tasks())
}

func (s *Store) listTasksByStatus(w http.ResponseWriter, r *http.Request) {
	status := records.TaskStatus(chi.URLParam(r, "status"))
	out := []records.TaskRecord{}
	for _, task := range s.Tasks() {
		if task.Status == status {
			out = append(out, task)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Store) listPinnedTasks(w http.ResponseWriter, r *http.Request) {
	out := []records.TaskRecord{}
	for _, task := range s.Tasks() {
		if task.IsPinned {
			out = append(out, task)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Store) createTask(w http.ResponseWriter, r *http.Request) {
	var in records.TaskInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	task := records.TaskRecord{
		ID:          fmt.Sprintf("task-%d", s.nextSeq()),
		Title:       in.Title,
		Description: in.Description,
		AssignedTo:  in.AssignedTo,
		Priority:    in.Priority,
		Status:      in.Status,
	}
	if in.DueDate != nil {
		task.DueDate = *in.DueDate
	}
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, task)
}

func (s *Store) updateTask(w http.ResponseWriter, r *http.Request) {
	var in records.TaskStatusInput
	if !decode(w, r, &in) {
		return
	}
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Status = in.Status
			writeJSON(w, http.StatusOK, s.tasks[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Task not found")
}

func (s *Store) toggleTaskPin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].IsPinned = !s.tasks[i].IsPinned
			writeJSON(w, http.StatusOK, s.tasks[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Task not found")
}

func (s *Store) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Task not found")
}

func (s *Store) listSheets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sheets())
}

func (s *Store) listPinnedSheets(w http.ResponseWriter, r *http.Request) {
	out := []records.SheetLink{}
	for _, sheet := range s.Sheets() {
		if sheet.IsPinned {
			out = append(out, sheet)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Store) createSheet(w http.ResponseWriter, r *http.Request) {
	var in records.SheetInput
	if !decode(w, r, &in) {
		return
	}
	if !strings.Contains(in.URL, "docs.google.com/spreadsheets") {
		writeError(w, http.StatusBadRequest, "Invalid Google Sheets URL")
		return
	}
	s.mu.Lock()
	sheet := records.SheetLink{ID: fmt.Sprintf("sheet-%d", s.nextSeq()), Name: in.Name, URL: in.URL}
	s.sheets = append(s.sheets, sheet)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, sheet)
}

func (s *Store) toggleSheetPin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sheets {
		if s.sheets[i].ID == id {
			s.sheets[i].IsPinned = !s.sheets[i].IsPinned
			writeJSON(w, http.StatusOK, s.sheets[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Sheet not found")
}

func (s *Store) deleteSheet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sheets {
		if s.sheets[i].ID == id {
			s.sheets = append(s.sheets[:i], s.sheets[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Sheet deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Sheet not found")
}
