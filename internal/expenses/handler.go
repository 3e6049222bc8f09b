package expenses

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/erpdesk/erpdesk/internal/dashboard"
	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/export"
	"github.com/erpdesk/erpdesk/internal/gate"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/report"
	"github.com/erpdesk/erpdesk/internal/view"
)

// Handler manages expense endpoints.
type Handler struct {
	logger    *slog.Logger
	client    *erpapi.Client
	runtime   dashboard.Runtime
	pages     view.Responder
	files     export.Sender
	validator *records.Validator
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, client *erpapi.Client, runtime dashboard.Runtime, pages view.Responder, files export.Sender) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		client:    client,
		runtime:   runtime,
		pages:     pages,
		files:     files,
		validator: records.NewValidator(),
	}
}

// MountRoutes registers expense routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}/edit", h.edit)
	r.Post("/{id}", h.update)
	r.Get("/{id}/delete", h.confirmDelete)
	r.Post("/{id}/delete", h.delete)
	r.Group(func(r chi.Router) {
		r.Use(export.Limiter(10, time.Minute))
		r.Get("/export.xlsx", h.exportXLSX)
		r.Get("/export.pdf", h.exportPDF)
	})
}

type expenseForm struct {
	Category    string
	Description string
	Amount      string
	Status      string
}

type listPage struct {
	Expenses     []records.ExpenseRecord
	Degraded     bool
	Total        decimal.Decimal
	StatusCounts []report.StatusCount
	Category     string
	Categories   []records.ExpenseCategory
	Statuses     []records.ExpenseStatus
	Form         expenseForm
	Errors       map[string]string
}

type editPage struct {
	Expense    records.ExpenseRecord
	Categories []records.ExpenseCategory
	Statuses   []records.ExpenseStatus
	Form       expenseForm
	Errors     map[string]string
}

func (h *Handler) presenter(r *http.Request, category records.ExpenseCategory) *Presenter {
	return NewPresenter(h.runtime, h.client.With(gate.FromContext(r.Context())), category)
}

func revoked(w http.ResponseWriter, r *http.Request) bool {
	if gate.FromContext(r.Context()).Authenticated() {
		return false
	}
	gate.RedirectToLogin(w, r)
	return true
}

func categoryFilter(r *http.Request) records.ExpenseCategory {
	category, _ := records.ParseExpenseCategory(r.URL.Query().Get("category"))
	return category
}

func listOf(p *Presenter) listPage {
	return listPage{
		Expenses:     p.Expenses(),
		Degraded:     p.Degraded(),
		Total:        p.Total(),
		StatusCounts: p.StatusCounts(),
		Categories:   records.ExpenseCategories,
		Statuses:     records.ExpenseStatuses,
		Form:         expenseForm{Category: string(records.CategoryOther), Status: string(records.ExpensePending)},
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page listPage) {
	h.pages.Render(w, r, status, "pages/expenses.html", "Expenses", page)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	category := categoryFilter(r)
	p := h.presenter(r, category)
	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	page := listOf(p)
	page.Category = string(category)
	h.render(w, r, http.StatusOK, page)
}

func readForm(f *view.FormReader) (expenseForm, records.ExpenseInput) {
	form := expenseForm{
		Category:    f.String("category"),
		Description: f.String("description"),
		Amount:      f.String("amount"),
		Status:      f.String("status"),
	}
	in := records.ExpenseInput{
		Category:    records.ExpenseCategory(form.Category),
		Description: form.Description,
		Amount:      f.Decimal("amount", "Amount"),
		Status:      records.ExpenseStatus(form.Status),
	}
	if c, ok := records.ParseExpenseCategory(form.Category); ok {
		in.Category = c
	}
	if s, ok := records.ParseExpenseStatus(form.Status); ok {
		in.Status = s
	}
	return form, in
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	f, err := view.NewFormReader(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form, in := readForm(f)
	errs := f.Merge(h.validator.Check(in))
	p := h.presenter(r, "")

	if len(errs) == 0 {
		err = p.Create(r.Context(), in)
		if err == nil {
			view.Flash(r, "success", "Expense recorded.")
			h.render(w, r, http.StatusOK, listOf(p))
			return
		}
		if errors.Is(err, erpapi.ErrUnauthorized) {
			gate.RedirectToLogin(w, r)
			return
		}
		if msg, ok := erpapi.IsValidation(err); ok {
			errs["general"] = msg
		} else {
			view.Flash(r, "error", view.WriteErrorMessage("save the expense", err))
		}
	}

	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	page := listOf(p)
	page.Form = form
	page.Errors = errs
	h.render(w, r, http.StatusBadRequest, page)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	p := h.presenter(r, "")
	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	expense, ok := p.Find(chi.URLParam(r, "id"))
	if !ok {
		h.missing(w, r, p)
		return
	}
	h.pages.Render(w, r, http.StatusOK, "pages/expense_edit.html", "Edit expense", editPage{
		Expense:    expense,
		Categories: records.ExpenseCategories,
		Statuses:   records.ExpenseStatuses,
		Form: expenseForm{
			Category:    string(expense.Category),
			Description: expense.Description,
			Amount:      expense.Amount.StringFixed(2),
			Status:      string(expense.Status),
		},
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f, err := view.NewFormReader(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form, in := readForm(f)
	errs := f.Merge(h.validator.Check(in))
	p := h.presenter(r, "")

	if len(errs) == 0 {
		err = p.Update(r.Context(), id, in)
		if err == nil {
			view.Flash(r, "success", "Expense updated.")
			h.render(w, r, http.StatusOK, listOf(p))
			return
		}
		switch {
		case errors.Is(err, erpapi.ErrUnauthorized):
			gate.RedirectToLogin(w, r)
			return
		case errors.Is(err, erpapi.ErrNotFound):
			p.Load(r.Context())
			h.missing(w, r, p)
			return
		}
		if msg, ok := erpapi.IsValidation(err); ok {
			errs["general"] = msg
		} else {
			view.Flash(r, "error", view.WriteErrorMessage("update the expense", err))
		}
	}

	h.pages.Render(w, r, http.StatusBadRequest, "pages/expense_edit.html", "Edit expense", editPage{
		Expense:    records.ExpenseRecord{ID: id},
		Categories: records.ExpenseCategories,
		Statuses:   records.ExpenseStatuses,
		Form:       form,
		Errors:     errs,
	})
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	p := h.presenter(r, "")
	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	expense, ok := p.Find(id)
	if !ok {
		h.missing(w, r, p)
		return
	}
	name := expense.Description
	if name == "" {
		name = string(expense.Category) + " expense"
	}
	h.pages.Render(w, r, http.StatusOK, "pages/confirm_delete.html", "Delete expense", view.ConfirmDelete{
		Kind:   "expense",
		Name:   name,
		Action: "/expenses/" + id + "/delete",
		Back:   "/expenses",
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	f, err := view.NewFormReader(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	p := h.presenter(r, "")
	err = p.Delete(r.Context(), id, f.Confirmed())
	switch {
	case errors.Is(err, dashboard.ErrConfirmationRequired):
		http.Redirect(w, r, "/expenses/"+id+"/delete", http.StatusSeeOther)
		return
	case errors.Is(err, erpapi.ErrUnauthorized):
		gate.RedirectToLogin(w, r)
		return
	case err != nil:
		view.Flash(r, "error", view.WriteErrorMessage("delete the expense", err))
		p.Load(r.Context())
	default:
		view.Flash(r, "success", "Expense deleted.")
	}
	if revoked(w, r) {
		return
	}
	h.render(w, r, http.StatusOK, listOf(p))
}

func (h *Handler) missing(w http.ResponseWriter, r *http.Request, p *Presenter) {
	if p.Degraded() {
		view.Flash(r, "error", "Expenses could not be loaded. Please try again.")
	} else {
		view.Flash(r, "error", "That expense no longer exists.")
	}
	http.Redirect(w, r, "/expenses", http.StatusSeeOther)
}

func (h *Handler) loadForExport(w http.ResponseWriter, r *http.Request) (*Presenter, bool) {
	p := h.presenter(r, categoryFilter(r))
	p.Load(r.Context())
	if revoked(w, r) {
		return nil, false
	}
	if p.Degraded() {
		view.Flash(r, "error", "Expenses could not be loaded, export cancelled.")
		http.Redirect(w, r, "/expenses", http.StatusSeeOther)
		return nil, false
	}
	return p, true
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadForExport(w, r)
	if !ok {
		return
	}
	h.files.XLSX(w, r, "expenses_report", export.ExpenseTable(p.Expenses()))
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadForExport(w, r)
	if !ok {
		return
	}
	h.files.TablePDF(w, r, "expenses_report", export.ExpenseTable(p.Expenses()))
}
