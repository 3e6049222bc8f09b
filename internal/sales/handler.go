package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/erpdesk/erpdesk/internal/dashboard"
	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/export"
	"github.com/erpdesk/erpdesk/internal/gate"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/report"
	"github.com/erpdesk/erpdesk/internal/view"
)

// Handler manages sales endpoints.
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

// MountRoutes registers sales routes.
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

type saleForm struct {
	ProductName string
	Quantity    string
	UnitPrice   string
	Profit      string
}

type filterForm struct {
	Start string
	End   string
	Error string
}

type listPage struct {
	Sales    []records.SaleRecord
	Degraded bool
	Totals   report.Totals
	Filter   filterForm
	Form     saleForm
	Errors   map[string]string
}

type editPage struct {
	Sale   records.SaleRecord
	Form   saleForm
	Errors map[string]string
}

func (h *Handler) presenter(r *http.Request, filter Filter) *Presenter {
	return NewPresenter(h.runtime, h.client.With(gate.FromContext(r.Context())), filter)
}

// revoked redirects to login when the credential was rejected during the
// request.
func revoked(w http.ResponseWriter, r *http.Request) bool {
	if gate.FromContext(r.Context()).Authenticated() {
		return false
	}
	gate.RedirectToLogin(w, r)
	return true
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, filterErr := ParseFilter(r.URL.Query())
	p := h.presenter(r, filter)
	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	page := h.listPage(p)
	page.Filter = filterForm{Start: r.URL.Query().Get("start"), End: r.URL.Query().Get("end"), Error: filterErr}
	h.pages.Render(w, r, http.StatusOK, "pages/sales.html", "Sales", page)
}

func (h *Handler) listPage(p *Presenter) listPage {
	return listPage{
		Sales:    p.Sales(),
		Degraded: p.Degraded(),
		Totals:   p.Totals(),
	}
}

func readForm(f *view.FormReader) (saleForm, records.SaleInput) {
	form := saleForm{
		ProductName: f.String("productName"),
		Quantity:    f.String("quantity"),
		UnitPrice:   f.String("unitPrice"),
		Profit:      f.String("profit"),
	}
	in := records.NewSaleInput(
		form.ProductName,
		f.Int("quantity", "Quantity"),
		f.Decimal("unitPrice", "Unit price"),
		f.Decimal("profit", "Profit"),
	)
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
	p := h.presenter(r, Filter{})

	if len(errs) == 0 {
		err = p.Create(r.Context(), in)
		if err == nil {
			view.Flash(r, "success", "Sale recorded.")
			h.pages.Render(w, r, http.StatusOK, "pages/sales.html", "Sales", h.listPage(p))
			return
		}
		if errors.Is(err, erpapi.ErrUnauthorized) {
			gate.RedirectToLogin(w, r)
			return
		}
		if msg, ok := erpapi.IsValidation(err); ok {
			errs["general"] = msg
		} else {
			view.Flash(r, "error", view.WriteErrorMessage("save the sale", err))
		}
	}

	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	page := h.listPage(p)
	page.Form = form
	page.Errors = errs
	h.pages.Render(w, r, http.StatusBadRequest, "pages/sales.html", "Sales", page)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	p := h.presenter(r, Filter{})
	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	sale, ok := p.Find(chi.URLParam(r, "id"))
	if !ok {
		h.missing(w, r, p)
		return
	}
	page := editPage{
		Sale: sale,
		Form: saleForm{
			ProductName: sale.ProductName,
			Quantity:    strconv.Itoa(sale.Quantity),
			UnitPrice:   sale.UnitPrice.StringFixed(2),
			Profit:      sale.Profit.StringFixed(2),
		},
	}
	h.pages.Render(w, r, http.StatusOK, "pages/sale_edit.html", "Edit sale", page)
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
	p := h.presenter(r, Filter{})

	if len(errs) == 0 {
		err = p.Update(r.Context(), id, in)
		if err == nil {
			view.Flash(r, "success", "Sale updated.")
			h.pages.Render(w, r, http.StatusOK, "pages/sales.html", "Sales", h.listPage(p))
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
			view.Flash(r, "error", view.WriteErrorMessage("update the sale", err))
		}
	}

	page := editPage{Sale: records.SaleRecord{ID: id}, Form: form, Errors: errs}
	h.pages.Render(w, r, http.StatusBadRequest, "pages/sale_edit.html", "Edit sale", page)
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	p := h.presenter(r, Filter{})
	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	sale, ok := p.Find(id)
	if !ok {
		h.missing(w, r, p)
		return
	}
	h.pages.Render(w, r, http.StatusOK, "pages/confirm_delete.html", "Delete sale", view.ConfirmDelete{
		Kind:   "sale",
		Name:   sale.ProductName,
		Action: "/sales/" + id + "/delete",
		Back:   "/sales",
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	f, err := view.NewFormReader(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	p := h.presenter(r, Filter{})
	err = p.Delete(r.Context(), id, f.Confirmed())
	switch {
	case errors.Is(err, dashboard.ErrConfirmationRequired):
		http.Redirect(w, r, "/sales/"+id+"/delete", http.StatusSeeOther)
		return
	case errors.Is(err, erpapi.ErrUnauthorized):
		gate.RedirectToLogin(w, r)
		return
	case err != nil:
		view.Flash(r, "error", view.WriteErrorMessage("delete the sale", err))
		p.Load(r.Context())
	default:
		view.Flash(r, "success", "Sale deleted.")
	}
	if revoked(w, r) {
		return
	}
	h.pages.Render(w, r, http.StatusOK, "pages/sales.html", "Sales", h.listPage(p))
}

func (h *Handler) missing(w http.ResponseWriter, r *http.Request, p *Presenter) {
	if p.Degraded() {
		view.Flash(r, "error", "Sales could not be loaded. Please try again.")
	} else {
		view.Flash(r, "error", "That sale no longer exists.")
	}
	http.Redirect(w, r, "/sales", http.StatusSeeOther)
}

func (h *Handler) loadForExport(w http.ResponseWriter, r *http.Request) (*Presenter, bool) {
	filter, _ := ParseFilter(r.URL.Query())
	p := h.presenter(r, filter)
	p.Load(r.Context())
	if revoked(w, r) {
		return nil, false
	}
	if p.Degraded() {
		view.Flash(r, "error", "Sales could not be loaded, export cancelled.")
		http.Redirect(w, r, "/sales", http.StatusSeeOther)
		return nil, false
	}
	return p, true
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadForExport(w, r)
	if !ok {
		return
	}
	h.files.XLSX(w, r, "sales_report", export.SalesTable(p.Sales()))
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadForExport(w, r)
	if !ok {
		return
	}
	h.files.TablePDF(w, r, "sales_report", export.SalesTable(p.Sales()))
}
