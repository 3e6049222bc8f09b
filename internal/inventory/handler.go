package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/erpdesk/erpdesk/internal/dashboard"
	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/export"
	"github.com/erpdesk/erpdesk/internal/gate"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/view"
)

// Handler manages inventory endpoints.
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

// MountRoutes registers inventory routes.
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

type itemForm struct {
	ProductName string
	SKU         string
	Category    string
	Quantity    string
	Price       string
	MinStock    string
}

type listPage struct {
	Items    []records.InventoryItem
	Degraded bool
	LowStock []records.InventoryItem
	Value    decimal.Decimal
	Form     itemForm
	Errors   map[string]string
}

type editPage struct {
	Item   records.InventoryItem
	Form   itemForm
	Errors map[string]string
}

func (h *Handler) presenter(r *http.Request) *Presenter {
	return NewPresenter(h.runtime, h.client.With(gate.FromContext(r.Context())))
}

func revoked(w http.ResponseWriter, r *http.Request) bool {
	if gate.FromContext(r.Context()).Authenticated() {
		return false
	}
	gate.RedirectToLogin(w, r)
	return true
}

func listOf(p *Presenter) listPage {
	return listPage{
		Items:    p.Items(),
		Degraded: p.Degraded(),
		LowStock: p.LowStock(),
		Value:    p.Value(),
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page listPage) {
	h.pages.Render(w, r, status, "pages/inventory.html", "Inventory", page)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p := h.presenter(r)
	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	h.render(w, r, http.StatusOK, listOf(p))
}

func readForm(f *view.FormReader) (itemForm, records.InventoryInput) {
	form := itemForm{
		ProductName: f.String("productName"),
		SKU:         f.String("sku"),
		Category:    f.String("category"),
		Quantity:    f.String("quantity"),
		Price:       f.String("price"),
		MinStock:    f.String("minStock"),
	}
	in := records.InventoryInput{
		ProductName: form.ProductName,
		SKU:         form.SKU,
		Category:    form.Category,
		Quantity:    f.Int("quantity", "Quantity"),
		Price:       f.Decimal("price", "Price"),
		MinStock:    f.Int("minStock", "Min stock"),
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
	p := h.presenter(r)

	if len(errs) == 0 {
		err = p.Create(r.Context(), in)
		if err == nil {
			view.Flash(r, "success", "Item added.")
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
			view.Flash(r, "error", view.WriteErrorMessage("save the item", err))
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
	p := h.presenter(r)
	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	item, ok := p.Find(chi.URLParam(r, "id"))
	if !ok {
		h.missing(w, r, p)
		return
	}
	page := editPage{
		Item: item,
		Form: itemForm{
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Category:    item.Category,
			Quantity:    strconv.Itoa(item.Quantity),
			Price:       item.Price.StringFixed(2),
			MinStock:    strconv.Itoa(item.MinStock),
		},
	}
	h.pages.Render(w, r, http.StatusOK, "pages/inventory_edit.html", "Edit item", page)
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
	p := h.presenter(r)

	if len(errs) == 0 {
		err = p.Update(r.Context(), id, in)
		if err == nil {
			view.Flash(r, "success", "Item updated.")
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
			view.Flash(r, "error", view.WriteErrorMessage("update the item", err))
		}
	}

	page := editPage{Item: records.InventoryItem{ID: id}, Form: form, Errors: errs}
	h.pages.Render(w, r, http.StatusBadRequest, "pages/inventory_edit.html", "Edit item", page)
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	p := h.presenter(r)
	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	item, ok := p.Find(id)
	if !ok {
		h.missing(w, r, p)
		return
	}
	h.pages.Render(w, r, http.StatusOK, "pages/confirm_delete.html", "Delete item", view.ConfirmDelete{
		Kind:   "inventory item",
		Name:   item.ProductName,
		Action: "/inventory/" + id + "/delete",
		Back:   "/inventory",
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	f, err := view.NewFormReader(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	p := h.presenter(r)
	err = p.Delete(r.Context(), id, f.Confirmed())
	switch {
	case errors.Is(err, dashboard.ErrConfirmationRequired):
		http.Redirect(w, r, "/inventory/"+id+"/delete", http.StatusSeeOther)
		return
	case errors.Is(err, erpapi.ErrUnauthorized):
		gate.RedirectToLogin(w, r)
		return
	case err != nil:
		view.Flash(r, "error", view.WriteErrorMessage("delete the item", err))
		p.Load(r.Context())
	default:
		view.Flash(r, "success", "Item deleted.")
	}
	if revoked(w, r) {
		return
	}
	h.render(w, r, http.StatusOK, listOf(p))
}

func (h *Handler) missing(w http.ResponseWriter, r *http.Request, p *Presenter) {
	if p.Degraded() {
		view.Flash(r, "error", "Inventory could not be loaded. Please try again.")
	} else {
		view.Flash(r, "error", "That item no longer exists.")
	}
	http.Redirect(w, r, "/inventory", http.StatusSeeOther)
}

func (h *Handler) loadForExport(w http.ResponseWriter, r *http.Request) (*Presenter, bool) {
	p := h.presenter(r)
	p.Load(r.Context())
	if revoked(w, r) {
		return nil, false
	}
	if p.Degraded() {
		view.Flash(r, "error", "Inventory could not be loaded, export cancelled.")
		http.Redirect(w, r, "/inventory", http.StatusSeeOther)
		return nil, false
	}
	return p, true
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadForExport(w, r)
	if !ok {
		return
	}
	h.files.XLSX(w, r, "inventory_report", export.InventoryTable(p.Items()))
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadForExport(w, r)
	if !ok {
		return
	}
	h.files.TablePDF(w, r, "inventory_report", export.InventoryTable(p.Items()))
}
