package sheets

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/erpdesk/erpdesk/internal/dashboard"
	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/gate"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/sheets/google"
	"github.com/erpdesk/erpdesk/internal/shared"
	"github.com/erpdesk/erpdesk/internal/view"
)

const lookupTimeout = 5 * time.Second

// Handler manages linked sheet endpoints.
type Handler struct {
	logger    *slog.Logger
	client    *erpapi.Client
	runtime   dashboard.Runtime
	pages     view.Responder
	titles    google.Resolver
	validator *records.Validator
}

// NewHandler builds Handler instance. titles may be nil, in which case a
// sheet name is always required.
func NewHandler(logger *slog.Logger, client *erpapi.Client, runtime dashboard.Runtime, pages view.Responder, titles google.Resolver) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		client:    client,
		runtime:   runtime,
		pages:     pages,
		titles:    titles,
		validator: records.NewValidator(),
	}
}

// MountRoutes registers sheet routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/{id}/pin", h.togglePin)
	r.Get("/{id}/delete", h.confirmDelete)
	r.Post("/{id}/delete", h.delete)
}

type sheetForm struct {
	Name string
	URL  string
}

type listPage struct {
	Pinned   []records.SheetLink
	Others   []records.SheetLink
	Degraded bool
	Lookup   bool
	Form     sheetForm
	Errors   map[string]string
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

func (h *Handler) listOf(r *http.Request, p *Presenter) listPage {
	page := listPage{
		Pinned:   []records.SheetLink{},
		Others:   []records.SheetLink{},
		Degraded: p.Degraded(),
		Lookup:   h.titles != nil,
	}
	for _, s := range p.Sheets() {
		if s.IsPinned {
			page.Pinned = append(page.Pinned, s)
		} else {
			page.Others = append(page.Others, s)
		}
	}
	if p.Loaded() {
		view.RememberPinnedSheets(shared.SessionFromContext(r.Context()), p.Sheets())
	}
	return page
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page listPage) {
	h.pages.Render(w, r, status, "pages/sheets.html", "Google Sheets", page)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p := h.presenter(r)
	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	h.render(w, r, http.StatusOK, h.listOf(r, p))
}

// suggestName asks the Sheets API for the document title. Lookup failures
// leave the name blank so the regular validation message is shown.
func (h *Handler) suggestName(ctx context.Context, rawURL string) string {
	if h.titles == nil || !records.IsSpreadsheetURL(rawURL) {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	title, err := h.titles.Title(ctx, rawURL)
	if err != nil {
		h.logger.Info("sheet title lookup skipped", slog.Any("error", err))
		return ""
	}
	return title
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	f, err := view.NewFormReader(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := sheetForm{Name: f.String("name"), URL: f.String("url")}
	if form.Name == "" {
		form.Name = h.suggestName(r.Context(), form.URL)
	}
	in := records.SheetInput{Name: form.Name, URL: form.URL}
	errs := f.Merge(h.validator.Check(in))
	p := h.presenter(r)

	if len(errs) == 0 {
		err = p.Create(r.Context(), in)
		if err == nil {
			view.Flash(r, "success", "Sheet linked.")
			h.render(w, r, http.StatusOK, h.listOf(r, p))
			return
		}
		if errors.Is(err, erpapi.ErrUnauthorized) {
			gate.RedirectToLogin(w, r)
			return
		}
		if msg, ok := erpapi.IsValidation(err); ok {
			errs["general"] = msg
		} else {
			view.Flash(r, "error", view.WriteErrorMessage("link the sheet", err))
		}
	}

	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	page := h.listOf(r, p)
	page.Form = form
	page.Errors = errs
	h.render(w, r, http.StatusBadRequest, page)
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, action, done string, op func(p *Presenter) error) {
	p := h.presenter(r)
	err := op(p)
	switch {
	case errors.Is(err, erpapi.ErrUnauthorized):
		gate.RedirectToLogin(w, r)
		return
	case err != nil:
		view.Flash(r, "error", view.WriteErrorMessage(action, err))
		p.Load(r.Context())
	default:
		view.Flash(r, "success", done)
	}
	if revoked(w, r) {
		return
	}
	h.render(w, r, http.StatusOK, h.listOf(r, p))
}

func (h *Handler) togglePin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "pin the sheet", "Sheet pin updated.", func(p *Presenter) error {
		return p.TogglePin(r.Context(), id)
	})
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	p := h.presenter(r)
	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	sheet, ok := p.Find(id)
	if !ok {
		if p.Degraded() {
			view.Flash(r, "error", "Sheets could not be loaded. Please try again.")
		} else {
			view.Flash(r, "error", "That sheet is no longer linked.")
		}
		http.Redirect(w, r, "/sheets", http.StatusSeeOther)
		return
	}
	h.pages.Render(w, r, http.StatusOK, "pages/confirm_delete.html", "Remove sheet", view.ConfirmDelete{
		Kind:   "sheet",
		Name:   sheet.Name,
		Action: "/sheets/" + id + "/delete",
		Back:   "/sheets",
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	f, err := view.NewFormReader(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	if !f.Confirmed() {
		http.Redirect(w, r, "/sheets/"+id+"/delete", http.StatusSeeOther)
		return
	}
	h.mutate(w, r, "remove the sheet", "Sheet removed.", func(p *Presenter) error {
		return p.Delete(r.Context(), id, true)
	})
}
