// Package dashboardhttp serves the dashboard page, the data import, the
// linked-sheet shortcuts and the admin profile page.
package dashboardhttp

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/erpdesk/erpdesk/internal/charts"
	"github.com/erpdesk/erpdesk/internal/dashboard"
	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/gate"
	"github.com/erpdesk/erpdesk/internal/platform/httpx"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/shared"
	"github.com/erpdesk/erpdesk/internal/view"
)

// Handler serves the dashboard.
type Handler struct {
	logger    *slog.Logger
	client    *erpapi.Client
	runtime   dashboard.Runtime
	pages     view.Responder
	validator *records.Validator
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, client *erpapi.Client, runtime dashboard.Runtime, pages view.Responder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		client:    client,
		runtime:   runtime,
		pages:     pages,
		validator: records.NewValidator(),
	}
}

// MountRoutes registers the dashboard routes. Paths are absolute.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Get("/dashboard.json", h.summaryJSON)
	r.Post("/dashboard/import", h.importData)
	r.Post("/dashboard/sheets", h.addSheet)
	r.Post("/dashboard/sheets/{id}/pin", h.toggleSheetPin)
	r.Get("/dashboard/sheets/{id}/delete", h.confirmDeleteSheet)
	r.Post("/dashboard/sheets/{id}/delete", h.deleteSheet)
	r.Post("/dashboard/tasks/{id}/pin", h.toggleTaskPin)
}

type importForm struct {
	DataLink string
	DataType string
}

type sheetForm struct {
	Name string
	URL  string
}

type pageData struct {
	View         dashboard.View
	Chart        template.HTML
	ImportForm   importForm
	ImportErrors map[string]string
	SheetForm    sheetForm
	SheetErrors  map[string]string
	DataTypes    []string
}

var dataTypes = []string{"sales", "inventory", "expenses", "tasks"}

func (h *Handler) presenter(r *http.Request) *dashboard.Dashboard {
	conn := h.client.With(gate.FromContext(r.Context()))
	return dashboard.NewDashboard(h.runtime, conn, func(at time.Time) {
		view.RecordFreshness(r, at)
	})
}

func revoked(w http.ResponseWriter, r *http.Request) bool {
	if gate.FromContext(r.Context()).Authenticated() {
		return false
	}
	gate.RedirectToLogin(w, r)
	return true
}

func (h *Handler) pageOf(r *http.Request, d *dashboard.Dashboard) pageData {
	v := d.View()
	if !v.SheetsDegraded {
		sheets := append(append([]records.SheetLink{}, v.PinnedSheets...), v.OtherSheets...)
		view.RememberPinnedSheets(shared.SessionFromContext(r.Context()), sheets)
	}
	return pageData{
		View:      v,
		Chart:     summaryChart(v),
		DataTypes: dataTypes,
	}
}

func summaryChart(v dashboard.View) template.HTML {
	if v.SummaryDegraded {
		return charts.Placeholder(charts.DefaultWidth, charts.DefaultHeight, "Summary unavailable")
	}
	s := v.Summary
	svg, err := charts.Bars(charts.DefaultWidth, charts.DefaultHeight,
		[]string{"Sales", "Expenses", "Profit", "Today"},
		[]charts.Series{{Label: "Amount", Values: charts.Floats([]decimal.Decimal{s.TotalSales, s.TotalExpenses, s.TotalProfit, s.TodaySales})}},
		charts.Opts{Title: "Business overview", Description: "Total sales, expenses and profit"})
	if err != nil {
		return charts.Placeholder(charts.DefaultWidth, charts.DefaultHeight, "Chart unavailable")
	}
	return svg
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page pageData) {
	h.pages.Render(w, r, status, "pages/dashboard.html", "Dashboard", page)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	if revoked(w, r) {
		return
	}
	d := h.presenter(r)
	d.Activate(r.Context())
	if revoked(w, r) {
		return
	}
	h.render(w, r, http.StatusOK, h.pageOf(r, d))
}

type summaryResponse struct {
	TotalSales    decimal.Decimal `json:"totalSales"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	TotalProfit   decimal.Decimal `json:"totalProfit"`
	TodaySales    decimal.Decimal `json:"todaySales"`
	LastUpdated   *time.Time      `json:"lastUpdated,omitempty"`
	PinnedTasks   int             `json:"pinnedTasks"`
	Sheets        int             `json:"sheets"`
	Degraded      []string        `json:"degraded"`
}

func (h *Handler) summaryJSON(w http.ResponseWriter, r *http.Request) {
	if !gate.FromContext(r.Context()).Authenticated() {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	d := h.presenter(r)
	failures := d.Activate(r.Context())
	if !gate.FromContext(r.Context()).Authenticated() {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "session expired")
		return
	}
	v := d.View()
	resp := summaryResponse{
		TotalSales:    v.Summary.TotalSales,
		TotalExpenses: v.Summary.TotalExpenses,
		TotalProfit:   v.Summary.TotalProfit,
		TodaySales:    v.Summary.TodaySales,
		PinnedTasks:   len(v.PinnedTasks),
		Sheets:        len(v.PinnedSheets) + len(v.OtherSheets),
		Degraded:      []string{},
	}
	if !v.Summary.LastUpdated.IsZero() {
		at := v.Summary.LastUpdated.Time
		resp.LastUpdated = &at
	}
	for name := range failures {
		resp.Degraded = append(resp.Degraded, name)
	}
	sort.Strings(resp.Degraded)
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) importData(w http.ResponseWriter, r *http.Request) {
	if revoked(w, r) {
		return
	}
	f, err := view.NewFormReader(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := importForm{DataLink: f.String("dataLink"), DataType: f.String("dataType")}
	in := records.ImportInput{DataLink: form.DataLink, DataType: form.DataType}
	errs := f.Merge(h.validator.Check(in))
	d := h.presenter(r)

	if len(errs) == 0 {
		result, err := d.ImportData(r.Context(), in)
		switch {
		case err == nil:
			msg := result.Message
			if msg == "" {
				msg = "Data imported successfully."
			}
			view.Flash(r, "success", msg)
			h.refresh(w, r, d)
			return
		case errors.Is(err, erpapi.ErrUnauthorized):
			gate.RedirectToLogin(w, r)
			return
		default:
			if msg, ok := erpapi.IsValidation(err); ok {
				errs["general"] = msg
			} else {
				view.Flash(r, "error", view.WriteErrorMessage("import the data", err))
			}
		}
	}

	d.Activate(r.Context())
	if revoked(w, r) {
		return
	}
	page := h.pageOf(r, d)
	page.ImportForm = form
	page.ImportErrors = errs
	h.render(w, r, http.StatusBadRequest, page)
}

func (h *Handler) addSheet(w http.ResponseWriter, r *http.Request) {
	if revoked(w, r) {
		return
	}
	f, err := view.NewFormReader(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := sheetForm{Name: f.String("name"), URL: f.String("url")}
	in := records.SheetInput{Name: form.Name, URL: form.URL}
	errs := f.Merge(h.validator.Check(in))
	d := h.presenter(r)

	if len(errs) == 0 {
		err = d.AddSheet(r.Context(), in)
		switch {
		case err == nil:
			view.Flash(r, "success", "Sheet linked.")
			h.refresh(w, r, d)
			return
		case errors.Is(err, erpapi.ErrUnauthorized):
			gate.RedirectToLogin(w, r)
			return
		default:
			if msg, ok := erpapi.IsValidation(err); ok {
				errs["general"] = msg
			} else {
				view.Flash(r, "error", view.WriteErrorMessage("link the sheet", err))
			}
		}
	}

	d.Activate(r.Context())
	if revoked(w, r) {
		return
	}
	page := h.pageOf(r, d)
	page.SheetForm = form
	page.SheetErrors = errs
	h.render(w, r, http.StatusBadRequest, page)
}

// refresh reloads the sections a mutation did not touch and renders.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request, d *dashboard.Dashboard) {
	d.Fill(r.Context())
	if revoked(w, r) {
		return
	}
	h.render(w, r, http.StatusOK, h.pageOf(r, d))
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, action, done string, op func(d *dashboard.Dashboard) error) {
	if revoked(w, r) {
		return
	}
	d := h.presenter(r)
	err := op(d)
	switch {
	case errors.Is(err, erpapi.ErrUnauthorized):
		gate.RedirectToLogin(w, r)
		return
	case err != nil:
		view.Flash(r, "error", view.WriteErrorMessage(action, err))
	default:
		view.Flash(r, "success", done)
	}
	h.refresh(w, r, d)
}

func (h *Handler) toggleSheetPin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "pin the sheet", "Sheet pin updated.", func(d *dashboard.Dashboard) error {
		return d.ToggleSheetPin(r.Context(), id)
	})
}

func (h *Handler) toggleTaskPin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "update the task", "Task pin updated.", func(d *dashboard.Dashboard) error {
		return d.ToggleTaskPin(r.Context(), id)
	})
}

func (h *Handler) confirmDeleteSheet(w http.ResponseWriter, r *http.Request) {
	if revoked(w, r) {
		return
	}
	d := h.presenter(r)
	d.Activate(r.Context())
	if revoked(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	v := d.View()
	for _, sheet := range append(v.PinnedSheets, v.OtherSheets...) {
		if sheet.ID != id {
			continue
		}
		h.pages.Render(w, r, http.StatusOK, "pages/confirm_delete.html", "Remove sheet", view.ConfirmDelete{
			Kind:   "sheet",
			Name:   sheet.Name,
			Action: "/dashboard/sheets/" + id + "/delete",
			Back:   "/",
		})
		return
	}
	view.Flash(r, "error", "That sheet is no longer linked.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) deleteSheet(w http.ResponseWriter, r *http.Request) {
	f, err := view.NewFormReader(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	if !f.Confirmed() {
		http.Redirect(w, r, "/dashboard/sheets/"+id+"/delete", http.StatusSeeOther)
		return
	}
	h.mutate(w, r, "remove the sheet", "Sheet removed.", func(d *dashboard.Dashboard) error {
		return d.DeleteSheet(r.Context(), id, true)
	})
}
