package reports

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/erpdesk/erpdesk/internal/charts"
	"github.com/erpdesk/erpdesk/internal/dashboard"
	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/export"
	"github.com/erpdesk/erpdesk/internal/gate"
	"github.com/erpdesk/erpdesk/internal/view"
)

// Handler serves the reports page and its downloads.
type Handler struct {
	logger   *slog.Logger
	client   *erpapi.Client
	runtime  dashboard.Runtime
	pages    view.Responder
	files    export.Sender
	location *time.Location
}

// NewHandler builds Handler instance. Daily sales are bucketed in loc; nil
// means UTC.
func NewHandler(logger *slog.Logger, client *erpapi.Client, runtime dashboard.Runtime, pages view.Responder, files export.Sender, loc *time.Location) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		logger:   logger,
		client:   client,
		runtime:  runtime,
		pages:    pages,
		files:    files,
		location: loc,
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Group(func(r chi.Router) {
		r.Use(export.Limiter(10, time.Minute))
		r.Get("/export.xlsx", h.exportXLSX)
		r.Get("/export.pdf", h.exportPDF)
		r.Get("/export.csv", h.exportCSV)
		r.Get("/workbook.xlsx", h.exportWorkbook)
	})
}

type pageData struct {
	View          View
	Degraded      bool
	NetProfit     decimal.Decimal
	OverviewChart template.HTML
	DailyChart    template.HTML
	CategoryChart template.HTML
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

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	p := h.presenter(r)
	p.Activate(r.Context())
	if revoked(w, r) {
		return
	}
	v := p.View(h.location)
	h.pages.Render(w, r, http.StatusOK, "pages/reports.html", "Reports", pageData{
		View:          v,
		Degraded:      p.Degraded(),
		NetProfit:     v.Summary.NetProfit(),
		OverviewChart: overviewChart(v),
		DailyChart:    dailyChart(v),
		CategoryChart: categoryChart(v),
	})
}

func overviewChart(v View) template.HTML {
	s := v.Summary
	svg, err := charts.Bars(charts.DefaultWidth, charts.DefaultHeight,
		[]string{"Sales", "Expenses", "Profit"},
		[]charts.Series{{Label: "Amount", Values: charts.Floats([]decimal.Decimal{s.TotalSales, s.TotalExpenses, s.TotalProfit})}},
		charts.Opts{Title: "Financial overview", Description: "Sales, expenses and profit totals"})
	if err != nil {
		return charts.Placeholder(charts.DefaultWidth, charts.DefaultHeight, "Chart unavailable")
	}
	return svg
}

func dailyChart(v View) template.HTML {
	if v.SalesDegraded {
		return charts.Placeholder(charts.DefaultWidth, charts.DefaultHeight, "Sales unavailable")
	}
	if len(v.Daily) == 0 {
		return charts.Placeholder(charts.DefaultWidth, charts.DefaultHeight, "No sales yet")
	}
	labels := make([]string, len(v.Daily))
	amounts := make([]decimal.Decimal, len(v.Daily))
	for i, d := range v.Daily {
		labels[i] = d.Day.Format("02 Jan")
		amounts[i] = d.Amount
	}
	svg, err := charts.Line(charts.DefaultWidth, charts.DefaultHeight, labels, charts.Floats(amounts),
		charts.Opts{Title: "Daily sales", Description: "Sales total per day", ShowDots: true})
	if err != nil {
		return charts.Placeholder(charts.DefaultWidth, charts.DefaultHeight, "Chart unavailable")
	}
	return svg
}

func categoryChart(v View) template.HTML {
	if v.ExpensesDegraded {
		return charts.Placeholder(charts.DefaultWidth, charts.DefaultHeight, "Expenses unavailable")
	}
	labels := make([]string, len(v.ByCategory))
	amounts := make([]decimal.Decimal, len(v.ByCategory))
	for i, c := range v.ByCategory {
		labels[i] = string(c.Category)
		amounts[i] = c.Amount
	}
	svg, err := charts.Bars(charts.DefaultWidth, charts.DefaultHeight, labels,
		[]charts.Series{{Label: "Expenses", Color: "#f97316", Values: charts.Floats(amounts)}},
		charts.Opts{Title: "Expenses by category"})
	if err != nil {
		return charts.Placeholder(charts.DefaultWidth, charts.DefaultHeight, "Chart unavailable")
	}
	return svg
}

// loadForExport refuses to export a report built from a failed read.
func (h *Handler) loadForExport(w http.ResponseWriter, r *http.Request) (*Presenter, bool) {
	p := h.presenter(r)
	p.Activate(r.Context())
	if revoked(w, r) {
		return nil, false
	}
	if p.Degraded() {
		view.Flash(r, "error", "Some report data could not be loaded, export cancelled.")
		http.Redirect(w, r, "/reports", http.StatusSeeOther)
		return nil, false
	}
	return p, true
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadForExport(w, r)
	if !ok {
		return
	}
	h.files.XLSX(w, r, "erp_report", export.SummaryTable(p.Summary()))
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadForExport(w, r)
	if !ok {
		return
	}
	h.files.SummaryPDF(w, r, "erp_report", export.SummaryTable(p.Summary()))
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadForExport(w, r)
	if !ok {
		return
	}
	h.files.CSV(w, r, "erp_report", export.SummaryTable(p.Summary()))
}

// exportWorkbook writes the summary plus one sheet per list.
func (h *Handler) exportWorkbook(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadForExport(w, r)
	if !ok {
		return
	}
	h.files.XLSX(w, r, "erp_workbook",
		export.SummaryTable(p.Summary()),
		export.SalesTable(p.Sales()),
		export.ExpenseTable(p.Expenses()),
		export.InventoryTable(p.Inventory()),
	)
}

