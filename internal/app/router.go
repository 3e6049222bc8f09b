package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/erpdesk/erpdesk/internal/auth"
	dashboardhttp "github.com/erpdesk/erpdesk/internal/dashboard/http"
	"github.com/erpdesk/erpdesk/internal/expenses"
	"github.com/erpdesk/erpdesk/internal/gate"
	"github.com/erpdesk/erpdesk/internal/inventory"
	"github.com/erpdesk/erpdesk/internal/observability"
	"github.com/erpdesk/erpdesk/internal/platform/httpx"
	"github.com/erpdesk/erpdesk/internal/reports"
	"github.com/erpdesk/erpdesk/internal/sales"
	"github.com/erpdesk/erpdesk/internal/shared"
	"github.com/erpdesk/erpdesk/internal/sheets"
	"github.com/erpdesk/erpdesk/internal/tasks"
	"github.com/erpdesk/erpdesk/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler      *auth.Handler
	DashboardHandler *dashboardhttp.Handler
	AdminHandler     *dashboardhttp.AdminHandler
	SalesHandler     *sales.Handler
	InventoryHandler *inventory.Handler
	ExpensesHandler  *expenses.Handler
	TasksHandler     *tasks.Handler
	SheetsHandler    *sheets.Handler
	ReportsHandler   *reports.Handler
}

// NewRouter constructs the chi.Router with erpdesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	// Probes and assets skip sessions and CSRF.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:         params.Logger,
			Config:         params.Config,
			SessionManager: params.SessionManager,
			CSRFManager:    params.CSRFManager,
			Metrics:        params.Metrics,
		}) {
			r.Use(mw)
		}
		r.Use(chimw.Logger)

		if params.AuthHandler != nil {
			r.Route("/auth", params.AuthHandler.MountRoutes)
		}
		// The dashboard answers anonymous visitors itself so JSON clients
		// get a problem document instead of a redirect.
		if params.DashboardHandler != nil {
			params.DashboardHandler.MountRoutes(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(gate.RequireAuthenticated)
			mount := func(prefix string, h interface{ MountRoutes(chi.Router) }) {
				r.Route(prefix, h.MountRoutes)
			}
			if params.AdminHandler != nil {
				mount("/admin", params.AdminHandler)
			}
			if params.SalesHandler != nil {
				mount("/sales", params.SalesHandler)
			}
			if params.InventoryHandler != nil {
				mount("/inventory", params.InventoryHandler)
			}
			if params.ExpensesHandler != nil {
				mount("/expenses", params.ExpensesHandler)
			}
			if params.TasksHandler != nil {
				mount("/tasks", params.TasksHandler)
			}
			if params.SheetsHandler != nil {
				mount("/sheets", params.SheetsHandler)
			}
			if params.ReportsHandler != nil {
				mount("/reports", params.ReportsHandler)
			}
		})
	})

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
