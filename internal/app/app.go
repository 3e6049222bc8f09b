package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erpdesk/erpdesk/internal/auth"
	"github.com/erpdesk/erpdesk/internal/dashboard"
	dashboardhttp "github.com/erpdesk/erpdesk/internal/dashboard/http"
	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/expenses"
	"github.com/erpdesk/erpdesk/internal/export"
	"github.com/erpdesk/erpdesk/internal/inventory"
	"github.com/erpdesk/erpdesk/internal/observability"
	"github.com/erpdesk/erpdesk/internal/reports"
	"github.com/erpdesk/erpdesk/internal/sales"
	"github.com/erpdesk/erpdesk/internal/shared"
	"github.com/erpdesk/erpdesk/internal/sheets"
	"github.com/erpdesk/erpdesk/internal/sheets/google"
	"github.com/erpdesk/erpdesk/internal/tasks"
	"github.com/erpdesk/erpdesk/internal/view"
)

// SessionCookieName names the browser session cookie.
const SessionCookieName = "erpdesk_session"

// Dependencies are the collaborators built outside of Build.
type Dependencies struct {
	Redis *redis.Client
	// Titles is optional; without it linked sheets are never named
	// automatically.
	Titles google.Resolver
	// Renderer overrides the renderer chosen from configuration.
	Renderer export.PDFRenderer
	Metrics  *observability.Metrics
}

// Build wires every handler and returns the application router.
func Build(cfg *Config, logger *slog.Logger, deps Dependencies) (http.Handler, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: config required")
	}
	if deps.Redis == nil {
		return nil, fmt.Errorf("app: redis client required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics()
	}

	sessionManager := shared.NewSessionManager(deps.Redis, SessionCookieName, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	client, err := erpapi.New(cfg.ERPAPIURL, erpapi.WithTimeout(cfg.ERPAPITimeout), erpapi.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("record store client: %w", err)
	}

	runtime := dashboard.Runtime{
		Logger:    logger,
		Timeout:   cfg.ViewTimeout,
		OnFailure: metrics.SectionFailed,
	}
	pages := view.Responder{Logger: logger, Templates: templates, CSRF: csrfManager}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = NewPDFRenderer(cfg, logger)
	}
	files := export.Sender{Renderer: renderer, Logger: logger}

	return NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Metrics:        metrics,

		AuthHandler:      auth.NewHandler(logger, auth.NewService(client), pages, sessionManager),
		DashboardHandler: dashboardhttp.NewHandler(logger, client, runtime, pages),
		AdminHandler:     dashboardhttp.NewAdminHandler(logger, client, runtime, pages),
		SalesHandler:     sales.NewHandler(logger, client, runtime, pages, files),
		InventoryHandler: inventory.NewHandler(logger, client, runtime, pages, files),
		ExpensesHandler:  expenses.NewHandler(logger, client, runtime, pages, files),
		TasksHandler:     tasks.NewHandler(logger, client, runtime, pages, files),
		SheetsHandler:    sheets.NewHandler(logger, client, runtime, pages, deps.Titles),
		ReportsHandler:   reports.NewHandler(logger, client, runtime, pages, files, cfg.TimeLocation()),
	}), nil
}

// NewPDFRenderer picks the renderer named by PDF_RENDERER. Gotenberg output
// falls back to the native renderer when the service is unreachable.
func NewPDFRenderer(cfg *Config, logger *slog.Logger) export.PDFRenderer {
	if cfg == nil {
		return export.NativeRenderer{}
	}
	native := export.NativeRenderer{Currency: export.Currency{Symbol: cfg.CurrencySymbol}}
	if cfg.PDFRenderer != PDFRendererGotenberg || InTestMode() {
		return native
	}
	return export.FallbackRenderer{
		Primary: export.GotenbergRenderer{
			Endpoint: cfg.GotenbergURL,
			Client:   &http.Client{Timeout: 30 * time.Second},
		},
		Secondary: native,
		Logger:    logger,
	}
}
