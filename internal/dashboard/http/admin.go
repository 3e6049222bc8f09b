package dashboardhttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erpdesk/erpdesk/internal/dashboard"
	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/gate"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/view"
)

// SectionProfile names the profile read in logs and metrics.
const SectionProfile = "profile"

// AdminHandler shows the signed-in profile and its stored import link.
type AdminHandler struct {
	logger    *slog.Logger
	client    *erpapi.Client
	runtime   dashboard.Runtime
	pages     view.Responder
	validator *records.Validator
}

// NewAdminHandler builds AdminHandler instance.
func NewAdminHandler(logger *slog.Logger, client *erpapi.Client, runtime dashboard.Runtime, pages view.Responder) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		logger:    logger,
		client:    client,
		runtime:   runtime,
		pages:     pages,
		validator: records.NewValidator(),
	}
}

// MountRoutes registers admin routes.
func (h *AdminHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Post("/link", h.updateLink)
}

type adminPage struct {
	Profile  records.Profile
	Degraded bool
	DataLink string
	Errors   map[string]string
}

func (h *AdminHandler) profile(r *http.Request) *dashboard.Section[records.Profile] {
	conn := h.client.With(gate.FromContext(r.Context()))
	section := dashboard.NewSection(SectionProfile, func(ctx context.Context) (records.Profile, error) {
		return conn.Profile(ctx)
	})
	h.runtime.Activate(r.Context(), section.Dependency())
	return section
}

func (h *AdminHandler) render(w http.ResponseWriter, r *http.Request, status int, page adminPage) {
	h.pages.Render(w, r, status, "pages/admin.html", "Admin", page)
}

func (h *AdminHandler) show(w http.ResponseWriter, r *http.Request) {
	section := h.profile(r)
	if revoked(w, r) {
		return
	}
	p := section.Value()
	h.render(w, r, http.StatusOK, adminPage{Profile: p, Degraded: section.Degraded(), DataLink: p.DataLink})
}

func (h *AdminHandler) updateLink(w http.ResponseWriter, r *http.Request) {
	f, err := view.NewFormReader(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	link := f.String("dataLink")
	errs := f.Merge(h.validator.Check(records.DataLinkInput{DataLink: link}))
	status := http.StatusBadRequest
	if len(errs) == 0 {
		err = h.client.With(gate.FromContext(r.Context())).UpdateDataLink(r.Context(), link)
		switch {
		case err == nil:
			view.Flash(r, "success", "Data link updated.")
			status = http.StatusOK
		case errors.Is(err, erpapi.ErrUnauthorized):
			gate.RedirectToLogin(w, r)
			return
		default:
			view.Flash(r, "error", view.WriteErrorMessage("update the data link", err))
		}
	}

	section := h.profile(r)
	if revoked(w, r) {
		return
	}
	page := adminPage{Profile: section.Value(), Degraded: section.Degraded(), DataLink: link, Errors: errs}
	h.render(w, r, status, page)
}
