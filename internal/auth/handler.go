package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/gate"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/shared"
	"github.com/erpdesk/erpdesk/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	pages          view.Responder
	sessionManager *shared.SessionManager
	validator      *records.Validator
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, pages view.Responder, sessions *shared.SessionManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		pages:          pages,
		sessionManager: sessions,
		validator:      records.NewValidator(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Get("/register", h.showRegister)
	r.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email string
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

type registerForm struct {
	Username string
	Email    string
}

type registerPageData struct {
	Form   registerForm
	Errors map[string]string
}

func signedIn(r *http.Request) bool {
	return gate.FromContext(r.Context()).Authenticated()
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if signedIn(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.pages.Render(w, r, http.StatusOK, "pages/login.html", "Sign in", loginPageData{})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	f, err := view.NewFormReader(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	creds := records.Credentials{
		Email:    f.String("email"),
		Password: r.PostFormValue("password"),
	}
	errs := f.Merge(h.validator.Check(creds))
	if len(errs) == 0 {
		acct, err := h.service.Authenticate(r.Context(), creds)
		if err == nil {
			h.signIn(w, r, acct, "Welcome back, "+acct.Name+".")
			return
		}
		errs["general"] = h.failure(err, "Invalid email or password")
	}
	h.pages.Render(w, r, http.StatusBadRequest, "pages/login.html", "Sign in", loginPageData{
		Form:   loginForm{Email: creds.Email},
		Errors: errs,
	})
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	if signedIn(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.pages.Render(w, r, http.StatusOK, "pages/register.html", "Create account", registerPageData{})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	f, err := view.NewFormReader(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	reg := records.Registration{
		Username: f.String("username"),
		Email:    f.String("email"),
		Password: r.PostFormValue("password"),
	}
	errs := f.Merge(h.validator.Check(reg))
	if reg.Password != r.PostFormValue("confirmPassword") {
		if _, exists := errs["confirmPassword"]; !exists {
			errs["confirmPassword"] = "Passwords do not match"
		}
	}
	if len(errs) == 0 {
		acct, err := h.service.Register(r.Context(), reg)
		if err == nil {
			h.signIn(w, r, acct, "Account created. Welcome, "+acct.Name+".")
			return
		}
		errs["general"] = h.failure(err, "Registration failed")
	}
	h.pages.Render(w, r, http.StatusBadRequest, "pages/register.html", "Create account", registerPageData{
		Form:   registerForm{Username: reg.Username, Email: reg.Email},
		Errors: errs,
	})
}

func (h *Handler) failure(err error, fallback string) string {
	if errors.Is(err, erpapi.ErrInvalidCredentials) {
		return RejectionMessage(err, fallback)
	}
	h.logger.Error("auth request failed", slog.Any("error", err))
	return "The server could not be reached. Please try again."
}

// signIn rotates the session id before storing the credential.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, acct Account, welcome string) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := h.sessionManager.Renew(r.Context(), sess); err != nil {
		h.logger.Warn("renew session", slog.Any("error", err))
	}
	if err := gate.FromContext(r.Context()).Login(acct.Token); err != nil {
		h.logger.Error("store credential", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess.Set(shared.ProfileSessionKey, acct.Name)
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: welcome})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := gate.FromContext(r.Context()).Logout(); err != nil {
		h.logger.Warn("clear credential", slog.Any("error", err))
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, gate.LoginPath, http.StatusSeeOther)
}
