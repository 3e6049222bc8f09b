package gate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/erpdesk/erpdesk/internal/shared"
)

// LoginPath is where anonymous users are sent.
const LoginPath = "/auth/login"

type contextKey struct{}

// WithGate stores g in ctx.
func WithGate(ctx context.Context, g *Gate) context.Context {
	return context.WithValue(ctx, contextKey{}, g)
}

// FromContext returns the request's gate. Requests that did not pass through
// Middleware get an anonymous gate.
func FromContext(ctx context.Context) *Gate {
	if g, ok := ctx.Value(contextKey{}).(*Gate); ok && g != nil {
		return g
	}
	g, _ := New(NewMemoryStore())
	return g
}

// Middleware builds a Gate from the web session for each request. Observers
// are attached to every gate it creates.
func Middleware(logger *slog.Logger, observers ...Observer) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			g, err := New(NewSessionStore(sess))
			if err != nil {
				logger.Error("restore session gate", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			for _, o := range observers {
				g.Subscribe(o)
			}
			if sess != nil {
				g.Subscribe(func(t Transition) {
					if t.To == Anonymous && t.Reason != ReasonLogout {
						sess.AddFlash(shared.FlashMessage{Kind: "warning", Message: "Your session has expired. Please sign in again."})
					}
				})
			}
			next.ServeHTTP(w, r.WithContext(WithGate(r.Context(), g)))
		})
	}
}

// RequireAuthenticated redirects anonymous users to the login page.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromContext(r.Context()).Authenticated() {
			RedirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectToLogin sends the client to the login page. JSON clients get 401.
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Accept") == "application/json" {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}
