package view

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/erpdesk/erpdesk/internal/gate"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/shared"
)

// Responder renders full pages with the layout data every page needs.
type Responder struct {
	Logger    *slog.Logger
	Templates *Engine
	CSRF      *shared.CSRFManager
}

func (p Responder) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// Render writes the page template name with status.
func (p Responder) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := p.CSRF.EnsureToken(r.Context(), sess)
	td := TemplateData{
		Title:         title,
		CSRFToken:     csrfToken,
		CurrentPath:   r.URL.Path,
		Authenticated: gate.FromContext(r.Context()).Authenticated(),
		Data:          data,
	}
	if sess != nil {
		td.Flash = sess.PopFlash()
		td.UserName = sess.Get(shared.ProfileSessionKey)
		if raw := sess.Get(shared.LastUpdatedSessionKey); raw != "" {
			td.LastUpdated, _ = time.Parse(time.RFC3339, raw)
		}
		td.PinnedSheets = PinnedSheets(sess)
	}

	// Buffer so a template error still yields a clean 500.
	var buf bytes.Buffer
	if err := p.Templates.templates.ExecuteTemplate(&buf, name, td); err != nil {
		p.logger().Error("render page", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// Flash queues a message for the next rendered page.
func Flash(r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
}

// RecordFreshness stores the dashboard's lastUpdated time in the session.
func RecordFreshness(r *http.Request, at time.Time) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && !at.IsZero() {
		sess.Set(shared.LastUpdatedSessionKey, at.UTC().Format(time.RFC3339))
	}
}

// RememberPinnedSheets caches the pinned sheets shown in the navigation bar.
func RememberPinnedSheets(sess *shared.Session, sheets []records.SheetLink) {
	if sess == nil {
		return
	}
	pinned := make([]records.SheetLink, 0, len(sheets))
	for _, s := range sheets {
		if s.IsPinned {
			pinned = append(pinned, s)
		}
	}
	data, err := json.Marshal(pinned)
	if err != nil {
		return
	}
	sess.Set(shared.PinnedSheetsSessionKey, string(data))
}

// PinnedSheets reads the cached navigation sheets.
func PinnedSheets(sess *shared.Session) []records.SheetLink {
	if sess == nil {
		return nil
	}
	raw := sess.Get(shared.PinnedSheetsSessionKey)
	if raw == "" {
		return nil
	}
	var sheets []records.SheetLink
	if err := json.Unmarshal([]byte(raw), &sheets); err != nil {
		return nil
	}
	return sheets
}
