package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/erpdesk/erpdesk/internal/shared"
)

// Content types of the download formats.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)

// Sender streams export files as attachments.
type Sender struct {
	Renderer PDFRenderer
	Logger   *slog.Logger
	Now      func() time.Time
}

func (s Sender) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s Sender) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s Sender) renderer() PDFRenderer {
	if s.Renderer == nil {
		return NativeRenderer{}
	}
	return s.Renderer
}

// XLSX writes tables as one workbook named base_<date>.xlsx.
func (s Sender) XLSX(w http.ResponseWriter, r *http.Request, base string, tables ...Table) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, tables...); err != nil {
		s.fail(w, "write xlsx", err)
		return
	}
	s.attach(w, Filename(base, s.now(), "xlsx"), ContentTypeXLSX, buf.Bytes())
}

// TablePDF lays out t and writes it as base_<date>.pdf.
func (s Sender) TablePDF(w http.ResponseWriter, r *http.Request, base string, t Table) {
	at := s.now()
	s.pdf(w, r, base, func(cur Currency) Document { return TableDocument(t, at, cur) })
}

// SummaryPDF writes the summary document as base_<date>.pdf.
func (s Sender) SummaryPDF(w http.ResponseWriter, r *http.Request, base string, t Table) {
	at := s.now()
	s.pdf(w, r, base, func(cur Currency) Document { return SummaryDocument(t, at, cur) })
}

// CSV writes t as base_<date>.csv.
func (s Sender) CSV(w http.ResponseWriter, r *http.Request, base string, t Table) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		s.fail(w, "write csv", err)
		return
	}
	s.attach(w, Filename(base, s.now(), "csv"), ContentTypeCSV, buf.Bytes())
}

func (s Sender) pdf(w http.ResponseWriter, r *http.Request, base string, layout LayoutFunc) {
	data, err := s.renderer().Render(r.Context(), layout)
	if err != nil {
		s.fail(w, "render pdf", err)
		return
	}
	s.attach(w, Filename(base, s.now(), "pdf"), ContentTypePDF, data)
}

func (s Sender) attach(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	if _, err := w.Write(data); err != nil {
		s.logger().Warn("stream export", slog.String("file", filename), slog.Any("error", err))
	}
}

func (s Sender) fail(w http.ResponseWriter, step string, err error) {
	s.logger().Error("export failed", slog.String("step", step), slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Limiter caps downloads per session, falling back to the client IP.
func Limiter(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)
}

func rateLimitKey(r *http.Request) (string, error) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && sess.ID != "" {
		return "session:" + sess.ID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
