package tasks

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/erpdesk/erpdesk/internal/dashboard"
	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/export"
	"github.com/erpdesk/erpdesk/internal/gate"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/report"
	"github.com/erpdesk/erpdesk/internal/view"
)

// Handler manages task endpoints.
type Handler struct {
	logger    *slog.Logger
	client    *erpapi.Client
	runtime   dashboard.Runtime
	pages     view.Responder
	files     export.Sender
	validator *records.Validator
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, client *erpapi.Client, runtime dashboard.Runtime, pages view.Responder, files export.Sender) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		client:    client,
		runtime:   runtime,
		pages:     pages,
		files:     files,
		validator: records.NewValidator(),
	}
}

// MountRoutes registers task routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/{id}/status", h.setStatus)
	r.Post("/{id}/pin", h.togglePin)
	r.Get("/{id}/delete", h.confirmDelete)
	r.Post("/{id}/delete", h.delete)
	r.Group(func(r chi.Router) {
		r.Use(export.Limiter(10, time.Minute))
		r.Get("/export.xlsx", h.exportXLSX)
		r.Get("/export.pdf", h.exportPDF)
	})
}

type taskForm struct {
	Title       string
	Description string
	AssignedTo  string
	DueDate     string
	Priority    string
	Status      string
}

type listPage struct {
	Tasks        []records.TaskRecord
	Degraded     bool
	StatusCounts []report.StatusCount
	Status       string
	Statuses     []records.TaskStatus
	Priorities   []records.TaskPriority
	Form         taskForm
	Errors       map[string]string
}

func (h *Handler) presenter(r *http.Request, status records.TaskStatus) *Presenter {
	return NewPresenter(h.runtime, h.client.With(gate.FromContext(r.Context())), status)
}

func revoked(w http.ResponseWriter, r *http.Request) bool {
	if gate.FromContext(r.Context()).Authenticated() {
		return false
	}
	gate.RedirectToLogin(w, r)
	return true
}

func statusFilter(r *http.Request) records.TaskStatus {
	status, _ := records.ParseTaskStatus(r.URL.Query().Get("status"))
	return status
}

func listOf(p *Presenter) listPage {
	return listPage{
		Tasks:        p.Tasks(),
		Degraded:     p.Degraded(),
		StatusCounts: p.StatusCounts(),
		Statuses:     records.TaskStatuses,
		Priorities:   records.TaskPriorities,
		Form:         taskForm{Priority: string(records.PriorityMedium), Status: string(records.TaskPending)},
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page listPage) {
	h.pages.Render(w, r, status, "pages/tasks.html", "Tasks", page)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	status := statusFilter(r)
	p := h.presenter(r, status)
	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	page := listOf(p)
	page.Status = string(status)
	h.render(w, r, http.StatusOK, page)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	f, err := view.NewFormReader(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := taskForm{
		Title:       f.String("title"),
		Description: f.String("description"),
		AssignedTo:  f.String("assignedTo"),
		DueDate:     f.String("dueDate"),
		Priority:    f.String("priority"),
		Status:      f.String("status"),
	}
	in := records.TaskInput{
		Title:       form.Title,
		Description: form.Description,
		AssignedTo:  form.AssignedTo,
		DueDate:     f.Date("dueDate", "Due date"),
		Priority:    records.TaskPriority(form.Priority),
		Status:      records.TaskStatus(form.Status),
	}
	if p, ok := records.ParseTaskPriority(form.Priority); ok {
		in.Priority = p
	}
	if s, ok := records.ParseTaskStatus(form.Status); ok {
		in.Status = s
	}
	errs := f.Merge(h.validator.Check(in))
	p := h.presenter(r, "")

	if len(errs) == 0 {
		err = p.Create(r.Context(), in)
		if err == nil {
			view.Flash(r, "success", "Task created.")
			h.render(w, r, http.StatusOK, listOf(p))
			return
		}
		if errors.Is(err, erpapi.ErrUnauthorized) {
			gate.RedirectToLogin(w, r)
			return
		}
		if msg, ok := erpapi.IsValidation(err); ok {
			errs["general"] = msg
		} else {
			view.Flash(r, "error", view.WriteErrorMessage("save the task", err))
		}
	}

	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	page := listOf(p)
	page.Form = form
	page.Errors = errs
	h.render(w, r, http.StatusBadRequest, page)
}

// mutate runs a status change or pin toggle and renders the refreshed list.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, action, done string, op func(p *Presenter) error) {
	p := h.presenter(r, "")
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
	h.render(w, r, http.StatusOK, listOf(p))
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	status, ok := records.ParseTaskStatus(r.PostFormValue("status"))
	if !ok {
		http.Error(w, "unknown task status", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "change the task status", "Task moved to "+string(status)+".", func(p *Presenter) error {
		return p.SetStatus(r.Context(), id, status)
	})
}

func (h *Handler) togglePin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "pin the task", "Task pin updated.", func(p *Presenter) error {
		return p.TogglePin(r.Context(), id)
	})
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	p := h.presenter(r, "")
	p.Load(r.Context())
	if revoked(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	task, ok := p.Find(id)
	if !ok {
		if p.Degraded() {
			view.Flash(r, "error", "Tasks could not be loaded. Please try again.")
		} else {
			view.Flash(r, "error", "That task no longer exists.")
		}
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
		return
	}
	h.pages.Render(w, r, http.StatusOK, "pages/confirm_delete.html", "Delete task", view.ConfirmDelete{
		Kind:   "task",
		Name:   task.Title,
		Action: "/tasks/" + id + "/delete",
		Back:   "/tasks",
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
		http.Redirect(w, r, "/tasks/"+id+"/delete", http.StatusSeeOther)
		return
	}
	h.mutate(w, r, "delete the task", "Task deleted.", func(p *Presenter) error {
		return p.Delete(r.Context(), id, true)
	})
}

func (h *Handler) loadForExport(w http.ResponseWriter, r *http.Request) (*Presenter, bool) {
	p := h.presenter(r, statusFilter(r))
	p.Load(r.Context())
	if revoked(w, r) {
		return nil, false
	}
	if p.Degraded() {
		view.Flash(r, "error", "Tasks could not be loaded, export cancelled.")
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
		return nil, false
	}
	return p, true
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadForExport(w, r)
	if !ok {
		return
	}
	h.files.XLSX(w, r, "tasks_report", export.TaskTable(p.Tasks()))
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadForExport(w, r)
	if !ok {
		return
	}
	h.files.TablePDF(w, r, "tasks_report", export.TaskTable(p.Tasks()))
}
