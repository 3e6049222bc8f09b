package tasks_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/tasks"
	"github.com/erpdesk/erpdesk/internal/webtest"
)

func newHarness(t *testing.T) *webtest.Harness {
	t.Helper()
	h := webtest.New(t)
	handler := tasks.NewHandler(h.Logger, h.Client, h.Runtime, h.Pages, h.Files)
	h.Mount("/tasks", handler.MountRoutes)
	h.Login()
	return h
}

func seed(h *webtest.Harness) {
	h.Store.SeedTasks(
		records.TaskRecord{ID: "t1", Title: "Call supplier", Priority: records.PriorityHigh, Status: records.TaskPending},
		records.TaskRecord{ID: "t2", Title: "File returns", Priority: records.PriorityLow, Status: records.TaskCompleted},
	)
}

func TestListFiltersByStatus(t *testing.T) {
	h := newHarness(t)
	seed(h)

	res := h.Get("/tasks/?status=completed")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "File returns")
	assert.NotContains(t, res.Body.String(), "Call supplier")
	assert.Equal(t, 1, h.Store.Hits(http.MethodGet, "/tasks/status/Completed"))
}

func TestCreateWithDueDate(t *testing.T) {
	h := newHarness(t)

	res := h.Post("/tasks/", url.Values{
		"title":    {"Stock take"},
		"dueDate":  {"2024-03-15"},
		"priority": {"high"},
		"status":   {"in-progress"},
	})
	require.Equal(t, http.StatusOK, res.Code)
	stored := h.Store.Tasks()
	require.Len(t, stored, 1)
	assert.Equal(t, records.TaskInProgress, stored[0].Status)
	assert.Equal(t, records.PriorityHigh, stored[0].Priority)
	assert.Equal(t, "2024-03-15", stored[0].DueDate.DateString())
}

func TestCreateRequiresTitle(t *testing.T) {
	h := newHarness(t)

	res := h.Post("/tasks/", url.Values{"priority": {"Low"}, "status": {"Pending"}, "dueDate": {"soon"}})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Title is required")
	assert.Contains(t, res.Body.String(), "Due date must be a date")
}

func TestStatusChangeAndPin(t *testing.T) {
	h := newHarness(t)
	seed(h)

	res := h.Post("/tasks/t1/status", url.Values{"status": {"In Progress"}})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, records.TaskInProgress, h.Store.Tasks()[0].Status)

	res = h.Post("/tasks/t1/pin", url.Values{})
	require.Equal(t, http.StatusOK, res.Code)
	assert.True(t, h.Store.Tasks()[0].IsPinned)

	res = h.Post("/tasks/t1/status", url.Values{"status": {"Archived"}})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestDeleteMissingTaskCountsAsDone(t *testing.T) {
	h := newHarness(t)
	seed(h)

	res := h.Post("/tasks/gone/delete", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Task deleted.")
	assert.Len(t, h.Store.Tasks(), 2)
}

func TestExportXLSX(t *testing.T) {
	h := newHarness(t)
	seed(h)

	res := h.Get("/tasks/export.xlsx")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Header().Get("Content-Disposition"), "tasks_report_2024-03-01.xlsx")
}
