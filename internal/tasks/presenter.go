// Package tasks serves the task board: status filter, status changes and
// dashboard pins.
package tasks

import (
	"context"

	"github.com/erpdesk/erpdesk/internal/dashboard"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/report"
)

// SectionTasks names the task list in logs and metrics.
const SectionTasks = "tasks"

// Source is the part of the record store the task pages use.
type Source interface {
	ListTasks(ctx context.Context) ([]records.TaskRecord, error)
	ListTasksByStatus(ctx context.Context, status records.TaskStatus) ([]records.TaskRecord, error)
	CreateTask(ctx context.Context, in records.TaskInput) (records.TaskRecord, error)
	UpdateTaskStatus(ctx context.Context, id string, status records.TaskStatus) (records.TaskRecord, error)
	ToggleTaskPin(ctx context.Context, id string) (records.TaskRecord, error)
	DeleteTask(ctx context.Context, id string) error
}

// Presenter holds the task list of one request.
type Presenter struct {
	src  Source
	list *dashboard.Collection[records.TaskRecord]
}

// NewPresenter binds the list to src. A non-empty status filters it.
func NewPresenter(rt dashboard.Runtime, src Source, status records.TaskStatus) *Presenter {
	load := src.ListTasks
	if status != "" {
		load = func(ctx context.Context) ([]records.TaskRecord, error) {
			return src.ListTasksByStatus(ctx, status)
		}
	}
	return &Presenter{src: src, list: dashboard.NewCollection(rt, SectionTasks, load)}
}

// Load reads the list.
func (p *Presenter) Load(ctx context.Context) map[string]error {
	return p.list.Load(ctx)
}

// Tasks returns the snapshot.
func (p *Presenter) Tasks() []records.TaskRecord {
	return p.list.Items()
}

// Degraded reports a failed read.
func (p *Presenter) Degraded() bool {
	return p.list.Section().Degraded()
}

// StatusCounts counts the snapshot per status.
func (p *Presenter) StatusCounts() []report.StatusCount {
	return report.TaskStatusCounts(p.Tasks())
}

// Find looks a task up in the snapshot.
func (p *Presenter) Find(id string) (records.TaskRecord, bool) {
	for _, task := range p.Tasks() {
		if task.ID == id {
			return task, true
		}
	}
	return records.TaskRecord{}, false
}

// Create adds a task.
func (p *Presenter) Create(ctx context.Context, in records.TaskInput) error {
	return p.list.Apply(ctx, func(ctx context.Context) error {
		_, err := p.src.CreateTask(ctx, in)
		return err
	})
}

// SetStatus moves a task to status.
func (p *Presenter) SetStatus(ctx context.Context, id string, status records.TaskStatus) error {
	return p.list.Apply(ctx, func(ctx context.Context) error {
		_, err := p.src.UpdateTaskStatus(ctx, id, status)
		return err
	})
}

// TogglePin pins or unpins a task on the dashboard.
func (p *Presenter) TogglePin(ctx context.Context, id string) error {
	return p.list.Apply(ctx, func(ctx context.Context) error {
		_, err := p.src.ToggleTaskPin(ctx, id)
		return err
	})
}

// Delete removes a task once confirmed.
func (p *Presenter) Delete(ctx context.Context, id string, confirmed bool) error {
	return p.list.Delete(ctx, confirmed, func(ctx context.Context) error {
		return p.src.DeleteTask(ctx, id)
	})
}
