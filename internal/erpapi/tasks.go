package erpapi

import (
	"context"

	"github.com/erpdesk/erpdesk/internal/records"
)

// ListTasks returns every task.
func (c *Conn) ListTasks(ctx context.Context) ([]records.TaskRecord, error) {
	var out []records.TaskRecord
	if err := c.get(ctx, "/tasks", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTasksByStatus returns tasks in one status.
func (c *Conn) ListTasksByStatus(ctx context.Context, status records.TaskStatus) ([]records.TaskRecord, error) {
	var out []records.TaskRecord
	if err := c.get(ctx, "/tasks/status/"+escape(string(status)), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPinnedTasks returns the tasks pinned to the dashboard.
func (c *Conn) ListPinnedTasks(ctx context.Context) ([]records.TaskRecord, error) {
	var out []records.TaskRecord
	if err := c.get(ctx, "/tasks/pinned/all", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTask adds a task.
func (c *Conn) CreateTask(ctx context.Context, in records.TaskInput) (records.TaskRecord, error) {
	var out records.TaskRecord
	err := c.post(ctx, "/tasks", in, &out)
	return out, err
}

// UpdateTaskStatus moves a task to status.
func (c *Conn) UpdateTaskStatus(ctx context.Context, id string, status records.TaskStatus) (records.TaskRecord, error) {
	var out records.TaskRecord
	err := c.put(ctx, "/tasks/"+escape(id), records.TaskStatusInput{Status: status}, &out)
	return out, err
}

// ToggleTaskPin flips the pinned flag of a task.
func (c *Conn) ToggleTaskPin(ctx context.Context, id string) (records.TaskRecord, error) {
	var out records.TaskRecord
	err := c.put(ctx, "/tasks/"+escape(id)+"/pin", nil, &out)
	return out, err
}

// DeleteTask removes a task.
func (c *Conn) DeleteTask(ctx context.Context, id string) error {
	return c.delete(ctx, "/tasks/"+escape(id))
}
