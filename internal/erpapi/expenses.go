package erpapi

import (
	"context"

	"github.com/erpdesk/erpdesk/internal/records"
)

// ListExpenses returns every expense.
func (c *Conn) ListExpenses(ctx context.Context) ([]records.ExpenseRecord, error) {
	var out []records.ExpenseRecord
	if err := c.get(ctx, "/expenses", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListExpensesByCategory returns expenses of one category.
func (c *Conn) ListExpensesByCategory(ctx context.Context, category records.ExpenseCategory) ([]records.ExpenseRecord, error) {
	var out []records.ExpenseRecord
	if err := c.get(ctx, "/expenses/category/"+escape(string(category)), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateExpense records an expense.
func (c *Conn) CreateExpense(ctx context.Context, in records.ExpenseInput) (records.ExpenseRecord, error) {
	var out records.ExpenseRecord
	err := c.post(ctx, "/expenses", in, &out)
	return out, err
}

// UpdateExpense replaces an expense's fields.
func (c *Conn) UpdateExpense(ctx context.Context, id string, in records.ExpenseInput) (records.ExpenseRecord, error) {
	var out records.ExpenseRecord
	err := c.put(ctx, "/expenses/"+escape(id), in, &out)
	return out, err
}

// DeleteExpense removes an expense.
func (c *Conn) DeleteExpense(ctx context.Context, id string) error {
	return c.delete(ctx, "/expenses/"+escape(id))
}
