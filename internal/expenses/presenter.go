// Package expenses serves the expense ledger with category filter and status
// summary.
package expenses

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/erpdesk/erpdesk/internal/dashboard"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/report"
)

// SectionExpenses names the expense list in logs and metrics.
const SectionExpenses = "expenses"

// Source is the part of the record store the expense pages use.
type Source interface {
	ListExpenses(ctx context.Context) ([]records.ExpenseRecord, error)
	ListExpensesByCategory(ctx context.Context, category records.ExpenseCategory) ([]records.ExpenseRecord, error)
	CreateExpense(ctx context.Context, in records.ExpenseInput) (records.ExpenseRecord, error)
	UpdateExpense(ctx context.Context, id string, in records.ExpenseInput) (records.ExpenseRecord, error)
	DeleteExpense(ctx context.Context, id string) error
}

// Presenter holds the expense list of one request.
type Presenter struct {
	src  Source
	list *dashboard.Collection[records.ExpenseRecord]
}

// NewPresenter binds the list to src. A non-empty category filters it.
func NewPresenter(rt dashboard.Runtime, src Source, category records.ExpenseCategory) *Presenter {
	load := src.ListExpenses
	if category != "" {
		load = func(ctx context.Context) ([]records.ExpenseRecord, error) {
			return src.ListExpensesByCategory(ctx, category)
		}
	}
	return &Presenter{src: src, list: dashboard.NewCollection(rt, SectionExpenses, load)}
}

// Load reads the list.
func (p *Presenter) Load(ctx context.Context) map[string]error {
	return p.list.Load(ctx)
}

// Expenses returns the snapshot.
func (p *Presenter) Expenses() []records.ExpenseRecord {
	return p.list.Items()
}

// Degraded reports a failed read.
func (p *Presenter) Degraded() bool {
	return p.list.Section().Degraded()
}

// Total sums the snapshot.
func (p *Presenter) Total() decimal.Decimal {
	return report.ExpenseTotal(p.Expenses())
}

// StatusCounts counts the snapshot per status.
func (p *Presenter) StatusCounts() []report.StatusCount {
	return report.ExpenseStatusCounts(p.Expenses())
}

// Find looks an expense up in the snapshot.
func (p *Presenter) Find(id string) (records.ExpenseRecord, bool) {
	for _, e := range p.Expenses() {
		if e.ID == id {
			return e, true
		}
	}
	return records.ExpenseRecord{}, false
}

// Create records an expense.
func (p *Presenter) Create(ctx context.Context, in records.ExpenseInput) error {
	return p.list.Apply(ctx, func(ctx context.Context) error {
		_, err := p.src.CreateExpense(ctx, in)
		return err
	})
}

// Update replaces an expense.
func (p *Presenter) Update(ctx context.Context, id string, in records.ExpenseInput) error {
	return p.list.Apply(ctx, func(ctx context.Context) error {
		_, err := p.src.UpdateExpense(ctx, id, in)
		return err
	})
}

// Delete removes an expense once confirmed.
func (p *Presenter) Delete(ctx context.Context, id string, confirmed bool) error {
	return p.list.Delete(ctx, confirmed, func(ctx context.Context) error {
		return p.src.DeleteExpense(ctx, id)
	})
}
