// Package reports serves the reports page: client-side aggregates over the
// full sales, expense and inventory lists, charts and summary exports.
package reports

import (
	"context"
	"time"

	"github.com/erpdesk/erpdesk/internal/dashboard"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/report"
)

// Section names used in logs and metrics.
const (
	SectionSales     = "report-sales"
	SectionExpenses  = "report-expenses"
	SectionInventory = "report-inventory"
)

// Source is the part of the record store the reports page reads.
type Source interface {
	ListSales(ctx context.Context) ([]records.SaleRecord, error)
	ListExpenses(ctx context.Context) ([]records.ExpenseRecord, error)
	ListInventory(ctx context.Context) ([]records.InventoryItem, error)
}

// Presenter loads the three lists of one report.
type Presenter struct {
	rt        dashboard.Runtime
	sales     *dashboard.Section[[]records.SaleRecord]
	expenses  *dashboard.Section[[]records.ExpenseRecord]
	inventory *dashboard.Section[[]records.InventoryItem]
}

// NewPresenter binds the report to src.
func NewPresenter(rt dashboard.Runtime, src Source) *Presenter {
	return &Presenter{
		rt:        rt,
		sales:     dashboard.NewSection(SectionSales, src.ListSales),
		expenses:  dashboard.NewSection(SectionExpenses, src.ListExpenses),
		inventory: dashboard.NewSection(SectionInventory, src.ListInventory),
	}
}

// Activate reads all three lists in parallel.
func (p *Presenter) Activate(ctx context.Context) map[string]error {
	return p.rt.Activate(ctx,
		p.sales.Dependency(),
		p.expenses.Dependency(),
		p.inventory.Dependency(),
	)
}

// Degraded reports whether any list failed to load. The summary of a degraded
// report understates the failed part.
func (p *Presenter) Degraded() bool {
	return p.sales.Degraded() || p.expenses.Degraded() || p.inventory.Degraded()
}

// Sales returns the sales snapshot.
func (p *Presenter) Sales() []records.SaleRecord { return p.sales.Value() }

// Expenses returns the expense snapshot.
func (p *Presenter) Expenses() []records.ExpenseRecord { return p.expenses.Value() }

// Inventory returns the inventory snapshot.
func (p *Presenter) Inventory() []records.InventoryItem { return p.inventory.Value() }

// Summary aggregates the current snapshots.
func (p *Presenter) Summary() report.Summary {
	return report.Aggregate(p.Sales(), p.Expenses(), p.Inventory())
}

// View is the reports view model.
type View struct {
	Summary           report.Summary
	SalesDegraded     bool
	ExpensesDegraded  bool
	InventoryDegraded bool
	Daily             []report.DailyAmount
	ByCategory        []report.CategoryAmount
	ExpenseStatuses   []report.StatusCount
	LowStock          []records.InventoryItem
}

// View assembles the report. Days are bucketed in loc.
func (p *Presenter) View(loc *time.Location) View {
	return View{
		Summary:           p.Summary(),
		SalesDegraded:     p.sales.Degraded(),
		ExpensesDegraded:  p.expenses.Degraded(),
		InventoryDegraded: p.inventory.Degraded(),
		Daily:             report.DailySales(p.Sales(), loc),
		ByCategory:        report.ExpensesByCategory(p.Expenses()),
		ExpenseStatuses:   report.ExpenseStatusCounts(p.Expenses()),
		LowStock:          report.LowStock(p.Inventory()),
	}
}
