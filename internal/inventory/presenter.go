// Package inventory serves the stock list with its low-stock alert.
package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/erpdesk/erpdesk/internal/dashboard"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/report"
)

// Section names.
const (
	SectionInventory = "inventory"
	SectionLowStock  = "low-stock"
)

// Source is the part of the record store the inventory pages use.
type Source interface {
	ListInventory(ctx context.Context) ([]records.InventoryItem, error)
	ListLowStock(ctx context.Context) ([]records.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, in records.InventoryInput) (records.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, id string, in records.InventoryInput) (records.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id string) error
}

// Presenter holds the item list and the server's low-stock list. Every
// mutation re-fetches both.
type Presenter struct {
	src      Source
	lowStock *dashboard.Section[[]records.InventoryItem]
	list     *dashboard.Collection[records.InventoryItem]
}

// NewPresenter binds the presenter to src.
func NewPresenter(rt dashboard.Runtime, src Source) *Presenter {
	lowStock := dashboard.NewSection(SectionLowStock, src.ListLowStock)
	return &Presenter{
		src:      src,
		lowStock: lowStock,
		list:     dashboard.NewCollection(rt, SectionInventory, src.ListInventory, lowStock.Dependency()),
	}
}

// Load reads both lists in parallel.
func (p *Presenter) Load(ctx context.Context) map[string]error {
	return p.list.Load(ctx)
}

// Items returns the item snapshot.
func (p *Presenter) Items() []records.InventoryItem {
	return p.list.Items()
}

// Degraded reports a failed item read.
func (p *Presenter) Degraded() bool {
	return p.list.Section().Degraded()
}

// LowStock returns the server's low-stock list. When that read failed the
// list is derived from the item snapshot instead.
func (p *Presenter) LowStock() []records.InventoryItem {
	if p.lowStock.Degraded() {
		return report.LowStock(p.Items())
	}
	items := p.lowStock.Value()
	if items == nil {
		return []records.InventoryItem{}
	}
	return items
}

// Value is the stock value of the snapshot.
func (p *Presenter) Value() decimal.Decimal {
	return report.InventoryValue(p.Items())
}

// Find looks an item up in the snapshot.
func (p *Presenter) Find(id string) (records.InventoryItem, bool) {
	for _, item := range p.Items() {
		if item.ID == id {
			return item, true
		}
	}
	return records.InventoryItem{}, false
}

// Create adds an item.
func (p *Presenter) Create(ctx context.Context, in records.InventoryInput) error {
	return p.list.Apply(ctx, func(ctx context.Context) error {
		_, err := p.src.CreateInventoryItem(ctx, in)
		return err
	})
}

// Update replaces an item.
func (p *Presenter) Update(ctx context.Context, id string, in records.InventoryInput) error {
	return p.list.Apply(ctx, func(ctx context.Context) error {
		_, err := p.src.UpdateInventoryItem(ctx, id, in)
		return err
	})
}

// Delete removes an item once confirmed.
func (p *Presenter) Delete(ctx context.Context, id string, confirmed bool) error {
	return p.list.Delete(ctx, confirmed, func(ctx context.Context) error {
		return p.src.DeleteInventoryItem(ctx, id)
	})
}
