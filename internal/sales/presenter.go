// Package sales serves the sales register: list with date filter, create,
// edit, delete and exports.
package sales

import (
	"context"
	"net/url"
	"time"

	"github.com/erpdesk/erpdesk/internal/dashboard"
	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/report"
)

// SectionSales names the sales list in logs and metrics.
const SectionSales = "sales"

// Source is the part of the record store the sales pages use.
type Source interface {
	ListSales(ctx context.Context) ([]records.SaleRecord, error)
	ListSalesByRange(ctx context.Context, start, end time.Time) ([]records.SaleRecord, error)
	CreateSale(ctx context.Context, in records.SaleInput) (records.SaleRecord, error)
	UpdateSale(ctx context.Context, id string, in records.SaleInput) (records.SaleRecord, error)
	DeleteSale(ctx context.Context, id string) error
}

// Filter restricts the list to an inclusive date range.
type Filter struct {
	Start time.Time
	End   time.Time
}

// Active reports whether both bounds are set.
func (f Filter) Active() bool {
	return !f.Start.IsZero() && !f.End.IsZero()
}

// ParseFilter reads start and end from a query string. Invalid or reversed
// bounds are reported and the filter is dropped.
func ParseFilter(q url.Values) (Filter, string) {
	rawStart, rawEnd := q.Get("start"), q.Get("end")
	if rawStart == "" && rawEnd == "" {
		return Filter{}, ""
	}
	start, errStart := time.Parse("2006-01-02", rawStart)
	end, errEnd := time.Parse("2006-01-02", rawEnd)
	if errStart != nil || errEnd != nil {
		return Filter{}, "Choose both a start and an end date"
	}
	if end.Before(start) {
		return Filter{}, "The end date must not be before the start date"
	}
	return Filter{Start: start, End: end}, ""
}

// Presenter holds the sales list of one request.
type Presenter struct {
	src  Source
	list *dashboard.Collection[records.SaleRecord]
}

// NewPresenter binds the list to src, filtered when filter is active.
func NewPresenter(rt dashboard.Runtime, src Source, filter Filter) *Presenter {
	load := src.ListSales
	if filter.Active() {
		load = func(ctx context.Context) ([]records.SaleRecord, error) {
			return src.ListSalesByRange(ctx, filter.Start, filter.End)
		}
	}
	return &Presenter{src: src, list: dashboard.NewCollection(rt, SectionSales, load)}
}

// Load reads the list.
func (p *Presenter) Load(ctx context.Context) map[string]error {
	return p.list.Load(ctx)
}

// Sales returns the current snapshot.
func (p *Presenter) Sales() []records.SaleRecord {
	return p.list.Items()
}

// Degraded reports a failed read.
func (p *Presenter) Degraded() bool {
	return p.list.Section().Degraded()
}

// Totals sums the snapshot.
func (p *Presenter) Totals() report.Totals {
	return report.SalesTotals(p.Sales())
}

// Find looks a sale up in the snapshot.
func (p *Presenter) Find(id string) (records.SaleRecord, bool) {
	for _, sale := range p.Sales() {
		if sale.ID == id {
			return sale, true
		}
	}
	return records.SaleRecord{}, false
}

// Create records a sale and re-fetches the list.
func (p *Presenter) Create(ctx context.Context, in records.SaleInput) error {
	return p.list.Apply(ctx, func(ctx context.Context) error {
		_, err := p.src.CreateSale(ctx, in)
		return err
	})
}

// Update replaces a sale and re-fetches the list.
func (p *Presenter) Update(ctx context.Context, id string, in records.SaleInput) error {
	return p.list.Apply(ctx, func(ctx context.Context) error {
		_, err := p.src.UpdateSale(ctx, id, in)
		return err
	})
}

// Delete removes a sale once confirmed.
func (p *Presenter) Delete(ctx context.Context, id string, confirmed bool) error {
	return p.list.Delete(ctx, confirmed, func(ctx context.Context) error {
		return p.src.DeleteSale(ctx, id)
	})
}
