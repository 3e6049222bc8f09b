// Package sheets manages the linked spreadsheets: add, pin and unlink.
package sheets

import (
	"context"

	"github.com/erpdesk/erpdesk/internal/dashboard"
	"github.com/erpdesk/erpdesk/internal/records"
)

// SectionSheets names the sheet list in logs and metrics.
const SectionSheets = "sheets"

// Source is the part of the record store the sheet pages use.
type Source interface {
	ListSheets(ctx context.Context) ([]records.SheetLink, error)
	CreateSheet(ctx context.Context, in records.SheetInput) (records.SheetLink, error)
	ToggleSheetPin(ctx context.Context, id string) (records.SheetLink, error)
	DeleteSheet(ctx context.Context, id string) error
}

// Presenter holds the sheet list of one request.
type Presenter struct {
	src  Source
	list *dashboard.Collection[records.SheetLink]
}

// NewPresenter binds the list to src.
func NewPresenter(rt dashboard.Runtime, src Source) *Presenter {
	return &Presenter{src: src, list: dashboard.NewCollection(rt, SectionSheets, src.ListSheets)}
}

// Load reads the list.
func (p *Presenter) Load(ctx context.Context) map[string]error {
	return p.list.Load(ctx)
}

// Sheets returns the snapshot.
func (p *Presenter) Sheets() []records.SheetLink {
	return p.list.Items()
}

// Loaded reports whether the last read succeeded.
func (p *Presenter) Loaded() bool {
	return p.list.Section().Loaded()
}

// Degraded reports a failed read.
func (p *Presenter) Degraded() bool {
	return p.list.Section().Degraded()
}

// Find looks a sheet up in the snapshot.
func (p *Presenter) Find(id string) (records.SheetLink, bool) {
	for _, s := range p.Sheets() {
		if s.ID == id {
			return s, true
		}
	}
	return records.SheetLink{}, false
}

// Create links a sheet.
func (p *Presenter) Create(ctx context.Context, in records.SheetInput) error {
	return p.list.Apply(ctx, func(ctx context.Context) error {
		_, err := p.src.CreateSheet(ctx, in)
		return err
	})
}

// TogglePin pins or unpins a sheet.
func (p *Presenter) TogglePin(ctx context.Context, id string) error {
	return p.list.Apply(ctx, func(ctx context.Context) error {
		_, err := p.src.ToggleSheetPin(ctx, id)
		return err
	})
}

// Delete unlinks a sheet once confirmed.
func (p *Presenter) Delete(ctx context.Context, id string, confirmed bool) error {
	return p.list.Delete(ctx, confirmed, func(ctx context.Context) error {
		return p.src.DeleteSheet(ctx, id)
	})
}
