package dashboard

import (
	"context"
	"time"

	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/records"
)

// Section names used in logs and metrics.
const (
	SectionSummary     = "summary"
	SectionPinnedTasks = "pinned-tasks"
	SectionSheets      = "sheets"
)

// Source is the part of the record store the dashboard reads and writes.
// *erpapi.Conn implements it.
type Source interface {
	Dashboard(ctx context.Context) (records.DashboardData, error)
	ListPinnedTasks(ctx context.Context) ([]records.TaskRecord, error)
	ListSheets(ctx context.Context) ([]records.SheetLink, error)
	CreateSheet(ctx context.Context, in records.SheetInput) (records.SheetLink, error)
	ToggleSheetPin(ctx context.Context, id string) (records.SheetLink, error)
	DeleteSheet(ctx context.Context, id string) error
	ToggleTaskPin(ctx context.Context, id string) (records.TaskRecord, error)
	ImportData(ctx context.Context, in records.ImportInput) (erpapi.ImportResult, error)
}

// FreshnessObserver receives the server's lastUpdated time after every
// successful summary read.
type FreshnessObserver func(lastUpdated time.Time)

// Dashboard loads the summary figures, the pinned tasks and the linked sheets.
type Dashboard struct {
	src         Source
	summary     *Section[records.DashboardData]
	pinnedTasks *Collection[records.TaskRecord]
	sheets      *Collection[records.SheetLink]
	rt          Runtime
}

// NewDashboard binds the presenter to src. observer may be nil.
func NewDashboard(rt Runtime, src Source, observer FreshnessObserver) *Dashboard {
	d := &Dashboard{src: src, rt: rt}
	d.summary = NewSection(SectionSummary, func(ctx context.Context) (records.DashboardData, error) {
		data, err := src.Dashboard(ctx)
		if err != nil {
			return records.DashboardData{}, err
		}
		if observer != nil && !data.LastUpdated.IsZero() {
			observer(data.LastUpdated.Time)
		}
		return data, nil
	})
	d.pinnedTasks = NewCollection(rt, SectionPinnedTasks, src.ListPinnedTasks)
	d.sheets = NewCollection(rt, SectionSheets, src.ListSheets)
	return d
}

// Dependencies lists the three independent reads of the dashboard.
func (d *Dashboard) Dependencies() []Dependency {
	return []Dependency{
		d.summary.Dependency(),
		d.pinnedTasks.Section().Dependency(),
		d.sheets.Section().Dependency(),
	}
}

// Activate runs every read in parallel.
func (d *Dashboard) Activate(ctx context.Context) map[string]error {
	return d.rt.Activate(ctx, d.Dependencies()...)
}

// Fill runs only the reads that have not completed on this presenter, so a
// write followed by a render does not repeat the write's own re-fetch.
func (d *Dashboard) Fill(ctx context.Context) map[string]error {
	sections := []interface {
		Loaded() bool
		Dependency() Dependency
	}{d.summary, d.pinnedTasks.Section(), d.sheets.Section()}

	var pending []Dependency
	for _, s := range sections {
		if !s.Loaded() {
			pending = append(pending, s.Dependency())
		}
	}
	if len(pending) == 0 {
		return map[string]error{}
	}
	return d.rt.Activate(ctx, pending...)
}

// View is the dashboard view model.
type View struct {
	Summary         records.DashboardData
	SummaryDegraded bool
	PinnedTasks     []records.TaskRecord
	TasksDegraded   bool
	PinnedSheets    []records.SheetLink
	OtherSheets     []records.SheetLink
	SheetsDegraded  bool
}

// View assembles the current snapshots.
func (d *Dashboard) View() View {
	v := View{
		Summary:         d.summary.Value(),
		SummaryDegraded: d.summary.Degraded(),
		PinnedTasks:     d.pinnedTasks.Items(),
		TasksDegraded:   d.pinnedTasks.Section().Degraded(),
		PinnedSheets:    []records.SheetLink{},
		OtherSheets:     []records.SheetLink{},
		SheetsDegraded:  d.sheets.Section().Degraded(),
	}
	for _, sheet := range d.sheets.Items() {
		if sheet.IsPinned {
			v.PinnedSheets = append(v.PinnedSheets, sheet)
		} else {
			v.OtherSheets = append(v.OtherSheets, sheet)
		}
	}
	return v
}

// AddSheet links a sheet and re-fetches the sheet list.
func (d *Dashboard) AddSheet(ctx context.Context, in records.SheetInput) error {
	return d.sheets.Apply(ctx, func(ctx context.Context) error {
		_, err := d.src.CreateSheet(ctx, in)
		return err
	})
}

// ToggleSheetPin flips a sheet's pin and re-fetches the sheet list.
func (d *Dashboard) ToggleSheetPin(ctx context.Context, id string) error {
	return d.sheets.Apply(ctx, func(ctx context.Context) error {
		_, err := d.src.ToggleSheetPin(ctx, id)
		return err
	})
}

// DeleteSheet unlinks a sheet once confirmed.
func (d *Dashboard) DeleteSheet(ctx context.Context, id string, confirmed bool) error {
	return d.sheets.Delete(ctx, confirmed, func(ctx context.Context) error {
		return d.src.DeleteSheet(ctx, id)
	})
}

// ToggleTaskPin unpins or pins a task and re-fetches the pinned list.
func (d *Dashboard) ToggleTaskPin(ctx context.Context, id string) error {
	return d.pinnedTasks.Apply(ctx, func(ctx context.Context) error {
		_, err := d.src.ToggleTaskPin(ctx, id)
		return err
	})
}

// ImportData asks the store to import records, then re-fetches the summary.
func (d *Dashboard) ImportData(ctx context.Context, in records.ImportInput) (erpapi.ImportResult, error) {
	result, err := d.src.ImportData(ctx, in)
	if err != nil {
		return erpapi.ImportResult{}, err
	}
	d.rt.Activate(ctx, d.summary.Dependency())
	return result, nil
}
