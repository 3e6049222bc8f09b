package erpapi

import (
	"context"

	"github.com/erpdesk/erpdesk/internal/records"
)

// ListSheets returns every linked spreadsheet.
func (c *Conn) ListSheets(ctx context.Context) ([]records.SheetLink, error) {
	var out []records.SheetLink
	if err := c.get(ctx, "/sheets", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPinnedSheets returns pinned spreadsheets only.
func (c *Conn) ListPinnedSheets(ctx context.Context) ([]records.SheetLink, error) {
	var out []records.SheetLink
	if err := c.get(ctx, "/sheets/pinned", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSheet links a spreadsheet.
func (c *Conn) CreateSheet(ctx context.Context, in records.SheetInput) (records.SheetLink, error) {
	var out records.SheetLink
	err := c.post(ctx, "/sheets", in, &out)
	return out, err
}

// ToggleSheetPin flips the pinned flag of a sheet.
func (c *Conn) ToggleSheetPin(ctx context.Context, id string) (records.SheetLink, error) {
	var out records.SheetLink
	err := c.put(ctx, "/sheets/"+escape(id)+"/pin", nil, &out)
	return out, err
}

// DeleteSheet unlinks a spreadsheet.
func (c *Conn) DeleteSheet(ctx context.Context, id string) error {
	return c.delete(ctx, "/sheets/"+escape(id))
}
