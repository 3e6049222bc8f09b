package erpapi

import (
	"context"

	"github.com/erpdesk/erpdesk/internal/records"
)

// Dashboard returns the server-computed summary figures.
func (c *Conn) Dashboard(ctx context.Context) (records.DashboardData, error) {
	var out records.DashboardData
	if err := c.get(ctx, "/dashboard", &out); err != nil {
		return records.DashboardData{}, err
	}
	return out, nil
}

// ImportResult is the store's acknowledgement of an import.
type ImportResult struct {
	Message  string `json:"message"`
	Imported int    `json:"imported"`
}

// ImportData asks the store to pull records of dataType from link.
func (c *Conn) ImportData(ctx context.Context, in records.ImportInput) (ImportResult, error) {
	var out ImportResult
	err := c.post(ctx, "/import/data", in, &out)
	return out, err
}

// UpdateDataLink stores the default import link on the profile.
func (c *Conn) UpdateDataLink(ctx context.Context, link string) error {
	return c.post(ctx, "/import/link", records.DataLinkInput{DataLink: link}, nil)
}
