package erpapi

import (
	"context"
	"time"

	"github.com/erpdesk/erpdesk/internal/records"
)

// ListSales returns every recorded sale.
func (c *Conn) ListSales(ctx context.Context) ([]records.SaleRecord, error) {
	var out []records.SaleRecord
	if err := c.get(ctx, "/sales", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSalesByRange returns sales dated within [start, end].
func (c *Conn) ListSalesByRange(ctx context.Context, start, end time.Time) ([]records.SaleRecord, error) {
	var out []records.SaleRecord
	path := "/sales/range/" + escape(start.Format("2006-01-02")) + "/" + escape(end.Format("2006-01-02"))
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSale records a sale.
func (c *Conn) CreateSale(ctx context.Context, in records.SaleInput) (records.SaleRecord, error) {
	var out records.SaleRecord
	err := c.post(ctx, "/sales", in, &out)
	return out, err
}

// UpdateSale replaces a sale's fields.
func (c *Conn) UpdateSale(ctx context.Context, id string, in records.SaleInput) (records.SaleRecord, error) {
	var out records.SaleRecord
	err := c.put(ctx, "/sales/"+escape(id), in, &out)
	return out, err
}

// DeleteSale removes a sale.
func (c *Conn) DeleteSale(ctx context.Context, id string) error {
	return c.delete(ctx, "/sales/"+escape(id))
}
