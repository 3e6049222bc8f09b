package erpapi

import (
	"context"

	"github.com/erpdesk/erpdesk/internal/records"
)

// ListInventory returns every inventory item.
func (c *Conn) ListInventory(ctx context.Context) ([]records.InventoryItem, error) {
	var out []records.InventoryItem
	if err := c.get(ctx, "/inventory", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListLowStock returns the server's view of items at or below minimum stock.
func (c *Conn) ListLowStock(ctx context.Context) ([]records.InventoryItem, error) {
	var out []records.InventoryItem
	if err := c.get(ctx, "/inventory/low-stock", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateInventoryItem adds an item.
func (c *Conn) CreateInventoryItem(ctx context.Context, in records.InventoryInput) (records.InventoryItem, error) {
	var out records.InventoryItem
	err := c.post(ctx, "/inventory", in, &out)
	return out, err
}

// UpdateInventoryItem replaces an item's fields.
func (c *Conn) UpdateInventoryItem(ctx context.Context, id string, in records.InventoryInput) (records.InventoryItem, error) {
	var out records.InventoryItem
	err := c.put(ctx, "/inventory/"+escape(id), in, &out)
	return out, err
}

// DeleteInventoryItem removes an item.
func (c *Conn) DeleteInventoryItem(ctx context.Context, id string) error {
	return c.delete(ctx, "/inventory/"+escape(id))
}
