// Package report derives summary figures from record snapshots. Every function
// is pure: same input, same output, no I/O.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/erpdesk/erpdesk/internal/records"
)

var hundred = decimal.NewFromInt(100)

// Summary holds the aggregate figures shown on the reports page and exported.
type Summary struct {
	TotalSales     decimal.Decimal `json:"totalSales"`
	TotalExpenses  decimal.Decimal `json:"totalExpenses"`
	TotalProfit    decimal.Decimal `json:"totalProfit"`
	InventoryValue decimal.Decimal `json:"inventoryValue"`
	SalesCount     int             `json:"salesCount"`
	ExpenseCount   int             `json:"expenseCount"`
	InventoryCount int             `json:"inventoryCount"`
	ProfitMargin   decimal.Decimal `json:"profitMargin"`
}

// Aggregate sums sales, expenses and inventory. Monetary totals are rounded to
// two places; ProfitMargin is 100 × profit / sales, or zero without sales.
func Aggregate(sales []records.SaleRecord, expenses []records.ExpenseRecord, inventory []records.InventoryItem) Summary {
	summary := Summary{
		TotalSales:     decimal.Zero,
		TotalExpenses:  decimal.Zero,
		TotalProfit:    decimal.Zero,
		InventoryValue: decimal.Zero,
		ProfitMargin:   decimal.Zero,
		SalesCount:     len(sales),
		ExpenseCount:   len(expenses),
		InventoryCount: len(inventory),
	}
	for _, sale := range sales {
		summary.TotalSales = summary.TotalSales.Add(sale.TotalAmount)
		summary.TotalProfit = summary.TotalProfit.Add(sale.Profit)
	}
	for _, expense := range expenses {
		summary.TotalExpenses = summary.TotalExpenses.Add(expense.Amount)
	}
	for _, item := range inventory {
		summary.InventoryValue = summary.InventoryValue.Add(item.Value())
	}

	summary.TotalSales = summary.TotalSales.Round(2)
	summary.TotalProfit = summary.TotalProfit.Round(2)
	summary.TotalExpenses = summary.TotalExpenses.Round(2)
	summary.InventoryValue = summary.InventoryValue.Round(2)
	summary.ProfitMargin = Margin(summary.TotalProfit, summary.TotalSales)
	return summary
}

// Margin returns 100 × profit / sales rounded to two places. Non-positive
// sales yield zero.
func Margin(profit, sales decimal.Decimal) decimal.Decimal {
	if !sales.IsPositive() {
		return decimal.Zero
	}
	return profit.Mul(hundred).DivRound(sales, 2)
}

// NetProfit is sales profit less expenses.
func (s Summary) NetProfit() decimal.Decimal {
	return s.TotalProfit.Sub(s.TotalExpenses)
}

// LowStock returns the items whose quantity is at or below their minimum
// stock, in input order.
func LowStock(items []records.InventoryItem) []records.InventoryItem {
	out := make([]records.InventoryItem, 0)
	for _, item := range items {
		if item.IsLowStock() {
			out = append(out, item)
		}
	}
	return out
}
