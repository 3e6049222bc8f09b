package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erpdesk/erpdesk/internal/records"
)

// Totals is the amount and profit of a list of sales.
type Totals struct {
	Count  int
	Amount decimal.Decimal
	Profit decimal.Decimal
}

// SalesTotals sums a list of sales.
func SalesTotals(sales []records.SaleRecord) Totals {
	totals := Totals{Count: len(sales), Amount: decimal.Zero, Profit: decimal.Zero}
	for _, sale := range sales {
		totals.Amount = totals.Amount.Add(sale.TotalAmount)
		totals.Profit = totals.Profit.Add(sale.Profit)
	}
	totals.Amount = totals.Amount.Round(2)
	totals.Profit = totals.Profit.Round(2)
	return totals
}

// ExpenseTotal sums expense amounts.
func ExpenseTotal(expenses []records.ExpenseRecord) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total.Round(2)
}

// InventoryValue sums quantity × price.
func InventoryValue(items []records.InventoryItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Value())
	}
	return total.Round(2)
}

// StatusCount pairs a status label with its number of records.
type StatusCount struct {
	Status string
	Count  int
}

// ExpenseStatusCounts counts expenses per status in display order. Unknown
// statuses are appended after the known ones.
func ExpenseStatusCounts(expenses []records.ExpenseRecord) []StatusCount {
	order := make([]string, 0, len(records.ExpenseStatuses))
	for _, s := range records.ExpenseStatuses {
		order = append(order, string(s))
	}
	values := make([]string, 0, len(expenses))
	for _, e := range expenses {
		values = append(values, string(e.Status))
	}
	return countInOrder(order, values)
}

// TaskStatusCounts counts tasks per status in display order.
func TaskStatusCounts(tasks []records.TaskRecord) []StatusCount {
	order := make([]string, 0, len(records.TaskStatuses))
	for _, s := range records.TaskStatuses {
		order = append(order, string(s))
	}
	values := make([]string, 0, len(tasks))
	for _, t := range tasks {
		values = append(values, string(t.Status))
	}
	return countInOrder(order, values)
}

func countInOrder(order, values []string) []StatusCount {
	counts := make(map[string]int, len(order))
	var extra []string
	known := make(map[string]bool, len(order))
	for _, o := range order {
		known[o] = true
	}
	for _, v := range values {
		if !known[v] && counts[v] == 0 {
			extra = append(extra, v)
		}
		counts[v]++
	}
	sort.Strings(extra)
	out := make([]StatusCount, 0, len(order)+len(extra))
	for _, o := range append(order, extra...) {
		out = append(out, StatusCount{Status: o, Count: counts[o]})
	}
	return out
}

// CategoryAmount is the expense total of one category.
type CategoryAmount struct {
	Category records.ExpenseCategory
	Amount   decimal.Decimal
}

// ExpensesByCategory totals expenses per category in the fixed category
// order. Categories without expenses are included with zero.
func ExpensesByCategory(expenses []records.ExpenseRecord) []CategoryAmount {
	sums := make(map[records.ExpenseCategory]decimal.Decimal, len(records.ExpenseCategories))
	for _, e := range expenses {
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}
	out := make([]CategoryAmount, 0, len(records.ExpenseCategories))
	for _, c := range records.ExpenseCategories {
		out = append(out, CategoryAmount{Category: c, Amount: sums[c].Round(2)})
	}
	return out
}

// DailyAmount is the sales total of one calendar day.
type DailyAmount struct {
	Day    time.Time
	Amount decimal.Decimal
}

// DailySales totals sales per calendar day (in loc) in ascending date order.
// Plain dates count on their own day. Sales without a date are skipped.
func DailySales(sales []records.SaleRecord, loc *time.Location) []DailyAmount {
	if loc == nil {
		loc = time.UTC
	}
	sums := make(map[time.Time]decimal.Decimal)
	for _, sale := range sales {
		if sale.Date.IsZero() {
			continue
		}
		day := sale.Date.Day(loc)
		sums[day] = sums[day].Add(sale.TotalAmount)
	}
	out := make([]DailyAmount, 0, len(sums))
	for day, amount := range sums {
		out = append(out, DailyAmount{Day: day, Amount: amount.Round(2)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}
