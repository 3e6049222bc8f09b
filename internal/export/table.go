// Package export turns report summaries and record lists into downloadable
// spreadsheets and PDF documents.
package export

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erpdesk/erpdesk/internal/records"
	"github.com/erpdesk/erpdesk/internal/report"
)

// Kind tells writers how to encode a cell.
type Kind int

const (
	KindText Kind = iota
	KindMoney
	KindCount
	KindPercent
)

// Cell is one typed value of a table.
type Cell struct {
	Kind   Kind
	Text   string
	Amount decimal.Decimal
	Count  int
}

// TextCell holds a string.
func TextCell(s string) Cell { return Cell{Kind: KindText, Text: s} }

// MoneyCell holds a currency amount.
func MoneyCell(d decimal.Decimal) Cell { return Cell{Kind: KindMoney, Amount: d} }

// CountCell holds an integer.
func CountCell(n int) Cell { return Cell{Kind: KindCount, Count: n} }

// PercentCell holds a percentage such as 12.50.
func PercentCell(d decimal.Decimal) Cell { return Cell{Kind: KindPercent, Amount: d} }

// Display renders the cell as text using cur for money.
func (c Cell) Display(cur Currency) string {
	switch c.Kind {
	case KindMoney:
		return cur.Format(c.Amount)
	case KindCount:
		return strconv.Itoa(c.Count)
	case KindPercent:
		return c.Amount.StringFixed(2) + "%"
	default:
		return c.Text
	}
}

// Column describes one table column. PDFX is the column's x offset in
// millimetres; zero keeps the column out of PDF output.
type Column struct {
	Header string
	PDFX   float64
	// Trim caps the rendered width in PDFs, in characters. Zero means no cap.
	Trim int
}

// Total is a labelled figure printed below a table.
type Total struct {
	Label string
	Value Cell
}

// Table is a titled grid of cells with optional totals.
type Table struct {
	Sheet   string
	Title   string
	Columns []Column
	Rows    [][]Cell
	Totals  []Total
}

// SummaryTable lists the report summary as Metric/Value rows.
func SummaryTable(s report.Summary) Table {
	return Table{
		Sheet:   "Report",
		Title:   "ERP System Report",
		Columns: []Column{{Header: "Metric", PDFX: 12}, {Header: "Value", PDFX: 100}},
		Rows: [][]Cell{
			{TextCell("Total Sales"), MoneyCell(s.TotalSales)},
			{TextCell("Total Expenses"), MoneyCell(s.TotalExpenses)},
			{TextCell("Total Profit"), MoneyCell(s.TotalProfit)},
			{TextCell("Inventory Value"), MoneyCell(s.InventoryValue)},
			{TextCell("Sales Count"), CountCell(s.SalesCount)},
			{TextCell("Expense Count"), CountCell(s.ExpenseCount)},
			{TextCell("Inventory Count"), CountCell(s.InventoryCount)},
			{TextCell("Profit Margin"), PercentCell(s.ProfitMargin)},
		},
	}
}

// SalesTable lists sales with their amount and profit totals.
func SalesTable(sales []records.SaleRecord) Table {
	t := Table{
		Sheet: "Sales",
		Title: "Sales Report - Indian Rupees",
		Columns: []Column{
			{Header: "Product", PDFX: 12, Trim: 20},
			{Header: "Quantity", PDFX: 70},
			{Header: "Unit Price", PDFX: 100},
			{Header: "Total Amount", PDFX: 130},
			{Header: "Profit", PDFX: 160},
			{Header: "Date"},
		},
	}
	for _, s := range sales {
		t.Rows = append(t.Rows, []Cell{
			TextCell(s.ProductName),
			CountCell(s.Quantity),
			MoneyCell(s.UnitPrice),
			MoneyCell(s.TotalAmount),
			MoneyCell(s.Profit),
			TextCell(s.Date.DateString()),
		})
	}
	totals := report.SalesTotals(sales)
	t.Totals = []Total{
		{Label: "Total Sales", Value: MoneyCell(totals.Amount)},
		{Label: "Total Profit", Value: MoneyCell(totals.Profit)},
	}
	return t
}

// InventoryTable lists inventory items with the stock value.
func InventoryTable(items []records.InventoryItem) Table {
	t := Table{
		Sheet: "Inventory",
		Title: "Inventory Report",
		Columns: []Column{
			{Header: "Product", PDFX: 12, Trim: 18},
			{Header: "SKU", PDFX: 55, Trim: 12},
			{Header: "Category", PDFX: 80, Trim: 14},
			{Header: "Quantity", PDFX: 110},
			{Header: "Min Stock", PDFX: 130},
			{Header: "Price", PDFX: 150},
			{Header: "Value", PDFX: 175},
		},
	}
	for _, item := range items {
		t.Rows = append(t.Rows, []Cell{
			TextCell(item.ProductName),
			TextCell(item.SKU),
			TextCell(item.Category),
			CountCell(item.Quantity),
			CountCell(item.MinStock),
			MoneyCell(item.Price),
			MoneyCell(item.Value()),
		})
	}
	t.Totals = []Total{
		{Label: "Inventory Value", Value: MoneyCell(report.InventoryValue(items))},
		{Label: "Low Stock Items", Value: CountCell(len(report.LowStock(items)))},
	}
	return t
}

// ExpenseTable lists expenses with their total.
func ExpenseTable(expenses []records.ExpenseRecord) Table {
	t := Table{
		Sheet: "Expenses",
		Title: "Expense Report",
		Columns: []Column{
			{Header: "Category", PDFX: 12},
			{Header: "Description", PDFX: 45, Trim: 30},
			{Header: "Amount", PDFX: 120},
			{Header: "Status", PDFX: 150},
			{Header: "Date", PDFX: 175},
		},
	}
	for _, e := range expenses {
		t.Rows = append(t.Rows, []Cell{
			TextCell(string(e.Category)),
			TextCell(e.Description),
			MoneyCell(e.Amount),
			TextCell(string(e.Status)),
			TextCell(e.Date.DateString()),
		})
	}
	t.Totals = []Total{{Label: "Total Expenses", Value: MoneyCell(report.ExpenseTotal(expenses))}}
	return t
}

// TaskTable lists tasks.
func TaskTable(tasks []records.TaskRecord) Table {
	t := Table{
		Sheet: "Tasks",
		Title: "Task Report",
		Columns: []Column{
			{Header: "Title", PDFX: 12, Trim: 28},
			{Header: "Assigned To", PDFX: 75, Trim: 16},
			{Header: "Priority", PDFX: 110},
			{Header: "Status", PDFX: 135},
			{Header: "Due Date", PDFX: 170},
			{Header: "Pinned"},
		},
	}
	for _, task := range tasks {
		pinned := "No"
		if task.IsPinned {
			pinned = "Yes"
		}
		t.Rows = append(t.Rows, []Cell{
			TextCell(task.Title),
			TextCell(task.AssignedTo),
			TextCell(string(task.Priority)),
			TextCell(string(task.Status)),
			TextCell(task.DueDate.DateString()),
			TextCell(pinned),
		})
	}
	return t
}

// Filename builds a download name such as "sales_report_2024-03-01.xlsx".
func Filename(base string, at time.Time, ext string) string {
	return base + "_" + at.Format("2006-01-02") + "." + ext
}
