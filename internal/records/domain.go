// Package records defines the entities persisted by the external record store
// and the inputs accepted when creating or updating them.
package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategory enumerates the accepted expense categories.
type ExpenseCategory string

const (
	CategoryUtilities ExpenseCategory = "Utilities"
	CategorySalaries  ExpenseCategory = "Salaries"
	CategoryRent      ExpenseCategory = "Rent"
	CategorySupplies  ExpenseCategory = "Supplies"
	CategoryMarketing ExpenseCategory = "Marketing"
	CategoryOther     ExpenseCategory = "Other"
)

// ExpenseCategories lists categories in display order.
var ExpenseCategories = []ExpenseCategory{
	CategoryUtilities, CategorySalaries, CategoryRent, CategorySupplies, CategoryMarketing, CategoryOther,
}

// ExpenseStatus tracks the approval state of an expense.
type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "Pending"
	ExpenseApproved ExpenseStatus = "Approved"
	ExpenseRejected ExpenseStatus = "Rejected"
)

// ExpenseStatuses lists expense statuses in display order.
var ExpenseStatuses = []ExpenseStatus{ExpensePending, ExpenseApproved, ExpenseRejected}

// TaskPriority ranks tasks.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// TaskPriorities lists priorities in display order.
var TaskPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}

// TaskStatus tracks task progress.
type TaskStatus string

const (
	TaskPending    TaskStatus = "Pending"
	TaskInProgress TaskStatus = "In Progress"
	TaskCompleted  TaskStatus = "Completed"
)

// TaskStatuses lists task statuses in display order.
var TaskStatuses = []TaskStatus{TaskPending, TaskInProgress, TaskCompleted}

// SaleRecord is a recorded sale. TotalAmount is stored by the server and is
// never re-derived on read.
type SaleRecord struct {
	ID          string          `json:"_id"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Profit      decimal.Decimal `json:"profit"`
	Date        Timestamp       `json:"date"`
	Status      string          `json:"status,omitempty"`
}

// InventoryItem is a stocked product.
type InventoryItem struct {
	ID          string          `json:"_id"`
	ProductName string          `json:"productName"`
	SKU         string          `json:"sku"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	MinStock    int             `json:"minStock"`
}

// IsLowStock reports whether the quantity is at or below the minimum stock.
func (i InventoryItem) IsLowStock() bool {
	return i.Quantity <= i.MinStock
}

// Value is quantity × price.
func (i InventoryItem) Value() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ExpenseRecord is a recorded business expense.
type ExpenseRecord struct {
	ID          string          `json:"_id"`
	Category    ExpenseCategory `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Status      ExpenseStatus   `json:"status"`
	Date        Timestamp       `json:"date"`
}

// TaskRecord is a to-do item, optionally pinned to the dashboard.
type TaskRecord struct {
	ID          string       `json:"_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	AssignedTo  string       `json:"assignedTo"`
	DueDate     Timestamp    `json:"dueDate"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	IsPinned    bool         `json:"isPinned"`
}

// SheetLink references an external spreadsheet.
type SheetLink struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	IsPinned bool   `json:"isPinned"`
}

// DashboardData is the server-computed aggregate served by /dashboard.
type DashboardData struct {
	TotalSales    decimal.Decimal `json:"totalSales"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	TotalProfit   decimal.Decimal `json:"totalProfit"`
	TodaySales    decimal.Decimal `json:"todaySales"`
	LastUpdated   Timestamp       `json:"lastUpdated"`
}

// Profile is the authenticated account as returned by /auth/profile.
type Profile struct {
	ID          string    `json:"_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DataLink    string    `json:"dataLink"`
	LastUpdated Timestamp `json:"lastUpdated"`
}

// Timestamp is a time that tolerates the loose date encodings used by the
// record store: RFC 3339, plain dates, empty strings and null. A plain date
// has no clock and stays on its calendar day in every zone.
type Timestamp struct {
	time.Time
	dateOnly bool
}

const dateLayout = "2006-01-02"

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05"}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses the accepted layouts; blank input yields the zero value.
func ParseTimestamp(raw string) (Timestamp, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return Timestamp{Time: t, dateOnly: true}, nil
	}
	return Timestamp{}, fmt.Errorf("records: unrecognised timestamp %q", raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON implements json.Marshaler. The zero value encodes as null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	if t.dateOnly {
		return json.Marshal(t.Format(dateLayout))
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}

// DateOnly reports whether the value was a plain date.
func (t Timestamp) DateOnly() bool { return t.dateOnly }

// Day returns midnight in loc of the calendar day t falls on there. Plain
// dates keep their own day.
func (t Timestamp) Day(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	d := t.Time
	if !t.dateOnly {
		d = d.In(loc)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// DateString renders the calendar date or an empty string.
func (t Timestamp) DateString() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
