package records

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryLowStockIncludesEquality(t *testing.T) {
	assert.True(t, InventoryItem{Quantity: 5, MinStock: 5}.IsLowStock())
	assert.True(t, InventoryItem{Quantity: 4, MinStock: 5}.IsLowStock())
	assert.False(t, InventoryItem{Quantity: 6, MinStock: 5}.IsLowStock())
}

func TestNewSaleInputRoundsTotal(t *testing.T) {
	in := NewSaleInput("Widget", 3, decimal.RequireFromString("33.335"), decimal.NewFromInt(5))
	assert.Equal(t, "100.01", in.TotalAmount.StringFixed(2))
}

func TestSaleDecodesStringAndNumberAmounts(t *testing.T) {
	payload := `{"_id":"s1","productName":"Pen","quantity":2,"unitPrice":10,"totalAmount":"20.00","profit":4.5,"date":"2024-03-01T10:00:00.000Z"}`
	var sale SaleRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &sale))
	assert.Equal(t, "s1", sale.ID)
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(20)))
	assert.True(t, sale.Profit.Equal(decimal.RequireFromString("4.5")))
	assert.Equal(t, "2024-03-01", sale.Date.DateString())
}

func TestTimestampToleratesBlankAndNull(t *testing.T) {
	var task TaskRecord
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"t1","dueDate":null}`), &task))
	assert.True(t, task.DueDate.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"t1","dueDate":""}`), &task))
	assert.True(t, task.DueDate.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"t1","dueDate":"2024-05-06"}`), &task))
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), task.DueDate.Time)

	_, err := ParseTimestamp("yesterday")
	require.Error(t, err)

	out, err := json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestValidatorMessages(t *testing.T) {
	v := NewValidator()

	errs := v.Check(SheetInput{})
	assert.Equal(t, "Please enter a sheet name", errs["name"])
	assert.Equal(t, "Please enter a Google Sheets URL", errs["url"])

	errs = v.Check(SheetInput{Name: "Q1", URL: "https://example.com/sheet"})
	assert.Equal(t, "Please enter a valid Google Sheets URL", errs["url"])

	assert.Nil(t, v.Check(SheetInput{Name: "Q1", URL: "https://docs.google.com/spreadsheets/d/abc123/edit"}))

	errs = v.Check(SaleInput{ProductName: "Pen", Quantity: -1, UnitPrice: decimal.NewFromInt(-2)})
	assert.Contains(t, errs, "quantity")
	assert.Contains(t, errs, "unitPrice")

	errs = v.Check(Registration{Username: "asha", Email: "asha@example.com", Password: "abc"})
	assert.Equal(t, "Password must be at least 6 characters", errs["password"])

	errs = v.Check(TaskInput{Title: "Call", Priority: "Urgent", Status: TaskPending})
	assert.Equal(t, "Priority must be one of: Low Medium High", errs["priority"])
}

func TestSpreadsheetID(t *testing.T) {
	id, ok := SpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC-xyz/edit#gid=0")
	require.True(t, ok)
	assert.Equal(t, "1AbC-xyz", id)

	_, ok = SpreadsheetID("https://docs.google.com/document/d/1AbC/edit")
	assert.False(t, ok)
}

func TestParseEnums(t *testing.T) {
	status, ok := ParseTaskStatus("in-progress")
	require.True(t, ok)
	assert.Equal(t, TaskInProgress, status)

	cat, ok := ParseExpenseCategory("  marketing ")
	require.True(t, ok)
	assert.Equal(t, CategoryMarketing, cat)

	_, ok = ParseTaskPriority("urgent")
	assert.False(t, ok)
}

func TestPlainDateKeepsItsCalendarDay(t *testing.T) {
	west := time.FixedZone("UTC-5", -5*60*60)
	east := time.FixedZone("UTC+5:30", 5*60*60+30*60)

	plain, err := ParseTimestamp("2024-03-01")
	require.NoError(t, err)
	assert.True(t, plain.DateOnly())
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, west), plain.Day(west))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, east), plain.Day(east))

	out, err := json.Marshal(plain)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01"`, string(out))

	instant, err := ParseTimestamp("2024-03-01T02:00:00Z")
	require.NoError(t, err)
	assert.False(t, instant.DateOnly())
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, west), instant.Day(west))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, east), instant.Day(east))
}
