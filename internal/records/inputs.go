package records

import (
	"github.com/shopspring/decimal"
)

// SaleInput is the payload for creating or updating a sale.
type SaleInput struct {
	ProductName string          `json:"productName" validate:"required,max=120"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice" validate:"gte=0"`
	Profit      decimal.Decimal `json:"profit" validate:"gte=0"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// NewSaleInput fills TotalAmount as quantity × unit price rounded to cents.
// This is the only place the total is derived.
func NewSaleInput(productName string, quantity int, unitPrice, profit decimal.Decimal) SaleInput {
	return SaleInput{
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Profit:      profit,
		TotalAmount: unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
	}
}

// InventoryInput is the payload for creating or updating an inventory item.
type InventoryInput struct {
	ProductName string          `json:"productName" validate:"required,max=120"`
	SKU         string          `json:"sku" validate:"max=64"`
	Category    string          `json:"category" validate:"max=64"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	MinStock    int             `json:"minStock" validate:"gte=0"`
}

// ExpenseInput is the payload for creating or updating an expense.
type ExpenseInput struct {
	Category    ExpenseCategory `json:"category" validate:"required,oneof=Utilities Salaries Rent Supplies Marketing Other"`
	Description string          `json:"description" validate:"max=500"`
	Amount      decimal.Decimal `json:"amount" validate:"gte=0"`
	Status      ExpenseStatus   `json:"status" validate:"required,oneof=Pending Approved Rejected"`
}

// TaskInput is the payload for creating a task.
type TaskInput struct {
	Title       string       `json:"title" validate:"required,max=200"`
	Description string       `json:"description" validate:"max=1000"`
	AssignedTo  string       `json:"assignedTo" validate:"max=120"`
	DueDate     *Timestamp   `json:"dueDate,omitempty"`
	Priority    TaskPriority `json:"priority" validate:"required,oneof=Low Medium High"`
	Status      TaskStatus   `json:"status" validate:"required,oneof=Pending 'In Progress' Completed"`
}

// TaskStatusInput updates only the status of a task.
type TaskStatusInput struct {
	Status TaskStatus `json:"status" validate:"required,oneof=Pending 'In Progress' Completed"`
}

// SheetInput links a new spreadsheet.
type SheetInput struct {
	Name string `json:"name" validate:"required,max=120"`
	URL  string `json:"url" validate:"required,spreadsheet"`
}

// ImportInput requests a server-side import of raw data.
type ImportInput struct {
	DataLink string `json:"dataLink" validate:"required,url"`
	DataType string `json:"dataType" validate:"required,oneof=sales inventory expenses tasks"`
}

// DataLinkInput updates the stored import link.
type DataLinkInput struct {
	DataLink string `json:"dataLink" validate:"omitempty,url"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up payload.
type Registration struct {
	Username string `json:"username" validate:"required,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}
