// Command seed fills a record store with sample data for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/gate"
	"github.com/erpdesk/erpdesk/internal/records"
)

func main() {
	baseURL := getenv("ERP_API_URL", "http://127.0.0.1:5000/api")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := erpapi.New(baseURL, erpapi.WithTimeout(10*time.Second))
	if err != nil {
		log.Fatalf("record store client: %v", err)
	}

	fmt.Println("→ Signing in...")
	token, err := signIn(ctx, client)
	if err != nil {
		log.Fatalf("sign in: %v", err)
	}
	g, err := gate.New(gate.NewMemoryStore())
	if err != nil {
		log.Fatalf("gate: %v", err)
	}
	if err := g.Login(token); err != nil {
		log.Fatalf("gate login: %v", err)
	}
	conn := client.With(g)

	fmt.Println("→ Seeding inventory...")
	if err := seedInventory(ctx, conn); err != nil {
		log.Fatalf("seed inventory: %v", err)
	}
	fmt.Println("→ Seeding sales...")
	if err := seedSales(ctx, conn); err != nil {
		log.Fatalf("seed sales: %v", err)
	}
	fmt.Println("→ Seeding expenses...")
	if err := seedExpenses(ctx, conn); err != nil {
		log.Fatalf("seed expenses: %v", err)
	}
	fmt.Println("→ Seeding tasks...")
	if err := seedTasks(ctx, conn); err != nil {
		log.Fatalf("seed tasks: %v", err)
	}
	fmt.Println("→ Seeding sheets...")
	if err := seedSheets(ctx, conn); err != nil {
		log.Fatalf("seed sheets: %v", err)
	}
	fmt.Println("✓ Done")
}

// signIn logs in with the seed account, registering it on first use.
func signIn(ctx context.Context, client *erpapi.Client) (string, error) {
	creds := records.Credentials{
		Email:    getenv("SEED_EMAIL", "demo@erpdesk.local"),
		Password: getenv("SEED_PASSWORD", "demo1234"),
	}
	token, err := client.Login(ctx, creds)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, erpapi.ErrInvalidCredentials) {
		return "", err
	}
	return client.Register(ctx, records.Registration{
		Username: getenv("SEED_USERNAME", "demo"),
		Email:    creds.Email,
		Password: creds.Password,
	})
}

func seedInventory(ctx context.Context, conn *erpapi.Conn) error {
	items := []records.InventoryInput{
		{ProductName: "Basmati Rice 5kg", SKU: "RICE-5", Category: "Groceries", Quantity: 40, Price: decimal.RequireFromString("649.00"), MinStock: 10},
		{ProductName: "Sunflower Oil 1L", SKU: "OIL-1", Category: "Groceries", Quantity: 6, Price: decimal.RequireFromString("189.50"), MinStock: 12},
		{ProductName: "Steel Tiffin Box", SKU: "TIF-3", Category: "Kitchen", Quantity: 15, Price: decimal.RequireFromString("899.00"), MinStock: 5},
		{ProductName: "Masala Chai 250g", SKU: "CHAI-250", Category: "Beverages", Quantity: 3, Price: decimal.RequireFromString("210.00"), MinStock: 8},
	}
	for _, item := range items {
		if _, err := conn.CreateInventoryItem(ctx, item); err != nil {
			return fmt.Errorf("%s: %w", item.ProductName, err)
		}
	}
	return nil
}

func seedSales(ctx context.Context, conn *erpapi.Conn) error {
	sales := []records.SaleInput{
		records.NewSaleInput("Basmati Rice 5kg", 4, decimal.RequireFromString("649.00"), decimal.RequireFromString("420.00")),
		records.NewSaleInput("Steel Tiffin Box", 2, decimal.RequireFromString("899.00"), decimal.RequireFromString("360.00")),
		records.NewSaleInput("Masala Chai 250g", 10, decimal.RequireFromString("210.00"), decimal.RequireFromString("550.00")),
	}
	for _, sale := range sales {
		if _, err := conn.CreateSale(ctx, sale); err != nil {
			return fmt.Errorf("%s: %w", sale.ProductName, err)
		}
	}
	return nil
}

func seedExpenses(ctx context.Context, conn *erpapi.Conn) error {
	expenses := []records.ExpenseInput{
		{Category: records.CategoryRent, Description: "Shop rent", Amount: decimal.RequireFromString("25000"), Status: records.ExpenseApproved},
		{Category: records.CategoryUtilities, Description: "Electricity bill", Amount: decimal.RequireFromString("3412.75"), Status: records.ExpensePending},
		{Category: records.CategoryMarketing, Description: "Festival flyers", Amount: decimal.RequireFromString("1800"), Status: records.ExpenseRejected},
	}
	for _, e := range expenses {
		if _, err := conn.CreateExpense(ctx, e); err != nil {
			return fmt.Errorf("%s: %w", e.Description, err)
		}
	}
	return nil
}

func seedTasks(ctx context.Context, conn *erpapi.Conn) error {
	due := records.NewTimestamp(time.Now().AddDate(0, 0, 7).Truncate(24 * time.Hour))
	tasks := []records.TaskInput{
		{Title: "Reorder sunflower oil", AssignedTo: "Stores", DueDate: &due, Priority: records.PriorityHigh, Status: records.TaskPending},
		{Title: "Reconcile March expenses", AssignedTo: "Accounts", Priority: records.PriorityMedium, Status: records.TaskInProgress},
		{Title: "Update price list", Priority: records.PriorityLow, Status: records.TaskCompleted},
	}
	for _, task := range tasks {
		created, err := conn.CreateTask(ctx, task)
		if err != nil {
			return fmt.Errorf("%s: %w", task.Title, err)
		}
		if task.Priority == records.PriorityHigh {
			if _, err := conn.ToggleTaskPin(ctx, created.ID); err != nil {
				return fmt.Errorf("pin %s: %w", task.Title, err)
			}
		}
	}
	return nil
}

func seedSheets(ctx context.Context, conn *erpapi.Conn) error {
	sheet, err := conn.CreateSheet(ctx, records.SheetInput{
		Name: "Monthly stock count",
		URL:  "https://docs.google.com/spreadsheets/d/1stockcount/edit",
	})
	if err != nil {
		return err
	}
	_, err = conn.ToggleSheetPin(ctx, sheet.ID)
	return err
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
