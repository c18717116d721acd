package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/shopdesk-be/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteStore implements Store on a SQLite database migrated with
// database.MigrateSQLite. Timestamps are stored as RFC 3339 text.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

// sqliteErr maps driver errors onto the package sentinels.
func sqliteErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
	}
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// execAffectingOne runs a write that must touch exactly one row.
func (s *SQLiteStore) execAffectingOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return sqliteErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) InsertAccountIfAbsent(ctx context.Context, account models.Account) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO accounts(id, username, email, password_hash, created_at) VALUES(?, ?, ?, ?, ?)",
		account.ID, account.Username, account.Email, account.PasswordHash, formatTime(account.CreatedAt))
	return sqliteErr(err)
}

const accountColumns = "id, username, email, password_hash, created_at"

func scanAccount(scanner interface{ Scan(...any) error }) (models.Account, error) {
	var account models.Account
	var createdAt string
	if err := scanner.Scan(&account.ID, &account.Username, &account.Email, &account.PasswordHash, &createdAt); err != nil {
		return models.Account{}, sqliteErr(err)
	}
	var err error
	account.CreatedAt, err = parseTime(createdAt)
	return account, err
}

func (s *SQLiteStore) FindAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	return scanAccount(s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE email = ?", email))
}

func (s *SQLiteStore) FindAccountByID(ctx context.Context, id string) (models.Account, error) {
	return scanAccount(s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id))
}

func (s *SQLiteStore) FindMaxInvoiceID(ctx context.Context, prefix string, width int) (string, error) {
	// GLOB treats the prefix literally unless it contains *, ? or [.
	if strings.ContainsAny(prefix, "*?[") {
		return "", fmt.Errorf("invoice id prefix %q contains glob metacharacters", prefix)
	}
	pattern := prefix + strings.Repeat("[0-9]", width)

	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT invoice_id FROM invoices WHERE invoice_id GLOB ? ORDER BY invoice_id DESC LIMIT 1", pattern).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}

func (s *SQLiteStore) InsertInvoice(ctx context.Context, invoice models.Invoice) error {
	itemsJSON, err := json.Marshal(invoice.Items)
	if err != nil {
		return fmt.Errorf("failed to encode line items: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invoices(id, invoice_id, customer_id, customer, date, items_json, grand_total, payment_status, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID, invoice.InvoiceID, invoice.CustomerID, invoice.Customer, invoice.Date, string(itemsJSON),
		invoice.GrandTotal, string(invoice.PaymentStatus), formatTime(invoice.CreatedAt), formatTime(invoice.UpdatedAt))
	return sqliteErr(err)
}

const invoiceColumns = "id, invoice_id, customer_id, customer, date, items_json, grand_total, payment_status, created_at, updated_at"

func scanInvoice(scanner interface{ Scan(...any) error }) (models.Invoice, error) {
	var inv models.Invoice
	var customerID, customer, date sql.NullString
	var itemsJSON, status, createdAt, updatedAt string
	err := scanner.Scan(&inv.ID, &inv.InvoiceID, &customerID, &customer, &date, &itemsJSON,
		&inv.GrandTotal, &status, &createdAt, &updatedAt)
	if err != nil {
		return models.Invoice{}, sqliteErr(err)
	}
	inv.CustomerID = customerID.String
	inv.Customer = customer.String
	inv.Date = date.String
	inv.PaymentStatus = models.PaymentStatus(status)
	if err := json.Unmarshal([]byte(itemsJSON), &inv.Items); err != nil {
		return models.Invoice{}, fmt.Errorf("failed to decode line items of %s: %w", inv.InvoiceID, err)
	}
	if inv.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Invoice{}, err
	}
	if inv.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Invoice{}, err
	}
	return inv, nil
}

func (s *SQLiteStore) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+invoiceColumns+" FROM invoices ORDER BY invoice_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (s *SQLiteStore) FindInvoiceByInvoiceID(ctx context.Context, invoiceID string) (models.Invoice, error) {
	return scanInvoice(s.db.QueryRowContext(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE invoice_id = ?", invoiceID))
}

func (s *SQLiteStore) UpdateInvoice(ctx context.Context, invoice models.Invoice) error {
	itemsJSON, err := json.Marshal(invoice.Items)
	if err != nil {
		return fmt.Errorf("failed to encode line items: %w", err)
	}
	return s.execAffectingOne(ctx, `
		UPDATE invoices SET customer_id = ?, customer = ?, date = ?, items_json = ?, grand_total = ?, payment_status = ?, updated_at = ?
		WHERE invoice_id = ?`,
		invoice.CustomerID, invoice.Customer, invoice.Date, string(itemsJSON), invoice.GrandTotal,
		string(invoice.PaymentStatus), formatTime(invoice.UpdatedAt), invoice.InvoiceID)
}

func (s *SQLiteStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email, phone, created_at FROM customers ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func scanCustomer(scanner interface{ Scan(...any) error }) (models.Customer, error) {
	var c models.Customer
	var email, phone sql.NullString
	var createdAt string
	if err := scanner.Scan(&c.ID, &c.Name, &email, &phone, &createdAt); err != nil {
		return models.Customer{}, sqliteErr(err)
	}
	c.Email = email.String
	c.Phone = phone.String
	var err error
	c.CreatedAt, err = parseTime(createdAt)
	return c, err
}

func (s *SQLiteStore) InsertCustomer(ctx context.Context, customer models.Customer) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO customers(id, name, email, phone, created_at) VALUES(?, ?, ?, ?, ?)",
		customer.ID, customer.Name, customer.Email, customer.Phone, formatTime(customer.CreatedAt))
	return sqliteErr(err)
}

func (s *SQLiteStore) FindCustomerByID(ctx context.Context, id string) (models.Customer, error) {
	return scanCustomer(s.db.QueryRowContext(ctx, "SELECT id, name, email, phone, created_at FROM customers WHERE id = ?", id))
}

func (s *SQLiteStore) UpdateCustomer(ctx context.Context, customer models.Customer) error {
	return s.execAffectingOne(ctx, "UPDATE customers SET name = ?, email = ?, phone = ? WHERE id = ?",
		customer.Name, customer.Email, customer.Phone, customer.ID)
}

func (s *SQLiteStore) DeleteCustomer(ctx context.Context, id string) error {
	return s.execAffectingOne(ctx, "DELETE FROM customers WHERE id = ?", id)
}

func (s *SQLiteStore) ListInventoryItems(ctx context.Context) ([]models.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, price, created_at FROM inventory_items ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.InventoryItem{}
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanInventoryItem(scanner interface{ Scan(...any) error }) (models.InventoryItem, error) {
	var item models.InventoryItem
	var createdAt string
	if err := scanner.Scan(&item.ID, &item.Name, &item.Price, &createdAt); err != nil {
		return models.InventoryItem{}, sqliteErr(err)
	}
	var err error
	item.CreatedAt, err = parseTime(createdAt)
	return item, err
}

func (s *SQLiteStore) InsertInventoryItem(ctx context.Context, item models.InventoryItem) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO inventory_items(id, name, price, created_at) VALUES(?, ?, ?, ?)",
		item.ID, item.Name, item.Price, formatTime(item.CreatedAt))
	return sqliteErr(err)
}

func (s *SQLiteStore) FindInventoryItemByID(ctx context.Context, id string) (models.InventoryItem, error) {
	return scanInventoryItem(s.db.QueryRowContext(ctx, "SELECT id, name, price, created_at FROM inventory_items WHERE id = ?", id))
}

func (s *SQLiteStore) UpdateInventoryItem(ctx context.Context, item models.InventoryItem) error {
	return s.execAffectingOne(ctx, "UPDATE inventory_items SET name = ?, price = ? WHERE id = ?",
		item.Name, item.Price, item.ID)
}

func (s *SQLiteStore) DeleteInventoryItem(ctx context.Context, id string) error {
	return s.execAffectingOne(ctx, "DELETE FROM inventory_items WHERE id = ?", id)
}

func (s *SQLiteStore) FindShopProfile(ctx context.Context) (models.ShopProfile, error) {
	var p models.ShopProfile
	var logoURL sql.NullString
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, shop_name, shop_phone, logo_url, created_at, updated_at FROM shop_profile WHERE id = ?",
		models.ShopProfileID).Scan(&p.ID, &p.ShopName, &p.ShopPhone, &logoURL, &createdAt, &updatedAt)
	if err != nil {
		return models.ShopProfile{}, sqliteErr(err)
	}
	p.LogoURL = logoURL.String
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.ShopProfile{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.ShopProfile{}, err
	}
	return p, nil
}

func (s *SQLiteStore) SaveShopProfile(ctx context.Context, profile models.ShopProfile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shop_profile(id, shop_name, shop_phone, logo_url, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			shop_name = excluded.shop_name,
			shop_phone = excluded.shop_phone,
			logo_url = excluded.logo_url,
			updated_at = excluded.updated_at`,
		models.ShopProfileID, profile.ShopName, profile.ShopPhone, profile.LogoURL,
		formatTime(profile.CreatedAt), formatTime(profile.UpdatedAt))
	return sqliteErr(err)
}
