package store

import (
	"context"
	"fmt"
	"time"

	"sales-etl/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// insertChunkSize caps rows per INSERT so the statement stays well under
// Postgres' bind-parameter limit.
const insertChunkSize = 1000

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// InsertCustomers bulk-appends customer rows. Surrogate ids are assigned by
// the database and are not returned; callers re-read the email mapping.
func (s *Store) InsertCustomers(ctx context.Context, customers []models.Customer) error {
	query := `
		INSERT INTO customers (email, full_name, signup_date, country)
		VALUES (:email, :full_name, :signup_date, :country)`
	return namedInsertChunked(ctx, s.db, query, customers)
}

// InsertProducts bulk-appends product rows.
func (s *Store) InsertProducts(ctx context.Context, products []models.Product) error {
	query := `
		INSERT INTO products (sku, name, category, price)
		VALUES (:sku, :name, :category, :price)`
	return namedInsertChunked(ctx, s.db, query, products)
}

// InsertOrders bulk-appends order rows, retaining the external id column.
func (s *Store) InsertOrders(ctx context.Context, orders []models.Order) error {
	query := `
		INSERT INTO orders (order_external_id, customer_id, order_date, status, total_amount)
		VALUES (:order_external_id, :customer_id, :order_date, :status, :total_amount)`
	return namedInsertChunked(ctx, s.db, query, orders)
}

// InsertOrderItems bulk-appends order item rows.
func (s *Store) InsertOrderItems(ctx context.Context, items []models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price, line_total)
		VALUES (:order_id, :product_id, :quantity, :unit_price, :line_total)`
	return namedInsertChunked(ctx, s.db, query, items)
}

// InsertShipments bulk-appends shipment rows.
func (s *Store) InsertShipments(ctx context.Context, shipments []models.Shipment) error {
	query := `
		INSERT INTO shipments (order_id, shipped_date, delivery_date, carrier, tracking_number)
		VALUES (:order_id, :shipped_date, :delivery_date, :carrier, :tracking_number)`
	return namedInsertChunked(ctx, s.db, query, shipments)
}

func namedInsertChunked[T any](ctx context.Context, db *sqlx.DB, query string, rows []T) error {
	for start := 0; start < len(rows); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := db.NamedExecContext(ctx, query, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// CustomerIDsByEmail returns the {email -> customer_id} mapping for the whole
// customers table.
func (s *Store) CustomerIDsByEmail(ctx context.Context) (map[string]int64, error) {
	return s.keyedIDs(ctx, "SELECT email AS key, customer_id AS id FROM customers")
}

// ProductIDsBySKU returns the {sku -> product_id} mapping.
func (s *Store) ProductIDsBySKU(ctx context.Context) (map[string]int64, error) {
	return s.keyedIDs(ctx, "SELECT sku AS key, product_id AS id FROM products")
}

// OrderIDsByExternalID returns the {order_external_id -> order_id} mapping.
func (s *Store) OrderIDsByExternalID(ctx context.Context) (map[string]int64, error) {
	return s.keyedIDs(ctx, "SELECT order_external_id AS key, order_id AS id FROM orders")
}

func (s *Store) keyedIDs(ctx context.Context, query string) (map[string]int64, error) {
	var rows []struct {
		Key string `db:"key"`
		ID  int64  `db:"id"`
	}
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(rows))
	for _, row := range rows {
		ids[row.Key] = row.ID
	}
	return ids, nil
}

// CountRows returns the row count of one of the load target tables. The table
// name is restricted to the known set; it is never interpolated from input.
func (s *Store) CountRows(ctx context.Context, table string) (int64, error) {
	switch table {
	case "customers", "products", "orders", "order_items", "shipments":
	default:
		return 0, fmt.Errorf("unknown table: %s", table)
	}
	var count int64
	err := s.db.GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	return count, err
}
