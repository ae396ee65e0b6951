package models

import "database/sql"

// Customer is a row in the customers table. Email is the natural key used by
// the order stage to resolve customer references.
type Customer struct {
	ID         int64        `db:"customer_id" json:"customer_id"`
	Email      string       `db:"email" json:"email"`
	FullName   string       `db:"full_name" json:"full_name"`
	SignupDate sql.NullTime `db:"signup_date" json:"signup_date"`
	Country    string       `db:"country" json:"country"`
}

// Product is a row in the products table, keyed naturally by SKU.
type Product struct {
	ID       int64           `db:"product_id" json:"product_id"`
	SKU      string          `db:"sku" json:"sku"`
	Name     string          `db:"name" json:"name"`
	Category string          `db:"category" json:"category"`
	Price    sql.NullFloat64 `db:"price" json:"price"`
}

// Order is a row in the orders table. ExternalID is the caller-supplied id
// from the source system; it is persisted so later stages and reconciliation
// tooling can join on it.
type Order struct {
	ID          int64           `db:"order_id" json:"order_id"`
	ExternalID  string          `db:"order_external_id" json:"order_external_id"`
	CustomerID  int64           `db:"customer_id" json:"customer_id"`
	OrderDate   sql.NullTime    `db:"order_date" json:"order_date"`
	Status      string          `db:"status" json:"status"`
	TotalAmount sql.NullFloat64 `db:"total_amount" json:"total_amount"`
}

// OrderItem is a row in the order_items table. LineTotal is always computed
// by the loader as Quantity * UnitPrice, never taken from the extract.
type OrderItem struct {
	ID        int64   `db:"order_item_id" json:"order_item_id"`
	OrderID   int64   `db:"order_id" json:"order_id"`
	ProductID int64   `db:"product_id" json:"product_id"`
	Quantity  int     `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
	LineTotal float64 `db:"line_total" json:"line_total"`
}

// Shipment is a row in the shipments table. All descriptive fields are
// independently nullable.
type Shipment struct {
	ID             int64          `db:"shipment_id" json:"shipment_id"`
	OrderID        int64          `db:"order_id" json:"order_id"`
	ShippedDate    sql.NullTime   `db:"shipped_date" json:"shipped_date"`
	DeliveryDate   sql.NullTime   `db:"delivery_date" json:"delivery_date"`
	Carrier        sql.NullString `db:"carrier" json:"carrier"`
	TrackingNumber sql.NullString `db:"tracking_number" json:"tracking_number"`
}

// MonthlyRevenue is one bucket of the monthly revenue aggregate.
type MonthlyRevenue struct {
	Month   sql.NullTime    `db:"month" json:"month"`
	Revenue sql.NullFloat64 `db:"revenue" json:"revenue"`
}

// ProductRevenue is one row of the top-products-by-revenue aggregate.
type ProductRevenue struct {
	SKU      string  `db:"sku" json:"sku"`
	Name     string  `db:"name" json:"name"`
	Revenue  float64 `db:"revenue" json:"revenue"`
	Quantity int64   `db:"qty" json:"qty"`
}
