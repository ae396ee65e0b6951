package store

import (
	"context"

	"sales-etl/internal/models"
)

// MonthlyRevenue returns revenue summed per calendar month in ascending
// chronological order. Consumed read-only by the dashboard.
func (s *Store) MonthlyRevenue(ctx context.Context) ([]models.MonthlyRevenue, error) {
	query := `
		SELECT DATE_TRUNC('month', order_date) AS month, SUM(total_amount) AS revenue
		FROM orders
		GROUP BY month
		ORDER BY month`

	var buckets []models.MonthlyRevenue
	err := s.db.SelectContext(ctx, &buckets, query)
	return buckets, err
}

// TopProductsByRevenue returns the limit highest-revenue products with their
// summed quantities, descending by revenue.
func (s *Store) TopProductsByRevenue(ctx context.Context, limit int) ([]models.ProductRevenue, error) {
	query := `
		SELECT p.sku, p.name, SUM(oi.line_total) AS revenue, SUM(oi.quantity) AS qty
		FROM order_items oi
		JOIN products p ON oi.product_id = p.product_id
		GROUP BY p.sku, p.name
		ORDER BY revenue DESC
		LIMIT $1`

	var products []models.ProductRevenue
	err := s.db.SelectContext(ctx, &products, query, limit)
	return products, err
}
