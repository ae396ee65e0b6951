package pipeline

import (
	"context"

	"sales-etl/internal/extract"
	"sales-etl/internal/models"
	"sales-etl/internal/util"

	"go.uber.org/zap"
)

func (p *Pipeline) loadProducts(ctx context.Context) (int, error) {
	rows, err := extract.ReadProducts(p.extract.ProductsCSV)
	if err != nil {
		return 0, err
	}

	products := buildProducts(rows)

	if err := p.store.InsertProducts(ctx, products); err != nil {
		return 0, &StorageError{Op: "insert products", Err: err}
	}

	util.RowsLoadedTotal.WithLabelValues("products").Add(float64(len(products)))
	p.logger.Info("Inserted products",
		zap.Int("count", len(products)),
		zap.Int("input_rows", len(rows)))
	return len(products), nil
}

// buildProducts coerces prices (NULL on parse failure) and collapses
// duplicate SKUs, keeping the first occurrence of each.
func buildProducts(rows []extract.RawProduct) []models.Product {
	seen := make(map[string]bool, len(rows))
	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		if seen[row.SKU] {
			continue
		}
		seen[row.SKU] = true
		products = append(products, models.Product{
			SKU:      row.SKU,
			Name:     row.Name,
			Category: row.Category,
			Price:    parseNumeric(row.Price),
		})
	}
	return products
}
