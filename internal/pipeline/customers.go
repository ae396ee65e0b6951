package pipeline

import (
	"context"

	"sales-etl/internal/extract"
	"sales-etl/internal/models"
	"sales-etl/internal/util"

	"go.uber.org/zap"
)

func (p *Pipeline) loadCustomers(ctx context.Context) (int, error) {
	rows, err := extract.ReadCustomers(p.extract.CustomersCSV)
	if err != nil {
		return 0, err
	}

	customers := buildCustomers(rows)

	if err := p.store.InsertCustomers(ctx, customers); err != nil {
		return 0, &StorageError{Op: "insert customers", Err: err}
	}

	util.RowsLoadedTotal.WithLabelValues("customers").Add(float64(len(customers)))
	p.logger.Info("Inserted customers",
		zap.Int("count", len(customers)),
		zap.Int("input_rows", len(rows)))
	return len(customers), nil
}

// buildCustomers coerces signup dates (NULL on parse failure) and collapses
// duplicate emails, keeping the first occurrence of each.
func buildCustomers(rows []extract.RawCustomer) []models.Customer {
	seen := make(map[string]bool, len(rows))
	customers := make([]models.Customer, 0, len(rows))
	for _, row := range rows {
		if seen[row.Email] {
			continue
		}
		seen[row.Email] = true
		customers = append(customers, models.Customer{
			Email:      row.Email,
			FullName:   row.FullName,
			SignupDate: parseDate(row.SignupDate),
			Country:    row.Country,
		})
	}
	return customers
}
