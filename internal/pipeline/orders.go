package pipeline

import (
	"context"

	"sales-etl/internal/extract"
	"sales-etl/internal/models"
	"sales-etl/internal/util"

	"go.uber.org/zap"
)

// loadOrders resolves each order's customer reference by email against a
// freshly read snapshot of the customers table, then appends the batch. Any
// unresolved email aborts the stage before a single order is written. On
// success it returns the {external id -> order id} mapping re-read from the
// store, the hand-off artifact for the order-item and shipment stages.
func (p *Pipeline) loadOrders(ctx context.Context) (int, map[string]int64, error) {
	rows, err := extract.ReadOrders(p.extract.OrdersCSV)
	if err != nil {
		return 0, nil, err
	}

	customerIDs, err := p.store.CustomerIDsByEmail(ctx)
	if err != nil {
		return 0, nil, &StorageError{Op: "read customer id mapping", Err: err}
	}

	orders, violation := buildOrders(rows, customerIDs)
	if violation != nil {
		util.ReferentialViolationsTotal.WithLabelValues(StageOrders, "customer_email").
			Add(float64(len(violation.Keys)))
		p.logger.Error("Orders reference missing customers",
			zap.Strings("emails", firstKeys(violation.Keys)),
			zap.Int("total", len(violation.Keys)))
		return 0, nil, violation
	}

	if err := p.store.InsertOrders(ctx, orders); err != nil {
		return 0, nil, &StorageError{Op: "insert orders", Err: err}
	}

	// Surrogate ids are discovered by re-reading the mapping, never captured
	// at insert time.
	orderIDs, err := p.store.OrderIDsByExternalID(ctx)
	if err != nil {
		return 0, nil, &StorageError{Op: "read order id mapping", Err: err}
	}

	util.RowsLoadedTotal.WithLabelValues("orders").Add(float64(len(orders)))
	p.logger.Info("Inserted orders", zap.Int("count", len(orders)))
	return len(orders), orderIDs, nil
}

// buildOrders left-joins the raw batch to the customer id snapshot on email.
// It returns either the fully resolved batch or the set of unmatched emails;
// it never returns both, so validation cannot interleave with writes.
func buildOrders(rows []extract.RawOrder, customerIDs map[string]int64) ([]models.Order, *ReferentialViolation) {
	var missing []string
	seenMissing := make(map[string]bool)
	orders := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		customerID, ok := customerIDs[row.CustomerEmail]
		if !ok {
			if !seenMissing[row.CustomerEmail] {
				seenMissing[row.CustomerEmail] = true
				missing = append(missing, row.CustomerEmail)
			}
			continue
		}
		orders = append(orders, models.Order{
			ExternalID:  row.ExternalID,
			CustomerID:  customerID,
			OrderDate:   parseDate(row.OrderDate),
			Status:      row.Status,
			TotalAmount: parseNumeric(row.TotalAmount),
		})
	}
	if len(missing) > 0 {
		return nil, &ReferentialViolation{Stage: StageOrders, Reference: "customer_email", Keys: missing}
	}
	return orders, nil
}

// firstKeys trims a violation key set for log output.
func firstKeys(keys []string) []string {
	if len(keys) > maxDiagnosticKeys {
		return keys[:maxDiagnosticKeys]
	}
	return keys
}
