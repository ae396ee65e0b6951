package pipeline

import (
	"context"
	"errors"
	"strconv"

	"sales-etl/internal/extract"
	"sales-etl/internal/models"
	"sales-etl/internal/util"

	"go.uber.org/zap"
)

// loadOrderItems resolves each item's product by SKU and its order by
// external id. Both checks run over the whole batch; either failing aborts
// before any row is written. Line totals are always recomputed from quantity
// and unit price, never trusted from the extract.
func (p *Pipeline) loadOrderItems(ctx context.Context, orderIDs map[string]int64) (int, error) {
	rows, err := extract.ReadOrderItems(p.extract.OrderItemsCSV)
	if err != nil {
		return 0, err
	}

	productIDs, err := p.store.ProductIDsBySKU(ctx)
	if err != nil {
		return 0, &StorageError{Op: "read product id mapping", Err: err}
	}

	items, err := buildOrderItems(rows, productIDs, orderIDs)
	if err != nil {
		var violation *ReferentialViolation
		if errors.As(err, &violation) {
			util.ReferentialViolationsTotal.WithLabelValues(StageOrderItems, violation.Reference).
				Add(float64(len(violation.Keys)))
			p.logger.Error("Order items reference missing rows",
				zap.String("reference", violation.Reference),
				zap.Strings("keys", firstKeys(violation.Keys)),
				zap.Int("total", len(violation.Keys)))
		}
		return 0, err
	}

	if err := p.store.InsertOrderItems(ctx, items); err != nil {
		return 0, &StorageError{Op: "insert order items", Err: err}
	}

	util.RowsLoadedTotal.WithLabelValues("order_items").Add(float64(len(items)))
	p.logger.Info("Inserted order items", zap.Int("count", len(items)))
	return len(items), nil
}

// buildOrderItems runs the two resolution joins over the full batch, then
// coerces quantity and unit_price. Unlike the date and price fields of the
// leaf stages, a non-numeric quantity or unit_price here is fatal, not NULL.
func buildOrderItems(rows []extract.RawOrderItem, productIDs, orderIDs map[string]int64) ([]models.OrderItem, error) {
	var missingSKUs, missingOrders []string
	seenSKU := make(map[string]bool)
	seenOrder := make(map[string]bool)
	for _, row := range rows {
		if _, ok := productIDs[row.SKU]; !ok && !seenSKU[row.SKU] {
			seenSKU[row.SKU] = true
			missingSKUs = append(missingSKUs, row.SKU)
		}
		if _, ok := orderIDs[row.OrderExternalID]; !ok && !seenOrder[row.OrderExternalID] {
			seenOrder[row.OrderExternalID] = true
			missingOrders = append(missingOrders, row.OrderExternalID)
		}
	}

	var violations []error
	if len(missingSKUs) > 0 {
		violations = append(violations, &ReferentialViolation{
			Stage: StageOrderItems, Reference: "sku", Keys: missingSKUs})
	}
	if len(missingOrders) > 0 {
		violations = append(violations, &ReferentialViolation{
			Stage: StageOrderItems, Reference: "order_external_id", Keys: missingOrders})
	}
	if len(violations) > 0 {
		return nil, errors.Join(violations...)
	}

	items := make([]models.OrderItem, 0, len(rows))
	for i, row := range rows {
		quantity, err := strconv.Atoi(row.Quantity)
		if err != nil {
			return nil, &ParseError{Stage: StageOrderItems, Field: "quantity", Value: row.Quantity, Row: i}
		}
		unitPrice, err := strconv.ParseFloat(row.UnitPrice, 64)
		if err != nil {
			return nil, &ParseError{Stage: StageOrderItems, Field: "unit_price", Value: row.UnitPrice, Row: i}
		}
		items = append(items, models.OrderItem{
			OrderID:   orderIDs[row.OrderExternalID],
			ProductID: productIDs[row.SKU],
			Quantity:  quantity,
			UnitPrice: unitPrice,
			LineTotal: float64(quantity) * unitPrice,
		})
	}
	return items, nil
}
