package pipeline

import (
	"context"

	"sales-etl/internal/extract"
	"sales-etl/internal/models"
	"sales-etl/internal/util"

	"go.uber.org/zap"
)

// loadShipments is the one optional stage: an absent extract file skips it
// entirely. When present, unresolved order references are just as fatal as
// in the order and order-item stages.
func (p *Pipeline) loadShipments(ctx context.Context, orderIDs map[string]int64) (int, bool, error) {
	rows, present, err := extract.ReadShipments(p.extract.ShipmentsCSV)
	if err != nil {
		return 0, present, err
	}
	if !present {
		p.logger.Info("Shipments extract absent, skipping stage",
			zap.String("path", p.extract.ShipmentsCSV))
		return 0, false, nil
	}

	shipments, violation := buildShipments(rows, orderIDs)
	if violation != nil {
		util.ReferentialViolationsTotal.WithLabelValues(StageShipments, "order_external_id").
			Add(float64(len(violation.Keys)))
		p.logger.Error("Shipments reference missing orders",
			zap.Strings("external_ids", firstKeys(violation.Keys)),
			zap.Int("total", len(violation.Keys)))
		return 0, true, violation
	}

	if err := p.store.InsertShipments(ctx, shipments); err != nil {
		return 0, true, &StorageError{Op: "insert shipments", Err: err}
	}

	util.RowsLoadedTotal.WithLabelValues("shipments").Add(float64(len(shipments)))
	p.logger.Info("Inserted shipments", zap.Int("count", len(shipments)))
	return len(shipments), true, nil
}

// buildShipments resolves order references all-or-nothing. The four
// descriptive fields are each independently nullable.
func buildShipments(rows []extract.RawShipment, orderIDs map[string]int64) ([]models.Shipment, *ReferentialViolation) {
	var missing []string
	seenMissing := make(map[string]bool)
	shipments := make([]models.Shipment, 0, len(rows))
	for _, row := range rows {
		orderID, ok := orderIDs[row.OrderExternalID]
		if !ok {
			if !seenMissing[row.OrderExternalID] {
				seenMissing[row.OrderExternalID] = true
				missing = append(missing, row.OrderExternalID)
			}
			continue
		}
		shipments = append(shipments, models.Shipment{
			OrderID:        orderID,
			ShippedDate:    parseDate(row.ShippedDate),
			DeliveryDate:   parseDate(row.DeliveryDate),
			Carrier:        nullableString(row.Carrier),
			TrackingNumber: nullableString(row.TrackingNumber),
		})
	}
	if len(missing) > 0 {
		return nil, &ReferentialViolation{Stage: StageShipments, Reference: "order_external_id", Keys: missing}
	}
	return shipments, nil
}
