package pipeline

import (
	"errors"
	"testing"
	"time"

	"sales-etl/internal/extract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCustomersDedupesFirstOccurrence(t *testing.T) {
	rows := []extract.RawCustomer{
		{Email: "a@example.com", FullName: "First Alice", SignupDate: "2023-01-15", Country: "US"},
		{Email: "b@example.com", FullName: "Bob", SignupDate: "2023-02-01", Country: "DE"},
		{Email: "a@example.com", FullName: "Second Alice", SignupDate: "2024-01-01", Country: "FR"},
	}

	customers := buildCustomers(rows)

	require.Len(t, customers, 2)
	assert.Equal(t, "First Alice", customers[0].FullName)
	assert.Equal(t, "US", customers[0].Country)
}

func TestBuildCustomersBadDateBecomesNull(t *testing.T) {
	customers := buildCustomers([]extract.RawCustomer{
		{Email: "a@example.com", FullName: "Alice", SignupDate: "yesterday", Country: "US"},
	})

	require.Len(t, customers, 1)
	assert.False(t, customers[0].SignupDate.Valid)
}

func TestBuildProductsBadPriceBecomesNull(t *testing.T) {
	products := buildProducts([]extract.RawProduct{
		{SKU: "SKU-1", Name: "Widget", Category: "tools", Price: "free"},
		{SKU: "SKU-2", Name: "Gadget", Category: "toys", Price: "12.50"},
		{SKU: "SKU-1", Name: "Widget Clone", Category: "tools", Price: "1.00"},
	})

	require.Len(t, products, 2)
	assert.False(t, products[0].Price.Valid)
	assert.Equal(t, 12.50, products[1].Price.Float64)
	assert.Equal(t, "Widget", products[0].Name)
}

func TestBuildOrdersResolvesCustomers(t *testing.T) {
	customerIDs := map[string]int64{"a@example.com": 7}
	orders, violation := buildOrders([]extract.RawOrder{
		{ExternalID: "EXT-1", CustomerEmail: "a@example.com", OrderDate: "2023-03-01", Status: "shipped", TotalAmount: "10.00"},
	}, customerIDs)

	require.Nil(t, violation)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(7), orders[0].CustomerID)
	assert.Equal(t, "EXT-1", orders[0].ExternalID)
	assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), orders[0].OrderDate.Time)
}

func TestBuildOrdersAllOrNothing(t *testing.T) {
	customerIDs := map[string]int64{"a@example.com": 1}
	orders, violation := buildOrders([]extract.RawOrder{
		{ExternalID: "EXT-1", CustomerEmail: "a@example.com"},
		{ExternalID: "EXT-2", CustomerEmail: "ghost@example.com"},
		{ExternalID: "EXT-3", CustomerEmail: "ghost@example.com"},
	}, customerIDs)

	assert.Nil(t, orders)
	require.NotNil(t, violation)
	assert.Equal(t, []string{"ghost@example.com"}, violation.Keys)
}

func TestBuildOrderItemsRecomputesLineTotal(t *testing.T) {
	items, err := buildOrderItems([]extract.RawOrderItem{
		{OrderExternalID: "EXT-1", SKU: "SKU-1", Quantity: "2", UnitPrice: "5.00"},
	}, map[string]int64{"SKU-1": 3}, map[string]int64{"EXT-1": 9})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(9), items[0].OrderID)
	assert.Equal(t, int64(3), items[0].ProductID)
	assert.Equal(t, 10.00, items[0].LineTotal)
}

func TestBuildOrderItemsReportsBothViolationKinds(t *testing.T) {
	_, err := buildOrderItems([]extract.RawOrderItem{
		{OrderExternalID: "EXT-404", SKU: "SKU-404", Quantity: "1", UnitPrice: "1.00"},
	}, map[string]int64{}, map[string]int64{})

	require.Error(t, err)
	var violation *ReferentialViolation
	require.ErrorAs(t, err, &violation)

	// Both checks ran; the combined error carries both key sets.
	assert.Contains(t, err.Error(), "SKU-404")
	assert.Contains(t, err.Error(), "EXT-404")
}

func TestBuildOrderItemsFatalOnNonNumericUnitPrice(t *testing.T) {
	_, err := buildOrderItems([]extract.RawOrderItem{
		{OrderExternalID: "EXT-1", SKU: "SKU-1", Quantity: "1", UnitPrice: "cheap"},
	}, map[string]int64{"SKU-1": 1}, map[string]int64{"EXT-1": 1})

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "unit_price", parseErr.Field)
	assert.Equal(t, "cheap", parseErr.Value)
}

func TestBuildOrderItemsViolationBeforeParseError(t *testing.T) {
	// Resolution runs over the whole batch before any coercion, so an
	// unresolved reference wins over a bad quantity elsewhere in the batch.
	_, err := buildOrderItems([]extract.RawOrderItem{
		{OrderExternalID: "EXT-1", SKU: "SKU-404", Quantity: "two", UnitPrice: "1.00"},
	}, map[string]int64{}, map[string]int64{"EXT-1": 1})

	var violation *ReferentialViolation
	assert.ErrorAs(t, err, &violation)
	var parseErr *ParseError
	assert.False(t, errors.As(err, &parseErr))
}

func TestBuildShipmentsResolvesOrders(t *testing.T) {
	shipments, violation := buildShipments([]extract.RawShipment{
		{OrderExternalID: "EXT-1", ShippedDate: "2023-03-03", DeliveryDate: "", Carrier: "DHL", TrackingNumber: ""},
	}, map[string]int64{"EXT-1": 4})

	require.Nil(t, violation)
	require.Len(t, shipments, 1)
	assert.Equal(t, int64(4), shipments[0].OrderID)
	assert.True(t, shipments[0].ShippedDate.Valid)
	assert.False(t, shipments[0].DeliveryDate.Valid)
	assert.Equal(t, "DHL", shipments[0].Carrier.String)
	assert.False(t, shipments[0].TrackingNumber.Valid)
}

func TestBuildShipmentsAllOrNothing(t *testing.T) {
	shipments, violation := buildShipments([]extract.RawShipment{
		{OrderExternalID: "EXT-1"},
		{OrderExternalID: "EXT-404"},
	}, map[string]int64{"EXT-1": 1})

	assert.Nil(t, shipments)
	require.NotNil(t, violation)
	assert.Equal(t, []string{"EXT-404"}, violation.Keys)
}
