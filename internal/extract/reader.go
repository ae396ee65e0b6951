package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// SchemaError reports required columns missing from an extract's header row.
type SchemaError struct {
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("extract %s missing columns: %s", e.Path, strings.Join(e.Missing, ", "))
}

// RawCustomer is one unparsed row of the customers extract.
type RawCustomer struct {
	Email      string
	FullName   string
	SignupDate string
	Country    string
}

// RawProduct is one unparsed row of the products extract.
type RawProduct struct {
	SKU      string
	Name     string
	Category string
	Price    string
}

// RawOrder is one unparsed row of the orders extract.
type RawOrder struct {
	ExternalID    string
	CustomerEmail string
	OrderDate     string
	Status        string
	TotalAmount   string
}

// RawOrderItem is one unparsed row of the order_items extract.
type RawOrderItem struct {
	OrderExternalID string
	SKU             string
	Quantity        string
	UnitPrice       string
}

// RawShipment is one unparsed row of the shipments extract.
type RawShipment struct {
	OrderExternalID string
	ShippedDate     string
	DeliveryDate    string
	Carrier         string
	TrackingNumber  string
}

// readTable reads a delimited file and verifies that every required column is
// present in the header. It returns one map per data row keyed by column
// name. Extra columns are carried through and ignored by callers. No value
// coercion happens here; that is each loader's job.
func readTable(path string, required []string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, &SchemaError{Path: path, Missing: append([]string(nil), required...)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}

	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &SchemaError{Path: path, Missing: missing}
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for col, i := range index {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadCustomers reads the customers extract.
func ReadCustomers(path string) ([]RawCustomer, error) {
	rows, err := readTable(path, []string{"email", "full_name", "signup_date", "country"})
	if err != nil {
		return nil, err
	}
	customers := make([]RawCustomer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, RawCustomer{
			Email:      row["email"],
			FullName:   row["full_name"],
			SignupDate: row["signup_date"],
			Country:    row["country"],
		})
	}
	return customers, nil
}

// ReadProducts reads the products extract.
func ReadProducts(path string) ([]RawProduct, error) {
	rows, err := readTable(path, []string{"sku", "name", "category", "price"})
	if err != nil {
		return nil, err
	}
	products := make([]RawProduct, 0, len(rows))
	for _, row := range rows {
		products = append(products, RawProduct{
			SKU:      row["sku"],
			Name:     row["name"],
			Category: row["category"],
			Price:    row["price"],
		})
	}
	return products, nil
}

// ReadOrders reads the orders extract.
func ReadOrders(path string) ([]RawOrder, error) {
	rows, err := readTable(path, []string{"order_external_id", "customer_email", "order_date", "status", "total_amount"})
	if err != nil {
		return nil, err
	}
	orders := make([]RawOrder, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, RawOrder{
			ExternalID:    row["order_external_id"],
			CustomerEmail: row["customer_email"],
			OrderDate:     row["order_date"],
			Status:        row["status"],
			TotalAmount:   row["total_amount"],
		})
	}
	return orders, nil
}

// ReadOrderItems reads the order_items extract.
func ReadOrderItems(path string) ([]RawOrderItem, error) {
	rows, err := readTable(path, []string{"order_external_id", "sku", "quantity", "unit_price"})
	if err != nil {
		return nil, err
	}
	items := make([]RawOrderItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, RawOrderItem{
			OrderExternalID: row["order_external_id"],
			SKU:             row["sku"],
			Quantity:        row["quantity"],
			UnitPrice:       row["unit_price"],
		})
	}
	return items, nil
}

// ReadShipments reads the shipments extract. The second return value reports
// whether the file exists at all; an absent shipments extract is a skipped
// stage, not an error.
func ReadShipments(path string) ([]RawShipment, bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, false, nil
	}
	rows, err := readTable(path, []string{"order_external_id", "shipped_date", "delivery_date", "carrier", "tracking_number"})
	if err != nil {
		return nil, true, err
	}
	shipments := make([]RawShipment, 0, len(rows))
	for _, row := range rows {
		shipments = append(shipments, RawShipment{
			OrderExternalID: row["order_external_id"],
			ShippedDate:     row["shipped_date"],
			DeliveryDate:    row["delivery_date"],
			Carrier:         row["carrier"],
			TrackingNumber:  row["tracking_number"],
		})
	}
	return shipments, true, nil
}
