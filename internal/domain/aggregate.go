package domain

import "time"

// HouseSupplier is the sentinel supplier name used when a product
// carries the placeholder supplier id "0".
const HouseSupplier = "CDP"

// NoSupplierID is the placeholder id the shop assigns to products
// without a real supplier.
const NoSupplierID = "0"

// priceSuffixLen is the width of the ".000000" tail the shop appends
// to price fields. Stripping it is a formatting quirk inherited from
// upstream, not currency math.
const priceSuffixLen = 7

func trimPriceSuffix(s string) string {
	if len(s) <= priceSuffixLen {
		return ""
	}
	return s[:len(s)-priceSuffixLen]
}

// ProductTotal — running record for one product under one supplier.
type ProductTotal struct {
	Quantity int
	Price    string
}

// SupplierAggregate groups line items by supplier name, then product
// name. Owned by a single aggregation run; not safe for sharing.
type SupplierAggregate map[string]map[string]*ProductTotal

func NewSupplierAggregate() SupplierAggregate {
	return make(SupplierAggregate)
}

// Fold merges one line item into the aggregate. A recurring product
// name under the same supplier accumulates quantity; the first-seen
// price wins and is never recomputed.
func (a SupplierAggregate) Fold(supplier string, it LineItem) {
	products, ok := a[supplier]
	if !ok {
		products = make(map[string]*ProductTotal)
		a[supplier] = products
	}
	if rec, ok := products[it.Name]; ok {
		rec.Quantity += it.Quantity
		return
	}
	products[it.Name] = &ProductTotal{Quantity: it.Quantity, Price: trimPriceSuffix(it.Price)}
}

// ExportSummary describes one completed aggregation run.
type ExportSummary struct {
	RunID      string    `json:"run_id"`
	Store      string    `json:"store"`
	Orders     int       `json:"orders"`
	Suppliers  int       `json:"suppliers"`
	Files      []string  `json:"files"`
	FinishedAt time.Time `json:"finished_at"`
}
