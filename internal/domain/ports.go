package domain

import "context"

// OrderGateway — port to the shop's order endpoints.
type OrderGateway interface {
	FindOrderIDs(ctx context.Context, store string, f OrderFilter) ([]int64, error)
	OrderDetails(ctx context.Context, store string, id int64) (OrderDetail, error)
}

// SupplierResolver — port for the two-hop supplier lookup:
// product id to supplier id, supplier id to display name.
type SupplierResolver interface {
	SupplierID(ctx context.Context, store, productID string) (string, error)
	SupplierName(ctx context.Context, store, supplierID string) (string, error)
}

// SupplierCache — per-run product→supplier-name cache. A fresh one
// is created for every aggregation run.
type SupplierCache interface {
	Get(productID string) (string, bool)
	Set(productID, name string)
}

// ExportWriter — port for serializing one run's aggregate. Returns
// the paths written.
type ExportWriter interface {
	Write(a SupplierAggregate) ([]string, error)
}

// ExportNotifier — port for announcing a completed run. Best-effort;
// failures are logged, never propagated.
type ExportNotifier interface {
	ExportCompleted(ctx context.Context, sum ExportSummary) error
}

// InvoiceFetcher — port for retrieving an order's invoice PDF.
// Returns the path the document was saved to.
type InvoiceFetcher interface {
	FetchInvoice(ctx context.Context, store string, orderID int64) (string, error)
}

// QueryRunner — read-only port to the relational mirror database.
type QueryRunner interface {
	FetchRows(ctx context.Context, query string) ([]map[string]any, error)
}
