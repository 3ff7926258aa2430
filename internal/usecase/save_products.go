package usecase

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/presta-export-service/internal/domain"
)

// SaveProducts — the aggregation pipeline: discover orders, fetch
// each order's detail, resolve every line item's supplier and fold
// (supplier, product) pairs into quantity totals, then write one CSV
// per supplier. Strictly sequential; the first error aborts the run
// tagged with its stage.
type SaveProducts struct {
	Orders   domain.OrderGateway
	Supplier domain.SupplierResolver
	Files    domain.ExportWriter
	Notify   domain.ExportNotifier       // optional
	NewCache func() domain.SupplierCache // optional; fresh per run
}

func (uc SaveProducts) Execute(ctx context.Context, store string, f domain.OrderFilter) (domain.ExportSummary, error) {
	var sum domain.ExportSummary

	ids, err := uc.Orders.FindOrderIDs(ctx, store, f)
	if err != nil {
		return sum, &domain.StageError{Stage: domain.StageOrders, Err: err}
	}

	resolve := ResolveSupplier{Supplier: uc.Supplier}
	var cache domain.SupplierCache
	if uc.NewCache != nil {
		cache = uc.NewCache()
	}

	agg := domain.NewSupplierAggregate()
	for _, id := range ids {
		det, err := uc.Orders.OrderDetails(ctx, store, id)
		if err != nil {
			return sum, &domain.StageError{Stage: domain.StageOrderDetails, OrderID: id, Err: err}
		}
		for _, it := range det.Items {
			name, err := uc.supplierFor(ctx, resolve, cache, store, it.ProductID)
			if err != nil {
				return sum, err
			}
			agg.Fold(name, it)
		}
	}

	files, err := uc.Files.Write(agg)
	if err != nil {
		return sum, &domain.StageError{Stage: domain.StageCSV, Err: err}
	}

	sum = domain.ExportSummary{
		RunID:      uuid.NewString(),
		Store:      store,
		Orders:     len(ids),
		Suppliers:  len(agg),
		Files:      files,
		FinishedAt: time.Now().UTC(),
	}
	if uc.Notify != nil {
		if err := uc.Notify.ExportCompleted(ctx, sum); err != nil {
			log.Printf("export event publish: %v", err)
		}
	}
	return sum, nil
}

// supplierFor resolves through the per-run cache. The same product
// recurs across many orders in realistic data, so the cache saves
// the two remote hops without changing output.
func (uc SaveProducts) supplierFor(ctx context.Context, resolve ResolveSupplier, cache domain.SupplierCache, store, productID string) (string, error) {
	if cache != nil {
		if name, ok := cache.Get(productID); ok {
			return name, nil
		}
	}
	name, err := resolve.Execute(ctx, store, productID)
	if err != nil {
		return "", err
	}
	if cache != nil {
		cache.Set(productID, name)
	}
	return name, nil
}
