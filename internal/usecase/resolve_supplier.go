package usecase

import (
	"context"

	"github.com/example/presta-export-service/internal/domain"
)

// ResolveSupplier — resolve the supplier display name owning a
// product. Supplier id "0" short-circuits to the house sentinel
// without the second remote hop.
type ResolveSupplier struct {
	Supplier domain.SupplierResolver
}

func (uc ResolveSupplier) Execute(ctx context.Context, store, productID string) (string, error) {
	id, err := uc.Supplier.SupplierID(ctx, store, productID)
	if err != nil {
		return "", &domain.StageError{Stage: domain.StageSupplierID, Err: err}
	}
	if id == domain.NoSupplierID {
		return domain.HouseSupplier, nil
	}
	name, err := uc.Supplier.SupplierName(ctx, store, id)
	if err != nil {
		return "", &domain.StageError{Stage: domain.StageSupplierName, Err: err}
	}
	return name, nil
}
