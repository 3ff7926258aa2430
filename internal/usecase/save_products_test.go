package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/presta-export-service/internal/adapter/cache"
	"github.com/example/presta-export-service/internal/domain"
)

type stubGateway struct {
	orders      []int64
	ordersErr   error
	details     map[int64]domain.OrderDetail
	detailErr   map[int64]error
	findCalls   int
	detailCalls int
}

func (g *stubGateway) FindOrderIDs(_ context.Context, _ string, _ domain.OrderFilter) ([]int64, error) {
	g.findCalls++
	return g.orders, g.ordersErr
}

func (g *stubGateway) OrderDetails(_ context.Context, _ string, id int64) (domain.OrderDetail, error) {
	g.detailCalls++
	if err := g.detailErr[id]; err != nil {
		return domain.OrderDetail{}, err
	}
	return g.details[id], nil
}

type stubResolver struct {
	ids       map[string]string // product id -> supplier id
	names     map[string]string // supplier id -> name
	idErr     error
	nameErr   error
	idCalls   int
	nameCalls int
}

func (r *stubResolver) SupplierID(_ context.Context, _, productID string) (string, error) {
	r.idCalls++
	if r.idErr != nil {
		return "", r.idErr
	}
	return r.ids[productID], nil
}

func (r *stubResolver) SupplierName(_ context.Context, _, supplierID string) (string, error) {
	r.nameCalls++
	if r.nameErr != nil {
		return "", r.nameErr
	}
	return r.names[supplierID], nil
}

type stubWriter struct {
	agg   domain.SupplierAggregate
	calls int
	err   error
}

func (w *stubWriter) Write(a domain.SupplierAggregate) ([]string, error) {
	w.calls++
	w.agg = a
	if w.err != nil {
		return nil, w.err
	}
	return []string{"products/out.csv"}, nil
}

func item(productID, name string, qty int, price string) domain.LineItem {
	return domain.LineItem{ProductID: productID, Name: name, Quantity: qty, Price: price}
}

func newMemCache() domain.SupplierCache { return cache.NewMemorySupplierCache() }

func TestSaveProductsRoundTrip(t *testing.T) {
	gw := &stubGateway{
		orders: []int64{1, 2},
		details: map[int64]domain.OrderDetail{
			1: {ID: 1, Items: []domain.LineItem{item("10", "Aspirin", 3, "120.000000")}},
			2: {ID: 2, Items: []domain.LineItem{item("10", "Aspirin", 5, "120.000000")}},
		},
	}
	res := &stubResolver{ids: map[string]string{"10": "7"}, names: map[string]string{"7": "Acme"}}
	w := &stubWriter{}

	uc := SaveProducts{Orders: gw, Supplier: res, Files: w, NewCache: newMemCache}
	sum, err := uc.Execute(context.Background(), "teststore", domain.OrderFilter{})
	require.NoError(t, err)

	require.Equal(t, 1, w.calls)
	rec := w.agg["Acme"]["Aspirin"]
	require.NotNil(t, rec)
	assert.Equal(t, 8, rec.Quantity)
	assert.Equal(t, "120", rec.Price)

	assert.Equal(t, 2, sum.Orders)
	assert.Equal(t, 1, sum.Suppliers)
	assert.Equal(t, []string{"products/out.csv"}, sum.Files)
	assert.NotEmpty(t, sum.RunID)
}

func TestSaveProductsAbortsOnDetailFailure(t *testing.T) {
	gw := &stubGateway{
		orders: []int64{1, 2, 3},
		details: map[int64]domain.OrderDetail{
			1: {ID: 1, Items: []domain.LineItem{item("10", "Aspirin", 1, "9.000000")}},
		},
		detailErr: map[int64]error{2: &domain.RemoteError{Status: 500, Body: "boom"}},
	}
	res := &stubResolver{ids: map[string]string{"10": "7"}, names: map[string]string{"7": "Acme"}}
	w := &stubWriter{}

	uc := SaveProducts{Orders: gw, Supplier: res, Files: w, NewCache: newMemCache}
	_, err := uc.Execute(context.Background(), "teststore", domain.OrderFilter{})
	require.Error(t, err)

	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageOrderDetails, stageErr.Stage)
	assert.Equal(t, int64(2), stageErr.OrderID)
	assert.Equal(t, "error while fetching order details with id 2", stageErr.Feedback())

	// aborts immediately: the third detail is never fetched, nothing is written
	assert.Equal(t, 2, gw.detailCalls)
	assert.Equal(t, 0, w.calls)
}

func TestSaveProductsStoreNotFound(t *testing.T) {
	gw := &stubGateway{ordersErr: &domain.StoreNotFoundError{Store: "nope"}}
	res := &stubResolver{}
	w := &stubWriter{}

	uc := SaveProducts{Orders: gw, Supplier: res, Files: w, NewCache: newMemCache}
	_, err := uc.Execute(context.Background(), "nope", domain.OrderFilter{})
	require.Error(t, err)

	var notFound *domain.StoreNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "nope")

	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageOrders, stageErr.Stage)

	assert.Equal(t, 0, gw.detailCalls)
	assert.Equal(t, 0, res.idCalls)
	assert.Equal(t, 0, res.nameCalls)
	assert.Equal(t, 0, w.calls)
}

func TestSaveProductsCachesSupplierLookups(t *testing.T) {
	gw := &stubGateway{
		orders: []int64{1, 2, 3},
		details: map[int64]domain.OrderDetail{
			1: {ID: 1, Items: []domain.LineItem{item("10", "Aspirin", 1, "9.000000")}},
			2: {ID: 2, Items: []domain.LineItem{item("10", "Aspirin", 2, "9.000000")}},
			3: {ID: 3, Items: []domain.LineItem{item("11", "Zinc Cream", 1, "5.000000")}},
		},
	}
	res := &stubResolver{
		ids:   map[string]string{"10": "7", "11": "7"},
		names: map[string]string{"7": "Acme"},
	}
	w := &stubWriter{}

	uc := SaveProducts{Orders: gw, Supplier: res, Files: w, NewCache: newMemCache}
	_, err := uc.Execute(context.Background(), "teststore", domain.OrderFilter{})
	require.NoError(t, err)

	// one two-hop resolution per distinct product id
	assert.Equal(t, 2, res.idCalls)
	assert.Equal(t, 2, res.nameCalls)
	assert.Equal(t, 3, w.agg["Acme"]["Aspirin"].Quantity)
}

func TestSaveProductsTagsCSVStage(t *testing.T) {
	gw := &stubGateway{
		orders: []int64{1},
		details: map[int64]domain.OrderDetail{
			1: {ID: 1, Items: []domain.LineItem{item("10", "Aspirin", 1, "9.000000")}},
		},
	}
	res := &stubResolver{ids: map[string]string{"10": "7"}, names: map[string]string{"7": "Acme"}}
	w := &stubWriter{err: errors.New("disk full")}

	uc := SaveProducts{Orders: gw, Supplier: res, Files: w, NewCache: newMemCache}
	_, err := uc.Execute(context.Background(), "teststore", domain.OrderFilter{})

	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageCSV, stageErr.Stage)
	assert.Equal(t, "error when creating csv files", stageErr.Feedback())
}

type stubNotifier struct {
	events []domain.ExportSummary
	err    error
}

func (n *stubNotifier) ExportCompleted(_ context.Context, sum domain.ExportSummary) error {
	n.events = append(n.events, sum)
	return n.err
}

func TestSaveProductsPublishesEvent(t *testing.T) {
	gw := &stubGateway{
		orders: []int64{1},
		details: map[int64]domain.OrderDetail{
			1: {ID: 1, Items: []domain.LineItem{item("10", "Aspirin", 1, "9.000000")}},
		},
	}
	res := &stubResolver{ids: map[string]string{"10": "7"}, names: map[string]string{"7": "Acme"}}
	n := &stubNotifier{}

	uc := SaveProducts{Orders: gw, Supplier: res, Files: &stubWriter{}, Notify: n, NewCache: newMemCache}
	sum, err := uc.Execute(context.Background(), "teststore", domain.OrderFilter{})
	require.NoError(t, err)

	require.Len(t, n.events, 1)
	assert.Equal(t, sum.RunID, n.events[0].RunID)
	assert.Equal(t, "teststore", n.events[0].Store)
}

func TestSaveProductsIgnoresNotifyFailure(t *testing.T) {
	gw := &stubGateway{orders: []int64{}}
	n := &stubNotifier{err: errors.New("nats down")}

	uc := SaveProducts{Orders: gw, Supplier: &stubResolver{}, Files: &stubWriter{}, Notify: n, NewCache: newMemCache}
	_, err := uc.Execute(context.Background(), "teststore", domain.OrderFilter{})
	require.NoError(t, err)
}

func TestResolveSupplierSentinel(t *testing.T) {
	// a failing name lookup must not matter when the id is "0"
	res := &stubResolver{
		ids:     map[string]string{"10": domain.NoSupplierID},
		nameErr: errors.New("must not be called"),
	}

	uc := ResolveSupplier{Supplier: res}
	name, err := uc.Execute(context.Background(), "teststore", "10")
	require.NoError(t, err)
	assert.Equal(t, domain.HouseSupplier, name)
	assert.Equal(t, 0, res.nameCalls)
}

func TestResolveSupplierStageTags(t *testing.T) {
	res := &stubResolver{idErr: &domain.RemoteError{Status: 503, Body: "down"}}
	uc := ResolveSupplier{Supplier: res}

	_, err := uc.Execute(context.Background(), "teststore", "10")
	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageSupplierID, stageErr.Stage)
	assert.Equal(t, "error when fetching supplier id", stageErr.Feedback())

	res = &stubResolver{ids: map[string]string{"10": "7"}, nameErr: &domain.RemoteError{Status: 503, Body: "down"}}
	uc = ResolveSupplier{Supplier: res}

	_, err = uc.Execute(context.Background(), "teststore", "10")
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageSupplierName, stageErr.Stage)
	assert.Equal(t, "error when fetching supplier name", stageErr.Feedback())
}
