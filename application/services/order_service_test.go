package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"crud-microservices/application/ports"
	"crud-microservices/domain/entities"
	"crud-microservices/domain/events"
	"crud-microservices/infrastructure/persistence/memory"
	apperrors "crud-microservices/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testAddress = entities.ShippingAddress{
	Street:  "1 Main St",
	City:    "Springfield",
	ZipCode: "12345",
	Country: "US",
}

func seedProduct(t *testing.T, store ports.RecordStore, id string, price float64, stock *int) {
	t.Helper()
	require.NoError(t, store.Put(context.Background(), ports.TableProducts, &entities.Product{
		ID:        id,
		Name:      "Product " + id,
		Price:     price,
		Category:  "Test",
		Stock:     stock,
		CreatedAt: fixedNow,
		CreatedBy: "seller",
		UpdatedAt: fixedNow,
	}))
}

func stockOf(t *testing.T, store ports.RecordStore, id string) *int {
	t.Helper()
	var p entities.Product
	require.NoError(t, store.Get(context.Background(), ports.TableProducts, id, &p))
	return p.Stock
}

func newOrderService(store ports.RecordStore, f *fixture) *OrderService {
	svc := NewOrderService(store, f.events, zap.NewNop())
	svc.SetClock(fixedClock)
	return svc
}

func TestOrderService_Create_ComputesTotalsAndReservesStock(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture()
	seedProduct(t, f.store, "p1", 10.5, intPtr(5))
	seedProduct(t, f.store, "p2", 2, nil)
	svc := newOrderService(f.store, f)

	// Act
	order, err := svc.Create(ctx, caller("buyer"), OrderInput{
		UserID: "buyer",
		Products: []OrderItemInput{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 3},
		},
		ShippingAddress: testAddress,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 27.0, order.TotalAmount)
	require.Len(t, order.Products, 2)
	assert.Equal(t, 21.0, order.Products[0].TotalPrice)
	assert.Equal(t, "Product p1", order.Products[0].ProductName)
	assert.Equal(t, 6.0, order.Products[1].TotalPrice)

	assert.Equal(t, 3, *stockOf(t, f.store, "p1"))
	assert.Nil(t, stockOf(t, f.store, "p2"))
	assert.Equal(t, 1, f.count(t, ports.TableOrders))
	assert.Equal(t, []string{events.OrderCreated}, f.eventTypes())

	got, err := svc.Get(ctx, caller("buyer"), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TotalAmount, got.TotalAmount)
}

func TestOrderService_Create_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedProduct(t, f.store, "p1", 10, intPtr(2))
	svc := newOrderService(f.store, f)

	_, err := svc.Create(ctx, caller("buyer"), OrderInput{
		UserID:          "buyer",
		Products:        []OrderItemInput{{ProductID: "p1", Quantity: 3}},
		ShippingAddress: testAddress,
	})

	appErr := assertErrorType(t, err, apperrors.ErrorTypeConflict)
	assert.Equal(t, apperrors.CodeInsufficient, appErr.Code)
	assert.Equal(t, 400, appErr.HTTPStatus)
	assert.Zero(t, f.count(t, ports.TableOrders))
	assert.Equal(t, 2, *stockOf(t, f.store, "p1"))
	assert.Empty(t, f.eventTypes())
}

func TestOrderService_Create_AggregatesQuantityPerProduct(t *testing.T) {
	f := newFixture()
	seedProduct(t, f.store, "p1", 10, intPtr(5))
	svc := newOrderService(f.store, f)

	_, err := svc.Create(context.Background(), caller("buyer"), OrderInput{
		UserID: "buyer",
		Products: []OrderItemInput{
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p1", Quantity: 3},
		},
		ShippingAddress: testAddress,
	})

	assertErrorType(t, err, apperrors.ErrorTypeConflict)
	assert.Equal(t, 5, *stockOf(t, f.store, "p1"))
}

func TestOrderService_Create_RejectsForeignUser(t *testing.T) {
	f := newFixture()
	seedProduct(t, f.store, "p1", 10, intPtr(5))

	_, err := newOrderService(f.store, f).Create(context.Background(), caller("buyer"), OrderInput{
		UserID:          "someone-else",
		Products:        []OrderItemInput{{ProductID: "p1", Quantity: 1}},
		ShippingAddress: testAddress,
	})

	assertErrorType(t, err, apperrors.ErrorTypeAuthorization)
	assert.Equal(t, 5, *stockOf(t, f.store, "p1"))
}

func TestOrderService_Create_UnknownProduct(t *testing.T) {
	f := newFixture()

	_, err := newOrderService(f.store, f).Create(context.Background(), caller("buyer"), OrderInput{
		UserID:          "buyer",
		Products:        []OrderItemInput{{ProductID: "nope", Quantity: 1}},
		ShippingAddress: testAddress,
	})

	appErr := assertErrorType(t, err, apperrors.ErrorTypeNotFound)
	assert.Equal(t, "Product with ID nope not found", appErr.Message)
}

func TestOrderService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   OrderInput
		message string
	}{
		{"no products", OrderInput{UserID: "buyer", ShippingAddress: testAddress}, "products is required"},
		{"zero quantity", OrderInput{
			UserID:          "buyer",
			Products:        []OrderItemInput{{ProductID: "p1", Quantity: 0}},
			ShippingAddress: testAddress,
		}, "products[0].quantity must be at least 1"},
		{"missing city", OrderInput{
			UserID:          "buyer",
			Products:        []OrderItemInput{{ProductID: "p1", Quantity: 1}},
			ShippingAddress: entities.ShippingAddress{Street: "x", ZipCode: "1", Country: "US"},
		}, "shippingAddress.city is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := newOrderService(f.store, f).Create(context.Background(), caller("buyer"), tt.input)

			appErr := assertErrorType(t, err, apperrors.ErrorTypeValidation)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestOrderService_Create_ConcurrentOrdersForLastUnit(t *testing.T) {
	f := newFixture()
	seedProduct(t, f.store, "last", 10, intPtr(1))
	svc := newOrderService(f.store, f)

	const buyers = 20
	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("buyer-%d", i)
			_, err := svc.Create(context.Background(), caller(id), OrderInput{
				UserID:          id,
				Products:        []OrderItemInput{{ProductID: "last", Quantity: 1}},
				ShippingAddress: testAddress,
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.IsConflict(err), "unexpected error: %v", err)
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, *stockOf(t, f.store, "last"))
	assert.Equal(t, 1, f.count(t, ports.TableOrders))
}

// lossyStore fails selected writes to exercise reservation release.
type lossyStore struct {
	*memory.RecordStore
	lostRace   map[string]bool
	failOrders bool
}

func (s *lossyStore) Update(ctx context.Context, table, id string, upd ports.Update, out interface{}, conds ...ports.Condition) error {
	if table == ports.TableProducts && s.lostRace[id] && len(conds) > 0 {
		return fmt.Errorf("%s: %w", table, ports.ErrConditionFailed)
	}
	return s.RecordStore.Update(ctx, table, id, upd, out, conds...)
}

func (s *lossyStore) Put(ctx context.Context, table string, record interface{}) error {
	if table == ports.TableOrders && s.failOrders {
		return apperrors.NewUpstreamError("dynamodb", errors.New("throttled"))
	}
	return s.RecordStore.Put(ctx, table, record)
}

func TestOrderService_Create_LostRaceReleasesEarlierReservations(t *testing.T) {
	f := newFixture()
	seedProduct(t, f.store, "p1", 10, intPtr(5))
	seedProduct(t, f.store, "p2", 10, intPtr(5))
	store := &lossyStore{RecordStore: f.store, lostRace: map[string]bool{"p2": true}}

	_, err := newOrderService(store, f).Create(context.Background(), caller("buyer"), OrderInput{
		UserID: "buyer",
		Products: []OrderItemInput{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
		ShippingAddress: testAddress,
	})

	appErr := assertErrorType(t, err, apperrors.ErrorTypeConflict)
	assert.Equal(t, apperrors.CodeInsufficient, appErr.Code)
	assert.Equal(t, 5, *stockOf(t, f.store, "p1"))
	assert.Equal(t, 5, *stockOf(t, f.store, "p2"))
	assert.Zero(t, f.count(t, ports.TableOrders))
}

func TestOrderService_Create_FailedWriteReleasesStock(t *testing.T) {
	f := newFixture()
	seedProduct(t, f.store, "p1", 10, intPtr(5))
	store := &lossyStore{RecordStore: f.store, failOrders: true}

	_, err := newOrderService(store, f).Create(context.Background(), caller("buyer"), OrderInput{
		UserID:          "buyer",
		Products:        []OrderItemInput{{ProductID: "p1", Quantity: 4}},
		ShippingAddress: testAddress,
	})

	assertErrorType(t, err, apperrors.ErrorTypeUpstream)
	assert.Equal(t, 5, *stockOf(t, f.store, "p1"))
	assert.Empty(t, f.eventTypes())
}

func TestOrderService_Get_Ownership(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedProduct(t, f.store, "p1", 10, nil)
	svc := newOrderService(f.store, f)
	order, err := svc.Create(ctx, caller("buyer"), OrderInput{
		UserID:          "buyer",
		Products:        []OrderItemInput{{ProductID: "p1", Quantity: 1}},
		ShippingAddress: testAddress,
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, caller("other"), order.ID)
	assertErrorType(t, err, apperrors.ErrorTypeAuthorization)

	_, err = svc.Get(ctx, caller("buyer"), "missing")
	appErr := assertErrorType(t, err, apperrors.ErrorTypeNotFound)
	assert.Equal(t, "Order not found", appErr.Message)
}
