package services

import (
	"context"
	"testing"

	"crud-microservices/application/ports"
	"crud-microservices/domain/entities"
	"crud-microservices/domain/events"
	apperrors "crud-microservices/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProductService(f *fixture) *ProductService {
	svc := NewProductService(f.store, f.events, zap.NewNop())
	svc.SetClock(fixedClock)
	return svc
}

func validProduct() ProductInput {
	return ProductInput{
		Name:        "Mechanical Keyboard",
		Description: strPtr("A keyboard with tactile switches"),
		Price:       89.99,
		Category:    "Peripherals",
		Stock:       intPtr(10),
	}
}

func TestProductService_Create_StampsOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newProductService(f)

	product, err := svc.Create(ctx, caller("seller"), validProduct())

	require.NoError(t, err)
	assert.Equal(t, "seller", product.CreatedBy)

	got, err := svc.Get(ctx, caller("buyer"), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Name, got.Name)
	assert.Equal(t, 10, *got.Stock)
	assert.Equal(t, []string{events.ProductCreated}, f.eventTypes())
}

func TestProductService_Create_NegativePrice(t *testing.T) {
	f := newFixture()
	in := validProduct()
	in.Price = -5

	_, err := newProductService(f).Create(context.Background(), caller("seller"), in)

	appErr := assertErrorType(t, err, apperrors.ErrorTypeValidation)
	assert.Equal(t, "price must be greater than 0", appErr.Message)
	assert.Zero(t, f.count(t, ports.TableProducts))
	assert.Empty(t, f.eventTypes())
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newProductService(f)

	empty, err := svc.List(ctx, caller("u1"))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.Create(ctx, caller("a"), validProduct())
	require.NoError(t, err)
	_, err = svc.Create(ctx, caller("b"), validProduct())
	require.NoError(t, err)

	all, err := svc.List(ctx, caller("u1"))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProductService_ForeignUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newProductService(f)
	product, err := svc.Create(ctx, caller("seller"), validProduct())
	require.NoError(t, err)

	in := validProduct()
	in.Price = 1
	_, err = svc.Update(ctx, caller("intruder"), product.ID, in)
	assertErrorType(t, err, apperrors.ErrorTypeAuthorization)

	err = svc.Delete(ctx, caller("intruder"), product.ID)
	assertErrorType(t, err, apperrors.ErrorTypeAuthorization)

	var stored entities.Product
	require.NoError(t, f.store.Get(ctx, ports.TableProducts, product.ID, &stored))
	assert.Equal(t, 89.99, stored.Price)
	assert.Equal(t, []string{events.ProductCreated}, f.eventTypes())
}

func TestProductService_Update_ByOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newProductService(f)
	product, err := svc.Create(ctx, caller("seller"), validProduct())
	require.NoError(t, err)

	in := validProduct()
	in.Price = 79.5
	in.Stock = nil
	updated, err := svc.Update(ctx, caller("seller"), product.ID, in)

	require.NoError(t, err)
	assert.Equal(t, 79.5, updated.Price)
	assert.Nil(t, updated.Stock)
	assert.Equal(t, "seller", updated.CreatedBy)
}

func TestProductService_Update_Missing(t *testing.T) {
	f := newFixture()
	_, err := newProductService(f).Update(context.Background(), caller("seller"), "missing", validProduct())

	appErr := assertErrorType(t, err, apperrors.ErrorTypeNotFound)
	assert.Equal(t, "Product not found", appErr.Message)
}

func TestProductService_Delete_ByOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newProductService(f)
	product, err := svc.Create(ctx, caller("seller"), validProduct())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, caller("seller"), product.ID))

	assert.Zero(t, f.count(t, ports.TableProducts))
	assert.Equal(t, []string{events.ProductCreated, events.ProductDeleted}, f.eventTypes())
}
