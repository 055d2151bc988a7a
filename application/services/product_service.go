package services

import (
	"context"

	"crud-microservices/application/ports"
	"crud-microservices/domain/entities"
	"crud-microservices/domain/events"
	"crud-microservices/pkg/auth"
	apperrors "crud-microservices/pkg/errors"
	"crud-microservices/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductInput is the body of product create and update requests.
type ProductInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=10,max=500"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Category    string  `json:"category" validate:"required,min=2,max=50"`
	Stock       *int    `json:"stock,omitempty" validate:"omitempty,min=0"`
}

// ProductService manages the catalogue. Any caller may read; only the
// creator may update or delete.
type ProductService struct {
	base
}

// NewProductService creates a new product service
func NewProductService(store ports.RecordStore, publisher ports.EventPublisher, logger *zap.Logger) *ProductService {
	return &ProductService{base: newBase(store, publisher, logger)}
}

func notProductOwner() error {
	return apperrors.NewAuthorizationError("You can only modify products you created")
}

// Create stores a product owned by the caller.
func (s *ProductService) Create(ctx context.Context, caller *auth.CallerIdentity, in ProductInput) (*entities.Product, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	now := s.now()
	product := &entities.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Stock:       in.Stock,
		CreatedAt:   now,
		CreatedBy:   caller.UserID,
		UpdatedAt:   now,
	}
	if err := s.store.Put(ctx, ports.TableProducts, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created", zap.String("productId", product.ID), zap.String("createdBy", caller.UserID))
	s.emit(ctx, events.ProductCreated, product)
	return product, nil
}

// Get returns any product.
func (s *ProductService) Get(ctx context.Context, caller *auth.CallerIdentity, id string) (*entities.Product, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	var product entities.Product
	if err := s.store.Get(ctx, ports.TableProducts, id, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns the whole catalogue.
func (s *ProductService) List(ctx context.Context, caller *auth.CallerIdentity) ([]entities.Product, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	products := []entities.Product{}
	if err := s.store.Scan(ctx, ports.TableProducts, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Update replaces the mutable fields. The ownership check is repeated as a
// write condition so a concurrent change of owner cannot slip through.
func (s *ProductService) Update(ctx context.Context, caller *auth.CallerIdentity, id string, in ProductInput) (*entities.Product, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	var existing entities.Product
	if err := s.store.Get(ctx, ports.TableProducts, id, &existing); err != nil {
		return nil, err
	}
	if !existing.OwnedBy(caller.UserID) {
		return nil, notProductOwner()
	}

	upd := ports.Update{Set: map[string]interface{}{
		"name":      in.Name,
		"price":     in.Price,
		"category":  in.Category,
		"updatedAt": s.now(),
	}}
	if in.Description != nil {
		upd.Set["description"] = *in.Description
	} else {
		upd.Remove = append(upd.Remove, "description")
	}
	if in.Stock != nil {
		upd.Set["stock"] = *in.Stock
	} else {
		upd.Remove = append(upd.Remove, "stock")
	}

	var product entities.Product
	err := s.store.Update(ctx, ports.TableProducts, id, upd, &product, ports.Equals("createdBy", caller.UserID))
	if err != nil {
		if isConditionFailed(err) {
			return nil, notProductOwner()
		}
		return nil, err
	}

	s.emit(ctx, events.ProductUpdated, &product)
	return &product, nil
}

// Delete removes a product the caller created.
func (s *ProductService) Delete(ctx context.Context, caller *auth.CallerIdentity, id string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}

	var existing entities.Product
	if err := s.store.Get(ctx, ports.TableProducts, id, &existing); err != nil {
		return err
	}
	if !existing.OwnedBy(caller.UserID) {
		return notProductOwner()
	}

	if err := s.store.Delete(ctx, ports.TableProducts, id, ports.Equals("createdBy", caller.UserID)); err != nil {
		if isConditionFailed(err) {
			return notProductOwner()
		}
		return err
	}

	s.logger.Info("Product deleted", zap.String("productId", id))
	s.emit(ctx, events.ProductDeleted, events.Deleted{ID: id})
	return nil
}
