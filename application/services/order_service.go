package services

import (
	"context"
	"fmt"

	"crud-microservices/application/ports"
	"crud-microservices/domain/entities"
	"crud-microservices/domain/events"
	"crud-microservices/pkg/auth"
	apperrors "crud-microservices/pkg/errors"
	"crud-microservices/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderItemInput is one requested line.
type OrderItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

// OrderInput is the body of an order create request.
type OrderInput struct {
	UserID          string                   `json:"userId" validate:"required"`
	Products        []OrderItemInput         `json:"products" validate:"required,min=1,dive"`
	ShippingAddress entities.ShippingAddress `json:"shippingAddress" validate:"required"`
}

// OrderService places and reads orders.
type OrderService struct {
	base
}

// NewOrderService creates a new order service
func NewOrderService(store ports.RecordStore, publisher ports.EventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{base: newBase(store, publisher, logger)}
}

// reservation is stock taken from one product for one order.
type reservation struct {
	productID string
	quantity  int
}

func insufficientStock(p *entities.Product, requested int) error {
	available := 0
	if p.Stock != nil {
		available = *p.Stock
	}
	return apperrors.NewConflictError(fmt.Sprintf(
		"Insufficient stock for product %s. Available: %d, Requested: %d", p.Name, available, requested,
	)).WithCode(apperrors.CodeInsufficient)
}

// Create prices the order from current product data, reserves tracked stock
// with one conditional decrement per product and then writes the order. A
// failed reservation or write releases everything reserved so far.
func (s *OrderService) Create(ctx context.Context, caller *auth.CallerIdentity, in OrderInput) (*entities.Order, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if in.UserID != caller.UserID {
		return nil, apperrors.NewAuthorizationError("You can only create orders for yourself")
	}

	products := make(map[string]*entities.Product)
	requested := make(map[string]int)
	var sequence []string
	lines := make([]entities.OrderLine, 0, len(in.Products))

	for _, item := range in.Products {
		product, ok := products[item.ProductID]
		if !ok {
			var p entities.Product
			if err := s.store.Get(ctx, ports.TableProducts, item.ProductID, &p); err != nil {
				if apperrors.IsNotFound(err) {
					return nil, apperrors.NewNotFoundError(fmt.Sprintf("Product with ID %s", item.ProductID))
				}
				return nil, err
			}
			product = &p
			products[item.ProductID] = product
			sequence = append(sequence, item.ProductID)
		}

		requested[item.ProductID] += item.Quantity
		if product.TracksStock() && *product.Stock < requested[item.ProductID] {
			return nil, insufficientStock(product, requested[item.ProductID])
		}
		lines = append(lines, entities.NewOrderLine(product, item.Quantity))
	}

	now := s.now()
	var reserved []reservation
	for _, id := range sequence {
		product := products[id]
		if !product.TracksStock() {
			continue
		}
		qty := requested[id]
		err := s.store.Update(ctx, ports.TableProducts, id, ports.Update{
			Set:       map[string]interface{}{"updatedAt": now},
			Increment: map[string]int{"stock": -qty},
		}, nil, ports.AtLeast("stock", qty))
		if err != nil {
			s.release(ctx, reserved)
			if isConditionFailed(err) {
				return nil, insufficientStock(s.current(ctx, product), qty)
			}
			if apperrors.IsNotFound(err) {
				return nil, apperrors.NewNotFoundError(fmt.Sprintf("Product with ID %s", id))
			}
			return nil, err
		}
		reserved = append(reserved, reservation{productID: id, quantity: qty})
	}

	result := &entities.Order{
		ID:              uuid.NewString(),
		UserID:          caller.UserID,
		Products:        lines,
		ShippingAddress: in.ShippingAddress,
		TotalAmount:     entities.Total(lines),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Put(ctx, ports.TableOrders, result); err != nil {
		s.release(ctx, reserved)
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("orderId", result.ID),
		zap.String("userId", result.UserID),
		zap.Int("lines", len(lines)),
		zap.Float64("totalAmount", result.TotalAmount),
	)
	s.emit(ctx, events.OrderCreated, result)
	return result, nil
}

// current re-reads a product for the shortfall message, falling back to the
// copy already loaded.
func (s *OrderService) current(ctx context.Context, fallback *entities.Product) *entities.Product {
	var p entities.Product
	if err := s.store.Get(ctx, ports.TableProducts, fallback.ID, &p); err != nil {
		return fallback
	}
	return &p
}

// release gives reserved stock back. Failures are logged; there is nothing
// else left to undo them with.
func (s *OrderService) release(ctx context.Context, reserved []reservation) {
	for _, r := range reserved {
		err := s.store.Update(ctx, ports.TableProducts, r.productID, ports.Update{
			Set:       map[string]interface{}{"updatedAt": s.now()},
			Increment: map[string]int{"stock": r.quantity},
		}, nil)
		if err != nil {
			s.logger.Error("Failed to release stock reservation",
				zap.String("productId", r.productID),
				zap.Int("quantity", r.quantity),
				zap.Error(err),
			)
		}
	}
}

// Get returns an order placed by the caller.
func (s *OrderService) Get(ctx context.Context, caller *auth.CallerIdentity, id string) (*entities.Order, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	var order entities.Order
	if err := s.store.Get(ctx, ports.TableOrders, id, &order); err != nil {
		return nil, err
	}
	if !order.OwnedBy(caller.UserID) {
		return nil, apperrors.NewAuthorizationError("You can only access your own orders")
	}
	return &order, nil
}
