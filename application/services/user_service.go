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

// UserInput is the body of user create and update requests.
type UserInput struct {
	Name  string  `json:"name" validate:"required,min=2,max=50"`
	Email string  `json:"email" validate:"required,email"`
	Age   *int    `json:"age,omitempty" validate:"omitempty,min=18,max=120"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,phone"`
}

// UserService manages user records. Only the user themself may read,
// update or delete their record.
type UserService struct {
	base
}

// NewUserService creates a new user service
func NewUserService(store ports.RecordStore, publisher ports.EventPublisher, logger *zap.Logger) *UserService {
	return &UserService{base: newBase(store, publisher, logger)}
}

func userOwnership(caller *auth.CallerIdentity, id string) error {
	if caller.UserID != id {
		return apperrors.NewAuthorizationError("You can only access your own user record")
	}
	return nil
}

// Create stores a new user with a generated id.
func (s *UserService) Create(ctx context.Context, caller *auth.CallerIdentity, in UserInput) (*entities.User, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	now := s.now()
	user := &entities.User{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Age:       in.Age,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Put(ctx, ports.TableUsers, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created", zap.String("userId", user.ID), zap.String("by", caller.UserID))
	s.emit(ctx, events.UserCreated, user)
	return user, nil
}

// Get returns the caller's own record.
func (s *UserService) Get(ctx context.Context, caller *auth.CallerIdentity, id string) (*entities.User, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := userOwnership(caller, id); err != nil {
		return nil, err
	}

	var user entities.User
	if err := s.store.Get(ctx, ports.TableUsers, id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update replaces the mutable fields of the caller's record. Optional fields
// left out of the body are removed.
func (s *UserService) Update(ctx context.Context, caller *auth.CallerIdentity, id string, in UserInput) (*entities.User, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if err := userOwnership(caller, id); err != nil {
		return nil, err
	}

	upd := ports.Update{Set: map[string]interface{}{
		"name":      in.Name,
		"email":     in.Email,
		"updatedAt": s.now(),
	}}
	if in.Age != nil {
		upd.Set["age"] = *in.Age
	} else {
		upd.Remove = append(upd.Remove, "age")
	}
	if in.Phone != nil {
		upd.Set["phone"] = *in.Phone
	} else {
		upd.Remove = append(upd.Remove, "phone")
	}

	var user entities.User
	if err := s.store.Update(ctx, ports.TableUsers, id, upd, &user); err != nil {
		return nil, err
	}

	s.emit(ctx, events.UserUpdated, &user)
	return &user, nil
}

// Delete removes the caller's record.
func (s *UserService) Delete(ctx context.Context, caller *auth.CallerIdentity, id string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if err := userOwnership(caller, id); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, ports.TableUsers, id); err != nil {
		return err
	}

	s.logger.Info("User deleted", zap.String("userId", id))
	s.emit(ctx, events.UserDeleted, events.Deleted{ID: id})
	return nil
}
