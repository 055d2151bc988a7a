package services

import (
	"context"
	"strings"
	"time"

	"crud-microservices/application/ports"
	"crud-microservices/domain/entities"
	"crud-microservices/pkg/auth"
	apperrors "crud-microservices/pkg/errors"
	"crud-microservices/pkg/utils"

	"go.uber.org/zap"
)

// SignUpInput registers an account.
type SignUpInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"required,min=2,max=50"`
}

// SignInInput authenticates an account.
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ConfirmInput confirms a managed account.
type ConfirmInput struct {
	Email            string `json:"email" validate:"required,email"`
	ConfirmationCode string `json:"confirmationCode" validate:"required"`
}

// AccountSummary is the public part of an account.
type AccountSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SignUpResponse is returned by SignUp. Offline accounts get a token at once;
// managed ones must be confirmed first.
type SignUpResponse struct {
	Message           string          `json:"message"`
	User              *AccountSummary `json:"user,omitempty"`
	UserID            string          `json:"userId,omitempty"`
	Token             string          `json:"token,omitempty"`
	NeedsConfirmation bool            `json:"needsConfirmation"`
}

// SignInResponse is returned by SignIn.
type SignInResponse struct {
	Message      string          `json:"message"`
	Token        string          `json:"token,omitempty"`
	User         *AccountSummary `json:"user,omitempty"`
	AccessToken  string          `json:"accessToken,omitempty"`
	IDToken      string          `json:"idToken,omitempty"`
	RefreshToken string          `json:"refreshToken,omitempty"`
}

// Profile is the caller's stored user record.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageResponse carries a bare confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthService fronts the identity provider and keeps a user record for
// every account it creates.
type AuthService struct {
	base
	identity ports.IdentityProvider
}

// NewAuthService creates a new auth service
func NewAuthService(identity ports.IdentityProvider, store ports.RecordStore, logger *zap.Logger) *AuthService {
	return &AuthService{
		base:     newBase(store, nil, logger),
		identity: identity,
	}
}

// SignUp creates the account and its user record.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*SignUpResponse, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	result, err := s.identity.SignUp(ctx, in.Email, in.Password, in.Name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	confirmed := !result.NeedsConfirmation
	user := &entities.User{
		ID:        result.UserID,
		Name:      in.Name,
		Email:     in.Email,
		Confirmed: &confirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Put(ctx, ports.TableUsers, user); err != nil {
		return nil, err
	}

	s.logger.Info("Account created",
		zap.String("userId", result.UserID),
		zap.Bool("needsConfirmation", result.NeedsConfirmation),
	)

	if result.NeedsConfirmation {
		return &SignUpResponse{
			Message:           "User created successfully. Please check your email for verification.",
			UserID:            result.UserID,
			NeedsConfirmation: true,
		}, nil
	}
	return &SignUpResponse{
		Message: "User created successfully",
		User:    &AccountSummary{ID: user.ID, Email: user.Email, Name: user.Name},
		Token:   result.Token,
	}, nil
}

// SignIn exchanges credentials for tokens.
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (*SignInResponse, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	result, err := s.identity.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	resp := &SignInResponse{
		Message:      "Sign in successful",
		Token:        result.Token,
		AccessToken:  result.AccessToken,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
	}
	if result.UserID != "" {
		resp.User = &AccountSummary{ID: result.UserID, Email: result.Email, Name: result.Name}
	}
	return resp, nil
}

// Confirm confirms the account and flags its user record. Records are keyed
// by id, so the record is located by scanning for the email.
func (s *AuthService) Confirm(ctx context.Context, in ConfirmInput) (*MessageResponse, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	if err := s.identity.ConfirmSignUp(ctx, in.Email, in.ConfirmationCode); err != nil {
		return nil, err
	}

	var users []entities.User
	if err := s.store.Scan(ctx, ports.TableUsers, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		if !strings.EqualFold(u.Email, in.Email) {
			continue
		}
		err := s.store.Update(ctx, ports.TableUsers, u.ID, ports.Update{Set: map[string]interface{}{
			"confirmed": true,
			"updatedAt": s.now(),
		}}, nil)
		if err != nil && !apperrors.IsNotFound(err) {
			return nil, err
		}
	}

	return &MessageResponse{Message: "Email confirmation successful"}, nil
}

// Profile returns the caller's user record.
func (s *AuthService) Profile(ctx context.Context, caller *auth.CallerIdentity) (*Profile, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	var user entities.User
	if err := s.store.Get(ctx, ports.TableUsers, caller.UserID, &user); err != nil {
		return nil, err
	}
	return &Profile{ID: user.ID, Email: user.Email, Name: user.Name, CreatedAt: user.CreatedAt}, nil
}
