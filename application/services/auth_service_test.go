package services

import (
	"context"
	"testing"

	"crud-microservices/application/ports"
	"crud-microservices/domain/entities"
	"crud-microservices/infrastructure/identity/local"
	"crud-microservices/pkg/auth"
	apperrors "crud-microservices/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "offline-test-secret"

func newOfflineAuthService(t *testing.T, f *fixture) *AuthService {
	t.Helper()
	tokens, err := auth.NewJWTGenerator(testSecret, 0, true)
	require.NoError(t, err)
	svc := NewAuthService(local.NewProvider(tokens, bcrypt.MinCost), f.store, zap.NewNop())
	svc.SetClock(fixedClock)
	return svc
}

func TestAuthService_OfflineSignUpSignIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newOfflineAuthService(t, f)

	signup, err := svc.SignUp(ctx, SignUpInput{Email: "jane@example.com", Password: "correct-horse", Name: "Jane"})
	require.NoError(t, err)
	assert.False(t, signup.NeedsConfirmation)
	require.NotNil(t, signup.User)
	assert.NotEmpty(t, signup.Token)

	verifier, err := auth.NewSharedSecretVerifier(testSecret, true)
	require.NoError(t, err)
	claims, err := verifier.Verify(ctx, signup.Token)
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, claims.Subject)
	assert.Equal(t, "jane@example.com", claims.Username)

	var stored entities.User
	require.NoError(t, f.store.Get(ctx, ports.TableUsers, signup.User.ID, &stored))
	require.NotNil(t, stored.Confirmed)
	assert.True(t, *stored.Confirmed)

	signin, err := svc.SignIn(ctx, SignInInput{Email: "jane@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, signin.Token)
	assert.Equal(t, signup.User.ID, signin.User.ID)

	_, err = svc.SignIn(ctx, SignInInput{Email: "jane@example.com", Password: "wrong-password"})
	assertErrorType(t, err, apperrors.ErrorTypeAuthentication)

	_, err = svc.SignUp(ctx, SignUpInput{Email: "jane@example.com", Password: "another-pass", Name: "Jane"})
	appErr := assertErrorType(t, err, apperrors.ErrorTypeValidation)
	assert.Equal(t, "User already exists", appErr.Message)

	profile, err := svc.Profile(ctx, caller(signup.User.ID))
	require.NoError(t, err)
	assert.Equal(t, "Jane", profile.Name)
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	f := newFixture()
	_, err := newOfflineAuthService(t, f).SignUp(context.Background(), SignUpInput{Email: "jane@example.com", Name: "Jane"})

	appErr := assertErrorType(t, err, apperrors.ErrorTypeValidation)
	assert.Equal(t, "password is required", appErr.Message)
	assert.Zero(t, f.count(t, ports.TableUsers))
}

func TestAuthService_ManagedConfirmFlagsUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	provider := new(MockIdentityProvider)
	provider.On("SignUp", mock.Anything, "jane@example.com", "correct-horse", "Jane").
		Return(&ports.SignUpResult{UserID: "cognito-sub", NeedsConfirmation: true}, nil)
	provider.On("ConfirmSignUp", mock.Anything, "jane@example.com", "123456").Return(nil)

	svc := NewAuthService(provider, f.store, zap.NewNop())

	signup, err := svc.SignUp(ctx, SignUpInput{Email: "jane@example.com", Password: "correct-horse", Name: "Jane"})
	require.NoError(t, err)
	assert.True(t, signup.NeedsConfirmation)
	assert.Equal(t, "cognito-sub", signup.UserID)
	assert.Empty(t, signup.Token)

	_, err = svc.Confirm(ctx, ConfirmInput{Email: "jane@example.com", ConfirmationCode: "123456"})
	require.NoError(t, err)

	var stored entities.User
	require.NoError(t, f.store.Get(ctx, ports.TableUsers, "cognito-sub", &stored))
	assert.True(t, *stored.Confirmed)
	provider.AssertExpectations(t)
}

func TestAuthService_Profile_MissingRecord(t *testing.T) {
	f := newFixture()
	_, err := newOfflineAuthService(t, f).Profile(context.Background(), caller("nobody"))

	appErr := assertErrorType(t, err, apperrors.ErrorTypeNotFound)
	assert.Equal(t, "User not found", appErr.Message)
}
