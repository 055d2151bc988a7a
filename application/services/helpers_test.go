package services

import (
	"context"
	"testing"
	"time"

	"crud-microservices/application/ports"
	"crud-microservices/domain/events"
	"crud-microservices/infrastructure/messaging/local"
	"crud-microservices/infrastructure/persistence/memory"
	"crud-microservices/pkg/auth"
	apperrors "crud-microservices/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func caller(id string) *auth.CallerIdentity {
	return &auth.CallerIdentity{UserID: id, Email: id + "@example.com", Name: id, Username: id}
}

// fixture wires services to in-memory collaborators.
type fixture struct {
	store  *memory.RecordStore
	events *local.Publisher
}

func newFixture() *fixture {
	return &fixture{
		store:  memory.NewRecordStore(),
		events: local.NewPublisher(zap.NewNop(), 100),
	}
}

func (f *fixture) eventTypes() []string {
	var types []string
	for _, env := range f.events.Published() {
		types = append(types, env.EventType)
	}
	return types
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	n, err := f.store.Count(context.Background(), table)
	require.NoError(t, err)
	return n
}

func assertErrorType(t *testing.T, err error, errType apperrors.ErrorType) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr, "expected an application error, got %v", err)
	assert.Equal(t, errType, appErr.Type)
	return appErr
}

// MockPublisher is a testify mock of ports.EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	args := m.Called(ctx, eventType, payload)
	return args.Error(0)
}

func (m *MockPublisher) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockNotifier is a testify mock of ports.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, n events.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotifier) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockIdentityProvider is a testify mock of ports.IdentityProvider.
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, email, password, name string) (*ports.SignUpResult, error) {
	args := m.Called(ctx, email, password, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.SignUpResult), args.Error(1)
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (*ports.SignInResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.SignInResult), args.Error(1)
}

func (m *MockIdentityProvider) ConfirmSignUp(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}
