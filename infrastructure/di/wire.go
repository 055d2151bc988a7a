//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"crud-microservices/application/services"
	"crud-microservices/infrastructure/config"
	"crud-microservices/interfaces/http/rest"
	"crud-microservices/interfaces/http/rest/handlers"

	"github.com/google/wire"
)

// AWSSet provides the SDK clients.
var AWSSet = wire.NewSet(
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideS3Client,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideSQSClient,
	ProvideCognitoClient,
)

// InfrastructureSet selects the adapters for offline or managed mode.
var InfrastructureSet = wire.NewSet(
	ProvideLogger,
	ProvideTracer,
	ProvidePrometheus,
	ProvideMetrics,
	ProvideRecordStore,
	ProvideObjectStore,
	ProvideEventPublisher,
	ProvideNotifier,
	ProvideKeyCache,
	ProvideTokenGenerator,
	ProvideIdentityProvider,
	ProvideExtractor,
)

// ServiceSet provides the application services.
var ServiceSet = wire.NewSet(
	services.NewUserService,
	services.NewProductService,
	services.NewOrderService,
	services.NewFileService,
	services.NewAuthService,
	services.NewAdminService,
	services.NewHealthService,
	services.NewNotificationService,
)

// HTTPSet provides the handlers and the router.
var HTTPSet = wire.NewSet(
	handlers.NewUserHandler,
	handlers.NewProductHandler,
	handlers.NewOrderHandler,
	handlers.NewFileHandler,
	handlers.NewAuthHandler,
	handlers.NewAdminHandler,
	handlers.NewHealthHandler,
	wire.Struct(new(rest.Handlers), "*"),
	ProvideErrorHandler,
	ProvideRouterOptions,
	rest.NewRouter,
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	AWSSet,
	InfrastructureSet,
	ServiceSet,
	HTTPSet,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
