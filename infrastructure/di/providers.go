package di

import (
	"context"
	"fmt"
	"time"

	"crud-microservices/application/ports"
	"crud-microservices/infrastructure/config"
	"crud-microservices/infrastructure/identity/cognito"
	localidentity "crud-microservices/infrastructure/identity/local"
	"crud-microservices/infrastructure/messaging/eventbridge"
	localmessaging "crud-microservices/infrastructure/messaging/local"
	"crud-microservices/infrastructure/messaging/metered"
	"crud-microservices/infrastructure/messaging/sqs"
	"crud-microservices/infrastructure/persistence/dynamodb"
	"crud-microservices/infrastructure/persistence/memory"
	"crud-microservices/infrastructure/storage/s3"
	"crud-microservices/interfaces/http/rest"
	"crud-microservices/pkg/auth"
	"crud-microservices/pkg/cache"
	apperrors "crud-microservices/pkg/errors"
	"crud-microservices/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awscognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/bcrypt"
)

const serviceName = "crud-microservices"

// ProvideLogger creates a new logger instance. The cleanup flushes it.
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build(zap.Fields(
		zap.String("service", serviceName),
		zap.String("environment", cfg.Environment),
	))
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideTracer creates the X-Ray tracer. It is inert unless tracing is enabled.
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(serviceName, cfg.EnableTracing && !cfg.Offline)
}

// ProvideAWSConfig creates AWS configuration with every client traced.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config, tracer *observability.Tracer) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	tracer.InstrumentAWS(&awsCfg)
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideS3Client creates an S3 client, path style when an endpoint such as
// LocalStack is configured.
func ProvideS3Client(awsCfg aws.Config, cfg *config.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideSQSClient creates an SQS client
func ProvideSQSClient(awsCfg aws.Config) *awssqs.Client {
	return awssqs.NewFromConfig(awsCfg)
}

// ProvideCognitoClient creates a Cognito user pool client
func ProvideCognitoClient(awsCfg aws.Config) *awscognito.Client {
	return awscognito.NewFromConfig(awsCfg)
}

// ProvideRecordStore selects the in-memory store offline and DynamoDB otherwise.
func ProvideRecordStore(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) ports.RecordStore {
	if cfg.Offline {
		logger.Info("Using in-memory record store")
		return memory.NewRecordStore()
	}
	return dynamodb.NewRecordStore(client, cfg.Tables(), logger)
}

// ProvideObjectStore uses S3 in managed mode and in offline mode with an S3
// endpoint; otherwise files live in memory.
func ProvideObjectStore(cfg *config.Config, client *awss3.Client, logger *zap.Logger) ports.ObjectStore {
	if cfg.Offline && cfg.S3Endpoint == "" {
		logger.Info("Using in-memory object store")
		return memory.NewObjectStore(cfg.Bucket, "http://localhost"+cfg.ServerAddress)
	}
	return s3.NewObjectStore(client, awss3.NewPresignClient(client), s3.Config{
		Bucket:   cfg.Bucket,
		Region:   cfg.AWSRegion,
		Endpoint: cfg.S3Endpoint,
	}, logger)
}

// ProvidePrometheus creates the /metrics collectors, or nil when metrics are off.
func ProvidePrometheus(cfg *config.Config) *observability.Prometheus {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewPrometheus("crud")
}

// ProvideMetrics creates CloudWatch metrics. They only reach AWS in managed mode.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("CrudMicroservices/%s", cfg.Environment)
	if cfg.Offline || !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil, logger)
	}
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideEventPublisher creates the event publisher, metered in both modes.
func ProvideEventPublisher(
	cfg *config.Config,
	client *awseventbridge.Client,
	prometheus *observability.Prometheus,
	metrics *observability.Metrics,
	logger *zap.Logger,
) ports.EventPublisher {
	var publisher ports.EventPublisher
	if cfg.Offline {
		publisher = localmessaging.NewPublisher(logger, 100)
	} else {
		publisher = eventbridge.NewPublisher(client, cfg.EventBusName, eventbridge.DefaultBreakerConfig(), logger)
	}
	return metered.NewPublisher(publisher, prometheus, metrics)
}

// ProvideNotifier sends notifications to SQS when a queue is configured.
func ProvideNotifier(cfg *config.Config, client *awssqs.Client, logger *zap.Logger) ports.Notifier {
	if cfg.Offline || cfg.QueueURL == "" {
		return localmessaging.NewNotifier(logger)
	}
	return sqs.NewNotifier(client, cfg.QueueURL, logger)
}

// ProvideKeyCache holds JWKS keys. The cleanup stops its sweeper.
func ProvideKeyCache() (*cache.InMemoryCache, func()) {
	c := cache.NewInMemoryCache(5 * time.Minute)
	return c, c.Close
}

// ProvideTokenGenerator mints offline tokens. It is nil in managed mode.
func ProvideTokenGenerator(cfg *config.Config) (*auth.JWTGenerator, error) {
	if !cfg.Offline {
		return nil, nil
	}
	return auth.NewJWTGenerator(cfg.JWTSecret, cfg.TokenExpiry, true)
}

// ProvideIdentityProvider uses local bcrypt accounts offline and Cognito otherwise.
func ProvideIdentityProvider(
	cfg *config.Config,
	tokens *auth.JWTGenerator,
	client *awscognito.Client,
	logger *zap.Logger,
) ports.IdentityProvider {
	if cfg.Offline {
		return localidentity.NewProvider(tokens, bcrypt.DefaultCost)
	}
	return cognito.NewProvider(client, cfg.CognitoClientID, logger)
}

// ProvideExtractor resolves callers. Offline, bearer tokens are checked with
// the shared secret and requests without one act as the offline user. In
// managed mode AUTH_MODE chooses between authorizer claims and JWKS.
func ProvideExtractor(cfg *config.Config, keys *cache.InMemoryCache) (auth.Extractor, error) {
	if cfg.Offline {
		verifier, err := auth.NewSharedSecretVerifier(cfg.JWTSecret, true)
		if err != nil {
			return nil, err
		}
		return auth.NewOfflineFallbackExtractor(auth.BearerExtractor{Verifier: verifier}, cfg.OfflineUserID, true)
	}

	if cfg.AuthMode == config.AuthModeToken {
		verifier, err := auth.NewJWKSVerifier(jwksConfig(cfg), keys, nil)
		if err != nil {
			return nil, err
		}
		return auth.BearerExtractor{Verifier: verifier}, nil
	}
	return auth.AuthorizerExtractor{}, nil
}

func jwksConfig(cfg *config.Config) auth.JWKSConfig {
	return auth.JWKSConfig{
		Region:          cfg.AWSRegion,
		UserPoolID:      cfg.CognitoUserPoolID,
		RefreshInterval: cfg.JWKSRefreshInterval,
		KeyTTL:          cfg.JWKSKeyTTL,
	}
}

// ProvideErrorHandler creates the HTTP error boundary. Development responses
// carry internal error messages.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *apperrors.ErrorHandler {
	return apperrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideRouterOptions builds CORS and rate limit settings. Limits are shared
// through DynamoDB when a table is configured.
func ProvideRouterOptions(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) rest.Options {
	limiter := func(limit int) auth.RateLimiter {
		if limit <= 0 {
			return nil
		}
		if !cfg.Offline && cfg.RateLimitTable != "" {
			return dynamodb.NewRateLimiter(client, cfg.RateLimitTable, limit, time.Minute, logger)
		}
		return auth.NewSlidingWindowLimiter(limit, time.Minute)
	}
	return rest.Options{
		CORSOrigins: cfg.CORSOrigins,
		IPLimiter:   limiter(cfg.IPRateLimit),
		UserLimiter: limiter(cfg.UserRateLimit),
	}
}
